package classifier

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sadra-Hemmati/voicedrive/internal/command"
	"github.com/Sadra-Hemmati/voicedrive/internal/sampler"
)

var testLabels = []string{"left", "noise", "right", "stop", "unknown"}

func testFrame(n int) sampler.Frame {
	return make(sampler.Frame, n)
}

func scoreServer(t *testing.T, status int, scores []command.LabelScore) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Samples []int8 `json:"samples"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("sidecar received bad request body: %v", err)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{"scores": scores})
	}))
}

func goodScores() []command.LabelScore {
	return []command.LabelScore{
		{Label: "left", Confidence: 0.7},
		{Label: "noise", Confidence: 0.1},
		{Label: "right", Confidence: 0.1},
		{Label: "stop", Confidence: 0.05},
		{Label: "unknown", Confidence: 0.05},
	}
}

func TestHTTPClassifierSuccess(t *testing.T) {
	srv := scoreServer(t, http.StatusOK, goodScores())
	defer srv.Close()

	c, err := NewHTTPClassifier(srv.URL, 100, testLabels, time.Second)
	if err != nil {
		t.Fatalf("NewHTTPClassifier: %v", err)
	}

	scores, err := c.Classify(testFrame(100))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(scores) != len(testLabels) {
		t.Fatalf("got %d scores, want %d", len(scores), len(testLabels))
	}
	if scores[0].Label != "left" || scores[0].Confidence != 0.7 {
		t.Errorf("scores[0] = %+v, want left at 0.7", scores[0])
	}
}

func TestHTTPClassifierFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		scores []command.LabelScore
	}{
		{"sidecar error status", http.StatusInternalServerError, goodScores()},
		{"wrong vector length", http.StatusOK, goodScores()[:3]},
		{"wrong label order", http.StatusOK, []command.LabelScore{
			{Label: "noise", Confidence: 0.1},
			{Label: "left", Confidence: 0.7},
			{Label: "right", Confidence: 0.1},
			{Label: "stop", Confidence: 0.05},
			{Label: "unknown", Confidence: 0.05},
		}},
		{"confidence above one", http.StatusOK, []command.LabelScore{
			{Label: "left", Confidence: 1.7},
			{Label: "noise", Confidence: 0.1},
			{Label: "right", Confidence: 0.1},
			{Label: "stop", Confidence: 0.05},
			{Label: "unknown", Confidence: 0.05},
		}},
		{"negative confidence", http.StatusOK, []command.LabelScore{
			{Label: "left", Confidence: -0.2},
			{Label: "noise", Confidence: 0.1},
			{Label: "right", Confidence: 0.1},
			{Label: "stop", Confidence: 0.05},
			{Label: "unknown", Confidence: 0.05},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := scoreServer(t, tt.status, tt.scores)
			defer srv.Close()

			c, err := NewHTTPClassifier(srv.URL, 100, testLabels, time.Second)
			if err != nil {
				t.Fatalf("NewHTTPClassifier: %v", err)
			}

			if _, err := c.Classify(testFrame(100)); !errors.Is(err, ErrClassify) {
				t.Errorf("Classify error = %v, want wrapped ErrClassify", err)
			}
		})
	}
}

func TestHTTPClassifierRejectsWrongFrameLength(t *testing.T) {
	srv := scoreServer(t, http.StatusOK, goodScores())
	defer srv.Close()

	c, err := NewHTTPClassifier(srv.URL, 100, testLabels, time.Second)
	if err != nil {
		t.Fatalf("NewHTTPClassifier: %v", err)
	}

	if _, err := c.Classify(testFrame(99)); !errors.Is(err, ErrClassify) {
		t.Errorf("Classify error = %v, want wrapped ErrClassify", err)
	}
}

func TestHTTPClassifierUnreachableSidecar(t *testing.T) {
	c, err := NewHTTPClassifier("http://127.0.0.1:1/classify", 100, testLabels, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("NewHTTPClassifier: %v", err)
	}

	if _, err := c.Classify(testFrame(100)); !errors.Is(err, ErrClassify) {
		t.Errorf("Classify error = %v, want wrapped ErrClassify", err)
	}
}

func TestNewHTTPClassifierValidation(t *testing.T) {
	if _, err := NewHTTPClassifier("", 100, testLabels, time.Second); err == nil {
		t.Error("empty URL accepted")
	}
	if _, err := NewHTTPClassifier("http://localhost/c", 0, testLabels, time.Second); err == nil {
		t.Error("zero input length accepted")
	}
	if _, err := NewHTTPClassifier("http://localhost/c", 100, nil, time.Second); err == nil {
		t.Error("empty label set accepted")
	}
}
