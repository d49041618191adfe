package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Sadra-Hemmati/voicedrive/internal/command"
	"github.com/Sadra-Hemmati/voicedrive/internal/sampler"
)

// HTTPClassifier sends frames to an inference sidecar over HTTP. The sidecar
// owns the model; this adapter owns the wire contract.
type HTTPClassifier struct {
	url         string
	inputLength int
	labels      []string
	client      *http.Client
}

type classifyRequest struct {
	Samples []int8 `json:"samples"`
}

type classifyResponse struct {
	Scores []command.LabelScore `json:"scores"`
}

// NewHTTPClassifier creates an adapter for the sidecar at url. The labels
// slice is the model's fixed label set in its output order; the response
// vector is validated against it on every call.
func NewHTTPClassifier(url string, inputLength int, labels []string, timeout time.Duration) (*HTTPClassifier, error) {
	if url == "" {
		return nil, fmt.Errorf("classifier: URL is required")
	}
	if inputLength <= 0 {
		return nil, fmt.Errorf("classifier: input length must be positive, got %d", inputLength)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("classifier: label set is required")
	}
	return &HTTPClassifier{
		url:         url,
		inputLength: inputLength,
		labels:      labels,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClassifier) InputLength() int {
	return c.inputLength
}

// Classify posts the frame and decodes the score vector. Any transport or
// contract violation comes back as a wrapped ErrClassify.
func (c *HTTPClassifier) Classify(frame sampler.Frame) ([]command.LabelScore, error) {
	if len(frame) != c.inputLength {
		return nil, fmt.Errorf("%w: frame length %d, model expects %d", ErrClassify, len(frame), c.inputLength)
	}

	body, err := json.Marshal(classifyRequest{Samples: frame})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrClassify, err)
	}

	resp, err := c.client.Post(c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassify, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: sidecar returned %s", ErrClassify, resp.Status)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrClassify, err)
	}

	if err := c.validate(out.Scores); err != nil {
		return nil, err
	}
	return out.Scores, nil
}

// validate checks the vector against the model's fixed label identity,
// ordering, and confidence range.
func (c *HTTPClassifier) validate(scores []command.LabelScore) error {
	if len(scores) != len(c.labels) {
		return fmt.Errorf("%w: got %d scores, model has %d labels", ErrClassify, len(scores), len(c.labels))
	}
	for i, s := range scores {
		if s.Label != c.labels[i] {
			return fmt.Errorf("%w: score %d labeled %q, expected %q", ErrClassify, i, s.Label, c.labels[i])
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			return fmt.Errorf("%w: %q confidence %v out of [0,1]", ErrClassify, s.Label, s.Confidence)
		}
	}
	return nil
}
