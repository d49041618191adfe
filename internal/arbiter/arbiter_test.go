package arbiter

import (
	"testing"

	"github.com/Sadra-Hemmati/voicedrive/internal/command"
)

func defaultExclusions() Exclusions {
	return NewExclusions(command.LabelNoise, command.LabelUnknown)
}

func ls(label string, conf float64) command.LabelScore {
	return command.LabelScore{Label: label, Confidence: conf}
}

func scores(ss ...command.LabelScore) []command.LabelScore {
	return ss
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		scores      []command.LabelScore
		current     command.Command
		minConf     float64
		wantCmd     command.Command
		wantChanged bool
	}{
		{
			name: "confident noise never wins over weak command",
			scores: scores(ls("left", 0.1), ls("noise", 0.9), ls("right", 0.05), ls("stop", 0.02), ls("unknown", 0.3)),
			current:     command.Stop,
			minConf:     0.25,
			wantCmd:     command.Stop,
			wantChanged: false,
		},
		{
			name: "confident command label wins",
			scores: scores(ls("left", 0.4), ls("noise", 0.9), ls("right", 0.05), ls("stop", 0.02), ls("unknown", 0.3)),
			current:     command.Stop,
			minConf:     0.25,
			wantCmd:     command.Left,
			wantChanged: true,
		},
		{
			name:        "below threshold holds previous command",
			scores:      scores(ls("left", 0.24), ls("right", 0.1), ls("stop", 0.05)),
			current:     command.Right,
			minConf:     0.25,
			wantCmd:     command.Right,
			wantChanged: false,
		},
		{
			name:        "exactly at threshold is accepted",
			scores:      scores(ls("left", 0.25), ls("right", 0.1), ls("stop", 0.05)),
			current:     command.Stop,
			minConf:     0.25,
			wantCmd:     command.Left,
			wantChanged: true,
		},
		{
			name:        "tie resolves to first label in scan order",
			scores:      scores(ls("left", 0.5), ls("right", 0.5), ls("stop", 0.1)),
			current:     command.Stop,
			minConf:     0.25,
			wantCmd:     command.Left,
			wantChanged: true,
		},
		{
			name: "excluded global maximum is skipped, runner-up wins",
			scores: scores(ls("left", 0.3), ls("noise", 0.99), ls("right", 0.05), ls("stop", 0.02), ls("unknown", 0.98)),
			current:     command.Stop,
			minConf:     0.25,
			wantCmd:     command.Left,
			wantChanged: true,
		},
		{
			name:        "winner repeats current command without change flag",
			scores:      scores(ls("left", 0.8), ls("right", 0.1), ls("stop", 0.05)),
			current:     command.Left,
			minConf:     0.25,
			wantCmd:     command.Left,
			wantChanged: false,
		},
		{
			name:        "stop is a legal command, not a blank state",
			scores:      scores(ls("left", 0.1), ls("right", 0.1), ls("stop", 0.7)),
			current:     command.Left,
			minConf:     0.25,
			wantCmd:     command.Stop,
			wantChanged: true,
		},
		{
			name:        "all labels excluded holds previous command",
			scores:      scores(ls("noise", 0.9), ls("unknown", 0.8)),
			current:     command.Right,
			minConf:     0.25,
			wantCmd:     command.Right,
			wantChanged: false,
		},
		{
			name:        "empty vector holds previous command",
			scores:      nil,
			current:     command.Left,
			minConf:     0.25,
			wantCmd:     command.Left,
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Decide(tt.scores, tt.current, defaultExclusions(), tt.minConf)
			if got != tt.wantCmd {
				t.Errorf("Decide() command = %s, want %s", got, tt.wantCmd)
			}
			if changed != tt.wantChanged {
				t.Errorf("Decide() changed = %v, want %v", changed, tt.wantChanged)
			}
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	s := scores(ls("left", 0.5), ls("right", 0.5), ls("stop", 0.3))
	excluded := defaultExclusions()

	for i := 0; i < 100; i++ {
		got, _ := Decide(s, command.Stop, excluded, 0.25)
		if got != command.Left {
			t.Fatalf("call %d: Decide() = %s, want left every time", i, got)
		}
	}
}

func TestWinner(t *testing.T) {
	s := scores(ls("left", 0.1), ls("noise", 0.9), ls("right", 0.3))

	win, ok := Winner(s, defaultExclusions())
	if !ok {
		t.Fatal("Winner() reported no candidates")
	}
	if win.Label != "right" || win.Confidence != 0.3 {
		t.Errorf("Winner() = %+v, want right at 0.3", win)
	}

	if _, ok := Winner(scores(ls("noise", 0.9)), defaultExclusions()); ok {
		t.Error("Winner() found a candidate in an all-excluded vector")
	}
}

func TestParseExclusions(t *testing.T) {
	e := ParseExclusions("noise, unknown,")
	if len(e) != 2 || !e["noise"] || !e["unknown"] {
		t.Errorf("ParseExclusions() = %v, want noise and unknown", e)
	}
}
