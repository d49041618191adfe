package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voicedrive_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `# voicedrive test config
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_CONTROLLER=voicedrive-controller
TOPIC_CYCLE=voicedrive/cycle
TOPIC_STATUS=voicedrive/status

SAMPLE_RATE=6000
CUTOFF_FREQ=4000
CAPTURE_SECONDS=1
ADC_RAW_MAX=1023
SAMPLE_SOURCE=ads1115
ADC_I2C_BUS=
ADC_CHANNEL=0

CLASSIFIER_URL=http://localhost:5000/classify
CLASSIFIER_TIMEOUT_MS=2000
CLASSIFIER_INPUT_LEN=6000
CLASSIFIER_LABELS=left,noise,right,stop,unknown

MIN_CONFIDENCE=0.25
EXCLUDED_LABELS=noise,unknown

MOTOR_LEFT_PIN=GPIO17
MOTOR_RIGHT_PIN=GPIO27
MOTOR_ENABLE_PIN=GPIO22
MOTOR_DUTY_PCT=80
MOTOR_PWM_FREQ=1000

BUTTON_PIN=GPIO23
IDLE_POLL_INTERVAL=50
DISPLAY_UPDATE_INTERVAL=250
WEB_SERVER_PORT=8080
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SampleRate != 6000 {
		t.Errorf("SampleRate = %d, want 6000", cfg.SampleRate)
	}
	if cfg.MinConfidence != 0.25 {
		t.Errorf("MinConfidence = %v, want 0.25", cfg.MinConfidence)
	}
	if cfg.ClassifierInputLen != 6000 {
		t.Errorf("ClassifierInputLen = %d, want 6000", cfg.ClassifierInputLen)
	}
	if cfg.MotorLeftPin != "GPIO17" {
		t.Errorf("MotorLeftPin = %q, want GPIO17", cfg.MotorLeftPin)
	}
	if cfg.ExcludedLabels != "noise,unknown" {
		t.Errorf("ExcludedLabels = %q, want noise,unknown", cfg.ExcludedLabels)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
	}{
		{"unknown key", func(s string) string {
			return s + "NOT_A_KEY=1\n"
		}},
		{"malformed line", func(s string) string {
			return s + "just some words\n"
		}},
		{"missing broker", func(s string) string {
			return strings.Replace(s, "MQTT_BROKER=tcp://localhost:1883\n", "", 1)
		}},
		{"missing button pin", func(s string) string {
			return strings.Replace(s, "BUTTON_PIN=GPIO23\n", "", 1)
		}},
		{"missing classifier input length", func(s string) string {
			return strings.Replace(s, "CLASSIFIER_INPUT_LEN=6000\n", "", 1)
		}},
		{"bad sample rate", func(s string) string {
			return strings.Replace(s, "SAMPLE_RATE=6000", "SAMPLE_RATE=bogus", 1)
		}},
		{"negative sample rate", func(s string) string {
			return strings.Replace(s, "SAMPLE_RATE=6000", "SAMPLE_RATE=-1", 1)
		}},
		{"confidence above one", func(s string) string {
			return strings.Replace(s, "MIN_CONFIDENCE=0.25", "MIN_CONFIDENCE=1.5", 1)
		}},
		{"missing confidence", func(s string) string {
			return strings.Replace(s, "MIN_CONFIDENCE=0.25\n", "", 1)
		}},
		{"duty above 100", func(s string) string {
			return strings.Replace(s, "MOTOR_DUTY_PCT=80", "MOTOR_DUTY_PCT=150", 1)
		}},
		{"bad sample source", func(s string) string {
			return strings.Replace(s, "SAMPLE_SOURCE=ads1115", "SAMPLE_SOURCE=tape", 1)
		}},
		{"adc channel out of range", func(s string) string {
			return strings.Replace(s, "ADC_CHANNEL=0", "ADC_CHANNEL=7", 1)
		}},
		{"serial source without port", func(s string) string {
			return strings.Replace(s, "SAMPLE_SOURCE=ads1115", "SAMPLE_SOURCE=serial", 1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.mutate(validConfig))); err == nil {
				t.Error("Load accepted an invalid config")
			}
		})
	}
}

func TestLoadAcceptsZeroConfidence(t *testing.T) {
	// 0.0 means "accept any winner" and is inside the legal range; only an
	// absent key is a validation error.
	content := strings.Replace(validConfig, "MIN_CONFIDENCE=0.25", "MIN_CONFIDENCE=0.0", 1)
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinConfidence != 0 {
		t.Errorf("MinConfidence = %v, want 0", cfg.MinConfidence)
	}
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# leading comment\n\n"+validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Load accepted a missing file")
	}
}
