package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker             string
	MQTTClientIDController string
	MQTTClientIDConsole    string
	MQTTClientIDWeb        string
	MQTTClientIDDisplay    string

	// Topics
	TopicCycle  string
	TopicStatus string

	// Sampler
	SampleRate     int // Hz
	CutoffFreq     int // Hz
	CaptureSeconds int
	ADCRawMax      int // full-scale raw reading, e.g. 1023 for a 10-bit front end

	// Sample source: "ads1115" or "serial"
	SampleSource string

	// ADS1115 ADC
	ADCI2CBus  string
	ADCChannel int

	// Serial ADC bridge
	SerialPort     string
	SerialBaudRate int

	// Classifier
	ClassifierURL       string
	ClassifierTimeoutMS int
	ClassifierInputLen  int    // sample count the model was trained on
	ClassifierLabels    string // comma-separated, in model output order

	// Arbitration
	MinConfidence  float64
	ExcludedLabels string // comma-separated label names

	// 0.0 is a legal threshold (accept any winner), so presence is
	// tracked separately from the value.
	minConfidenceSet bool

	// Motor
	MotorLeftPin   string
	MotorRightPin  string
	MotorEnablePin string
	MotorDutyPct   int
	MotorPWMFreq   int // Hz

	// Button
	ButtonPin string

	// Timing
	IdlePollInterval int // milliseconds

	// Display
	DisplayUpdateInterval int // milliseconds

	// Web Server
	WebServerPort int
}

// Package-level unexported variables for singleton pattern. External code
// must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_CONTROLLER":
		c.MQTTClientIDController = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_CYCLE":
		c.TopicCycle = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	// Sampler
	case "SAMPLE_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_RATE %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("SAMPLE_RATE must be positive, got %d", rate)
		}
		c.SampleRate = rate
	case "CUTOFF_FREQ":
		freq, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CUTOFF_FREQ %q: %w", value, err)
		}
		if freq <= 0 {
			return fmt.Errorf("CUTOFF_FREQ must be positive, got %d", freq)
		}
		c.CutoffFreq = freq
	case "CAPTURE_SECONDS":
		secs, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CAPTURE_SECONDS %q: %w", value, err)
		}
		if secs <= 0 {
			return fmt.Errorf("CAPTURE_SECONDS must be positive, got %d", secs)
		}
		c.CaptureSeconds = secs
	case "ADC_RAW_MAX":
		max, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ADC_RAW_MAX %q: %w", value, err)
		}
		if max <= 0 {
			return fmt.Errorf("ADC_RAW_MAX must be positive, got %d", max)
		}
		c.ADCRawMax = max

	// Sample source
	case "SAMPLE_SOURCE":
		if value != "ads1115" && value != "serial" {
			return fmt.Errorf("SAMPLE_SOURCE must be \"ads1115\" or \"serial\", got %q", value)
		}
		c.SampleSource = value

	// ADS1115
	case "ADC_I2C_BUS":
		c.ADCI2CBus = value
	case "ADC_CHANNEL":
		ch, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ADC_CHANNEL %q: %w", value, err)
		}
		if ch < 0 || ch > 3 {
			return fmt.Errorf("ADC_CHANNEL must be 0-3, got %d", ch)
		}
		c.ADCChannel = ch

	// Serial bridge
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Classifier
	case "CLASSIFIER_URL":
		c.ClassifierURL = value
	case "CLASSIFIER_TIMEOUT_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CLASSIFIER_TIMEOUT_MS %q: %w", value, err)
		}
		if ms <= 0 {
			return fmt.Errorf("CLASSIFIER_TIMEOUT_MS must be positive, got %d", ms)
		}
		c.ClassifierTimeoutMS = ms
	case "CLASSIFIER_INPUT_LEN":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CLASSIFIER_INPUT_LEN %q: %w", value, err)
		}
		if n <= 0 {
			return fmt.Errorf("CLASSIFIER_INPUT_LEN must be positive, got %d", n)
		}
		c.ClassifierInputLen = n
	case "CLASSIFIER_LABELS":
		c.ClassifierLabels = value

	// Arbitration
	case "MIN_CONFIDENCE":
		conf, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MIN_CONFIDENCE %q: %w", value, err)
		}
		if conf < 0 || conf > 1 {
			return fmt.Errorf("MIN_CONFIDENCE must be 0.0-1.0, got %v", conf)
		}
		c.MinConfidence = conf
		c.minConfidenceSet = true
	case "EXCLUDED_LABELS":
		c.ExcludedLabels = value

	// Motor
	case "MOTOR_LEFT_PIN":
		c.MotorLeftPin = value
	case "MOTOR_RIGHT_PIN":
		c.MotorRightPin = value
	case "MOTOR_ENABLE_PIN":
		c.MotorEnablePin = value
	case "MOTOR_DUTY_PCT":
		duty, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOTOR_DUTY_PCT %q: %w", value, err)
		}
		if duty < 0 || duty > 100 {
			return fmt.Errorf("MOTOR_DUTY_PCT must be 0-100, got %d", duty)
		}
		c.MotorDutyPct = duty
	case "MOTOR_PWM_FREQ":
		freq, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOTOR_PWM_FREQ %q: %w", value, err)
		}
		if freq <= 0 {
			return fmt.Errorf("MOTOR_PWM_FREQ must be positive, got %d", freq)
		}
		c.MotorPWMFreq = freq

	// Button
	case "BUTTON_PIN":
		c.ButtonPin = value

	// Timing
	case "IDLE_POLL_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IDLE_POLL_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("IDLE_POLL_INTERVAL must be positive, got %d", interval)
		}
		c.IdlePollInterval = interval

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicCycle == "" {
		return fmt.Errorf("TOPIC_CYCLE is required")
	}
	if c.SampleRate == 0 {
		return fmt.Errorf("SAMPLE_RATE is required")
	}
	if c.CutoffFreq == 0 {
		return fmt.Errorf("CUTOFF_FREQ is required")
	}
	if c.CaptureSeconds == 0 {
		return fmt.Errorf("CAPTURE_SECONDS is required")
	}
	if c.ADCRawMax == 0 {
		return fmt.Errorf("ADC_RAW_MAX is required")
	}
	if c.SampleSource == "" {
		return fmt.Errorf("SAMPLE_SOURCE is required")
	}
	if c.SampleSource == "serial" && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required when SAMPLE_SOURCE=serial")
	}
	if c.SampleSource == "serial" && c.SerialBaudRate == 0 {
		return fmt.Errorf("SERIAL_BAUD_RATE is required when SAMPLE_SOURCE=serial")
	}
	if c.ClassifierURL == "" {
		return fmt.Errorf("CLASSIFIER_URL is required")
	}
	if c.ClassifierInputLen == 0 {
		return fmt.Errorf("CLASSIFIER_INPUT_LEN is required")
	}
	if c.ClassifierLabels == "" {
		return fmt.Errorf("CLASSIFIER_LABELS is required")
	}
	if !c.minConfidenceSet {
		return fmt.Errorf("MIN_CONFIDENCE is required")
	}
	if c.MotorLeftPin == "" || c.MotorRightPin == "" || c.MotorEnablePin == "" {
		return fmt.Errorf("MOTOR_LEFT_PIN, MOTOR_RIGHT_PIN and MOTOR_ENABLE_PIN are required")
	}
	if c.ButtonPin == "" {
		return fmt.Errorf("BUTTON_PIN is required")
	}
	if c.IdlePollInterval == 0 {
		return fmt.Errorf("IDLE_POLL_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
