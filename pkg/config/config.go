package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/lpsense/pkg/filter"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/itohio/lpsense/pkg/sampler"
	"github.com/itohio/lpsense/pkg/sar"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig            `yaml:"serial"`
	Acquisition sar.Config              `yaml:"acquisition"`
	Filter      filter.Config           `yaml:"filter"`
	Thermistor  sample.ThermistorConfig `yaml:"thermistor"`
	Light       sample.LightConfig      `yaml:"light"`
	Sampler     sampler.Config          `yaml:"sampler"`
	Mock        sar.MockConfig          `yaml:"mock"`
	Display     DisplayConfig           `yaml:"display"`
	MQTT        MQTTConfig              `yaml:"mqtt"`
	Influx      InfluxConfig            `yaml:"influx"`
	Metrics     MetricsConfig           `yaml:"metrics"`
	Breaker     BreakerConfig           `yaml:"breaker"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// DisplayConfig contains monitor display parameters.
type DisplayConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"` // Trend history shown by the scope
}

// MQTTConfig contains the telemetry broker configuration. Empty Broker disables publishing.
type MQTTConfig struct {
	Broker     string        `yaml:"broker"` // e.g. tcp://localhost:1883
	ClientID   string        `yaml:"client_id"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	Topic      string        `yaml:"topic"`
	QoS        byte          `yaml:"qos"`
	MaxRetries int           `yaml:"max_retries"`
	RetryFor   time.Duration `yaml:"retry_for"`
}

// InfluxConfig contains the time-series store configuration. Empty URL disables writes.
type InfluxConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// MetricsConfig contains the Prometheus endpoint configuration. Empty Listen disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. :9100
	Path   string `yaml:"path"`
}

// BreakerConfig is shared by the publisher circuit breakers.
type BreakerConfig struct {
	Failures int           `yaml:"failures"`
	Open     time.Duration `yaml:"open"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Acquisition: sar.DefaultConfig(),
		Filter:      filter.DefaultConfig(),
		Thermistor:  sample.DefaultThermistorConfig(),
		Light:       sample.DefaultLightConfig(),
		Sampler:     sampler.DefaultConfig(),
		Mock:        sar.DefaultMockConfig(),
		Display: DisplayConfig{
			WindowSeconds: 60,
		},
		MQTT: MQTTConfig{
			ClientID:   "lpsense-monitor",
			Topic:      "lpsense/readings",
			MaxRetries: 5,
			RetryFor:   10 * time.Second,
		},
		Influx: InfluxConfig{
			Measurement: "ambient",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		Breaker: BreakerConfig{
			Failures: 3,
			Open:     30 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter configuration: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Acquisition.TriggerInterval == 0 {
		c.Acquisition.TriggerInterval = def.Acquisition.TriggerInterval
	}
	if c.Acquisition.Watermark == 0 {
		c.Acquisition.Watermark = def.Acquisition.Watermark
	}

	if c.Filter.Reference == 0 {
		c.Filter.Reference = def.Filter.Reference
	}
	if c.Filter.Thermistor == 0 {
		c.Filter.Thermistor = def.Filter.Thermistor
	}
	if c.Filter.Light == 0 {
		c.Filter.Light = def.Filter.Light
	}

	if c.Thermistor.RReference == 0 {
		c.Thermistor.RReference = def.Thermistor.RReference
	}
	if c.Thermistor.BConstant == 0 {
		c.Thermistor.BConstant = def.Thermistor.BConstant
	}
	if c.Thermistor.R0 == 0 {
		c.Thermistor.R0 = def.Thermistor.R0
	}
	if c.Thermistor.T0 == 0 {
		c.Thermistor.T0 = def.Thermistor.T0
	}

	// Light offset and dark value may legitimately be zero.
	if c.Light.LowThreshold == 0 {
		c.Light.LowThreshold = def.Light.LowThreshold
	}
	if c.Light.HighThreshold == 0 {
		c.Light.HighThreshold = def.Light.HighThreshold
	}
	if c.Light.DarkRaw == 0 {
		c.Light.DarkRaw = def.Light.DarkRaw
	}
	if c.Light.ScaleShift == 0 {
		c.Light.ScaleShift = def.Light.ScaleShift
	}

	if c.Sampler.ReportEvery == 0 {
		c.Sampler.ReportEvery = def.Sampler.ReportEvery
	}

	if c.Mock.ReferenceCounts == 0 {
		c.Mock.ReferenceCounts = def.Mock.ReferenceCounts
	}

	if c.Display.WindowSeconds == 0 {
		c.Display.WindowSeconds = def.Display.WindowSeconds
	}

	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}
	if c.MQTT.MaxRetries == 0 {
		c.MQTT.MaxRetries = def.MQTT.MaxRetries
	}
	if c.MQTT.RetryFor == 0 {
		c.MQTT.RetryFor = def.MQTT.RetryFor
	}

	if c.Influx.Measurement == "" {
		c.Influx.Measurement = def.Influx.Measurement
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = def.Metrics.Path
	}

	if c.Breaker.Failures == 0 {
		c.Breaker.Failures = def.Breaker.Failures
	}
	if c.Breaker.Open == 0 {
		c.Breaker.Open = def.Breaker.Open
	}
}
