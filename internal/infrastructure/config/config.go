package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the whole configuration file.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Chassis   ChassisConfig   `yaml:"chassis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig identifies the switch this process runs on.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// ChassisConfig locates the chassis description and the hardware behind it.
type ChassisConfig struct {
	// EntityConfig is the entity list document (YAML or XML).
	EntityConfig string `yaml:"entity_config"`

	// DeviceConfig is the device settings document (YAML or XML).
	DeviceConfig string `yaml:"device_config"`

	// SysfsRoot is prepended to every settings path. Empty means "/".
	SysfsRoot string `yaml:"sysfs_root"`

	Media MediaConfig `yaml:"media"`
}

// MediaConfig configures access to transceiver module memory.
type MediaConfig struct {
	Enabled bool `yaml:"enabled"`

	// DumpDir holds module<N>.bin memory images served as the register transport.
	DumpDir string `yaml:"dump_dir"`

	// I2CAddr is the two-wire address of the module memory map.
	I2CAddr uint8 `yaml:"i2c_addr"`
}

// TelemetryConfig controls periodic snapshot publishing.
type TelemetryConfig struct {
	Interval     time.Duration `yaml:"interval"`
	Format       string        `yaml:"format"`
	TopicPrefix  string        `yaml:"topic_prefix"`
	IncludeMedia bool          `yaml:"include_media"`
}

// MQTTConfig configures the snapshot publisher and command listener.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig addresses the broker. ClientID gets a random suffix.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig holds reconnect backoff bounds in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig configures the metrics sink. FlushInterval is in seconds.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig selects level, format (json or text) and output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load builds the configuration from defaults, then the YAML file at path,
// then SDI_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration with environment overrides
// applied, for commands run without a config file.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{ID: "switch-001", Name: "SDI chassis"},
		Chassis: ChassisConfig{
			EntityConfig: "/etc/sdi/entity.xml",
			DeviceConfig: "/etc/sdi/device.xml",
			Media:        MediaConfig{I2CAddr: 0x50},
		},
		Telemetry: TelemetryConfig{
			Interval:    30 * time.Second,
			Format:      "json",
			TopicPrefix: "sdi",
		},
		MQTT: MQTTConfig{
			Broker:    MQTTBrokerConfig{Host: "localhost", Port: 1883, ClientID: "sdi"},
			QoS:       1,
			Reconnect: MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 60},
		},
		InfluxDB: InfluxDBConfig{Bucket: "chassis", BatchSize: 100, FlushInterval: 10},
		Logging:  LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

// envBinding applies one SDI_* variable. Unparsable values leave the
// field alone.
type envBinding struct {
	name string
	set  func(cfg *Config, v string)
}

func str(field func(*Config) *string) func(*Config, string) {
	return func(cfg *Config, v string) { *field(cfg) = v }
}

var envBindings = []envBinding{
	{"SDI_CHASSIS_ENTITY_CONFIG", str(func(c *Config) *string { return &c.Chassis.EntityConfig })},
	{"SDI_CHASSIS_DEVICE_CONFIG", str(func(c *Config) *string { return &c.Chassis.DeviceConfig })},
	{"SDI_CHASSIS_SYSFS_ROOT", str(func(c *Config) *string { return &c.Chassis.SysfsRoot })},
	{"SDI_MEDIA_DUMP_DIR", func(c *Config, v string) {
		c.Chassis.Media.DumpDir, c.Chassis.Media.Enabled = v, true
	}},
	{"SDI_TELEMETRY_INTERVAL", func(c *Config, v string) {
		if d, err := time.ParseDuration(v); err == nil {
			c.Telemetry.Interval = d
		}
	}},
	{"SDI_MQTT_HOST", str(func(c *Config) *string { return &c.MQTT.Broker.Host })},
	{"SDI_MQTT_PORT", func(c *Config, v string) {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTT.Broker.Port = port
		}
	}},
	{"SDI_MQTT_USERNAME", str(func(c *Config) *string { return &c.MQTT.Auth.Username })},
	{"SDI_MQTT_PASSWORD", str(func(c *Config) *string { return &c.MQTT.Auth.Password })},
	{"SDI_INFLUXDB_URL", str(func(c *Config) *string { return &c.InfluxDB.URL })},
	{"SDI_INFLUXDB_TOKEN", str(func(c *Config) *string { return &c.InfluxDB.Token })},
	{"SDI_LOG_LEVEL", str(func(c *Config) *string { return &c.Logging.Level })},
}

// applyEnvOverrides applies every non-empty SDI_* variable in envBindings.
func applyEnvOverrides(cfg *Config) {
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			b.set(cfg, v)
		}
	}
}

// Validate returns every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	check := func(bad bool, msg string) {
		if bad {
			errs = append(errs, errors.New(msg))
		}
	}

	check(c.Site.ID == "", "site.id is required")

	check(c.Chassis.EntityConfig == "", "chassis.entity_config is required")
	check(c.Chassis.DeviceConfig == "", "chassis.device_config is required")
	check(c.Chassis.Media.Enabled && c.Chassis.Media.DumpDir == "", "chassis.media.dump_dir is required when media is enabled")

	check(c.Telemetry.Interval < time.Second, "telemetry.interval must be at least 1s")
	check(c.Telemetry.Format != "json" && c.Telemetry.Format != "cbor", "telemetry.format must be json or cbor")

	check(c.MQTT.QoS < 0 || c.MQTT.QoS > 2, "mqtt.qos must be 0, 1 or 2")
	check(c.MQTT.Enabled && (c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535), "mqtt.broker.port must be between 1 and 65535")

	check(c.InfluxDB.Enabled && c.InfluxDB.URL == "", "influxdb.url is required when influxdb is enabled")
	check(c.InfluxDB.Enabled && c.InfluxDB.Bucket == "", "influxdb.bucket is required when influxdb is enabled")

	return errors.Join(errs...)
}

// GetFlushInterval returns the InfluxDB flush interval.
func (c *Config) GetFlushInterval() time.Duration {
	return time.Duration(c.InfluxDB.FlushInterval) * time.Second
}
