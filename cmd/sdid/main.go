// sdid is the chassis daemon.
//
// It registers the chassis described by the entity and device settings
// documents, initialises every entity and then publishes periodic
// telemetry snapshots to MQTT and InfluxDB until it receives SIGINT or
// SIGTERM. Commands published on <prefix>/command/<entity>/<resource> are
// applied between snapshots.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/sdi-core/internal/chassis"
	"github.com/nerrad567/sdi-core/internal/infrastructure/config"
	"github.com/nerrad567/sdi-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/sdi-core/internal/infrastructure/logging"
	"github.com/nerrad567/sdi-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sdi-core/internal/media"
	"github.com/nerrad567/sdi-core/internal/sysfs"
	"github.com/nerrad567/sdi-core/internal/telemetry"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the daemon body, separated from main for testability. It returns
// nil on a clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting sdid",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	reg, err := loadChassis(cfg, log)
	if err != nil {
		return err
	}

	// Entities that fail to initialise are still monitored.
	if initErr := reg.SysInit(); initErr != nil {
		log.Warn("chassis init incomplete", "error", initErr)
	}

	topics := mqtt.NewTopics(cfg.Telemetry.TopicPrefix)
	encoder, err := telemetry.NewEncoder(cfg.Telemetry.Format)
	if err != nil {
		return err
	}

	collector := telemetry.NewCollector(reg, cfg.Site.ID, cfg.Telemetry.IncludeMedia)
	opts := telemetry.ServiceOptions{
		Collector:  collector,
		Encoder:    encoder,
		Topics:     topics,
		Controller: telemetry.NewController(reg, topics),
		Interval:   cfg.Telemetry.Interval,
	}

	mqttClient, closeMQTT, err := connectMQTT(cfg.MQTT, topics, log)
	if err != nil {
		return err
	}
	defer closeMQTT()
	if mqttClient != nil {
		opts.Publisher = mqttClient
	}

	influxClient, closeInflux, err := connectInflux(cfg.InfluxDB, log)
	if err != nil {
		return err
	}
	defer closeInflux()
	if influxClient != nil {
		opts.Metrics = influxClient
	}

	svc, err := telemetry.NewService(opts)
	if err != nil {
		return err
	}
	svc.SetLogger(log.With("component", "telemetry"))

	if mqttClient != nil {
		if subErr := mqttClient.Subscribe(topics.AllCommands(), byte(cfg.MQTT.QoS), svc.HandleMessage); subErr != nil {
			return fmt.Errorf("subscribing to commands: %w", subErr)
		}
	}

	if err := healthCheck(ctx, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete", "entities", len(reg.Entities()))

	if err := svc.Run(ctx); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	log.Info("sdid stopped")
	return nil
}

// loadChassis registers the chassis and attaches the media transport when
// module dumps are configured.
func loadChassis(cfg *config.Config, log *logging.Logger) (*chassis.Registry, error) {
	opts := []chassis.Option{chassis.WithLogger(log.With("component", "chassis"))}
	if cfg.Chassis.Media.I2CAddr != 0 {
		opts = append(opts, chassis.WithI2CAddr(cfg.Chassis.Media.I2CAddr))
	}
	if cfg.Chassis.Media.Enabled {
		opts = append(opts, chassis.WithTransport(media.NewFileTransport(cfg.Chassis.Media.DumpDir)))
	}

	reg, err := chassis.Load(cfg.Chassis.EntityConfig, cfg.Chassis.DeviceConfig,
		sysfs.New(cfg.Chassis.SysfsRoot), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading chassis: %w", err)
	}
	log.Info("chassis loaded",
		"entity_config", cfg.Chassis.EntityConfig,
		"device_config", cfg.Chassis.DeviceConfig,
		"system_boards", reg.Count(chassis.EntitySystemBoard),
		"fan_trays", reg.Count(chassis.EntityFanTray),
		"psu_trays", reg.Count(chassis.EntityPSUTray),
	)
	return reg, nil
}

// connectMQTT opens the broker session when MQTT is enabled. The returned
// client is nil when it is disabled; the close func is always safe to call.
func connectMQTT(cfg config.MQTTConfig, topics mqtt.Topics, log *logging.Logger) (*mqtt.Client, func(), error) {
	if !cfg.Enabled {
		log.Info("mqtt publishing off")
		return nil, func() {}, nil
	}
	client, err := mqtt.Connect(cfg, topics)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}

	client.SetLogger(log)
	client.SetOnConnect(func() { log.Info("broker session restored") })
	client.SetOnDisconnect(func(err error) { log.Warn("broker session lost", "error", err) })
	log.Info("publishing to broker",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", client.ClientID(),
		"prefix", topics.Prefix,
	)

	return client, func() {
		if err := client.Close(); err != nil {
			log.Error("closing broker session", "error", err)
		}
	}, nil
}

// connectInflux starts the metrics sink when InfluxDB is enabled, with the
// same nil and close conventions as connectMQTT.
func connectInflux(cfg config.InfluxDBConfig, log *logging.Logger) (*influxdb.Client, func(), error) {
	if !cfg.Enabled {
		log.Info("influxdb sink off")
		return nil, func() {}, nil
	}
	client, err := influxdb.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}

	client.SetOnError(func(err error) { log.Error("metrics batch dropped", "error", err) })
	log.Info("writing metrics", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)

	return client, func() {
		if err := client.Close(); err != nil {
			log.Error("closing influxdb client", "error", err)
		}
	}, nil
}

// getConfigPath returns SDI_CONFIG when set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("SDI_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the enabled sinks. Either client may be nil.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	var errs []error
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mqtt: %w", err))
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("influxdb: %w", err))
		}
	}
	return errors.Join(errs...)
}
