package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/sdi-core/internal/infrastructure/config"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultKeepAlive         = 60 * time.Second
	defaultDisconnectQuiesce = 1000 // ms

	maxQoS            = 2
	tlsMinVersion     = tls.VersionTLS12
	clientIDSuffixLen = 8
)

// clientID appends a short random suffix to base so two daemons started
// from the same config do not take over each other's session.
func clientID(base string) string {
	if base == "" {
		base = DefaultTopicPrefix
	}
	return base + "-" + uuid.NewString()[:clientIDSuffixLen]
}

// buildClientOptions maps the broker section of the config onto paho.
// Sessions are clean and reconnect forever with the configured backoff.
func buildClientOptions(cfg config.MQTTConfig, id string) *pahomqtt.ClientOptions {
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)).
		SetClientID(id).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second).
		SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second).
		SetConnectTimeout(defaultConnectTimeout).
		SetKeepAlive(defaultKeepAlive)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username).SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}
	return opts
}

// statusPayload is the retained body of the system status topic.
type statusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func buildStatusPayload(status, id, reason string) []byte {
	b, _ := json.Marshal(statusPayload{
		Status:    status,
		ClientID:  id,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return b
}

// configureLWT registers a retained QoS 1 offline will on the system
// status topic.
func configureLWT(opts *pahomqtt.ClientOptions, topics Topics, id string) {
	opts.SetBinaryWill(topics.SystemStatus(), buildStatusPayload("offline", id, "unexpected_disconnect"), 1, true)
}
