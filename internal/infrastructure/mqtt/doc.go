// Package mqtt publishes chassis state to an MQTT broker and receives
// control requests from it.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained snapshot publishing under <prefix>/chassis/...
//   - Control topic subscriptions under <prefix>/command/...
//   - Last Will and Testament on <prefix>/system/status
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, mqtt.NewTopics(cfg.Telemetry.TopicPrefix))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := client.Topics().Resource("fan_tray-1", "FAN1A")
//	client.PublishRetained(topic, payload)
package mqtt
