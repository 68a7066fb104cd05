// Package telemetry turns the live chassis into periodic snapshots and
// routes remote control commands back onto it.
//
// A Collector walks the registry and records presence, fault, thermal,
// fan and (optionally) transceiver state into a Snapshot. A Service runs
// the collector on a ticker and fans each snapshot out to:
//
//   - MQTT: one retained message per entity on <prefix>/chassis/<entity>
//     and one per resource on <prefix>/chassis/<entity>/<resource>,
//     encoded as JSON or CBOR.
//   - InfluxDB: one point per entity, sensor, fan, module and channel.
//
// A Controller consumes <prefix>/command/<entity>/<resource> messages:
//
//	{"action": "led_on"}
//	{"action": "fan_speed", "value": 12000}
//	{"action": "threshold_high", "value": 90}
//	{"action": "tx_disable", "channel": 2}
//
// Commands are executed one at a time, which also serialises the
// read-modify-write transceiver controls.
package telemetry
