package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the chassis telemetry.
const (
	MeasurementEntity       = "chassis_entity"
	MeasurementTemperature  = "chassis_temperature"
	MeasurementFan          = "chassis_fan"
	MeasurementMedia        = "media_module"
	MeasurementMediaChannel = "media_channel"
)

// EntityPoint records presence and fault state of an entity.
func EntityPoint(entity, entityType string, present, fault bool, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementEntity,
		map[string]string{
			"entity": entity,
			"type":   entityType,
		},
		map[string]any{
			"present": present,
			"fault":   fault,
		},
		ts,
	)
}

// TemperaturePoint records a thermal sensor reading in degrees Celsius.
func TemperaturePoint(entity, sensor string, celsius int, alert bool, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementTemperature,
		map[string]string{
			"entity": entity,
			"sensor": sensor,
		},
		map[string]any{
			"celsius": celsius,
			"alert":   alert,
		},
		ts,
	)
}

// FanPoint records a fan speed in RPM.
func FanPoint(entity, fan string, rpm uint64, fault bool, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementFan,
		map[string]string{
			"entity": entity,
			"fan":    fan,
		},
		map[string]any{
			"rpm":   rpm,
			"fault": fault,
		},
		ts,
	)
}

// MediaPoint records the module-level diagnostics of a transceiver.
func MediaPoint(entity, port string, celsius, volts float64, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementMedia,
		map[string]string{
			"entity": entity,
			"port":   port,
		},
		map[string]any{
			"celsius": celsius,
			"volts":   volts,
		},
		ts,
	)
}

// MediaChannelPoint records the optical diagnostics of one channel.
func MediaChannelPoint(entity, port string, channel int, rxMW, biasMA, txMW float64, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementMediaChannel,
		map[string]string{
			"entity":  entity,
			"port":    port,
			"channel": strconv.Itoa(channel),
		},
		map[string]any{
			"rx_power_mw": rxMW,
			"tx_bias_ma":  biasMA,
			"tx_power_mw": txMW,
		},
		ts,
	)
}

// Write queues points for the next batch. It is a no-op when the client
// is not connected.
func (c *Client) Write(points ...*write.Point) {
	if !c.IsConnected() {
		return
	}
	for _, p := range points {
		c.writer.WritePoint(p)
	}
}

// WriteEntity queues an EntityPoint.
func (c *Client) WriteEntity(entity, entityType string, present, fault bool, ts time.Time) {
	c.Write(EntityPoint(entity, entityType, present, fault, ts))
}

// WriteTemperature queues a TemperaturePoint.
func (c *Client) WriteTemperature(entity, sensor string, celsius int, alert bool, ts time.Time) {
	c.Write(TemperaturePoint(entity, sensor, celsius, alert, ts))
}

// WriteFan queues a FanPoint.
func (c *Client) WriteFan(entity, fan string, rpm uint64, fault bool, ts time.Time) {
	c.Write(FanPoint(entity, fan, rpm, fault, ts))
}

// WriteMedia queues a MediaPoint.
func (c *Client) WriteMedia(entity, port string, celsius, volts float64, ts time.Time) {
	c.Write(MediaPoint(entity, port, celsius, volts, ts))
}

// WriteMediaChannel queues a MediaChannelPoint.
func (c *Client) WriteMediaChannel(entity, port string, channel int, rxMW, biasMA, txMW float64, ts time.Time) {
	c.Write(MediaChannelPoint(entity, port, channel, rxMW, biasMA, txMW, ts))
}
