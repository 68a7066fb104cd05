// Package influxdb writes chassis telemetry to InfluxDB v2.
//
// It wraps influxdb-client-go with connection management, health checks
// and one point builder per measurement:
//
//	chassis_entity       entity, type          present, fault
//	chassis_temperature  entity, sensor        celsius, alert
//	chassis_fan          entity, fan           rpm, fault
//	media_module         entity, port          celsius, volts
//	media_channel        entity, port, channel rx_power_mw, tx_bias_ma, tx_power_mw
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteFan("fan_tray-1", "FAN1A", 12000, false, time.Now())
//
// Writes are batched by the client library according to batch_size and
// flush_interval. Batch failures are reported through SetOnError.
package influxdb
