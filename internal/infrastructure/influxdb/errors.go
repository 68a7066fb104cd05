package influxdb

import "errors"

// Sentinels returned by Client; match with errors.Is.
var (
	ErrNotConnected     = errors.New("influxdb: client closed")
	ErrConnectionFailed = errors.New("influxdb: server unreachable")
	// ErrWriteFailed wraps batch failures handed to the SetOnError callback.
	ErrWriteFailed = errors.New("influxdb: batch write failed")
	ErrDisabled    = errors.New("influxdb: sink disabled")
)
