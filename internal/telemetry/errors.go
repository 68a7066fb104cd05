package telemetry

import "errors"

var (
	// ErrUnknownFormat is returned for a payload format other than json or cbor.
	ErrUnknownFormat = errors.New("telemetry: unknown payload format")

	// ErrUnknownTarget is returned when a command names an entity or
	// resource that is not registered.
	ErrUnknownTarget = errors.New("telemetry: unknown command target")

	// ErrUnknownAction is returned for an unrecognised command action.
	ErrUnknownAction = errors.New("telemetry: unknown command action")

	// ErrInvalidCommand is returned when a command payload cannot be decoded.
	ErrInvalidCommand = errors.New("telemetry: invalid command")

	// ErrQueueFull is returned when commands arrive faster than they run.
	ErrQueueFull = errors.New("telemetry: command queue full")
)
