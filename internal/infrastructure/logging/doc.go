// Package logging provides structured logging for the chassis daemon and CLI.
//
// This package wraps Go's standard log/slog package. Every entry carries
// service=sdi and the build version.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	reg.SetLogger(logger.With("component", "chassis"))
//	logger.Error("media probe failed", "port", "PORT1", "error", err)
package logging
