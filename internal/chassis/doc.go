// Package chassis models a switch chassis as entities (system board, fan
// trays, PSU trays) that host typed resources (temperature sensors, fans,
// LEDs, identity EEPROMs, programmable logic and transceiver cages).
//
// # Registration
//
// A Registry is built once from two configuration trees: the entity list,
// which names each entity and its resources, and the device settings,
// which carry the sysfs locations behind them. Structural defects in either
// document are not recoverable: MustRegister panics with a
// *sdierr.ConfigError so a deployment that cannot describe its hardware
// never starts.
//
//	io := sysfs.New("")
//	reg, err := chassis.Load("/etc/sdi/entity.yaml", "/etc/sdi/device.yaml", io,
//	    chassis.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	if err := reg.SysInit(); err != nil {
//	    log.Warn("chassis init incomplete", "error", err)
//	}
//
// # Operations
//
// Entity and resource operations are methods on Registry so they share its
// sysfs collaborator and media transport. Every resource operation checks
// the resource type first and returns sdierr.ErrPermissionDenied when it
// does not match.
//
// # Thread Safety
//
// After registration the entity and resource lists are read-only. A
// temperature threshold set mutates the resource settings and is not
// synchronised. Transceiver read-modify-write controls must be serialised
// per module by the caller.
package chassis
