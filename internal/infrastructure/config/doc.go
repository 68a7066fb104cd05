// Package config loads the sdid and sdictl configuration file.
//
// Values come from built-in defaults, then the YAML file, then SDI_*
// environment variables. Validate reports every problem at once.
//
// The chassis section only names the entity list and device settings
// documents; package cfgtree parses those.
//
//	cfg, err := config.Load("/etc/sdi/config.yaml")
//	if err != nil {
//	    return err
//	}
//	entities := cfg.Chassis.EntityConfig
package config
