package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nerrad567/sdi-core/internal/chassis"
	"github.com/nerrad567/sdi-core/internal/infrastructure/config"
	"github.com/nerrad567/sdi-core/internal/infrastructure/logging"
	"github.com/nerrad567/sdi-core/internal/media"
	"github.com/nerrad567/sdi-core/internal/sdierr"
	"github.com/nerrad567/sdi-core/internal/sysfs"
)

// options holds the global flags shared by every subcommand.
type options struct {
	configPath string
	entities   string
	devices    string
	sysfsRoot  string
	mediaDir   string
	color      string
	verbose    bool
}

func (o *options) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "daemon config file (default: built-in defaults and SDI_* environment)")
	fs.StringVar(&o.entities, "entities", "", "entity list document, overrides chassis.entity_config")
	fs.StringVar(&o.devices, "devices", "", "device settings document, overrides chassis.device_config")
	fs.StringVar(&o.sysfsRoot, "sysfs-root", "", "prefix for every sysfs path, overrides chassis.sysfs_root")
	fs.StringVar(&o.mediaDir, "media-dir", "", "directory of module<N>.bin transceiver memory images")
	fs.StringVar(&o.color, "color", "auto", "colour output: auto, always or never")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log debug messages to stderr")
}

// config resolves the chassis configuration: the config file or the
// defaults first, then the command-line overrides.
func (o *options) config() (*config.ChassisConfig, error) {
	var cfg *config.Config
	if o.configPath == "" {
		cfg = config.Default()
	} else {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	c := cfg.Chassis
	if o.entities != "" {
		c.EntityConfig = o.entities
	}
	if o.devices != "" {
		c.DeviceConfig = o.devices
	}
	if o.sysfsRoot != "" {
		c.SysfsRoot = o.sysfsRoot
	}
	if o.mediaDir != "" {
		c.Media.DumpDir = o.mediaDir
		c.Media.Enabled = true
	}
	return &c, nil
}

func (o *options) logger() *logging.Logger {
	return logging.NewCommandLogger(os.Stderr, o.verbose, version).With("component", "sdictl")
}

// registry loads the chassis. A structurally broken document is returned
// as an error matching sdierr.ErrConfigCorrupted instead of panicking.
func (o *options) registry() (reg *chassis.Registry, err error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			var cfgErr *sdierr.ConfigError
			if e, ok := r.(error); ok && errors.As(e, &cfgErr) {
				reg, err = nil, cfgErr
				return
			}
			panic(r)
		}
	}()

	chassisOpts := []chassis.Option{chassis.WithLogger(o.logger())}
	if cfg.Media.I2CAddr != 0 {
		chassisOpts = append(chassisOpts, chassis.WithI2CAddr(cfg.Media.I2CAddr))
	}
	if cfg.Media.Enabled && cfg.Media.DumpDir != "" {
		chassisOpts = append(chassisOpts, chassis.WithTransport(media.NewFileTransport(cfg.Media.DumpDir)))
	}

	return chassis.Load(cfg.EntityConfig, cfg.DeviceConfig, sysfs.New(cfg.SysfsRoot), chassisOpts...)
}

// renderer returns a lipgloss renderer for w honouring --color.
func (o *options) renderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch o.color {
	case "always":
		r.SetColorProfile(termenv.ANSI256)
	case "never":
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// findEntity resolves an entity by type label and instance number.
func findEntity(reg *chassis.Registry, typ, instance string) (*chassis.Entity, error) {
	t, err := chassis.ParseEntityType(typ)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(instance)
	if err != nil {
		return nil, fmt.Errorf("%w: instance %q is not a number", sdierr.ErrInvalidArgument, instance)
	}
	e := reg.Find(t, n)
	if e == nil {
		return nil, fmt.Errorf("%w: no %s with instance %d", sdierr.ErrInvalidArgument, t.Label(), n)
	}
	return e, nil
}

// findResource resolves a resource by entity alias and resource alias.
func findResource(reg *chassis.Registry, entity, alias string) (*chassis.Resource, error) {
	e := reg.Lookup(entity)
	if e == nil {
		return nil, fmt.Errorf("%w: unknown entity %q", sdierr.ErrInvalidArgument, entity)
	}
	res := e.ResourceByAlias(alias)
	if res == nil {
		return nil, fmt.Errorf("%w: %s has no resource %q", sdierr.ErrInvalidArgument, e.Name, alias)
	}
	return res, nil
}

// onOff parses the state argument of the led and power commands.
func onOff(arg string) (bool, error) {
	switch arg {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w: state must be on or off, got %q", sdierr.ErrInvalidArgument, arg)
	}
}

// stateArgs validates a trailing on|off argument.
func stateArgs(n int) cobra.PositionalArgs {
	return cobra.MatchAll(cobra.ExactArgs(n), func(_ *cobra.Command, args []string) error {
		_, err := onOff(args[n-1])
		return err
	})
}
