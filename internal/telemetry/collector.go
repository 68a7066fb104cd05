package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sdi-core/internal/chassis"
	"github.com/nerrad567/sdi-core/internal/media"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Collector reads the chassis into snapshots.
//
// Read failures never abort a collection: they are logged and recorded in
// the Errors field of the affected entity.
type Collector struct {
	reg          *chassis.Registry
	site         string
	includeMedia bool
	logger       Logger
	now          func() time.Time
}

// NewCollector returns a collector over reg. Transceiver state is read
// only when includeMedia is set.
func NewCollector(reg *chassis.Registry, site string, includeMedia bool) *Collector {
	return &Collector{
		reg:          reg,
		site:         site,
		includeMedia: includeMedia,
		logger:       noopLogger{},
		now:          time.Now,
	}
}

// SetLogger sets the logger used for read failures.
func (c *Collector) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// Collect reads every entity in registration order. It stops early only
// when ctx is cancelled.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		Site:      c.site,
		Timestamp: c.now().UTC(),
	}

	for _, e := range c.reg.Entities() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collect aborted: %w", err)
		}
		snap.Entities = append(snap.Entities, c.collectEntity(e))
	}
	return snap, nil
}

func (c *Collector) collectEntity(e *chassis.Entity) EntityState {
	st := EntityState{
		Name:     e.Name,
		Type:     e.Type.Label(),
		Instance: e.Instance,
	}
	fail := func(what string, err error) {
		c.logger.Warn("telemetry read failed", "entity", e.Name, "read", what, "error", err)
		st.Errors = append(st.Errors, fmt.Sprintf("%s: %v", what, err))
	}

	present, err := c.reg.PresenceGet(e)
	if err != nil {
		fail("presence", err)
		return st
	}
	st.Present = present
	if !present {
		return st
	}

	fault, err := c.reg.FaultStatusGet(e)
	switch {
	case errors.Is(err, sdierr.ErrPermissionDenied):
	case err != nil:
		st.Fault = &fault
		fail("fault", err)
	default:
		st.Fault = &fault
	}
	if e.Type == chassis.EntityPSUTray {
		ok, err := c.reg.PSUOutputPowerStatusGet(e)
		if err != nil {
			fail("power", err)
		} else {
			st.PowerOK = &ok
		}
	}

	for _, res := range e.Resources() {
		switch res.Type {
		case chassis.ResourceTemperature:
			t, err := c.temperature(res)
			if err != nil {
				fail(res.Alias, err)
				continue
			}
			st.Temperatures = append(st.Temperatures, t)
		case chassis.ResourceFan:
			f, err := c.fan(res)
			if err != nil {
				fail(res.Alias, err)
				continue
			}
			st.Fans = append(st.Fans, f)
		case chassis.ResourceMedia:
			if !c.includeMedia {
				continue
			}
			m, err := c.media(res)
			if err != nil {
				fail(res.Alias, err)
			}
			st.Media = append(st.Media, m)
		}
	}
	return st
}

func (c *Collector) temperature(res *chassis.Resource) (TemperatureState, error) {
	t := TemperatureState{Alias: res.Alias}
	var err error
	if t.Celsius, err = c.reg.TemperatureGet(res); err != nil {
		return t, err
	}
	if t.Alert, err = c.reg.TemperatureStatusGet(res); err != nil {
		return t, err
	}
	return t, nil
}

func (c *Collector) fan(res *chassis.Resource) (FanState, error) {
	f := FanState{Alias: res.Alias}
	var err error
	if f.RPM, err = c.reg.FanSpeedGet(res); err != nil {
		return f, err
	}
	f.Fault, err = c.reg.FanStatusGet(res)
	if errors.Is(err, sdierr.ErrPermissionDenied) {
		// no status attribute configured
		err = nil
	}
	return f, err
}

func (c *Collector) media(res *chassis.Resource) (MediaState, error) {
	m := MediaState{Alias: res.Alias}
	present, err := c.reg.MediaPresenceGet(res)
	if err != nil || !present {
		return m, err
	}
	m.Present = true

	mod, err := c.reg.MediaModule(res)
	if errors.Is(err, sdierr.ErrNotSupported) {
		return m, nil
	}
	if err != nil {
		return m, err
	}

	m.Speed = mod.Speed().String()
	if m.Vendor, err = mod.VendorInfo(media.VendorName); err != nil {
		return m, err
	}
	if m.PartNumber, err = mod.VendorInfo(media.VendorPartNumber); err != nil {
		return m, err
	}
	if m.Serial, err = mod.VendorInfo(media.VendorSerial); err != nil {
		return m, err
	}
	if m.Celsius, err = mod.ModuleMonitor(media.MonitorTemperature); err != nil {
		return m, err
	}
	if m.Volts, err = mod.ModuleMonitor(media.MonitorVoltage); err != nil {
		return m, err
	}

	for ch := range mod.Channels() {
		cs, err := channel(mod, ch)
		if err != nil {
			return m, err
		}
		m.Channels = append(m.Channels, cs)
	}
	return m, nil
}

func channel(mod *media.Module, ch int) (ChannelState, error) {
	cs := ChannelState{Channel: ch}
	var err error
	if cs.RxPowerMW, err = mod.ChannelMonitor(ch, media.MonitorRxPower); err != nil {
		return cs, err
	}
	if cs.TxBiasMA, err = mod.ChannelMonitor(ch, media.MonitorTxBias); err != nil {
		return cs, err
	}
	tx, err := mod.ChannelMonitor(ch, media.MonitorTxPower)
	switch {
	case err == nil:
		cs.TxPowerMW = &tx
	case !errors.Is(err, sdierr.ErrNotSupported):
		return cs, err
	}
	if cs.TxEnabled, err = mod.TxControlStatus(ch); err != nil {
		return cs, err
	}
	return cs, nil
}
