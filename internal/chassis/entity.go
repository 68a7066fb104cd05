package chassis

import (
	"errors"
	"fmt"

	"github.com/nerrad567/sdi-core/internal/media"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

func checkEntity(e *Entity) error {
	if e == nil {
		return fmt.Errorf("%w: nil entity", sdierr.ErrInvalidArgument)
	}
	return nil
}

// PresenceGet reports whether the entity is installed. Fixed entities are
// always present.
func (r *Registry) PresenceGet(e *Entity) (bool, error) {
	if err := checkEntity(e); err != nil {
		return false, err
	}
	if e.Presence.Fixed {
		return true, nil
	}

	v, err := r.io.GetString(e.Presence.Path, e.Presence.Name)
	if err != nil {
		return false, err
	}
	return v == e.Presence.Present, nil
}

// FaultStatusGet reports whether the entity signals a fault. An entity
// without a fault policy gets ErrPermissionDenied. A failed read is
// reported as a fault together with the read error.
func (r *Registry) FaultStatusGet(e *Entity) (bool, error) {
	if err := checkEntity(e); err != nil {
		return false, err
	}
	if e.Fault == nil {
		return false, fmt.Errorf("%w: %s has no fault policy", sdierr.ErrPermissionDenied, e)
	}

	v, err := r.io.GetString(e.Fault.Path, e.Fault.Name)
	if err != nil {
		return true, err
	}
	return v == e.Fault.Fault, nil
}

// PSUOutputPowerStatusGet reports whether a PSU tray delivers output power.
func (r *Registry) PSUOutputPowerStatusGet(e *Entity) (bool, error) {
	if err := checkEntity(e); err != nil {
		return false, err
	}
	if e.Type != EntityPSUTray || e.Power == nil {
		return false, fmt.Errorf("%w: %s has no power policy", sdierr.ErrPermissionDenied, e)
	}

	v, err := r.io.GetString(e.Power.StatusPath, e.Power.StatusName)
	if err != nil {
		return false, err
	}
	return v == e.Power.Present, nil
}

// EntityInit prepares an installed entity for use. Transceiver cages on the
// entity are probed and their identifiers logged.
func (r *Registry) EntityInit(e *Entity) error {
	present, err := r.PresenceGet(e)
	if err != nil {
		return fmt.Errorf("entity %s presence: %w", e.Name, err)
	}
	if !present {
		return fmt.Errorf("%w: entity %s is not present", sdierr.ErrPermissionDenied, e.Name)
	}

	if r.acc == nil {
		return nil
	}
	for _, res := range e.resources {
		s, ok := res.Settings.(*MediaSettings)
		if !ok {
			continue
		}
		if in, err := r.MediaPresenceGet(res); err != nil || !in {
			continue
		}
		id, err := media.Identifier(r.acc, s.Module)
		if err != nil {
			r.logger.Warn("media probe failed", "entity", e.Name, "media", res.Alias, "error", err)
			continue
		}
		r.logger.Info("media detected", "entity", e.Name, "media", res.Alias,
			"module", s.Module, "identifier", fmt.Sprintf("%#02x", id))
	}
	return nil
}

// SysInit initialises every entity. Every failure is logged; the returned
// error joins all of them.
func (r *Registry) SysInit() error {
	var errs []error
	for _, e := range r.entities {
		if err := r.EntityInit(e); err != nil {
			r.logger.Error("entity init failed", "entity", e.Name, "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		r.logger.Warn("chassis init incomplete", "failed", len(errs), "entities", len(r.entities))
		return errors.Join(errs...)
	}
	r.logger.Info("chassis initialised", "entities", len(r.entities))
	return nil
}

// Reset performs a reset of the entity. Only cold reset is supported, and
// only when the entity has a reset attribute.
func (r *Registry) Reset(e *Entity, t ResetType) error {
	if err := checkEntity(e); err != nil {
		return err
	}
	if t != ResetCold || e.PowerControl.Reset == "" {
		return fmt.Errorf("%w: reset type %d on %s", sdierr.ErrNotSupported, int(t), e)
	}
	return r.io.SetUint(e.PowerControl.Path, e.PowerControl.Reset, 1)
}

// PowerStatusControl switches the entity's power on or off.
func (r *Registry) PowerStatusControl(e *Entity, on bool) error {
	if err := checkEntity(e); err != nil {
		return err
	}
	pc := e.PowerControl
	if pc.PowerHdl == "" {
		return fmt.Errorf("%w: power control on %s", sdierr.ErrNotSupported, e)
	}

	val := pc.PowerOff
	if on {
		val = pc.PowerOn
	}
	return r.io.SetString(pc.Path, pc.PowerHdl, val)
}
