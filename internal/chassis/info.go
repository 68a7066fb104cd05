package chassis

import (
	"errors"
	"fmt"

	"github.com/nerrad567/sdi-core/internal/eeprom"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// boardInstance is the system board whose identity every other entity
// inherits vendor, platform and service tag from.
const boardInstance = 1

// EntityInfoRead decodes the identity EEPROM behind res and completes the
// record with the fields owned by other parts of the chassis.
//
// Entities other than the system board inherit VendorName, ServiceTag and
// PlatformName from system board 1; a failure there is logged and ignored.
// Fan trays report their fan count and slowest maximum speed. PSU trays
// additionally report power type and rating.
func (r *Registry) EntityInfoRead(res *Resource) (*eeprom.DeviceInfo, error) {
	s, err := settingsOf[*EntityInfoSettings](res)
	if err != nil {
		return nil, err
	}

	e := res.entity
	if e == nil {
		return nil, fmt.Errorf("%w: %s is not registered", sdierr.ErrInvalidArgument, res)
	}

	info, err := r.readIdentity(s)
	if err != nil {
		return nil, err
	}

	if e.Type != EntitySystemBoard {
		r.inheritBoard(info)
	}

	switch e.Type {
	case EntityFanTray:
		if err := r.fillFanTray(e, info); err != nil {
			return nil, err
		}
	case EntityPSUTray:
		if err := r.fillPSUTray(e, info); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func (r *Registry) readIdentity(s *EntityInfoSettings) (*eeprom.DeviceInfo, error) {
	size, err := r.io.DataSize(s.Path, s.Name)
	if err != nil {
		return nil, fmt.Errorf("eeprom size: %w", err)
	}
	if size == 0 {
		return nil, sdierr.NewIOError("size", s.Path+s.Name, errors.New("empty eeprom image"))
	}

	buf, err := r.io.Data(s.Path, s.Name, size)
	if err != nil {
		return nil, fmt.Errorf("eeprom read: %w", err)
	}
	return eeprom.Decode(s.Format, buf)
}

func (r *Registry) inheritBoard(info *eeprom.DeviceInfo) {
	board := r.Find(EntitySystemBoard, boardInstance)
	if board == nil || board.info == nil {
		r.logger.Debug("no system board identity to inherit")
		return
	}

	s, ok := board.info.Settings.(*EntityInfoSettings)
	if !ok {
		return
	}
	b, err := r.readIdentity(s)
	if err != nil {
		r.logger.Debug("system board identity unavailable", "error", err)
		return
	}

	info.VendorName = b.VendorName
	info.ServiceTag = b.ServiceTag
	info.PlatformName = b.PlatformName
}

// slowestFan returns the number of fans on e and the smallest maximum
// speed among them. Fans whose maximum cannot be read are skipped; a fan
// reporting 0 makes the result 0.
func (r *Registry) slowestFan(e *Entity) (uint, uint) {
	var count, slowest uint
	found := false
	for _, res := range e.resources {
		if res.Type != ResourceFan {
			continue
		}
		count++

		speed, err := r.FanMaxSpeed(res)
		if err != nil {
			r.logger.Debug("fan max speed unavailable", "entity", e.Name, "fan", res.Alias, "error", err)
			continue
		}
		if !found || uint(speed) < slowest {
			slowest = uint(speed)
			found = true
		}
	}
	return count, slowest
}

func (r *Registry) fillFanTray(e *Entity, info *eeprom.DeviceInfo) error {
	count, slowest := r.slowestFan(e)
	if count == 0 || slowest == 0 {
		return fmt.Errorf("%w: fan tray %s reports %d fans with max speed %d",
			sdierr.ErrNotSupported, e.Name, count, slowest)
	}
	info.NumFans = count
	info.MaxSpeed = slowest
	return nil
}

func (r *Registry) fillPSUTray(e *Entity, info *eeprom.DeviceInfo) error {
	if e.Power == nil {
		return fmt.Errorf("%w: %s has no power policy", sdierr.ErrPermissionDenied, e)
	}

	info.PowerType = e.Power.Type
	info.NumFans, info.MaxSpeed = r.slowestFan(e)

	rating, err := r.io.GetUint(e.Power.RatingPath, e.Power.RatingName)
	if err != nil {
		return fmt.Errorf("psu rating: %w", err)
	}
	info.PowerRating = uint(rating / 1000)
	return nil
}
