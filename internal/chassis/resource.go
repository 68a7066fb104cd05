package chassis

import (
	"fmt"

	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// settingsOf returns the settings of r when they are of type S.
func settingsOf[S Settings](r *Resource) (S, error) {
	var zero S
	if r == nil {
		return zero, fmt.Errorf("%w: nil resource", sdierr.ErrInvalidArgument)
	}
	s, ok := r.Settings.(S)
	if !ok {
		return zero, fmt.Errorf("%w: %s does not support %s operations",
			sdierr.ErrPermissionDenied, r, zero.resourceType().Label())
	}
	return s, nil
}

// TemperatureGet returns the sensor reading in degrees Celsius.
func (r *Registry) TemperatureGet(res *Resource) (int, error) {
	s, err := settingsOf[*TemperatureSettings](res)
	if err != nil {
		return 0, err
	}
	v, err := r.io.GetInt(s.Path, s.Name)
	if err != nil {
		return 0, err
	}
	return int(v / 1000), nil
}

// TemperatureThresholdGet returns a configured limit in degrees Celsius.
func (r *Registry) TemperatureThresholdGet(res *Resource, t ThresholdType) (int, error) {
	s, err := settingsOf[*TemperatureSettings](res)
	if err != nil {
		return 0, err
	}
	if !s.Thresholds {
		return 0, fmt.Errorf("%w: %s has no thresholds", sdierr.ErrNotSupported, res)
	}

	switch t {
	case ThresholdLow:
		return s.Low, nil
	case ThresholdHigh:
		return s.High, nil
	default:
		return 0, fmt.Errorf("%w: threshold type %d", sdierr.ErrPermissionDenied, int(t))
	}
}

// TemperatureThresholdSet replaces a configured limit.
func (r *Registry) TemperatureThresholdSet(res *Resource, t ThresholdType, val int) error {
	s, err := settingsOf[*TemperatureSettings](res)
	if err != nil {
		return err
	}
	if !s.Thresholds {
		return fmt.Errorf("%w: %s has no thresholds", sdierr.ErrNotSupported, res)
	}

	switch t {
	case ThresholdLow:
		s.Low = val
	case ThresholdHigh:
		s.High = val
	default:
		return fmt.Errorf("%w: threshold type %d", sdierr.ErrPermissionDenied, int(t))
	}
	return nil
}

// TemperatureStatusGet reports an alert when the reading is outside the
// configured limits. A sensor without thresholds never alerts.
func (r *Registry) TemperatureStatusGet(res *Resource) (bool, error) {
	temp, err := r.TemperatureGet(res)
	if err != nil {
		return false, err
	}
	s := res.Settings.(*TemperatureSettings)
	if !s.Thresholds {
		return false, nil
	}
	return temp < s.Low || temp > s.High, nil
}

// FanMaxSpeed returns the maximum speed of a fan in RPM. The configured
// max_rpm is used when no max_get attribute exists.
func (r *Registry) FanMaxSpeed(res *Resource) (uint64, error) {
	s, err := settingsOf[*FanSettings](res)
	if err != nil {
		return 0, err
	}
	if s.Speed.MaxGet == "" {
		if s.Speed.MaxRPM > 0 {
			return s.Speed.MaxRPM, nil
		}
		return 0, fmt.Errorf("%w: %s has no maximum speed", sdierr.ErrPermissionDenied, res)
	}
	return r.io.GetUint(s.Path, s.Speed.MaxGet)
}

// FanSpeedGet returns the current fan speed in RPM.
func (r *Registry) FanSpeedGet(res *Resource) (uint64, error) {
	s, err := settingsOf[*FanSettings](res)
	if err != nil {
		return 0, err
	}
	if s.Speed.Get == "" {
		return 0, fmt.Errorf("%w: %s has no speed attribute", sdierr.ErrPermissionDenied, res)
	}
	return r.io.GetUint(s.Path, s.Speed.Get)
}

// FanSpeedSet drives the fan at rpm, scaled to the PWM range.
func (r *Registry) FanSpeedSet(res *Resource, rpm uint64) error {
	s, err := settingsOf[*FanSettings](res)
	if err != nil {
		return err
	}
	if s.Speed.MaxGet == "" || s.Speed.Set == "" {
		return fmt.Errorf("%w: %s has no speed control", sdierr.ErrPermissionDenied, res)
	}

	maxRPM, err := r.io.GetUint(s.Path, s.Speed.MaxGet)
	if err != nil {
		return err
	}
	if maxRPM == 0 {
		return fmt.Errorf("%w: %s reports zero maximum speed", sdierr.ErrNotSupported, res)
	}
	if rpm > maxRPM {
		return fmt.Errorf("%w: speed %d exceeds maximum %d", sdierr.ErrInvalidArgument, rpm, maxRPM)
	}

	pwm := s.Speed.MaxPWM * (rpm * 100 / maxRPM) / 100
	return r.io.SetUint(s.Path, s.Speed.Set, pwm)
}

// FanStatusGet reports whether the fan signals a fault.
func (r *Registry) FanStatusGet(res *Resource) (bool, error) {
	s, err := settingsOf[*FanSettings](res)
	if err != nil {
		return false, err
	}
	if s.Status.Get == "" {
		return false, fmt.Errorf("%w: %s has no status attribute", sdierr.ErrPermissionDenied, res)
	}

	v, err := r.io.GetString(s.Path, s.Status.Get)
	if err != nil {
		return false, err
	}
	return v == s.Status.Fault, nil
}

// LEDOn switches an LED on.
func (r *Registry) LEDOn(res *Resource) error {
	s, err := settingsOf[*LEDSettings](res)
	if err != nil {
		return err
	}
	return r.io.SetString(s.Path, s.Name, s.On)
}

// LEDOff switches an LED off.
func (r *Registry) LEDOff(res *Resource) error {
	s, err := settingsOf[*LEDSettings](res)
	if err != nil {
		return err
	}
	return r.io.SetString(s.Path, s.Name, s.Off)
}

// DigitDisplayLEDOn is not available on this platform.
func (r *Registry) DigitDisplayLEDOn(res *Resource) error {
	return fmt.Errorf("%w: digit display control", sdierr.ErrPermissionDenied)
}

// DigitDisplayLEDOff is not available on this platform.
func (r *Registry) DigitDisplayLEDOff(res *Resource) error {
	return fmt.Errorf("%w: digit display control", sdierr.ErrPermissionDenied)
}

// DigitDisplayLEDSet is not available on this platform.
func (r *Registry) DigitDisplayLEDSet(res *Resource, text string) error {
	return fmt.Errorf("%w: digit display control", sdierr.ErrPermissionDenied)
}

// NVRAMSize is not available on this platform.
func (r *Registry) NVRAMSize(res *Resource) (int, error) {
	return 0, fmt.Errorf("%w: nvram", sdierr.ErrNotSupported)
}

// NVRAMRead is not available on this platform.
func (r *Registry) NVRAMRead(res *Resource, offset int, buf []byte) error {
	return fmt.Errorf("%w: nvram", sdierr.ErrNotSupported)
}

// NVRAMWrite is not available on this platform.
func (r *Registry) NVRAMWrite(res *Resource, offset int, buf []byte) error {
	return fmt.Errorf("%w: nvram", sdierr.ErrNotSupported)
}

// PLDVersionGet reads the firmware version of a programmable logic device.
func (r *Registry) PLDVersionGet(res *Resource) (string, error) {
	s, err := settingsOf[*UpgradablePLDSettings](res)
	if err != nil {
		return "", err
	}
	if s.Version == "" {
		return "", fmt.Errorf("%w: %s has no version attribute", sdierr.ErrNotSupported, res)
	}
	return r.io.GetString(s.Path, s.Version)
}
