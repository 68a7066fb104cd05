package chassis

import (
	"fmt"

	"github.com/nerrad567/sdi-core/internal/media"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// MediaPresenceGet reports whether a module sits in the cage.
func (r *Registry) MediaPresenceGet(res *Resource) (bool, error) {
	s, err := settingsOf[*MediaSettings](res)
	if err != nil {
		return false, err
	}
	v, err := r.io.GetString(s.Path, s.Status)
	if err != nil {
		return false, err
	}
	return v != s.NotPresent, nil
}

// MediaModule probes the module in the cage behind res.
func (r *Registry) MediaModule(res *Resource) (*media.Module, error) {
	s, err := settingsOf[*MediaSettings](res)
	if err != nil {
		return nil, err
	}
	if r.acc == nil {
		return nil, fmt.Errorf("%w: no register transport for %s", sdierr.ErrNotSupported, res)
	}
	return media.Open(r.acc, s.Module)
}

// MediaModuleMonitorStatusGet returns the raised module alarm and warning flags.
func (r *Registry) MediaModuleMonitorStatusGet(res *Resource, flags media.MonitorFlags) (media.MonitorFlags, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return 0, err
	}
	return m.ModuleMonitorStatus(flags)
}

// MediaChannelMonitorStatusGet returns the raised channel alarm and warning flags.
func (r *Registry) MediaChannelMonitorStatusGet(res *Resource, ch int, flags media.ChannelMonitorFlags) (media.ChannelMonitorFlags, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return 0, err
	}
	return m.ChannelMonitorStatus(ch, flags)
}

// MediaChannelStatusGet returns the set channel state flags.
func (r *Registry) MediaChannelStatusGet(res *Resource, ch int, flags media.ChannelStatusFlags) (media.ChannelStatusFlags, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return 0, err
	}
	return m.ChannelStatus(ch, flags)
}

// MediaTxControl enables or disables the transmitter of a channel.
func (r *Registry) MediaTxControl(res *Resource, ch int, enable bool) error {
	m, err := r.MediaModule(res)
	if err != nil {
		return err
	}
	return m.TxControl(ch, enable)
}

// MediaTxControlStatusGet reports whether the transmitter of a channel is enabled.
func (r *Registry) MediaTxControlStatusGet(res *Resource, ch int) (bool, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return false, err
	}
	return m.TxControlStatus(ch)
}

// MediaCDRSet enables or disables clock and data recovery on a channel.
func (r *Registry) MediaCDRSet(res *Resource, ch int, enable bool) error {
	m, err := r.MediaModule(res)
	if err != nil {
		return err
	}
	return m.CDRSet(ch, enable)
}

// MediaCDRStatusGet reports whether clock and data recovery is enabled.
func (r *Registry) MediaCDRStatusGet(res *Resource, ch int) (bool, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return false, err
	}
	return m.CDRStatus(ch)
}

// MediaSpeedGet returns the nominal rate of the module.
func (r *Registry) MediaSpeedGet(res *Resource) (media.Speed, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return 0, err
	}
	return m.Speed(), nil
}

// MediaParameterGet reads an identification field of the module.
func (r *Registry) MediaParameterGet(res *Resource, p media.Param) (uint32, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return 0, err
	}
	return m.Parameter(p)
}

// MediaVendorInfoGet reads a vendor identification string.
func (r *Registry) MediaVendorInfoGet(res *Resource, kind media.VendorInfo) (string, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return "", err
	}
	return m.VendorInfo(kind)
}

// MediaTransceiverCodeGet reads the compliance code block.
func (r *Registry) MediaTransceiverCodeGet(res *Resource) ([8]byte, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return [8]byte{}, err
	}
	return m.TransceiverCode()
}

// MediaThresholdGet reads an alarm or warning limit.
func (r *Registry) MediaThresholdGet(res *Resource, t media.Threshold) (float64, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return 0, err
	}
	return m.Threshold(t)
}

// MediaModuleMonitorGet reads the module temperature or supply voltage.
func (r *Registry) MediaModuleMonitorGet(res *Resource, mon media.ModuleMonitor) (float64, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return 0, err
	}
	return m.ModuleMonitor(mon)
}

// MediaChannelMonitorGet reads a per-channel optical measurement.
func (r *Registry) MediaChannelMonitorGet(res *Resource, ch int, mon media.ChannelMonitor) (float64, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return 0, err
	}
	return m.ChannelMonitor(ch, mon)
}

// MediaFeatureSupportGet reports the optional capabilities of the module.
func (r *Registry) MediaFeatureSupportGet(res *Resource) (media.Features, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return media.Features{}, err
	}
	return m.FeatureSupport()
}

// MediaRead returns raw bytes of the module's lower page.
func (r *Registry) MediaRead(res *Resource, offset uint16, n int) ([]byte, error) {
	m, err := r.MediaModule(res)
	if err != nil {
		return nil, err
	}
	return m.Read(offset, n)
}

// MediaWrite stores raw bytes into the module's lower page.
func (r *Registry) MediaWrite(res *Resource, offset uint16, data []byte) error {
	m, err := r.MediaModule(res)
	if err != nil {
		return err
	}
	return m.Write(offset, data)
}

// MediaLEDSet sets the port LED for a channel speed.
func (r *Registry) MediaLEDSet(res *Resource, ch int, speed media.Speed) error {
	m, err := r.MediaModule(res)
	if err != nil {
		return err
	}
	return m.LEDSet(ch, speed)
}

// MediaWavelengthSet tunes the module wavelength.
func (r *Registry) MediaWavelengthSet(res *Resource, nm float64) error {
	m, err := r.MediaModule(res)
	if err != nil {
		return err
	}
	return m.WavelengthSet(nm)
}
