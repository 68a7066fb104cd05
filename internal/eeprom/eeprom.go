// Package eeprom decodes the identity EEPROM images found on a switch chassis
// into a DeviceInfo record.
//
// Three layouts are supported:
//
//   - SDI_EEPROM_SYS_ONIE: the ONIE TlvInfo format used by system boards
//   - SDI_EEPROM_FAN_MLNX: the Mellanox fan-tray block layout
//   - SDI_EEPROM_PSU_MLNX: the Mellanox PSU marker layout
//
// Decoders never trust length fields: every read is bounds-checked against
// the buffer and fails with sdierr.ErrInvalidArgument when it would overrun.
package eeprom

import (
	"fmt"
	"net"

	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// Format selects the decoder for an EEPROM image.
type Format int

const (
	FormatSysONIE Format = iota
	FormatFanMLNX
	FormatPSUMLNX
)

var formatNames = [...]string{
	FormatSysONIE: "SDI_EEPROM_SYS_ONIE",
	FormatFanMLNX: "SDI_EEPROM_FAN_MLNX",
	FormatPSUMLNX: "SDI_EEPROM_PSU_MLNX",
}

// String returns the configuration name of the format.
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// ParseFormat maps a configuration name to a Format. The match is exact and
// case-sensitive.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown eeprom format %q", sdierr.ErrConfigCorrupted, name)
}

// AirFlow is the fan air flow direction.
type AirFlow int

const (
	AirFlowUnknown AirFlow = iota
	AirFlowNormal
	AirFlowReverse
)

func (a AirFlow) String() string {
	switch a {
	case AirFlowNormal:
		return "normal"
	case AirFlowReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// PowerType is the input supply type of a PSU.
type PowerType int

const (
	PowerTypeUnknown PowerType = iota
	PowerTypeAC
	PowerTypeDC
)

func (p PowerType) String() string {
	switch p {
	case PowerTypeAC:
		return "AC"
	case PowerTypeDC:
		return "DC"
	default:
		return "unknown"
	}
}

// Field capacities. A decoded string is stored only when shorter than its
// field's capacity.
const (
	ProductNameCap  = 255
	PlatformNameCap = 255
	VendorNameCap   = 255
	PartNumberCap   = 32
	PPIDCap         = 32
	ServiceTagCap   = 32
	HWRevisionCap   = 8
	MACCap          = 6

	// extCap bounds the informational ONIE strings that have no
	// fixed destination.
	extCap = 255
)

// DeviceInfo is the decoded identity of a chassis entity.
type DeviceInfo struct {
	ProductName  string           `json:"product_name" cbor:"product_name"`
	PartNumber   string           `json:"part_number" cbor:"part_number"`
	PPID         string           `json:"ppid" cbor:"ppid"`
	BaseMAC      net.HardwareAddr `json:"base_mac,omitempty" cbor:"base_mac,omitempty"`
	MACCount     uint16           `json:"mac_count" cbor:"mac_count"`
	HWRevision   string           `json:"hw_revision" cbor:"hw_revision"`
	PlatformName string           `json:"platform_name" cbor:"platform_name"`
	VendorName   string           `json:"vendor_name" cbor:"vendor_name"`
	ServiceTag   string           `json:"service_tag" cbor:"service_tag"`
	NumFans      uint             `json:"num_fans" cbor:"num_fans"`
	MaxSpeed     uint             `json:"max_speed" cbor:"max_speed"`
	AirFlow      AirFlow          `json:"air_flow" cbor:"air_flow"`
	PowerType    PowerType        `json:"power_type" cbor:"power_type"`
	PowerRating  uint             `json:"power_rating" cbor:"power_rating"`

	MfgDate       string `json:"mfg_date,omitempty" cbor:"mfg_date,omitempty"`
	DeviceVersion uint8  `json:"device_version,omitempty" cbor:"device_version,omitempty"`
	ONIEVersion   string `json:"onie_version,omitempty" cbor:"onie_version,omitempty"`
	CountryCode   string `json:"country_code,omitempty" cbor:"country_code,omitempty"`
	Vendor        string `json:"vendor,omitempty" cbor:"vendor,omitempty"`
	DiagVersion   string `json:"diag_version,omitempty" cbor:"diag_version,omitempty"`
	CRC32         uint32 `json:"crc32,omitempty" cbor:"crc32,omitempty"`
}

// Decode parses buf with the decoder for format. On error the record is nil.
func Decode(format Format, buf []byte) (*DeviceInfo, error) {
	var (
		info *DeviceInfo
		err  error
	)
	switch format {
	case FormatSysONIE:
		info, err = decodeONIE(buf)
	case FormatFanMLNX:
		info, err = decodeFanMLNX(buf)
	case FormatPSUMLNX:
		info, err = decodePSUMLNX(buf)
	default:
		return nil, fmt.Errorf("%w: eeprom format %d", sdierr.ErrInvalidArgument, int(format))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	return info, nil
}

// cstring copies at most n-1 bytes of src, stopping at the first NUL.
func cstring(src []byte, n int) string {
	if n <= 0 {
		return ""
	}
	if len(src) > n-1 {
		src = src[:n-1]
	}
	for i, b := range src {
		if b == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}
