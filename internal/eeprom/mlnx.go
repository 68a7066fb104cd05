package eeprom

import (
	"bytes"
	"fmt"

	"github.com/nerrad567/sdi-core/internal/sdierr"
)

const mlnxMarker = "MLNX"

// Fan tray layout. Block offsets are stored as multiples of fanMultiplier.
const (
	fanMultiplier     = 16
	fanSanityOffset   = 8
	fanBlock1Start    = 12
	fanBlock1Type     = 1
	fanSerialOffset   = 8
	fanSerialLen      = 24
	fanPartOffset     = 32
	fanPartLen        = 20
	fanRevOffset      = 52
	fanRevLen         = 4
	fanProductOffset  = 60
	fanProductLen     = 64
	fanBlock2Start    = 14
	fanBlock2Type     = 5
	fanAirFlowOffset  = 14
	fanAirFlowNormal  = 1
	fanAirFlowReverse = 2
)

// PSU layout: fields follow the marker back to back.
const (
	psuSerialLen = 24
	psuPartLen   = 20
	psuRevLen    = 4
)

// field reads a fixed-width string at off, copying at most n-1 bytes.
func field(buf []byte, off, n int) (string, error) {
	if off+n > len(buf) {
		return "", fmt.Errorf("%w: field at %d+%d overruns %d byte image",
			sdierr.ErrInvalidArgument, off, n, len(buf))
	}
	return cstring(buf[off:off+n], n), nil
}

func decodeFanMLNX(buf []byte) (*DeviceInfo, error) {
	if len(buf) <= fanBlock2Start+1 {
		return nil, fmt.Errorf("%w: fan image of %d bytes has no block table",
			sdierr.ErrInvalidArgument, len(buf))
	}

	flowOff := int(buf[fanBlock2Start])*fanMultiplier + fanAirFlowOffset
	if flowOff >= len(buf) {
		return nil, fmt.Errorf("%w: air flow offset %d outside %d byte image",
			sdierr.ErrInvalidArgument, flowOff, len(buf))
	}

	if !bytes.Equal(buf[fanSanityOffset:fanSanityOffset+len(mlnxMarker)], []byte(mlnxMarker)) {
		return nil, fmt.Errorf("%w: fan eeprom sanity string missing", sdierr.ErrValidationFailed)
	}
	if buf[fanBlock1Start+1] != fanBlock1Type {
		return nil, fmt.Errorf("%w: fan eeprom block 1 type %d, want %d",
			sdierr.ErrValidationFailed, buf[fanBlock1Start+1], fanBlock1Type)
	}

	base := int(buf[fanBlock1Start]) * fanMultiplier
	info := &DeviceInfo{}

	var err error
	if info.PPID, err = field(buf, base+fanSerialOffset, min(fanSerialLen, PPIDCap)); err != nil {
		return nil, err
	}
	if info.PartNumber, err = field(buf, base+fanPartOffset, min(fanPartLen, PartNumberCap)); err != nil {
		return nil, err
	}
	if info.HWRevision, err = field(buf, base+fanRevOffset, min(fanRevLen, HWRevisionCap)); err != nil {
		return nil, err
	}
	if info.ProductName, err = field(buf, base+fanProductOffset, min(fanProductLen, ProductNameCap)); err != nil {
		return nil, err
	}

	if buf[fanBlock2Start+1] != fanBlock2Type {
		return nil, fmt.Errorf("%w: fan eeprom block 2 type %d, want %d",
			sdierr.ErrValidationFailed, buf[fanBlock2Start+1], fanBlock2Type)
	}

	switch buf[flowOff] {
	case fanAirFlowNormal:
		info.AirFlow = AirFlowNormal
	case fanAirFlowReverse:
		info.AirFlow = AirFlowReverse
	default:
		return nil, fmt.Errorf("%w: fan air flow byte %#x", sdierr.ErrInvalidFormat, buf[flowOff])
	}

	return info, nil
}

func decodePSUMLNX(buf []byte) (*DeviceInfo, error) {
	idx := -1
	for i := 0; i < len(buf)-len(mlnxMarker); i++ {
		if bytes.Equal(buf[i:i+len(mlnxMarker)], []byte(mlnxMarker)) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: psu eeprom sanity string missing", sdierr.ErrValidationFailed)
	}

	info := &DeviceInfo{ProductName: "N/A"}
	pos := idx + len(mlnxMarker)

	var err error
	if info.PPID, err = field(buf, pos, min(psuSerialLen, PPIDCap)); err != nil {
		return nil, err
	}
	pos += psuSerialLen
	if info.PartNumber, err = field(buf, pos, min(psuPartLen, PartNumberCap)); err != nil {
		return nil, err
	}
	pos += psuPartLen
	if info.HWRevision, err = field(buf, pos, min(psuRevLen, HWRevisionCap)); err != nil {
		return nil, err
	}

	return info, nil
}
