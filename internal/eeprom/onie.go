package eeprom

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// ONIEHeaderID is the magic string that opens every TlvInfo image.
const ONIEHeaderID = "TlvInfo\x00"

// ONIEHeaderSize is id(8) + version(1) + total-length(2).
const ONIEHeaderSize = 11

// ONIE TLV type codes.
const (
	TLVProductName   uint8 = 0x21
	TLVPartNumber    uint8 = 0x22
	TLVSerialNumber  uint8 = 0x23
	TLVBaseMAC       uint8 = 0x24
	TLVMfgDate       uint8 = 0x25
	TLVDeviceVersion uint8 = 0x26
	TLVLabelRevision uint8 = 0x27
	TLVPlatformName  uint8 = 0x28
	TLVONIEVersion   uint8 = 0x29
	TLVNumMACs       uint8 = 0x2a
	TLVManufacturer  uint8 = 0x2b
	TLVCountryCode   uint8 = 0x2c
	TLVVendor        uint8 = 0x2d
	TLVDiagVersion   uint8 = 0x2e
	TLVServiceTag    uint8 = 0x2f
	TLVVendorExt     uint8 = 0xfd
	TLVCRC32         uint8 = 0xfe
)

// TLV is one ONIE type-length-value record.
type TLV struct {
	Type  uint8
	Value []byte
}

func decodeONIE(buf []byte) (*DeviceInfo, error) {
	if len(buf) < ONIEHeaderSize {
		return nil, fmt.Errorf("%w: onie image of %d bytes is shorter than its header",
			sdierr.ErrInvalidArgument, len(buf))
	}

	remaining := int(binary.BigEndian.Uint16(buf[9:11]))
	if remaining >= len(buf) {
		return nil, fmt.Errorf("%w: onie total length %d does not fit a %d byte image",
			sdierr.ErrInvalidFormat, remaining, len(buf))
	}

	info := &DeviceInfo{
		ServiceTag: "N/A",
		HWRevision: "0",
	}

	pos := ONIEHeaderSize
	for remaining > 0 {
		if pos+2 > len(buf) {
			break
		}
		typ, n := buf[pos], int(buf[pos+1])
		if pos+2+n > len(buf) {
			break
		}
		info.applyTLV(typ, buf[pos+2:pos+2+n])

		remaining -= n + 2
		pos += n + 2
	}

	return info, nil
}

func (d *DeviceInfo) applyTLV(typ uint8, v []byte) {
	str := func(dst *string, capacity int) {
		if len(v) < capacity {
			*dst = cstring(v, len(v)+1)
		}
	}

	switch typ {
	case TLVProductName:
		str(&d.ProductName, ProductNameCap)
	case TLVPartNumber:
		str(&d.PartNumber, PartNumberCap)
	case TLVSerialNumber:
		str(&d.PPID, PPIDCap)
	case TLVBaseMAC:
		if len(v) <= MACCap {
			d.BaseMAC = append(net.HardwareAddr(nil), v...)
		}
	case TLVMfgDate:
		str(&d.MfgDate, extCap)
	case TLVDeviceVersion:
		if len(v) >= 1 {
			d.DeviceVersion = v[0]
		}
	case TLVLabelRevision:
		str(&d.HWRevision, HWRevisionCap)
	case TLVPlatformName:
		str(&d.PlatformName, PlatformNameCap)
	case TLVONIEVersion:
		str(&d.ONIEVersion, extCap)
	case TLVNumMACs:
		if len(v) >= 2 {
			d.MACCount = binary.BigEndian.Uint16(v)
		}
	case TLVManufacturer:
		str(&d.VendorName, VendorNameCap)
	case TLVCountryCode:
		str(&d.CountryCode, extCap)
	case TLVVendor:
		str(&d.Vendor, extCap)
	case TLVDiagVersion:
		str(&d.DiagVersion, extCap)
	case TLVServiceTag:
		str(&d.ServiceTag, ServiceTagCap)
	case TLVCRC32:
		if len(v) == 4 {
			d.CRC32 = binary.BigEndian.Uint32(v)
		}
	}
}

// EncodeONIE builds a TlvInfo image holding tlvs. The total length covers the
// TLV area only and one pad byte follows it, so the image is always accepted
// by the decoder. Values longer than 255 bytes are truncated.
func EncodeONIE(version uint8, tlvs []TLV) []byte {
	total := 0
	for _, t := range tlvs {
		total += 2 + min(len(t.Value), 255)
	}

	buf := make([]byte, 0, ONIEHeaderSize+total+1)
	buf = append(buf, ONIEHeaderID...)
	buf = append(buf, version)
	buf = binary.BigEndian.AppendUint16(buf, uint16(total))
	for _, t := range tlvs {
		v := t.Value
		if len(v) > 255 {
			v = v[:255]
		}
		buf = append(buf, t.Type, uint8(len(v)))
		buf = append(buf, v...)
	}
	return append(buf, 0)
}
