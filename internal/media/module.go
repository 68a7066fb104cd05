// Package media decodes pluggable transceiver modules (SFP and QSFP
// families) through the MCIA register interface.
//
// Module memory is reached through an Accessor, which batches reads and
// writes into register-sized windows over a Transport. Every operation on
// a Module is dispatched on the identifier byte probed when the module was
// opened; unknown identifiers are reported as sdierr.ErrNotSupported.
//
// Read-modify-write controls (TxControl, CDRSet) are not atomic. Callers
// serialise them per module.
package media

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// Identifier byte values (SFF-8024).
const (
	IDSFP      uint8 = 0x03
	IDQSFP     uint8 = 0x0c
	IDQSFPPlus uint8 = 0x0d
	IDQSFP28   uint8 = 0x11
)

// Family groups identifiers that share a memory map.
type Family int

const (
	FamilySFP Family = iota
	FamilyQSFP
)

func (f Family) String() string {
	if f == FamilyQSFP {
		return "qsfp"
	}
	return "sfp"
}

// Speed is the nominal maximum rate of a module.
type Speed int

const (
	Speed10G Speed = iota
	Speed40G
	Speed100G
)

func (s Speed) String() string {
	switch s {
	case Speed10G:
		return "10G"
	case Speed40G:
		return "40G"
	case Speed100G:
		return "100G"
	default:
		return "unknown"
	}
}

// MonitorFlags are module level alarm and warning bits.
type MonitorFlags uint32

const (
	TempHighAlarm MonitorFlags = 1 << iota
	TempLowAlarm
	TempHighWarning
	TempLowWarning
	VoltHighAlarm
	VoltLowAlarm
	VoltHighWarning
	VoltLowWarning
)

// ChannelMonitorFlags are per-channel alarm and warning bits.
type ChannelMonitorFlags uint32

const (
	RxPowerHighAlarm ChannelMonitorFlags = 1 << iota
	RxPowerLowAlarm
	RxPowerHighWarning
	RxPowerLowWarning
	TxBiasHighAlarm
	TxBiasLowAlarm
	TxBiasHighWarning
	TxBiasLowWarning
	TxPowerHighAlarm
	TxPowerLowAlarm
	TxPowerHighWarning
	TxPowerLowWarning
)

// ChannelStatusFlags are per-channel state bits.
type ChannelStatusFlags uint32

const (
	StatusTxDisable ChannelStatusFlags = 1 << iota
	StatusTxFault
	StatusTxLOS
	StatusRxLOS
)

// ModuleMonitor selects a module level measurement.
type ModuleMonitor int

const (
	MonitorTemperature ModuleMonitor = iota
	MonitorVoltage
)

// ChannelMonitor selects a per-channel measurement.
type ChannelMonitor int

const (
	MonitorRxPower ChannelMonitor = iota
	MonitorTxBias
	MonitorTxPower
)

// Features reports optional capabilities advertised by the module.
type Features struct {
	Paging      bool `json:"paging" cbor:"paging"`
	TxControl   bool `json:"tx_control" cbor:"tx_control"`
	RateSelect  bool `json:"rate_select" cbor:"rate_select"`
	Alarm       bool `json:"alarm" cbor:"alarm"`
	DiagMonitor bool `json:"diag_monitor" cbor:"diag_monitor"`
}

// Identifier reads the identifier byte of a module.
func Identifier(acc *Accessor, module uint8) (uint8, error) {
	b, err := acc.Read(module, pageLower, 0, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Module is an opened transceiver of a known family.
type Module struct {
	acc    *Accessor
	num    uint8
	id     uint8
	family Family
}

// Open probes the identifier of module and returns a handle for it.
func Open(acc *Accessor, module uint8) (*Module, error) {
	id, err := Identifier(acc, module)
	if err != nil {
		return nil, err
	}

	m := &Module{acc: acc, num: module, id: id}
	switch id {
	case IDSFP:
		m.family = FamilySFP
	case IDQSFP, IDQSFPPlus, IDQSFP28:
		m.family = FamilyQSFP
	default:
		return nil, fmt.Errorf("%w: module %d identifier %#x", sdierr.ErrNotSupported, module, id)
	}
	return m, nil
}

// Number returns the module index.
func (m *Module) Number() uint8 { return m.num }

// ID returns the probed identifier byte.
func (m *Module) ID() uint8 { return m.id }

// Family returns the memory map family.
func (m *Module) Family() Family { return m.family }

func (m *Module) read(page uint8, addr uint16, n int) ([]byte, error) {
	return m.acc.Read(m.num, page, addr, n)
}

func (m *Module) readByte(page uint8, addr uint16) (uint8, error) {
	b, err := m.read(page, addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *Module) writeByte(page uint8, addr uint16, v uint8) error {
	return m.acc.Write(m.num, page, addr, []byte{v})
}

// Channels returns the number of optical channels of the module.
func (m *Module) Channels() int {
	if m.family == FamilyQSFP {
		return 4
	}
	return 1
}

func (m *Module) checkChannel(ch int) error {
	if ch < 0 || ch >= m.Channels() {
		return fmt.Errorf("%w: channel %d on %s module", sdierr.ErrInvalidArgument, ch, m.family)
	}
	return nil
}

// bitMap pairs a requested flag with the register bit that reports it.
type bitMap[F ~uint32] struct {
	flag F
	reg  uint8
	mask uint8
}

func collect[F ~uint32](want F, regs []uint8, bits []bitMap[F]) F {
	var out F
	for _, b := range bits {
		if want&b.flag != 0 && regs[b.reg]&b.mask != 0 {
			out |= b.flag
		}
	}
	return out
}

// ModuleMonitorStatus reports which of the requested module flags are raised.
func (m *Module) ModuleMonitorStatus(flags MonitorFlags) (MonitorFlags, error) {
	if m.family == FamilyQSFP {
		regs, err := m.read(pageLower, qsfpTempInterrupt, 2)
		if err != nil {
			return 0, err
		}
		return collect(flags, regs, []bitMap[MonitorFlags]{
			{TempHighAlarm, 0, 1 << 7}, {TempLowAlarm, 0, 1 << 6},
			{TempHighWarning, 0, 1 << 5}, {TempLowWarning, 0, 1 << 4},
			{VoltHighAlarm, 1, 1 << 7}, {VoltLowAlarm, 1, 1 << 6},
			{VoltHighWarning, 1, 1 << 5}, {VoltLowWarning, 1, 1 << 4},
		}), nil
	}

	regs, err := m.read(sfpPageDiag, sfpAlarm1, sfpWarning2-sfpAlarm1+1)
	if err != nil {
		return 0, err
	}
	a1, w1 := uint8(0), uint8(sfpWarning1-sfpAlarm1)
	return collect(flags, regs, []bitMap[MonitorFlags]{
		{TempHighAlarm, a1, 1 << 7}, {TempLowAlarm, a1, 1 << 6},
		{VoltHighAlarm, a1, 1 << 5}, {VoltLowAlarm, a1, 1 << 4},
		{TempHighWarning, w1, 1 << 7}, {TempLowWarning, w1, 1 << 6},
		{VoltHighWarning, w1, 1 << 5}, {VoltLowWarning, w1, 1 << 4},
	}), nil
}

// ChannelMonitorStatus reports which of the requested channel flags are raised.
func (m *Module) ChannelMonitorStatus(ch int, flags ChannelMonitorFlags) (ChannelMonitorFlags, error) {
	if err := m.checkChannel(ch); err != nil {
		return 0, err
	}

	if m.family == FamilyQSFP {
		regs, err := m.read(pageLower, qsfpRx12Power, qsfpTx34Bias-qsfpRx12Power+1)
		if err != nil {
			return 0, err
		}
		rx, bias := uint8(0), uint8(qsfpTx12Bias-qsfpRx12Power)
		if ch >= 2 {
			rx, bias = uint8(qsfpRx34Power-qsfpRx12Power), uint8(qsfpTx34Bias-qsfpRx12Power)
		}
		shift := uint8(0)
		if ch%2 == 0 {
			shift = 4
		}
		return collect(flags, regs, []bitMap[ChannelMonitorFlags]{
			{RxPowerHighAlarm, rx, 0x8 << shift}, {RxPowerLowAlarm, rx, 0x4 << shift},
			{RxPowerHighWarning, rx, 0x2 << shift}, {RxPowerLowWarning, rx, 0x1 << shift},
			{TxBiasHighAlarm, bias, 0x8 << shift}, {TxBiasLowAlarm, bias, 0x4 << shift},
			{TxBiasHighWarning, bias, 0x2 << shift}, {TxBiasLowWarning, bias, 0x1 << shift},
		}), nil
	}

	regs, err := m.read(sfpPageDiag, sfpAlarm1, sfpWarning2-sfpAlarm1+1)
	if err != nil {
		return 0, err
	}
	a1, a2 := uint8(0), uint8(sfpAlarm2-sfpAlarm1)
	w1, w2 := uint8(sfpWarning1-sfpAlarm1), uint8(sfpWarning2-sfpAlarm1)
	return collect(flags, regs, []bitMap[ChannelMonitorFlags]{
		{TxBiasHighAlarm, a1, 1 << 3}, {TxBiasLowAlarm, a1, 1 << 2},
		{TxPowerHighAlarm, a1, 1 << 1}, {TxPowerLowAlarm, a1, 1 << 0},
		{TxBiasHighWarning, w1, 1 << 3}, {TxBiasLowWarning, w1, 1 << 2},
		{TxPowerHighWarning, w1, 1 << 1}, {TxPowerLowWarning, w1, 1 << 0},
		{RxPowerHighAlarm, a2, 1 << 7}, {RxPowerLowAlarm, a2, 1 << 6},
		{RxPowerHighWarning, w2, 1 << 7}, {RxPowerLowWarning, w2, 1 << 6},
	}), nil
}

// ChannelStatus reports which of the requested channel state flags are set.
func (m *Module) ChannelStatus(ch int, flags ChannelStatusFlags) (ChannelStatusFlags, error) {
	if err := m.checkChannel(ch); err != nil {
		return 0, err
	}

	if m.family == FamilyQSFP {
		txCtl, err := m.readByte(pageLower, qsfpTxControl)
		if err != nil {
			return 0, err
		}
		regs, err := m.read(pageLower, qsfpChannelLOS, 2)
		if err != nil {
			return 0, err
		}
		regs = append(regs, txCtl)
		return collect(flags, regs, []bitMap[ChannelStatusFlags]{
			{StatusTxDisable, 2, 1 << ch},
			{StatusTxFault, 1, 1 << ch},
			{StatusTxLOS, 0, 0x10 << ch},
			{StatusRxLOS, 0, 1 << ch},
		}), nil
	}

	reg, err := m.readByte(sfpPageDiag, sfpStatusControl)
	if err != nil {
		return 0, err
	}
	return collect(flags, []uint8{reg}, []bitMap[ChannelStatusFlags]{
		{StatusTxDisable, 0, sfpTxDisableBit},
		{StatusTxFault, 0, sfpTxFaultBit},
		{StatusRxLOS, 0, sfpRxLOSBit},
	}), nil
}

// TxControl enables or disables the transmitter of a channel.
func (m *Module) TxControl(ch int, enable bool) error {
	if err := m.checkChannel(ch); err != nil {
		return err
	}

	page, addr, bit := uint8(pageLower), uint16(qsfpTxControl), uint8(1<<ch)
	if m.family == FamilySFP {
		page, addr, bit = sfpPageDiag, sfpStatusControl, sfpSoftTxDisable
	}

	reg, err := m.readByte(page, addr)
	if err != nil {
		return err
	}
	if enable {
		reg &^= bit
	} else {
		reg |= bit
	}
	return m.writeByte(page, addr, reg)
}

// TxControlStatus reports whether the transmitter of a channel is enabled.
func (m *Module) TxControlStatus(ch int) (bool, error) {
	if err := m.checkChannel(ch); err != nil {
		return false, err
	}

	page, addr, bit := uint8(pageLower), uint16(qsfpTxControl), uint8(1<<ch)
	if m.family == FamilySFP {
		page, addr, bit = sfpPageDiag, sfpStatusControl, sfpTxDisableBit
	}

	reg, err := m.readByte(page, addr)
	if err != nil {
		return false, err
	}
	return reg&bit == 0, nil
}

// CDRSet enables or disables clock and data recovery on both directions of
// a QSFP channel.
func (m *Module) CDRSet(ch int, enable bool) error {
	if m.family == FamilySFP {
		return fmt.Errorf("%w: cdr control on sfp module", sdierr.ErrNotSupported)
	}
	if err := m.checkChannel(ch); err != nil {
		return err
	}

	reg, err := m.readByte(pageLower, qsfpCDRControl)
	if err != nil {
		return err
	}
	bits := uint8(0x01<<ch | 0x10<<ch)
	if enable {
		reg |= bits
	} else {
		reg &^= bits
	}
	return m.writeByte(pageLower, qsfpCDRControl, reg)
}

// CDRStatus reports whether CDR is enabled in either direction of a channel.
func (m *Module) CDRStatus(ch int) (bool, error) {
	if m.family == FamilySFP {
		return false, fmt.Errorf("%w: cdr control on sfp module", sdierr.ErrNotSupported)
	}
	if err := m.checkChannel(ch); err != nil {
		return false, err
	}

	reg, err := m.readByte(pageLower, qsfpCDRControl)
	if err != nil {
		return false, err
	}
	return reg&uint8(0x01<<ch|0x10<<ch) != 0, nil
}

// Speed returns the nominal rate implied by the identifier.
func (m *Module) Speed() Speed {
	switch m.id {
	case IDQSFP28:
		return Speed100G
	case IDQSFP, IDQSFPPlus:
		return Speed40G
	default:
		return Speed10G
	}
}

// Parameter reads a fixed-width identification field as a big-endian integer.
func (m *Module) Parameter(p Param) (uint32, error) {
	if p < 0 || p >= paramCount {
		return 0, fmt.Errorf("%w: parameter %d", sdierr.ErrInvalidArgument, int(p))
	}

	table := sfpParams
	if m.family == FamilyQSFP {
		table = qsfpParams
	}
	info, ok := table[p]
	if !ok {
		return 0, fmt.Errorf("%w: parameter %s on %s module", sdierr.ErrNotSupported, p, m.family)
	}

	b, err := m.read(pageLower, info.addr, int(info.width))
	if err != nil {
		return 0, err
	}
	var v uint32
	for _, x := range b {
		v = v<<8 | uint32(x)
	}
	return v, nil
}

// VendorInfo reads a vendor identification string. The OUI is rendered as
// colon separated hex; other fields are trimmed of trailing padding.
func (m *Module) VendorInfo(kind VendorInfo) (string, error) {
	if kind < 0 || kind >= vendorInfoCount {
		return "", fmt.Errorf("%w: vendor info %d", sdierr.ErrInvalidArgument, int(kind))
	}

	table := sfpVendor
	if m.family == FamilyQSFP {
		table = qsfpVendor
	}
	info, ok := table[kind]
	if !ok {
		return "", fmt.Errorf("%w: vendor info %d on %s module", sdierr.ErrNotSupported, int(kind), m.family)
	}

	b, err := m.read(pageLower, info.addr, int(info.width))
	if err != nil {
		return "", err
	}
	if kind == VendorOUI {
		return fmt.Sprintf("%02x:%02x:%02x", b[0], b[1], b[2]), nil
	}
	return strings.TrimRight(string(b), " \x00"), nil
}

// TransceiverCode returns the 8-byte compliance code block.
func (m *Module) TransceiverCode() ([8]byte, error) {
	var code [8]byte

	addr := uint16(sfpComplianceCode)
	if m.family == FamilyQSFP {
		addr = qsfpComplianceCode
	}
	b, err := m.read(pageLower, addr, len(code))
	if err != nil {
		return code, err
	}
	copy(code[:], b)
	return code, nil
}

// decode converts a 16-bit monitor word to engineering units: °C, V, mW or mA.
func decode(q quantity, raw []byte) float64 {
	w := binary.BigEndian.Uint16(raw)
	switch q {
	case qtyTemp:
		return float64(int16(w)) / 256
	case qtyVolt:
		// 100 µV per count
		return float64(w) / 10000
	case qtyPower:
		// 0.1 µW per count
		return float64(w) / 10000
	default:
		// 2 µA per count
		return float64(w) * 2 / 1000
	}
}

// Threshold reads an alarm or warning limit in engineering units.
func (m *Module) Threshold(t Threshold) (float64, error) {
	if t < 0 || t >= thresholdCount {
		return 0, fmt.Errorf("%w: threshold %d", sdierr.ErrInvalidArgument, int(t))
	}

	page, table := uint8(sfpPageDiag), sfpThresholds
	if m.family == FamilyQSFP {
		page, table = qsfpPageThresholds, qsfpThresholds
	}
	info, ok := table[t]
	if !ok {
		return 0, fmt.Errorf("%w: threshold %d on %s module", sdierr.ErrNotSupported, int(t), m.family)
	}

	b, err := m.read(page, info.addr, int(info.width))
	if err != nil {
		return 0, err
	}
	return decode(t.quantity(), b), nil
}

// ModuleMonitor reads the module temperature (°C) or supply voltage (V).
func (m *Module) ModuleMonitor(mon ModuleMonitor) (float64, error) {
	var (
		page = uint8(pageLower)
		addr uint16
		q    quantity
	)
	switch mon {
	case MonitorTemperature:
		addr, q = qsfpTemperature, qtyTemp
		if m.family == FamilySFP {
			addr = sfpTemperature
		}
	case MonitorVoltage:
		addr, q = qsfpVoltage, qtyVolt
		if m.family == FamilySFP {
			addr = sfpVoltage
		}
	default:
		return 0, fmt.Errorf("%w: module monitor %d", sdierr.ErrInvalidArgument, int(mon))
	}
	if m.family == FamilySFP {
		page = sfpPageDiag
	}

	b, err := m.read(page, addr, 2)
	if err != nil {
		return 0, err
	}
	return decode(q, b), nil
}

// ChannelMonitor reads rx power (mW), tx bias (mA) or tx power (mW) of a channel.
func (m *Module) ChannelMonitor(ch int, mon ChannelMonitor) (float64, error) {
	if err := m.checkChannel(ch); err != nil {
		return 0, err
	}

	var (
		page uint8
		addr uint16
		q    quantity
	)
	if m.family == FamilyQSFP {
		page = pageLower
		switch mon {
		case MonitorRxPower:
			addr, q = qsfpRx1Power+uint16(2*ch), qtyPower
		case MonitorTxBias:
			addr, q = qsfpTx1Bias+uint16(2*ch), qtyBias
		case MonitorTxPower:
			return 0, fmt.Errorf("%w: tx power monitor on qsfp module", sdierr.ErrNotSupported)
		default:
			return 0, fmt.Errorf("%w: channel monitor %d", sdierr.ErrInvalidArgument, int(mon))
		}
	} else {
		page = sfpPageDiag
		switch mon {
		case MonitorRxPower:
			addr, q = sfpRxPower, qtyPower
		case MonitorTxBias:
			addr, q = sfpTxBias, qtyBias
		case MonitorTxPower:
			addr, q = sfpTxPower, qtyPower
		default:
			return 0, fmt.Errorf("%w: channel monitor %d", sdierr.ErrInvalidArgument, int(mon))
		}
	}

	b, err := m.read(page, addr, 2)
	if err != nil {
		return 0, err
	}
	return decode(q, b), nil
}

// FeatureSupport reports the optional capabilities of the module.
func (m *Module) FeatureSupport() (Features, error) {
	var f Features

	if m.family == FamilyQSFP {
		status, err := m.readByte(pageLower, qsfpStatusIndicator)
		if err != nil {
			return f, err
		}
		opts, err := m.readByte(pageLower, qsfpOptions4)
		if err != nil {
			return f, err
		}
		f.Paging = status&qsfpFlatMem != 0
		f.TxControl = opts&qsfpTxDisableCap != 0
		f.RateSelect = opts&qsfpRateSelectCap != 0
		return f, nil
	}

	regs, err := m.read(pageLower, sfpDiagMonType, 2)
	if err != nil {
		return f, err
	}
	diag, enhanced := regs[0], regs[1]
	f.Alarm = enhanced&sfpAlarmSupport != 0
	f.RateSelect = enhanced&sfpRateSelect != 0
	f.DiagMonitor = diag&sfpDiagMonSupport != 0
	return f, nil
}

// Read returns n raw bytes of the lower page starting at offset.
func (m *Module) Read(offset uint16, n int) ([]byte, error) {
	if n <= 0 || int(offset)+n > PageSize {
		return nil, fmt.Errorf("%w: read %d bytes at %d", sdierr.ErrInvalidArgument, n, offset)
	}
	return m.read(pageLower, offset, n)
}

// Write stores raw bytes into the lower page starting at offset.
func (m *Module) Write(offset uint16, data []byte) error {
	if len(data) == 0 || int(offset)+len(data) > PageSize {
		return fmt.Errorf("%w: write %d bytes at %d", sdierr.ErrInvalidArgument, len(data), offset)
	}
	return m.acc.Write(m.num, pageLower, offset, data)
}

// LEDSet is not available through the module memory map.
func (m *Module) LEDSet(ch int, speed Speed) error {
	return fmt.Errorf("%w: module led control", sdierr.ErrNotSupported)
}

// WavelengthSet is not available for fixed-wavelength modules.
func (m *Module) WavelengthSet(nm float64) error {
	return fmt.Errorf("%w: wavelength tuning", sdierr.ErrNotSupported)
}
