package media

// Param selects a fixed-width identification field of the module EEPROM.
type Param int

const (
	ParamWavelength Param = iota
	ParamWavelengthTolerance
	ParamMaxCaseTemp
	ParamCCBase
	ParamCCExt
	ParamConnector
	ParamEncoding
	ParamNominalBitrate
	ParamIdentifier
	ParamExtIdentifier
	ParamLengthSMFKm
	ParamLengthOM1
	ParamLengthOM2
	ParamLengthOM3
	ParamLengthCable
	ParamLengthSMF
	ParamOptions
	ParamEnhancedOptions
	ParamDiagMonType
	ParamDeviceTech
	ParamMaxBitrate
	ParamMinBitrate
	ParamExtCompliance

	paramCount
)

var paramNames = [paramCount]string{
	"wavelength", "wavelength_tolerance", "max_case_temp", "cc_base", "cc_ext",
	"connector", "encoding", "nominal_bitrate", "identifier", "ext_identifier",
	"length_smf_km", "length_om1", "length_om2", "length_om3", "length_cable",
	"length_smf", "options", "enhanced_options", "diag_mon_type", "device_tech",
	"max_bitrate", "min_bitrate", "ext_compliance",
}

func (p Param) String() string {
	if p < 0 || p >= paramCount {
		return "unknown"
	}
	return paramNames[p]
}

// VendorInfo selects a vendor identification string.
type VendorInfo int

const (
	VendorName VendorInfo = iota
	VendorOUI
	VendorSerial
	VendorDate
	VendorPartNumber
	VendorRevision

	vendorInfoCount
)

func (v VendorInfo) String() string {
	switch v {
	case VendorName:
		return "name"
	case VendorOUI:
		return "oui"
	case VendorSerial:
		return "serial"
	case VendorDate:
		return "date"
	case VendorPartNumber:
		return "part_number"
	case VendorRevision:
		return "revision"
	default:
		return "unknown"
	}
}

// Threshold selects an alarm or warning limit.
type Threshold int

const (
	ThresholdTempHighAlarm Threshold = iota
	ThresholdTempLowAlarm
	ThresholdTempHighWarning
	ThresholdTempLowWarning
	ThresholdVoltHighAlarm
	ThresholdVoltLowAlarm
	ThresholdVoltHighWarning
	ThresholdVoltLowWarning
	ThresholdRxPowerHighAlarm
	ThresholdRxPowerLowAlarm
	ThresholdRxPowerHighWarning
	ThresholdRxPowerLowWarning
	ThresholdTxBiasHighAlarm
	ThresholdTxBiasLowAlarm
	ThresholdTxBiasHighWarning
	ThresholdTxBiasLowWarning
	ThresholdTxPowerHighAlarm
	ThresholdTxPowerLowAlarm
	ThresholdTxPowerHighWarning
	ThresholdTxPowerLowWarning

	thresholdCount
)

// quantity is the physical unit family a register holds.
type quantity int

const (
	qtyTemp quantity = iota
	qtyVolt
	qtyPower
	qtyBias
)

func (t Threshold) quantity() quantity {
	switch {
	case t <= ThresholdTempLowWarning:
		return qtyTemp
	case t <= ThresholdVoltLowWarning:
		return qtyVolt
	case t <= ThresholdRxPowerLowWarning:
		return qtyPower
	case t <= ThresholdTxBiasLowWarning:
		return qtyBias
	default:
		return qtyPower
	}
}

// regInfo locates a field. A family lacking a field has no table entry.
type regInfo struct {
	addr  uint16
	width uint16
}

var sfpParams = map[Param]regInfo{
	ParamWavelength:      {60, 2},
	ParamCCBase:          {63, 1},
	ParamCCExt:           {95, 1},
	ParamConnector:       {2, 1},
	ParamEncoding:        {11, 1},
	ParamNominalBitrate:  {12, 1},
	ParamIdentifier:      {0, 1},
	ParamExtIdentifier:   {1, 1},
	ParamLengthSMFKm:     {14, 1},
	ParamLengthOM1:       {17, 1},
	ParamLengthOM2:       {16, 1},
	ParamLengthOM3:       {19, 1},
	ParamLengthCable:     {18, 1},
	ParamLengthSMF:       {15, 1},
	ParamOptions:         {64, 2},
	ParamEnhancedOptions: {93, 1},
	ParamDiagMonType:     {92, 1},
	ParamMaxBitrate:      {66, 1},
	ParamMinBitrate:      {67, 1},
	ParamExtCompliance:   {36, 1},
}

var qsfpParams = map[Param]regInfo{
	ParamWavelength:          {186, 2},
	ParamWavelengthTolerance: {188, 2},
	ParamMaxCaseTemp:         {190, 1},
	ParamCCBase:              {191, 1},
	ParamCCExt:               {223, 1},
	ParamConnector:           {130, 1},
	ParamEncoding:            {139, 1},
	ParamNominalBitrate:      {140, 1},
	ParamIdentifier:          {128, 1},
	ParamExtIdentifier:       {129, 1},
	ParamLengthSMFKm:         {142, 1},
	ParamLengthOM1:           {145, 1},
	ParamLengthOM2:           {144, 1},
	ParamLengthOM3:           {143, 1},
	ParamLengthCable:         {146, 1},
	ParamOptions:             {192, 4},
	ParamEnhancedOptions:     {221, 1},
	ParamDiagMonType:         {220, 1},
	ParamDeviceTech:          {147, 1},
}

var sfpVendor = map[VendorInfo]regInfo{
	VendorName:       {20, 16},
	VendorOUI:        {37, 3},
	VendorSerial:     {68, 16},
	VendorDate:       {84, 8},
	VendorPartNumber: {40, 16},
	VendorRevision:   {56, 4},
}

var qsfpVendor = map[VendorInfo]regInfo{
	VendorName:       {148, 16},
	VendorOUI:        {165, 3},
	VendorSerial:     {196, 16},
	VendorDate:       {212, 8},
	VendorPartNumber: {168, 16},
	VendorRevision:   {184, 2},
}

// SFP thresholds live on page 2, QSFP thresholds on page 3.
var sfpThresholds = map[Threshold]regInfo{
	ThresholdTempHighAlarm:      {0, 2},
	ThresholdTempLowAlarm:       {2, 2},
	ThresholdTempHighWarning:    {4, 2},
	ThresholdTempLowWarning:     {6, 2},
	ThresholdVoltHighAlarm:      {8, 2},
	ThresholdVoltLowAlarm:       {10, 2},
	ThresholdVoltHighWarning:    {12, 2},
	ThresholdVoltLowWarning:     {14, 2},
	ThresholdRxPowerHighAlarm:   {32, 2},
	ThresholdRxPowerLowAlarm:    {34, 2},
	ThresholdRxPowerHighWarning: {36, 2},
	ThresholdRxPowerLowWarning:  {38, 2},
	ThresholdTxBiasHighAlarm:    {16, 2},
	ThresholdTxBiasLowAlarm:     {18, 2},
	ThresholdTxBiasHighWarning:  {20, 2},
	ThresholdTxBiasLowWarning:   {22, 2},
	ThresholdTxPowerHighAlarm:   {24, 2},
	ThresholdTxPowerLowAlarm:    {26, 2},
	ThresholdTxPowerHighWarning: {28, 2},
	ThresholdTxPowerLowWarning:  {30, 2},
}

var qsfpThresholds = map[Threshold]regInfo{
	ThresholdTempHighAlarm:      {128, 2},
	ThresholdTempLowAlarm:       {130, 2},
	ThresholdTempHighWarning:    {132, 2},
	ThresholdTempLowWarning:     {134, 2},
	ThresholdVoltHighAlarm:      {144, 2},
	ThresholdVoltLowAlarm:       {146, 2},
	ThresholdVoltHighWarning:    {148, 2},
	ThresholdVoltLowWarning:     {150, 2},
	ThresholdRxPowerHighAlarm:   {176, 2},
	ThresholdRxPowerLowAlarm:    {178, 2},
	ThresholdRxPowerHighWarning: {180, 2},
	ThresholdRxPowerLowWarning:  {182, 2},
	ThresholdTxBiasHighAlarm:    {184, 2},
	ThresholdTxBiasLowAlarm:     {186, 2},
	ThresholdTxBiasHighWarning:  {188, 2},
	ThresholdTxBiasLowWarning:   {190, 2},
}

// Memory map addresses used by the status and control operations.
const (
	pageLower          = 0
	sfpPageDiag        = 2
	qsfpPageThresholds = 3

	qsfpStatusIndicator = 2
	qsfpChannelLOS      = 3
	qsfpChannelTxFault  = 4
	qsfpTempInterrupt   = 6
	qsfpVoltInterrupt   = 7
	qsfpRx12Power       = 9
	qsfpRx34Power       = 10
	qsfpTx12Bias        = 11
	qsfpTx34Bias        = 12
	qsfpTemperature     = 22
	qsfpVoltage         = 26
	qsfpRx1Power        = 34
	qsfpTx1Bias         = 42
	qsfpTxControl       = 86
	qsfpCDRControl      = 98
	qsfpComplianceCode  = 131
	qsfpOptions4        = 195

	sfpComplianceCode  = 3
	sfpDiagMonType     = 92
	sfpEnhancedOptions = 93
	sfpTemperature     = 96
	sfpVoltage         = 98
	sfpTxBias          = 100
	sfpTxPower         = 102
	sfpRxPower         = 104
	sfpStatusControl   = 110
	sfpAlarm1          = 112
	sfpAlarm2          = 113
	sfpWarning1        = 116
	sfpWarning2        = 117
)

// Status and control bits.
const (
	sfpRxLOSBit       = 1 << 1
	sfpTxFaultBit     = 1 << 2
	sfpSoftTxDisable  = 1 << 6
	sfpTxDisableBit   = 1 << 7
	sfpAlarmSupport   = 1 << 7
	sfpRateSelect     = 1 << 1
	sfpDiagMonSupport = 1 << 6
	qsfpFlatMem       = 1 << 2
	qsfpTxDisableCap  = 1 << 4
	qsfpRateSelectCap = 1 << 5
)
