package chassis

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/nerrad567/sdi-core/internal/cfgtree"
	"github.com/nerrad567/sdi-core/internal/eeprom"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// fakeIO is an in-memory sysfs keyed by path+attr.
type fakeIO struct {
	attrs  map[string]string
	data   map[string][]byte
	writes []string
}

func newFakeIO() *fakeIO {
	return &fakeIO{attrs: make(map[string]string), data: make(map[string][]byte)}
}

func (f *fakeIO) missing(op, key string) error {
	return sdierr.NewIOError(op, key, unix.ENOENT)
}

func (f *fakeIO) GetString(path, attr string) (string, error) {
	v, ok := f.attrs[path+attr]
	if !ok {
		return "", f.missing("read", path+attr)
	}
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

func (f *fakeIO) SetString(path, attr, val string) error {
	f.attrs[path+attr] = val
	f.writes = append(f.writes, path+attr+"="+val)
	return nil
}

func (f *fakeIO) GetUint(path, attr string) (uint64, error) {
	s, err := f.GetString(path, attr)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", sdierr.ErrInvalidArgument, path+attr)
	}
	return v, nil
}

func (f *fakeIO) SetUint(path, attr string, val uint64) error {
	return f.SetString(path, attr, strconv.FormatUint(val, 10))
}

func (f *fakeIO) GetInt(path, attr string) (int64, error) {
	s, err := f.GetString(path, attr)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", sdierr.ErrInvalidArgument, path+attr)
	}
	return v, nil
}

func (f *fakeIO) DataSize(path, attr string) (int, error) {
	d, ok := f.data[path+attr]
	if !ok {
		return 0, f.missing("stat", path+attr)
	}
	return len(d), nil
}

func (f *fakeIO) Data(path, attr string, size int) ([]byte, error) {
	d, ok := f.data[path+attr]
	if !ok {
		return nil, f.missing("read", path+attr)
	}
	if size > len(d) {
		return nil, sdierr.NewIOError("read", path+attr, fmt.Errorf("short read"))
	}
	return append([]byte(nil), d[:size]...), nil
}

// testLogger records messages by level.
type testLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (l *testLogger) Debug(string, ...any) {}
func (l *testLogger) Info(string, ...any)  {}

func (l *testLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *testLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

const fixtureEntities = `
node: entity_list
children:
  - node: system_board
    instance: 1
    alias: SYSTEM-BOARD
    type: SDI_ENTITY_SYSTEM_BOARD
    presence: fixed
    children:
      - node: resource
        reference: sys_eeprom
        name: SYS_EEPROM
        type: SDI_RESOURCE_ENTITY_INFO
      - node: resource
        reference: cpu_temp
        name: CPU
        type: SDI_RESOURCE_TEMPERATURE
      - node: resource
        reference: amb_temp
        name: AMBIENT
        type: SDI_RESOURCE_TEMPERATURE
      - node: resource
        reference: status_led
        name: STATUS
        type: SDI_RESOURCE_LED
      - node: resource
        reference: digit
        name: DIGIT
        type: SDI_RESOURCE_DIGIT_DISPLAY_LED
      - node: resource
        reference: cpld
        name: CPLD
        type: SDI_RESOURCE_UPGRADABLE_PLD
      - node: resource
        reference: port1
        name: PORT1
        type: SDI_RESOURCE_MEDIA
      - node: resource
        reference: port2
        name: PORT2
        type: SDI_RESOURCE_MEDIA
  - node: fan_tray
    instance: 1
    type: SDI_ENTITY_FAN_TRAY
    presence: fan1_prsnt
    fault: fan1_fault
    children:
      - node: resource
        reference: fan_eeprom
        name: FAN_EEPROM
        type: SDI_RESOURCE_ENTITY_INFO
      - node: resource
        reference: fan1_a
        name: FAN1A
        type: SDI_RESOURCE_FAN
      - node: resource
        reference: fan1_b
        name: FAN1B
        type: SDI_RESOURCE_FAN
  - node: psu_tray
    instance: 1
    alias: PSU1
    type: SDI_ENTITY_PSU_TRAY
    presence: psu1_prsnt
    power_ctl: psu1_ctl
    children:
      - node: resource
        reference: psu_eeprom
        name: PSU_EEPROM
        type: SDI_RESOURCE_ENTITY_INFO
      - node: resource
        reference: psu1_fan
        name: PSU1_FAN
        type: SDI_RESOURCE_FAN
`

const fixtureSettings = `
node: device_settings
children:
  - node: entity
    name: SYSTEM-BOARD
    children:
      - node: eeprom
        name: sys_eeprom
        path: /bsp/eeprom/
        type: SDI_EEPROM_SYS_ONIE
      - node: temp
        name: cpu_temp
        path: /bsp/thermal/
        children:
          - node: thresholds
            low: 5
            high: 85
      - node: temp
        name: amb_temp
        path: /bsp/thermal/
      - node: led
        name: status_led
        path: /bsp/leds/
        children:
          - node: state
            on: green
            off: none
      - node: led
        name: digit
        path: /bsp/leds/
        children:
          - node: state
            on: "1"
            off: "0"
      - node: pld
        name: cpld
        path: /bsp/cpld/
        version: cpld1_version
      - node: media
        name: port1
        path: /bsp/qsfp/
        status: port1_status
        not_present: "0"
        module: 0
      - node: media
        name: port2
        path: /bsp/qsfp/
        status: port2_status
        not_present: "0"
        module: 1
  - node: entity
    name: fan_tray-1
    children:
      - node: presence
        name: fan1_prsnt
        path: /bsp/fan/
        present: "1"
        not_present: "0"
      - node: fault
        name: fan1_fault
        path: /bsp/fan/
        ok: "0"
        fault: "1"
      - node: eeprom
        name: fan_eeprom
        path: /bsp/eeprom/
        type: SDI_EEPROM_FAN_MLNX
      - node: fan
        name: fan1_a
        path: /bsp/fan/
        children:
          - node: speed
            set: fan1_pwm
            get: fan1_speed_get
            max_get: fan1_max
            max_pwm: 255
          - node: status
            get: fan1_status
            fault: "1"
      - node: fan
        name: fan1_b
        path: /bsp/fan/
        children:
          - node: speed
            get: fan2_speed_get
            max_rpm: 18000
  - node: entity
    name: PSU1
    type: AC
    children:
      - node: presence
        name: psu1_prsnt
        path: /bsp/power/
        present: "1"
        not_present: "0"
      - node: power
        name: psu1_pwr_status
        path: /bsp/power/
        present: "1"
        not_present: "0"
      - node: rating
        name: psu1_rating
        path: /bsp/power/
      - node: power_ctl
        name: psu1_ctl
        path: /bsp/power/
        reset: psu1_reset
        powerhdl: psu1_pwr
        power_on: "1"
        power_off: "0"
      - node: eeprom
        name: psu_eeprom
        path: /bsp/eeprom/
        type: SDI_EEPROM_PSU_MLNX
      - node: fan
        name: psu1_fan
        path: /bsp/power/
        children:
          - node: speed
            get: psu1_fan_speed
            max_get: psu1_fan_max
`

func parseYAML(t *testing.T, doc string) *cfgtree.Node {
	t.Helper()
	n, err := cfgtree.Parse([]byte(doc), cfgtree.FormatYAML)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return n
}

func systemImage() []byte {
	return eeprom.EncodeONIE(1, []eeprom.TLV{
		{Type: eeprom.TLVProductName, Value: []byte("SWITCH1")},
		{Type: eeprom.TLVManufacturer, Value: []byte("ACME")},
		{Type: eeprom.TLVServiceTag, Value: []byte("TAG123")},
		{Type: eeprom.TLVPlatformName, Value: []byte("x86_64-acme_sw1-r0")},
	})
}

func fanImage() []byte {
	buf := make([]byte, 256)
	copy(buf[8:], "MLNX")
	buf[12], buf[13] = 1, 1
	buf[14], buf[15] = 10, 5
	copy(buf[16+8:], "FANSN1")
	copy(buf[16+32:], "FANPN")
	copy(buf[16+52:], "A0")
	copy(buf[16+60:], "FAN-TRAY")
	buf[160+14] = 1
	return buf
}

func psuImage() []byte {
	buf := make([]byte, 64)
	copy(buf[4:], "MLNX")
	copy(buf[8:], "PSUSN1")
	copy(buf[32:], "PSUPN")
	copy(buf[52:], "B1")
	return buf
}

func fixtureIO() *fakeIO {
	io := newFakeIO()
	io.data["/bsp/eeprom/sys_eeprom"] = systemImage()
	io.data["/bsp/eeprom/fan_eeprom"] = fanImage()
	io.data["/bsp/eeprom/psu_eeprom"] = psuImage()

	for k, v := range map[string]string{
		"/bsp/thermal/cpu_temp":      "45000",
		"/bsp/thermal/amb_temp":      "-2500",
		"/bsp/leds/status_led":       "none",
		"/bsp/cpld/cpld1_version":    "7",
		"/bsp/qsfp/port1_status":     "1",
		"/bsp/qsfp/port2_status":     "0",
		"/bsp/fan/fan1_prsnt":        "1",
		"/bsp/fan/fan1_fault":        "0",
		"/bsp/fan/fan1_max":          "20000",
		"/bsp/fan/fan1_speed_get":    "12000",
		"/bsp/fan/fan1_status":       "0",
		"/bsp/fan/fan2_speed_get":    "9000",
		"/bsp/power/psu1_prsnt":      "1",
		"/bsp/power/psu1_pwr_status": "1",
		"/bsp/power/psu1_rating":     "650000",
		"/bsp/power/psu1_fan_speed":  "8000",
		"/bsp/power/psu1_fan_max":    "23000",
	} {
		io.attrs[k] = v
	}
	return io
}

func newFixture(t *testing.T, opts ...Option) (*Registry, *fakeIO) {
	t.Helper()
	io := fixtureIO()
	reg := MustRegister(parseYAML(t, fixtureEntities), parseYAML(t, fixtureSettings), io, opts...)
	return reg, io
}

func mustFind(t *testing.T, reg *Registry, typ EntityType, instance int) *Entity {
	t.Helper()
	e := reg.Find(typ, instance)
	if e == nil {
		t.Fatalf("Find(%s, %d) = nil", typ, instance)
	}
	return e
}

func mustResource(t *testing.T, e *Entity, typ ResourceType, alias string) *Resource {
	t.Helper()
	r := e.FindResource(typ, alias)
	if r == nil {
		t.Fatalf("FindResource(%s, %q) = nil", typ, alias)
	}
	return r
}

// configPanic runs fn and returns the *sdierr.ConfigError it panics with.
func configPanic(t *testing.T, fn func()) (ce *sdierr.ConfigError) {
	t.Helper()
	defer func() {
		rec := recover()
		var ok bool
		if ce, ok = rec.(*sdierr.ConfigError); !ok {
			t.Fatalf("panic = %v, want *sdierr.ConfigError", rec)
		}
	}()
	fn()
	return nil
}
