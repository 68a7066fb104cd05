package chassis

import (
	"errors"
	"testing"

	"github.com/nerrad567/sdi-core/internal/sdierr"
)

func TestPresenceGet(t *testing.T) {
	reg, io := newFixture(t)
	tray := mustFind(t, reg, EntityFanTray, 1)

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"present", "1", true},
		{"absent", "0", false},
		{"unexpected value", "7", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			io.attrs["/bsp/fan/fan1_prsnt"] = tt.value
			got, err := reg.PresenceGet(tray)
			if err != nil {
				t.Fatalf("PresenceGet() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PresenceGet() = %v, want %v", got, tt.want)
			}
		})
	}

	board := mustFind(t, reg, EntitySystemBoard, 1)
	if ok, err := reg.PresenceGet(board); err != nil || !ok {
		t.Errorf("PresenceGet(fixed) = %v, %v, want true", ok, err)
	}

	delete(io.attrs, "/bsp/fan/fan1_prsnt")
	if _, err := reg.PresenceGet(tray); !errors.Is(err, sdierr.ErrIO) {
		t.Errorf("PresenceGet(unreadable) error = %v, want ErrIO", err)
	}

	if _, err := reg.PresenceGet(nil); !errors.Is(err, sdierr.ErrInvalidArgument) {
		t.Errorf("PresenceGet(nil) error = %v, want ErrInvalidArgument", err)
	}
}

func TestFaultStatusGet(t *testing.T) {
	reg, io := newFixture(t)
	tray := mustFind(t, reg, EntityFanTray, 1)

	if fault, err := reg.FaultStatusGet(tray); err != nil || fault {
		t.Errorf("FaultStatusGet(ok) = %v, %v, want false", fault, err)
	}

	io.attrs["/bsp/fan/fan1_fault"] = "1"
	if fault, err := reg.FaultStatusGet(tray); err != nil || !fault {
		t.Errorf("FaultStatusGet(fault) = %v, %v, want true", fault, err)
	}

	delete(io.attrs, "/bsp/fan/fan1_fault")
	fault, err := reg.FaultStatusGet(tray)
	if !fault {
		t.Error("FaultStatusGet(unreadable) = false, want true")
	}
	if !errors.Is(err, sdierr.ErrIO) {
		t.Errorf("FaultStatusGet(unreadable) error = %v, want ErrIO", err)
	}

	board := mustFind(t, reg, EntitySystemBoard, 1)
	fault, err = reg.FaultStatusGet(board)
	if fault || !errors.Is(err, sdierr.ErrPermissionDenied) {
		t.Errorf("FaultStatusGet(no policy) = %v, %v, want false, ErrPermissionDenied", fault, err)
	}
}

func TestPSUOutputPowerStatusGet(t *testing.T) {
	reg, io := newFixture(t)
	psu := mustFind(t, reg, EntityPSUTray, 1)

	if on, err := reg.PSUOutputPowerStatusGet(psu); err != nil || !on {
		t.Errorf("PSUOutputPowerStatusGet() = %v, %v, want true", on, err)
	}

	io.attrs["/bsp/power/psu1_pwr_status"] = "0"
	if on, err := reg.PSUOutputPowerStatusGet(psu); err != nil || on {
		t.Errorf("PSUOutputPowerStatusGet(off) = %v, %v, want false", on, err)
	}

	tray := mustFind(t, reg, EntityFanTray, 1)
	if _, err := reg.PSUOutputPowerStatusGet(tray); !errors.Is(err, sdierr.ErrPermissionDenied) {
		t.Errorf("PSUOutputPowerStatusGet(fan tray) error = %v, want ErrPermissionDenied", err)
	}
}

func TestReset(t *testing.T) {
	reg, io := newFixture(t)
	psu := mustFind(t, reg, EntityPSUTray, 1)

	if err := reg.Reset(psu, ResetCold); err != nil {
		t.Fatalf("Reset(cold) error = %v", err)
	}
	if len(io.writes) != 1 || io.writes[0] != "/bsp/power/psu1_reset=1" {
		t.Errorf("writes = %v, want [/bsp/power/psu1_reset=1]", io.writes)
	}

	if err := reg.Reset(psu, ResetWarm); !errors.Is(err, sdierr.ErrNotSupported) {
		t.Errorf("Reset(warm) error = %v, want ErrNotSupported", err)
	}

	tray := mustFind(t, reg, EntityFanTray, 1)
	if err := reg.Reset(tray, ResetCold); !errors.Is(err, sdierr.ErrNotSupported) {
		t.Errorf("Reset(no reset attr) error = %v, want ErrNotSupported", err)
	}
}

func TestPowerStatusControl(t *testing.T) {
	reg, io := newFixture(t)
	psu := mustFind(t, reg, EntityPSUTray, 1)

	tests := []struct {
		on   bool
		want string
	}{
		{false, "0"},
		{true, "1"},
	}
	for _, tt := range tests {
		if err := reg.PowerStatusControl(psu, tt.on); err != nil {
			t.Fatalf("PowerStatusControl(%v) error = %v", tt.on, err)
		}
		if got := io.attrs["/bsp/power/psu1_pwr"]; got != tt.want {
			t.Errorf("PowerStatusControl(%v) wrote %q, want %q", tt.on, got, tt.want)
		}
	}

	board := mustFind(t, reg, EntitySystemBoard, 1)
	if err := reg.PowerStatusControl(board, true); !errors.Is(err, sdierr.ErrNotSupported) {
		t.Errorf("PowerStatusControl(board) error = %v, want ErrNotSupported", err)
	}
}

func TestRegister_PowerHandleNeedsValues(t *testing.T) {
	entities := parseYAML(t, `
node: entity_list
children:
  - node: fan_tray
    instance: 1
    alias: FT
    type: SDI_ENTITY_FAN_TRAY
    presence: fixed
    power_ctl: ft_ctl
`)
	settings := parseYAML(t, `
node: device_settings
children:
  - node: entity
    name: FT
    children:
      - node: power_ctl
        name: ft_ctl
        path: /p/
        powerhdl: ft_pwr
        power_on: "1"
`)
	ce := configPanic(t, func() { MustRegister(entities, settings, newFakeIO()) })
	if ce.Attr != "powerhdl" {
		t.Errorf("ConfigError.Attr = %q, want powerhdl", ce.Attr)
	}
}

func TestSysInit(t *testing.T) {
	log := &testLogger{}
	reg, io := newFixture(t, WithLogger(log))

	if err := reg.SysInit(); err != nil {
		t.Fatalf("SysInit() error = %v", err)
	}

	io.attrs["/bsp/power/psu1_prsnt"] = "0"
	err := reg.SysInit()
	if !errors.Is(err, sdierr.ErrPermissionDenied) {
		t.Errorf("SysInit(psu absent) error = %v, want ErrPermissionDenied", err)
	}
	if len(log.errs) != 1 {
		t.Errorf("logged errors = %v, want one", log.errs)
	}

	delete(io.attrs, "/bsp/fan/fan1_prsnt")
	err = reg.SysInit()
	if !errors.Is(err, sdierr.ErrIO) || !errors.Is(err, sdierr.ErrPermissionDenied) {
		t.Errorf("SysInit(two failures) error = %v, want ErrIO and ErrPermissionDenied", err)
	}
}
