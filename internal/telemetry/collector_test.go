package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCollect_Entities(t *testing.T) {
	f := newFixture(t)
	log := &testLogger{}
	c := newCollector(f, false)
	c.SetLogger(log)

	snap, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if _, err := uuid.Parse(snap.ID); err != nil {
		t.Errorf("snapshot ID %q is not a UUID: %v", snap.ID, err)
	}
	if snap.Site != "switch-001" || !snap.Timestamp.Equal(fixedTime) {
		t.Errorf("snapshot header = %q %v", snap.Site, snap.Timestamp)
	}

	wantOrder := []string{"SYSTEM-BOARD", "fan_tray-1", "fan_tray-2", "PSU1"}
	if len(snap.Entities) != len(wantOrder) {
		t.Fatalf("len(Entities) = %d, want %d", len(snap.Entities), len(wantOrder))
	}
	for i, name := range wantOrder {
		if snap.Entities[i].Name != name {
			t.Errorf("Entities[%d].Name = %q, want %q", i, snap.Entities[i].Name, name)
		}
	}

	tests := []struct {
		name    string
		typ     string
		present bool
		faultOK bool
		temps   int
		fans    int
		errs    int
	}{
		{"SYSTEM-BOARD", "system_board", true, false, 1, 0, 1},
		{"fan_tray-1", "fan_tray", true, true, 0, 1, 0},
		{"fan_tray-2", "fan_tray", false, false, 0, 0, 0},
		{"PSU1", "psu_tray", true, false, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := snap.Entity(tt.name)
			if e == nil {
				t.Fatalf("Entity(%q) = nil", tt.name)
			}
			if e.Type != tt.typ || e.Present != tt.present {
				t.Errorf("type/present = %q/%v, want %q/%v", e.Type, e.Present, tt.typ, tt.present)
			}
			if (e.Fault != nil) != tt.faultOK {
				t.Errorf("fault reported = %v, want %v", e.Fault != nil, tt.faultOK)
			}
			if e.Fault != nil && *e.Fault {
				t.Errorf("fault = true, want false")
			}
			if len(e.Temperatures) != tt.temps || len(e.Fans) != tt.fans || len(e.Errors) != tt.errs {
				t.Errorf("temps/fans/errors = %d/%d/%d, want %d/%d/%d",
					len(e.Temperatures), len(e.Fans), len(e.Errors), tt.temps, tt.fans, tt.errs)
			}
			if len(e.Media) != 0 {
				t.Errorf("media collected with includeMedia off: %+v", e.Media)
			}
		})
	}

	if len(log.warns) != 1 {
		t.Errorf("warns = %v, want one for the missing ambient sensor", log.warns)
	}
}

func TestCollect_Readings(t *testing.T) {
	f := newFixture(t)
	snap, err := newCollector(f, false).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	cpu := snap.Entity("SYSTEM-BOARD").Temperatures[0]
	if cpu != (TemperatureState{Alias: "CPU", Celsius: 91, Alert: true}) {
		t.Errorf("CPU = %+v, want 91 °C with alert", cpu)
	}

	fan := snap.Entity("fan_tray-1").Fans[0]
	if fan != (FanState{Alias: "FAN1A", RPM: 12000}) {
		t.Errorf("FAN1A = %+v, want 12000 rpm without fault", fan)
	}

	psu := snap.Entity("PSU1")
	if psu.PowerOK == nil || !*psu.PowerOK {
		t.Errorf("PSU1 PowerOK = %v, want true", psu.PowerOK)
	}
	if snap.Entity("SYSTEM-BOARD").PowerOK != nil {
		t.Error("PowerOK set on a system board")
	}
}

func TestCollect_Media(t *testing.T) {
	f := newFixture(t)
	snap, err := newCollector(f, true).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	board := snap.Entity("SYSTEM-BOARD")
	if len(board.Media) != 2 {
		t.Fatalf("len(Media) = %d, want 2", len(board.Media))
	}

	port1 := board.Media[0]
	if !port1.Present || port1.Vendor != "ACME OPTICS" || port1.PartNumber != "QSFP-100G-SR4" || port1.Serial != "SN0001" {
		t.Errorf("PORT1 identity = %+v", port1)
	}
	if port1.Speed != "100G" || port1.Celsius != 25.5 || port1.Volts != 3.3 {
		t.Errorf("PORT1 speed/temp/volt = %s/%v/%v, want 100G/25.5/3.3", port1.Speed, port1.Celsius, port1.Volts)
	}
	if len(port1.Channels) != 4 {
		t.Fatalf("len(Channels) = %d, want 4", len(port1.Channels))
	}
	for _, ch := range port1.Channels {
		if ch.RxPowerMW != 0.5 || ch.TxBiasMA != 6.25 || !ch.TxEnabled {
			t.Errorf("channel %d = %+v", ch.Channel, ch)
		}
		if ch.TxPowerMW != nil {
			t.Errorf("channel %d tx power = %v, want nil on qsfp", ch.Channel, *ch.TxPowerMW)
		}
	}

	port2 := board.Media[1]
	if port2.Present || port2.Vendor != "" || port2.Channels != nil {
		t.Errorf("PORT2 = %+v, want empty cage", port2)
	}
}

func TestCollect_MediaWithoutTransport(t *testing.T) {
	f := newFixture(t)
	f.reg.SetTransport(nil)

	snap, err := newCollector(f, true).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	port1 := snap.Entity("SYSTEM-BOARD").Media[0]
	if !port1.Present || port1.Speed != "" {
		t.Errorf("PORT1 = %+v, want present without module data", port1)
	}
	if n := len(snap.Entity("SYSTEM-BOARD").Errors); n != 1 {
		t.Errorf("errors = %d, want only the ambient sensor", n)
	}
}

func TestCollect_Cancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newCollector(f, false).Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Collect() error = %v, want context.Canceled", err)
	}
}
