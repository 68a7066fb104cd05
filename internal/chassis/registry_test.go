package chassis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerrad567/sdi-core/internal/eeprom"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

func TestMustRegister_Fixture(t *testing.T) {
	reg, _ := newFixture(t)

	entities := reg.Entities()
	if len(entities) != 3 {
		t.Fatalf("len(Entities()) = %d, want 3", len(entities))
	}

	wantOrder := []string{"SYSTEM-BOARD", "fan_tray-1", "PSU1"}
	for i, e := range entities {
		if e.Name != wantOrder[i] {
			t.Errorf("Entities()[%d].Name = %q, want %q", i, e.Name, wantOrder[i])
		}
	}

	tests := []struct {
		typ   EntityType
		count int
	}{
		{EntitySystemBoard, 1},
		{EntityFanTray, 1},
		{EntityPSUTray, 1},
	}
	for _, tt := range tests {
		if got := reg.Count(tt.typ); got != tt.count {
			t.Errorf("Count(%s) = %d, want %d", tt.typ, got, tt.count)
		}
	}
}

func TestRegistry_Find(t *testing.T) {
	reg, _ := newFixture(t)

	tests := []struct {
		typ      EntityType
		instance int
		want     string
	}{
		{EntitySystemBoard, 1, "SYSTEM-BOARD"},
		{EntityFanTray, 1, "fan_tray-1"},
		{EntityPSUTray, 1, "PSU1"},
		{EntityFanTray, 2, ""},
		{EntityPSUTray, 0, ""},
	}
	for _, tt := range tests {
		e := reg.Find(tt.typ, tt.instance)
		switch {
		case tt.want == "" && e != nil:
			t.Errorf("Find(%s, %d) = %v, want nil", tt.typ, tt.instance, e)
		case tt.want != "" && (e == nil || e.Name != tt.want):
			t.Errorf("Find(%s, %d) = %v, want %s", tt.typ, tt.instance, e, tt.want)
		}
	}
}

func TestRegistry_EntityPolicies(t *testing.T) {
	reg, _ := newFixture(t)

	board := mustFind(t, reg, EntitySystemBoard, 1)
	if !board.Presence.Fixed {
		t.Error("system board presence is not fixed")
	}
	if board.Fault != nil || board.Power != nil {
		t.Error("system board has fault or power policy")
	}
	if board.Info() == nil || board.Info().Alias != "SYS_EEPROM" {
		t.Errorf("system board Info() = %v, want SYS_EEPROM", board.Info())
	}

	tray := mustFind(t, reg, EntityFanTray, 1)
	want := PresencePolicy{Name: "fan1_prsnt", Path: "/bsp/fan/", Present: "1", NotPresent: "0"}
	if tray.Presence != want {
		t.Errorf("fan tray Presence = %+v, want %+v", tray.Presence, want)
	}
	if tray.Fault == nil || tray.Fault.Fault != "1" {
		t.Errorf("fan tray Fault = %+v, want fault value 1", tray.Fault)
	}

	psu := mustFind(t, reg, EntityPSUTray, 1)
	if psu.Power == nil {
		t.Fatal("psu tray has no power policy")
	}
	if psu.Power.Type != eeprom.PowerTypeAC {
		t.Errorf("psu Power.Type = %v, want AC", psu.Power.Type)
	}
	if psu.Power.RatingName != "psu1_rating" || psu.Power.StatusName != "psu1_pwr_status" {
		t.Errorf("psu Power = %+v", psu.Power)
	}
	wantCtl := PowerControl{Path: "/bsp/power/", Reset: "psu1_reset", PowerHdl: "psu1_pwr", PowerOn: "1", PowerOff: "0"}
	if psu.PowerControl != wantCtl {
		t.Errorf("psu PowerControl = %+v, want %+v", psu.PowerControl, wantCtl)
	}
}

func TestEntity_Resources(t *testing.T) {
	reg, _ := newFixture(t)
	board := mustFind(t, reg, EntitySystemBoard, 1)

	if got := len(board.Resources()); got != 8 {
		t.Errorf("len(Resources()) = %d, want 8", got)
	}

	tests := []struct {
		typ   ResourceType
		count int
	}{
		{ResourceTemperature, 2},
		{ResourceMedia, 2},
		{ResourceEntityInfo, 1},
		{ResourceFan, 0},
	}
	for _, tt := range tests {
		if got := board.ResourceCount(tt.typ); got != tt.count {
			t.Errorf("ResourceCount(%s) = %d, want %d", tt.typ, got, tt.count)
		}
	}

	if board.FindResource(ResourceLED, "CPU") != nil {
		t.Error("FindResource(LED, CPU) matched a temperature sensor")
	}

	var aliases []string
	board.ForEachResource(func(r *Resource) { aliases = append(aliases, r.Alias) })
	if aliases[0] != "SYS_EEPROM" || aliases[len(aliases)-1] != "PORT2" {
		t.Errorf("ForEachResource order = %v", aliases)
	}

	cpu := mustResource(t, board, ResourceTemperature, "CPU")
	if cpu.Entity() != board {
		t.Error("Resource.Entity() does not return the owning entity")
	}
	s, ok := cpu.Settings.(*TemperatureSettings)
	if !ok || !s.Thresholds || s.Low != 5 || s.High != 85 {
		t.Errorf("cpu settings = %+v", cpu.Settings)
	}
}

func TestRegister_DuplicateAliasFirstWins(t *testing.T) {
	entities := `
node: entity_list
children:
  - node: system_board
    instance: 1
    alias: SB
    type: SDI_ENTITY_SYSTEM_BOARD
    presence: fixed
    children:
      - node: resource
        reference: t1
        name: T
        type: SDI_RESOURCE_TEMPERATURE
      - node: resource
        reference: t2
        name: T
        type: SDI_RESOURCE_TEMPERATURE
`
	settings := `
node: device_settings
children:
  - node: entity
    name: SB
    children:
      - node: temp
        name: t1
        path: /a/
      - node: temp
        name: t2
        path: /b/
`
	log := &testLogger{}
	reg := MustRegister(parseYAML(t, entities), parseYAML(t, settings), newFakeIO(), WithLogger(log))

	board := mustFind(t, reg, EntitySystemBoard, 1)
	if got := board.ResourceCount(ResourceTemperature); got != 2 {
		t.Errorf("ResourceCount() = %d, want 2", got)
	}
	if r := mustResource(t, board, ResourceTemperature, "T"); r.Reference != "t1" {
		t.Errorf("FindResource(T).Reference = %q, want t1", r.Reference)
	}
	if len(log.warns) != 1 {
		t.Errorf("warnings = %v, want one duplicate alias warning", log.warns)
	}
}

func TestRegister_ConfigCorrupted(t *testing.T) {
	const okSettings = `
node: device_settings
children:
  - node: entity
    name: SB
    children:
      - node: temp
        name: t1
        path: /a/
`
	board := func(attrs string) string {
		return "node: entity_list\nchildren:\n  - node: system_board\n" + attrs
	}

	tests := []struct {
		name     string
		entities string
		settings string
		attr     string
	}{
		{
			name:     "missing instance",
			entities: board("    alias: SB\n    type: SDI_ENTITY_SYSTEM_BOARD\n    presence: fixed\n"),
			settings: okSettings,
			attr:     "instance",
		},
		{
			name:     "non numeric instance",
			entities: board("    instance: one\n    alias: SB\n    type: SDI_ENTITY_SYSTEM_BOARD\n    presence: fixed\n"),
			settings: okSettings,
			attr:     "instance",
		},
		{
			name:     "unknown entity type",
			entities: board("    instance: 1\n    alias: SB\n    type: SDI_ENTITY_LINECARD\n    presence: fixed\n"),
			settings: okSettings,
			attr:     "type",
		},
		{
			name:     "missing presence",
			entities: board("    instance: 1\n    alias: SB\n    type: SDI_ENTITY_SYSTEM_BOARD\n"),
			settings: okSettings,
			attr:     "presence",
		},
		{
			name:     "no settings block for alias",
			entities: board("    instance: 1\n    type: SDI_ENTITY_SYSTEM_BOARD\n    presence: fixed\n"),
			settings: okSettings,
			attr:     "alias",
		},
		{
			name:     "presence probe missing",
			entities: board("    instance: 1\n    alias: SB\n    type: SDI_ENTITY_SYSTEM_BOARD\n    presence: sb_prsnt\n"),
			settings: okSettings,
		},
		{
			name: "unknown resource type",
			entities: board("    instance: 1\n    alias: SB\n    type: SDI_ENTITY_SYSTEM_BOARD\n    presence: fixed\n" +
				"    children:\n      - node: resource\n        reference: t1\n        name: T\n        type: SDI_RESOURCE_HEATER\n"),
			settings: okSettings,
			attr:     "type",
		},
		{
			name: "resource reference missing",
			entities: board("    instance: 1\n    alias: SB\n    type: SDI_ENTITY_SYSTEM_BOARD\n    presence: fixed\n" +
				"    children:\n      - node: resource\n        reference: t9\n        name: T\n        type: SDI_RESOURCE_TEMPERATURE\n"),
			settings: okSettings,
			attr:     "reference",
		},
		{
			name: "unknown eeprom format",
			entities: board("    instance: 1\n    alias: SB\n    type: SDI_ENTITY_SYSTEM_BOARD\n    presence: fixed\n" +
				"    children:\n      - node: resource\n        reference: e\n        name: E\n        type: SDI_RESOURCE_ENTITY_INFO\n"),
			settings: "node: s\nchildren:\n  - node: entity\n    name: SB\n    children:\n" +
				"      - node: eeprom\n        name: e\n        path: /e/\n        type: SDI_EEPROM_SYS_onie\n",
			attr: "type",
		},
		{
			name: "led without on state",
			entities: board("    instance: 1\n    alias: SB\n    type: SDI_ENTITY_SYSTEM_BOARD\n    presence: fixed\n" +
				"    children:\n      - node: resource\n        reference: l\n        name: L\n        type: SDI_RESOURCE_LED\n"),
			settings: "node: s\nchildren:\n  - node: entity\n    name: SB\n    children:\n" +
				"      - node: led\n        name: l\n        path: /l/\n        children:\n          - node: state\n            off: \"0\"\n",
			attr: "on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ents, sets := parseYAML(t, tt.entities), parseYAML(t, tt.settings)
			ce := configPanic(t, func() { MustRegister(ents, sets, newFakeIO()) })
			if !errors.Is(ce, sdierr.ErrConfigCorrupted) {
				t.Errorf("panic error %v does not match ErrConfigCorrupted", ce)
			}
			if tt.attr != "" && ce.Attr != tt.attr {
				t.Errorf("ConfigError.Attr = %q, want %q (%v)", ce.Attr, tt.attr, ce)
			}
		})
	}
}

func TestRegister_PSUPowerType(t *testing.T) {
	entities := parseYAML(t, `
node: entity_list
children:
  - node: psu_tray
    instance: 1
    alias: PSU1
    type: SDI_ENTITY_PSU_TRAY
    presence: fixed
`)
	settings := parseYAML(t, `
node: device_settings
children:
  - node: entity
    name: PSU1
    type: HVDC
    children:
      - node: power
        name: s
        path: /p/
        present: "1"
        not_present: "0"
      - node: rating
        name: r
        path: /p/
`)
	ce := configPanic(t, func() { MustRegister(entities, settings, newFakeIO()) })
	if ce.Attr != "type" {
		t.Errorf("ConfigError.Attr = %q, want type", ce.Attr)
	}
}

func TestRegister_DuplicateInstance(t *testing.T) {
	entities := parseYAML(t, `
node: entity_list
children:
  - node: fan_tray
    instance: 1
    alias: FT
    type: SDI_ENTITY_FAN_TRAY
    presence: fixed
  - node: fan_tray
    instance: 1
    alias: FT
    type: SDI_ENTITY_FAN_TRAY
    presence: fixed
`)
	settings := parseYAML(t, "node: s\nchildren:\n  - node: entity\n    name: FT\n")
	configPanic(t, func() { MustRegister(entities, settings, newFakeIO()) })
}

func TestLoad_XMLAndYAML(t *testing.T) {
	dir := t.TempDir()
	entityPath := filepath.Join(dir, "entity.xml")
	settingsPath := filepath.Join(dir, "device.yaml")

	xmlDoc := `<?xml version="1.0"?>
<entity_list>
  <system_board instance="1" alias="SB" type="SDI_ENTITY_SYSTEM_BOARD" presence="fixed">
    <resource reference="cpu" name="CPU" type="SDI_RESOURCE_TEMPERATURE"/>
  </system_board>
</entity_list>
`
	yamlDoc := `
node: device_settings
children:
  - node: entity
    name: SB
    children:
      - node: temp
        name: cpu
        path: /t/
`
	if err := os.WriteFile(entityPath, []byte(xmlDoc), 0600); err != nil {
		t.Fatalf("failed to write entity list: %v", err)
	}
	if err := os.WriteFile(settingsPath, []byte(yamlDoc), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}

	io := newFakeIO()
	io.attrs["/t/cpu"] = "38500"

	reg, err := Load(entityPath, settingsPath, io)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cpu := mustResource(t, mustFind(t, reg, EntitySystemBoard, 1), ResourceTemperature, "CPU")
	got, err := reg.TemperatureGet(cpu)
	if err != nil {
		t.Fatalf("TemperatureGet() error = %v", err)
	}
	if got != 38 {
		t.Errorf("TemperatureGet() = %d, want 38", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.xml"), settingsPath, io); err == nil {
		t.Error("Load(missing) error = nil")
	}
}

func TestParseTypes(t *testing.T) {
	tests := []struct {
		in      string
		want    EntityType
		wantErr bool
	}{
		{"SDI_ENTITY_SYSTEM_BOARD", EntitySystemBoard, false},
		{"fan_tray", EntityFanTray, false},
		{"psu_tray", EntityPSUTray, false},
		{"sdi_entity_psu_tray", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseEntityType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEntityType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseEntityType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if rt, err := ParseResourceType("digit_display_led"); err != nil || rt != ResourceDigitDisplayLED {
		t.Errorf("ParseResourceType(digit_display_led) = %v, %v", rt, err)
	}
	if ResourceUpgradablePLD.Label() != "upgradable_pld" {
		t.Errorf("Label() = %q, want upgradable_pld", ResourceUpgradablePLD.Label())
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg, _ := newFixture(t)

	tray := reg.Lookup("fan_tray-1")
	if tray == nil || tray.Type != EntityFanTray {
		t.Fatalf("Lookup(fan_tray-1) = %v", tray)
	}
	if reg.Lookup("fan_tray-9") != nil {
		t.Error("Lookup(fan_tray-9) != nil")
	}

	if r := tray.ResourceByAlias("FAN1B"); r == nil || r.Type != ResourceFan {
		t.Errorf("ResourceByAlias(FAN1B) = %v", r)
	}
	if tray.ResourceByAlias("CPU") != nil {
		t.Error("ResourceByAlias(CPU) found a resource of another entity")
	}
}
