package telemetry

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/sdi-core/internal/cfgtree"
	"github.com/nerrad567/sdi-core/internal/chassis"
	"github.com/nerrad567/sdi-core/internal/media"
	"github.com/nerrad567/sdi-core/internal/sysfs"
)

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
        reference: fan1_a
        name: FAN1A
        type: SDI_RESOURCE_FAN
  - node: fan_tray
    instance: 2
    type: SDI_ENTITY_FAN_TRAY
    presence: fan2_prsnt
    children:
      - node: resource
        reference: fan2_a
        name: FAN2A
        type: SDI_RESOURCE_FAN
  - node: psu_tray
    instance: 1
    alias: PSU1
    type: SDI_ENTITY_PSU_TRAY
    presence: psu1_prsnt
`

const fixtureSettings = `
node: device_settings
children:
  - node: entity
    name: SYSTEM-BOARD
    children:
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
  - node: entity
    name: fan_tray-2
    children:
      - node: presence
        name: fan2_prsnt
        path: /bsp/fan/
        present: "1"
        not_present: "0"
      - node: fan
        name: fan2_a
        path: /bsp/fan/
        children:
          - node: speed
            get: fan2_speed_get
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
`

// fixtureAttrs populates the sysfs tree. amb_temp is deliberately missing.
var fixtureAttrs = map[string]string{
	"/bsp/thermal/cpu_temp":      "91000",
	"/bsp/leds/status_led":       "none",
	"/bsp/qsfp/port1_status":     "1",
	"/bsp/qsfp/port2_status":     "0",
	"/bsp/fan/fan1_prsnt":        "1",
	"/bsp/fan/fan1_fault":        "0",
	"/bsp/fan/fan1_max":          "20000",
	"/bsp/fan/fan1_pwm":          "0",
	"/bsp/fan/fan1_speed_get":    "12000",
	"/bsp/fan/fan1_status":       "0",
	"/bsp/fan/fan2_prsnt":        "0",
	"/bsp/power/psu1_prsnt":      "1",
	"/bsp/power/psu1_pwr_status": "1",
	"/bsp/power/psu1_rating":     "650000",
}

type fixture struct {
	reg   *chassis.Registry
	root  string
	media *media.FileTransport
}

func (f *fixture) attr(t *testing.T, key string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.root, key))
	if err != nil {
		t.Fatalf("failed to read %s: %v", key, err)
	}
	return string(b)
}

func parseYAML(t *testing.T, doc string) *cfgtree.Node {
	t.Helper()
	n, err := cfgtree.Parse([]byte(doc), cfgtree.FormatYAML)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return n
}

// writeModuleImage stores a QSFP28 dump: 25.5 °C, 3.3 V, 0.5 mW rx and
// 6.25 mA bias on every channel, all transmitters enabled.
func writeModuleImage(t *testing.T, ft *media.FileTransport, module uint8) {
	t.Helper()
	img := make([]byte, 4*media.PageSize)
	img[0] = media.IDQSFP28
	img[22], img[23] = 0x19, 0x80
	img[26], img[27] = 0x80, 0xe8
	for ch := range 4 {
		img[34+2*ch], img[35+2*ch] = 0x13, 0x88
		img[42+2*ch], img[43+2*ch] = 0x0c, 0x35
	}
	copy(img[148:], "ACME OPTICS     ")
	copy(img[168:], "QSFP-100G-SR4   ")
	copy(img[196:], "SN0001          ")
	if err := os.WriteFile(ft.ImagePath(module), img, 0600); err != nil {
		t.Fatalf("failed to write module image: %v", err)
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	for key, val := range fixtureAttrs {
		full := filepath.Join(root, key)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(val+"\n"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", key, err)
		}
	}

	ft := media.NewFileTransport(t.TempDir())
	writeModuleImage(t, ft, 0)

	reg := chassis.MustRegister(
		parseYAML(t, fixtureEntities),
		parseYAML(t, fixtureSettings),
		sysfs.New(root),
		chassis.WithTransport(ft),
	)
	return &fixture{reg: reg, root: root, media: ft}
}

// testLogger records warnings.
type testLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *testLogger) Debug(string, ...any) {}
func (l *testLogger) Info(string, ...any)  {}
func (l *testLogger) Error(string, ...any) {}

func (l *testLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCollector(f *fixture, includeMedia bool) *Collector {
	c := NewCollector(f.reg, "switch-001", includeMedia)
	c.now = func() time.Time { return fixedTime }
	return c
}
