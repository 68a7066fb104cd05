package chassis

import (
	"errors"
	"os"
	"testing"

	"github.com/nerrad567/sdi-core/internal/media"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

func TestMediaPresenceGet(t *testing.T) {
	reg, io := newFixture(t)
	board := mustFind(t, reg, EntitySystemBoard, 1)

	tests := []struct {
		alias string
		want  bool
	}{
		{"PORT1", true},
		{"PORT2", false},
	}
	for _, tt := range tests {
		got, err := reg.MediaPresenceGet(mustResource(t, board, ResourceMedia, tt.alias))
		if err != nil {
			t.Fatalf("MediaPresenceGet(%s) error = %v", tt.alias, err)
		}
		if got != tt.want {
			t.Errorf("MediaPresenceGet(%s) = %v, want %v", tt.alias, got, tt.want)
		}
	}

	delete(io.attrs, "/bsp/qsfp/port1_status")
	if _, err := reg.MediaPresenceGet(mustResource(t, board, ResourceMedia, "PORT1")); !errors.Is(err, sdierr.ErrIO) {
		t.Errorf("MediaPresenceGet(unreadable) error = %v, want ErrIO", err)
	}
}

func TestMedia_NoTransport(t *testing.T) {
	reg, _ := newFixture(t)
	port := mustResource(t, mustFind(t, reg, EntitySystemBoard, 1), ResourceMedia, "PORT1")

	if _, err := reg.MediaVendorInfoGet(port, media.VendorName); !errors.Is(err, sdierr.ErrNotSupported) {
		t.Errorf("MediaVendorInfoGet() error = %v, want ErrNotSupported", err)
	}
	if err := reg.MediaTxControl(port, 0, true); !errors.Is(err, sdierr.ErrNotSupported) {
		t.Errorf("MediaTxControl() error = %v, want ErrNotSupported", err)
	}
}

func writeModuleImage(t *testing.T, ft *media.FileTransport, module uint8) []byte {
	t.Helper()
	img := make([]byte, 4*media.PageSize)
	img[0] = media.IDQSFP28
	img[22], img[23] = 0x19, 0x80
	copy(img[148:], "ACME OPTICS     ")
	if err := os.WriteFile(ft.ImagePath(module), img, 0600); err != nil {
		t.Fatalf("failed to write module image: %v", err)
	}
	return img
}

func TestMedia_FileTransport(t *testing.T) {
	ft := media.NewFileTransport(t.TempDir())
	writeModuleImage(t, ft, 0)

	log := &testLogger{}
	reg, _ := newFixture(t, WithTransport(ft), WithLogger(log))
	board := mustFind(t, reg, EntitySystemBoard, 1)
	port := mustResource(t, board, ResourceMedia, "PORT1")

	name, err := reg.MediaVendorInfoGet(port, media.VendorName)
	if err != nil {
		t.Fatalf("MediaVendorInfoGet() error = %v", err)
	}
	if name != "ACME OPTICS" {
		t.Errorf("MediaVendorInfoGet() = %q, want %q", name, "ACME OPTICS")
	}

	temp, err := reg.MediaModuleMonitorGet(port, media.MonitorTemperature)
	if err != nil {
		t.Fatalf("MediaModuleMonitorGet() error = %v", err)
	}
	if temp != 25.5 {
		t.Errorf("MediaModuleMonitorGet(temperature) = %v, want 25.5", temp)
	}

	if speed, err := reg.MediaSpeedGet(port); err != nil || speed != media.Speed100G {
		t.Errorf("MediaSpeedGet() = %v, %v, want 100G", speed, err)
	}

	if err := reg.MediaTxControl(port, 1, false); err != nil {
		t.Fatalf("MediaTxControl() error = %v", err)
	}
	if on, err := reg.MediaTxControlStatusGet(port, 1); err != nil || on {
		t.Errorf("MediaTxControlStatusGet() = %v, %v, want false", on, err)
	}

	if err := reg.MediaLEDSet(port, 0, media.Speed100G); !errors.Is(err, sdierr.ErrNotSupported) {
		t.Errorf("MediaLEDSet() error = %v, want ErrNotSupported", err)
	}

	if err := reg.SysInit(); err != nil {
		t.Fatalf("SysInit() error = %v", err)
	}
	if len(log.warns) != 0 {
		t.Errorf("warnings = %v, want none", log.warns)
	}

	reg.SetTransport(nil)
	if _, err := reg.MediaSpeedGet(port); !errors.Is(err, sdierr.ErrNotSupported) {
		t.Errorf("MediaSpeedGet(detached) error = %v, want ErrNotSupported", err)
	}
}

func TestEntityInit_MediaProbeFailure(t *testing.T) {
	ft := media.NewFileTransport(t.TempDir())

	log := &testLogger{}
	reg, _ := newFixture(t, WithTransport(ft), WithLogger(log))
	board := mustFind(t, reg, EntitySystemBoard, 1)

	if err := reg.EntityInit(board); err != nil {
		t.Fatalf("EntityInit() error = %v", err)
	}
	if len(log.warns) != 1 {
		t.Errorf("warnings = %v, want one probe failure for PORT1", log.warns)
	}
}
