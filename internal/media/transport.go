package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nerrad567/sdi-core/internal/sdierr"
)

const (
	// CableI2CAddr is the default two-wire address of a module's memory map.
	CableI2CAddr = 0x50

	// BatchSize is the payload carried by one register access.
	BatchSize = 48

	// PageSize is the span of one memory page in a flat dump image.
	PageSize = 256

	dwordCount = BatchSize / 4
)

// Register is one MCIA access: a window of up to BatchSize bytes of module
// memory carried as host-order words. Byte i of the window is byte i%4,
// most significant first, of Dwords[i/4].
type Register struct {
	Module  uint8
	I2CAddr uint8
	Page    uint8
	Addr    uint16
	Size    uint16
	Dwords  [dwordCount]uint32
}

// Transport moves a Register to or from the hardware.
type Transport interface {
	GetMCIA(reg *Register) error
	SetMCIA(reg *Register) error
}

// Accessor reads and writes arbitrary ranges of module memory, splitting
// them into register-sized batches.
type Accessor struct {
	t       Transport
	i2cAddr uint8
}

// NewAccessor returns an Accessor on t using CableI2CAddr.
func NewAccessor(t Transport) *Accessor {
	return &Accessor{t: t, i2cAddr: CableI2CAddr}
}

// WithI2CAddr returns a copy of the accessor addressing a different device.
func (a *Accessor) WithI2CAddr(addr uint8) *Accessor {
	return &Accessor{t: a.t, i2cAddr: addr}
}

// Read returns size bytes of module memory starting at page:addr.
func (a *Accessor) Read(module, page uint8, addr uint16, size int) ([]byte, error) {
	out := make([]byte, size)
	var window [BatchSize]byte

	for off := 0; off < size; off += BatchSize {
		n := min(BatchSize, size-off)
		reg := Register{
			Module:  module,
			I2CAddr: a.i2cAddr,
			Page:    page,
			Addr:    addr + uint16(off),
			Size:    uint16(n),
		}
		if err := a.t.GetMCIA(&reg); err != nil {
			return nil, wrapTransport("get", module, page, reg.Addr, err)
		}

		for w := range reg.Dwords {
			binary.BigEndian.PutUint32(window[w*4:], reg.Dwords[w])
		}
		copy(out[off:off+n], window[:n])
	}
	return out, nil
}

// Write stores data into module memory starting at page:addr.
func (a *Accessor) Write(module, page uint8, addr uint16, data []byte) error {
	for off := 0; off < len(data); off += BatchSize {
		n := min(BatchSize, len(data)-off)

		var window [BatchSize]byte
		copy(window[:], data[off:off+n])

		reg := Register{
			Module:  module,
			I2CAddr: a.i2cAddr,
			Page:    page,
			Addr:    addr + uint16(off),
			Size:    uint16(n),
		}
		for w := range reg.Dwords {
			reg.Dwords[w] = binary.BigEndian.Uint32(window[w*4:])
		}

		if err := a.t.SetMCIA(&reg); err != nil {
			return wrapTransport("set", module, page, reg.Addr, err)
		}
	}
	return nil
}

func wrapTransport(op string, module, page uint8, addr uint16, err error) error {
	if errors.Is(err, sdierr.ErrIO) {
		return err
	}
	return sdierr.NewIOError("mcia "+op, fmt.Sprintf("module %d page %d addr %d", module, page, addr), err)
}

// FileTransport serves module memory from flat dump images. Module N lives
// in <Dir>/module<N>.bin and page:addr sits at offset page*PageSize+addr.
type FileTransport struct {
	Dir string
}

// NewFileTransport returns a FileTransport reading images from dir.
func NewFileTransport(dir string) *FileTransport {
	return &FileTransport{Dir: dir}
}

// ImagePath returns the dump file for a module.
func (f *FileTransport) ImagePath(module uint8) string {
	return filepath.Join(f.Dir, fmt.Sprintf("module%d.bin", module))
}

func offset(reg *Register) int64 {
	return int64(reg.Page)*PageSize + int64(reg.Addr)
}

// GetMCIA implements Transport.
func (f *FileTransport) GetMCIA(reg *Register) error {
	if reg.Size > BatchSize {
		return fmt.Errorf("%w: register size %d", sdierr.ErrInvalidArgument, reg.Size)
	}

	path := f.ImagePath(reg.Module)
	fh, err := os.Open(path)
	if err != nil {
		return sdierr.NewIOError("open", path, err)
	}
	defer fh.Close()

	var window [BatchSize]byte
	if _, err := fh.ReadAt(window[:reg.Size], offset(reg)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return sdierr.NewIOError("read", path, err)
	}

	for w := range reg.Dwords {
		reg.Dwords[w] = binary.BigEndian.Uint32(window[w*4:])
	}
	return nil
}

// SetMCIA implements Transport.
func (f *FileTransport) SetMCIA(reg *Register) error {
	if reg.Size > BatchSize {
		return fmt.Errorf("%w: register size %d", sdierr.ErrInvalidArgument, reg.Size)
	}

	path := f.ImagePath(reg.Module)
	fh, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return sdierr.NewIOError("open", path, err)
	}
	defer fh.Close()

	var window [BatchSize]byte
	for w := range reg.Dwords {
		binary.BigEndian.PutUint32(window[w*4:], reg.Dwords[w])
	}
	if _, err := fh.WriteAt(window[:reg.Size], offset(reg)); err != nil {
		return sdierr.NewIOError("write", path, err)
	}
	return nil
}
