// Package sysfs reads and writes the scalar kernel attributes that back the
// chassis hardware: temperatures, fan tachometers, LED and presence
// registers, and raw EEPROM images.
//
// Every attribute is addressed by a directory path and an attribute name.
// The full path is the plain concatenation path+attr, so settings documents
// carry the trailing slash on the path.
package sysfs

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// IO is the scalar attribute collaborator used by the chassis layer.
type IO interface {
	GetString(path, attr string) (string, error)
	SetString(path, attr, val string) error
	GetUint(path, attr string) (uint64, error)
	SetUint(path, attr string, val uint64) error
	GetInt(path, attr string) (int64, error)
	DataSize(path, attr string) (int, error)
	Data(path, attr string, size int) ([]byte, error)
}

// FS implements IO on the real filesystem.
//
// Root, when set, is prepended to every path so a captured sysfs tree can be
// replayed from an arbitrary directory.
type FS struct {
	Root string
}

// New returns an FS rooted at root. An empty root addresses the live system.
func New(root string) *FS {
	return &FS{Root: root}
}

func (f *FS) full(path, attr string) string {
	return f.Root + path + attr
}

// check runs an existence check through access(2) so a missing attribute is
// reported with its errno.
func (f *FS) check(op, full string) error {
	if err := unix.Access(full, unix.F_OK); err != nil {
		return sdierr.NewIOError(op, full, err)
	}
	return nil
}

func (f *FS) token(path, attr string) (string, string, error) {
	full := f.full(path, attr)
	if err := f.check("read", full); err != nil {
		return "", full, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", full, sdierr.NewIOError("read", full, err)
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", full, nil
	}
	return fields[0], full, nil
}

// GetString returns the first whitespace-delimited token of the attribute.
func (f *FS) GetString(path, attr string) (string, error) {
	tok, _, err := f.token(path, attr)
	return tok, err
}

// SetString writes val verbatim.
func (f *FS) SetString(path, attr, val string) error {
	full := f.full(path, attr)
	if err := f.check("write", full); err != nil {
		return err
	}
	if err := os.WriteFile(full, []byte(val), 0644); err != nil {
		return sdierr.NewIOError("write", full, err)
	}
	return nil
}

// GetUint parses the first token as an unsigned decimal integer.
func (f *FS) GetUint(path, attr string) (uint64, error) {
	tok, full, err := f.token(path, attr)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not an unsigned integer", sdierr.ErrInvalidArgument, full, tok)
	}
	return v, nil
}

// SetUint writes val in decimal.
func (f *FS) SetUint(path, attr string, val uint64) error {
	return f.SetString(path, attr, strconv.FormatUint(val, 10))
}

// GetInt parses the first token as a signed decimal integer.
func (f *FS) GetInt(path, attr string) (int64, error) {
	tok, full, err := f.token(path, attr)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not an integer", sdierr.ErrInvalidArgument, full, tok)
	}
	return v, nil
}

// DataSize returns the size in bytes of a binary attribute.
func (f *FS) DataSize(path, attr string) (int, error) {
	full := f.full(path, attr)
	fi, err := os.Stat(full)
	if err != nil {
		return 0, sdierr.NewIOError("stat", full, err)
	}
	return int(fi.Size()), nil
}

// Data reads exactly size bytes from the start of a binary attribute.
// A short read is an I/O error.
func (f *FS) Data(path, attr string, size int) ([]byte, error) {
	full := f.full(path, attr)
	if size <= 0 {
		return nil, fmt.Errorf("%w: %s: size %d", sdierr.ErrInvalidArgument, full, size)
	}

	fh, err := os.Open(full)
	if err != nil {
		return nil, sdierr.NewIOError("open", full, err)
	}
	defer fh.Close()

	buf := make([]byte, size)
	if _, err := io.ReadFull(fh, buf); err != nil {
		return nil, sdierr.NewIOError("read", full, err)
	}
	return buf, nil
}
