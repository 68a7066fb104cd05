// Package sdierr defines the error taxonomy shared by every layer of the
// chassis abstraction.
//
// Callers classify failures with errors.Is against the sentinels below:
//
//	if errors.Is(err, sdierr.ErrNotSupported) {
//	    // capability absent on this hardware
//	}
package sdierr

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	// ErrConfigCorrupted marks a configuration defect found during registration.
	// Registration does not return it; it panics with a *ConfigError wrapping it.
	ErrConfigCorrupted = errors.New("sdi: configuration corrupted")

	// ErrInvalidArgument is returned for a bad handle, an out-of-range
	// parameter or a length that runs past the end of a buffer.
	ErrInvalidArgument = errors.New("sdi: invalid argument")

	// ErrInvalidFormat is returned for a structurally malformed buffer.
	// It also matches ErrInvalidArgument.
	ErrInvalidFormat error = &classError{msg: "sdi: invalid format", parent: ErrInvalidArgument}

	// ErrIO is returned when a sysfs attribute or register transport fails.
	ErrIO = errors.New("sdi: i/o error")

	// ErrValidationFailed is returned for a wrong magic string or block type tag.
	ErrValidationFailed = errors.New("sdi: validation failed")

	// ErrNotSupported is returned when an operation is not available for
	// this hardware or configuration.
	ErrNotSupported = errors.New("sdi: not supported")

	// ErrPermissionDenied is returned for a resource of the wrong type or an
	// entity policy that is not configured.
	ErrPermissionDenied = errors.New("sdi: permission denied")
)

// classError is a sentinel that also belongs to a broader class.
type classError struct {
	msg    string
	parent error
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Is(target error) bool { return target == e.parent }

// ConfigError describes a defect in the entity or settings documents.
type ConfigError struct {
	Node   string
	Attr   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("%v: %s: %s (attribute %q)", ErrConfigCorrupted, e.Node, e.Reason, e.Attr)
	}
	return fmt.Sprintf("%v: %s: %s", ErrConfigCorrupted, e.Node, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfigCorrupted }

// IOError records a failed sysfs or transport operation.
type IOError struct {
	Op    string
	Path  string
	Errno unix.Errno
	Err   error
}

func (e *IOError) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("sdi: %s %s: %v", e.Op, e.Path, e.Errno)
	}
	return fmt.Sprintf("sdi: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports ErrIO for every IOError so callers need not know the errno.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// NewIOError wraps err for the given operation and path, extracting the errno
// when the cause carries one.
func NewIOError(op, path string, err error) *IOError {
	ioe := &IOError{Op: op, Path: path, Err: err}
	var errno unix.Errno
	if errors.As(err, &errno) {
		ioe.Errno = errno
	}
	return ioe
}

// Corrupted panics with a *ConfigError. Registration uses it for every
// defect that makes the chassis description unusable.
func Corrupted(node, attr, reason string) {
	panic(&ConfigError{Node: node, Attr: attr, Reason: reason})
}
