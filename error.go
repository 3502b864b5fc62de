package adb

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// TODO(jmh): consider removing most of this sentinel error values and
// provide useful error interfaces. Explicitly document error handling
// possibilities on individual functions.

// Sentinel error values used by this package
var (
	// The adb binary could not be located or executed.
	ErrExecutableNotFound = errors.New("adb executable not found")
	// Tried to address a device the server doesn't know about.
	ErrDeviceNotFound = errors.New("device not found")
	// Connect was given an endpoint the server cannot reach.
	ErrHostUnreachable = errors.New("unable to connect to host")
	// Connect was given an endpoint that is already connected.
	ErrAlreadyConnected = errors.New("already connected")
	// No adb server daemon is running on this host.
	ErrServerNotRunning = errors.New("server not running")

	ErrParsing            = errors.New("parse error")
	ErrAssertionViolation = errors.New("assertion violation")
)

// CommandError reports a child adb process that exited non-zero. It carries
// the exit status and the stderr text the binary produced, unmodified.
type CommandError struct {
	Cmd      string
	ExitCode int
	Stderr   []byte
}

func (e *CommandError) Error() string {
	if len(e.Stderr) == 0 {
		return fmt.Sprintf("adb %s: exit code %d", e.Cmd, e.ExitCode)
	}
	return fmt.Sprintf("adb %s: exit code %d: %s",
		e.Cmd, e.ExitCode, bytes.TrimSpace(e.Stderr))
}
