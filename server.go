package adb

import (
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultExecutableName is the name of the adb binary on the PATH.
	DefaultExecutableName = "adb"
	// DefaultHost is the host the adb server listens on by default.
	DefaultHost = "localhost"
	// DefaultPort is the default port the adb server listens on.
	DefaultPort = 5037
)

// lookPath locates the adb binary on the system.
// This exists only for easier mocking.
var lookPath = exec.LookPath

// Server holds what is needed to invoke the adb binary repeatedly.
// Use New or NewDefault to create one.
type Server struct {
	path string
	host string
	port int

	// extra KEY=VALUE entries for the child environment
	env []string
}

// NewDefault creates a new Server with the default binary name, host and
// port.
func NewDefault() (*Server, error) {
	return New(DefaultExecutableName, DefaultHost, DefaultPort)
}

// New creates a new Server that talks to the adb server on host:port
// through the binary at path. The binary is located eagerly, so a missing
// installation surfaces here as ErrExecutableNotFound, and the server is
// started.
func New(path, host string, port int) (*Server, error) {
	resolved, err := lookPath(path)
	if err != nil {
		return nil, errors.Wrapf(ErrExecutableNotFound, "%q", path)
	}
	s := &Server{
		path: resolved,
		host: host,
		port: port,
	}
	if err := start(s); err != nil {
		return nil, err
	}
	return s, nil
}

func start(s *Server) error {
	_, err := s.Run("start-server")
	return errors.WithMessage(err, "error starting server")
}

// SetEnv adds KEY=VALUE entries passed to every child process, e.g.
// ANDROID_SERIAL, ANDROID_PRODUCT_OUT, ADB_TRACE or ANDROID_LOG_TAGS.
func (s *Server) SetEnv(env ...string) {
	s.env = append(s.env, env...)
}

func (s *Server) environ() []string {
	if len(s.env) == 0 {
		// inherit the parent environment
		return nil
	}
	return append(os.Environ(), s.env...)
}

// globalArgs are placed before every subcommand. Non-default host and port
// become the binary's -H and -P flags.
func (s *Server) globalArgs() []string {
	var args []string
	if s.host != "" && s.host != DefaultHost {
		args = append(args, "-H", s.host)
	}
	if s.port != 0 && s.port != DefaultPort {
		args = append(args, "-P", strconv.Itoa(s.port))
	}
	return args
}

const versionBanner = "Android Debug Bridge version "

// Version returns the version of the adb release, e.g. "1.0.41".
func (s *Server) Version() (string, error) {
	lines, err := s.runLines("version")
	if err != nil {
		return "", err
	}
	if len(lines) == 0 || !strings.HasPrefix(lines[0], versionBanner) {
		return "", errors.Wrap(ErrParsing, "unexpected version banner")
	}
	return strings.TrimPrefix(lines[0], versionBanner), nil
}

// Kill tells the server to quit immediately.
func (s *Server) Kill() error {
	_, err := s.Run("kill-server")
	return errors.WithMessage(err, "Kill")
}

// ListDevices returns the list of connected devices.
func (s *Server) ListDevices() ([]DeviceInfo, error) {
	lines, err := s.runLines("devices", "-l")
	if err != nil {
		return nil, err
	}
	return parseDeviceList(lines, parseDeviceLong)
}

// ListDeviceSerials returns the serial numbers of all attached devices.
func (s *Server) ListDeviceSerials() ([]string, error) {
	lines, err := s.runLines("devices")
	if err != nil {
		return nil, err
	}
	devices, err := parseDeviceList(lines, parseDeviceShort)
	if err != nil {
		return nil, err
	}

	serials := make([]string, len(devices))
	for i, dev := range devices {
		serials[i] = dev.Serial
	}
	return serials, nil
}

// Device returns a handle for the device selected by descriptor.
func (s *Server) Device(descriptor DeviceDescriptor) *Device {
	return &Device{
		server:     s,
		descriptor: descriptor,
	}
}

// Connect asks the server to connect to a TCP/IP device.
// The binary exits zero even when it cannot reach the endpoint, so failures
// are recognized by their diagnostic text.
func (s *Server) Connect(host string, port int) error {
	addr := host + ":" + strconv.Itoa(port)
	lines, err := s.runLines("connect", addr)
	if err != nil {
		return errors.WithMessage(err, "Connect")
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "unable to connect to ") {
			return errors.Wrap(ErrHostUnreachable, addr)
		}
		if strings.HasPrefix(line, "already connected to ") {
			return errors.Wrap(ErrAlreadyConnected, addr)
		}
	}
	return nil
}

// Disconnect disconnects from a TCP/IP device.
func (s *Server) Disconnect(host string, port int) error {
	return s.disconnect(host + ":" + strconv.Itoa(port))
}

// DisconnectAll disconnects from every connected TCP/IP device.
func (s *Server) DisconnectAll() error {
	return s.disconnect("")
}

func (s *Server) disconnect(addr string) error {
	var args []string
	if addr != "" {
		args = append(args, addr)
	}
	lines, err := s.runLines("disconnect", args...)
	if err != nil {
		if cmdErr, ok := errors.Cause(err).(*CommandError); ok &&
			strings.Contains(strings.ToLower(string(cmdErr.Stderr)), "no such device") {
			return errors.Wrap(ErrDeviceNotFound, addr)
		}
		return errors.WithMessage(err, "Disconnect")
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "No such device") {
			return errors.Wrap(ErrDeviceNotFound, addr)
		}
	}
	return nil
}
