package adb

import (
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helperCommand reroutes child processes to TestHelperProcess, which fakes
// the adb binary with the named behavior.
func helperCommand(behavior string) func(string, ...string) *exec.Cmd {
	return func(name string, arg ...string) *exec.Cmd {
		cs := []string{"-test.run=TestHelperProcess", "--", behavior}
		cs = append(cs, arg...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		return cmd
	}
}

// mockServer returns a Server whose invocations run the named helper
// behavior instead of a real adb binary.
func mockServer(t *testing.T, behavior string) *Server {
	t.Helper()
	// Cmd.Start replaces proc.Env, so the child only sees this variable if
	// it is inherited from the test process environment.
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	prev := execCommand
	execCommand = helperCommand(behavior)
	t.Cleanup(func() { execCommand = prev })
	return &Server{path: "adb", host: DefaultHost, port: DefaultPort}
}

// captureServer additionally records the argument list of every invocation.
func captureServer(t *testing.T, behavior string, argv *[]string) *Server {
	t.Helper()
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	prev := execCommand
	helper := helperCommand(behavior)
	execCommand = func(name string, arg ...string) *exec.Cmd {
		*argv = arg
		return helper(name, arg...)
	}
	t.Cleanup(func() { execCommand = prev })
	return &Server{path: "adb", host: DefaultHost, port: DefaultPort}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "no behavior")
		os.Exit(2)
	}

	switch args[0] {
	case "devices":
		fmt.Print("* daemon not running; starting now at tcp:5037\n" +
			"* daemon started successfully\n" +
			"List of devices attached\n" +
			"emulator-5554\tdevice\n" +
			"05856558\tdevice\n\n")
	case "watch-devices":
		fmt.Print("List of devices attached\nemulator-5554\tdevice\n\n")
	case "devices-long":
		fmt.Print("List of devices attached\n" +
			"SERIAL    device usb:1234 product:PRODUCT model:MODEL device:DEVICE transport_id:1\n\n")
	case "version":
		fmt.Print("Android Debug Bridge version 1.0.41\n" +
			"Version 31.0.3-7562133\n" +
			"Installed as /usr/bin/adb\n")
	case "empty":
	case "shell":
		fmt.Print("Android\n")
	case "get-state":
		fmt.Print("device\n")
	case "install-failure":
		fmt.Print("\tpkg: /data/local/tmp/app.apk\nFailure [INSTALL_FAILED_OLDER_SDK]\n")
	case "fail":
		fmt.Fprint(os.Stderr, "error: cannot find file")
		os.Exit(1)
	case "connect-unreachable":
		fmt.Print("unable to connect to 192.168.1.102:5555\n")
	case "connect-already":
		fmt.Print("already connected to 192.168.1.102:5555\n")
	case "disconnect-nodevice":
		fmt.Print("No such device 192.168.1.102:5555\n")
	case "forward-list":
		fmt.Print("emulator-5554 tcp:8000 tcp:9000\n" +
			"05856558 tcp:6100 localabstract:chrome_devtools_remote\n")
	default:
		fmt.Fprintf(os.Stderr, "unknown behavior %q\n", args[0])
		os.Exit(2)
	}
	os.Exit(0)
}

func TestRunCapturesStdout(t *testing.T) {
	s := mockServer(t, "devices")

	res, err := s.Run("devices")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, string(res.Stdout), "List of devices attached")
	assert.Empty(t, res.Stderr)
}

func TestRunCommandFailed(t *testing.T) {
	s := mockServer(t, "fail")

	_, err := s.Run("install", "nonexistent.apk")
	require.Error(t, err)

	cmdErr, ok := errors.Cause(err).(*CommandError)
	require.True(t, ok, "want *CommandError, got %T", errors.Cause(err))
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Equal(t, "error: cannot find file", string(cmdErr.Stderr))
	assert.Equal(t, "install nonexistent.apk", cmdErr.Cmd)
}

func TestRunExecutableNotFound(t *testing.T) {
	s := &Server{path: "/nonexistent/path/adb-test-missing", host: DefaultHost, port: DefaultPort}

	_, err := s.Run("devices")
	assert.Equal(t, ErrExecutableNotFound, errors.Cause(err))
}

func TestRunEmptyCommand(t *testing.T) {
	s := mockServer(t, "empty")

	_, err := s.Run("")
	assert.Equal(t, ErrAssertionViolation, errors.Cause(err))
}

func TestCmdOutputRunsCommand(t *testing.T) {
	s := mockServer(t, "version")

	c := s.Command("version")
	assert.Equal(t, -1, c.ExitCode())

	out, err := c.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Android Debug Bridge version")
	assert.Equal(t, 0, c.ExitCode())
}

func TestCmdWaitWithoutStart(t *testing.T) {
	s := mockServer(t, "empty")

	err := s.Command("devices").Wait()
	assert.Error(t, err)
}

func TestDeviceCommandSelectorArgs(t *testing.T) {
	var tests = []struct {
		name       string
		descriptor DeviceDescriptor
		want       []string
	}{{
		name:       "Any",
		descriptor: AnyDevice,
		want:       []string{"shell", "echo hi"},
	}, {
		name:       "USB",
		descriptor: AnyUSBDevice,
		want:       []string{"-d", "shell", "echo hi"},
	}, {
		name:       "Local",
		descriptor: AnyLocalDevice,
		want:       []string{"-e", "shell", "echo hi"},
	}, {
		name:       "Serial",
		descriptor: AnyDeviceSerial("05856558"),
		want:       []string{"-s", "05856558", "shell", "echo hi"},
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var argv []string
			s := captureServer(t, "shell", &argv)

			_, err := s.Device(test.descriptor).run("shell", "echo hi")
			require.NoError(t, err)
			assert.Equal(t, test.want, argv)
		})
	}
}

func TestGlobalArgsNonDefaultServer(t *testing.T) {
	var argv []string
	s := captureServer(t, "empty", &argv)
	s.host = "devhost"
	s.port = 5038

	_, err := s.Run("kill-server")
	require.NoError(t, err)
	assert.Equal(t, []string{"-H", "devhost", "-P", "5038", "kill-server"}, argv)
}
