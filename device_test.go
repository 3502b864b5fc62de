package adb

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareCommandLine(t *testing.T) {
	var tests = []struct {
		name string
		cmd  string
		args []string
		want string
		err  bool
	}{{
		name: "NoArgs",
		cmd:  "ls",
		want: "ls",
	}, {
		name: "PlainArgs",
		cmd:  "ls",
		args: []string{"-l", "/sdcard"},
		want: "ls -l /sdcard",
	}, {
		name: "WhitespaceQuoted",
		cmd:  "cat",
		args: []string{"/sdcard/a file.txt"},
		want: `cat "/sdcard/a file.txt"`,
	}, {
		name: "BlankCommand",
		cmd:  "  ",
		err:  true,
	}, {
		name: "DoubleQuoteRejected",
		cmd:  "echo",
		args: []string{`say "hi"`},
		err:  true,
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := prepareCommandLine(test.cmd, test.args...)
			if test.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestRunCommand(t *testing.T) {
	var argv []string
	s := captureServer(t, "shell", &argv)

	out, err := s.Device(AnyDevice).RunCommand("getprop", "ro.product.name")
	require.NoError(t, err)
	assert.Equal(t, "Android\n", out)
	assert.Equal(t, []string{"shell", "getprop ro.product.name"}, argv)
}

func TestInstallFailureLine(t *testing.T) {
	s := mockServer(t, "install-failure")

	err := s.Device(AnyDevice).Install("app.apk", InstallOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failure [INSTALL_FAILED_OLDER_SDK]")
}

func TestInstallArgs(t *testing.T) {
	var argv []string
	s := captureServer(t, "empty", &argv)

	opts := InstallOptions{
		Lock:      true,
		Reinstall: true,
		SDCard:    true,
		Encryption: &Encryption{
			Algorithm: "AES",
			Key:       "00",
			IV:        "01",
		},
	}
	require.NoError(t, s.Device(AnyDevice).Install("app.apk", opts))
	assert.Equal(t, []string{"install", "-l", "-r", "-s",
		"--algo", "AES", "--key", "00", "--iv", "01", "app.apk"}, argv)
}

func TestUninstallArgs(t *testing.T) {
	var argv []string
	s := captureServer(t, "empty", &argv)

	require.NoError(t, s.Device(AnyDeviceSerial("05856558")).Uninstall("com.example", true))
	assert.Equal(t, []string{"-s", "05856558", "uninstall", "-k", "com.example"}, argv)
}

func TestBackupArgs(t *testing.T) {
	var argv []string
	s := captureServer(t, "empty", &argv)

	opts := BackupOptions{
		APK:      true,
		Shared:   true,
		All:      true,
		Packages: []string{"com.example"},
	}
	require.NoError(t, s.Device(AnyDevice).Backup("backup.ab", opts))
	assert.Equal(t, []string{"backup", "-f", "backup.ab",
		"-apk", "-shared", "-all", "-nosystem", "com.example"}, argv)
}

func TestPullArgs(t *testing.T) {
	var tests = []struct {
		name   string
		remote string
		local  string
		want   []string
	}{{
		name:   "RemoteOnly",
		remote: "/sdcard/file.txt",
		want:   []string{"pull", "/sdcard/file.txt"},
	}, {
		name:   "RemoteAndLocal",
		remote: "/sdcard/file.txt",
		local:  "file.txt",
		want:   []string{"pull", "/sdcard/file.txt", "file.txt"},
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var argv []string
			s := captureServer(t, "empty", &argv)

			require.NoError(t, s.Device(AnyDevice).Pull(test.remote, test.local))
			assert.Equal(t, test.want, argv)
		})
	}
}

func TestDeviceState(t *testing.T) {
	s := mockServer(t, "get-state")

	state, err := s.Device(AnyDevice).State()
	require.NoError(t, err)
	assert.Equal(t, StateOnline, state)
}

func TestGetAttributeNoOutput(t *testing.T) {
	s := mockServer(t, "empty")

	_, err := s.Device(AnyDevice).Serial()
	assert.Equal(t, ErrParsing, errors.Cause(err))
}
