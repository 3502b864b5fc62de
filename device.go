package adb

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Device runs commands against a specific Android device.
// To get an instance, call Device() on a Server.
type Device struct {
	server     *Server
	descriptor DeviceDescriptor
}

func (d *Device) String() string {
	return d.descriptor.String()
}

// Command sets up an invocation of the adb binary routed to this device.
func (d *Device) Command(cmd string, args ...string) *Cmd {
	c := d.server.Command(cmd, args...)
	c.selector = d.descriptor.selectorArgs()
	return c
}

func (d *Device) run(cmd string, args ...string) (Result, error) {
	c := d.Command(cmd, args...)
	if err := c.Run(); err != nil {
		return Result{}, err
	}
	return c.result(), nil
}

func (d *Device) runLines(cmd string, args ...string) ([]string, error) {
	res, err := d.run(cmd, args...)
	if err != nil {
		return nil, err
	}
	return outputLines(res.Stdout), nil
}

// getAttribute returns the single line printed by the given query
// subcommand, e.g. get-serialno.
func (d *Device) getAttribute(attr string) (string, error) {
	lines, err := d.runLines(attr)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", errors.Wrapf(ErrParsing, "no output from %s", attr)
	}
	return strings.TrimSpace(lines[0]), nil
}

func (d *Device) Serial() (string, error) {
	attr, err := d.getAttribute("get-serialno")
	return attr, errors.Wrap(err, "Serial")
}

func (d *Device) DevicePath() (string, error) {
	attr, err := d.getAttribute("get-devpath")
	return attr, errors.Wrap(err, "DevicePath")
}

func (d *Device) State() (DeviceState, error) {
	attr, err := d.getAttribute("get-state")
	if err != nil {
		return StateInvalid, errors.Wrap(err, "State")
	}
	return parseDeviceState(attr), nil
}

// WaitForDevice blocks until the device is connected and online.
func (d *Device) WaitForDevice() error {
	_, err := d.run("wait-for-device")
	return errors.Wrap(err, "WaitForDevice")
}

func (d *Device) DeviceInfo() (DeviceInfo, error) {
	// adb doesn't actually provide a way to get this for an individual device,
	// so we have to just list devices and find ourselves.

	serial, err := d.Serial()
	if err != nil {
		return DeviceInfo{}, errors.Wrap(err, "DeviceInfo(Serial)")
	}

	devices, err := d.server.ListDevices()
	if err != nil {
		return DeviceInfo{}, errors.Wrap(err, "DeviceInfo(ListDevices)")
	}

	for _, deviceInfo := range devices {
		if deviceInfo.Serial == serial {
			return deviceInfo, nil
		}
	}

	return DeviceInfo{}, errors.Wrapf(ErrDeviceNotFound,
		"device list doesn't contain serial %s", serial)
}

/*
RunCommand runs the specified commands on a shell on the device.

From the Android docs:

	Run 'command arg1 arg2 ...' in a shell on the device, and return
	its output and error streams. Note that arguments must be separated
	by spaces. If an argument contains a space, it must be quoted with
	double-quotes. Arguments cannot contain double quotes or things
	will go very wrong.

	Note that this is the non-interactive version of "adb shell"

This method quotes the arguments for you, and will return an error if any of
them contain double quotes.
*/
func (d *Device) RunCommand(cmd string, args ...string) (string, error) {
	line, err := prepareCommandLine(cmd, args...)
	if err != nil {
		return "", err
	}
	res, err := d.run("shell", line)
	if err != nil {
		return "", errors.WithMessage(err, "RunCommand")
	}
	return string(res.Stdout), nil
}

// Push copies the local file or directory to remote on the device.
func (d *Device) Push(local, remote string) error {
	_, err := d.run("push", local, remote)
	return errors.WithMessage(err, "Push")
}

// Pull copies remote from the device to local. If local is empty the binary
// picks the base name of remote in the working directory.
func (d *Device) Pull(remote, local string) error {
	args := []string{remote}
	if local != "" {
		args = append(args, local)
	}
	_, err := d.run("pull", args...)
	return errors.WithMessage(err, "Pull")
}

// Encryption carries the parameters of an encrypted APK install.
type Encryption struct {
	Algorithm string
	// Hex encoded key and IV.
	Key string
	IV  string
}

// InstallOptions mirror the flags of "adb install". The zero value is a
// plain install.
type InstallOptions struct {
	// Forward lock the app (-l).
	Lock bool
	// Reinstall the app, keeping its data (-r).
	Reinstall bool
	// Install on the SD card instead of internal storage (-s).
	SDCard bool
	// Set for an encrypted APK.
	Encryption *Encryption
}

func (o InstallOptions) args(apk string) []string {
	var args []string
	if o.Lock {
		args = append(args, "-l")
	}
	if o.Reinstall {
		args = append(args, "-r")
	}
	if o.SDCard {
		args = append(args, "-s")
	}
	if o.Encryption != nil {
		args = append(args,
			"--algo", o.Encryption.Algorithm,
			"--key", o.Encryption.Key,
			"--iv", o.Encryption.IV)
	}
	return append(args, apk)
}

// Install pushes the APK at path to the device and installs it.
func (d *Device) Install(path string, opts InstallOptions) error {
	res, err := d.run("install", opts.args(path)...)
	if err != nil {
		return errors.WithMessage(err, "Install")
	}
	// Older binaries report install failures on stdout with a zero exit
	// status.
	for _, line := range outputLines(res.Stdout) {
		if strings.HasPrefix(line, "Failure") {
			return errors.Errorf("install %s: %s", path, line)
		}
	}
	return nil
}

// Uninstall removes the package from the device. If keepData is true the
// application's data and cache are kept.
func (d *Device) Uninstall(pkg string, keepData bool) error {
	var args []string
	if keepData {
		args = append(args, "-k")
	}
	args = append(args, pkg)
	res, err := d.run("uninstall", args...)
	if err != nil {
		return errors.WithMessage(err, "Uninstall")
	}
	for _, line := range outputLines(res.Stdout) {
		if strings.HasPrefix(line, "Failure") {
			return errors.Errorf("uninstall %s: %s", pkg, line)
		}
	}
	return nil
}

// BackupOptions mirror the flags of "adb backup".
type BackupOptions struct {
	// Include the APK files themselves (-apk).
	APK bool
	// Include the contents of shared/external storage (-shared).
	Shared bool
	// Include all installed applications (-all).
	All bool
	// With All, also include system applications. Explicitly listed
	// packages are always included.
	System bool
	// Packages to back up.
	Packages []string
}

// Backup writes an archive of the device's data to file.
func (d *Device) Backup(file string, opts BackupOptions) error {
	args := []string{"-f", file}
	if opts.APK {
		args = append(args, "-apk")
	}
	if opts.Shared {
		args = append(args, "-shared")
	}
	if opts.All {
		args = append(args, "-all")
		if !opts.System {
			args = append(args, "-nosystem")
		}
	}
	args = append(args, opts.Packages...)
	_, err := d.run("backup", args...)
	return errors.WithMessage(err, "Backup")
}

// Restore restores device contents from the backup archive at file.
func (d *Device) Restore(file string) error {
	_, err := d.run("restore", file)
	return errors.WithMessage(err, "Restore")
}

/*
Remount, from the official adb command’s docs:

	Ask adbd to remount the device's filesystem in read-write mode,
	instead of read-only. This is usually necessary before performing
	an "adb sync" or "adb push" request.
	This request may not succeed on certain builds which do not allow
	that.
*/
func (d *Device) Remount() (string, error) {
	res, err := d.run("remount")
	return string(res.Stdout), errors.WithMessage(err, "Remount")
}

// Logcat starts streaming the device log to w. The returned Cmd is already
// started; Wait on it to block until the stream ends, or Kill to stop it.
func (d *Device) Logcat(w io.Writer, filterSpecs ...string) (*Cmd, error) {
	c := d.Command("logcat", filterSpecs...)
	c.Stdout = w
	if err := c.Start(); err != nil {
		return nil, errors.WithMessage(err, "Logcat")
	}
	return c, nil
}

// BugReport writes all information from the device that should be included
// in a bug report to w. The output can exceed several megabytes, so it is
// streamed instead of captured.
func (d *Device) BugReport(w io.Writer) error {
	c := d.Command("bugreport")
	c.Stdout = w
	return errors.WithMessage(c.Run(), "BugReport")
}

// prepareCommandLine validates the command and argument strings, quotes
// arguments if required, and joins them into a valid adb shell command string.
func prepareCommandLine(cmd string, args ...string) (string, error) {
	if isBlank(cmd) {
		return "", errors.Wrap(ErrAssertionViolation, "command cannot be empty")
	}

	for i, arg := range args {
		if strings.ContainsRune(arg, '"') {
			return "", errors.Wrapf(ErrParsing, "arg at index %d contains an invalid double quote: %s", i, arg)
		}
		if containsWhitespace(arg) {
			args[i] = fmt.Sprintf("\"%s\"", arg)
		}
	}

	// Prepend the command to the args array.
	if len(args) > 0 {
		cmd = fmt.Sprintf("%s %s", cmd, strings.Join(args, " "))
	}

	return cmd, nil
}
