package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin"
	"github.com/cheggaaa/pb"
	"github.com/pkg/errors"

	adb "github.com/d1ced/adbexec"
)

const StdIoFilename = "-"

var (
	serial = kingpin.Flag("serial",
		"Connect to device by serial number.").
		Short('s').
		String()

	adbPath = kingpin.Flag("adb",
		"Path of the adb binary.").
		Default(adb.DefaultExecutableName).
		String()
	serverHost = kingpin.Flag("host",
		"Host the adb server listens on.").
		Short('H').
		Default(adb.DefaultHost).
		String()
	serverPort = kingpin.Flag("port",
		"Port the adb server listens on.").
		Short('P').
		Default("5037").
		Int()

	versionCommand = kingpin.Command("version",
		"Print the version of the adb release.")

	devicesCommand = kingpin.Command("devices",
		"List devices.")
	devicesLongFlag = devicesCommand.Flag("long",
		"Include extra detail about devices.").
		Short('l').
		Bool()

	shellCommand = kingpin.Command("shell",
		"Run a shell command on the device.")
	shellCommandArg = shellCommand.Arg("command",
		"Command to run on device.").
		Strings()

	pushCommand = kingpin.Command("push",
		"Push a file or directory to the device.")
	pushLocalArg = pushCommand.Arg("local",
		"Path of source file.").
		Required().
		String()
	pushRemoteArg = pushCommand.Arg("remote",
		"Path of destination file on device.").
		Required().
		String()

	pullCommand = kingpin.Command("pull",
		"Pull a file or directory from the device.")
	pullRemoteArg = pullCommand.Arg("remote",
		"Path of source file on device.").
		Required().
		String()
	pullLocalArg = pullCommand.Arg("local",
		"Path of destination file.").
		String()

	installCommand = kingpin.Command("install",
		"Push APKs to the device and install them.")
	installReinstallFlag = installCommand.Flag("reinstall",
		"Reinstall the app, keeping its data.").
		Short('r').
		Bool()
	installLockFlag = installCommand.Flag("lock",
		"Forward lock the app.").
		Bool()
	installSDCardFlag = installCommand.Flag("sdcard",
		"Install on the SD card instead of internal storage.").
		Bool()
	installApksArg = installCommand.Arg("apk",
		"APK files to install.").
		Required().
		ExistingFiles()

	uninstallCommand = kingpin.Command("uninstall",
		"Remove an app package from the device.")
	uninstallKeepFlag = uninstallCommand.Flag("keep",
		"Keep the app's data and cache.").
		Short('k').
		Bool()
	uninstallPackageArg = uninstallCommand.Arg("package",
		"Name of the package to remove.").
		Required().
		String()

	connectCommand = kingpin.Command("connect",
		"Connect to a TCP/IP device.")
	connectHostArg = connectCommand.Arg("host",
		"Host of the device.").
		Required().
		String()
	connectPortFlag = connectCommand.Flag("device-port",
		"Port of the device.").
		Default("5555").
		Int()

	disconnectCommand = kingpin.Command("disconnect",
		"Disconnect from a TCP/IP device, or from all if no host given.")
	disconnectHostArg = disconnectCommand.Arg("host",
		"Host of the device.").
		String()
	disconnectPortFlag = disconnectCommand.Flag("device-port",
		"Port of the device.").
		Default("5555").
		Int()

	syncCommand = kingpin.Command("sync",
		"Sync the host build output to the device.")
	syncListFlag = syncCommand.Flag("list",
		"Only list what would be pushed.").
		Short('l').
		Bool()
	syncDirArg = syncCommand.Arg("directory",
		"Partition to sync, \"system\" or \"data\". Both if omitted.").
		String()

	forwardCommand = kingpin.Command("forward",
		"Forward socket connections.")
	forwardListFlag = forwardCommand.Flag("list",
		"List forwards.").
		Short('l').
		Bool()
	forwardRemoveFlag = forwardCommand.Flag("remove",
		"Remove the forward for the given local spec.").
		Bool()
	forwardRemoveAllFlag = forwardCommand.Flag("remove-all",
		"Remove all forwards.").
		Bool()
	forwardLocalArg = forwardCommand.Arg("local",
		"Local forward spec, e.g. tcp:8000.").
		String()
	forwardRemoteArg = forwardCommand.Arg("remote",
		"Remote forward spec, e.g. tcp:9000.").
		String()

	logcatCommand = kingpin.Command("logcat",
		"Stream the device log.")
	logcatFilterArgs = logcatCommand.Arg("filter-spec",
		"Log filter specs, e.g. ActivityManager:I.").
		Strings()

	bugreportCommand = kingpin.Command("bugreport",
		"Write a full bug report from the device.")
	bugreportFileArg = bugreportCommand.Arg("file",
		"Destination file. If - or omitted, writes to stdout.").
		String()

	statusCommand = kingpin.Command("status",
		"Show whether the adb server daemon is running.")

	killCommand = kingpin.Command("kill-server",
		"Tell the server to quit.")
)

var client *adb.Server

func main() {
	var exitCode int

	command := kingpin.Parse()

	var err error
	client, err = adb.New(*adbPath, *serverHost, *serverPort)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	switch command {
	case "version":
		exitCode = printVersion()
	case "devices":
		exitCode = listDevices(*devicesLongFlag)
	case "shell":
		exitCode = runShellCommand(*shellCommandArg)
	case "push":
		exitCode = push(*pushLocalArg, *pushRemoteArg)
	case "pull":
		exitCode = pull(*pullRemoteArg, *pullLocalArg)
	case "install":
		exitCode = install(*installApksArg)
	case "uninstall":
		exitCode = uninstall(*uninstallPackageArg, *uninstallKeepFlag)
	case "connect":
		exitCode = connect(*connectHostArg, *connectPortFlag)
	case "disconnect":
		exitCode = disconnect(*disconnectHostArg, *disconnectPortFlag)
	case "sync":
		exitCode = sync(*syncDirArg, *syncListFlag)
	case "forward":
		exitCode = forward()
	case "logcat":
		exitCode = logcat(*logcatFilterArgs)
	case "bugreport":
		exitCode = bugreport(*bugreportFileArg)
	case "status":
		exitCode = status()
	case "kill-server":
		exitCode = killServer()
	}

	os.Exit(exitCode)
}

func device() *adb.Device {
	if *serial != "" {
		return client.Device(adb.AnyDeviceSerial(*serial))
	}
	return client.Device(adb.AnyDevice)
}

func printVersion() int {
	version, err := client.Version()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	fmt.Println(version)
	return 0
}

func listDevices(long bool) int {
	devices, err := client.ListDevices()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	for _, device := range devices {
		if long {
			if !device.IsUSB() {
				fmt.Printf("%s\tproduct:%s model:%s device:%s\n",
					device.Serial, device.Product, device.Model, device.DeviceInfo)
			} else {
				fmt.Printf("%s\tusb:%s product:%s model:%s device:%s\n",
					device.Serial, device.USB, device.Product, device.Model, device.DeviceInfo)
			}
		} else {
			fmt.Println(device.Serial)
		}
	}

	return 0
}

func runShellCommand(commandAndArgs []string) int {
	if len(commandAndArgs) == 0 {
		fmt.Fprintln(os.Stderr, "error: no command")
		kingpin.Usage()
		return 1
	}

	command := commandAndArgs[0]
	var args []string

	if len(commandAndArgs) > 1 {
		args = commandAndArgs[1:]
	}

	output, err := device().RunCommand(command, args...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	fmt.Print(output)
	return 0
}

func push(localPath, remotePath string) int {
	if err := device().Push(localPath, remotePath); err != nil {
		fmt.Fprintln(os.Stderr, "error pushing file:", err)
		return 1
	}
	return 0
}

func pull(remotePath, localPath string) int {
	if err := device().Pull(remotePath, localPath); err != nil {
		fmt.Fprintln(os.Stderr, "error pulling file:", err)
		return 1
	}
	return 0
}

func install(apks []string) int {
	opts := adb.InstallOptions{
		Lock:      *installLockFlag,
		Reinstall: *installReinstallFlag,
		SDCard:    *installSDCardFlag,
	}

	// Only meter multi-APK installs; the single-file case would finish
	// before the bar renders anything useful.
	var progress *pb.ProgressBar
	if len(apks) > 1 {
		progress = pb.New(len(apks))
		progress.Output = os.Stderr
		progress.ShowTimeLeft = true
		progress.Start()
	}

	client := device()
	for _, apk := range apks {
		if err := client.Install(apk, opts); err != nil {
			if progress != nil {
				progress.Finish()
			}
			fmt.Fprintf(os.Stderr, "error installing %s: %s\n", apk, err)
			return 1
		}
		if progress != nil {
			progress.Increment()
		}
	}
	if progress != nil {
		progress.Finish()
	}
	return 0
}

func uninstall(pkg string, keepData bool) int {
	if err := device().Uninstall(pkg, keepData); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func connect(host string, port int) int {
	err := client.Connect(host, port)
	switch errors.Cause(err) {
	case nil:
		fmt.Printf("connected to %s:%d\n", host, port)
		return 0
	case adb.ErrAlreadyConnected:
		fmt.Printf("already connected to %s:%d\n", host, port)
		return 0
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
}

func disconnect(host string, port int) int {
	var err error
	if host == "" {
		err = client.DisconnectAll()
	} else {
		err = client.Disconnect(host, port)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func sync(directory string, listOnly bool) int {
	result, err := device().Sync(directory, listOnly)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	for partition, transfers := range result {
		fmt.Printf("%s: %d files\n", partition, len(transfers))
		for _, transfer := range transfers {
			fmt.Printf("\t%s\n", transfer)
		}
	}
	return 0
}

func forward() int {
	client := device()

	switch {
	case *forwardListFlag:
		fws, err := client.ForwardList()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		for _, fw := range fws {
			fmt.Printf("%v %v %v\n", client, fw[0], fw[1])
		}
		return 0

	case *forwardRemoveAllFlag:
		if err := client.ForwardRemoveAll(); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		return 0

	case *forwardRemoveFlag:
		if *forwardLocalArg == "" {
			fmt.Fprintln(os.Stderr, "error: must specify local spec")
			kingpin.Usage()
			return 1
		}
		if err := client.ForwardRemove(adb.ForwardSpec(*forwardLocalArg)); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		return 0

	default:
		if *forwardLocalArg == "" || *forwardRemoteArg == "" {
			fmt.Fprintln(os.Stderr, "error: must specify local and remote specs")
			kingpin.Usage()
			return 1
		}
		local := adb.ForwardSpec(*forwardLocalArg)
		remote := adb.ForwardSpec(*forwardRemoteArg)
		if err := client.Forward(local, remote); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		return 0
	}
}

func logcat(filterSpecs []string) int {
	c, err := device().Logcat(os.Stdout, filterSpecs...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	if err := c.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func bugreport(localPath string) int {
	var out io.WriteCloser
	if localPath == "" || localPath == StdIoFilename {
		out = os.Stdout
	} else {
		var err error
		out, err = os.Create(localPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening local file %s: %s\n", localPath, err)
			return 1
		}
	}
	defer out.Close()

	if err := device().BugReport(out); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func status() int {
	proc, err := client.ServerProcess()
	if errors.Cause(err) == adb.ErrServerNotRunning {
		fmt.Println("server not running")
		return 0
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	fmt.Printf("server running, pid %d, started %s, rss %d bytes\n",
		proc.PID, proc.StartedAt.Format("2006-01-02 15:04:05"), proc.RSS)
	return 0
}

func killServer() int {
	if err := client.Kill(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
