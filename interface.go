package adb

// Interface is the surface a Server exposes to callers.
type Interface interface {
	Run(cmd string, args ...string) (Result, error)
	Version() (string, error)
	Kill() error
	ListDevices() ([]DeviceInfo, error)
	ListDeviceSerials() ([]string, error)
	Device(descriptor DeviceDescriptor) *Device
	Connect(host string, port int) error
	Disconnect(host string, port int) error
	DisconnectAll() error
	NewDeviceWatcher() *DeviceWatcher
	ServerProcess() (*ServerProcess, error)
}

var _ Interface = (*Server)(nil)
