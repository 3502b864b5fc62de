package adb

import "fmt"

// DeviceDescriptor selects which device a command is routed to.
type DeviceDescriptor struct {
	descriptor uint8
	// Only used if Type is DeviceSerial.
	serial string
}

const (
	device = iota
	usbDevice
	localDevice
	serialDevice
)

var (
	// AnyDevice lets the binary pick the single connected device.
	AnyDevice = DeviceDescriptor{device, ""}
	// AnyUSBDevice addresses the single USB-connected device (flag -d).
	AnyUSBDevice = DeviceDescriptor{usbDevice, ""}
	// AnyLocalDevice addresses the single emulator or TCP/IP device (flag -e).
	AnyLocalDevice = DeviceDescriptor{localDevice, ""}
)

// AnyDeviceSerial addresses the device with the given serial (flag -s).
func AnyDeviceSerial(serial string) DeviceDescriptor {
	return DeviceDescriptor{serialDevice, serial}
}

func (d DeviceDescriptor) String() string {
	switch d.descriptor {
	case device:
		return "Device"
	case usbDevice:
		return "DeviceUSB"
	case localDevice:
		return "DeviceLocal"
	case serialDevice:
		return fmt.Sprintf("DeviceSerial[%s]", d.serial)
	default:
		return "<invalid DeviceDescriptor>"
	}
}

// selectorArgs returns the global flags that route a command to the device.
func (d DeviceDescriptor) selectorArgs() []string {
	switch d.descriptor {
	case usbDevice:
		return []string{"-d"}
	case localDevice:
		return []string{"-e"}
	case serialDevice:
		return []string{"-s", d.serial}
	default:
		return nil
	}
}
