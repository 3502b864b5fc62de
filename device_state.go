package adb

// DeviceState represents one of the possible states adb will report devices in.
// A device can be communicated with when it's in StateOnline.
// A USB device will make the following state transitions:
//
//	Plugged in: StateDisconnected->StateOffline->StateOnline
//	Unplugged:  StateOnline->StateDisconnected
type DeviceState uint8

const (
	StateInvalid DeviceState = iota
	StateUnauthorized
	StateDisconnected
	StateOffline
	StateOnline
)

func parseDeviceState(str string) DeviceState {
	var deviceStateStrings = map[string]DeviceState{
		"":             StateDisconnected,
		"offline":      StateOffline,
		"device":       StateOnline,
		"unauthorized": StateUnauthorized,
	}
	if state, ok := deviceStateStrings[str]; ok {
		return state
	}
	return StateInvalid
}

func (s DeviceState) String() string {
	switch s {
	case StateUnauthorized:
		return "unauthorized"
	case StateDisconnected:
		return "disconnected"
	case StateOffline:
		return "offline"
	case StateOnline:
		return "device"
	default:
		return "invalid"
	}
}
