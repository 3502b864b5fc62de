package adb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeviceStates(t *testing.T) {
	states, err := parseDeviceStates([]string{
		"List of devices attached",
		"emulator-5554\tdevice",
		"05856558\toffline",
		"192.168.56.101:5555\tunauthorized",
		"",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]DeviceState{
		"emulator-5554":       StateOnline,
		"05856558":            StateOffline,
		"192.168.56.101:5555": StateUnauthorized,
	}, states)
}

func TestParseDeviceStatesMalformed(t *testing.T) {
	_, err := parseDeviceStates([]string{"one two three"})
	assert.Error(t, err)
}

func TestCalculateStateDiffs(t *testing.T) {
	var tests = []struct {
		name     string
		old, new map[string]DeviceState
		want     []DeviceStateChangedEvent
	}{{
		name: "DeviceAdded",
		old:  map[string]DeviceState{},
		new:  map[string]DeviceState{"1": StateOnline},
		want: []DeviceStateChangedEvent{{"1", StateDisconnected, StateOnline}},
	}, {
		name: "DeviceRemoved",
		old:  map[string]DeviceState{"1": StateOnline},
		new:  map[string]DeviceState{},
		want: []DeviceStateChangedEvent{{"1", StateOnline, StateDisconnected}},
	}, {
		name: "StateChanged",
		old:  map[string]DeviceState{"1": StateOffline},
		new:  map[string]DeviceState{"1": StateOnline},
		want: []DeviceStateChangedEvent{{"1", StateOffline, StateOnline}},
	}, {
		name: "NoChange",
		old:  map[string]DeviceState{"1": StateOnline},
		new:  map[string]DeviceState{"1": StateOnline},
		want: []DeviceStateChangedEvent{},
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := calculateStateDiffs(test.old, test.new)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestDeviceStateChangedEvent(t *testing.T) {
	online := DeviceStateChangedEvent{"1", StateDisconnected, StateOnline}
	assert.True(t, online.CameOnline())
	assert.False(t, online.WentOffline())

	offline := DeviceStateChangedEvent{"1", StateOnline, StateDisconnected}
	assert.False(t, offline.CameOnline())
	assert.True(t, offline.WentOffline())
}

func TestDeviceWatcherPublishesEvents(t *testing.T) {
	s := mockServer(t, "watch-devices")

	watcher := newDeviceWatcher(s, 10*time.Millisecond)

	event := <-watcher.C()
	assert.Equal(t, "emulator-5554", event.Serial)
	assert.True(t, event.CameOnline())

	watcher.Shutdown()
	for range watcher.C() {
	}
	assert.NoError(t, watcher.Err())
}
