package adb

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// DeviceStateChangedEvent represents a device state transition.
// Contains the device’s old and new states, but also provides methods to
// query the type of state transition.
type DeviceStateChangedEvent struct {
	Serial   string
	OldState DeviceState
	NewState DeviceState
}

// CameOnline returns true if this event represents a device coming online.
func (s DeviceStateChangedEvent) CameOnline() bool {
	return s.OldState != StateOnline && s.NewState == StateOnline
}

// WentOffline returns true if this event represents a device going offline.
func (s DeviceStateChangedEvent) WentOffline() bool {
	return s.OldState == StateOnline && s.NewState != StateOnline
}

const defaultPollInterval = time.Second

// DeviceWatcher publishes device state changes by polling the device list
// at a fixed interval. Created by Server.NewDeviceWatcher.
type DeviceWatcher struct {
	server   *Server
	interval time.Duration

	// If an error occurs, it is stored here and eventChan is closed
	// immediately after.
	err atomic.Value

	eventChan chan DeviceStateChangedEvent
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewDeviceWatcher starts a new device watcher polling at the default
// one-second interval.
func (s *Server) NewDeviceWatcher() *DeviceWatcher {
	return newDeviceWatcher(s, defaultPollInterval)
}

func newDeviceWatcher(s *Server, interval time.Duration) *DeviceWatcher {
	watcher := &DeviceWatcher{
		server:    s,
		interval:  interval,
		eventChan: make(chan DeviceStateChangedEvent),
		stop:      make(chan struct{}),
	}
	go publishDevices(watcher)
	return watcher
}

// C returns a channel than can be received on to get events.
// If an unrecoverable error occurs, or Shutdown is called, the channel will be closed.
func (w *DeviceWatcher) C() <-chan DeviceStateChangedEvent {
	return w.eventChan
}

// Err returns the error that caused the channel returned by C to be closed,
// if C is closed. If C is not closed, its return value is undefined.
func (w *DeviceWatcher) Err() error {
	if err, ok := w.err.Load().(error); ok {
		return err
	}
	return nil
}

// Shutdown stops the watcher from polling and closes the channel returned
// from C.
func (w *DeviceWatcher) Shutdown() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// publishDevices runs the polling loop. When an invocation fails because
// the server died, the server is restarted once and polling resumes; any
// other error is stored and the event channel closed.
func publishDevices(watcher *DeviceWatcher) {
	defer close(watcher.eventChan)

	for {
		err := publishDevicesUntilError(watcher)
		if err == nil {
			// Shutdown was requested.
			return
		}

		if _, ok := errors.Cause(err).(*CommandError); ok {
			// The server died, restart it and resume polling.

			// Delay by a random [0ms, 500ms) in case multiple
			// DeviceWatchers are trying to restart the same server.
			delay := time.Duration(rand.Intn(500)) * time.Millisecond
			fmt.Fprintf(os.Stderr, "[DeviceWatcher] server died, restarting in %s…\n", delay)
			time.Sleep(delay)

			if err := start(watcher.server); err != nil {
				fmt.Fprintln(os.Stderr, "[DeviceWatcher] error restarting server, giving up")
				watcher.err.Store(err)
				return
			}
			continue
		}

		watcher.err.Store(err)
		return
	}
}

func publishDevicesUntilError(watcher *DeviceWatcher) error {
	ticker := time.NewTicker(watcher.interval)
	defer ticker.Stop()

	lastState := make(map[string]DeviceState)
	for {
		select {
		case <-watcher.stop:
			return nil
		case <-ticker.C:
		}

		lines, err := watcher.server.runLines("devices")
		if err != nil {
			return err
		}
		deviceStates, err := parseDeviceStates(lines)
		if err != nil {
			return err
		}

		for _, event := range calculateStateDiffs(lastState, deviceStates) {
			select {
			case watcher.eventChan <- event:
			case <-watcher.stop:
				return nil
			}
		}
		lastState = deviceStates
	}
}

func parseDeviceStates(lines []string) (map[string]DeviceState, error) {
	states := make(map[string]DeviceState)
	for lineNum, line := range lines {
		if line == "" || strings.HasPrefix(line, "List of devices") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.Wrapf(ErrParsing, "invalid device state line %d: %s", lineNum, line)
		}
		serial, stateString := fields[0], fields[1]
		states[serial] = parseDeviceState(stateString)
	}
	return states, nil
}

func calculateStateDiffs(oldStates, newStates map[string]DeviceState) []DeviceStateChangedEvent {
	events := make([]DeviceStateChangedEvent, 0, len(newStates))
	for serial, oldState := range oldStates {
		newState, ok := newStates[serial]

		if oldState != newState {
			if ok {
				// Device present in both lists: state changed.
				events = append(events, DeviceStateChangedEvent{serial, oldState, newState})
			} else {
				// Device only present in old list: device removed.
				events = append(events, DeviceStateChangedEvent{serial, oldState, StateDisconnected})
			}
		}
	}

	for serial, newState := range newStates {
		if _, ok := oldStates[serial]; !ok {
			// Device only present in new list: device added.
			events = append(events, DeviceStateChangedEvent{serial, StateDisconnected, newState})
		}
	}

	return events
}
