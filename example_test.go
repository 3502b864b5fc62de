// An app demonstrating most of the library's features.
package adb_test

import (
	"fmt"
	"time"

	adb "github.com/d1ced/adbexec"
)

func Example() {

	client, _ := adb.NewDefault()

	version, _ := client.Version()
	fmt.Println("adb version:", version)

	deviceInfo, _ := client.ListDevices()

	fmt.Println("Devices:")
	for _, device := range deviceInfo {
		fmt.Println(device.Serial)
	}

	fmt.Println("Watching for device state changes.")
	watcher := client.NewDeviceWatcher()

	go func() {
		<-time.After(20 * time.Second)
		watcher.Shutdown()
	}()

	for event := range watcher.C() {
		fmt.Printf("\t[%s]%+v\n", time.Now(), event)
	}
	if err := watcher.Err(); err != nil {
		fmt.Println(err)
	}

	client.Kill()
}
