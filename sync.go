package adb

import (
	"strings"

	"github.com/pkg/errors"
)

// SyncResult maps each synced partition, e.g. "system", to the transfers
// the binary performed (or, with listOnly, would have performed) for it.
type SyncResult map[string][]string

// Sync copies the host build output to the device. directory should be
// "system", "data", or empty to sync both. With listOnly the binary only
// lists what a sync would push.
//
// The binary locates the host build output through the ANDROID_PRODUCT_OUT
// environment entry, see Server.SetEnv.
func (d *Device) Sync(directory string, listOnly bool) (SyncResult, error) {
	var args []string
	if listOnly {
		args = append(args, "-l")
	}
	if directory != "" {
		args = append(args, directory)
	}
	lines, err := d.runLines("sync", args...)
	if err != nil {
		return nil, errors.WithMessage(err, "Sync")
	}
	return parseSyncOutput(lines)
}

// parseSyncOutput splits the output of "adb sync" into the sections opened
// by "syncing <partition>..." lines and collects the transfer lines of each
// section. A "files pushed" summary line closes the section.
func parseSyncOutput(lines []string) (SyncResult, error) {
	result := make(SyncResult)
	var partition string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "syncing ") && strings.HasSuffix(line, "..."):
			partition = strings.TrimSuffix(strings.TrimPrefix(line, "syncing "), "...")
			result[partition] = []string{}
		case strings.Contains(line, "files pushed") || strings.Contains(line, "files skipped"):
			partition = ""
		case strings.Contains(line, "push:"):
			if partition == "" {
				return nil, errors.Wrapf(ErrParsing, "transfer outside sync section: %s", line)
			}
			transfer := strings.TrimPrefix(line, "would ")
			transfer = strings.TrimPrefix(transfer, "push: ")
			result[partition] = append(result[partition], transfer)
		}
	}
	return result, nil
}
