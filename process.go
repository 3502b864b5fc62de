package adb

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// ServerProcess describes the running adb server daemon.
type ServerProcess struct {
	PID       int32
	StartedAt time.Time
	// Resident memory in bytes, 0 if unavailable.
	RSS uint64
}

// ServerProcess locates the adb server daemon among the running processes.
// Returns ErrServerNotRunning when no daemon is found.
func (s *Server) ServerProcess() (*ServerProcess, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, errors.Wrap(err, "ServerProcess")
	}

	name := filepath.Base(s.path)
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil || pname != name {
			continue
		}
		// The daemon is spawned as "adb fork-server server ...".
		cmdline, err := p.Cmdline()
		if err != nil || !strings.Contains(cmdline, "fork-server") {
			continue
		}

		created, err := p.CreateTime()
		if err != nil {
			return nil, errors.Wrap(err, "ServerProcess")
		}
		var rss uint64
		if mem, err := p.MemoryInfo(); err == nil {
			rss = mem.RSS
		}
		return &ServerProcess{
			PID:       p.Pid,
			StartedAt: time.Unix(0, created*int64(time.Millisecond)),
			RSS:       rss,
		}, nil
	}
	return nil, errors.Wrapf(ErrServerNotRunning, "no %s daemon", name)
}
