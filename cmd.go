package adb

import (
	"bytes"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// execCommand creates the child process for an invocation.
// This exists only for easier mocking.
var execCommand = func(name string, arg ...string) *exec.Cmd {
	return exec.Command(name, arg...)
}

// Result is the captured outcome of a single invocation of the binary.
// It is owned solely by the caller that issued the request.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Cmd represents a single invocation of the adb binary.
// Use Command on a Server or Device to get an instance.
type Cmd struct {
	Path string // subcommand, e.g. "shell"
	Args []string

	// Optional stream redirection for long-running subcommands such as
	// logcat. When nil, output is captured in memory.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	server   *Server
	selector []string // flags placed before Path, e.g. -s SERIAL
	proc     *exec.Cmd
	outBuf   bytes.Buffer
	errBuf   bytes.Buffer
	exitCode int
}

// Command sets up an invocation of the adb binary.
func (s *Server) Command(cmd string, args ...string) *Cmd {
	return &Cmd{
		Path:     cmd,
		Args:     args,
		server:   s,
		exitCode: -1,
	}
}

// Start spawns the child process.
func (c *Cmd) Start() error {
	if isBlank(c.Path) {
		return errors.Wrap(ErrAssertionViolation, "command cannot be empty")
	}
	argv := append([]string{}, c.server.globalArgs()...)
	argv = append(argv, c.selector...)
	argv = append(argv, c.Path)
	argv = append(argv, c.Args...)

	proc := execCommand(c.server.path, argv...)
	proc.Env = c.server.environ()
	proc.Stdin = c.Stdin
	if c.Stdout != nil {
		proc.Stdout = c.Stdout
	} else {
		proc.Stdout = &c.outBuf
	}
	if c.Stderr != nil {
		proc.Stderr = c.Stderr
	} else {
		proc.Stderr = &c.errBuf
	}

	if err := proc.Start(); err != nil {
		if isNotFound(err) {
			return errors.Wrapf(ErrExecutableNotFound, "%q", c.server.path)
		}
		return errors.Wrapf(err, "error starting adb %s", c.Path)
	}
	c.proc = proc
	return nil
}

// Wait waits for the child process to exit and maps its exit status.
// A non-zero status is returned as a *CommandError carrying the captured
// stderr.
func (c *Cmd) Wait() error {
	if c.proc == nil {
		return errors.New("no command to wait for")
	}
	err := c.proc.Wait()
	c.proc = nil
	if err == nil {
		c.exitCode = 0
		return nil
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return errors.Wrapf(err, "error capturing output of adb %s", c.Path)
	}
	c.exitCode = exitErr.ExitCode()
	return &CommandError{
		Cmd:      strings.Join(append([]string{c.Path}, c.Args...), " "),
		ExitCode: c.exitCode,
		Stderr:   c.errBuf.Bytes(),
	}
}

// Run starts and waits for the command.
func (c *Cmd) Run() error {
	if err := c.Start(); err != nil {
		return err
	}
	return c.Wait()
}

// Output returns the captured stdout. Runs or waits for the command if it
// hasn't finished yet.
func (c *Cmd) Output() ([]byte, error) {
	if c.proc != nil {
		if err := c.Wait(); err != nil {
			return nil, err
		}
	} else if c.exitCode == -1 {
		if err := c.Run(); err != nil {
			return nil, err
		}
	}
	return c.outBuf.Bytes(), nil
}

// ExitCode returns the exit status of the finished command, or -1 if it
// hasn't finished.
func (c *Cmd) ExitCode() int {
	return c.exitCode
}

// Kill terminates a running child process. Meant for streaming subcommands
// like logcat that don't exit on their own.
func (c *Cmd) Kill() error {
	if c.proc == nil || c.proc.Process == nil {
		return errors.New("no running command")
	}
	return c.proc.Process.Kill()
}

func (c *Cmd) result() Result {
	return Result{
		Stdout:   c.outBuf.Bytes(),
		Stderr:   c.errBuf.Bytes(),
		ExitCode: c.exitCode,
	}
}

// Run invokes the binary with the given subcommand and arguments and waits
// for it to finish.
func (s *Server) Run(cmd string, args ...string) (Result, error) {
	c := s.Command(cmd, args...)
	if err := c.Run(); err != nil {
		return Result{}, err
	}
	return c.result(), nil
}

// runLines invokes the binary and splits its stdout into lines, dropping
// the daemon notices adb prints with a leading '*'.
func (s *Server) runLines(cmd string, args ...string) ([]string, error) {
	res, err := s.Run(cmd, args...)
	if err != nil {
		return nil, err
	}
	return outputLines(res.Stdout), nil
}
