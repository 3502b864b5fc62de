package adb

import (
	"net"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

func containsWhitespace(str string) bool {
	return strings.ContainsAny(str, " \t\v")
}

func isBlank(str string) bool {
	var whitespaceRegex = regexp.MustCompile(`^\s*$`)
	return whitespaceRegex.MatchString(str)
}

func getFreePort() (port int, err error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()

	addr := listener.Addr().String()
	_, portString, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portString)
}

// outputLines splits captured stdout into lines. The daemon notices adb
// prints with a leading '*' and the trailing empty line are dropped.
func outputLines(out []byte) []string {
	if len(out) == 0 {
		return nil
	}
	raw := strings.Split(strings.Replace(string(out), "\r\n", "\n", -1), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.HasPrefix(line, "*") {
			continue
		}
		lines = append(lines, line)
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// isNotFound reports whether err means the binary itself could not be run.
func isNotFound(err error) bool {
	switch e := err.(type) {
	case *exec.Error:
		return e.Err == exec.ErrNotFound || os.IsNotExist(e.Err)
	case *os.PathError:
		return os.IsNotExist(e.Err)
	}
	return os.IsNotExist(err)
}
