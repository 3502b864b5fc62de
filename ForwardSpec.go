package adb

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ForwardSpec protocols
const (
	FProtocolTCP   = "tcp"
	FProtocolLocal = "local"
	FProtocolJDWP  = "jdwp"

	FProtocolAbstract   = "localabstract"
	FProtocolReserved   = "localreserved"
	FProtocolFilesystem = "localfilesystem"
)

type ForwardSpec string

// Port returns -1 if the endpoint has no port.
func (f ForwardSpec) Port() int {
	fields := strings.Split(string(f), ":")
	if len(fields) < 2 {
		return -1
	}
	if fields[0] != FProtocolTCP {
		return -1
	}
	p, err := strconv.Atoi(fields[1])
	if err != nil {
		return -1
	}
	return p
}

func (f ForwardSpec) Protocol() string {
	fields := strings.Split(string(f), ":")
	if len(fields) < 1 {
		return ""
	}
	return fields[0]
}

func isForwardSpec(s string) (ForwardSpec, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 2 {
		return "", errors.New("malformed forward spec")
	}
	switch fields[0] {
	case FProtocolTCP, FProtocolJDWP:
		if _, err := strconv.Atoi(fields[1]); err != nil {
			return "", errors.Errorf("malformed pid or port: %s", fields[1])
		}
		return ForwardSpec(s), nil
	case FProtocolLocal, FProtocolAbstract, FProtocolReserved, FProtocolFilesystem:
		return ForwardSpec(s), nil
	default:
		return "", errors.Errorf("unrecognized protocol: %s", fields[0])
	}
}

// ForwardList returns the active forwards of this device as {local, remote}
// pairs. The binary lists forwards of every device, one "serial local
// remote" triplet per line; entries belonging to other devices are skipped.
func (d *Device) ForwardList() ([][2]ForwardSpec, error) {
	lines, err := d.runLines("forward", "--list")
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(strings.Join(lines, " "))
	if len(fields)%3 != 0 {
		return nil, errors.Wrap(ErrParsing, "list forward parse error")
	}
	fs := make([][2]ForwardSpec, 0, 2)
	for i := 0; i < len(fields)/3; i++ {
		var serial = fields[i*3]
		// skip other device serial forwards
		if d.descriptor.descriptor == serialDevice && d.descriptor.serial != serial {
			continue
		}
		local, err := isForwardSpec(fields[i*3+1])
		if err != nil {
			return nil, err
		}
		remote, err := isForwardSpec(fields[i*3+2])
		if err != nil {
			return nil, err
		}
		fs = append(fs, [2]ForwardSpec{local, remote})
	}
	return fs, nil
}

// ForwardRemove removes the specified forward
func (d *Device) ForwardRemove(local ForwardSpec) error {
	_, err := d.run("forward", "--remove", string(local))
	return errors.WithMessage(err, "ForwardRemove")
}

// ForwardRemoveAll cancels all existing forwards
func (d *Device) ForwardRemoveAll() error {
	_, err := d.run("forward", "--remove-all")
	return errors.WithMessage(err, "ForwardRemoveAll")
}

// Forward remote connection to local
func (d *Device) Forward(local, remote ForwardSpec) error {
	_, err := d.run("forward", string(local), string(remote))
	return errors.WithMessage(err, "Forward")
}

// ForwardToFreePort forwards remote to a random free local port and returns
// the port. If a forward for remote already exists, its port is returned.
func (d *Device) ForwardToFreePort(remote ForwardSpec) (int, error) {
	fws, err := d.ForwardList()
	if err != nil {
		return 0, err
	}
	for _, fw := range fws {
		if fw[1] == remote {
			if fw[0].Port() == -1 {
				return 0, errors.New("no local port")
			}
			return fw[0].Port(), nil
		}
	}
	port, err := getFreePort()
	if err != nil {
		return 0, err
	}
	return port, d.Forward(ForwardSpec(FProtocolTCP+":"+strconv.Itoa(port)), remote)
}
