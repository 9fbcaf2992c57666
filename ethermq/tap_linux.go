//go:build linux

package ethermq

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

const tunDevice = "/dev/net/tun"

type tapInterface struct {
	name string
	addr net.HardwareAddr
	file *os.File
}

// CreateTAP creates a tap interface from the name template name (the kernel fills in any %d),
// assigns cidr to it and brings it up. Packet information is left enabled, so every frame read
// carries the FramePrefixSize byte prefix.
func CreateTAP(name, cidr string) (Interface, error) {
	fd, err := unix.Open(tunDevice, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: failed opening %s, err: %s", ErrBind, tunDevice, err)
	}

	ifr, err := unix.NewIfreq(name)
	if err != nil {
		_ = unix.Close(fd)

		return nil, fmt.Errorf("%w: invalid interface name %q, err: %s", ErrBind, name, err)
	}

	ifr.SetUint16(unix.IFF_TAP)

	err = unix.IoctlIfreq(fd, unix.TUNSETIFF, ifr)
	if err != nil {
		_ = unix.Close(fd)

		return nil, fmt.Errorf("%w: failed creating tap %q, err: %s", ErrBind, name, err)
	}

	// non blocking so the runtime poller owns the fd and Close unblocks a pending Read
	err = unix.SetNonblock(fd, true)
	if err != nil {
		_ = unix.Close(fd)

		return nil, fmt.Errorf("%w: failed setting tap non blocking, err: %s", ErrBind, err)
	}

	t := &tapInterface{
		name: ifr.Name(),
		file: os.NewFile(uintptr(fd), tunDevice),
	}

	err = configureAddress(t.name, cidr)
	if err != nil {
		_ = t.Close()

		return nil, err
	}

	t.addr, err = hardwareAddrByName(t.name)
	if err != nil {
		_ = t.Close()

		return nil, err
	}

	return t, nil
}

func (t *tapInterface) Name() string {
	return t.name
}

func (t *tapInterface) HardwareAddr() net.HardwareAddr {
	return t.addr
}

func (t *tapInterface) Read(b []byte) (int, error) {
	return t.file.Read(b)
}

func (t *tapInterface) Write(b []byte) (int, error) {
	return t.file.Write(b)
}

func (t *tapInterface) Close() error {
	return t.file.Close()
}
