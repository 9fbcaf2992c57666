package ethermq

import (
	"fmt"
	"net"
	"os/exec"
)

// Interface is the local (tap) interface a bridge is attached to. Every Read returns exactly one
// frame, every Write writes exactly one frame.
type Interface interface {
	// Name returns the kernel name of the interface.
	Name() string
	// HardwareAddr returns the mac address of the interface.
	HardwareAddr() net.HardwareAddr
	// Read reads one frame into b, blocking until one arrives.
	Read(b []byte) (int, error)
	// Write writes the frame b to the interface.
	Write(b []byte) (int, error)
	// Close releases the interface, unblocking any pending Read.
	Close() error
}

func hardwareAddrByName(name string) (net.HardwareAddr, error) {
	namedInterface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: could not find interface %q, err: %s", ErrBind, name, err,
		)
	}

	if len(namedInterface.HardwareAddr) != HardwareAddrSize {
		return nil, fmt.Errorf(
			"%w: interface %q has no ethernet hardware address", ErrBind, name,
		)
	}

	return namedInterface.HardwareAddr, nil
}

// configureAddress hands the address assignment and link up to the host network stack.
func configureAddress(name, cidr string) error {
	_, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("%w: invalid cidr %q, err: %s", ErrConfig, cidr, err)
	}

	for _, args := range [][]string{
		{"addr", "add", "dev", name, cidr},
		{"link", "set", "up", "dev", name},
	} {
		err = runIP(args...)
		if err != nil {
			return err
		}
	}

	return nil
}

func runIP(args ...string) error {
	ipCmd := exec.Command("ip", args...) //nolint: gosec

	b, err := ipCmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf(
			"%w: failed executing 'ip %v', err: %s, output: %s", ErrBind, args, err, b,
		)
	}

	return nil
}
