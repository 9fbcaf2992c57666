//go:build !linux

package ethermq

import (
	"fmt"
	"runtime"
)

// CreateTAP is only supported on linux.
func CreateTAP(_, _ string) (Interface, error) {
	return nil, fmt.Errorf("%w: tap interfaces are not supported on %s", ErrBind, runtime.GOOS)
}
