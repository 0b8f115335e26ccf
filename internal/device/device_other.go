//go:build !linux && !darwin

package device

import (
	"fmt"
	"runtime"
)

func list() ([]Device, error) {
	return nil, fmt.Errorf("%w on %s", ErrUnsupported, runtime.GOOS)
}
