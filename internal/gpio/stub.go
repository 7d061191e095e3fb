//go:build !linux

package gpio

import (
	"errors"
	"time"
)

// RealRanger is not available on non-Linux platforms.
type RealRanger struct{}

// NewRealRanger returns an error on non-Linux platforms.
func NewRealRanger(chipName string, pinTrigger, pinEcho int) (*RealRanger, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetValue is not implemented on non-Linux platforms.
func (r *RealRanger) SetValue(level int) error {
	return errors.New("gpio: not supported")
}

// PulseWidth is not implemented on non-Linux platforms.
func (r *RealRanger) PulseWidth(timeout time.Duration) (time.Duration, error) {
	return 0, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealRanger) Close() error {
	return nil
}
