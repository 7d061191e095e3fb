//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealRanger drives an HC-SR04 style ultrasonic module through the Linux
// GPIO character device. It implements both Output (trigger) and
// EchoInput (echo).
type RealRanger struct {
	chip    *gpiocdev.Chip
	trigger *gpiocdev.Line
	echo    *gpiocdev.Line
	events  chan gpiocdev.LineEvent
}

// NewRealRanger requests the trigger line as an output and the echo line as
// an edge-watching input on the named chip.
func NewRealRanger(chipName string, pinTrigger, pinEcho int) (*RealRanger, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealRanger{
		chip:   chip,
		events: make(chan gpiocdev.LineEvent, 16),
	}

	trigger, err := chip.RequestLine(pinTrigger, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request trigger pin %d: %w", pinTrigger, err)
	}

	echo, err := chip.RequestLine(pinEcho,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(r.handleEvent))
	if err != nil {
		trigger.Close()
		chip.Close()
		return nil, fmt.Errorf("request echo pin %d: %w", pinEcho, err)
	}

	r.trigger = trigger
	r.echo = echo
	return r, nil
}

// handleEvent runs on the gpiocdev watcher goroutine. Events are dropped
// rather than blocking the watcher if nobody is measuring.
func (r *RealRanger) handleEvent(evt gpiocdev.LineEvent) {
	select {
	case r.events <- evt:
	default:
	}
}

// SetValue drives the trigger line. Asserting it discards any stale echo
// edges so the next PulseWidth only sees this measurement.
func (r *RealRanger) SetValue(level int) error {
	if level != 0 {
		r.drain()
	}
	if err := r.trigger.SetValue(level); err != nil {
		return fmt.Errorf("set trigger: %w", err)
	}
	return nil
}

func (r *RealRanger) drain() {
	for {
		select {
		case <-r.events:
		default:
			return
		}
	}
}

// PulseWidth waits for a rising edge followed by a falling edge on the echo
// line and returns the kernel-timestamped interval between them.
func (r *RealRanger) PulseWidth(timeout time.Duration) (time.Duration, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var rise time.Duration
	rising := false
	for {
		select {
		case evt := <-r.events:
			switch evt.Type {
			case gpiocdev.LineEventRisingEdge:
				rise = evt.Timestamp
				rising = true
			case gpiocdev.LineEventFallingEdge:
				if rising {
					return evt.Timestamp - rise, nil
				}
			}
		case <-deadline.C:
			if rising {
				return 0, fmt.Errorf("echo: pulse exceeded %v", timeout)
			}
			return 0, fmt.Errorf("echo: no pulse within %v", timeout)
		}
	}
}

// Close releases GPIO resources.
// Reconfigures both lines to input with pull-down (matching Pi boot defaults)
// before closing to leave the module's trigger undriven.
func (r *RealRanger) Close() error {
	var errs []error

	if r.trigger != nil {
		if err := r.trigger.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure trigger pin: %w", err))
		}
		if err := r.trigger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trigger pin: %w", err))
		}
	}
	if r.echo != nil {
		if err := r.echo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close echo pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
