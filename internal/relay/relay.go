package relay

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

var (
	ErrUnknownPin   = errors.New("pin is not a configured relay")
	ErrInvalidLevel = errors.New(`level must be "on" or "off"`)
	ErrClosed       = errors.New("relay bank is closed")
)

// pin is the part of rpio.Pin the bank drives.
type pin interface {
	Output()
	High()
	Low()
	Read() rpio.State
}

// Bank is an acquired set of relay output pins. It must be closed to
// release the GPIO mapping.
type Bank struct {
	mu      sync.Mutex
	pins    map[int]pin
	order   []int
	release func() error
	closed  bool
}

// Open maps GPIO memory and configures each pin (BCM numbering) as an output.
func Open(pins []int) (*Bank, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	return newBank(pins, func(n int) pin { return rpio.Pin(n) }, rpio.Close), nil
}

func newBank(pins []int, mk func(int) pin, release func() error) *Bank {
	b := &Bank{
		pins:    make(map[int]pin, len(pins)),
		release: release,
	}
	for _, n := range pins {
		if _, dup := b.pins[n]; dup {
			continue
		}
		p := mk(n)
		p.Output()
		b.pins[n] = p
		b.order = append(b.order, n)
	}
	return b
}

// Pins returns the configured relay pins in configuration order.
func (b *Bank) Pins() []int {
	return slices.Clone(b.order)
}

// Set drives the relay on pin high (on) or low (off).
func (b *Bank) Set(n int, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.lookup(n)
	if err != nil {
		return err
	}
	if on {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

// State reads back the level of a relay pin.
func (b *Bank) State(n int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.lookup(n)
	if err != nil {
		return false, err
	}
	return p.Read() == rpio.High, nil
}

// Close releases the GPIO mapping. Calling it twice is a no-op.
func (b *Bank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.release == nil {
		return nil
	}
	return b.release()
}

func (b *Bank) lookup(n int) (pin, error) {
	if b.closed {
		return nil, ErrClosed
	}
	p, ok := b.pins[n]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPin, n)
	}
	return p, nil
}

// ParseLevel maps "on"/"off" (any case) to a pin level.
func ParseLevel(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w, got %q", ErrInvalidLevel, s)
	}
}
