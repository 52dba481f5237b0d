// ABOUTME: Audio output abstractions
// ABOUTME: Defines output handles, sinks, and the shared device
package output

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Stillwave-Audio/stillwave-go/internal/clock"
	"github.com/Stillwave-Audio/stillwave-go/internal/codec"
)

// ErrDeviceBusy reports that the output device is already held by another
// component. The player and the live session must never share it.
var ErrDeviceBusy = errors.New("output: device busy")

// Handle represents one in-progress scheduled playback of a decoded buffer.
type Handle interface {
	// Stop tears down the playback immediately. Safe to call more than once.
	Stop()

	// Done is closed when the buffer finishes playing or is stopped.
	Done() <-chan struct{}
}

// Sink schedules decoded buffers onto the output clock.
type Sink interface {
	// Start begins playback now, offset seconds into the buffer.
	Start(buf *codec.Buffer, offset float64) (Handle, error)

	// StartAt begins playback of the whole buffer at the given clock time.
	// A start time in the past begins immediately.
	StartAt(buf *codec.Buffer, at float64) (Handle, error)

	// Clock returns the output clock all start times are measured against.
	Clock() clock.Clock

	Close() error
}

// Device owns the single audio output and hands it to at most one holder
// at a time.
type Device struct {
	mu     sync.Mutex
	open   func() (Sink, error)
	sink   Sink
	holder string
}

// NewDevice creates a device backed by the oto output at the given format.
func NewDevice(sampleRate, channels int) *Device {
	return &Device{
		open: func() (Sink, error) { return NewOto(sampleRate, channels) },
	}
}

// NewDeviceWith creates a device backed by a caller-supplied sink opener.
func NewDeviceWith(open func() (Sink, error)) *Device {
	return &Device{open: open}
}

// Acquire hands the sink to the named holder. Fails with ErrDeviceBusy
// while another holder has it.
func (d *Device) Acquire(holder string) (Sink, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.holder != "" && d.holder != holder {
		return nil, fmt.Errorf("%w: held by %s", ErrDeviceBusy, d.holder)
	}

	if d.sink == nil {
		sink, err := d.open()
		if err != nil {
			return nil, err
		}
		d.sink = sink
	}

	d.holder = holder
	return d.sink, nil
}

// Release returns the device. A mismatched holder name is ignored.
func (d *Device) Release(holder string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.holder == holder {
		d.holder = ""
	}
}

// Close releases the underlying sink.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.holder = ""
	if d.sink != nil {
		err := d.sink.Close()
		d.sink = nil
		return err
	}
	return nil
}
