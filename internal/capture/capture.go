// ABOUTME: Microphone capture sources
// ABOUTME: Delivers fixed-size float frames from PCM16LE byte streams
package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"sync"
)

// ErrMediaAcquisition reports that the capture device could not be
// acquired. Fatal to session setup; partial resources must be released.
var ErrMediaAcquisition = errors.New("capture: media acquisition failed")

// FrameSize is the fixed per-frame sample count forwarded to the channel.
const FrameSize = 4096

// Source delivers captured audio as fixed-size frames of normalized
// float samples. Frames arrive in capture order.
type Source interface {
	// Start begins capture and invokes onFrame for every full frame.
	// onFrame must be registered before the source is considered ready.
	Start(onFrame func([]float32)) error

	// Stop tears down capture. Idempotent.
	Stop() error
}

// ReaderSource frames a PCM16LE byte stream from an io.Reader, converting
// each 16-bit sample to a float in [-1, 1].
type ReaderSource struct {
	r    io.Reader
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewReaderSource wraps a PCM16LE mono byte stream.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

func (s *ReaderSource) Start(onFrame func([]float32)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return fmt.Errorf("capture already started")
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.readLoop(onFrame, s.stop, s.done)
	return nil
}

func (s *ReaderSource) readLoop(onFrame func([]float32), stop, done chan struct{}) {
	defer close(done)

	raw := make([]byte, FrameSize*2)
	for {
		select {
		case <-stop:
			return
		default:
		}

		if _, err := io.ReadFull(s.r, raw); err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				log.Printf("Capture read error: %v", err)
			}
			return
		}

		frame := make([]float32, FrameSize)
		for i := range frame {
			sample := int16(binary.LittleEndian.Uint16(raw[i*2:]))
			frame[i] = float32(sample) / 32768.0
		}
		onFrame(frame)
	}
}

func (s *ReaderSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	if c, ok := s.r.(io.Closer); ok {
		c.Close()
	}
	return nil
}

// ExecSource runs a recorder command (e.g. arecord) and frames its stdout.
type ExecSource struct {
	command    string
	sampleRate int

	mu     sync.Mutex
	cmd    *exec.Cmd
	reader *ReaderSource
}

// NewExecSource creates a source backed by the given recorder command.
// The command must write raw PCM16LE mono at the given rate to stdout.
func NewExecSource(command string, sampleRate int) *ExecSource {
	return &ExecSource{command: command, sampleRate: sampleRate}
}

func (s *ExecSource) Start(onFrame func([]float32)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return fmt.Errorf("capture already started")
	}

	args := strings.Fields(s.command)
	if len(args) == 0 {
		return fmt.Errorf("%w: empty capture command", ErrMediaAcquisition)
	}

	cmd := exec.Command(args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMediaAcquisition, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrMediaAcquisition, err)
	}

	reader := NewReaderSource(stdout)
	if err := reader.Start(onFrame); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return fmt.Errorf("%w: %v", ErrMediaAcquisition, err)
	}

	s.cmd = cmd
	s.reader = reader
	log.Printf("Capture started: %s (%dHz)", s.command, s.sampleRate)
	return nil
}

func (s *ExecSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return nil
	}
	s.reader.Stop()
	s.cmd.Process.Kill()
	s.cmd.Wait()
	s.cmd = nil
	s.reader = nil
	return nil
}

// FakeSource is a test source whose frames are pushed by hand.
type FakeSource struct {
	mu      sync.Mutex
	onFrame func([]float32)
	started bool
	stopped bool
}

func (s *FakeSource) Start(onFrame func([]float32)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFrame = onFrame
	s.started = true
	return nil
}

func (s *FakeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

// Push delivers one frame as if captured from the microphone.
func (s *FakeSource) Push(frame []float32) {
	s.mu.Lock()
	fn := s.onFrame
	s.mu.Unlock()
	if fn != nil {
		fn(frame)
	}
}

// Started reports whether Start was called.
func (s *FakeSource) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Stopped reports whether Stop was called.
func (s *FakeSource) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
