// ABOUTME: Duplex audio channel to the live gateway
// ABOUTME: WebSocket transport with JSON-framed audio and interrupt events
package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrChannel reports a mid-session transport failure. It terminates the
// streaming session and is surfaced to the caller.
var ErrChannel = errors.New("live: channel error")

// InboundChunk is one received audio chunk, tagged with its format.
type InboundChunk struct {
	Data     string // base64 audio payload
	MimeType string // e.g. "audio/pcm;rate=24000"
}

// OutboundFrame is one captured audio frame to forward.
type OutboundFrame struct {
	Data     string
	MimeType string
}

// Channel is a long-lived bidirectional audio stream.
type Channel interface {
	// Send forwards one outbound frame. Best-effort: callers may drop
	// frames when Ready is false instead of blocking.
	Send(frame OutboundFrame) error

	// Ready reports whether the channel can accept outbound frames.
	Ready() bool

	Chunks() <-chan InboundChunk
	Interrupts() <-chan struct{}
	Errors() <-chan error

	Close() error
}

// message is the wire envelope, both directions.
type message struct {
	Type     string `json:"type"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// WSChannel is the gorilla/websocket Channel implementation.
type WSChannel struct {
	conn *websocket.Conn
	mu   sync.Mutex

	chunks     chan InboundChunk
	interrupts chan struct{}
	errs       chan error

	connected bool
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the live gateway and starts the read loop.
func Dial(url string) (*WSChannel, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrChannel, url, err)
	}

	c := &WSChannel{
		conn:       conn,
		chunks:     make(chan InboundChunk, 32),
		interrupts: make(chan struct{}, 4),
		errs:       make(chan error, 1),
		connected:  true,
		done:       make(chan struct{}),
	}
	go c.readMessages()

	log.Printf("Live channel connected: %s", url)
	return c, nil
}

func (c *WSChannel) Send(frame OutboundFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("%w: not connected", ErrChannel)
	}

	msg := message{Type: "audio", Data: frame.Data, MimeType: frame.MimeType}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("%w: write: %v", ErrChannel, err)
	}
	return nil
}

func (c *WSChannel) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *WSChannel) Chunks() <-chan InboundChunk   { return c.chunks }
func (c *WSChannel) Interrupts() <-chan struct{}   { return c.interrupts }
func (c *WSChannel) Errors() <-chan error          { return c.errs }

// readMessages reads and routes inbound messages until the connection
// drops or Close is called.
func (c *WSChannel) readMessages() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			wasConnected := c.connected
			c.mu.Unlock()
			if wasConnected {
				select {
				case c.errs <- fmt.Errorf("%w: read: %v", ErrChannel, err):
				default:
				}
			}
			c.Close()
			return
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Live channel: bad message: %v", err)
			continue
		}

		// Every send races Close: guard on done so the reader never
		// blocks into a torn-down channel.
		switch msg.Type {
		case "audio":
			select {
			case c.chunks <- InboundChunk{Data: msg.Data, MimeType: msg.MimeType}:
			case <-c.done:
				return
			}
		case "interrupted":
			select {
			case c.interrupts <- struct{}{}:
			case <-c.done:
				return
			}
		default:
			log.Printf("Live channel: unknown message type: %s", msg.Type)
		}
	}
}

// Close tears the connection down. The chunks channel is never closed
// here: the read loop may be mid-send, so teardown is signaled through
// done and the connection error instead. Idempotent.
func (c *WSChannel) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.done)
		c.conn.Close()
		log.Printf("Live channel closed")
	})
	return nil
}
