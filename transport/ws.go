// Package transport implements the raw I/O primitives the rest of the
// module builds on: a persistent JSON-framed WebSocket and a one-shot HTTPS
// request/response pair with optional multipart bodies. Neither surface
// interprets the frames or bodies it carries — that is the gateway and api
// packages' job.
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// ErrClosed is returned by Send when there is no open connection: it was
// never dialed or has been closed locally with Close. A write on a socket the
// peer has closed fails with a wrapped write error instead.
var ErrClosed = errors.New("transport: connection closed")

// CloseError carries the verbatim close code and reason the peer (or we)
// sent in the WebSocket close frame.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	return "transport: closed with code " + itoa(e.Code) + ": " + e.Reason
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [12]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// Conn is a single persistent WebSocket connection. It is safe for
// concurrent use by one writer and does not itself interpret frame payloads.
type Conn struct {
	dialer websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn

	closeErr *CloseError
}

// NewConn returns an undialed Conn.
func NewConn() *Conn {
	return &Conn{
		dialer: websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Dial opens the WebSocket and returns a channel of raw inbound frames. The
// channel is closed when the connection ends, for any reason; the caller
// should check LastCloseError afterwards to distinguish a graceful shutdown
// from a peer-initiated close.
func (c *Conn) Dial(ctx context.Context, addr string) (<-chan []byte, error) {
	conn, _, err := c.dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "transport: dial failed")
	}

	c.mu.Lock()
	c.conn = conn
	c.closeErr = nil
	c.mu.Unlock()

	frames := make(chan []byte)

	go func() {
		defer close(frames)

		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				c.recordClose(err)
				return
			}

			select {
			case frames <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, nil
}

func (c *Conn) recordClose(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ce, ok := err.(*websocket.CloseError); ok {
		c.closeErr = &CloseError{Code: ce.Code, Reason: ce.Text}
		return
	}

	// Any other read error (reset, EOF, etc) surfaces as an abnormal close so
	// callers have one code path for "the socket is gone".
	c.closeErr = &CloseError{Code: websocket.CloseAbnormalClosure, Reason: err.Error()}
}

// LastCloseError returns the close code observed on the most recent Dial's
// connection, or nil if it is still open or was never dialed.
func (c *Conn) LastCloseError() *CloseError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeErr
}

// Send writes a single text frame.
func (c *Conn) Send(ctx context.Context, b []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrClosed
	}

	if dl, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(dl)
	}

	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return errors.Wrap(err, "transport: send failed")
	}
	return nil
}

// Close closes the connection. If graceful, a close frame with code 1000 is
// written first (with a one-second write deadline); Close does not wait for
// the peer to acknowledge it.
func (c *Conn) Close(graceful bool) error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	if graceful {
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		conn.WriteControl(websocket.CloseMessage, msg, deadline)
	}

	return conn.Close()
}
