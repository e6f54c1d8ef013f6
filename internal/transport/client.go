package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-pong/internal/metrics"
)

var (
	// ErrClosed is returned when sending on a closed connection.
	ErrClosed = errors.New("transport: connection closed")

	// ErrBackpressure is returned when the send buffer is full.
	ErrBackpressure = errors.New("transport: send buffer full")
)

// Conn is a client connection to a hosting master.
type Conn struct {
	ws      *websocket.Conn
	Slot    int
	Players int
	Mode    string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to a master at addr (host:port or ws:// URL) asking for slot.
// Use multiplayer.SpectatorSlot to watch without a paddle.
func Dial(ctx context.Context, addr string, slot int) (*Conn, error) {
	u, err := wsURL(addr, slot)
	if err != nil {
		return nil, err
	}
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("transport: dial %s: %s: %w", u, resp.Status, err)
		}
		return nil, fmt.Errorf("transport: dial %s: %w", u, err)
	}

	c := &Conn{
		ws:   ws,
		Slot: slot,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	if err := c.readHandshake(resp.Header); err != nil {
		_ = ws.Close()
		return nil, err
	}
	go c.writePump()
	return c, nil
}

func wsURL(addr string, slot int) (string, error) {
	u, err := url.Parse(addr)
	if err != nil || u.Host == "" {
		u, err = url.Parse("ws://" + addr)
		if err != nil {
			return "", fmt.Errorf("transport: bad address %q: %w", addr, err)
		}
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("slot", strconv.Itoa(slot))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Conn) readHandshake(h http.Header) error {
	players, err := strconv.Atoi(h.Get(HeaderPlayers))
	if err != nil {
		return fmt.Errorf("transport: missing %s header", HeaderPlayers)
	}
	if v := h.Get(HeaderSlot); v != "" {
		if slot, err := strconv.Atoi(v); err == nil {
			c.Slot = slot
		}
	}
	c.Players = players
	c.Mode = h.Get(HeaderMode)
	return nil
}

// Send queues data for the master without blocking.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		metrics.RecordDropped(metrics.DropInboxFull)
		return ErrBackpressure
	}
}

// Listen reads payloads and hands them to deliver until the connection closes.
// It returns nil on a normal close.
func (c *Conn) Listen(deliver func([]byte)) error {
	defer c.Close()
	c.ws.SetReadLimit(64 * maxMessageSize)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("transport: read: %w", err)
		}
		deliver(data)
	}
}

// Done is closed when the connection ends.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close ends the connection. Safe to call multiple times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}
