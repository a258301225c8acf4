package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/physync/internal/core/observability/log"
	"github.com/zeusync/physync/pkg/generic"
)

const (
	clientQueueSize = 16
	warmBuffers     = 4
	writeTimeout    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type client struct {
	conn  *websocket.Conn
	queue chan []byte
	once  sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.queue)
	})
}

// Feed streams JSON frames to every connected websocket client. Clients only
// receive; anything they send is discarded. A client whose queue is full is
// dropped rather than stalling the frame loop.
type Feed struct {
	log     log.Log
	mu      sync.Mutex
	clients map[*client]struct{}
	buffers *generic.Pool[*bytes.Buffer]
	closed  bool
}

func NewFeed(logger log.Log) *Feed {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{
		log:     logger.Named("feed"),
		clients: make(map[*client]struct{}),
		buffers: generic.NewHotPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset, warmBuffers),
	}
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn("websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}

	c := &client{conn: conn, queue: make(chan []byte, clientQueueSize)}
	if !f.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"), time.Now().Add(writeTimeout))
		_ = conn.Close()
		return
	}
	f.log.Debug("feed client connected", log.String("remote", conn.RemoteAddr().String()))

	go f.writeLoop(c)
	f.readLoop(c)
}

func (f *Feed) register(c *client) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	return true
}

func (f *Feed) unregister(c *client) {
	f.mu.Lock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		c.close()
	}
	f.mu.Unlock()
}

func (f *Feed) readLoop(c *client) {
	defer f.unregister(c)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (f *Feed) writeLoop(c *client) {
	defer func() {
		_ = c.conn.Close()
		f.log.Debug("feed client disconnected", log.String("remote", c.conn.RemoteAddr().String()))
	}()
	for msg := range c.queue {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			f.unregister(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
}

// Broadcast encodes v once and queues it for every client.
func (f *Feed) Broadcast(v any) error {
	buf := f.buffers.Get()
	defer f.buffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return fmt.Errorf("encode feed frame: %w", err)
	}
	msg := bytes.Clone(bytes.TrimRight(buf.Bytes(), "\n"))

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrServerClosed
	}
	for c := range f.clients {
		select {
		case c.queue <- msg:
		default:
			delete(f.clients, c)
			c.close()
			f.log.Warn("dropping slow feed client", log.String("remote", c.conn.RemoteAddr().String()))
		}
	}
	return nil
}

// Clients reports the number of connected clients.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every client. Later connections are refused.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for c := range f.clients {
		delete(f.clients, c)
		c.close()
	}
}
