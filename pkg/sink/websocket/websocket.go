// Package websocket is a remote sinklog sink broadcasting records as JSON
// frames of their fields to connected live-tail clients. Adapted from the
// teacher's outbound-dialer websocket sink: that sink connects once, as a
// client, to a single remote websocket server; this one inverts the role
// into a broadcast hub an embedder's own HTTP server upgrades connections
// into, since "tail my logs live" is naturally server-side for a logging
// core. The connection bookkeeping (mutex-guarded set, write deadline)
// follows the teacher's lifecycle management; no heartbeat ping is sent.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/sinklog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// frame is the JSON shape broadcast to each connected client.
type frame struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Component int       `json:"component"`
	Message   string    `json:"message"`
	File      string    `json:"file"`
	Line      int       `json:"line"`
}

// Sink is a live-tail broadcast hub: every dispatched record is written as
// one JSON text frame to every currently connected client.
type Sink struct {
	writeTimeout time.Duration

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New returns an empty hub. Call ServeHTTP (typically mounted at a path
// like /tail) to accept live-tail clients.
func New(writeTimeout time.Duration) *Sink {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Sink{writeTimeout: writeTimeout, conns: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request to a websocket connection and registers
// it as a live-tail client until it disconnects.
func (s *Sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	// Drain and discard anything the client sends; this hub is
	// broadcast-only. The read loop's only job is to notice the
	// connection close.
	go func() {
		defer s.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Sink) remove(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// Dispatch broadcasts r to every connected live-tail client. A write
// failure to one client closes and drops that client but does not affect
// delivery to the others.
func (s *Sink) Dispatch(r sinklog.Record) error {
	payload, err := json.Marshal(frame{
		Timestamp: r.Timestamp,
		Severity:  r.Severity.String(),
		Component: int(r.Component),
		Message:   r.Message,
		File:      r.File,
		Line:      r.Line,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.remove(c)
		}
	}
	return nil
}

// Close disconnects every connected live-tail client.
func (s *Sink) Close() error {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.conns = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	return nil
}
