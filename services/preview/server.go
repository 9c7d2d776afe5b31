// Package preview mirrors the pendant in a browser. Frames from the bus
// are painted on a Canvas and streamed to websocket clients as JSON.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pendant-go/bus"
	"pendant-go/charlie"
	"pendant-go/services/scan"
	"pendant-go/types"
)

// Message is what clients receive for every frame.
type Message struct {
	Seq    uint32   `json:"seq"`
	Index  uint8    `json:"index"`
	Levels [6]uint8 `json:"levels"`
	Cells  []string `json:"cells"`
}

type Server struct {
	Canvas *Canvas

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
	last    []byte
	frames  uint64
	start   time.Time
}

func NewServer() *Server {
	return &Server{
		Canvas:  &Canvas{},
		clients: map[*websocket.Conn]bool{},
		start:   time.Now(),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// Run paints every frame from conn until ctx is cancelled.
func (s *Server) Run(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(scan.TopicFrame)
	defer conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			if f, ok := m.Payload.(types.Frame); ok {
				s.Show(f)
			}
		}
	}
}

// Show paints f and broadcasts it.
func (s *Server) Show(f types.Frame) {
	if err := charlie.Draw(s.Canvas, charlie.Levels(f.Levels)); err != nil {
		log.Debug().Err(err).Msg("draw frame")
	}
	cells := s.Canvas.Cells()
	msg := Message{Seq: f.Seq, Index: f.Index, Levels: f.Levels, Cells: make([]string, len(cells))}
	for i, c := range cells {
		msg.Cells[i] = hexColor(c)
	}
	b, err := json.Marshal(msg)
	if err != nil {
		log.Debug().Err(err).Msg("encode frame")
		return
	}

	s.mu.Lock()
	s.last = b
	s.frames++
	s.mu.Unlock()

	s.broadcast(b)
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	c, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[c] = true
	last := s.last
	if last != nil {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		_ = c.WriteMessage(websocket.TextMessage, last)
	}
	s.mu.Unlock()

	go func() {
		defer s.drop(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := map[string]any{
		"frames":   s.frames,
		"clients":  len(s.clients),
		"uptime_s": time.Since(s.start).Seconds(),
	}
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Clients returns the number of connected websockets.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// broadcast holds the write lock so writes to one websocket never overlap.
func (s *Server) broadcast(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *Server) drop(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
