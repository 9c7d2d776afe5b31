// Package bus is a small in-process topic bus with retained messages.
//
// Topics are token paths. A subscription may use "+" to match exactly one
// token and a trailing "#" to match the rest of the path (including nothing).
package bus

import (
	"strings"
	"sync"
)

const (
	wildOne  = "+"
	wildRest = "#"
)

// Topic is a path of tokens.
type Topic []string

// T builds a Topic.
func T(tokens ...string) Topic { return Topic(tokens) }

// String joins the tokens with "/".
func (t Topic) String() string { return strings.Join(t, "/") }

// Match reports whether the concrete topic c matches filter t.
func (t Topic) Match(c Topic) bool {
	for i, tok := range t {
		if tok == wildRest {
			return true
		}
		if i >= len(c) {
			return false
		}
		if tok != wildOne && tok != c[i] {
			return false
		}
	}
	return len(t) == len(c)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// NewMessage builds a message. It does not publish it.
func (b *Bus) NewMessage(t Topic, payload any, retained bool) *Message {
	return &Message{Topic: t, Payload: payload, Retained: retained}
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	filter Topic
	ch     chan *Message
	conn   *Connection
}

func (s *Subscription) Topic() Topic             { return s.filter }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// deliver never blocks: a full queue loses its oldest message.
func (s *Subscription) deliver(m *Message) {
	for {
		select {
		case s.ch <- m:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu       sync.Mutex
	subs     []*Subscription
	retained map[string]*Message
	qLen     int
}

// NewBus creates a bus whose subscriptions queue up to queueLen messages.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{
		retained: map[string]*Message{},
		qLen:     queueLen,
	}
}

// Publish delivers msg to every matching subscription. A retained message
// replaces the stored one for its topic; a retained nil payload clears it.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		key := msg.Topic.String()
		if msg.Payload == nil {
			delete(b.retained, key)
		} else {
			b.retained[key] = msg
		}
	}
	for _, s := range b.subs {
		if s.filter.Match(msg.Topic) {
			s.deliver(msg)
		}
	}
}

func (b *Bus) add(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = append(b.subs, s)
	for _, m := range b.retained {
		if s.filter.Match(m.Topic) {
			s.deliver(m)
		}
	}
}

func (b *Bus) remove(s *Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, x := range b.subs {
		if x == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection groups the subscriptions of one service.
type Connection struct {
	bus  *Bus
	mu   sync.Mutex
	subs []*Subscription
}

// NewConnection creates a connection bound to this bus.
func (b *Bus) NewConnection() *Connection {
	return &Connection{bus: b}
}

// NewMessage builds a message on the connection's bus.
func (c *Connection) NewMessage(t Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(t, payload, retained)
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection. Matching
// retained messages are queued immediately.
func (c *Connection) Subscribe(filter Topic) *Subscription {
	s := &Subscription{
		filter: filter,
		ch:     make(chan *Message, c.bus.qLen),
		conn:   c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, s)
	c.mu.Unlock()
	c.bus.add(s)
	return s
}

// Unsubscribe removes the subscription and closes its channel.
func (c *Connection) Unsubscribe(s *Subscription) {
	if !c.bus.remove(s) {
		return
	}
	c.mu.Lock()
	for i, x := range c.subs {
		if x == s {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(s.ch)
}

// Disconnect closes every subscription of the connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		if c.bus.remove(s) {
			close(s.ch)
		}
	}
}
