package eventbus

import (
	"sync"

	"github.com/kilianp07/lineplan/core/events"
)

// Publisher is the write side of the bus used by the optimizer.
type Publisher interface {
	Publish(events.Event)
}

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publisher
	Subscribe(kinds ...events.Kind) <-chan events.Event
	Unsubscribe(<-chan events.Event)
	Close()
}

type subscriber struct {
	ch    chan events.Event
	kinds map[events.Kind]struct{}
}

func (s subscriber) wants(k events.Kind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[k]
	return ok
}

// Bus is the default EventBus implementation using fan-out channels.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	buffer int
	closed bool
}

// DefaultBuffer is the per-subscriber channel capacity used by New.
const DefaultBuffer = 64

// New creates a new Bus.
func New() *Bus { return NewWithBuffer(DefaultBuffer) }

// NewWithBuffer creates a Bus whose subscriber channels hold n events.
func NewWithBuffer(n int) *Bus {
	if n < 1 {
		n = 1
	}
	return &Bus{buffer: n}
}

// Publish sends the event to every interested subscriber. Delivery is
// non-blocking: a full subscriber misses the event.
func (b *Bus) Publish(e events.Event) {
	if e == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if !s.wants(e.Kind()) {
			continue
		}
		select {
		case s.ch <- e:
		default:
		}
	}
}

// Subscribe registers a subscriber for the given kinds, or for every kind
// when none is given.
func (b *Bus) Subscribe(kinds ...events.Kind) <-chan events.Event {
	s := subscriber{ch: make(chan events.Event, b.buffer)}
	if len(kinds) > 0 {
		s.kinds = make(map[events.Kind]struct{}, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = struct{}{}
		}
	}
	b.mu.Lock()
	if b.closed {
		close(s.ch)
	} else {
		b.subs = append(b.subs, s)
	}
	b.mu.Unlock()
	return s.ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(s.ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
}
