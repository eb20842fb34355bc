// Package events is the one-way notification channel from the engine to the
// UI layer. Components emit onto a Subject; subscribers (the websocket hub,
// the tray, tests) receive every event for their topic in emission order.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// TopicAll subscribes a handler to every topic. The websocket bridge uses it
// to forward the whole event stream to the UI.
const TopicAll = "*"

// Handler receives an emitted event. Handlers run sequentially on the
// Subject's dispatch goroutine, so a single subscriber never sees events out
// of order and never runs concurrently with itself.
type Handler func(topic string, payload any)

type event struct {
	topic   string
	payload any
}

// Subject is a buffered, single-dispatcher pub/sub hub.
type Subject struct {
	mu     sync.Mutex
	subs   map[string]map[int64]Handler
	nextID int64

	events   chan event
	shutdown chan struct{}
	closed   atomic.Bool
	done     chan struct{}
}

// NewSubject creates a Subject and starts its dispatch loop.
func NewSubject() *Subject {
	s := &Subject{
		subs:     make(map[string]map[int64]Handler),
		events:   make(chan event, 256),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

// Emit publishes payload on topic. It only blocks when the buffer is full and
// fails rather than hanging a caller forever.
func (s *Subject) Emit(topic string, payload any) error {
	if s.closed.Load() {
		return fmt.Errorf("event bus closed")
	}
	select {
	case s.events <- event{topic: topic, payload: payload}:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("failed to emit event on %s: bus saturated", topic)
	}
}

// Subscribe registers handler for topic (or TopicAll). The returned function
// unsubscribes.
func (s *Subject) Subscribe(topic string, handler Handler) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	if s.subs[topic] == nil {
		s.subs[topic] = make(map[int64]Handler)
	}
	s.subs[topic][id] = handler

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[topic], id)
		if len(s.subs[topic]) == 0 {
			delete(s.subs, topic)
		}
	}
}

// Close stops the dispatch loop. Events already buffered are dropped.
func (s *Subject) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.shutdown)
		<-s.done
	}
}

func (s *Subject) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.shutdown:
			return
		case evt := <-s.events:
			s.dispatch(evt)
		}
	}
}

func (s *Subject) dispatch(evt event) {
	s.mu.Lock()
	handlers := make([]Handler, 0, len(s.subs[evt.topic])+len(s.subs[TopicAll]))
	for _, h := range s.subs[evt.topic] {
		handlers = append(handlers, h)
	}
	for _, h := range s.subs[TopicAll] {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(evt.topic, evt.payload)
	}
}
