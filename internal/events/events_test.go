package events

import (
	"testing"
	"time"
)

func TestEmitSubscribe(t *testing.T) {
	s := NewSubject()
	defer s.Close()

	got := make(chan any, 1)
	s.Subscribe(TopicLoadProject, func(topic string, payload any) {
		got <- payload
	})

	if err := s.Emit(TopicLoadProject, LoadProjectEvent{ProjectID: "p1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	select {
	case p := <-got:
		evt, ok := p.(LoadProjectEvent)
		if !ok || evt.ProjectID != "p1" {
			t.Fatalf("unexpected payload %#v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSubscribeAll(t *testing.T) {
	s := NewSubject()
	defer s.Close()

	got := make(chan string, 2)
	s.Subscribe(TopicAll, func(topic string, payload any) {
		got <- topic
	})

	s.Emit(TopicUpdateAvailable, nil)
	s.Emit(TopicUpdateError, nil)

	for _, want := range []string{TopicUpdateAvailable, TopicUpdateError} {
		select {
		case topic := <-got:
			if topic != want {
				t.Fatalf("expected %s, got %s", want, topic)
			}
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewSubject()
	defer s.Close()

	got := make(chan struct{}, 4)
	unsub := s.Subscribe(TopicUpdateError, func(string, any) {
		got <- struct{}{}
	})

	s.Emit(TopicUpdateError, nil)
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("first event not delivered")
	}

	unsub()
	s.Emit(TopicUpdateError, nil)
	select {
	case <-got:
		t.Fatal("event delivered after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEmitAfterClose(t *testing.T) {
	s := NewSubject()
	s.Close()
	if err := s.Emit(TopicUpdateError, nil); err == nil {
		t.Fatal("expected error emitting on closed bus")
	}
}
