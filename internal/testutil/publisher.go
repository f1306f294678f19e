package testutil

import (
	"context"
	"sync"

	"github.com/Skotchmaster/konveksi/internal/mykafka"
)

type PublishedEvent struct {
	Topic string
	Key   string
	Event mykafka.Event
}

// RecordingPublisher keeps every published event in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func (p *RecordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	ev, _ := event.(mykafka.Event)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Topic: topic, Key: key, Event: ev})
	return nil
}

func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}

// Types lists the event types in publish order.
func (p *RecordingPublisher) Types() []string {
	var out []string
	for _, e := range p.Events() {
		out = append(out, e.Event.Type)
	}
	return out
}
