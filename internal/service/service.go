package service

import (
	"context"
	"strconv"

	"github.com/Skotchmaster/konveksi/internal/mykafka"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

// Publisher is satisfied by *mykafka.Producer.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

// publish is best effort: the request has already succeeded, so a broker
// failure is logged and swallowed.
func publish(ctx context.Context, p Publisher, topic, key, typ string, data any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, mykafka.NewEvent(typ, data)); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", typ, "error", err)
	}
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
