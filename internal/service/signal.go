package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dropanchorapp/anchorpds/internal/domain"
)

// SignalService fans out accepted check-ins over redis pub/sub. A nil redis
// client disables it; publishes become no-ops.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.CheckinEvent) error {
	if s.rdb == nil {
		return nil
	}

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, domain.CheckinChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe streams check-in events until the returned cancel func is
// called or the context ends.
func (s *SignalService) Subscribe(ctx context.Context) (<-chan domain.CheckinEvent, func()) {
	out := make(chan domain.CheckinEvent)

	if s.rdb == nil {
		close(out)
		return out, func() {}
	}

	pubsub := s.rdb.Subscribe(ctx, domain.CheckinChannel)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event domain.CheckinEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "Failed to decode checkin event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { pubsub.Close() }
}
