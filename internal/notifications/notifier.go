// Package notifications publishes moderation lifecycle events through Redis
// pub/sub so operators and sidecar consumers can watch the review queue.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"gifboard/internal/models"

	"github.com/redis/go-redis/v9"
)

// ModerationChannel carries every moderation lifecycle event: one message
// per upload entering the queue and one per approve/reject decision.
const ModerationChannel = "moderation:events"

// Event types published on ModerationChannel.
const (
	EventUploaded = "uploaded"
	EventReviewed = "reviewed"
)

// Event is the JSON payload published for each moderation state change.
type Event struct {
	Type     string        `json:"type"`
	GIFID    string        `json:"gifId"`
	Title    string        `json:"title"`
	Username string        `json:"username"`
	Status   models.Status `json:"status"`
	At       time.Time     `json:"at"`
}

// Notifier provides helpers to publish events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishModeration publishes a moderation event. A nil client is a no-op;
// event delivery is best-effort and never blocks the calling operation.
func (n *Notifier) PublishModeration(ctx context.Context, event Event) error {
	if n.rdb == nil {
		return nil
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal moderation event: %w", err)
	}
	return n.rdb.Publish(ctx, ModerationChannel, string(payload)).Err()
}

// StartSubscriber subscribes to the moderation channel and calls onEvent for
// each decoded event until ctx is done. Undecodable payloads are dropped.
func (n *Notifier) StartSubscriber(ctx context.Context, onEvent func(Event)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ModerationChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("dropping undecodable moderation event: %v", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in ModerationSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(event)
				}()
			}
		}
	}()

	return nil
}
