package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/intellijobs/api/internal/metrics"
	"github.com/intellijobs/api/internal/model"
)

// NotificationChannel is the Redis pub/sub channel between workers and the
// process that owns the WebSocket connections.
const NotificationChannel = "intellijobs:notifications"

// Publisher delivers push events through Redis so a worker running in a
// separate process can reach the hub.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

// Notify is fire and forget: failures are logged, never returned.
func (p *Publisher) Notify(ctx context.Context, userID, event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}
	payload, err := json.Marshal(model.Notification{UserID: userID, Message: frame})
	if err != nil {
		log.Printf("Failed to marshal notification: %v", err)
		return
	}
	if err := p.redis.Publish(ctx, NotificationChannel, payload).Err(); err != nil {
		log.Printf("Failed to publish %s for user %s: %v", event, userID, err)
		return
	}
	metrics.NotificationsPublishedTotal.WithLabelValues(event).Inc()
}

// Subscribe forwards published notifications to the hub until ctx is done.
// It returns once the subscription is confirmed by Redis.
func (h *Hub) Subscribe(ctx context.Context, redisClient *redis.Client) error {
	pubsub := redisClient.Subscribe(ctx, NotificationChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", NotificationChannel, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var n model.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					log.Printf("Dropping malformed notification: %v", err)
					continue
				}
				h.Send(n.UserID, n.Message)
			}
		}
	}()
	return nil
}
