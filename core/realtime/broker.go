package realtime

import (
	"context"
	"date-booker/core/constants"
	"date-booker/core/logger"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type EventType string

const (
	EventMessageCreated      EventType = "message.created"
	EventAvailabilityUpdated EventType = "availability.updated"
	EventParticipantAdded    EventType = "participant.added"
	EventParticipantRemoved  EventType = "participant.removed"
	EventInstanceDeleted     EventType = "instance.deleted"
)

// Event is pushed to every subscriber of an instance.
type Event struct {
	Type          EventType  `json:"type"`
	InstanceID    uuid.UUID  `json:"instance_id"`
	ParticipantID *uuid.UUID `json:"participant_id,omitempty"`
	Data          any        `json:"data,omitempty"`
	At            time.Time  `json:"at"`
}

func NewEvent(eventType EventType, instanceID uuid.UUID, participantID *uuid.UUID, data any) Event {
	return Event{
		Type:          eventType,
		InstanceID:    instanceID,
		ParticipantID: participantID,
		Data:          data,
		At:            time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Subscriber interface {
	// Subscribe delivers raw JSON events for one instance until ctx is done
	// or the returned close func is called.
	Subscribe(ctx context.Context, instanceID uuid.UUID) (<-chan []byte, func() error, error)
}

type Broker struct {
	client *redis.Client
}

func NewBroker(client *redis.Client) *Broker {
	return &Broker{client: client}
}

func Channel(instanceID uuid.UUID) string {
	return fmt.Sprintf(constants.RedisChannelInstance, instanceID.String())
}

func (b *Broker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, Channel(event.InstanceID), payload).Err(); err != nil {
		logger.Error("Broker:Publish:Error", "error", err, "type", event.Type, "instance_id", event.InstanceID)
		return err
	}
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, instanceID uuid.UUID) (<-chan []byte, func() error, error) {
	pubsub := b.client.Subscribe(ctx, Channel(instanceID))

	// Wait for the subscription confirmation so callers do not miss events
	// published right after Subscribe returns.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, pubsub.Close, nil
}

// PublishSafe publishes and only logs failures. Realtime delivery is best effort
// and never fails the write that triggered it.
func PublishSafe(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn("Realtime:PublishSafe:Error", "error", err, "type", event.Type)
	}
}
