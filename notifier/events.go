package notifier

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	// Domain events published by the API handlers.
	TopicDomainEvent = "koinonia.domain_event"
)

// Event is the payload carried on the event bus for anything that should end
// up in a user's notification inbox.
type Event struct {
	Kind        string  `json:"kind"`
	RecipientID string  `json:"recipient_id"`
	ActorID     *string `json:"actor_id,omitempty"`
	SubjectID   string  `json:"subject_id"`
	Body        string  `json:"body"`
}

// NewEventBus returns the in-process event bus shared by publishers and the
// notifier modules.
func NewEventBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
}

// Publish marshals the event and pushes it onto the bus. Publishing is fire
// and forget, a failed publish must never fail the originating request.
func Publish(bus *gochannel.GoChannel, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return bus.Publish(TopicDomainEvent, msg)
}
