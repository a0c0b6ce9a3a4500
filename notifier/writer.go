package notifier

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/model"
	Logger "github.com/koinoniahq/koinonia/utils/log"
	"gorm.io/gorm"
)

type WriterConfig struct {
	Name string
}

// Writer's job is to listen to domain events and persist them as
// Notification rows, which clients read back through the notification
// endpoint on their polling loop.
type Writer struct {
	Config WriterConfig

	DB *gorm.DB

	EventBus *gochannel.GoChannel
}

func NewWriter(config WriterConfig, db *gorm.DB, e *gochannel.GoChannel) *Writer {
	return &Writer{
		Config:   config,
		DB:       db,
		EventBus: e,
	}
}

func (w *Writer) ProcessDomainEvents(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.EventBus.Subscribe(ctx, TopicDomainEvent)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		event := Event{}
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			Logger.Log.Error("cannot unmarshal domain event: ", err)
			continue
		}

		if event.RecipientID == "" {
			continue
		}

		res := w.DB.Create(&model.Notification{
			Id:        uuid.New().String(),
			UserID:    event.RecipientID,
			Kind:      event.Kind,
			ActorID:   event.ActorID,
			SubjectID: event.SubjectID,
			Body:      event.Body,
		})
		if res.Error != nil {
			Logger.Log.Error("cannot write notification: ", res.Error)
		}
	}

	return nil
}

func (w *Writer) RunModule(ctx context.Context) error {
	return w.ProcessDomainEvents(ctx)
}

func (w *Writer) Name() string {
	return w.Config.Name
}
