package notifier

import (
	"context"
	"encoding/json"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	Logger "github.com/koinoniahq/koinonia/utils/log"
)

const (
	DDogDomainEventCounter = "koinonia.domain_event.count"
)

type ReporterConfig struct {
	Name string
}

// Reporter's job is to listen to the event bus and mirror event counts to
// Datadog for monitoring purpose.
type Reporter struct {
	Config ReporterConfig

	Statsd *statsd.Client

	EventBus *gochannel.GoChannel
}

func NewReporter(config ReporterConfig, statsd *statsd.Client, e *gochannel.GoChannel) *Reporter {
	return &Reporter{
		Config:   config,
		Statsd:   statsd,
		EventBus: e,
	}
}

// ReportEvent increments the per-kind event counter.
func ReportEvent(event *Event, statsd *statsd.Client) {
	err := statsd.Incr(DDogDomainEventCounter, []string{event.Kind}, 1)
	if err != nil {
		Logger.Log.Infoln("cannot report domain event")
	}
}

func (r *Reporter) ProcessDomainEvents(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.EventBus.Subscribe(ctx, TopicDomainEvent)
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

		ReportEvent(&event, r.Statsd)
	}

	return nil
}

func (r *Reporter) RunModule(ctx context.Context) error {
	return r.ProcessDomainEvents(ctx)
}

func (r *Reporter) Name() string {
	return r.Config.Name
}
