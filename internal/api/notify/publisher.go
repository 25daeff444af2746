// Package notify publishes completion events to RabbitMQ for the
// notifier service to fan out.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shopfloor/cnc-capture/internal/api/session"
	"github.com/shopfloor/cnc-capture/shared/rabbitmq"
)

const publishTimeout = 10 * time.Second

// Event is the wire form of a completion event.
type Event struct {
	EventID   string `json:"event_id"`
	JobCardID int64  `json:"job_card_id"`
	Done      int    `json:"done"`
	Planned   int    `json:"planned"`
	Text      string `json:"text"`
}

// Publisher satisfies session.Notifier by handing each event to a
// detached goroutine. The scan response never waits on delivery and a
// publish failure never reaches the engine.
type Publisher struct {
	logger       *slog.Logger
	rabbitClient *rabbitmq.Client
}

func NewPublisher(logger *slog.Logger, rabbitClient *rabbitmq.Client) *Publisher {
	return &Publisher{
		logger:       logger,
		rabbitClient: rabbitClient,
	}
}

func (p *Publisher) Notify(event session.CompletionEvent) {
	wire := Event{
		EventID:   uuid.New().String(),
		JobCardID: event.JobCardID,
		Done:      event.Done,
		Planned:   event.Planned,
		Text:      event.Text,
	}

	go p.publish(wire)
}

func (p *Publisher) publish(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal completion event",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.rabbitClient.PublishWithRetry(ctx, body, "application/json"); err != nil {
		// Best effort: log and drop, the session write already committed.
		p.logger.Error("Failed to publish completion event",
			slog.String("event_id", event.EventID),
			slog.Int64("job_card_id", event.JobCardID),
			slog.String("error", err.Error()),
		)
		return
	}

	p.logger.Info("Completion event published",
		slog.String("event_id", event.EventID),
		slog.Int64("job_card_id", event.JobCardID),
		slog.Int("done", event.Done),
		slog.Int("planned", event.Planned),
	)
}
