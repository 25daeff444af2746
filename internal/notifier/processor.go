package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopfloor/cnc-capture/internal/notifier/domain"
)

// processEvent sends one completion event over every configured channel.
// Notification delivery is best effort: a channel failure on a fresh
// delivery requeues the event for one more attempt, a failure on a
// redelivered event is logged and swallowed so the queue never backs up
// behind a dead channel.
func (w *Worker) processEvent(ctx context.Context, msg *domain.CompletionMessage) error {
	// A structurally valid body with nothing to say cannot be delivered;
	// requeueing it would never make it deliverable.
	if msg.Text == "" {
		return fmt.Errorf("%w: event %s has empty text", domain.ErrInvalidPayload, msg.EventID)
	}

	w.logger.Info("Processing completion event",
		slog.String("event_id", msg.EventID),
		slog.Int64("job_card_id", msg.JobCardID),
		slog.Int("done", msg.Done),
		slog.Int("planned", msg.Planned),
	)

	timeout := w.processTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var failed int
	var attempted int

	if w.telegram.Configured() {
		attempted++
		if err := w.telegram.Send(sendCtx, msg.Text); err != nil {
			failed++
			w.logger.Error("Telegram delivery failed",
				slog.String("event_id", msg.EventID),
				slog.String("error", err.Error()),
			)
		}
	}

	if w.email.Configured() {
		attempted++
		subject := fmt.Sprintf("JobCard %d completed", msg.JobCardID)
		if err := w.email.Send(sendCtx, subject, msg.Text); err != nil {
			failed++
			w.logger.Error("Email delivery failed",
				slog.String("event_id", msg.EventID),
				slog.String("error", err.Error()),
			)
		}
	}

	if attempted == 0 {
		w.logger.Warn("No notification channels configured, dropping event",
			slog.String("event_id", msg.EventID),
		)
		return nil
	}

	if failed == attempted && !msg.Redelivered {
		return domain.NewRetryableError(fmt.Errorf("all %d channels failed", failed))
	}

	if failed > 0 {
		w.logger.Warn("Completion event partially delivered",
			slog.String("event_id", msg.EventID),
			slog.Int("failed", failed),
			slog.Int("attempted", attempted),
		)
	}

	return nil
}
