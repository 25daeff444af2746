package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopfloor/cnc-capture/internal/notifier/domain"
)

// spawnSenderPool spawns N sender goroutines based on concurrency configuration
func (w *Worker) spawnSenderPool(ctx context.Context) {
	w.logger.Info("Spawning sender pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.senderLoop(ctx, i)
	}
}

// senderLoop is the main processing loop for each sender goroutine
func (w *Worker) senderLoop(ctx context.Context, senderNum int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Sender goroutine stopping - stopChan closed",
				slog.Int("sender_num", senderNum),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Sender goroutine stopping - context canceled",
				slog.Int("sender_num", senderNum),
			)
			return

		case msg, ok := <-w.eventsChan:
			if !ok {
				return
			}

			err := w.processEvent(ctx, msg)

			channel := w.rabbitClient.GetChannel()
			if channel == nil {
				w.logger.Error("Failed to get RabbitMQ channel for ACK/NACK",
					slog.String("event_id", msg.EventID),
				)
				continue
			}

			if err != nil {
				requeue := w.shouldRequeue(err)
				w.logger.Error("Completion event processing failed",
					slog.String("event_id", msg.EventID),
					slog.Bool("requeue", requeue),
					slog.String("error", err.Error()),
				)
				if nackErr := channel.Nack(msg.DeliveryTag, false, requeue); nackErr != nil {
					w.logger.Error("Failed to NACK event",
						slog.String("event_id", msg.EventID),
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
				w.logger.Error("Failed to ACK event",
					slog.String("event_id", msg.EventID),
					slog.String("error", ackErr.Error()),
				)
			}
		}
	}
}

// shouldRequeue determines if an event should be requeued based on the error type
func (w *Worker) shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrInvalidPayload) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
