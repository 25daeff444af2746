// Package notifier consumes completion events from RabbitMQ and fans
// them out to the configured notification channels.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopfloor/cnc-capture/internal/notifier/domain"
	"github.com/shopfloor/cnc-capture/shared/rabbitmq"
)

// Config holds worker configuration
type Config struct {
	Logger         *slog.Logger
	RabbitClient   *rabbitmq.Client
	Telegram       *TelegramSender
	Email          *EmailSender
	Concurrency    int
	ProcessTimeout time.Duration
	PrefetchCount  int
}

// Worker dispatches consumed completion events to a pool of sender
// goroutines.
type Worker struct {
	logger         *slog.Logger
	rabbitClient   *rabbitmq.Client
	telegram       *TelegramSender
	email          *EmailSender
	concurrency    int
	processTimeout time.Duration
	prefetchCount  int
	workerID       string
	eventsChan     chan *domain.CompletionMessage
	wg             sync.WaitGroup
	stopChan       chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Worker{
		logger:         cfg.Logger,
		rabbitClient:   cfg.RabbitClient,
		telegram:       cfg.Telegram,
		email:          cfg.Email,
		concurrency:    concurrency,
		processTimeout: cfg.ProcessTimeout,
		prefetchCount:  cfg.PrefetchCount,
		workerID:       fmt.Sprintf("notifier-%s", uuid.New().String()[:8]),
		eventsChan:     make(chan *domain.CompletionMessage),
		stopChan:       make(chan struct{}),
	}
}

// Start begins consuming and processing completion events. It blocks
// until the context is canceled or the consumer fails.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting notifier worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Bool("telegram_configured", w.telegram.Configured()),
		slog.Bool("email_configured", w.email.Configured()),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnSenderPool(ctx)
	w.dispatch(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping notifier worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Notifier worker stopped")
}
