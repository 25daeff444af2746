// Package session turns verified scan events into work session starts and
// stops and detects job-card completion against the planned piece count.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopfloor/cnc-capture/internal/api/domain"
	"github.com/shopfloor/cnc-capture/internal/api/model"
)

// Store is the persistence surface the engine mutates sessions through.
// FindLatestOpenSession returns (nil, nil) when no open session exists.
type Store interface {
	FindLatestOpenSession(ctx context.Context, jobCardID, operatorID, machineID int64) (*model.WorkSession, error)
	InsertSession(ctx context.Context, s *model.WorkSession) (int64, error)
	StopSession(ctx context.Context, id int64, stopTs time.Time, durationSeconds int64) error
	CountStoppedSessions(ctx context.Context, jobCardID int64) (int, error)
	GetPlannedPieces(ctx context.Context, jobCardID int64) (int, error)
}

// CompletionEvent is handed to the notifier when a job card crosses its
// planned piece count.
type CompletionEvent struct {
	JobCardID int64  `json:"job_card_id"`
	Done      int    `json:"done"`
	Planned   int    `json:"planned"`
	Text      string `json:"text"`
}

// Notifier dispatches a completion event, best effort. Implementations
// must not block the caller on delivery; the engine never observes the
// outcome.
type Notifier interface {
	Notify(event CompletionEvent)
}

// Result is the outcome of one scan: exactly one of started or stopped.
type Result struct {
	Action          string
	SessionID       int64
	StartTs         time.Time
	DurationSeconds int64
	Done            int
	Planned         int
}

// Engine is the scan-event state machine. A triple cycles
// no-open-session -> open -> no-open-session; each ProcessScan call
// performs one transition under a per-triple lock.
type Engine struct {
	logger    *slog.Logger
	store     Store
	notifier  Notifier
	locks     *lockArena[tripleKey]
	cardLocks *lockArena[int64]
	now       func() time.Time
}

// Config holds engine dependencies.
type Config struct {
	Logger   *slog.Logger
	Store    Store
	Notifier Notifier
	Now      func() time.Time // defaults to time.Now
}

func NewEngine(cfg *Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		logger:    cfg.Logger,
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		locks:     newLockArena[tripleKey](),
		cardLocks: newLockArena[int64](),
		now:       now,
	}
}

// ProcessScan opens a new session for the triple, or closes the most
// recent open one. The read-decide-write sequence holds the triple's lock,
// so concurrent scans for the same triple serialize and at most one open
// session exists per triple.
func (e *Engine) ProcessScan(ctx context.Context, jobCardID, operatorID, machineID int64) (*Result, error) {
	key := tripleKey{JobCardID: jobCardID, OperatorID: operatorID, MachineID: machineID}

	l := e.locks.lockFor(key)
	l.Lock()
	defer l.Unlock()

	existing, err := e.store.FindLatestOpenSession(ctx, jobCardID, operatorID, machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up open session: %w", err)
	}

	if existing == nil {
		return e.startSession(ctx, key)
	}
	return e.stopSession(ctx, key, existing)
}

func (e *Engine) startSession(ctx context.Context, key tripleKey) (*Result, error) {
	now := e.now()

	ws := &model.WorkSession{
		JobCardID:  key.JobCardID,
		OperatorID: key.OperatorID,
		MachineID:  key.MachineID,
		StartTs:    now,
		Status:     domain.SessionStatusStarted,
	}

	id, err := e.store.InsertSession(ctx, ws)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	e.logger.Info("Work session started",
		slog.Int64("session_id", id),
		slog.String("triple", key.String()),
	)

	return &Result{
		Action:    domain.ActionStarted,
		SessionID: id,
		StartTs:   now,
	}, nil
}

func (e *Engine) stopSession(ctx context.Context, key tripleKey, existing *model.WorkSession) (*Result, error) {
	now := e.now()

	// Integer seconds, truncated toward zero.
	duration := int64(now.Sub(existing.StartTs) / time.Second)

	done, err := e.stopAndCount(ctx, key.JobCardID, existing.ID, now, duration)
	if err != nil {
		return nil, err
	}

	planned, err := e.store.GetPlannedPieces(ctx, key.JobCardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get planned pieces: %w", err)
	}
	if planned <= 0 {
		planned = 1
	}

	e.logger.Info("Work session stopped",
		slog.Int64("session_id", existing.ID),
		slog.String("triple", key.String()),
		slog.Int64("duration_seconds", duration),
		slog.Int("done", done),
		slog.Int("planned", planned),
	)

	// Notify on the crossing only. stopAndCount serializes stops per job
	// card, so every stop observes a distinct done value and exactly one
	// observes the equality.
	if done == planned {
		e.notifier.Notify(CompletionEvent{
			JobCardID: key.JobCardID,
			Done:      done,
			Planned:   planned,
			Text:      fmt.Sprintf("JobCard %d completed: %d/%d", key.JobCardID, done, planned),
		})
	}

	return &Result{
		Action:          domain.ActionStopped,
		SessionID:       existing.ID,
		DurationSeconds: duration,
		Done:            done,
		Planned:         planned,
	}, nil
}

// stopAndCount closes the session and counts the card's stopped sessions
// under the card's lock. Stops for the same job card on other triples
// hold only their own triple lock, so without this lock two stops could
// both commit before either counted and both land past the threshold,
// losing the crossing.
func (e *Engine) stopAndCount(ctx context.Context, jobCardID, sessionID int64, stopTs time.Time, durationSeconds int64) (int, error) {
	l := e.cardLocks.lockFor(jobCardID)
	l.Lock()
	defer l.Unlock()

	// Single statement: stop_ts, duration and status commit together or
	// not at all.
	if err := e.store.StopSession(ctx, sessionID, stopTs, durationSeconds); err != nil {
		return 0, fmt.Errorf("failed to stop session: %w", err)
	}

	done, err := e.store.CountStoppedSessions(ctx, jobCardID)
	if err != nil {
		return 0, fmt.Errorf("failed to count stopped sessions: %w", err)
	}

	return done, nil
}
