package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shopfloor/cnc-capture/internal/api/domain"
	"github.com/shopfloor/cnc-capture/internal/api/model"
	"github.com/shopfloor/cnc-capture/shared/postgresql"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

// FindLatestOpenSession returns the most recent started session for the
// (job card, operator, machine) triple, or (nil, nil) when none is open.
func (s *Storage) FindLatestOpenSession(ctx context.Context, jobCardID, operatorID, machineID int64) (*model.WorkSession, error) {
	query := `
		SELECT id, job_card_id, operator_id, machine_id, start_ts, stop_ts, duration_seconds, status, meta
		FROM sessions
		WHERE job_card_id = $1
		  AND operator_id = $2
		  AND machine_id = $3
		  AND status = $4
		ORDER BY start_ts DESC
		LIMIT 1
	`

	var ws model.WorkSession
	err := s.db.GetContext(ctx, &ws, query, jobCardID, operatorID, machineID, domain.SessionStatusStarted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}

	return &ws, nil
}

func (s *Storage) InsertSession(ctx context.Context, ws *model.WorkSession) (int64, error) {
	query := `
		INSERT INTO sessions (job_card_id, operator_id, machine_id, start_ts, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		ws.JobCardID,
		ws.OperatorID,
		ws.MachineID,
		ws.StartTs,
		ws.Status,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	return id, nil
}

// StopSession closes a session in one statement so the stop timestamp,
// duration and status commit together or not at all.
func (s *Storage) StopSession(ctx context.Context, id int64, stopTs time.Time, durationSeconds int64) error {
	query := `
		UPDATE sessions
		SET stop_ts = $1,
		    duration_seconds = $2,
		    status = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, stopTs, durationSeconds, domain.SessionStatusStopped, id)
	if err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNoOpenSession
	}

	return nil
}

// CountStoppedSessions counts stopped sessions for a job card across all
// operators and machines.
func (s *Storage) CountStoppedSessions(ctx context.Context, jobCardID int64) (int, error) {
	query := `
		SELECT COUNT(id)
		FROM sessions
		WHERE job_card_id = $1 AND status = $2
	`

	var count int
	err := s.db.GetContext(ctx, &count, query, jobCardID, domain.SessionStatusStopped)
	if err != nil {
		return 0, fmt.Errorf("failed to count stopped sessions: %w", err)
	}

	return count, nil
}

// GetPlannedPieces returns the planned piece count from the job card's
// drawing. Missing rows report zero; the engine treats that as one.
func (s *Storage) GetPlannedPieces(ctx context.Context, jobCardID int64) (int, error) {
	query := `
		SELECT d.planned_pieces
		FROM job_cards jc
		JOIN drawings d ON d.id = jc.drawing_id
		WHERE jc.id = $1
	`

	var planned int
	err := s.db.GetContext(ctx, &planned, query, jobCardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get planned pieces: %w", err)
	}

	return planned, nil
}

func (s *Storage) CreateJob(ctx context.Context, name, customer string) (int64, error) {
	query := `
		INSERT INTO jobs (name, customer)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id
	`

	var id int64
	if err := s.db.QueryRowContext(ctx, query, name, customer).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create job: %w", err)
	}

	return id, nil
}

func (s *Storage) CreateDrawing(ctx context.Context, d *model.Drawing) (int64, error) {
	query := `
		INSERT INTO drawings (job_id, drawing_number, planned_time_per_piece, planned_pieces)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		d.JobID,
		d.DrawingNumber,
		d.PlannedTimePerPiece,
		d.PlannedPieces,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create drawing: %w", err)
	}

	return id, nil
}

func (s *Storage) CreateJobCard(ctx context.Context, drawingID int64, cardNumber string) (int64, error) {
	query := `
		INSERT INTO job_cards (drawing_id, card_number, qr_payload)
		VALUES ($1, $2, '')
		RETURNING id
	`

	var id int64
	if err := s.db.QueryRowContext(ctx, query, drawingID, cardNumber).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create job card: %w", err)
	}

	return id, nil
}

// SetJobCardToken stores the signed token on a freshly created card. The
// card id has to exist before the token can be issued over it, hence the
// create-then-update sequence.
func (s *Storage) SetJobCardToken(ctx context.Context, id int64, token string) error {
	query := `
		UPDATE job_cards
		SET qr_payload = $1
		WHERE id = $2
	`

	result, err := s.db.ExecContext(ctx, query, token, id)
	if err != nil {
		return fmt.Errorf("failed to set job card token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrJobCardNotFound
	}

	return nil
}

func (s *Storage) GetJobCardByID(ctx context.Context, id int64) (*model.JobCard, error) {
	query := `
		SELECT id, drawing_id, card_number, qr_payload
		FROM job_cards
		WHERE id = $1
	`

	var jc model.JobCard
	err := s.db.GetContext(ctx, &jc, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobCardNotFound
		}
		return nil, fmt.Errorf("failed to get job card: %w", err)
	}

	return &jc, nil
}

func (s *Storage) ListJobs(ctx context.Context) ([]model.Job, error) {
	query := `
		SELECT id, name, customer
		FROM jobs
		ORDER BY id
	`

	var jobs []model.Job
	if err := s.db.SelectContext(ctx, &jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

func (s *Storage) ListMachines(ctx context.Context) ([]model.Machine, error) {
	query := `
		SELECT id, name
		FROM machines
		ORDER BY id
	`

	var machines []model.Machine
	if err := s.db.SelectContext(ctx, &machines, query); err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}

	return machines, nil
}
