package model

import (
	"database/sql"
	"time"
)

// WorkSession is one start/stop timing record for a job card on a machine.
type WorkSession struct {
	ID              int64          `db:"id"`
	JobCardID       int64          `db:"job_card_id"`
	OperatorID      int64          `db:"operator_id"`
	MachineID       int64          `db:"machine_id"`
	StartTs         time.Time      `db:"start_ts"`
	StopTs          sql.NullTime   `db:"stop_ts"`
	DurationSeconds sql.NullInt64  `db:"duration_seconds"`
	Status          string         `db:"status"`
	Meta            sql.NullString `db:"meta"`
}

// Job is a customer order grouping one or more drawings.
type Job struct {
	ID       int64          `db:"id"`
	Name     string         `db:"name"`
	Customer sql.NullString `db:"customer"`
}

// Drawing supplies the planned piece count and time per piece for its cards.
type Drawing struct {
	ID                  int64  `db:"id"`
	JobID               int64  `db:"job_id"`
	DrawingNumber       string `db:"drawing_number"`
	PlannedTimePerPiece int    `db:"planned_time_per_piece"`
	PlannedPieces       int    `db:"planned_pieces"`
}

// JobCard is the physical work-order unit identified by a signed QR token.
type JobCard struct {
	ID         int64  `db:"id"`
	DrawingID  int64  `db:"drawing_id"`
	CardNumber string `db:"card_number"`
	QRPayload  string `db:"qr_payload"`
}

// Machine is a shop-floor machine operators scan against.
type Machine struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}
