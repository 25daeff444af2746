package handler

import (
	"context"
	"log/slog"

	"github.com/shopfloor/cnc-capture/internal/api/model"
	"github.com/shopfloor/cnc-capture/internal/api/qr"
	"github.com/shopfloor/cnc-capture/internal/api/session"
)

// ScanEngine is the toggle engine surface the scan handler drives.
type ScanEngine interface {
	ProcessScan(ctx context.Context, jobCardID, operatorID, machineID int64) (*session.Result, error)
}

// CardStore is the provisioning surface the job-card handlers use.
type CardStore interface {
	CreateJob(ctx context.Context, name, customer string) (int64, error)
	CreateDrawing(ctx context.Context, d *model.Drawing) (int64, error)
	CreateJobCard(ctx context.Context, drawingID int64, cardNumber string) (int64, error)
	SetJobCardToken(ctx context.Context, id int64, token string) error
	GetJobCardByID(ctx context.Context, id int64) (*model.JobCard, error)
	ListJobs(ctx context.Context) ([]model.Job, error)
	ListMachines(ctx context.Context) ([]model.Machine, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger *slog.Logger
	Codec  *qr.Codec
	Engine ScanEngine
	Store  CardStore
}

// ScanHandler handles scan (start/stop toggle) HTTP requests
type ScanHandler struct {
	logger *slog.Logger
	codec  *qr.Codec
	engine ScanEngine
}

// NewScanHandler creates a new ScanHandler instance
func NewScanHandler(deps *Dependencies) *ScanHandler {
	return &ScanHandler{
		logger: deps.Logger,
		codec:  deps.Codec,
		engine: deps.Engine,
	}
}

// JobCardHandler handles job/drawing/job-card provisioning requests
type JobCardHandler struct {
	logger *slog.Logger
	codec  *qr.Codec
	store  CardStore
}

// NewJobCardHandler creates a new JobCardHandler instance
func NewJobCardHandler(deps *Dependencies) *JobCardHandler {
	return &JobCardHandler{
		logger: deps.Logger,
		codec:  deps.Codec,
		store:  deps.Store,
	}
}
