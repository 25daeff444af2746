package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopfloor/cnc-capture/internal/api/domain"
	"github.com/shopfloor/cnc-capture/internal/api/dto"
	"github.com/shopfloor/cnc-capture/internal/api/model"
)

// CreateJob handles POST /api/v1/jobs
func (h *JobCardHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	id, err := h.store.CreateJob(c.Request.Context(), req.Name, req.Customer)
	if err != nil {
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create job",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// CreateDrawing handles POST /api/v1/drawings
func (h *JobCardHandler) CreateDrawing(c *gin.Context) {
	var req dto.CreateDrawingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	planned := req.PlannedPieces
	if planned <= 0 {
		planned = 1
	}

	id, err := h.store.CreateDrawing(c.Request.Context(), &model.Drawing{
		JobID:               req.JobID,
		DrawingNumber:       req.DrawingNumber,
		PlannedTimePerPiece: req.PlannedTimePerPiece,
		PlannedPieces:       planned,
	})
	if err != nil {
		h.logger.Error("Failed to create drawing", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create drawing",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// CreateJobCard handles POST /api/v1/jobcards
// Creates the card, then issues its signed token. The token embeds the
// card id, so it cannot be built before the insert returns one.
func (h *JobCardHandler) CreateJobCard(c *gin.Context) {
	var req dto.CreateJobCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	ctx := c.Request.Context()

	id, err := h.store.CreateJobCard(ctx, req.DrawingID, req.CardNumber)
	if err != nil {
		h.logger.Error("Failed to create job card", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create job card",
		})
		return
	}

	token := h.codec.IssueNow(id)
	if err := h.store.SetJobCardToken(ctx, id, token); err != nil {
		h.logger.Error("Failed to store job card token",
			slog.Int64("job_card_id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create job card",
		})
		return
	}

	h.logger.Info("Job card created",
		slog.Int64("job_card_id", id),
		slog.String("card_number", req.CardNumber),
	)

	c.JSON(http.StatusOK, gin.H{
		"id":         id,
		"qr_payload": token,
	})
}

// GetJobCard handles GET /api/v1/jobcards/:id
func (h *JobCardHandler) GetJobCard(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id must be an integer",
		})
		return
	}

	jc, err := h.store.GetJobCardByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrJobCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "job card not found",
			})
			return
		}
		h.logger.Error("Failed to get job card", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job card",
		})
		return
	}

	c.JSON(http.StatusOK, dto.JobCardResponse{
		ID:         jc.ID,
		DrawingID:  jc.DrawingID,
		CardNumber: jc.CardNumber,
		QRPayload:  jc.QRPayload,
	})
}

// ListJobs handles GET /api/v1/jobs/list
func (h *JobCardHandler) ListJobs(c *gin.Context) {
	jobs, err := h.store.ListJobs(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	items := make([]dto.JobListItem, len(jobs))
	for i, job := range jobs {
		items[i] = dto.JobListItem{ID: job.ID, Name: job.Name}
	}

	c.JSON(http.StatusOK, items)
}

// ListMachines handles GET /api/v1/machines/list
func (h *JobCardHandler) ListMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list machines", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list machines",
		})
		return
	}

	items := make([]dto.MachineListItem, len(machines))
	for i, m := range machines {
		items[i] = dto.MachineListItem{ID: m.ID, Name: m.Name}
	}

	c.JSON(http.StatusOK, items)
}
