package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopfloor/cnc-capture/internal/api/domain"
	"github.com/shopfloor/cnc-capture/internal/api/dto"
	"github.com/shopfloor/cnc-capture/internal/api/qr"
)

// Scan handles POST /api/v1/scan
// Verifies the job-card token and toggles the work session for the
// (job card, operator, machine) triple.
func (h *ScanHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid scan request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	claims, err := h.codec.Verify(req.QRPayload)
	if err != nil {
		// Malformed tokens and bad signatures collapse into one outcome
		// so the response reveals nothing about the signature check.
		if qr.Invalid(err) {
			h.logger.Warn("Rejected scan with invalid token",
				slog.Int64("operator_id", req.OperatorID),
				slog.Int64("machine_id", req.MachineID),
			)
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid token",
			})
			return
		}
		h.logger.Error("Token verification failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process scan",
		})
		return
	}

	result, err := h.engine.ProcessScan(c.Request.Context(), claims.JobCardID, req.OperatorID, req.MachineID)
	if err != nil {
		h.logger.Error("Failed to process scan",
			slog.Int64("job_card_id", claims.JobCardID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process scan",
		})
		return
	}

	resp := dto.ScanResponse{
		Action:    result.Action,
		SessionID: result.SessionID,
	}
	if result.Action == domain.ActionStarted {
		resp.StartTs = result.StartTs.UTC().Format(time.RFC3339)
	} else {
		duration := result.DurationSeconds
		done := result.Done
		planned := result.Planned
		resp.DurationSeconds = &duration
		resp.Done = &done
		resp.Planned = &planned
	}

	c.JSON(http.StatusOK, resp)
}
