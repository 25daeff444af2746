package dto

type CreateJobRequest struct {
	Name     string `json:"name" binding:"required"`
	Customer string `json:"customer"`
}

type CreateDrawingRequest struct {
	JobID               int64  `json:"job_id" binding:"required"`
	DrawingNumber       string `json:"drawing_number" binding:"required"`
	PlannedTimePerPiece int    `json:"planned_time_per_piece"`
	PlannedPieces       int    `json:"planned_pieces"`
}

type CreateJobCardRequest struct {
	DrawingID  int64  `json:"drawing_id" binding:"required"`
	CardNumber string `json:"card_number" binding:"required"`
}

type JobCardResponse struct {
	ID         int64  `json:"id"`
	DrawingID  int64  `json:"drawing_id"`
	CardNumber string `json:"card_number"`
	QRPayload  string `json:"qr_payload"`
}

type JobListItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type MachineListItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
