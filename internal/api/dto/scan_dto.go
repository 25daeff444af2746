package dto

type ScanRequest struct {
	OperatorID int64  `json:"operator_id" binding:"required"`
	MachineID  int64  `json:"machine_id" binding:"required"`
	QRPayload  string `json:"qr_payload" binding:"required"`
}

// ScanResponse carries either a started or a stopped result. Stop-only
// fields are omitted on start and vice versa.
type ScanResponse struct {
	Action          string `json:"action"`
	SessionID       int64  `json:"session_id"`
	StartTs         string `json:"start_ts,omitempty"`
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
	Done            *int   `json:"done,omitempty"`
	Planned         *int   `json:"planned,omitempty"`
}
