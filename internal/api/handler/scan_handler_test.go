package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfloor/cnc-capture/internal/api/domain"
	"github.com/shopfloor/cnc-capture/internal/api/qr"
	"github.com/shopfloor/cnc-capture/internal/api/session"
)

type fakeEngine struct {
	result *session.Result
	err    error

	calls      int
	jobCardID  int64
	operatorID int64
	machineID  int64
}

func (f *fakeEngine) ProcessScan(_ context.Context, jobCardID, operatorID, machineID int64) (*session.Result, error) {
	f.calls++
	f.jobCardID = jobCardID
	f.operatorID = operatorID
	f.machineID = machineID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newScanRig(engine *fakeEngine) (*qr.Codec, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	codec := qr.NewCodec("test-secret")
	h := NewScanHandler(&Dependencies{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Codec:  codec,
		Engine: engine,
	})

	r := gin.New()
	r.POST("/api/v1/scan", h.Scan)
	return codec, r
}

func postScan(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScan_Started(t *testing.T) {
	startTs := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	engine := &fakeEngine{result: &session.Result{
		Action:    domain.ActionStarted,
		SessionID: 17,
		StartTs:   startTs,
	}}
	codec, r := newScanRig(engine)

	w := postScan(t, r, gin.H{
		"operator_id": 1,
		"machine_id":  2,
		"qr_payload":  codec.Issue(42, startTs),
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp["action"])
	assert.Equal(t, float64(17), resp["session_id"])
	assert.Equal(t, "2025-06-02T08:00:00Z", resp["start_ts"])
	assert.NotContains(t, resp, "duration_seconds")

	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, int64(42), engine.jobCardID)
	assert.Equal(t, int64(1), engine.operatorID)
	assert.Equal(t, int64(2), engine.machineID)
}

func TestScan_Stopped(t *testing.T) {
	engine := &fakeEngine{result: &session.Result{
		Action:          domain.ActionStopped,
		SessionID:       17,
		DurationSeconds: 10,
		Done:            2,
		Planned:         3,
	}}
	codec, r := newScanRig(engine)

	w := postScan(t, r, gin.H{
		"operator_id": 1,
		"machine_id":  2,
		"qr_payload":  codec.IssueNow(42),
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "stopped", resp["action"])
	assert.Equal(t, float64(10), resp["duration_seconds"])
	assert.Equal(t, float64(2), resp["done"])
	assert.Equal(t, float64(3), resp["planned"])
	assert.NotContains(t, resp, "start_ts")
}

func TestScan_InvalidToken(t *testing.T) {
	engine := &fakeEngine{}
	_, r := newScanRig(engine)

	other := qr.NewCodec("different-secret")

	tests := []struct {
		name    string
		payload string
	}{
		{name: "garbage", payload: "not-a-token"},
		{name: "wrong secret", payload: other.IssueNow(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postScan(t, r, gin.H{
				"operator_id": 1,
				"machine_id":  1,
				"qr_payload":  tt.payload,
			})

			// One collapsed outcome for both malformed and bad-signature
			// tokens, rejected before any session lookup.
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"invalid token"}`, w.Body.String())
			assert.Equal(t, 0, engine.calls)
		})
	}
}

func TestScan_InvalidBody(t *testing.T) {
	engine := &fakeEngine{}
	_, r := newScanRig(engine)

	w := postScan(t, r, gin.H{"operator_id": 1})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, engine.calls)
}

func TestScan_EngineFailure(t *testing.T) {
	engine := &fakeEngine{err: assert.AnError}
	codec, r := newScanRig(engine)

	w := postScan(t, r, gin.H{
		"operator_id": 1,
		"machine_id":  1,
		"qr_payload":  codec.IssueNow(42),
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
