package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/scale"
	"github.com/example/weighbridge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	reader := scale.NewReader(&scale.TCPSource{Addr: "127.0.0.1:1"})
	s := New(Config{Addr: ":0", JWTSecret: "test-secret"}, store, ledger.New(store), reader)
	t.Cleanup(reader.Stop)
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func login(t *testing.T, s *Server, pin string) string {
	t.Helper()

	resp := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{"pin": pin})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func openWeighing(t *testing.T, s *Server, token, plate string, weight int64) model.Transaction {
	t.Helper()

	resp := doJSON(t, s, http.MethodPost, "/api/weighings", token, map[string]any{
		"direction":   "OUTBOUND",
		"plateNumber": plate,
		"driverName":  "SUPARMAN",
		"cargoType":   "SAWIT (FFB)",
		"partyName":   "PT BANGUN INDUSTRI NUSANTARA",
		"weight":      weight,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tx model.Transaction
	decodeBody(t, resp, &tx)
	return tx
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		pin        string
		wantStatus int
	}{
		{name: "master pin", pin: "0000", wantStatus: http.StatusOK},
		{name: "operator pin", pin: "1234", wantStatus: http.StatusOK},
		{name: "unknown pin", pin: "9999", wantStatus: http.StatusUnauthorized},
		{name: "malformed pin", pin: "12", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{"pin": tt.pin})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/api/weighings/pending", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/weighings/pending", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Health stays open for load balancer probes.
	resp = doJSON(t, s, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTwoStageWeighingFlow(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1234")

	tx := openWeighing(t, s, token, "B 1234 ABC", 15000)
	assert.Equal(t, model.StatusPending, tx.Status)
	assert.Equal(t, "B 1234 ABC", tx.PlateNumber)
	assert.True(t, strings.HasPrefix(tx.TicketNumber, "OUT-"))
	assert.Equal(t, "OPERATOR 1", tx.Operator)

	var pending []model.Transaction
	resp := doJSON(t, s, http.MethodGet, "/api/weighings/pending?direction=out", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &pending)
	require.Len(t, pending, 1)

	resp = doJSON(t, s, http.MethodPost, "/api/weighings/"+tx.ID+"/complete", token,
		map[string]int64{"weight": 8000})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var done model.Transaction
	decodeBody(t, resp, &done)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, int64(7000), done.NetWeight)

	// Completed records are immutable.
	resp = doJSON(t, s, http.MethodPost, "/api/weighings/"+tx.ID+"/complete", token,
		map[string]int64{"weight": 9000})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestOpenWeighingValidation(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1234")

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "empty plate",
			body:       map[string]any{"direction": "OUTBOUND", "plateNumber": "  ", "weight": 15000},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "weight below threshold",
			body:       map[string]any{"direction": "OUTBOUND", "plateNumber": "B1A", "weight": 5},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown direction",
			body:       map[string]any{"direction": "SIDEWAYS", "plateNumber": "B1A", "weight": 15000},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, s, http.MethodPost, "/api/weighings", token, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestDuplicatePendingRejected(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1234")

	openWeighing(t, s, token, "B 1234 ABC", 15000)
	resp := doJSON(t, s, http.MethodPost, "/api/weighings", token, map[string]any{
		"direction":   "OUTBOUND",
		"plateNumber": "b 1234 abc",
		"weight":      12000,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMasterRoleGate(t *testing.T) {
	s := newTestServer(t)
	operator := login(t, s, "1234")
	master := login(t, s, "0000")

	resp := doJSON(t, s, http.MethodPost, "/api/reset", operator, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, s, http.MethodPost, "/api/reset", master, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSerialConfigValidation(t *testing.T) {
	s := newTestServer(t)
	master := login(t, s, "0000")

	bad := model.SerialConfig{BaudRate: 1111, DataBits: 8, Parity: "none", StopBits: 1}
	resp := doJSON(t, s, http.MethodPut, "/api/config/serial", master, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	good := model.DefaultSerialConfig()
	good.BaudRate = 19200
	resp = doJSON(t, s, http.MethodPut, "/api/config/serial", master, good)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/config/serial", master, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.SerialConfig
	decodeBody(t, resp, &got)
	assert.Equal(t, 19200, got.BaudRate)
}

func TestMasterDataReplaceKeepsMaster(t *testing.T) {
	s := newTestServer(t)
	master := login(t, s, "0000")

	m := model.DefaultMasterData()
	m.Operators = []model.Operator{{ID: "op-02", Name: "OPERATOR 2", PIN: "4321", Role: model.RoleOperator}}
	resp := doJSON(t, s, http.MethodPut, "/api/master", master, m)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDraftLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1234")

	draft := ledger.Draft{PlateNumber: "B 1 X", DriverName: "JOKO"}
	resp := doJSON(t, s, http.MethodPut, "/api/drafts/out", token, draft)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/drafts/out", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Draft ledger.Draft `json:"draft"`
		Found bool         `json:"found"`
	}
	decodeBody(t, resp, &got)
	assert.True(t, got.Found)
	assert.Equal(t, draft, got.Draft)

	// The other direction keeps its own slot.
	resp = doJSON(t, s, http.MethodGet, "/api/drafts/in", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &got)
	assert.False(t, got.Found)
}

func TestActiveSelection(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1234")
	tx := openWeighing(t, s, token, "B 1234 ABC", 15000)

	resp := doJSON(t, s, http.MethodPut, "/api/active/out", token, map[string]string{"id": tx.ID})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Selecting a pending weighing in the wrong direction is rejected.
	resp = doJSON(t, s, http.MethodPut, "/api/active/in", token, map[string]string{"id": tx.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Completing clears the selection.
	resp = doJSON(t, s, http.MethodPost, "/api/weighings/"+tx.ID+"/complete", token,
		map[string]int64{"weight": 8000})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/active/out", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Found bool `json:"found"`
	}
	decodeBody(t, resp, &got)
	assert.False(t, got.Found)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1234")

	tx := openWeighing(t, s, token, "B 1234 ABC", 15000)
	resp := doJSON(t, s, http.MethodPost, "/api/weighings/"+tx.ID+"/complete", token,
		map[string]int64{"weight": 8000})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/reports/export.csv?direction=out", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(body), "No. Tiket,Tanggal,Plat")
	assert.Contains(t, string(body), `"B 1234 ABC"`)
	assert.Contains(t, string(body), "15000,8000,7000")
}

func TestTicketEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1234")
	tx := openWeighing(t, s, token, "B 1234 ABC", 15000)

	// Pending weighings have no printable ticket yet.
	resp := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/weighings/%s/ticket", tx.ID), token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, s, http.MethodPost, "/api/weighings/"+tx.ID+"/complete", token,
		map[string]int64{"weight": 8000})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/weighings/%s/ticket", tx.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(body), "#"+tx.TicketNumber)
	assert.Contains(t, string(body), "NETTO AKHIR")
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1234")
	master := login(t, s, "0000")

	tx := openWeighing(t, s, token, "B 1234 ABC", 15000)
	resp := doJSON(t, s, http.MethodPost, "/api/weighings/"+tx.ID+"/complete", token,
		map[string]int64{"weight": 8000})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/backup", master, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var backup storage.Backup
	decodeBody(t, resp, &backup)
	require.Len(t, backup.Transactions, 1)

	resp = doJSON(t, s, http.MethodPost, "/api/reset", master, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, s, http.MethodPost, "/api/restore", master, backup)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/weighings/completed?direction=out", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var txs []model.Transaction
	decodeBody(t, resp, &txs)
	require.Len(t, txs, 1)
	assert.Equal(t, tx.TicketNumber, txs[0].TicketNumber)
}

func TestScaleEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1234")

	resp := doJSON(t, s, http.MethodGet, "/api/scale/weight", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Weight    int64 `json:"weight"`
		Connected bool  `json:"connected"`
	}
	decodeBody(t, resp, &got)
	assert.Zero(t, got.Weight)
	assert.False(t, got.Connected)

	resp = doJSON(t, s, http.MethodPost, "/api/scale/disconnect", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
