package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartstock/smartstock-backend/internal/stock/handler"
	"github.com/smartstock/smartstock-backend/pkg/httputil"
	"github.com/smartstock/smartstock-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestStockHandler_IngressRejectsMalformedJSON(t *testing.T) {
	h := handler.NewStockHandler(nil, nil, logger.New("test", "test"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/ingresa", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.Ingress(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestStockHandler_IngressRejectsMissingFields(t *testing.T) {
	h := handler.NewStockHandler(nil, nil, logger.New("test", "test"))

	body := `{"quantity": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/ingresa", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Ingress(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "Code")
	assert.Contains(t, resp.Error.Details, "Position")
}

func TestStockHandler_TransferRejectsMissingPositions(t *testing.T) {
	h := handler.NewStockHandler(nil, nil, logger.New("test", "test"))

	body := `{"quantity": "5", "user": "alice"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/mover", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Transfer(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "FromPosition")
	assert.Contains(t, resp.Error.Details, "ToPosition")
}

func TestStockHandler_MutationsRejectMissingUser(t *testing.T) {
	h := handler.NewStockHandler(nil, nil, logger.New("test", "test"))

	tests := []struct {
		name    string
		handler http.HandlerFunc
		path    string
		body    string
	}{
		{"ingress", h.Ingress, "/api/v1/stock/ingresa", `{"code": "MAT-001", "position": "A-01-01", "quantity": 5}`},
		{"transfer", h.Transfer, "/api/v1/stock/mover", `{"fromPosition": "A-01-01", "toPosition": "B-02-02", "quantity": 5}`},
		{"withdraw", h.Withdraw, "/api/v1/stock/retirar", `{"code": "MAT-001", "position": "A-01-01", "quantity": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			tt.handler(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decodeResponse(t, rr)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
			assert.Contains(t, resp.Error.Details, "User")
		})
	}
}

func TestStockHandler_MutationsRejectBlankUser(t *testing.T) {
	h := handler.NewStockHandler(nil, nil, logger.New("test", "test"))

	body := `{"code": "MAT-001", "position": "A-01-01", "quantity": 5, "user": "  "}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/ingresa", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Ingress(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "User")
}

func TestStockHandler_WithdrawRejectsMissingCode(t *testing.T) {
	h := handler.NewStockHandler(nil, nil, logger.New("test", "test"))

	body := `{"position": "A-01-01", "quantity": 2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/retirar", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Withdraw(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "Code")
}
