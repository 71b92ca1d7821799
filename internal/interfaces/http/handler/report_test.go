package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	reportapp "github.com/facturo/backend/internal/application/report"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/facturo/backend/internal/interfaces/http/router"
)

func setupReportRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	svc := reportapp.NewReportService(zap.NewNop())

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).Register(NewReportHandler(svc)).Setup()
	return engine
}

func postJSON(engine *gin.Engine, path, tenantID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tenantID != "" {
		req.Header.Set(middleware.TenantHeaderKey, tenantID)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestReportHandler_Enqueue(t *testing.T) {
	t.Run("enqueues a valid request", func(t *testing.T) {
		engine := setupReportRouter(t)
		tenantID := uuid.New().String()

		w := postJSON(engine, "/api/v1/metrics/reports", tenantID,
			`{"type":"revenue","period":"2026-08","format":"csv"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "pending", data["status"])
		assert.NotEmpty(t, data["id"])
	})

	t.Run("rejects unknown type at the binding layer", func(t *testing.T) {
		engine := setupReportRouter(t)

		w := postJSON(engine, "/api/v1/metrics/reports", uuid.New().String(),
			`{"type":"payroll","period":"2026-08"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReportHandler_Status(t *testing.T) {
	engine := setupReportRouter(t)
	tenantID := uuid.New().String()

	w := postJSON(engine, "/api/v1/metrics/reports", tenantID,
		`{"type":"invoices","period":"2026"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	reportID := created.Data.(map[string]any)["id"].(string)

	t.Run("finds an enqueued report", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/reports/"+reportID, nil)
		req.Header.Set(middleware.TenantHeaderKey, tenantID)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown id yields 404 with stable code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/reports/"+uuid.New().String(), nil)
		req.Header.Set(middleware.TenantHeaderKey, tenantID)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, shared.CodeNotFound, resp.Error.Code)
	})

	t.Run("malformed id yields 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/reports/abc", nil)
		req.Header.Set(middleware.TenantHeaderKey, tenantID)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
