package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	metricsapp "github.com/facturo/backend/internal/application/metrics"
	"github.com/facturo/backend/internal/domain/metrics"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/infrastructure/cache"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/facturo/backend/internal/interfaces/http/router"
)

// stubRepo is a zero-data repository with overridable behavior per test
type stubRepo struct {
	pingErr    error
	revenueErr error
}

func (s *stubRepo) PaidRevenueBetween(context.Context, uuid.UUID, time.Time, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, s.revenueErr
}
func (s *stubRepo) CountInvoicesByStatus(context.Context, uuid.UUID, metrics.InvoiceStatus) (int64, error) {
	return 0, nil
}
func (s *stubRepo) CountInvoices(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (s *stubRepo) InvoiceStatusCounts(context.Context, uuid.UUID) (map[metrics.InvoiceStatus]int64, error) {
	return map[metrics.InvoiceStatus]int64{}, nil
}
func (s *stubRepo) TopCustomers(context.Context, uuid.UUID, int) ([]metrics.TopCustomer, error) {
	return nil, nil
}
func (s *stubRepo) CountQuotesBetween(context.Context, uuid.UUID, time.Time, time.Time) (int64, error) {
	return 0, nil
}
func (s *stubRepo) CountQuotesByStatus(context.Context, uuid.UUID, metrics.QuoteStatus) (int64, error) {
	return 0, nil
}
func (s *stubRepo) QuoteStatusCounts(context.Context, uuid.UUID) (map[metrics.QuoteStatus]int64, error) {
	return map[metrics.QuoteStatus]int64{}, nil
}
func (s *stubRepo) PaymentDelays(context.Context, uuid.UUID) ([]int64, error) { return nil, nil }
func (s *stubRepo) CountCustomers(context.Context, uuid.UUID) (int64, error)  { return 0, nil }
func (s *stubRepo) CountCustomersCreatedBetween(context.Context, uuid.UUID, time.Time, time.Time) (int64, error) {
	return 0, nil
}
func (s *stubRepo) RevenueStatsBetween(context.Context, uuid.UUID, time.Time, time.Time) (decimal.Decimal, int64, error) {
	return decimal.Zero, 0, nil
}
func (s *stubRepo) Ping(context.Context) error { return s.pingErr }

func setupMetricsRouter(t *testing.T, repo metrics.Repository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	store := cache.NewInMemoryMetricStore()
	t.Cleanup(func() { _ = store.Close() })

	svc := metricsapp.NewMetricsService(repo, store, cache.NewKeyBuilder("metrics"), zap.NewNop(), metricsapp.Options{})

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).Register(NewMetricsHandler(svc)).Setup()
	return engine
}

func doRequest(engine *gin.Engine, method, path string, tenantID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if tenantID != "" {
		req.Header.Set(middleware.TenantHeaderKey, tenantID)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestMetricsHandler_Dashboard(t *testing.T) {
	t.Run("returns snapshot for valid tenant", func(t *testing.T) {
		engine := setupMetricsRouter(t, &stubRepo{})

		w := doRequest(engine, http.MethodGet, "/api/v1/metrics/dashboard", uuid.New().String())

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, data, "monthly_revenue")
		assert.Contains(t, data, "invoice_status_distribution")
	})

	t.Run("rejects missing tenant header", func(t *testing.T) {
		engine := setupMetricsRouter(t, &stubRepo{})

		w := doRequest(engine, http.MethodGet, "/api/v1/metrics/dashboard", "")

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, shared.CodeValidation, resp.Error.Code)
	})

	t.Run("rejects malformed tenant header", func(t *testing.T) {
		engine := setupMetricsRouter(t, &stubRepo{})

		w := doRequest(engine, http.MethodGet, "/api/v1/metrics/dashboard", "not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps data source failure to 503", func(t *testing.T) {
		repo := &stubRepo{revenueErr: shared.NewDataSourceError("query failed", nil)}
		engine := setupMetricsRouter(t, repo)

		w := doRequest(engine, http.MethodGet, "/api/v1/metrics/dashboard", uuid.New().String())

		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, shared.CodeDataSource, resp.Error.Code)
	})
}

func TestMetricsHandler_RevenueAnalytics(t *testing.T) {
	t.Run("rejects unknown period kind", func(t *testing.T) {
		engine := setupMetricsRouter(t, &stubRepo{})

		w := doRequest(engine, http.MethodGet, "/api/v1/metrics/revenue?period=hourly", uuid.New().String())

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns series for explicit range", func(t *testing.T) {
		engine := setupMetricsRouter(t, &stubRepo{})

		w := doRequest(engine, http.MethodGet,
			"/api/v1/metrics/revenue?period=monthly&start_date=2026-01-01&end_date=2026-03-01",
			uuid.New().String())

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		points, ok := resp.Data.([]any)
		require.True(t, ok)
		assert.Len(t, points, 2)
	})
}

func TestMetricsHandler_AnalyticsListings(t *testing.T) {
	for _, path := range []string{"/api/v1/metrics/customers", "/api/v1/metrics/products"} {
		t.Run(path, func(t *testing.T) {
			t.Run("returns an empty paginated page", func(t *testing.T) {
				engine := setupMetricsRouter(t, &stubRepo{})

				w := doRequest(engine, http.MethodGet, path+"?page=2&limit=25", uuid.New().String())

				require.Equal(t, http.StatusOK, w.Code)

				var resp dto.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)

				data, ok := resp.Data.([]any)
				require.True(t, ok)
				assert.Empty(t, data)

				require.NotNil(t, resp.Meta)
				assert.Equal(t, int64(0), resp.Meta.Total)
				assert.Equal(t, 2, resp.Meta.Page)
				assert.Equal(t, 25, resp.Meta.PageSize)
				assert.Equal(t, 0, resp.Meta.TotalPages)
			})

			t.Run("defaults page and limit", func(t *testing.T) {
				engine := setupMetricsRouter(t, &stubRepo{})

				w := doRequest(engine, http.MethodGet, path, uuid.New().String())

				require.Equal(t, http.StatusOK, w.Code)

				var resp dto.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				require.NotNil(t, resp.Meta)
				assert.Equal(t, 1, resp.Meta.Page)
				assert.Equal(t, 10, resp.Meta.PageSize)
			})

			t.Run("rejects out-of-range pagination", func(t *testing.T) {
				engine := setupMetricsRouter(t, &stubRepo{})

				w := doRequest(engine, http.MethodGet, path+"?limit=500", uuid.New().String())

				assert.Equal(t, http.StatusBadRequest, w.Code)
			})

			t.Run("requires a tenant", func(t *testing.T) {
				engine := setupMetricsRouter(t, &stubRepo{})

				w := doRequest(engine, http.MethodGet, path, "")

				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		})
	}
}

func TestMetricsHandler_Health(t *testing.T) {
	t.Run("healthy without tenant header", func(t *testing.T) {
		engine := setupMetricsRouter(t, &stubRepo{})

		w := doRequest(engine, http.MethodGet, "/api/v1/metrics/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unhealthy maps to 503", func(t *testing.T) {
		repo := &stubRepo{pingErr: shared.NewDataSourceError("down", nil)}
		engine := setupMetricsRouter(t, repo)

		w := doRequest(engine, http.MethodGet, "/api/v1/metrics/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestMetricsHandler_InvalidateCache(t *testing.T) {
	engine := setupMetricsRouter(t, &stubRepo{})
	tenantID := uuid.New().String()

	// warm the cache, then invalidate
	w := doRequest(engine, http.MethodGet, "/api/v1/metrics/dashboard", tenantID)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(engine, http.MethodPost, "/api/v1/metrics/cache/invalidate", tenantID)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), data["deleted"])
}
