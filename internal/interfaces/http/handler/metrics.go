package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	metricsapp "github.com/facturo/backend/internal/application/metrics"
	"github.com/facturo/backend/internal/domain/metrics"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
)

// MetricsHandler exposes the aggregation engine over HTTP
type MetricsHandler struct {
	BaseHandler
	service *metricsapp.MetricsService
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(service *metricsapp.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// RegisterRoutes registers metrics routes
func (h *MetricsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/metrics")
	group.GET("/health", h.Health)

	tenant := group.Group("", middleware.TenantRequired())
	tenant.GET("/dashboard", h.Dashboard)
	tenant.GET("/revenue", h.RevenueAnalytics)
	tenant.GET("/realtime", h.RealTime)
	tenant.GET("/customers", h.CustomerAnalytics)
	tenant.GET("/products", h.ProductAnalytics)
	tenant.POST("/cache/invalidate", h.InvalidateCache)
}

// Dashboard returns the tenant's KPI snapshot
func (h *MetricsHandler) Dashboard(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	snapshot, err := h.service.GetDashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// RevenueAnalytics returns the per-period revenue series
func (h *MetricsHandler) RevenueAnalytics(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req dto.RevenueAnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	points, err := h.service.GetRevenueAnalytics(c.Request.Context(), tenantID,
		metrics.PeriodKind(req.Period), req.StartDate, req.EndDate)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, points)
}

// RealTime returns the lightweight polling payload
func (h *MetricsHandler) RealTime(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	rt, err := h.service.GetRealTime(c.Request.Context(), tenantID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, rt)
}

// CustomerAnalytics returns the paginated per-customer analytics listing.
// The computation is not implemented yet; the endpoint accepts and validates
// pagination and answers with an empty page so clients can integrate against
// the final envelope.
func (h *MetricsHandler) CustomerAnalytics(c *gin.Context) {
	h.emptyAnalyticsPage(c)
}

// ProductAnalytics returns the paginated per-product analytics listing.
// Same contract as CustomerAnalytics: validated pagination, empty page.
func (h *MetricsHandler) ProductAnalytics(c *gin.Context) {
	h.emptyAnalyticsPage(c)
}

func (h *MetricsHandler) emptyAnalyticsPage(c *gin.Context) {
	var req dto.AnalyticsListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req = req.WithDefaults()

	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta([]any{}, 0, req.Page, req.Limit))
}

// InvalidateCache drops every cached metric of the tenant. Always succeeds:
// invalidation is advisory and an already-cold cache is a valid outcome.
func (h *MetricsHandler) InvalidateCache(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	deleted := h.service.InvalidateTenant(c.Request.Context(), tenantID)
	h.Success(c, dto.InvalidationResult{Deleted: deleted})
}

// Health reports data source reachability
func (h *MetricsHandler) Health(c *gin.Context) {
	status := h.service.HealthCheck(c.Request.Context())

	code := http.StatusOK
	if status.Status != metrics.HealthStatusHealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, dto.NewSuccessResponse(status))
}
