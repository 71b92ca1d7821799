package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reportapp "github.com/facturo/backend/internal/application/report"
	"github.com/facturo/backend/internal/domain/report"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
)

// ReportHandler exposes report request enqueueing and status polling
type ReportHandler struct {
	BaseHandler
	service *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/metrics/reports", middleware.TenantRequired())
	group.POST("", h.Enqueue)
	group.GET("/:id", h.Status)
}

// Enqueue accepts a report-generation request
func (h *ReportHandler) Enqueue(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	request, err := h.service.Enqueue(c.Request.Context(), tenantID,
		report.Type(req.Type), req.Period, report.Format(req.Format))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, request)
}

// Status returns the state of a previously enqueued report
func (h *ReportHandler) Status(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "malformed report id")
		return
	}

	request, err := h.service.Status(c.Request.Context(), tenantID, reportID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, request)
}
