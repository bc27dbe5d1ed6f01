package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/creamline/milkbooks_backend/internal/core/ports/services"
	"github.com/creamline/milkbooks_backend/internal/dto"
	"github.com/creamline/milkbooks_backend/internal/middleware"
)

// reportingHandler handles HTTP requests for the aged receivables and
// payables reports.
type reportingHandler struct {
	receivablesService portssvc.ReceivablesSvcFacade
}

func newReportingHandler(rs portssvc.ReceivablesSvcFacade) *reportingHandler {
	return &reportingHandler{receivablesService: rs}
}

// registerReportingRoutes registers the reporting routes.
func registerReportingRoutes(rg *gin.RouterGroup, receivablesService portssvc.ReceivablesSvcFacade) {
	h := newReportingHandler(receivablesService)

	reports := rg.Group("/reports")
	{
		reports.GET("/receivables", h.getReceivables)
		reports.GET("/payables", h.getPayables)
	}
}

func (h *reportingHandler) getReceivables(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, ok := middleware.GetTenantIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Tenant ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var filters dto.ReportFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	report, err := h.receivablesService.GetReceivables(c.Request.Context(), tenantID, filters)
	if err != nil {
		logger.Error("Failed to build receivables report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build receivables report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) getPayables(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, ok := middleware.GetTenantIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Tenant ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var filters dto.ReportFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	report, err := h.receivablesService.GetPayables(c.Request.Context(), tenantID, filters)
	if err != nil {
		logger.Error("Failed to build payables report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build payables report"})
		return
	}
	c.JSON(http.StatusOK, report)
}
