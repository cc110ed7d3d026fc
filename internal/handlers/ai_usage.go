package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

// AIUsageHandler provides endpoints for AI usage statistics.
type AIUsageHandler struct {
	usageService *services.AIUsageService
}

func NewAIUsageHandler(db *gorm.DB) *AIUsageHandler {
	return &AIUsageHandler{
		usageService: services.NewAIUsageService(db),
	}
}

func bindUsageFilter(c *gin.Context) (*services.UsageFilter, bool) {
	var f services.UsageFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.BindError(c, err)
		return nil, false
	}
	return &f, true
}

// GetStats returns aggregated AI usage statistics.
// GET /api/admin/ai-usage/stats
func (h *AIUsageHandler) GetStats(c *gin.Context) {
	f, ok := bindUsageFilter(c)
	if !ok {
		return
	}

	stats, err := h.usageService.GetStats(f)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, stats)
}

// GetDailyTrend returns daily AI usage data for charting.
// GET /api/admin/ai-usage/trend
func (h *AIUsageHandler) GetDailyTrend(c *gin.Context) {
	f, ok := bindUsageFilter(c)
	if !ok {
		return
	}

	trend, err := h.usageService.GetDailyTrend(f)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, trend)
}

// GetProviderBreakdown returns AI usage grouped by provider/model.
// GET /api/admin/ai-usage/providers
func (h *AIUsageHandler) GetProviderBreakdown(c *gin.Context) {
	f, ok := bindUsageFilter(c)
	if !ok {
		return
	}

	providers, err := h.usageService.GetProviderBreakdown(f)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, providers)
}

// GetFeatureBreakdown returns AI usage grouped by feature.
// GET /api/admin/ai-usage/features
func (h *AIUsageHandler) GetFeatureBreakdown(c *gin.Context) {
	f, ok := bindUsageFilter(c)
	if !ok {
		return
	}

	features, err := h.usageService.GetFeatureBreakdown(f)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, features)
}
