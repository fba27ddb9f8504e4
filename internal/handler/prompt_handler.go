package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/aurum/internal/models"
	"github.com/dushixiang/aurum/internal/service"
	"github.com/dushixiang/aurum/internal/xe"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const promptStorage = "database"

// PromptUpdate 提示词更新请求，字段均可选
type PromptUpdate struct {
	PriceQuery    string `json:"price_query" validate:"max=4000"`
	NewsQuery     string `json:"news_query" validate:"max=4000"`
	ForecastQuery string `json:"forecast_query" validate:"max=4000"`
}

func (r PromptUpdate) toMap() map[string]string {
	prompts := make(map[string]string)
	if r.PriceQuery != "" {
		prompts[models.PromptKeyPrice] = r.PriceQuery
	}
	if r.NewsQuery != "" {
		prompts[models.PromptKeyNews] = r.NewsQuery
	}
	if r.ForecastQuery != "" {
		prompts[models.PromptKeyForecast] = r.ForecastQuery
	}
	return prompts
}

// PromptHandler 提示词管理接口
type PromptHandler struct {
	promptService *service.PromptService
	logger        *zap.Logger
}

func NewPromptHandler(promptService *service.PromptService, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{
		promptService: promptService,
		logger:        logger,
	}
}

// GetPrompts 获取当前提示词
// GET /api/prompts
func (h *PromptHandler) GetPrompts(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"markdown": h.promptService.Markdown(ctx, time.Now()),
		"prompts":  h.promptService.GetCurrent(ctx),
		"storage":  promptStorage,
	})
}

// UpdatePrompts 更新提示词
// POST /api/prompts
func (h *PromptHandler) UpdatePrompts(c echo.Context) error {
	var req PromptUpdate
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	prompts := req.toMap()
	if !h.promptService.Update(c.Request().Context(), prompts) {
		return xe.ErrPromptUpdateFailed
	}

	return c.JSON(http.StatusOK, ApiResponse{
		Success: true,
		Message: "提示词更新成功",
		Data: map[string]interface{}{
			"updated_at": time.Now(),
			"prompts":    prompts,
		},
	})
}

// GetPromptHistory 获取提示词历史
// GET /api/prompts/history?type=news_query&limit=10
func (h *PromptHandler) GetPromptHistory(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	histories, err := h.promptService.GetHistory(c.Request().Context(), c.QueryParam("type"), limit)
	if err != nil {
		return err
	}
	if histories == nil {
		histories = []models.PromptHistory{}
	}
	return c.JSON(http.StatusOK, histories)
}

// RegisterRoutes 注册路由
func (h *PromptHandler) RegisterRoutes(g *echo.Group) {
	prompts := g.Group("/prompts")
	prompts.GET("", h.GetPrompts)
	prompts.POST("", h.UpdatePrompts)
	prompts.GET("/history", h.GetPromptHistory)
}
