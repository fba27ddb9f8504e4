package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/aurum/internal/metrics"
	"github.com/dushixiang/aurum/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	serviceName    = "Aurum Gold & News API"
	serviceVersion = "1.0.0"
)

// ApiResponse 通用操作结果
type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SystemHandler 健康检查、刷新控制与监控
type SystemHandler struct {
	refreshLoop *service.RefreshLoop
	metrics     *metrics.Metrics
	db          *gorm.DB
	logger      *zap.Logger
}

func NewSystemHandler(refreshLoop *service.RefreshLoop, m *metrics.Metrics, db *gorm.DB, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		refreshLoop: refreshLoop,
		metrics:     m,
		db:          db,
		logger:      logger,
	}
}

// Root 服务信息
// GET /
func (h *SystemHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service": serviceName,
		"status":  "running",
		"version": serviceVersion,
		"endpoints": map[string]string{
			"gold_price":      "/api/gold/latest",
			"gold_history":    "/api/gold/history",
			"news_latest":     "/api/news/latest",
			"news_search":     "/api/news/search",
			"prompts":         "/api/prompts",
			"prompts_history": "/api/prompts/history",
			"update":          "/api/update",
			"status":          "/api/status",
			"metrics":         "/metrics",
		},
	})
}

// Health 健康检查
// GET /api/health
func (h *SystemHandler) Health(c echo.Context) error {
	database := "connected"
	status := "healthy"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		database = "disconnected"
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
		"database":  database,
	})
}

// Status 刷新循环状态
// GET /api/status
func (h *SystemHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.refreshLoop.Status())
}

// TriggerUpdate 手动触发刷新，不等待结果
// POST /api/update
func (h *SystemHandler) TriggerUpdate(c echo.Context) error {
	startedAt := time.Now()
	h.refreshLoop.Trigger()
	h.logger.Info("manual refresh triggered")
	return c.JSON(http.StatusOK, ApiResponse{
		Success: true,
		Message: "更新任务已启动",
		Data:    map[string]interface{}{"started_at": startedAt},
	})
}

// RegisterRoutes 注册路由
func (h *SystemHandler) RegisterRoutes(e *echo.Echo, g *echo.Group) {
	e.GET("/", h.Root)
	e.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))

	g.GET("/health", h.Health)
	g.GET("/status", h.Status)
	g.POST("/update", h.TriggerUpdate)
}
