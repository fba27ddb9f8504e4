package handler

import (
	"net/http"

	"github.com/dushixiang/aurum/internal/service"
	"github.com/dushixiang/aurum/internal/xe"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// MarketHandler 金价与新闻查询接口
type MarketHandler struct {
	marketService *service.MarketService
	logger        *zap.Logger
}

func NewMarketHandler(marketService *service.MarketService, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
		logger:        logger,
	}
}

// GetLatestGold 获取最新金价
// GET /api/gold/latest
func (h *MarketHandler) GetLatestGold(c echo.Context) error {
	quote, err := h.marketService.LatestQuote(c.Request().Context())
	if err != nil {
		return err
	}
	if quote == nil {
		return xe.ErrQuoteNotFound
	}
	return c.JSON(http.StatusOK, quote)
}

// GetGoldHistory 获取历史金价
// GET /api/gold/history?limit=30
func (h *MarketHandler) GetGoldHistory(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	points, err := h.marketService.QuoteHistory(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, points)
}

// GetLatestNews 获取最新新闻
// GET /api/news/latest?limit=10
func (h *MarketHandler) GetLatestNews(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	items, err := h.marketService.LatestNews(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// SearchNews 搜索新闻
// GET /api/news/search?q=关键词&limit=10
func (h *MarketHandler) SearchNews(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	items, err := h.marketService.SearchNews(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// RegisterRoutes 注册路由
func (h *MarketHandler) RegisterRoutes(g *echo.Group) {
	gold := g.Group("/gold")
	gold.GET("/latest", h.GetLatestGold)
	gold.GET("/history", h.GetGoldHistory)

	news := g.Group("/news")
	news.GET("/latest", h.GetLatestNews)
	news.GET("/search", h.SearchNews)
}
