package service

import (
	"context"
	"strings"

	"github.com/dushixiang/aurum/internal/models"
	"github.com/dushixiang/aurum/internal/repo"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultQuoteHistoryLimit = 30
	MaxQuoteHistoryLimit     = 100
	DefaultNewsLimit         = 10
	MaxNewsLimit             = 50
)

// MarketService 金价与新闻查询
type MarketService struct {
	logger *zap.Logger

	*orz.Service
	goldPriceRepo *repo.GoldPriceRepo
	newsRepo      *repo.NewsRepo
}

func NewMarketService(db *gorm.DB, logger *zap.Logger) *MarketService {
	return &MarketService{
		logger:        logger,
		Service:       orz.NewService(db),
		goldPriceRepo: repo.NewGoldPriceRepo(db),
		newsRepo:      repo.NewNewsRepo(db),
	}
}

// LatestQuote 最新金价，没有数据时返回 nil
func (s *MarketService) LatestQuote(ctx context.Context) (*models.GoldPrice, error) {
	return s.goldPriceRepo.FindLatest(ctx)
}

// QuoteHistory 历史金价，limit 超出范围时截断
func (s *MarketService) QuoteHistory(ctx context.Context, limit int) ([]models.GoldPricePoint, error) {
	limit = clampLimit(limit, DefaultQuoteHistoryLimit, MaxQuoteHistoryLimit)
	points, err := s.goldPriceRepo.FindHistory(ctx, limit)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []models.GoldPricePoint{}
	}
	return points, nil
}

// LatestNews 最新新闻
func (s *MarketService) LatestNews(ctx context.Context, limit int) ([]models.NewsItem, error) {
	limit = clampLimit(limit, DefaultNewsLimit, MaxNewsLimit)
	items, err := s.newsRepo.FindLatest(ctx, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items, nil
}

// SearchNews 搜索新闻，空关键词直接返回空列表
func (s *MarketService) SearchNews(ctx context.Context, query string, limit int) ([]models.NewsItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.NewsItem{}, nil
	}
	limit = clampLimit(limit, DefaultNewsLimit, MaxNewsLimit)
	items, err := s.newsRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items, nil
}
