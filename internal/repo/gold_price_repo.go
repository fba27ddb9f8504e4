package repo

import (
	"context"
	"errors"

	"github.com/dushixiang/aurum/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGoldPriceRepo(db *gorm.DB) *GoldPriceRepo {
	return &GoldPriceRepo{
		Repository: orz.NewRepository[models.GoldPrice, string](db),
	}
}

type GoldPriceRepo struct {
	orz.Repository[models.GoldPrice, string]
}

// Upsert 按日期写入金价，同一天的记录整体覆盖，id 与创建时间也取最后一次写入
func (r GoldPriceRepo) Upsert(ctx context.Context, price *models.GoldPrice) error {
	db := r.GetDB(ctx)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"id", "price_usd", "price_cny", "change_1d", "forecast", "forecast_data", "created_at", "updated_at",
			}),
		}).
		Create(price).Error
}

// FindLatest 获取最新一天的金价，不存在时返回 nil
func (r GoldPriceRepo) FindLatest(ctx context.Context) (*models.GoldPrice, error) {
	var price models.GoldPrice
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("date DESC").
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// FindLatestBefore 获取指定日期之前最近的一条金价
func (r GoldPriceRepo) FindLatestBefore(ctx context.Context, date string) (*models.GoldPrice, error) {
	var price models.GoldPrice
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("date < ?", date).
		Order("date DESC").
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// FindHistory 获取最近 limit 天的金价走势
func (r GoldPriceRepo) FindHistory(ctx context.Context, limit int) ([]models.GoldPricePoint, error) {
	var points []models.GoldPricePoint
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Select("date, price_usd").
		Order("date DESC").
		Limit(limit).
		Scan(&points).Error
	return points, err
}
