package repo

import (
	"context"

	"github.com/dushixiang/aurum/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewNewsRepo(db *gorm.DB) *NewsRepo {
	return &NewsRepo{
		Repository: orz.NewRepository[models.NewsItem, string](db),
	}
}

type NewsRepo struct {
	orz.Repository[models.NewsItem, string]
}

// InsertIgnore 写入新闻，url 已存在时不做任何修改。
// 返回值表示是否真正写入了新记录。
func (r NewsRepo) InsertIgnore(ctx context.Context, item *models.NewsItem) (bool, error) {
	db := r.GetDB(ctx)
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoNothing: true,
		}).
		Create(item)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindLatest 获取最新入库的新闻
func (r NewsRepo) FindLatest(ctx context.Context, limit int) ([]models.NewsItem, error) {
	var items []models.NewsItem
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// Search 在标题、摘要和分析说明中模糊搜索
func (r NewsRepo) Search(ctx context.Context, query string, limit int) ([]models.NewsItem, error) {
	var items []models.NewsItem
	like := "%" + query + "%"
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("title LIKE ? OR summary LIKE ? OR ai_summary LIKE ?", like, like, like).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
