package repo

import (
	"context"
	"time"

	"github.com/dushixiang/aurum/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CurrentPromptRepo struct {
	orz.Repository[models.CurrentPrompt, string]
}

func NewCurrentPromptRepo(db *gorm.DB) *CurrentPromptRepo {
	return &CurrentPromptRepo{
		Repository: orz.NewRepository[models.CurrentPrompt, string](db),
	}
}

// FindAllAsMap 以 key -> content 的形式返回所有已保存的提示词
func (r *CurrentPromptRepo) FindAllAsMap(ctx context.Context) (map[string]string, error) {
	var rows []models.CurrentPrompt
	err := r.GetDB(ctx).WithContext(ctx).
		Table(r.GetTableName()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	prompts := make(map[string]string, len(rows))
	for _, row := range rows {
		prompts[row.PromptKey] = row.Content
	}
	return prompts, nil
}

// Upsert 覆盖指定类型的当前提示词
func (r *CurrentPromptRepo) Upsert(ctx context.Context, key, content string) error {
	row := models.CurrentPrompt{
		PromptKey: key,
		Content:   content,
		UpdatedAt: time.Now(),
	}
	return r.GetDB(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "prompt_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
		}).
		Create(&row).Error
}

type PromptHistoryRepo struct {
	orz.Repository[models.PromptHistory, string]
}

func NewPromptHistoryRepo(db *gorm.DB) *PromptHistoryRepo {
	return &PromptHistoryRepo{
		Repository: orz.NewRepository[models.PromptHistory, string](db),
	}
}

// GetMaxVersion 获取指定类型当前最大版本号，没有记录时为 0
func (r *PromptHistoryRepo) GetMaxVersion(ctx context.Context, key string) (int, error) {
	var maxVersion int
	err := r.GetDB(ctx).WithContext(ctx).
		Model(&models.PromptHistory{}).
		Where("prompt_key = ?", key).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	return maxVersion, nil
}

// FindRecent 按时间倒序获取历史版本，key 为空时不过滤类型
func (r *PromptHistoryRepo) FindRecent(ctx context.Context, key string, limit int) ([]models.PromptHistory, error) {
	var histories []models.PromptHistory
	db := r.GetDB(ctx).WithContext(ctx).Table(r.GetTableName())
	if key != "" {
		db = db.Where("prompt_key = ?", key)
	}
	err := db.Order("created_at DESC").
		Order("version DESC").
		Limit(limit).
		Find(&histories).Error
	return histories, err
}
