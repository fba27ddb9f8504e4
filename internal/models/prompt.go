package models

import (
	"slices"
	"time"
)

// 提示词类型
const (
	PromptKeyPrice    = "price_query"
	PromptKeyNews     = "news_query"
	PromptKeyForecast = "forecast_query"
)

// PromptKeys 固定顺序的提示词类型
var PromptKeys = []string{PromptKeyPrice, PromptKeyNews, PromptKeyForecast}

// IsPromptKey 是否为已知的提示词类型
func IsPromptKey(key string) bool {
	return slices.Contains(PromptKeys, key)
}

// CurrentPrompt 当前生效的提示词
type CurrentPrompt struct {
	PromptKey string    `gorm:"primaryKey;size:32" json:"prompt_key"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CurrentPrompt) TableName() string {
	return "current_prompts"
}

// PromptHistory 提示词版本记录，只追加
type PromptHistory struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PromptKey string    `gorm:"uniqueIndex:idx_prompt_key_version;size:32;not null" json:"prompt_type"`
	Version   int       `gorm:"uniqueIndex:idx_prompt_key_version;not null" json:"version"`
	Content   string    `gorm:"type:text;not null" json:"prompt_content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (PromptHistory) TableName() string {
	return "prompt_histories"
}
