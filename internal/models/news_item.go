package models

import "time"

const (
	DefaultNewsCategory  = "热点"
	DefaultNewsSentiment = "neutral"
	DefaultNewsSource    = "Tavily Search"
)

// NewsItem 新闻条目，按 url 去重
type NewsItem struct {
	ID            string    `gorm:"primaryKey;size:26" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	URL           string    `gorm:"uniqueIndex;size:768;not null" json:"url"`
	Summary       string    `gorm:"type:text" json:"summary"`
	AISummary     string    `gorm:"type:text" json:"ai_summary"` // 规则生成的分析说明
	Category      string    `gorm:"size:32" json:"category"`
	Sentiment     string    `gorm:"size:16" json:"sentiment"`
	Source        string    `gorm:"size:64" json:"source"`
	PublishedDate string    `gorm:"size:10" json:"published_date"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (NewsItem) TableName() string {
	return "news_items"
}
