package models

import (
	"time"

	"gorm.io/datatypes"
)

// 预测趋势
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// GoldPrice 每日金价记录，每个自然日只有一条
type GoldPrice struct {
	ID           string                            `gorm:"primaryKey;size:26" json:"id"`
	Date         string                            `gorm:"uniqueIndex;size:10;not null" json:"date"` // YYYY-MM-DD
	PriceUSD     float64                           `gorm:"not null" json:"price_usd"`                // 美元/盎司
	PriceCNY     *float64                          `json:"price_cny"`                                // 人民币/克
	Change1D     *float64                          `json:"change_1d"`                                // 较前一交易日涨跌幅(%)，无前值时为空
	Forecast     string                            `gorm:"type:text" json:"forecast"`                // 预测摘要
	ForecastData datatypes.JSONType[ForecastCurve] `gorm:"type:json" json:"forecast_data"`
	CreatedAt    time.Time                         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GoldPrice) TableName() string {
	return "gold_prices"
}

// ForecastCurve 30分钟走势预测
type ForecastCurve struct {
	Trend      string          `json:"trend"`
	Volatility float64         `json:"volatility"` // 波动幅度(%)
	KeyPoints  KeyPoints       `json:"key_points"`
	DataPoints []ForecastPoint `json:"data_points"`
	Summary    string          `json:"summary"`
}

// KeyPoints 支撑位与阻力位
type KeyPoints struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// ForecastPoint 预测点
type ForecastPoint struct {
	Minute int     `json:"minute"`
	Label  string  `json:"label"`
	Price  float64 `json:"price"`
	Time   string  `json:"time"` // HH:MM
}

// GoldPricePoint 历史金价走势点
type GoldPricePoint struct {
	Date     string  `json:"date"`
	PriceUSD float64 `json:"price_usd"`
}
