package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dushixiang/aurum/internal/config"
	"github.com/dushixiang/aurum/internal/models"
	"github.com/shopspring/decimal"
)

const (
	forecastVolatility = 0.002 // 0.2% 波动
	flatThreshold      = 10    // 首尾价差小于该值视为横盘（美元）
	fallbackBasePrice  = 5000
)

var forecastOffsets = []struct {
	minute int
	label  string
}{
	{0, "现在"},
	{10, "10分钟后"},
	{20, "20分钟后"},
	{30, "30分钟后"},
}

// ForecastService 30分钟走势预测（确定性的合成曲线，不是模型预测）
type ForecastService struct {
	band       float64
	jitterSeed uint64
	now        func() time.Time
}

// NewForecastService 创建预测服务。jitter_seed 为 0 时不引入任何扰动。
func NewForecastService(conf *config.Config) *ForecastService {
	band := conf.Forecast.Band
	if band <= 0 {
		band = config.DefaultForecastBand
	}
	return &ForecastService{
		band:       band,
		jitterSeed: conf.Forecast.JitterSeed,
		now:        time.Now,
	}
}

// Synthesize 基于基准价生成 0/10/20/30 分钟的预测曲线
func (s *ForecastService) Synthesize(basePrice float64) models.ForecastCurve {
	if basePrice <= 0 {
		basePrice = fallbackBasePrice
	}

	// 默认无扰动：趋势系数与随机项都为 0
	var rng *rand.Rand
	trend := 0.0
	if s.jitterSeed != 0 {
		rng = rand.New(rand.NewPCG(s.jitterSeed, math.Float64bits(basePrice)))
		trend = rng.Float64()*2 - 1
	}

	now := s.now()
	points := make([]models.ForecastPoint, 0, len(forecastOffsets))
	for _, offset := range forecastOffsets {
		noise := 0.0
		if rng != nil {
			noise = (rng.Float64() - 0.5) * basePrice * forecastVolatility * 2
		}
		trendChange := trend * basePrice * forecastVolatility * (float64(offset.minute) / 10) * 0.5
		points = append(points, models.ForecastPoint{
			Minute: offset.minute,
			Label:  offset.label,
			Price:  round2(basePrice + noise + trendChange),
			Time:   now.Add(time.Duration(offset.minute) * time.Minute).Format("15:04"),
		})
	}

	first := points[0].Price
	last := points[len(points)-1].Price
	change := last - first
	changePercent := round2(change / first * 100)

	minPrice, maxPrice := first, first
	for _, p := range points {
		minPrice = math.Min(minPrice, p.Price)
		maxPrice = math.Max(maxPrice, p.Price)
	}

	trendLabel := classifyTrend(change)
	return models.ForecastCurve{
		Trend:      trendLabel,
		Volatility: round2((maxPrice - minPrice) / basePrice * 100),
		KeyPoints: models.KeyPoints{
			Support:    round2(basePrice - s.band),
			Resistance: round2(basePrice + s.band),
		},
		DataPoints: points,
		Summary:    forecastNarrative(trendLabel, changePercent),
	}
}

func classifyTrend(change float64) string {
	switch {
	case math.Abs(change) < flatThreshold:
		return models.TrendFlat
	case change > 0:
		return models.TrendUp
	default:
		return models.TrendDown
	}
}

func forecastNarrative(trend string, changePercent float64) string {
	switch trend {
	case models.TrendUp:
		return fmt.Sprintf("预计未来30分钟金价将呈现温和上涨趋势，预计涨幅约%s%%，当前市场情绪偏多，建议关注上方阻力位。",
			formatPercent(changePercent))
	case models.TrendDown:
		return fmt.Sprintf("预计未来30分钟金价可能出现回调，预计跌幅约%s%%，短期可能测试下方支撑位，建议谨慎操作。",
			formatPercent(math.Abs(changePercent)))
	default:
		return fmt.Sprintf("预计未来30分钟金价将保持相对稳定，变动约%s%%，波动幅度较小，建议投资者耐心观望。",
			formatPercent(changePercent))
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func formatPercent(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
