package service

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dushixiang/aurum/internal/config"
	"github.com/dushixiang/aurum/internal/models"
	"github.com/go-playground/assert/v2"
)

func newTestForecastService(seed uint64) *ForecastService {
	conf := &config.Config{Forecast: config.ForecastConf{Band: 20, JitterSeed: seed}}
	s := NewForecastService(conf)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 9, 5, 0, 0, time.Local) }
	return s
}

func TestSynthesizeWithoutJitter(t *testing.T) {
	curve := newTestForecastService(0).Synthesize(2650.00)

	assert.Equal(t, len(curve.DataPoints), 4)
	minutes := []int{0, 10, 20, 30}
	times := []string{"09:05", "09:15", "09:25", "09:35"}
	for i, p := range curve.DataPoints {
		assert.Equal(t, p.Minute, minutes[i])
		assert.Equal(t, p.Time, times[i])
		assert.Equal(t, p.Price, 2650.0)
	}
	assert.Equal(t, curve.DataPoints[0].Label, "现在")
	assert.Equal(t, curve.DataPoints[3].Label, "30分钟后")

	assert.Equal(t, curve.Volatility, 0.0)
	assert.Equal(t, curve.KeyPoints.Support, 2630.0)
	assert.Equal(t, curve.KeyPoints.Resistance, 2670.0)
	assert.Equal(t, curve.Trend, models.TrendFlat)
	assert.Equal(t, strings.Contains(curve.Summary, "相对稳定"), true)
}

func TestSynthesizeDeterministicWithSeed(t *testing.T) {
	s := newTestForecastService(42)
	a := s.Synthesize(2650.00)
	b := s.Synthesize(2650.00)
	assert.Equal(t, a, b)

	other := newTestForecastService(42).Synthesize(2650.00)
	assert.Equal(t, a, other)
}

func TestSynthesizeJitterIsBounded(t *testing.T) {
	base := 2650.00
	// 随机项 ±0.2%，趋势项最多 0.3%
	limit := base*(forecastVolatility+forecastVolatility*1.5) + 0.01

	for seed := uint64(1); seed <= 50; seed++ {
		curve := newTestForecastService(seed).Synthesize(base)
		assert.Equal(t, len(curve.DataPoints), 4)
		assert.Equal(t, curve.Volatility >= 0, true)
		assert.Equal(t, curve.KeyPoints.Support, 2630.0)
		assert.Equal(t, curve.KeyPoints.Resistance, 2670.0)
		for _, p := range curve.DataPoints {
			assert.Equal(t, math.Abs(p.Price-base) <= limit, true)
		}
		change := curve.DataPoints[3].Price - curve.DataPoints[0].Price
		assert.Equal(t, curve.Trend, classifyTrend(change))
	}
}

func TestSynthesizeFallbackBase(t *testing.T) {
	curve := newTestForecastService(0).Synthesize(0)
	assert.Equal(t, curve.DataPoints[0].Price, float64(fallbackBasePrice))
	assert.Equal(t, curve.KeyPoints.Support, float64(fallbackBasePrice-20))
}

func TestClassifyTrend(t *testing.T) {
	assert.Equal(t, classifyTrend(0), models.TrendFlat)
	assert.Equal(t, classifyTrend(9.99), models.TrendFlat)
	assert.Equal(t, classifyTrend(-9.99), models.TrendFlat)
	assert.Equal(t, classifyTrend(10), models.TrendUp)
	assert.Equal(t, classifyTrend(-12.5), models.TrendDown)
}

func TestForecastNarrative(t *testing.T) {
	up := forecastNarrative(models.TrendUp, 0.45)
	assert.Equal(t, strings.Contains(up, "上涨"), true)
	assert.Equal(t, strings.Contains(up, "0.45%"), true)

	down := forecastNarrative(models.TrendDown, -0.38)
	assert.Equal(t, strings.Contains(down, "回调"), true)
	assert.Equal(t, strings.Contains(down, "0.38%"), true)

	flat := forecastNarrative(models.TrendFlat, 0)
	assert.Equal(t, strings.Contains(flat, "0%"), true)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, round2(2650.005), 2650.01)
	assert.Equal(t, round2(1.234), 1.23)
	assert.Equal(t, round2(-0.456), -0.46)
}
