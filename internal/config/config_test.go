package config

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "env-key")
	t.Setenv("TAVILY_API_BASE", "")
	t.Setenv("PROMPTS_FILE", "")

	var c Config
	c.Normalize()

	assert.Equal(t, c.Search.APIKey, "env-key")
	assert.Equal(t, c.Search.TimeoutSeconds, DefaultSearchTimeout)
	assert.Equal(t, c.Search.PriceResults, DefaultPriceResults)
	assert.Equal(t, c.Search.NewsResults, DefaultNewsResults)
	assert.Equal(t, c.Refresh.Cron, DefaultRefreshCron)
	assert.Equal(t, *c.Refresh.RunOnStart, true)
	assert.Equal(t, c.Forecast.Band, float64(DefaultForecastBand))
	assert.Equal(t, c.Forecast.USDCNY, DefaultUSDCNY)
	assert.Equal(t, c.Prompts.File, DefaultPromptFileName)
}

func TestNormalizeKeepsConfigured(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "env-key")
	t.Setenv("PROMPTS_FILE", "/etc/aurum/prompts.md")

	runOnStart := false
	c := Config{
		Search:   SearchConf{APIKey: "file-key", TimeoutSeconds: 60},
		Refresh:  RefreshConf{Cron: "*/30 * * * *", RunOnStart: &runOnStart},
		Forecast: ForecastConf{Band: 15, JitterSeed: 42},
	}
	c.Normalize()

	assert.Equal(t, c.Search.APIKey, "file-key")
	assert.Equal(t, c.Search.TimeoutSeconds, 60)
	assert.Equal(t, c.Refresh.Cron, "*/30 * * * *")
	assert.Equal(t, *c.Refresh.RunOnStart, false)
	assert.Equal(t, c.Forecast.Band, 15.0)
	assert.Equal(t, c.Forecast.JitterSeed, uint64(42))
	assert.Equal(t, c.Prompts.File, "/etc/aurum/prompts.md")
}
