package config

import "os"

type Config struct {
	Search   SearchConf   `json:"search"`
	Refresh  RefreshConf  `json:"refresh"`
	Forecast ForecastConf `json:"forecast"`
	Prompts  PromptsConf  `json:"prompts"`
	Telegram TelegramConf `json:"telegram"`
}

type SearchConf struct {
	APIKey         string `json:"api_key"`         // Tavily API密钥，为空时读取 TAVILY_API_KEY
	BaseURL        string `json:"base_url"`        // 为空时读取 TAVILY_API_BASE，默认 https://api.tavily.com
	ProxyURL       string `json:"proxy_url"`       // 代理地址，例如: http://127.0.0.1:7890
	TimeoutSeconds int    `json:"timeout_seconds"` // 单次请求超时，默认30
	PriceResults   int    `json:"price_results"`   // 金价搜索结果数，默认5
	NewsResults    int    `json:"news_results"`    // 新闻搜索结果数，默认10
}

type RefreshConf struct {
	Cron            string `json:"cron"`             // 定时刷新表达式，默认每小时整点 "0 * * * *"
	RunOnStart      *bool  `json:"run_on_start"`     // 启动时是否立即刷新，默认true
	DisableSchedule bool   `json:"disable_schedule"` // 关闭定时刷新，仅保留手动触发
}

type ForecastConf struct {
	Band       float64 `json:"band"`        // 支撑/阻力距离基准价的固定幅度，默认20
	JitterSeed uint64  `json:"jitter_seed"` // 非0时启用固定种子的随机扰动
	USDCNY     float64 `json:"usd_cny"`     // 美元兑人民币汇率，默认7.2
}

type PromptsConf struct {
	File string `json:"file"` // 启动时导入的提示词文件，为空时读取 PROMPTS_FILE
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}

const (
	DefaultRefreshCron    = "0 * * * *"
	DefaultSearchTimeout  = 30
	DefaultPriceResults   = 5
	DefaultNewsResults    = 10
	DefaultForecastBand   = 20
	DefaultUSDCNY         = 7.2
	DefaultPromptFileName = "prompts.txt"
)

// Normalize 填充默认值，并用环境变量补全未配置的项
func (c *Config) Normalize() {
	if c.Search.APIKey == "" {
		c.Search.APIKey = os.Getenv("TAVILY_API_KEY")
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = os.Getenv("TAVILY_API_BASE")
	}
	if c.Search.TimeoutSeconds <= 0 {
		c.Search.TimeoutSeconds = DefaultSearchTimeout
	}
	if c.Search.PriceResults <= 0 {
		c.Search.PriceResults = DefaultPriceResults
	}
	if c.Search.NewsResults <= 0 {
		c.Search.NewsResults = DefaultNewsResults
	}

	if c.Refresh.Cron == "" {
		c.Refresh.Cron = DefaultRefreshCron
	}
	if c.Refresh.RunOnStart == nil {
		runOnStart := true
		c.Refresh.RunOnStart = &runOnStart
	}

	if c.Forecast.Band <= 0 {
		c.Forecast.Band = DefaultForecastBand
	}
	if c.Forecast.USDCNY <= 0 {
		c.Forecast.USDCNY = DefaultUSDCNY
	}

	if c.Prompts.File == "" {
		c.Prompts.File = os.Getenv("PROMPTS_FILE")
	}
	if c.Prompts.File == "" {
		c.Prompts.File = DefaultPromptFileName
	}
}
