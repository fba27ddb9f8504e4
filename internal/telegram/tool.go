package telegram

import (
	"fmt"
	"strings"

	"github.com/dushixiang/aurum/internal/models"
)

// MarkdownV2 中需要转义的字符，反斜杠必须最先处理
var markdownV2Escaper = strings.NewReplacer(
	"\\", "\\\\",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	".", "\\.",
	"!", "\\!",
)

// escapeMarkdownV2 用于转义 MarkdownV2 格式中的特殊字符
func escapeMarkdownV2(input string) string {
	return markdownV2Escaper.Replace(input)
}

var trendNames = map[string]string{
	models.TrendUp:   "上涨",
	models.TrendDown: "下跌",
	models.TrendFlat: "横盘",
}

// FormatQuote 金价推送内容
func FormatQuote(quote *models.GoldPrice) string {
	var sb strings.Builder
	sb.WriteString("*" + escapeMarkdownV2(fmt.Sprintf("金价更新 %s", quote.Date)) + "*\n")
	sb.WriteString(escapeMarkdownV2(fmt.Sprintf("国际金价: %.2f 美元/盎司", quote.PriceUSD)) + "\n")
	if quote.PriceCNY != nil {
		sb.WriteString(escapeMarkdownV2(fmt.Sprintf("人民币: %.2f 元/克", *quote.PriceCNY)) + "\n")
	}
	if quote.Change1D != nil {
		sb.WriteString(escapeMarkdownV2(fmt.Sprintf("日涨跌: %+.2f%%", *quote.Change1D)) + "\n")
	}

	curve := quote.ForecastData.Data()
	if name, ok := trendNames[curve.Trend]; ok {
		sb.WriteString(escapeMarkdownV2(fmt.Sprintf("30分钟趋势: %s (支撑 %.2f / 阻力 %.2f)",
			name, curve.KeyPoints.Support, curve.KeyPoints.Resistance)) + "\n")
	}
	if quote.Forecast != "" {
		sb.WriteString("_" + escapeMarkdownV2(quote.Forecast) + "_")
	}
	return strings.TrimRight(sb.String(), "\n")
}
