package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dushixiang/aurum/pkg/tavily"
)

var (
	// 形如 "2650.50 USD / oz"、"2,650美元/盎司"，整数部分 3-5 位，允许千位分隔符
	unitPricePattern = regexp.MustCompile(`(?i)(?:^|[^\d.,])((?:\d{1,2},\d{3}|\d{3,5})(?:\.\d+)?)\s*(?:美元|usd|\$)\s*/\s*(?:盎司|oz|ounce)`)
	// answer 中的第一个数字，两侧不能紧贴其他数字或千位分隔符
	bareNumberPattern = regexp.MustCompile(`(?:^|[^\d.,])((?:\d{1,2},\d{3}|\d{3,5})(?:\.\d+)?)(?:$|[^\d,]|,\D|,$)`)
	// 日期不参与数字匹配，例如 2026-10-18、2026/10/18、2026年10月18日
	datePattern = regexp.MustCompile(`\d{4}\s*[-/年]\s*\d{1,2}\s*[-/月]\s*\d{1,2}日?`)
)

// ExtractPrice 从搜索结果中提取金价（美元/盎司）。
// 优先按顺序匹配结果正文中的 "数字+货币/重量单位"，都没有时取 answer 中日期以外的第一个数字。
func ExtractPrice(results []tavily.Result, answer string) (float64, bool) {
	for _, item := range results {
		if price, ok := firstMatch(unitPricePattern, item.Content); ok {
			return price, true
		}
	}
	return firstMatch(bareNumberPattern, datePattern.ReplaceAllString(answer, " "))
}

func firstMatch(pattern *regexp.Regexp, text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0, false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
