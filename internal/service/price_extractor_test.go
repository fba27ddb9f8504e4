package service

import (
	"testing"

	"github.com/dushixiang/aurum/pkg/tavily"
	"github.com/go-playground/assert/v2"
)

func TestExtractPriceFromResults(t *testing.T) {
	results := []tavily.Result{
		{Content: "no price in here"},
		{Content: "2650.50 USD / oz market update"},
		{Content: "2700 USD/oz later result"},
	}
	price, ok := ExtractPrice(results, "Gold trades near 2651 today")
	assert.Equal(t, ok, true)
	assert.Equal(t, price, 2650.50)
}

func TestExtractPriceUnitVariants(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"现货黄金报2650美元/盎司", 2650},
		{"spot gold at 2649.8usd/OZ", 2649.8},
		{"Gold: 2655.25 $ / ounce", 2655.25},
		{"伦敦金 2651.3 美元 / 盎司，上涨", 2651.3},
	}
	for _, c := range cases {
		price, ok := ExtractPrice([]tavily.Result{{Content: c.text}}, "")
		assert.Equal(t, ok, true)
		assert.Equal(t, price, c.want)
	}
}

func TestExtractPriceFallsBackToAnswer(t *testing.T) {
	results := []tavily.Result{{Content: "markets were quiet"}}
	price, ok := ExtractPrice(results, "Gold trades near 2651 today")
	assert.Equal(t, ok, true)
	assert.Equal(t, price, 2651.0)
}

func TestExtractPriceRejectsImplausibleMagnitude(t *testing.T) {
	results := []tavily.Result{{Content: "index 265050 USD/oz typo"}, {Content: "only 12 USD/oz"}}
	_, ok := ExtractPrice(results, "volume was 1234567 units")
	assert.Equal(t, ok, false)
}

func TestExtractPriceNothingFound(t *testing.T) {
	_, ok := ExtractPrice(nil, "")
	assert.Equal(t, ok, false)

	_, ok = ExtractPrice([]tavily.Result{{Content: "no numbers"}}, "still none")
	assert.Equal(t, ok, false)
}

func TestExtractPriceThousandsSeparator(t *testing.T) {
	price, ok := ExtractPrice([]tavily.Result{{Content: "Spot gold 2,650.50 USD/oz"}}, "")
	assert.Equal(t, ok, true)
	assert.Equal(t, price, 2650.50)

	price, ok = ExtractPrice(nil, "Gold settled at 2,651, up 0.4%")
	assert.Equal(t, ok, true)
	assert.Equal(t, price, 2651.0)

	// 超出范围的分组数字不能被截断成尾部
	_, ok = ExtractPrice([]tavily.Result{{Content: "1,234,567 USD/oz"}}, "")
	assert.Equal(t, ok, false)
}

func TestExtractPriceSkipsDatesInAnswer(t *testing.T) {
	cases := []string{
		"As of 2026-10-18, spot gold trades near 2651 USD per ounce",
		"截至2026年10月18日，现货黄金报2651美元",
		"2026/10/18 gold 2651",
	}
	for _, answer := range cases {
		price, ok := ExtractPrice(nil, answer)
		assert.Equal(t, ok, true)
		assert.Equal(t, price, 2651.0)
	}
}
