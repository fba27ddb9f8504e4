package service

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dushixiang/aurum/internal/models"
	"go.uber.org/zap"
)

type annotationRule struct {
	keywords *keywordSet
	note     string
}

// 按顺序匹配，命中第一条即停止
var annotationRules = []annotationRule{
	{
		keywords: newKeywordSet("黄金", "金价", "gold", "bullion"),
		note:     "此新闻涉及黄金市场动态，可能对短期金价走势产生影响。",
	},
	{
		keywords: newKeywordSet("科技", "ai", "新能源", "technology", "chip"),
		note:     "属于科技创新类新闻，反映相关产业的发展趋势。",
	},
	{
		keywords: newKeywordSet("央行", "加息", "降息", "通胀", "central bank", "rate hike", "inflation", "fed"),
		note:     "宏观经济政策类新闻，可能影响金融市场情绪。",
	},
}

const (
	defaultAnnotation  = "该新闻为当前热点，建议关注相关市场动态。"
	tradingHoursRemark = "发布于交易时段，市场关注度较高。"
	tradingHourStart   = 9
	tradingHourEnd     = 15
)

// 标题或摘要包含以下任一词的新闻会被过滤
var excludedKeywords = newKeywordSet(
	"负面", "批评", "指责", "谴责", "丑闻", "腐败",
	"冲突", "对抗", "抵制", "封锁", "制裁",
	"虚假", "造假", "欺骗", "误导", "抹黑",
	"negative", "criticism", "criticize", "accuse", "condemn", "scandal", "corruption",
	"conflict", "confrontation", "boycott", "blockade", "sanction",
	"fake", "fraud", "deceive", "mislead", "smear",
)

// NewsClassifier 新闻规则分类与过滤
type NewsClassifier struct {
	logger *zap.Logger
}

func NewNewsClassifier(logger *zap.Logger) *NewsClassifier {
	return &NewsClassifier{logger: logger}
}

// Annotate 根据标题生成一句分析说明，交易时段内追加时段提示
func (c *NewsClassifier) Annotate(title string, now time.Time) string {
	note := defaultAnnotation
	for _, rule := range annotationRules {
		if rule.keywords.match(title) {
			note = rule.note
			break
		}
	}

	if hour := now.Hour(); hour >= tradingHourStart && hour <= tradingHourEnd {
		note += " " + tradingHoursRemark
	}
	return note
}

// Filter 去掉命中排除词的新闻，保持原有顺序
func (c *NewsClassifier) Filter(items []models.NewsItem) []models.NewsItem {
	filtered := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		if excludedKeywords.match(item.Title) || excludedKeywords.match(item.Summary) {
			continue
		}
		filtered = append(filtered, item)
	}

	c.logger.Info("news filtered",
		zap.Int("before", len(items)),
		zap.Int("after", len(filtered)))
	return filtered
}

// keywordSet 中文词按子串匹配；英文词必须从单词开头匹配，
// 不超过 3 个字母的短词（ai、fed）还要求在单词结尾处结束
type keywordSet struct {
	cjk   []string
	latin *regexp.Regexp
}

const shortKeywordLen = 3

func newKeywordSet(keywords ...string) *keywordSet {
	set := &keywordSet{}
	var alternatives []string
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if !isASCII(kw) {
			set.cjk = append(set.cjk, kw)
			continue
		}
		alt := regexp.QuoteMeta(kw)
		if len(kw) <= shortKeywordLen {
			alt += `\b`
		}
		alternatives = append(alternatives, alt)
	}
	if len(alternatives) > 0 {
		set.latin = regexp.MustCompile(`(?i)\b(?:` + strings.Join(alternatives, "|") + `)`)
	}
	return set
}

func (k *keywordSet) match(text string) bool {
	if text == "" {
		return false
	}
	for _, kw := range k.cjk {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return k.latin != nil && k.latin.MatchString(text)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
