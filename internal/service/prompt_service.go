package service

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dushixiang/aurum/internal/models"
	"github.com/dushixiang/aurum/internal/repo"
	"github.com/go-orz/orz"
	"github.com/google/uuid"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultPromptHistoryLimit = 10
	MaxPromptHistoryLimit     = 50
)

var (
	//go:embed templates/price_query.txt
	defaultPriceQuery string
	//go:embed templates/news_query.txt
	defaultNewsQuery string
	//go:embed templates/forecast_query.txt
	defaultForecastQuery string
	//go:embed templates/prompts_markdown.md
	promptsMarkdownTemplate string
)

// 提示词文件中的章节标题，也可以直接使用类型名作为标题
var promptFileHeadings = map[string]string{
	"金价搜索提示词": models.PromptKeyPrice,
	"新闻搜索提示词": models.PromptKeyNews,
	"预测分析提示词": models.PromptKeyForecast,
}

func promptKeyOfHeading(heading string) string {
	heading = strings.TrimSpace(heading)
	if models.IsPromptKey(heading) {
		return heading
	}
	return promptFileHeadings[heading]
}

// PromptDefaults 内置的默认提示词，数据库中没有记录时使用
type PromptDefaults map[string]string

// DefaultPromptDefaults 编译时嵌入的默认提示词
func DefaultPromptDefaults() PromptDefaults {
	return PromptDefaults{
		models.PromptKeyPrice:    strings.TrimSpace(defaultPriceQuery),
		models.PromptKeyNews:     strings.TrimSpace(defaultNewsQuery),
		models.PromptKeyForecast: strings.TrimSpace(defaultForecastQuery),
	}
}

// PromptService 提示词配置及版本管理
type PromptService struct {
	logger *zap.Logger

	*orz.Service
	currentRepo *repo.CurrentPromptRepo
	historyRepo *repo.PromptHistoryRepo

	defaults PromptDefaults
}

func NewPromptService(db *gorm.DB, defaults PromptDefaults, logger *zap.Logger) *PromptService {
	return &PromptService{
		logger:      logger,
		Service:     orz.NewService(db),
		currentRepo: repo.NewCurrentPromptRepo(db),
		historyRepo: repo.NewPromptHistoryRepo(db),
		defaults:    defaults,
	}
}

// GetCurrent 获取当前提示词，三个类型总是存在，缺失的用默认值补齐
func (s *PromptService) GetCurrent(ctx context.Context) map[string]string {
	stored, err := s.currentRepo.FindAllAsMap(ctx)
	if err != nil {
		s.logger.Error("获取当前提示词失败，使用默认提示词", zap.Error(err))
		stored = nil
	}

	prompts := make(map[string]string, len(models.PromptKeys))
	for _, key := range models.PromptKeys {
		if content, ok := stored[key]; ok {
			prompts[key] = content
		} else {
			prompts[key] = s.defaults[key]
		}
	}
	return prompts
}

// Update 更新提示词。每个类型单独提交：覆盖当前值并追加一条新版本记录。
// 某个类型失败不影响其余类型，只有全部成功才返回 true。
func (s *PromptService) Update(ctx context.Context, prompts map[string]string) bool {
	ok := true
	for key, content := range prompts {
		if content == "" {
			continue
		}
		if !models.IsPromptKey(key) {
			s.logger.Warn("未知的提示词类型", zap.String("prompt_key", key))
			ok = false
		}
	}

	for _, key := range models.PromptKeys {
		content := prompts[key]
		if content == "" {
			continue
		}
		version, err := s.updateOne(ctx, key, content)
		if err != nil {
			s.logger.Error("更新提示词失败", zap.String("prompt_key", key), zap.Error(err))
			ok = false
			continue
		}
		s.logger.Info("提示词已更新", zap.String("prompt_key", key), zap.Int("version", version))
	}
	return ok
}

func (s *PromptService) updateOne(ctx context.Context, key, content string) (int, error) {
	var version int
	err := s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.currentRepo.Upsert(ctx, key, content); err != nil {
			return fmt.Errorf("save current prompt: %w", err)
		}

		maxVersion, err := s.historyRepo.GetMaxVersion(ctx, key)
		if err != nil {
			return fmt.Errorf("get max version: %w", err)
		}
		version = maxVersion + 1

		history := models.PromptHistory{
			ID:        uuid.NewString(),
			PromptKey: key,
			Version:   version,
			Content:   content,
			CreatedAt: time.Now(),
		}
		if err := s.historyRepo.Create(ctx, &history); err != nil {
			return fmt.Errorf("save prompt history: %w", err)
		}
		return nil
	})
	return version, err
}

// GetHistory 获取提示词历史，按时间倒序；key 为空时返回所有类型
func (s *PromptService) GetHistory(ctx context.Context, key string, limit int) ([]models.PromptHistory, error) {
	if key != "" && !models.IsPromptKey(key) {
		return []models.PromptHistory{}, nil
	}
	limit = clampLimit(limit, DefaultPromptHistoryLimit, MaxPromptHistoryLimit)
	return s.historyRepo.FindRecent(ctx, key, limit)
}

// RenderQuery 取当前提示词并替换 {{date}} 占位符，作为搜索请求
func (s *PromptService) RenderQuery(ctx context.Context, key string, now time.Time) string {
	content := strings.TrimSpace(s.GetCurrent(ctx)[key])
	tmpl, err := fasttemplate.NewTemplate(content, "{{", "}}")
	if err != nil {
		s.logger.Warn("提示词模板解析失败，按原文使用", zap.String("prompt_key", key), zap.Error(err))
		return content
	}
	return strings.TrimSpace(tmpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		switch strings.TrimSpace(tag) {
		case "date":
			return w.Write([]byte(now.Format("2006-01-02")))
		default:
			return w.Write([]byte("{{" + tag + "}}"))
		}
	}))
}

// Markdown 以 Markdown 文档形式展示当前提示词
func (s *PromptService) Markdown(ctx context.Context, now time.Time) string {
	prompts := s.GetCurrent(ctx)
	values := map[string]interface{}{
		"generated_at": now.Format("2006-01-02 15:04:05"),
	}
	for key, content := range prompts {
		values[key] = content
	}
	tmpl := fasttemplate.New(promptsMarkdownTemplate, "{{", "}}")
	return tmpl.ExecuteString(values)
}

// ImportFile 从提示词文件导入，内容与当前值相同的类型跳过，避免每次启动都产生新版本
func (s *PromptService) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("提示词文件不存在，使用数据库或默认提示词", zap.String("file", path))
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	parsed, err := parsePromptFile(f)
	if err != nil {
		return 0, fmt.Errorf("parse prompt file: %w", err)
	}

	current := s.GetCurrent(ctx)
	changed := make(map[string]string)
	for key, content := range parsed {
		if content != "" && content != current[key] {
			changed[key] = content
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}
	if !s.Update(ctx, changed) {
		return 0, fmt.Errorf("import prompts from %s failed", path)
	}
	s.logger.Info("提示词已从文件导入", zap.String("file", path), zap.Int("updated", len(changed)))
	return len(changed), nil
}

// parsePromptFile 解析 "## 标题" 分节的提示词文件，每节取标题后的第一段；
// 若该段是代码块则取代码块全部内容。
func parsePromptFile(r io.Reader) (map[string]string, error) {
	prompts := make(map[string]string)

	var (
		key      string
		lines    []string
		inFence  bool
		started  bool
		finished bool
	)
	flush := func() {
		if key != "" {
			prompts[key] = strings.TrimSpace(strings.Join(lines, "\n"))
		}
		key, lines, inFence, started, finished = "", nil, false, false, false
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if !inFence && strings.HasPrefix(trimmed, "## ") {
			flush()
			key = promptKeyOfHeading(strings.TrimPrefix(trimmed, "## "))
			continue
		}
		if key == "" || finished {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "```"):
			if inFence {
				finished = true
			} else if !started {
				inFence, started = true, true
			}
		case inFence:
			lines = append(lines, line)
		case trimmed == "":
			if started {
				finished = true
			}
		default:
			started = true
			lines = append(lines, line)
		}
	}
	flush()
	return prompts, scanner.Err()
}

func clampLimit(limit, def, max int) int {
	if limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
