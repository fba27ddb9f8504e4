package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dushixiang/aurum/internal/config"
	"github.com/dushixiang/aurum/internal/metrics"
	"github.com/dushixiang/aurum/internal/models"
	"github.com/dushixiang/aurum/internal/repo"
	"github.com/dushixiang/aurum/pkg/tavily"
	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	gramsPerOunce     = 31.1
	newsSummaryLength = 300
	dateLayout        = "2006-01-02"
)

var (
	errPriceNotFound   = errors.New("no price found in search results")
	errNoSearchResults = errors.New("search returned no results")
)

// QuoteNotifier 新金价写入后的推送
type QuoteNotifier interface {
	NotifyQuote(quote *models.GoldPrice) error
}

// CycleReport 一次刷新的结果
type CycleReport struct {
	Iteration      int       `json:"iteration"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	PriceSaved     bool      `json:"price_saved"`
	PriceUSD       float64   `json:"price_usd,omitempty"`
	NewsFetched    int       `json:"news_fetched"`
	NewsFiltered   int       `json:"news_filtered"`
	NewsSaved      int       `json:"news_saved"`
	NewsDuplicated int       `json:"news_duplicated"`
	NewsFailed     int       `json:"news_failed"`
	Errors         []string  `json:"errors,omitempty"`
}

// RefreshStatus 刷新循环状态
type RefreshStatus struct {
	IsRunning  bool         `json:"is_running"`
	InCycle    bool         `json:"in_cycle"`
	Iteration  int          `json:"iteration"`
	StartTime  time.Time    `json:"start_time"`
	Cron       string       `json:"cron"`
	Scheduled  bool         `json:"scheduled"`
	LastReport *CycleReport `json:"last_report,omitempty"`
}

// RefreshLoop 金价与新闻的刷新调度器
type RefreshLoop struct {
	config          config.Config
	searcher        tavily.Searcher
	forecastService *ForecastService
	classifier      *NewsClassifier
	promptService   *PromptService
	goldPriceRepo   *repo.GoldPriceRepo
	newsRepo        *repo.NewsRepo
	notifier        QuoteNotifier
	metrics         *metrics.Metrics
	logger          *zap.Logger
	now             func() time.Time

	// 同一时刻只允许一个周期在执行，手动触发会排队等待
	cycleMu sync.Mutex

	mu         sync.RWMutex
	startTime  time.Time
	iteration  int
	isRunning  bool
	inCycle    bool
	lastReport *CycleReport
	stopChan   chan struct{}
	cron       *cron.Cron
}

// NewRefreshLoop 创建刷新循环
func NewRefreshLoop(
	conf *config.Config,
	searcher tavily.Searcher,
	forecastService *ForecastService,
	classifier *NewsClassifier,
	promptService *PromptService,
	db *gorm.DB,
	notifier QuoteNotifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *RefreshLoop {
	return &RefreshLoop{
		config:          *conf,
		searcher:        searcher,
		forecastService: forecastService,
		classifier:      classifier,
		promptService:   promptService,
		goldPriceRepo:   repo.NewGoldPriceRepo(db),
		newsRepo:        repo.NewNewsRepo(db),
		notifier:        notifier,
		metrics:         m,
		logger:          logger,
		now:             time.Now,
		startTime:       time.Now(),
	}
}

// Start 启动刷新循环，阻塞直到 Stop 或 ctx 结束
func (t *RefreshLoop) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return fmt.Errorf("refresh loop is already running")
	}
	t.isRunning = true
	t.startTime = t.now()
	t.stopChan = make(chan struct{})
	stopChan := t.stopChan
	t.mu.Unlock()

	refresh := t.config.Refresh
	t.logger.Info("refresh loop started",
		zap.String("cron_expression", refresh.Cron),
		zap.Bool("schedule_disabled", refresh.DisableSchedule))

	if !refresh.DisableSchedule {
		c := cron.New()
		_, err := c.AddFunc(refresh.Cron, func() {
			t.ExecuteCycle(context.Background())
		})
		if err != nil {
			t.mu.Lock()
			t.isRunning = false
			t.mu.Unlock()
			return fmt.Errorf("failed to add cron job: %w", err)
		}
		c.Start()

		t.mu.Lock()
		t.cron = c
		t.mu.Unlock()
	}

	// 启动时立即执行一次
	if refresh.RunOnStart == nil || *refresh.RunOnStart {
		go t.ExecuteCycle(context.Background())
	}

	select {
	case <-stopChan:
		t.logger.Info("refresh loop stopped by user")
		return nil
	case <-ctx.Done():
		t.logger.Info("refresh loop stopped by context")
		t.Stop()
		return ctx.Err()
	}
}

// Stop 停止定时刷新，已在执行的周期会跑完
func (t *RefreshLoop) Stop() {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return
	}
	t.isRunning = false
	c := t.cron
	t.cron = nil
	close(t.stopChan)
	t.mu.Unlock()

	t.logger.Info("stopping refresh loop...")
	if c != nil {
		<-c.Stop().Done()
		t.logger.Info("cron scheduler stopped")
	}
	t.logger.Info("refresh loop stopped")
}

// Trigger 手动触发一次刷新，立即返回
func (t *RefreshLoop) Trigger() {
	go t.ExecuteCycle(context.Background())
}

// ExecuteCycle 执行一次完整刷新：先金价后新闻。
// 每个阶段的错误和 panic 都在阶段内消化，不会向调用方传播。
func (t *RefreshLoop) ExecuteCycle(ctx context.Context) *CycleReport {
	t.cycleMu.Lock()
	defer t.cycleMu.Unlock()

	t.mu.Lock()
	t.iteration++
	t.inCycle = true
	report := &CycleReport{Iteration: t.iteration, StartedAt: t.now()}
	t.mu.Unlock()

	t.logger.Info("========== REFRESH CYCLE START ==========",
		zap.Int("iteration", report.Iteration),
		zap.Time("start_time", report.StartedAt))

	t.logger.Info("[STEP 1/2] Refreshing gold price...")
	t.runPhase(metrics.PhasePrice, report, func() error {
		return t.refreshPrice(ctx, report)
	})

	t.logger.Info("[STEP 2/2] Refreshing news...")
	t.runPhase(metrics.PhaseNews, report, func() error {
		return t.refreshNews(ctx, report)
	})

	report.FinishedAt = t.now()
	duration := report.FinishedAt.Sub(report.StartedAt)
	if t.metrics != nil {
		t.metrics.CyclesTotal.Inc()
		t.metrics.CycleSeconds.Observe(duration.Seconds())
	}

	t.mu.Lock()
	t.inCycle = false
	t.lastReport = report
	t.mu.Unlock()

	t.logger.Info("========== REFRESH CYCLE END ==========",
		zap.Int("iteration", report.Iteration),
		zap.Duration("duration", duration),
		zap.Bool("price_saved", report.PriceSaved),
		zap.Int("news_saved", report.NewsSaved),
		zap.Int("news_duplicated", report.NewsDuplicated),
		zap.Int("errors", len(report.Errors)))
	return report
}

func (t *RefreshLoop) runPhase(phase string, report *CycleReport, fn func() error) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()

	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, errPriceNotFound), errors.Is(err, errNoSearchResults):
		result = metrics.ResultSkip
		t.logger.Info("phase skipped", zap.String("phase", phase), zap.String("reason", err.Error()))
	default:
		result = metrics.ResultFailed
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", phase, err))
		t.logger.Error("phase failed", zap.String("phase", phase), zap.Error(err))
	}

	if t.metrics != nil {
		t.metrics.PhaseTotal.WithLabelValues(phase, result).Inc()
		if result == metrics.ResultOK {
			t.metrics.LastSuccess.WithLabelValues(phase).SetToCurrentTime()
		}
	}
}

func (t *RefreshLoop) refreshPrice(ctx context.Context, report *CycleReport) error {
	now := t.now()
	query := t.promptService.RenderQuery(ctx, models.PromptKeyPrice, now)
	result := t.searcher.Search(ctx, query, t.config.Search.PriceResults, tavily.DepthBasic)
	if result.Empty() {
		return errNoSearchResults
	}

	price, ok := ExtractPrice(result.Results, result.Answer)
	if !ok {
		return errPriceNotFound
	}

	today := now.Format(dateLayout)
	previous, err := t.goldPriceRepo.FindLatestBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("find previous quote: %w", err)
	}
	var change *float64
	if previous != nil && previous.PriceUSD > 0 {
		c := round2((price - previous.PriceUSD) / previous.PriceUSD * 100)
		change = &c
	}

	curve := t.forecastService.Synthesize(price)
	cny := round2(price * t.config.Forecast.USDCNY / gramsPerOunce)
	quote := &models.GoldPrice{
		ID:           ulid.Make().String(),
		Date:         today,
		PriceUSD:     price,
		PriceCNY:     &cny,
		Change1D:     change,
		Forecast:     curve.Summary,
		ForecastData: datatypes.NewJSONType(curve),
	}
	if err := t.goldPriceRepo.Upsert(ctx, quote); err != nil {
		return fmt.Errorf("save quote: %w", err)
	}

	report.PriceSaved = true
	report.PriceUSD = price
	if t.metrics != nil {
		t.metrics.LatestPrice.Set(price)
	}

	fields := []zap.Field{
		zap.String("date", today),
		zap.Float64("price_usd", price),
		zap.Float64("price_cny", cny),
		zap.String("trend", curve.Trend),
	}
	if change != nil {
		fields = append(fields, zap.Float64("change_1d", *change))
	}
	t.logger.Info("[STEP 1/2] Gold price saved", fields...)

	if t.notifier != nil {
		if err := t.notifier.NotifyQuote(quote); err != nil {
			t.logger.Warn("quote notification failed", zap.Error(err))
		}
	}
	return nil
}

func (t *RefreshLoop) refreshNews(ctx context.Context, report *CycleReport) error {
	now := t.now()
	query := t.promptService.RenderQuery(ctx, models.PromptKeyNews, now)
	result := t.searcher.Search(ctx, query, t.config.Search.NewsResults, tavily.DepthBasic)
	if len(result.Results) == 0 {
		return errNoSearchResults
	}

	items := make([]models.NewsItem, 0, len(result.Results))
	for _, r := range result.Results {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			t.logger.Debug("skip news without url", zap.String("title", r.Title))
			continue
		}
		items = append(items, models.NewsItem{
			ID:            ulid.Make().String(),
			Title:         strings.TrimSpace(r.Title),
			URL:           url,
			Summary:       newsSummary(r.Content),
			AISummary:     t.classifier.Annotate(r.Title, now),
			Category:      models.DefaultNewsCategory,
			Sentiment:     models.DefaultNewsSentiment,
			Source:        models.DefaultNewsSource,
			PublishedDate: now.Format(dateLayout),
			CreatedAt:     now,
		})
	}
	report.NewsFetched = len(items)

	filtered := t.classifier.Filter(items)
	report.NewsFiltered = len(items) - len(filtered)

	for i := range filtered {
		item := filtered[i]
		inserted, err := t.newsRepo.InsertIgnore(ctx, &item)
		switch {
		case err != nil:
			report.NewsFailed++
			t.logger.Warn("failed to save news", zap.String("url", item.URL), zap.Error(err))
		case inserted:
			report.NewsSaved++
		default:
			report.NewsDuplicated++
		}
	}

	if t.metrics != nil {
		t.metrics.NewsItems.WithLabelValues("saved").Add(float64(report.NewsSaved))
		t.metrics.NewsItems.WithLabelValues("duplicated").Add(float64(report.NewsDuplicated))
		t.metrics.NewsItems.WithLabelValues("filtered").Add(float64(report.NewsFiltered))
		t.metrics.NewsItems.WithLabelValues("failed").Add(float64(report.NewsFailed))
	}

	t.logger.Info("[STEP 2/2] News saved",
		zap.Int("fetched", report.NewsFetched),
		zap.Int("filtered", report.NewsFiltered),
		zap.Int("saved", report.NewsSaved),
		zap.Int("duplicated", report.NewsDuplicated),
		zap.Int("failed", report.NewsFailed))

	if report.NewsFailed > 0 && report.NewsFailed == len(filtered) {
		return fmt.Errorf("all %d news items failed to save", report.NewsFailed)
	}
	return nil
}

// newsSummary 取正文前300个字符
func newsSummary(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	r := []rune(content)
	if len(r) > newsSummaryLength {
		r = r[:newsSummaryLength]
	}
	return string(r) + "..."
}

// IsRunning 检查定时刷新是否在运行
func (t *RefreshLoop) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isRunning
}

// Status 获取状态信息
func (t *RefreshLoop) Status() RefreshStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return RefreshStatus{
		IsRunning:  t.isRunning,
		InCycle:    t.inCycle,
		Iteration:  t.iteration,
		StartTime:  t.startTime,
		Cron:       t.config.Refresh.Cron,
		Scheduled:  t.cron != nil,
		LastReport: t.lastReport,
	}
}
