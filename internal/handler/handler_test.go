package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dushixiang/aurum/internal/config"
	"github.com/dushixiang/aurum/internal/metrics"
	"github.com/dushixiang/aurum/internal/models"
	"github.com/dushixiang/aurum/internal/repo"
	"github.com/dushixiang/aurum/internal/service"
	"github.com/dushixiang/aurum/internal/xe"
	"github.com/dushixiang/aurum/pkg/nostd"
	"github.com/dushixiang/aurum/pkg/tavily"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/assert/v2"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query string, maxResults int, depth tavily.Depth) *tavily.SearchResult {
	return &tavily.SearchResult{}
}

type testServer struct {
	e           *echo.Echo
	db          *gorm.DB
	refreshLoop *service.RefreshLoop
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(
		models.GoldPrice{}, models.NewsItem{}, models.CurrentPrompt{}, models.PromptHistory{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var conf config.Config
	conf.Normalize()
	log := zap.NewNop()
	m := metrics.New(nil)

	promptService := service.NewPromptService(db, service.DefaultPromptDefaults(), log)
	refreshLoop := service.NewRefreshLoop(&conf, stubSearcher{}, service.NewForecastService(&conf),
		service.NewNewsClassifier(log), promptService, db, nil, m, log)

	e := echo.New()
	cv := nostd.CustomValidator{Validator: validator.New()}
	if err := cv.TransInit(); err != nil {
		t.Fatalf("validator: %v", err)
	}
	e.Validator = &cv

	api := e.Group("/api")
	NewMarketHandler(service.NewMarketService(db, log), log).RegisterRoutes(api)
	NewPromptHandler(promptService, log).RegisterRoutes(api)
	NewSystemHandler(refreshLoop, m, db, log).RegisterRoutes(e, api)

	return &testServer{e: e, db: db, refreshLoop: refreshLoop}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestLatestGoldNotFound(t *testing.T) {
	s := newTestServer(t)

	c := s.e.NewContext(httptest.NewRequest(http.MethodGet, "/api/gold/latest", nil), httptest.NewRecorder())
	h := NewMarketHandler(service.NewMarketService(s.db, zap.NewNop()), zap.NewNop())
	err := h.GetLatestGold(c)
	assert.Equal(t, errors.Is(err, xe.ErrQuoteNotFound), true)
}

func TestGoldEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	prices := repo.NewGoldPriceRepo(s.db)
	for i, p := range []float64{2600, 2610, 2620} {
		assert.Equal(t, prices.Upsert(ctx, &models.GoldPrice{
			ID:       ulid.Make().String(),
			Date:     time.Date(2026, 10, 16+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			PriceUSD: p,
		}), nil)
	}

	rec := s.do(http.MethodGet, "/api/gold/latest", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	quote := decode[models.GoldPrice](t, rec)
	assert.Equal(t, quote.Date, "2026-10-18")
	assert.Equal(t, quote.PriceUSD, 2620.0)

	rec = s.do(http.MethodGet, "/api/gold/history?limit=2", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	points := decode[[]models.GoldPricePoint](t, rec)
	assert.Equal(t, len(points), 2)

	rec = s.do(http.MethodGet, "/api/gold/history?limit=abc", "")
	assert.Equal(t, len(decode[[]models.GoldPricePoint](t, rec)), 3)
}

func TestNewsEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	news := repo.NewNewsRepo(s.db)
	_, err := news.InsertIgnore(ctx, &models.NewsItem{
		ID: ulid.Make().String(), Title: "Gold hits record", URL: "https://example.com/g", CreatedAt: time.Now(),
	})
	assert.Equal(t, err, nil)

	rec := s.do(http.MethodGet, "/api/news/latest", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, len(decode[[]models.NewsItem](t, rec)), 1)

	rec = s.do(http.MethodGet, "/api/news/search?q=record", "")
	assert.Equal(t, len(decode[[]models.NewsItem](t, rec)), 1)

	rec = s.do(http.MethodGet, "/api/news/search?q=", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, strings.TrimSpace(rec.Body.String()), "[]")
}

func TestPromptEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/prompts", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	got := decode[struct {
		Markdown string            `json:"markdown"`
		Prompts  map[string]string `json:"prompts"`
		Storage  string            `json:"storage"`
	}](t, rec)
	assert.Equal(t, got.Storage, "database")
	assert.Equal(t, len(got.Prompts), 3)
	assert.Equal(t, strings.Contains(got.Markdown, got.Prompts[models.PromptKeyNews]), true)

	rec = s.do(http.MethodPost, "/api/prompts", `{"news_query":"今日黄金新闻"}`)
	assert.Equal(t, rec.Code, http.StatusOK)
	resp := decode[ApiResponse](t, rec)
	assert.Equal(t, resp.Success, true)

	rec = s.do(http.MethodGet, "/api/prompts/history?type=news_query", "")
	histories := decode[[]models.PromptHistory](t, rec)
	assert.Equal(t, len(histories), 1)
	assert.Equal(t, histories[0].Version, 1)
	assert.Equal(t, histories[0].Content, "今日黄金新闻")

	rec = s.do(http.MethodGet, "/api/prompts/history?type=unknown", "")
	assert.Equal(t, strings.TrimSpace(rec.Body.String()), "[]")

	rec = s.do(http.MethodPost, "/api/prompts", `{"news_query":"`+strings.Repeat("x", 4001)+`"}`)
	assert.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestSystemEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	health := decode[map[string]interface{}](t, rec)
	assert.Equal(t, health["status"], "healthy")
	assert.Equal(t, health["database"], "connected")

	rec = s.do(http.MethodGet, "/", "")
	assert.Equal(t, decode[map[string]interface{}](t, rec)["status"], "running")

	rec = s.do(http.MethodPost, "/api/update", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, decode[ApiResponse](t, rec).Message, "更新任务已启动")

	deadline := time.Now().Add(2 * time.Second)
	for s.refreshLoop.Status().Iteration == 0 || s.refreshLoop.Status().InCycle {
		if time.Now().After(deadline) {
			t.Fatal("triggered cycle did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = s.do(http.MethodGet, "/api/status", "")
	status := decode[service.RefreshStatus](t, rec)
	assert.Equal(t, status.Iteration, 1)
	assert.Equal(t, status.LastReport.PriceSaved, false)

	rec = s.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, strings.Contains(rec.Body.String(), "aurum_refresh_cycles_total 1"), true)
}
