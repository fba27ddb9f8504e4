package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dushixiang/aurum/pkg/nostd"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.tavily.com"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 512
)

// Searcher 全文搜索接口
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int, depth Depth) *SearchResult
}

// Options 客户端参数
type Options struct {
	APIKey   string
	BaseURL  string
	ProxyURL string // 代理地址，例如: http://127.0.0.1:7890
	Timeout  time.Duration
}

// Client Tavily 搜索 API 客户端
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Searcher = (*Client)(nil)

// NewClient 创建搜索客户端
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.ProxyURL != "" {
		u, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Search 执行一次搜索。
// 任何网络、超时、非 2xx 或解析错误都只记录日志并返回空结果，不会向上抛出。
func (c *Client) Search(ctx context.Context, query string, maxResults int, depth Depth) *SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return &SearchResult{}
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if depth == "" {
		depth = DepthBasic
	}

	start := time.Now()
	result, err := c.doSearch(ctx, query, maxResults, depth)
	if err != nil {
		c.logger.Warn("tavily search failed",
			zap.String("query", nostd.TruncateRunes(query, 64)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return &SearchResult{}
	}

	c.logger.Debug("tavily search done",
		zap.Int("results", len(result.Results)),
		zap.Bool("has_answer", result.Answer != ""),
		zap.Duration("elapsed", time.Since(start)))
	return result
}

func (c *Client) doSearch(ctx context.Context, query string, maxResults int, depth Depth) (*SearchResult, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   depth,
		MaxResults:    maxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("tavily status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("tavily decode: %w", err)
	}
	return &result, nil
}
