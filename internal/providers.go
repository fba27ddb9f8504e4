package internal

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dushixiang/aurum/internal/config"
	"github.com/dushixiang/aurum/internal/service"
	"github.com/dushixiang/aurum/internal/telegram"
	"github.com/dushixiang/aurum/pkg/tavily"
)

const telegramHTTPTimeout = 10 * time.Second

// provideSearchClient provides Tavily search client
func provideSearchClient(conf *config.Config, logger *zap.Logger) (tavily.Searcher, error) {
	client, err := tavily.NewClient(tavily.Options{
		APIKey:   conf.Search.APIKey,
		BaseURL:  conf.Search.BaseURL,
		ProxyURL: conf.Search.ProxyURL,
		Timeout:  time.Duration(conf.Search.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("search client initialized",
		zap.Bool("has_api_key", conf.Search.APIKey != ""),
		zap.Bool("proxy", conf.Search.ProxyURL != ""))
	return client, nil
}

// provideNotifier provides telegram notifier, nil when disabled
func provideNotifier(logger *zap.Logger, conf *config.Config) service.QuoteNotifier {
	if !conf.Telegram.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:  conf.Telegram.Token,
		ChatID: conf.Telegram.ChatID,
		Client: httpClient,
	})
	if err != nil {
		logger.Error("failed to init telegram", zap.Error(err))
		return nil
	}

	return tg
}
