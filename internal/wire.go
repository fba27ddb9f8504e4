//go:build wireinject
// +build wireinject

package internal

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dushixiang/aurum/internal/config"
	"github.com/dushixiang/aurum/internal/handler"
	"github.com/dushixiang/aurum/internal/metrics"
	"github.com/dushixiang/aurum/internal/service"
)

var (
	handlerSet = wire.NewSet(
		handler.NewMarketHandler,
		handler.NewPromptHandler,
		handler.NewSystemHandler,
	)

	refreshSet = wire.NewSet(
		provideSearchClient,
		provideNotifier,
		metrics.NewDefault,
		service.DefaultPromptDefaults,
		service.NewForecastService,
		service.NewNewsClassifier,
		service.NewPromptService,
		service.NewMarketService,
		service.NewRefreshLoop,
	)
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		refreshSet,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}
