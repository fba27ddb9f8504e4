package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dushixiang/aurum/internal/config"
	"github.com/dushixiang/aurum/internal/handler"
	"github.com/dushixiang/aurum/internal/models"
	"github.com/dushixiang/aurum/internal/service"
	"github.com/dushixiang/aurum/pkg/nostd"
	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewAurumApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewAurumApp() orz.Application {
	return &AurumApp{}
}

var _ orz.Application = (*AurumApp)(nil)

type AppComponents struct {
	MarketHandler *handler.MarketHandler
	PromptHandler *handler.PromptHandler
	SystemHandler *handler.SystemHandler

	RefreshLoop   *service.RefreshLoop
	PromptService *service.PromptService
}

type AurumApp struct {
	components *AppComponents
	conf       *config.Config
}

// GetComponents 获取应用组件
func (r *AurumApp) GetComponents() *AppComponents {
	return r.components
}

func (r *AurumApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}
	conf.Normalize()

	if err := db.AutoMigrate(
		models.GoldPrice{}, models.NewsItem{}, models.CurrentPrompt{}, models.PromptHistory{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	e.HidePort = true
	e.HideBanner = true

	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	api := e.Group("/api")
	{
		r.components.MarketHandler.RegisterRoutes(api)
		r.components.PromptHandler.RegisterRoutes(api)
		r.components.SystemHandler.RegisterRoutes(e, api)
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}
	return nil
}

func (r *AurumApp) Init(logger *zap.Logger) error {
	logger.Info("=================================================")
	logger.Info("Aurum Gold & News Service Starting...")
	logger.Info("=================================================")

	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	if r.conf.Search.APIKey == "" {
		logger.Warn("search api key not configured; refresh cycles will return empty results")
	}

	// 启动时把提示词文件同步到数据库，文件不存在时跳过
	imported, err := components.PromptService.ImportFile(context.Background(), r.conf.Prompts.File)
	if err != nil {
		logger.Warn("failed to import prompts file", zap.String("file", r.conf.Prompts.File), zap.Error(err))
	} else if imported > 0 {
		logger.Info("prompts imported from file", zap.String("file", r.conf.Prompts.File), zap.Int("count", imported))
	}

	logger.Info("Refresh loop initialized, starting...")

	go func() {
		if err := components.RefreshLoop.Start(context.Background()); err != nil {
			logger.Error("refresh loop error", zap.Error(err))
		}
	}()
	return nil
}
