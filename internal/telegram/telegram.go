package telegram

import (
	"net/http"

	"github.com/dushixiang/aurum/internal/models"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type Settings struct {
	Token  string
	ChatID string
	Client *http.Client
}

// Telegram 金价推送，只发送消息不处理命令
type Telegram struct {
	logger   *zap.Logger
	settings Settings
	client   *tele.Bot
}

func NewTelegram(logger *zap.Logger, settings Settings) (*Telegram, error) {
	client, err := tele.NewBot(tele.Settings{
		ParseMode: tele.ModeMarkdownV2,
		Token:     settings.Token,
		Client:    settings.Client,
	})
	if err != nil {
		return nil, err
	}

	return &Telegram{
		logger:   logger,
		settings: settings,
		client:   client,
	}, nil
}

func (r *Telegram) Notify(chatId, msg string) error {
	_chatId := cast.ToInt64(chatId)
	_, err := r.client.Send(tele.ChatID(_chatId), msg, &tele.SendOptions{ParseMode: tele.ModeMarkdownV2})
	return err
}

// NotifyQuote 推送最新金价到配置的会话
func (r *Telegram) NotifyQuote(quote *models.GoldPrice) error {
	if quote == nil {
		return nil
	}
	err := r.Notify(r.settings.ChatID, FormatQuote(quote))
	if err != nil {
		r.logger.Warn("telegram notify failed", zap.String("date", quote.Date), zap.Error(err))
	}
	return err
}
