package telegram

import (
	"context"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ukm-ponja/internal/auth"
	"ukm-ponja/internal/export"
	"ukm-ponja/internal/render"
	"ukm-ponja/internal/settings"
	"ukm-ponja/internal/storage"
)

// sender is the part of *tgbotapi.BotAPI the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Exporter is implemented by *export.Pipeline.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
}

type Deps struct {
	Auth      *auth.Service
	Settings  *settings.Service
	Exporter  Exporter
	Renderer  *render.Renderer
	Recorder  storage.Recorder
	AdminIDs  []int64
	ParseMode string
	// ExportTimeout bounds each /export run; zero means export.DefaultTimeout.
	ExportTimeout time.Duration
	Log           *zap.Logger
}

// Bot is the admin chat bot: chart preview, data updates and exports.
type Bot struct {
	api           *tgbotapi.BotAPI
	s             sender
	authSvc       *auth.Service
	settings      *settings.Service
	exporter      Exporter
	renderer      *render.Renderer
	recorder      storage.Recorder
	adminIDs      []int64
	parseMode     string
	log           *zap.Logger
	now           func() time.Time
	exportTimeout time.Duration
	spawn         func(func())
}

func New(botToken string, d Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(api, d)
	b.api = api
	return b, nil
}

func newBot(s sender, d Deps) *Bot {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Renderer == nil {
		d.Renderer = render.NewRenderer()
	}
	return &Bot{
		s:             s,
		authSvc:       d.Auth,
		settings:      d.Settings,
		exporter:      d.Exporter,
		renderer:      d.Renderer,
		recorder:      d.Recorder,
		adminIDs:      d.AdminIDs,
		parseMode:     d.ParseMode,
		log:           d.Log,
		now:           time.Now,
		exportTimeout: d.ExportTimeout,
		spawn:         func(f func()) { go f() },
	}
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.log.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return b.authSvc != nil && b.authSvc.IsAllowed(auth.TelegramID(userID))
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !b.isAdmin(msg.From.ID) {
		b.log.Warn("unauthorized telegram access", zap.Int64("user_id", msg.From.ID), zap.String("username", msg.From.UserName))
		b.sendMessage(msg.Chat.ID, "⛔ Akses ditolak. Minta admin menambahkan ID Anda: "+auth.TelegramID(msg.From.ID))
		return
	}
	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, helpText)
		return
	}
	b.handleCommand(ctx, msg)
}

// parseModeValue normalizes the configured parse mode; empty means plain text.
func (b *Bot) parseModeValue() string {
	switch strings.ToLower(b.parseMode) {
	case strings.ToLower(tgbotapi.ModeHTML):
		return tgbotapi.ModeHTML
	default:
		return ""
	}
}

func (b *Bot) escape(s string) string {
	if b.parseModeValue() == tgbotapi.ModeHTML {
		return html.EscapeString(s)
	}
	return s
}

func (b *Bot) bold(s string) string {
	if b.parseModeValue() == tgbotapi.ModeHTML {
		return "<b>" + html.EscapeString(s) + "</b>"
	}
	return s
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseModeValue()
	if _, err := b.s.Send(msg); err != nil {
		b.log.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// NotifyAdmins sends text to every configured admin chat.
func (b *Bot) NotifyAdmins(text string) {
	for _, id := range b.adminIDs {
		b.sendMessage(id, text)
	}
}
