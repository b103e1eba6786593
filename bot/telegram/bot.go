package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mymmrac/telego"

	"github.com/akarpov91/SongLinkBot-Go/bot/config"
)

// UpdateHandler consumes one incoming update.
type UpdateHandler interface {
	Handle(ctx context.Context, b *telego.Bot, update telego.Update)
}

// Bot wraps telego with application configuration.
type Bot struct {
	client *telego.Bot
	config *config.Config
	logger Logger
}

// New creates a new Telegram bot client.
func New(cfg *config.Config, logger Logger) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	pollClient := &http.Client{
		Timeout:   2 * time.Minute,
		Transport: transport,
	}

	options := []telego.BotOption{
		telego.WithHTTPClient(pollClient),
		telego.WithLogger(telegoLogger{logger: logger}),
	}

	if cfg.GetString("BotAPI") != "" {
		options = append(options, telego.WithAPIServer(cfg.GetString("BotAPI")))
	}
	if cfg.GetBool("BotDebug") {
		options = append(options, telego.WithDebugMode())
	}

	client, err := telego.NewBot(cfg.GetString("BOT_TOKEN"), options...)
	if err != nil {
		return nil, err
	}

	return &Bot{client: client, config: cfg, logger: logger}, nil
}

// Start begins long polling and feeds updates to handler until the context
// ends. It blocks; the updates channel closes once polling stops.
func (b *Bot) Start(ctx context.Context, handler UpdateHandler) error {
	updates, err := b.client.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message", "callback_query", "inline_query"},
	})
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	b.logger.Info("polling updates")
	for update := range updates {
		handler.Handle(ctx, b.client, update)
	}
	return nil
}

// Client exposes the underlying bot client.
func (b *Bot) Client() *telego.Bot {
	return b.client
}

// GetMe retrieves bot info.
func (b *Bot) GetMe(ctx context.Context) (*telego.User, error) {
	return b.client.GetMe(ctx)
}

// SetCommands publishes the bot's command list.
func (b *Bot) SetCommands(ctx context.Context, commands []telego.BotCommand) error {
	return b.client.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands})
}

// SendChatAction sends a chat action.
func (b *Bot) SendChatAction(ctx context.Context, chatID int64, action string) error {
	return b.client.SendChatAction(ctx, &telego.SendChatActionParams{ChatID: telego.ChatID{ID: chatID}, Action: action})
}

type telegoLogger struct {
	logger Logger
}

func (l telegoLogger) Debugf(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l telegoLogger) Errorf(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Error(fmt.Sprintf(format, args...))
}

// WithTimeout returns a context with timeout for Telegram requests.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
