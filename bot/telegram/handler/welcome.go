package handler

import (
	"context"
	"fmt"

	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
	"github.com/akarpov91/SongLinkBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// WelcomeHandler handles /start and /help.
type WelcomeHandler struct {
	Registry    *registry.Registry
	RateLimiter *telegram.RateLimiter
	Logger      *logpkg.Logger
}

func (h *WelcomeHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.Message == nil {
		return
	}
	message := update.Message
	if h.Logger != nil {
		h.Logger.Debug("sending welcome message", "chat_id", message.Chat.ID)
	}
	params := &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: message.Chat.ID},
		Text:      fmt.Sprintf(welcomeText, platformNames(h.Registry)),
		ParseMode: telego.ModeHTML,
	}
	if h.RateLimiter != nil {
		_, _ = telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, params)
	} else {
		_, _ = b.SendMessage(ctx, params)
	}
}
