package handler

import (
	"context"

	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	"github.com/akarpov91/SongLinkBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// ReloadHandler handles /reload for script platforms. Only bot admins may
// trigger it; everyone else is silently ignored.
type ReloadHandler struct {
	Reload      func(ctx context.Context) error
	RateLimiter *telegram.RateLimiter
	Logger      *logpkg.Logger
	AdminIDs    map[int64]struct{}
}

func (h *ReloadHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}
	message := update.Message

	if !isBotAdmin(h.AdminIDs, message.From.ID) {
		return
	}

	if h.Reload == nil {
		h.send(ctx, b, message.Chat.ID, reloadDisabled)
		return
	}

	if err := h.Reload(ctx); err != nil {
		if h.Logger != nil {
			h.Logger.Error("reload failed", "error", err)
		}
		h.send(ctx, b, message.Chat.ID, reloadFailed+err.Error())
		return
	}

	h.send(ctx, b, message.Chat.ID, reloadDone)
}

func (h *ReloadHandler) send(ctx context.Context, b *telego.Bot, chatID int64, text string) {
	params := &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	}
	if h.RateLimiter != nil {
		_, _ = telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, params)
	} else {
		_, _ = b.SendMessage(ctx, params)
	}
}
