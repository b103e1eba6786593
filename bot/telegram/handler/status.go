package handler

import (
	"context"
	"fmt"

	botpkg "github.com/akarpov91/SongLinkBot-Go/bot"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
	"github.com/akarpov91/SongLinkBot-Go/bot/resolve"
	"github.com/akarpov91/SongLinkBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// StatsSource exposes resolution cache counters.
type StatsSource interface {
	Stats() resolve.Stats
}

// StatusHandler handles /status.
type StatusHandler struct {
	Cache       StatsSource
	Repo        botpkg.SettingsRepository
	Registry    *registry.Registry
	RateLimiter *telegram.RateLimiter
}

func (h *StatusHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.Message == nil {
		return
	}
	message := update.Message

	var stats resolve.Stats
	if h.Cache != nil {
		stats = h.Cache.Stats()
	}
	replies := int64(0)
	if h.Repo != nil {
		replies, _ = h.Repo.ReplyCount(ctx)
	}

	params := &telego.SendMessageParams{
		ChatID:          telego.ChatID{ID: message.Chat.ID},
		Text:            fmt.Sprintf(statusText, stats.Entries, stats.Hits, stats.Misses, replies, platformNames(h.Registry)),
		ParseMode:       telego.ModeHTML,
		ReplyParameters: &telego.ReplyParameters{MessageID: message.MessageID},
	}
	if h.RateLimiter != nil {
		_, _ = telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, params)
	} else {
		_, _ = b.SendMessage(ctx, params)
	}
}
