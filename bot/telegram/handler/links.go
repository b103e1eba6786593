package handler

import (
	"context"
	"fmt"
	"html"
	"strings"

	botpkg "github.com/akarpov91/SongLinkBot-Go/bot"
	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform"
	"github.com/akarpov91/SongLinkBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// LinksHandler reacts to plain messages containing music links: it resolves
// every link and replies with the song's URLs on all supported platforms.
// In group chats the original message is quoted and, when the group allows
// it, deleted.
type LinksHandler struct {
	Extractor   *platform.Extractor
	Resolver    botpkg.Resolver
	Repo        botpkg.SettingsRepository
	RateLimiter *telegram.RateLimiter
	Logger      *logpkg.Logger
	SkipMark    string
}

func (h *LinksHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}
	if h.Extractor == nil || h.Resolver == nil {
		return
	}
	message := update.Message
	isGroup := message.Chat.Type != "private"

	if h.SkipMark != "" && strings.Contains(message.Text, h.SkipMark) {
		if h.Logger != nil {
			h.Logger.Debug("message skipped due to skip mark", "chat_id", message.Chat.ID)
		}
		return
	}

	var groupSettings *botpkg.GroupSettings
	if isGroup && h.Repo != nil {
		settings, err := h.Repo.GetGroupSettings(ctx, message.Chat.ID)
		if err != nil {
			if h.Logger != nil {
				h.Logger.Warn("cannot load group settings", "chat_id", message.Chat.ID, "error", err)
			}
		} else {
			groupSettings = settings
		}
		if groupSettings != nil && !groupSettings.LinkDetection {
			if h.Logger != nil {
				h.Logger.Debug("link detection disabled for chat", "chat_id", message.Chat.ID)
			}
			return
		}
	}

	links := h.Extractor.Extract(message.Text)
	if len(links) == 0 {
		if h.Logger != nil {
			h.Logger.Debug("no song links in message", "chat_id", message.Chat.ID)
		}
		return
	}

	_ = b.SendChatAction(ctx, &telego.SendChatActionParams{
		ChatID: telego.ChatID{ID: message.Chat.ID},
		Action: "typing",
	})

	results := resolveLinks(ctx, h.Resolver, links, h.Logger)
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
		}
	}
	if failed == len(results) {
		if h.Logger != nil {
			h.Logger.Error("resolution failed for all links", "chat_id", message.Chat.ID, "links", len(results))
		}
		return
	}

	entries := buildReplyEntries(results)
	params := &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: message.Chat.ID},
		Text:      composeReply(message, entries),
		ParseMode: telego.ModeHTML,
	}
	var sendErr error
	if h.RateLimiter != nil {
		_, sendErr = telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, params)
	} else {
		_, sendErr = b.SendMessage(ctx, params)
	}
	if sendErr != nil {
		if h.Logger != nil {
			h.Logger.Error("cannot send reply", "chat_id", message.Chat.ID, "error", sendErr)
		}
		return
	}

	if h.Repo != nil {
		if err := h.Repo.AddReplies(ctx, 1); err != nil && h.Logger != nil {
			h.Logger.Warn("cannot update reply counter", "error", err)
		}
	}

	if isGroup && (groupSettings == nil || groupSettings.AutoDelete) {
		h.deleteOriginal(ctx, b, message)
	}
}

func (h *LinksHandler) deleteOriginal(ctx context.Context, b *telego.Bot, message *telego.Message) {
	params := &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: message.Chat.ID},
		MessageID: message.MessageID,
	}
	var err error
	if h.RateLimiter != nil {
		err = telegram.DeleteMessageWithRetry(ctx, h.RateLimiter, b, params)
	} else {
		err = b.DeleteMessage(ctx, params)
	}
	if err != nil && h.Logger != nil {
		h.Logger.Warn("cannot delete message", "chat_id", message.Chat.ID, "message_id", message.MessageID, "error", err)
	}
}

// composeReply renders the numbered reply. In group chats the original
// message is quoted first, its URLs replaced with footnote markers.
func composeReply(message *telego.Message, entries []replyEntry) string {
	var lines []string
	if message.Chat.Type != "private" {
		quoted := replaceURLsWithFootnotes(message.Text, entries)
		lines = append(lines, fmt.Sprintf(groupReplyHeader,
			html.EscapeString(displayName(message.From)), html.EscapeString(quoted)))
	}
	for i, entry := range entries {
		if entry.info == nil {
			lines = append(lines, fmt.Sprintf(failedEntryLine, i+1, html.EscapeString(entry.sources[0])))
			continue
		}
		lines = append(lines, fmt.Sprintf(songEntryLine, i+1,
			html.EscapeString(entry.info.Artist), html.EscapeString(entry.info.Title)))
		lines = append(lines, platformLinksLine(entry.info.Links))
	}
	return strings.Join(lines, "\n")
}
