package handler

import (
	"context"
	"fmt"
	"strings"

	botpkg "github.com/akarpov91/SongLinkBot-Go/bot"
	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	"github.com/akarpov91/SongLinkBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
)

// SettingsHandler handles /settings. The settings panel only exists for
// group chats; private chats get a short notice instead.
type SettingsHandler struct {
	Repo        botpkg.SettingsRepository
	RateLimiter *telegram.RateLimiter
	Logger      *logpkg.Logger
}

func (h *SettingsHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}
	message := update.Message

	if message.Chat.Type == "private" {
		h.send(ctx, b, &telego.SendMessageParams{
			ChatID: telego.ChatID{ID: message.Chat.ID},
			Text:   settingsPrivateText,
		})
		return
	}

	if !isRequesterOrAdmin(ctx, b, message.Chat.ID, message.From.ID, 0) {
		h.send(ctx, b, &telego.SendMessageParams{
			ChatID: telego.ChatID{ID: message.Chat.ID},
			Text:   settingsAdminOnly,
		})
		return
	}

	settings, err := h.Repo.GetGroupSettings(ctx, message.Chat.ID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("cannot load group settings", "chat_id", message.Chat.ID, "error", err)
		}
		h.send(ctx, b, &telego.SendMessageParams{
			ChatID: telego.ChatID{ID: message.Chat.ID},
			Text:   settingsLoadFailed,
		})
		return
	}

	h.send(ctx, b, &telego.SendMessageParams{
		ChatID:      telego.ChatID{ID: message.Chat.ID},
		Text:        h.buildSettingsText(settings),
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: h.buildSettingsKeyboard(settings),
	})
}

func (h *SettingsHandler) send(ctx context.Context, b *telego.Bot, params *telego.SendMessageParams) {
	if h.RateLimiter != nil {
		_, _ = telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, params)
	} else {
		_, _ = b.SendMessage(ctx, params)
	}
}

func (h *SettingsHandler) buildSettingsText(settings *botpkg.GroupSettings) string {
	return fmt.Sprintf(settingsText, onOff(settings.AutoDelete), onOff(settings.LinkDetection))
}

func (h *SettingsHandler) buildSettingsKeyboard(settings *botpkg.GroupSettings) *telego.InlineKeyboardMarkup {
	rows := [][]telego.InlineKeyboardButton{
		{
			{
				Text:         formatToggleButton(autoDeleteLabel, settings.AutoDelete),
				CallbackData: "settings autodelete " + toggleValue(settings.AutoDelete),
			},
			{
				Text:         formatToggleButton(linkDetectionLabel, settings.LinkDetection),
				CallbackData: "settings linkdetection " + toggleValue(settings.LinkDetection),
			},
		},
		{
			{Text: closeButtonLabel, CallbackData: "settings close"},
		},
	}
	return &telego.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func formatToggleButton(label string, enabled bool) string {
	return label + ": " + onOff(enabled)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

// toggleValue returns the value a button press should switch the setting to.
func toggleValue(enabled bool) string {
	if enabled {
		return "off"
	}
	return "on"
}

// SettingsCallbackHandler applies settings keyboard presses.
type SettingsCallbackHandler struct {
	Repo        botpkg.SettingsRepository
	Settings    *SettingsHandler
	RateLimiter *telegram.RateLimiter
	Logger      *logpkg.Logger
}

func (h *SettingsCallbackHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.CallbackQuery == nil {
		return
	}
	query := update.CallbackQuery
	args := strings.Split(query.Data, " ")
	if len(args) < 2 {
		return
	}
	if query.Message == nil {
		return
	}
	msg := query.Message.Message()
	if msg == nil {
		return
	}

	if args[1] == "close" {
		_ = b.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID})
		deleteParams := &telego.DeleteMessageParams{ChatID: telego.ChatID{ID: msg.Chat.ID}, MessageID: msg.MessageID}
		if h.RateLimiter != nil {
			_ = telegram.DeleteMessageWithRetry(ctx, h.RateLimiter, b, deleteParams)
		} else {
			_ = b.DeleteMessage(ctx, deleteParams)
		}
		return
	}
	if len(args) < 3 {
		return
	}
	if msg.Chat.Type == "private" {
		_ = b.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            settingsPrivateText,
		})
		return
	}

	if !isRequesterOrAdmin(ctx, b, msg.Chat.ID, query.From.ID, 0) {
		_ = b.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            settingsAdminOnly,
			ShowAlert:       true,
		})
		return
	}

	settings, err := h.Repo.GetGroupSettings(ctx, msg.Chat.ID)
	if err != nil {
		_ = b.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            settingsLoadFailed,
			ShowAlert:       true,
		})
		return
	}

	settingType := args[1]
	settingValue := args[2]
	if settingValue != "on" && settingValue != "off" {
		return
	}
	enabled := settingValue == "on"

	changed := false
	var responseText string
	switch settingType {
	case "autodelete":
		if settings.AutoDelete != enabled {
			settings.AutoDelete = enabled
			changed = true
			if enabled {
				responseText = autoDeleteEnabled
			} else {
				responseText = autoDeleteDisabled
			}
		}
	case "linkdetection":
		if settings.LinkDetection != enabled {
			settings.LinkDetection = enabled
			changed = true
			if enabled {
				responseText = linkDetectEnabled
			} else {
				responseText = linkDetectDisabled
			}
		}
	}

	if !changed {
		_ = b.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID})
		return
	}

	if err := h.Repo.UpdateGroupSettings(ctx, settings); err != nil {
		if h.Logger != nil {
			h.Logger.Error("cannot save group settings", "chat_id", msg.Chat.ID, "error", err)
		}
		_ = b.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            settingsSaveFailed,
			ShowAlert:       true,
		})
		return
	}

	_ = b.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            responseText,
	})

	editParams := &telego.EditMessageTextParams{
		ChatID:      telego.ChatID{ID: msg.Chat.ID},
		MessageID:   msg.MessageID,
		Text:        h.Settings.buildSettingsText(settings),
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: h.Settings.buildSettingsKeyboard(settings),
	}
	if h.RateLimiter != nil {
		_, _ = telegram.EditMessageTextWithRetry(ctx, h.RateLimiter, b, editParams)
	} else {
		_, _ = b.EditMessageText(ctx, editParams)
	}
}
