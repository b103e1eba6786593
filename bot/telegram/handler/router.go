package handler

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
)

// Router delegates incoming updates to feature handlers. Text messages
// without a known command go to Links, which scans them for music URLs.
type Router struct {
	Welcome          MessageHandler
	Settings         MessageHandler
	Status           MessageHandler
	About            MessageHandler
	Reload           MessageHandler
	Links            MessageHandler
	SettingsCallback CallbackHandler
	Inline           InlineHandler
	BotName          string
}

// Dispatch routes one update. Updates no handler claims are dropped.
func (r *Router) Dispatch(ctx context.Context, b *telego.Bot, update telego.Update) {
	switch {
	case update.InlineQuery != nil:
		if r.Inline != nil {
			r.Inline.Handle(ctx, b, &update)
		}
	case update.CallbackQuery != nil:
		if strings.HasPrefix(update.CallbackQuery.Data, "settings") && r.SettingsCallback != nil {
			r.SettingsCallback.Handle(ctx, b, &update)
		}
	case update.Message != nil && update.Message.Text != "":
		if h := r.messageHandler(update.Message.Text); h != nil {
			h.Handle(ctx, b, &update)
		}
	}
}

func (r *Router) messageHandler(text string) MessageHandler {
	switch commandName(text, r.BotName) {
	case "start", "help":
		return r.Welcome
	case "settings":
		return r.Settings
	case "status":
		return r.Status
	case "about":
		return r.About
	case "reload":
		return r.Reload
	default:
		// Unknown commands fall through to link detection, mirroring a
		// catch-all text handler.
		return r.Links
	}
}
