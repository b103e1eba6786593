package handler

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
)

// AboutHandler handles /about.
type AboutHandler struct {
	RuntimeVer string
	BinVersion string
	CommitSHA  string
	BuildTime  string
	BuildArch  string
}

func (h *AboutHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.Message == nil {
		return
	}
	msg := fmt.Sprintf(aboutText, h.BinVersion, h.CommitSHA, h.BuildTime, h.BuildArch, h.RuntimeVer)
	_, _ = b.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:          telego.ChatID{ID: update.Message.Chat.ID},
		Text:            msg,
		ParseMode:       telego.ModeHTML,
		ReplyParameters: &telego.ReplyParameters{MessageID: update.Message.MessageID},
	})
}
