package handler

import (
	"context"

	"github.com/mymmrac/telego"
)

func isBotAdmin(adminIDs map[int64]struct{}, userID int64) bool {
	if len(adminIDs) == 0 {
		return false
	}
	_, ok := adminIDs[userID]
	return ok
}

// isRequesterOrAdmin reports whether userID may act on behalf of the chat:
// either it equals requesterID or it holds an admin role. The cheaper
// GetChatMember lookup is tried before listing all administrators.
func isRequesterOrAdmin(ctx context.Context, b *telego.Bot, chatID int64, userID int64, requesterID int64) bool {
	if requesterID != 0 && requesterID == userID {
		return true
	}
	if b == nil {
		return false
	}
	member, err := b.GetChatMember(ctx, &telego.GetChatMemberParams{ChatID: telego.ChatID{ID: chatID}, UserID: userID})
	if err == nil && member != nil {
		status := member.MemberStatus()
		if status == telego.MemberStatusCreator || status == telego.MemberStatusAdministrator {
			return true
		}
	}
	admins, err := b.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{ChatID: telego.ChatID{ID: chatID}})
	if err != nil {
		return false
	}
	for _, admin := range admins {
		if admin.MemberUser().ID != userID {
			continue
		}
		status := admin.MemberStatus()
		return status == telego.MemberStatusCreator || status == telego.MemberStatusAdministrator
	}
	return false
}
