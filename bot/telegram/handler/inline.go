package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	botpkg "github.com/akarpov91/SongLinkBot-Go/bot"
	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform"
	"github.com/mymmrac/telego"
)

// InlineQueryHandler resolves music links typed into an inline query and
// offers one article per distinct song. Queries without a recognized link
// get a short usage hint instead.
type InlineQueryHandler struct {
	Extractor *platform.Extractor
	Resolver  botpkg.Resolver
	Logger    *logpkg.Logger
	CacheTime int
}

func (h *InlineQueryHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.InlineQuery == nil {
		return
	}
	if h.Extractor == nil || h.Resolver == nil {
		return
	}
	query := update.InlineQuery

	links := h.Extractor.Extract(strings.TrimSpace(query.Query))
	if len(links) == 0 {
		h.answerHint(ctx, b, query)
		return
	}

	results := resolveLinks(ctx, h.Resolver, links, h.Logger)
	entries := buildReplyEntries(results)

	articles := make([]telego.InlineQueryResult, 0, len(entries))
	for i, entry := range entries {
		if entry.info == nil {
			continue
		}
		articles = append(articles, h.songArticle(i, entry.info))
	}
	if len(articles) == 0 {
		h.answerNoMatch(ctx, b, query)
		return
	}

	err := b.AnswerInlineQuery(ctx, &telego.AnswerInlineQueryParams{
		InlineQueryID: query.ID,
		Results:       articles,
		CacheTime:     h.CacheTime,
	})
	if err != nil && h.Logger != nil {
		h.Logger.Warn("cannot answer inline query", "error", err)
	}
}

func (h *InlineQueryHandler) songArticle(idx int, info *botpkg.SongInfo) *telego.InlineQueryResultArticle {
	names := make([]string, 0, len(info.Links))
	for _, l := range info.Links {
		names = append(names, l.Name)
	}
	return &telego.InlineQueryResultArticle{
		Type:         telego.ResultTypeArticle,
		ID:           fmt.Sprintf("%d-%d", time.Now().UnixMicro(), idx),
		Title:        fmt.Sprintf("%s - %s", info.Artist, info.Title),
		Description:  strings.Join(names, linkSeparator),
		ThumbnailURL: info.Thumbnail,
		InputMessageContent: &telego.InputTextMessageContent{
			MessageText: songMessageBody(info),
			ParseMode:   telego.ModeHTML,
		},
	}
}

func (h *InlineQueryHandler) answerHint(ctx context.Context, b *telego.Bot, query *telego.InlineQuery) {
	article := &telego.InlineQueryResultArticle{
		Type:        telego.ResultTypeArticle,
		ID:          fmt.Sprintf("%d", time.Now().UnixMicro()),
		Title:       inlineHelpTitle,
		Description: inlineHelpDescription,
		InputMessageContent: &telego.InputTextMessageContent{
			MessageText: inlineHelpMessage,
		},
	}
	_ = b.AnswerInlineQuery(ctx, &telego.AnswerInlineQueryParams{
		InlineQueryID: query.ID,
		Results:       []telego.InlineQueryResult{article},
		CacheTime:     3600,
	})
}

func (h *InlineQueryHandler) answerNoMatch(ctx context.Context, b *telego.Bot, query *telego.InlineQuery) {
	article := &telego.InlineQueryResultArticle{
		Type:        telego.ResultTypeArticle,
		ID:          fmt.Sprintf("%d", time.Now().UnixMicro()),
		Title:       inlineNoMatchTitle,
		Description: inlineNoMatchDescription,
		InputMessageContent: &telego.InputTextMessageContent{
			MessageText: query.Query,
		},
	}
	_ = b.AnswerInlineQuery(ctx, &telego.AnswerInlineQueryParams{
		InlineQueryID: query.ID,
		Results:       []telego.InlineQueryResult{article},
		CacheTime:     h.CacheTime,
	})
}
