package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/akarpov91/SongLinkBot-Go/bot"
)

// GroupSettingsModel stores group preferences for the bot.
type GroupSettingsModel struct {
	gorm.Model
	ChatID        int64 `gorm:"uniqueIndex;not null"`
	AutoDelete    bool  `gorm:"not null;default:true"`
	LinkDetection bool  `gorm:"not null;default:true"`
}

func (GroupSettingsModel) TableName() string {
	return "group_settings"
}

// BotStatModel stores aggregated bot statistics as key/value counters.
type BotStatModel struct {
	gorm.Model
	Key   string `gorm:"uniqueIndex;not null"`
	Value int64
}

func (BotStatModel) TableName() string {
	return "bot_stats"
}

func groupSettingsToInternal(settings GroupSettingsModel) *bot.GroupSettings {
	return &bot.GroupSettings{
		ID:            settings.ID,
		CreatedAt:     settings.CreatedAt,
		UpdatedAt:     settings.UpdatedAt,
		DeletedAt:     deletedAtPtr(settings.DeletedAt),
		ChatID:        settings.ChatID,
		AutoDelete:    settings.AutoDelete,
		LinkDetection: settings.LinkDetection,
	}
}

func deletedAtPtr(value gorm.DeletedAt) *time.Time {
	if value.Valid {
		return &value.Time
	}
	return nil
}
