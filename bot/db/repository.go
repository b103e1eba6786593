package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/akarpov91/SongLinkBot-Go/bot"
)

const replyCountKey = "reply_count"

// Repository provides access to the settings database.
type Repository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates a repository backed by SQLite.
func NewSQLiteRepository(dsn string, gormLogger logger.Interface) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn required")
	}

	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	dbDir := filepath.Dir(dsn)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := applySQLitePragmas(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&GroupSettingsModel{}, &BotStatModel{}); err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Repository{db: db}, nil
}

// ConfigurePool updates the database connection pool settings.
func (r *Repository) ConfigurePool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	if r == nil || r.db == nil {
		return errors.New("repository not configured")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if maxOpen >= 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime >= 0 {
		sqlDB.SetConnMaxLifetime(maxLifetime)
	}
	return nil
}

// GetGroupSettings retrieves settings for a group, creating defaults if not exists.
func (r *Repository) GetGroupSettings(ctx context.Context, chatID int64) (*bot.GroupSettings, error) {
	var settings GroupSettingsModel
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := GroupSettingsModel{
			ChatID:        chatID,
			AutoDelete:    true,
			LinkDetection: true,
		}
		if createErr := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoNothing: true,
		}).Create(&defaults).Error; createErr != nil {
			return nil, createErr
		}
		err = r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&settings).Error
	}
	if err != nil {
		return nil, err
	}
	return groupSettingsToInternal(settings), nil
}

// UpdateGroupSettings updates group settings.
func (r *Repository) UpdateGroupSettings(ctx context.Context, settings *bot.GroupSettings) error {
	model := GroupSettingsModel{
		Model: gorm.Model{
			ID:        settings.ID,
			CreatedAt: settings.CreatedAt,
			UpdatedAt: settings.UpdatedAt,
		},
		ChatID:        settings.ChatID,
		AutoDelete:    settings.AutoDelete,
		LinkDetection: settings.LinkDetection,
	}
	if settings.DeletedAt != nil {
		model.DeletedAt = gorm.DeletedAt{Time: *settings.DeletedAt, Valid: true}
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// ReplyCount returns the total number of replies sent.
func (r *Repository) ReplyCount(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("repository not configured")
	}
	var stat BotStatModel
	err := r.db.WithContext(ctx).Where("key = ?", replyCountKey).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stat.Value, nil
}

// AddReplies adds n to the total reply counter.
func (r *Repository) AddReplies(ctx context.Context, n int64) error {
	if r == nil || r.db == nil {
		return errors.New("repository not configured")
	}
	if n <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&BotStatModel{}).Where("key = ?", replyCountKey).UpdateColumn("value", gorm.Expr("value + ?", n))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&BotStatModel{Key: replyCountKey, Value: n}).Error
	})
}

func applySQLitePragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-64000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, stmt := range pragmas {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
