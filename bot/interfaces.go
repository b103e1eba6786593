package bot

import "context"

// Logger is the minimal logging abstraction used across modules.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config provides typed access to configuration values.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetIntSlice(key string) []int
}

// Resolver turns a raw music link into a consolidated cross-platform result.
// Implementations cache results and deduplicate concurrent upstream work.
type Resolver interface {
	GetOrResolve(ctx context.Context, rawURL string) (*SongInfo, error)
}

// SettingsRepository defines storage operations for chat preferences
// and usage counters.
type SettingsRepository interface {
	GetGroupSettings(ctx context.Context, chatID int64) (*GroupSettings, error)
	UpdateGroupSettings(ctx context.Context, settings *GroupSettings) error
	ReplyCount(ctx context.Context) (int64, error)
	AddReplies(ctx context.Context, n int64) error
}

// WorkerPool limits concurrency for background tasks.
type WorkerPool interface {
	Submit(task func()) error
	SubmitWait(task func() error) error
	Shutdown(ctx context.Context) error
	Size() int
}
