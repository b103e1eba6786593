package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mymmrac/telego"

	"github.com/akarpov91/SongLinkBot-Go/bot/config"
	"github.com/akarpov91/SongLinkBot-Go/bot/db"
	"github.com/akarpov91/SongLinkBot-Go/bot/dynplugin"
	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	"github.com/akarpov91/SongLinkBot-Go/bot/odesli"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform"
	platformplugins "github.com/akarpov91/SongLinkBot-Go/bot/platform/plugins"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
	"github.com/akarpov91/SongLinkBot-Go/bot/resolve"
	"github.com/akarpov91/SongLinkBot-Go/bot/telegram"
	"github.com/akarpov91/SongLinkBot-Go/bot/telegram/handler"
	"github.com/akarpov91/SongLinkBot-Go/bot/worker"
)

// App wires all application dependencies.
type App struct {
	Config    *config.Config
	Logger    *logpkg.Logger
	DB        *db.Repository
	Pool      *worker.Pool
	Platforms *registry.Registry
	Scripts   *dynplugin.Manager
	Odesli    *odesli.Client
	Cache     *resolve.Cache
	Extractor *platform.Extractor
	Telegram  *telegram.Bot
	Build     BuildInfo
}

// BuildInfo provides build-time metadata.
type BuildInfo struct {
	RuntimeVer string
	BinVersion string
	CommitSHA  string
	BuildTime  string
	BuildArch  string
}

// New builds the application container.
func New(ctx context.Context, configPath string, build BuildInfo) (*App, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logpkg.New(conf.GetString("LogLevel"), conf.GetString("LogFormat"), conf.GetBool("LogSource"))
	if err != nil {
		return nil, err
	}

	gormLogger := logpkg.NewGormLogger(log.Slog(), logpkg.ParseGormLevel(conf.GetString("GormLogLevel")))
	databasePath := conf.GetString("Database")
	if strings.TrimSpace(databasePath) == "" {
		databasePath = "songlink.db"
	}

	repo, err := db.NewSQLiteRepository(databasePath, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	poolMaxOpen := conf.GetInt("DBMaxOpenConns")
	poolMaxIdle := conf.GetInt("DBMaxIdleConns")
	poolMaxLifetimeSec := conf.GetInt("DBConnMaxLifetimeSec")
	if err := repo.ConfigurePool(poolMaxOpen, poolMaxIdle, time.Duration(poolMaxLifetimeSec)*time.Second); err != nil {
		return nil, fmt.Errorf("configure db pool: %w", err)
	}

	pool := worker.New(conf.GetInt("WorkerPoolSize"))

	platforms := registry.New()
	for _, name := range platformplugins.Names() {
		enabled := true
		if pluginCfg, ok := conf.GetPluginConfig(name); ok {
			if _, hasKey := pluginCfg["enabled"]; hasKey {
				enabled = conf.GetPluginBool(name, "enabled")
			}
		}
		if !enabled {
			log.Info("plugin disabled by config", "plugin", name)
			continue
		}

		factory, _ := platformplugins.Get(name)
		contrib, err := factory(conf, log)
		if err != nil {
			log.Error("plugin init failed", "plugin", name, "error", err)
			continue
		}
		if contrib == nil {
			continue
		}
		for _, p := range contrib.Platforms {
			if err := platforms.Register(p); err != nil {
				log.Error("cannot register platform", "plugin", name, "error", err)
			}
		}
	}

	scripts := dynplugin.NewManager(log)
	if err := scripts.Load(ctx, conf, platforms); err != nil {
		// A broken script dir costs extra platforms, not the bot.
		log.Warn("script plugins load failed", "error", err)
	}

	odesliClient := odesli.New(odesli.Options{
		APIURL:        conf.GetString("OdesliAPIURL"),
		APIKey:        conf.GetString("OdesliAPIKey"),
		UserCountry:   conf.GetString("UserCountry"),
		Timeout:       time.Duration(conf.GetInt("ResolveTimeoutSec")) * time.Second,
		RatePerMinute: conf.GetInt("UpstreamRatePerMinute"),
		Burst:         conf.GetInt("UpstreamBurst"),
	}, platforms, log)

	cache := resolve.NewCache(odesliClient, resolve.Options{
		MaxEntries: conf.GetInt("CacheMaxEntries"),
		TTL:        time.Duration(conf.GetInt("CacheTTLSeconds")) * time.Second,
		KeyFunc:    resolve.PlatformKeyFunc(platforms),
		Logger:     log,
	})

	tele, err := telegram.New(conf, log)
	if err != nil {
		return nil, fmt.Errorf("init telegram: %w", err)
	}

	return &App{
		Config:    conf,
		Logger:    log,
		DB:        repo,
		Pool:      pool,
		Platforms: platforms,
		Scripts:   scripts,
		Odesli:    odesliClient,
		Cache:     cache,
		Extractor: platform.NewExtractor(platforms),
		Telegram:  tele,
		Build:     build,
	}, nil
}

// Start builds the update router and begins polling in the background.
func (a *App) Start(ctx context.Context) error {
	meCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	me, err := a.Telegram.GetMe(meCtx)
	if err != nil {
		if a.Logger != nil {
			a.Logger.Error("getMe failed", "error", err)
		}
	}
	botName := ""
	if me != nil {
		botName = me.Username
	}

	rateLimitPerSecond := a.Config.GetFloat64("RateLimitPerSecond")
	if rateLimitPerSecond <= 0 {
		rateLimitPerSecond = 1.0
	}
	rateLimitBurst := a.Config.GetInt("RateLimitBurst")
	if rateLimitBurst <= 0 {
		rateLimitBurst = 3
	}
	rateLimiter := telegram.NewRateLimiter(rateLimitPerSecond, rateLimitBurst)
	rateLimiter.SetLogger(a.Logger)

	adminIDs := make(map[int64]struct{})
	for _, id := range a.Config.GetIntSlice("BotAdmin") {
		adminIDs[int64(id)] = struct{}{}
	}

	settingsHandler := &handler.SettingsHandler{
		Repo:        a.DB,
		RateLimiter: rateLimiter,
		Logger:      a.Logger,
	}

	router := &handler.Router{
		Welcome: &handler.WelcomeHandler{
			Registry:    a.Platforms,
			RateLimiter: rateLimiter,
			Logger:      a.Logger,
		},
		Settings: settingsHandler,
		Status: &handler.StatusHandler{
			Cache:       a.Cache,
			Repo:        a.DB,
			Registry:    a.Platforms,
			RateLimiter: rateLimiter,
		},
		About: &handler.AboutHandler{
			RuntimeVer: a.Build.RuntimeVer,
			BinVersion: a.Build.BinVersion,
			CommitSHA:  a.Build.CommitSHA,
			BuildTime:  a.Build.BuildTime,
			BuildArch:  a.Build.BuildArch,
		},
		Reload: &handler.ReloadHandler{
			Reload: func(ctx context.Context) error {
				return a.Scripts.Reload(ctx, a.Config, a.Platforms)
			},
			RateLimiter: rateLimiter,
			Logger:      a.Logger,
			AdminIDs:    adminIDs,
		},
		Links: &handler.LinksHandler{
			Extractor:   a.Extractor,
			Resolver:    a.Cache,
			Repo:        a.DB,
			RateLimiter: rateLimiter,
			Logger:      a.Logger,
			SkipMark:    a.Config.GetString("SkipMark"),
		},
		SettingsCallback: &handler.SettingsCallbackHandler{
			Repo:        a.DB,
			Settings:    settingsHandler,
			RateLimiter: rateLimiter,
			Logger:      a.Logger,
		},
		Inline: &handler.InlineQueryHandler{
			Extractor: a.Extractor,
			Resolver:  a.Cache,
			Logger:    a.Logger,
			CacheTime: a.Config.GetInt("InlineCacheTimeSec"),
		},
		BotName: botName,
	}

	commands := []telego.BotCommand{
		{Command: "start", Description: "How to use the bot"},
		{Command: "settings", Description: "Group settings"},
		{Command: "status", Description: "Bot statistics"},
		{Command: "about", Description: "About this bot"},
	}
	_ = a.Telegram.SetCommands(ctx, commands)

	dispatcher := &pooledDispatcher{pool: a.Pool, router: router, logger: a.Logger}
	go func() {
		if err := a.Telegram.Start(ctx, dispatcher); err != nil && a.Logger != nil {
			a.Logger.Error("polling stopped", "error", err)
		}
	}()
	return nil
}

// pooledDispatcher fans updates out to the worker pool so a slow
// resolution never stalls the poll loop.
type pooledDispatcher struct {
	pool   *worker.Pool
	router *handler.Router
	logger *logpkg.Logger
}

func (d *pooledDispatcher) Handle(ctx context.Context, b *telego.Bot, update telego.Update) {
	err := d.pool.Submit(func() {
		d.router.Dispatch(ctx, b, update)
	})
	if err != nil && d.logger != nil {
		d.logger.Warn("update dropped", "error", err)
	}
}

// Shutdown releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil {
			a.Pool.StopNow()
			if firstErr == nil {
				firstErr = fmt.Errorf("shutdown worker pool: %w", err)
			}
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("failed to close database", "error", err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("close database: %w", err)
			}
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("close logger: %w", err)
			}
		}
	}

	return firstErr
}
