package dynplugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/akarpov91/SongLinkBot-Go/bot/config"
	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	platformplugins "github.com/akarpov91/SongLinkBot-Go/bot/platform/plugins"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
)

// Manager loads platform matcher scripts from the configured script
// directory and keeps them registered across reloads.
type Manager struct {
	mu        sync.RWMutex
	platforms map[string]*scriptPlatform
	plugins   map[string]PluginInfo
	logger    *logpkg.Logger
}

// PluginInfo describes metadata for a loaded script plugin.
type PluginInfo struct {
	Name    string
	Version string
	URL     string
}

func NewManager(logger *logpkg.Logger) *Manager {
	return &Manager{
		platforms: make(map[string]*scriptPlatform),
		plugins:   make(map[string]PluginInfo),
		logger:    logger,
	}
}

// Load evaluates every .go script under PluginScriptDir and registers the
// platforms they contribute. A missing directory loads nothing.
func (m *Manager) Load(ctx context.Context, cfg *config.Config, reg *registry.Registry) error {
	return m.reload(ctx, cfg, reg)
}

// Reload re-evaluates all scripts. Platforms whose script disappeared or
// got disabled stay registered but stop matching.
func (m *Manager) Reload(ctx context.Context, cfg *config.Config, reg *registry.Registry) error {
	return m.reload(ctx, cfg, reg)
}

func (m *Manager) reload(ctx context.Context, cfg *config.Config, reg *registry.Registry) error {
	if cfg == nil {
		return fmt.Errorf("config required")
	}
	scriptDir := cfg.GetString("PluginScriptDir")
	if scriptDir == "" {
		return nil
	}
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read script dir: %w", err)
	}

	loaded := make(map[string]struct{})
	pluginInfos := make(map[string]PluginInfo)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".go")
		if name == "" {
			continue
		}
		if !pluginEnabled(cfg, name) {
			continue
		}
		if _, ok := platformplugins.Get(name); ok {
			// A compiled-in plugin owns this name.
			continue
		}
		plug, meta, err := loadScriptPlugin(ctx, filepath.Join(scriptDir, entry.Name()), pluginSettings(cfg, name), m.logger)
		if err != nil {
			if m.logger != nil {
				m.logger.Warn("script plugin load failed", "plugin", name, "error", err)
			}
			continue
		}
		if meta == nil || len(meta.Platforms) == 0 {
			if m.logger != nil {
				m.logger.Warn("script plugin returned no platforms", "plugin", name)
			}
			continue
		}
		pluginInfo := PluginInfo{
			Name:    strings.TrimSpace(meta.Name),
			Version: strings.TrimSpace(meta.Version),
			URL:     strings.TrimSpace(meta.URL),
		}
		if pluginInfo.Name == "" {
			pluginInfo.Name = name
		}
		pluginInfos[name] = pluginInfo

		for _, info := range meta.Platforms {
			if info.Key == "" {
				continue
			}
			pattern := compileURLPattern(info, m.logger)
			loaded[info.Key] = struct{}{}
			m.mu.Lock()
			if existing, ok := m.platforms[info.Key]; ok {
				existing.update(plug, info, pattern)
				m.mu.Unlock()
				continue
			}
			plat := newScriptPlatform(plug, info, pattern)
			m.platforms[info.Key] = plat
			m.mu.Unlock()
			if reg != nil {
				if err := reg.Register(plat); err != nil {
					if m.logger != nil {
						m.logger.Warn("cannot register script platform", "plugin", name, "platform", info.Key, "error", err)
					}
					continue
				}
			}
			if m.logger != nil {
				m.logger.Info("script platform registered", "plugin", name, "platform", info.Key)
			}
		}
	}

	m.mu.RLock()
	for key, plat := range m.platforms {
		if _, ok := loaded[key]; !ok {
			plat.disable()
			if m.logger != nil {
				m.logger.Info("script platform disabled", "platform", key)
			}
		}
	}
	m.mu.RUnlock()
	m.mu.Lock()
	m.plugins = pluginInfos
	m.mu.Unlock()

	return nil
}

// PluginInfos returns metadata for loaded script plugins.
func (m *Manager) PluginInfos() []PluginInfo {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]PluginInfo, 0, len(m.plugins))
	for _, info := range m.plugins {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func pluginEnabled(cfg *config.Config, name string) bool {
	pluginCfg, ok := cfg.GetPluginConfig(name)
	if !ok {
		return true
	}
	if _, hasKey := pluginCfg["enabled"]; hasKey {
		return cfg.GetPluginBool(name, "enabled")
	}
	return true
}

// pluginSettings flattens a script's config section for its Init hook.
func pluginSettings(cfg *config.Config, name string) map[string]string {
	pluginCfg, ok := cfg.GetPluginConfig(name)
	if !ok {
		return nil
	}
	settings := make(map[string]string, len(pluginCfg))
	for key, value := range pluginCfg {
		if key == "enabled" {
			continue
		}
		settings[key] = fmt.Sprintf("%v", value)
	}
	return settings
}

func compileURLPattern(info platformInfo, logger *logpkg.Logger) *regexp.Regexp {
	if strings.TrimSpace(info.URLPattern) == "" {
		return nil
	}
	pattern, err := regexp.Compile(info.URLPattern)
	if err != nil {
		if logger != nil {
			logger.Warn("invalid script platform url pattern", "platform", info.Key, "error", err)
		}
		return nil
	}
	return pattern
}
