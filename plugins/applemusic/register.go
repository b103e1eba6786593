package applemusic

import (
	"github.com/akarpov91/SongLinkBot-Go/bot/config"
	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	platformplugins "github.com/akarpov91/SongLinkBot-Go/bot/platform/plugins"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
)

func init() {
	if err := platformplugins.Register("applemusic", buildContribution); err != nil {
		panic(err)
	}
}

func buildContribution(cfg *config.Config, logger *logpkg.Logger) (*platformplugins.Contribution, error) {
	return &platformplugins.Contribution{
		Platforms: []registry.Platform{NewPlatform()},
	}, nil
}
