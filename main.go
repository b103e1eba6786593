package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/akarpov91/SongLinkBot-Go/bot/app"

	_ "github.com/akarpov91/SongLinkBot-Go/plugins/applemusic"
	_ "github.com/akarpov91/SongLinkBot-Go/plugins/deezer"
	_ "github.com/akarpov91/SongLinkBot-Go/plugins/googlemusic"
	_ "github.com/akarpov91/SongLinkBot-Go/plugins/soundcloud"
	_ "github.com/akarpov91/SongLinkBot-Go/plugins/spotify"
	_ "github.com/akarpov91/SongLinkBot-Go/plugins/yandexmusic"
	_ "github.com/akarpov91/SongLinkBot-Go/plugins/youtube"
)

var (
	versionName = ""
	commitSHA   = ""
	buildTime   = ""
)

func main() {
	configPath := flag.String("c", "config.ini", "config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	buildInfo := app.BuildInfo{
		RuntimeVer: runtime.Version(),
		BinVersion: versionName,
		CommitSHA:  commitSHA,
		BuildTime:  buildTime,
		BuildArch:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	application, err := app.New(ctx, *configPath, buildInfo)
	if err != nil {
		panic(err)
	}

	if err := application.Start(ctx); err != nil {
		panic(err)
	}

	<-ctx.Done()
	_ = application.Shutdown(context.Background())
}
