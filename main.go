package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/thejerf/suture/v4"
	_ "modernc.org/sqlite"

	"github.com/pdwk/pdwk-dev/internal/config"
	"github.com/pdwk/pdwk-dev/internal/content"
	"github.com/pdwk/pdwk-dev/internal/gitrepos"
	"github.com/pdwk/pdwk-dev/internal/httpx"
	"github.com/pdwk/pdwk-dev/internal/lanyard"
	"github.com/pdwk/pdwk-dev/internal/lastfm"
	"github.com/pdwk/pdwk-dev/internal/logging"
	"github.com/pdwk/pdwk-dev/internal/nowplaying"
	"github.com/pdwk/pdwk-dev/internal/server"
	"github.com/pdwk/pdwk-dev/internal/socials"
	"github.com/pdwk/pdwk-dev/internal/theme"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	defer db.Close()

	upstream := func(name string) *httpx.Client {
		return httpx.New(httpx.Options{
			Name:          name,
			UserAgent:     cfg.Upstream.UserAgent,
			Timeout:       cfg.Upstream.Timeout,
			RatePerSecond: cfg.Upstream.RatePerSecond,
			RateBurst:     cfg.Upstream.RateBurst,
		})
	}

	lfm := lastfm.New(upstream("lastfm"), cfg.Lastfm.APIKey, cfg.Lastfm.Username)
	github := gitrepos.NewGitHub(upstream("github"))
	gitlab := gitrepos.NewGitLab(upstream("gitlab"))
	presence := lanyard.New(upstream("lanyard"), cfg.Lanyard.UserID)

	accounts := make([]gitrepos.Account, 0, len(cfg.Git.Accounts))
	for _, acc := range cfg.Git.Accounts {
		accounts = append(accounts, gitrepos.Account{
			Name:     acc.Name,
			Platform: gitrepos.Platform(acc.Platform),
		})
	}
	sources := []gitrepos.Source{github, gitlab}
	aggregator := gitrepos.NewAggregator(accounts, sources, log)

	registry := socials.NewRegistry(socials.Deps{
		GitHub:  upstream("github-stats"),
		GitLab:  upstream("gitlab-stats"),
		Lastfm:  lfm,
		Lanyard: presence,
	}, log)

	npStore := nowplaying.NewStore()
	poller := nowplaying.NewPoller(
		nowplaying.NewFetcher(lfm, log), lfm, npStore,
		cfg.NowPlaying.Interval, cfg.NowPlaying.TopArtistChance, log)

	themes, err := theme.NewStore(db, log)
	if err != nil {
		return err
	}
	tracker, err := server.NewTracker(db, log)
	if err != nil {
		return err
	}
	catalog, err := content.Load()
	if err != nil {
		return err
	}

	srv := server.New(server.Deps{
		Log:        log,
		NowPlaying: npStore,
		Repos:      aggregator,
		Sources:    sources,
		Socials:    registry,
		Lanyard:    presence,
		Themes:     themes,
		Catalog:    catalog,
		Tracker:    tracker,
		AdminToken: cfg.Server.AdminToken,
	})

	sup := suture.NewSimple("pdwk-dev")
	sup.Add(poller)
	sup.Add(gitrepos.NewRefresher(aggregator, cfg.Git.RefreshInterval, log))
	sup.Add(server.NewHTTPService(cfg.Server.Addr, srv.Router(), cfg.Server.ShutdownTimeout, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting pdwk-dev", "addr", cfg.Server.Addr)
	err = sup.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
