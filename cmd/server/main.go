package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/contest-ops/ccsfeed/algotester"
	"github.com/contest-ops/ccsfeed/conf"
	"github.com/contest-ops/ccsfeed/cpkg"
	"github.com/contest-ops/ccsfeed/feedsrvc"
	ccshttp "github.com/contest-ops/ccsfeed/http"
	"github.com/contest-ops/ccsfeed/idmap"
	"github.com/contest-ops/ccsfeed/poller"
)

func main() {
	configPath := flag.String("config", conf.DefaultPath(), "path to configuration file")
	clearData := flag.Bool("clear-data", false, "clear all persisted data on startup")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env")
	}

	cfg, err := conf.Load(*configPath)
	if err != nil {
		slog.Error("loading config failed", "error", err)
		os.Exit(1)
	}

	if *clearData {
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			slog.Error("clearing data dir failed", "dir", cfg.DataDir, "error", err)
			os.Exit(1)
		}
		slog.Info("cleared data directory", "dir", cfg.DataDir)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.Error("creating data dir failed", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	pkg, err := cpkg.Load(cfg.ContestPackagePath)
	if err != nil {
		slog.Error("loading contest package failed", "error", err)
		os.Exit(1)
	}

	mapper, err := idmap.Load(cfg.TeamMappingFile, cfg.ProblemMappingFile)
	if err != nil {
		slog.Error("loading identity mappings failed", "error", err)
		os.Exit(1)
	}
	slog.Info("loaded identity mappings",
		"teams", mapper.TeamCount(), "problems", mapper.ProblemCount())

	repo, err := feedsrvc.NewSqliteRepo(filepath.Join(cfg.DataDir, "feed.db"))
	if err != nil {
		slog.Error("opening store failed", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	feedSrvc, err := feedsrvc.NewFeedSrvc(repo, slog.Default())
	if err != nil {
		slog.Error("starting feed service failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := feedSrvc.InitStaticEvents(ctx, pkg.Contest(), pkg.Problems(), pkg.Teams()); err != nil {
		slog.Error("seeding static events failed", "error", err)
		os.Exit(1)
	}

	contestStart := pkg.StartTime()
	if contestStart.IsZero() {
		slog.Warn("contest package has no start time, using now")
		contestStart = time.Now()
	}

	fetcher := algotester.NewFetcher(
		cfg.Algotester.APIKey, cfg.Algotester.Subdomain, cfg.Algotester.ContestID)
	normalizer := algotester.NewNormalizer(mapper, contestStart, slog.Default())
	p := poller.New(fetcher, normalizer, feedSrvc, cfg.PollingInterval(), cfg.DataDir, slog.Default())
	go p.Run(ctx)

	httpServer := ccshttp.NewHttpServer(feedSrvc, pkg, cfg.Auth.Username, cfg.Auth.Password, slog.Default())

	log.Printf("Starting server on %s", cfg.ListenAddr)
	err = httpServer.Start(cfg.ListenAddr)
	log.Printf("Server stopped with error: %v", err)
}
