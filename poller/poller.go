// Package poller drives the tick loop: fetch the scoreboard, normalize it,
// hand the candidates to the feed service. Ticks are strictly serialized;
// a tick that fails at any stage is skipped entirely and retried on the
// next interval from unchanged state.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/contest-ops/ccsfeed/algotester"
	"github.com/contest-ops/ccsfeed/feedsrvc"
)

// ScoreboardFetcher is what the poller needs from the upstream client.
type ScoreboardFetcher interface {
	FetchScoreboard(ctx context.Context) (*algotester.Snapshot, error)
}

type Poller struct {
	fetcher    ScoreboardFetcher
	normalizer *algotester.Normalizer
	feedSrvc   *feedsrvc.FeedSrvc
	interval   time.Duration
	dataDir    string
	logger     *slog.Logger
}

func New(
	fetcher ScoreboardFetcher,
	normalizer *algotester.Normalizer,
	feedSrvc *feedsrvc.FeedSrvc,
	interval time.Duration,
	dataDir string,
	logger *slog.Logger,
) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher:    fetcher,
		normalizer: normalizer,
		feedSrvc:   feedSrvc,
		interval:   interval,
		dataDir:    dataDir,
		logger:     logger,
	}
}

// Run ticks immediately and then on every interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Tick(ctx); err != nil {
			p.logger.Error("tick failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Tick runs one fetch-normalize-process cycle.
func (p *Poller) Tick(ctx context.Context) error {
	snap, err := p.fetcher.FetchScoreboard(ctx)
	if err != nil {
		return fmt.Errorf("fetch scoreboard: %w", err)
	}

	if err := p.archiveSnapshot(snap); err != nil {
		// The archive is diagnostic only; never fail the tick over it.
		p.logger.Warn("archiving snapshot failed", "error", err)
	}

	cands := p.normalizer.Normalize(snap)
	if _, err := p.feedSrvc.ProcessSnapshot(ctx, cands); err != nil {
		return fmt.Errorf("process snapshot: %w", err)
	}
	return nil
}

// archiveSnapshot keeps the last fetched snapshot on disk, zstd-compressed,
// for operator inspection after upstream inconsistencies.
func (p *Poller) archiveSnapshot(snap *algotester.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	path := filepath.Join(p.dataDir, "last_snapshot.json.zst")
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot archive: %w", err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("write snapshot archive: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush snapshot archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot archive: %w", err)
	}

	return os.Rename(tmp, path)
}
