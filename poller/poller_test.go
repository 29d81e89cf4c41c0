package poller_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contest-ops/ccsfeed/algotester"
	"github.com/contest-ops/ccsfeed/feedsrvc"
	"github.com/contest-ops/ccsfeed/idmap"
	"github.com/contest-ops/ccsfeed/poller"
)

type stubFetcher struct {
	snap *algotester.Snapshot
	err  error
}

func (f *stubFetcher) FetchScoreboard(ctx context.Context) (*algotester.Snapshot, error) {
	return f.snap, f.err
}

func newTestPoller(t *testing.T, fetcher poller.ScoreboardFetcher, dataDir string) (*poller.Poller, *feedsrvc.FeedSrvc) {
	t.Helper()
	srvc, err := feedsrvc.NewFeedSrvc(feedsrvc.NewInMemRepo(), nil)
	require.NoError(t, err)

	mapper := idmap.New(
		map[string]string{"1042": "t1"},
		map[string]string{"10197": "p1"},
	)
	normalizer := algotester.NewNormalizer(mapper, time.Date(2024, 11, 24, 10, 0, 0, 0, time.UTC), nil)
	return poller.New(fetcher, normalizer, srvc, time.Minute, dataDir, nil), srvc
}

func TestTickProcessesSnapshot(t *testing.T) {
	dataDir := t.TempDir()
	fetcher := &stubFetcher{snap: &algotester.Snapshot{Rows: []algotester.Row{{
		TeamID: "1042",
		Results: map[string]algotester.Cell{
			"10197": {IsAccepted: true, Attempts: 0, TimeMs: 600_000},
		},
	}}}}

	p, srvc := newTestPoller(t, fetcher, dataDir)
	require.NoError(t, p.Tick(context.Background()))

	// One accepted attempt: submission + judgement.
	assert.Equal(t, int64(2), srvc.LastToken())
}

func TestTickArchivesSnapshot(t *testing.T) {
	dataDir := t.TempDir()
	fetcher := &stubFetcher{snap: &algotester.Snapshot{Rows: []algotester.Row{{TeamID: "1042"}}}}

	p, _ := newTestPoller(t, fetcher, dataDir)
	require.NoError(t, p.Tick(context.Background()))

	f, err := os.Open(filepath.Join(dataDir, "last_snapshot.json.zst"))
	require.NoError(t, err)
	defer f.Close()

	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"team_id":"1042"`)
}

func TestFetchFailureSkipsTick(t *testing.T) {
	dataDir := t.TempDir()
	fetcher := &stubFetcher{err: errors.New("upstream timeout")}

	p, srvc := newTestPoller(t, fetcher, dataDir)
	err := p.Tick(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(0), srvc.LastToken(), "failed fetch advances nothing")

	// Next tick recovers once upstream is back.
	fetcher.err = nil
	fetcher.snap = &algotester.Snapshot{Rows: []algotester.Row{{
		TeamID:  "1042",
		Results: map[string]algotester.Cell{"10197": {PendingAttempts: 1, TimeMs: 60_000}},
	}}}
	require.NoError(t, p.Tick(context.Background()))
	assert.Equal(t, int64(1), srvc.LastToken())
}
