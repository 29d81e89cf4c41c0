package algotester

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Fetcher pulls complete scoreboards from the Algotester API, following the
// offset/limit pagination until a short page is returned.
type Fetcher struct {
	httpc     *http.Client
	subdomain string
	baseURL   string
	apiKey    string
	contestID int
}

const fetchPageLimit = 100

func NewFetcher(apiKey, subdomain string, contestID int) *Fetcher {
	return &Fetcher{
		httpc:     &http.Client{Timeout: 30 * time.Second},
		subdomain: subdomain,
		baseURL:   fmt.Sprintf("https://%s.algotester.com/en/Contest/ListScoreboardWithAPI", subdomain),
		apiKey:    apiKey,
		contestID: contestID,
	}
}

// FetchScoreboard fetches all scoreboard rows. Any transport or decode
// failure fails the whole fetch; the caller skips the tick and retries on
// the next interval.
func (f *Fetcher) FetchScoreboard(ctx context.Context) (*Snapshot, error) {
	var rows []Row
	offset := 0
	for {
		page, err := f.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, w := range page {
			rows = append(rows, parseRow(w))
		}
		if len(page) < fetchPageLimit {
			break
		}
		offset += fetchPageLimit
	}
	return &Snapshot{Rows: rows}, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, offset int) ([]wireRow, error) {
	url := fmt.Sprintf("%s/%d?showUnofficial=False&offset=%d&limit=%d",
		f.baseURL, f.contestID, offset, fetchPageLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build scoreboard request: %w", err)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-API-Key", f.apiKey)

	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scoreboard page at offset %d: %w", offset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch scoreboard page at offset %d: status %s", offset, resp.Status)
	}

	var body struct {
		Rows []wireRow `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode scoreboard page at offset %d: %w", offset, err)
	}
	return body.Rows, nil
}
