package algotester

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
)

// The JSON scoreboard keys cells by problem id but never lists the problems
// themselves. The HTML page does, indirectly: it defines one column
// formatter function per problem.
var problemFormatterRe = regexp.MustCompile(`var formatter(\d+)\s*=`)

// FetchProblemIDs scrapes the problem ids from the HTML scoreboard page, in
// column order.
func (f *Fetcher) FetchProblemIDs(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("https://%s.algotester.com/en/Contest/ViewScoreboard/%d?showUnofficial=False",
		f.subdomain, f.contestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build scoreboard page request: %w", err)
	}

	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scoreboard page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch scoreboard page: status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read scoreboard page: %w", err)
	}
	return extractProblemIDs(string(body)), nil
}

func extractProblemIDs(html string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range problemFormatterRe.FindAllStringSubmatch(html, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		ids = append(ids, m[1])
	}
	return ids
}
