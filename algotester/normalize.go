package algotester

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/contest-ops/ccsfeed/ccs"
	"github.com/contest-ops/ccsfeed/feedsrvc"
	"github.com/contest-ops/ccsfeed/idmap"
)

// The scoreboard does not expose per-submission languages.
const defaultLanguageID = "cpp"

// Normalizer expands scoreboard cells into deterministic candidate records.
// The scoreboard only exposes per-cell counters (rejected attempts, pending
// attempts, accepted flag), so attempts are synthesized with stable ids
// <team>-<problem>-<n> in the fixed order rejected, accepted, pending.
// Identical raw input always yields identical candidate ids and verdicts,
// which is the property the diff engine keys on; attempt times are estimates
// and are frozen by the store at first emission.
type Normalizer struct {
	mapper       *idmap.Mapper
	contestStart time.Time
	logger       *slog.Logger
}

func NewNormalizer(mapper *idmap.Mapper, contestStart time.Time, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{mapper: mapper, contestStart: contestStart, logger: logger}
}

// Normalize converts one snapshot into candidate records. Records whose team
// or problem has no mapping are dropped with a warning; a single unmapped
// identifier never aborts the rest of the snapshot.
func (n *Normalizer) Normalize(snap *Snapshot) []feedsrvc.Candidate {
	var cands []feedsrvc.Candidate

	for _, row := range snap.Rows {
		teamID, err := n.mapper.TeamID(row.TeamID)
		if err != nil {
			if errors.Is(err, idmap.ErrUnmapped) {
				n.logger.Warn("skipping scoreboard row", "team", row.TeamID, "name", row.TeamName, "error", err)
				continue
			}
			n.logger.Warn("team mapping failed", "team", row.TeamID, "error", err)
			continue
		}

		problemIDs := make([]string, 0, len(row.Results))
		for externalID := range row.Results {
			problemIDs = append(problemIDs, externalID)
		}
		sort.Strings(problemIDs)

		for _, externalID := range problemIDs {
			problemID, err := n.mapper.ProblemID(externalID)
			if err != nil {
				if errors.Is(err, idmap.ErrUnmapped) {
					n.logger.Warn("skipping scoreboard cell", "team", teamID, "problem", externalID, "error", err)
					continue
				}
				n.logger.Warn("problem mapping failed", "problem", externalID, "error", err)
				continue
			}
			cands = append(cands, n.expandCell(teamID, problemID, row.Results[externalID])...)
		}
	}

	return cands
}

func (n *Normalizer) expandCell(teamID, problemID string, cell Cell) []feedsrvc.Candidate {
	judged := cell.Attempts
	if cell.IsAccepted {
		judged++
	}
	total := judged + cell.PendingAttempts
	if total == 0 {
		return nil
	}

	// Rejected attempts are spaced out before the last improvement time;
	// the accepted attempt and pending attempts sit at the time itself.
	var step float64
	if judged > 0 {
		step = cell.TimeMs / float64(judged+1)
	}

	cands := make([]feedsrvc.Candidate, 0, total)
	for attempt := 1; attempt <= total; attempt++ {
		var verdict string
		var ms float64
		switch {
		case attempt <= cell.Attempts:
			verdict = ccs.VerdictWA
			ms = step * float64(attempt)
		case attempt == cell.Attempts+1 && cell.IsAccepted:
			verdict = ccs.VerdictAC
			ms = cell.TimeMs
		default:
			verdict = ccs.VerdictPending
			ms = cell.TimeMs
		}
		cands = append(cands, n.candidate(teamID, problemID, attempt, verdict, ms))
	}
	return cands
}

func (n *Normalizer) candidate(teamID, problemID string, attempt int, verdict string, ms float64) feedsrvc.Candidate {
	contestTime := time.Duration(ms * float64(time.Millisecond))
	absolute := ccs.FormatTime(n.contestStart.Add(contestTime))
	relative := ccs.FormatRelTime(contestTime)

	submID := fmt.Sprintf("%s-%s-%d", teamID, problemID, attempt)
	subm := ccs.Submission{
		ID:          submID,
		TeamID:      teamID,
		ProblemID:   problemID,
		LanguageID:  defaultLanguageID,
		Time:        absolute,
		ContestTime: relative,
	}

	var judg *ccs.Judgement
	if verdict != ccs.VerdictPending {
		judg = &ccs.Judgement{
			ID:               submID + "-j",
			SubmissionID:     submID,
			JudgementTypeID:  verdict,
			StartTime:        absolute,
			StartContestTime: relative,
			EndTime:          absolute,
			EndContestTime:   relative,
		}
	}

	return feedsrvc.Candidate{Subm: subm, Judg: judg, ContestTime: contestTime}
}
