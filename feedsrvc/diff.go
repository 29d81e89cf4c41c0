package feedsrvc

import (
	"context"
	"fmt"
	"sort"
)

// diff compares the tick's candidates against the last-known state and
// returns the transitions to emit, ordered by contest time (ascending
// submission id on ties). A candidate's NewSubmission transition always
// precedes its judgement transition.
//
// Verdict regressions (terminal verdict differing from the stored terminal
// verdict) are skipped and reported via the returned warnings; they indicate
// corrupted upstream data, never abort the tick.
func (s *FeedSrvc) diff(ctx context.Context, cands []Candidate) ([]transition, []error, error) {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ContestTime != sorted[j].ContestTime {
			return sorted[i].ContestTime < sorted[j].ContestTime
		}
		return sorted[i].Subm.ID < sorted[j].Subm.ID
	})

	var transitions []transition
	var warnings []error

	for _, cand := range sorted {
		stored, err := s.repo.Submission(ctx, cand.Subm.ID)
		if err != nil {
			return nil, warnings, fmt.Errorf("read submission %s: %w", cand.Subm.ID, err)
		}

		if stored == nil {
			transitions = append(transitions, transition{kind: transNewSubmission, cand: cand})
			if cand.Judg != nil {
				transitions = append(transitions, transition{kind: transNewJudgement, cand: cand})
			}
			continue
		}

		storedJudg, err := s.repo.JudgementBySubmission(ctx, cand.Subm.ID)
		if err != nil {
			return nil, warnings, fmt.Errorf("read judgement for %s: %w", cand.Subm.ID, err)
		}

		switch {
		case cand.Judg == nil:
			if storedJudg != nil && !storedJudg.Pending() {
				// Terminal verdicts never revert to pending.
				warnings = append(warnings, fmt.Errorf(
					"submission %s: verdict %s reverted to pending: %w",
					cand.Subm.ID, storedJudg.JudgementTypeID, ErrInconsistentVerdict))
			}
		case storedJudg == nil:
			transitions = append(transitions, transition{kind: transNewJudgement, cand: cand})
		case storedJudg.JudgementTypeID == cand.Judg.JudgementTypeID:
			// Unchanged; nothing to emit.
		case storedJudg.Pending():
			transitions = append(transitions, transition{
				kind:       transVerdictChanged,
				cand:       cand,
				oldVerdict: storedJudg.JudgementTypeID,
			})
		case cand.Judg.Pending():
			warnings = append(warnings, fmt.Errorf(
				"submission %s: verdict %s reverted to pending: %w",
				cand.Subm.ID, storedJudg.JudgementTypeID, ErrInconsistentVerdict))
		default:
			warnings = append(warnings, fmt.Errorf(
				"submission %s: verdict %s changed to %s: %w",
				cand.Subm.ID, storedJudg.JudgementTypeID, cand.Judg.JudgementTypeID,
				ErrInconsistentVerdict))
		}
	}

	return transitions, warnings, nil
}
