// Package feedsrvc is the incremental synchronization engine: it diffs
// normalized scoreboard candidates against the durable last-known state and
// appends the resulting events to an ordered, resumable event log.
package feedsrvc

import (
	"time"

	"github.com/contest-ops/ccsfeed/ccs"
)

// Candidate is one normalized attempt from a scoreboard snapshot: a
// submission, plus its judgement once one exists (nil while the attempt is
// still pending). Candidate identifiers are deterministic for a given
// snapshot, which is what lets the diff detect "no change".
type Candidate struct {
	Subm ccs.Submission
	Judg *ccs.Judgement

	// ContestTime orders transitions within a tick.
	ContestTime time.Duration
}

type transitionKind int

const (
	transNewSubmission transitionKind = iota
	transNewJudgement
	transVerdictChanged
)

// transition is one detected state change awaiting event emission.
type transition struct {
	kind       transitionKind
	cand       Candidate
	oldVerdict string
}
