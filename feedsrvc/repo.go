package feedsrvc

import (
	"context"

	"github.com/contest-ops/ccsfeed/ccs"
)

// Repo is the durable store behind the feed service: the append-only event
// log, the token counter and the last-known submission/judgement state.
// AppendEvent is the only mutation; the service is its single caller.
type Repo interface {
	// AppendEvent durably appends ev and, for submission/judgement events,
	// updates the last-known entity state, as one atomic step. The event's
	// token must be exactly the stored last token plus one.
	AppendEvent(ctx context.Context, ev ccs.Event) error

	// ReadEventsFrom returns all durable events with token >= from, in token
	// order. Safe to call concurrently with AppendEvent.
	ReadEventsFrom(ctx context.Context, from int64) ([]ccs.Event, error)

	// LastToken returns the last issued token, 0 when the log is empty.
	LastToken(ctx context.Context) (int64, error)

	// EventCount returns the number of logged events.
	EventCount(ctx context.Context) (int64, error)

	Submission(ctx context.Context, id string) (*ccs.Submission, error)
	Submissions(ctx context.Context) ([]ccs.Submission, error)
	Judgement(ctx context.Context, id string) (*ccs.Judgement, error)
	JudgementBySubmission(ctx context.Context, submissionID string) (*ccs.Judgement, error)
	Judgements(ctx context.Context) ([]ccs.Judgement, error)

	Close() error
}
