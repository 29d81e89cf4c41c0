package feedsrvc

import "errors"

var (
	// ErrStoreCorrupt means the token counter and the event log disagree on
	// startup. The service refuses to start; serving would risk duplicate or
	// gapped tokens.
	ErrStoreCorrupt = errors.New("event log and token counter disagree")

	// ErrInconsistentVerdict flags a terminal verdict changing to a different
	// terminal verdict. Terminal verdicts are immutable; the record is
	// skipped and surfaced for operator attention.
	ErrInconsistentVerdict = errors.New("inconsistent verdict for judged submission")

	// ErrUnknownToken is returned when a feed resume token is out of range.
	ErrUnknownToken = errors.New("unknown event token")
)
