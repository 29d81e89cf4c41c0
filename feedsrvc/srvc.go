package feedsrvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/contest-ops/ccsfeed/ccs"
)

// FeedSrvc owns the event log. Exactly one ProcessSnapshot runs at a time
// (ticks are serialized by the poller), so the token counter has a single
// writer by construction. Feed readers run concurrently against the repo.
type FeedSrvc struct {
	repo   Repo
	logger *slog.Logger

	// lastToken mirrors the durable counter; only ProcessSnapshot and
	// InitStaticEvents advance it, but feed handler goroutines read it
	// concurrently.
	lastToken atomic.Int64

	subsLock sync.Mutex
	subs     []chan struct{}
}

// NewFeedSrvc opens the service over repo, verifying that the token counter
// and the event log agree. A disagreement means a torn write survived a
// crash; serving would risk duplicate or gapped tokens, so startup fails
// with ErrStoreCorrupt.
func NewFeedSrvc(repo Repo, logger *slog.Logger) (*FeedSrvc, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()
	last, err := repo.LastToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("read token counter: %w", err)
	}
	count, err := repo.EventCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if last != count {
		return nil, fmt.Errorf("token counter %d, log length %d: %w", last, count, ErrStoreCorrupt)
	}

	s := &FeedSrvc{repo: repo, logger: logger}
	s.lastToken.Store(last)
	return s, nil
}

// LastToken returns the most recently issued token, 0 before any event.
func (s *FeedSrvc) LastToken() int64 {
	return s.lastToken.Load()
}

// ValidateSinceToken checks a feed resume token: it must be a token that has
// been issued (or 0 for full history).
func (s *FeedSrvc) ValidateSinceToken(token int64) error {
	if token < 0 || token > s.lastToken.Load() {
		return fmt.Errorf("token %d: %w", token, ErrUnknownToken)
	}
	return nil
}

// EventsAfter returns all durable events with token > after, in token order.
func (s *FeedSrvc) EventsAfter(ctx context.Context, after int64) ([]ccs.Event, error) {
	return s.repo.ReadEventsFrom(ctx, after+1)
}

func (s *FeedSrvc) Submissions(ctx context.Context) ([]ccs.Submission, error) {
	return s.repo.Submissions(ctx)
}

func (s *FeedSrvc) Submission(ctx context.Context, id string) (*ccs.Submission, error) {
	return s.repo.Submission(ctx, id)
}

func (s *FeedSrvc) Judgements(ctx context.Context) ([]ccs.Judgement, error) {
	return s.repo.Judgements(ctx)
}

func (s *FeedSrvc) Judgement(ctx context.Context, id string) (*ccs.Judgement, error) {
	return s.repo.Judgement(ctx, id)
}

// InitStaticEvents seeds the log with the static contest objects (contest,
// judgement types, languages, problems, teams) followed by one contest state
// event. The state event is the completion marker: a crash mid-seed leaves a
// token-consistent log without it, and the next startup appends whatever is
// still missing before any scoreboard event.
func (s *FeedSrvc) InitStaticEvents(ctx context.Context, contest ccs.Contest, problems []ccs.Problem, teams []ccs.Team) error {
	existing, err := s.repo.ReadEventsFrom(ctx, 1)
	if err != nil {
		return fmt.Errorf("read event log: %w", err)
	}
	seeded := make(map[string]bool, len(existing))
	for _, ev := range existing {
		seeded[ev.Type+"/"+ev.ID] = true
	}
	if seeded[ccs.EvState+"/"+contest.ID] {
		return nil
	}

	appendMissing := func(evType, id string, obj any) error {
		if seeded[evType+"/"+id] {
			return nil
		}
		return s.appendObject(ctx, evType, id, obj)
	}

	if err := appendMissing(ccs.EvContests, contest.ID, contest); err != nil {
		return err
	}
	for _, jt := range ccs.JudgementTypes() {
		if err := appendMissing(ccs.EvJudgementTypes, jt.ID, jt); err != nil {
			return err
		}
	}
	for _, lang := range ccs.Languages() {
		if err := appendMissing(ccs.EvLanguages, lang.ID, lang); err != nil {
			return err
		}
	}
	for _, problem := range problems {
		if err := appendMissing(ccs.EvProblems, problem.ID, problem); err != nil {
			return err
		}
	}
	for _, team := range teams {
		if err := appendMissing(ccs.EvTeams, team.ID, team); err != nil {
			return err
		}
	}

	state := ccs.State{}
	if contest.StartTime != "" {
		started := contest.StartTime
		state.Started = &started
	}
	if err := s.appendObject(ctx, ccs.EvState, contest.ID, state); err != nil {
		return err
	}

	s.logger.Info("seeded static events",
		"problems", len(problems), "teams", len(teams), "last_token", s.lastToken.Load())
	return nil
}

// ProcessSnapshot runs one tick: diff the candidates against last-known
// state, then emit every transition in order. Returns the number of events
// emitted. A store failure aborts the remaining transitions without
// advancing in-memory state; the whole tick is retried on the next poll.
func (s *FeedSrvc) ProcessSnapshot(ctx context.Context, cands []Candidate) (int, error) {
	transitions, warnings, err := s.diff(ctx, cands)
	if err != nil {
		return 0, fmt.Errorf("diff snapshot: %w", err)
	}
	for _, warning := range warnings {
		if errors.Is(warning, ErrInconsistentVerdict) {
			s.logger.Warn("upstream verdict inconsistency", "error", warning)
		} else {
			s.logger.Warn("snapshot warning", "error", warning)
		}
	}

	emitted := 0
	for _, tr := range transitions {
		if err := s.emit(ctx, tr); err != nil {
			return emitted, fmt.Errorf("emit transition for %s: %w", tr.cand.Subm.ID, err)
		}
		emitted++
	}

	if emitted > 0 {
		s.logger.Info("tick produced events", "events", emitted, "last_token", s.lastToken.Load())
	}
	return emitted, nil
}

func (s *FeedSrvc) emit(ctx context.Context, tr transition) error {
	var ev ccs.Event
	switch tr.kind {
	case transNewSubmission:
		data, err := json.Marshal(tr.cand.Subm)
		if err != nil {
			return fmt.Errorf("encode submission: %w", err)
		}
		ev = ccs.Event{Type: ccs.EvSubmissions, Op: ccs.OpCreate, ID: tr.cand.Subm.ID, Data: data}
		s.logger.Info("new submission",
			"id", tr.cand.Subm.ID, "team", tr.cand.Subm.TeamID, "problem", tr.cand.Subm.ProblemID)
	case transNewJudgement:
		data, err := json.Marshal(tr.cand.Judg)
		if err != nil {
			return fmt.Errorf("encode judgement: %w", err)
		}
		ev = ccs.Event{Type: ccs.EvJudgements, Op: ccs.OpCreate, ID: tr.cand.Judg.ID, Data: data}
	case transVerdictChanged:
		data, err := json.Marshal(tr.cand.Judg)
		if err != nil {
			return fmt.Errorf("encode judgement: %w", err)
		}
		ev = ccs.Event{Type: ccs.EvJudgements, Op: ccs.OpUpdate, ID: tr.cand.Judg.ID, Data: data}
		s.logger.Info("judgement verdict",
			"submission", tr.cand.Subm.ID,
			"was", tr.oldVerdict, "verdict", tr.cand.Judg.JudgementTypeID)
	default:
		return fmt.Errorf("unknown transition kind %d", tr.kind)
	}

	ev.Token = s.lastToken.Load() + 1
	if err := s.repo.AppendEvent(ctx, ev); err != nil {
		return err
	}
	s.lastToken.Store(ev.Token)
	s.notify()
	return nil
}

func (s *FeedSrvc) appendObject(ctx context.Context, evType, id string, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", evType, id, err)
	}
	ev := ccs.Event{
		Token: s.lastToken.Load() + 1,
		Type:  evType,
		Op:    ccs.OpCreate,
		ID:    id,
		Data:  data,
	}
	if err := s.repo.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("append %s %s: %w", evType, id, err)
	}
	s.lastToken.Store(ev.Token)
	s.notify()
	return nil
}
