package feedsrvc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/contest-ops/ccsfeed/ccs"
)

// inMemRepo keeps the whole log in memory. Used by tests and by runs that
// explicitly opt out of persistence.
type inMemRepo struct {
	mu         sync.RWMutex
	events     []ccs.Event
	subms      map[string]ccs.Submission
	judgs      map[string]ccs.Judgement
	judgBySubm map[string]string
	lastToken  int64
}

func NewInMemRepo() Repo {
	return &inMemRepo{
		subms:      make(map[string]ccs.Submission),
		judgs:      make(map[string]ccs.Judgement),
		judgBySubm: make(map[string]string),
	}
}

// AppendEvent implements Repo.
func (r *inMemRepo) AppendEvent(ctx context.Context, ev ccs.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.Token != r.lastToken+1 {
		return fmt.Errorf("append token %d does not follow last token %d", ev.Token, r.lastToken)
	}

	switch ev.Type {
	case ccs.EvSubmissions:
		var subm ccs.Submission
		if err := json.Unmarshal(ev.Data, &subm); err != nil {
			return fmt.Errorf("decode submission payload: %w", err)
		}
		r.subms[subm.ID] = subm
	case ccs.EvJudgements:
		var judg ccs.Judgement
		if err := json.Unmarshal(ev.Data, &judg); err != nil {
			return fmt.Errorf("decode judgement payload: %w", err)
		}
		r.judgs[judg.ID] = judg
		r.judgBySubm[judg.SubmissionID] = judg.ID
	}

	r.events = append(r.events, ev)
	r.lastToken = ev.Token
	return nil
}

// ReadEventsFrom implements Repo.
func (r *inMemRepo) ReadEventsFrom(ctx context.Context, from int64) ([]ccs.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ccs.Event
	for _, ev := range r.events {
		if ev.Token >= from {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *inMemRepo) LastToken(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastToken, nil
}

func (r *inMemRepo) EventCount(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.events)), nil
}

func (r *inMemRepo) Submission(ctx context.Context, id string) (*ccs.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if subm, ok := r.subms[id]; ok {
		return &subm, nil
	}
	return nil, nil
}

func (r *inMemRepo) Submissions(ctx context.Context) ([]ccs.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ccs.Submission, 0, len(r.subms))
	for _, subm := range r.subms {
		out = append(out, subm)
	}
	return out, nil
}

func (r *inMemRepo) Judgement(ctx context.Context, id string) (*ccs.Judgement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if judg, ok := r.judgs[id]; ok {
		return &judg, nil
	}
	return nil, nil
}

func (r *inMemRepo) JudgementBySubmission(ctx context.Context, submissionID string) (*ccs.Judgement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.judgBySubm[submissionID]; ok {
		judg := r.judgs[id]
		return &judg, nil
	}
	return nil, nil
}

func (r *inMemRepo) Judgements(ctx context.Context) ([]ccs.Judgement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ccs.Judgement, 0, len(r.judgs))
	for _, judg := range r.judgs {
		out = append(out, judg)
	}
	return out, nil
}

func (r *inMemRepo) Close() error { return nil }
