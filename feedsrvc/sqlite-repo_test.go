package feedsrvc_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/contest-ops/ccsfeed/ccs"
	"github.com/contest-ops/ccsfeed/feedsrvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestSqliteRepoAppendAndRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "feed.db")

	repo, err := feedsrvc.NewSqliteRepo(path)
	require.NoError(t, err)
	defer repo.Close()

	subm := ccs.Submission{ID: "t1-p1-1", TeamID: "t1", ProblemID: "p1", LanguageID: "cpp",
		Time: "2024-11-24T10:20:00.000Z", ContestTime: "0:20:00.000"}
	require.NoError(t, repo.AppendEvent(ctx, ccs.Event{
		Token: 1, Type: ccs.EvSubmissions, Op: ccs.OpCreate, ID: subm.ID, Data: mustJSON(t, subm),
	}))

	judg := ccs.Judgement{ID: "t1-p1-1-j", SubmissionID: "t1-p1-1", JudgementTypeID: ccs.VerdictAC,
		StartTime: subm.Time, StartContestTime: subm.ContestTime,
		EndTime: subm.Time, EndContestTime: subm.ContestTime}
	require.NoError(t, repo.AppendEvent(ctx, ccs.Event{
		Token: 2, Type: ccs.EvJudgements, Op: ccs.OpCreate, ID: judg.ID, Data: mustJSON(t, judg),
	}))

	last, err := repo.LastToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)

	count, err := repo.EventCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	events, err := repo.ReadEventsFrom(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Token)
	assert.Equal(t, ccs.EvSubmissions, events[0].Type)

	gotSubm, err := repo.Submission(ctx, "t1-p1-1")
	require.NoError(t, err)
	require.NotNil(t, gotSubm)
	assert.Equal(t, subm, *gotSubm)

	gotJudg, err := repo.JudgementBySubmission(ctx, "t1-p1-1")
	require.NoError(t, err)
	require.NotNil(t, gotJudg)
	assert.Equal(t, judg, *gotJudg)
}

func TestSqliteRepoRejectsTokenGap(t *testing.T) {
	ctx := context.Background()
	repo, err := feedsrvc.NewSqliteRepo(filepath.Join(t.TempDir(), "feed.db"))
	require.NoError(t, err)
	defer repo.Close()

	contest := ccs.Contest{ID: "c1"}
	require.NoError(t, repo.AppendEvent(ctx, ccs.Event{
		Token: 1, Type: ccs.EvContests, Op: ccs.OpCreate, ID: "c1", Data: mustJSON(t, contest),
	}))

	err = repo.AppendEvent(ctx, ccs.Event{
		Token: 3, Type: ccs.EvContests, Op: ccs.OpCreate, ID: "c1", Data: mustJSON(t, contest),
	})
	require.Error(t, err)

	// The failed append changed nothing.
	count, err := repo.EventCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	last, err := repo.LastToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), last)
}

func TestSqliteRepoJudgementUpdateKeepsOneRowPerSubmission(t *testing.T) {
	ctx := context.Background()
	repo, err := feedsrvc.NewSqliteRepo(filepath.Join(t.TempDir(), "feed.db"))
	require.NoError(t, err)
	defer repo.Close()

	pending := ccs.Judgement{ID: "s1-j", SubmissionID: "s1",
		StartTime: "2024-11-24T10:20:00.000Z", StartContestTime: "0:20:00.000"}
	require.NoError(t, repo.AppendEvent(ctx, ccs.Event{
		Token: 1, Type: ccs.EvJudgements, Op: ccs.OpCreate, ID: pending.ID, Data: mustJSON(t, pending),
	}))

	final := pending
	final.JudgementTypeID = ccs.VerdictWA
	final.EndTime = "2024-11-24T10:25:00.000Z"
	final.EndContestTime = "0:25:00.000"
	require.NoError(t, repo.AppendEvent(ctx, ccs.Event{
		Token: 2, Type: ccs.EvJudgements, Op: ccs.OpUpdate, ID: final.ID, Data: mustJSON(t, final),
	}))

	judgs, err := repo.Judgements(ctx)
	require.NoError(t, err)
	require.Len(t, judgs, 1)
	assert.Equal(t, ccs.VerdictWA, judgs[0].JudgementTypeID)
}

func TestSqliteRepoSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "feed.db")

	repo, err := feedsrvc.NewSqliteRepo(path)
	require.NoError(t, err)

	subm := ccs.Submission{ID: "t1-p1-1", TeamID: "t1", ProblemID: "p1", LanguageID: "cpp",
		Time: "2024-11-24T10:20:00.000Z", ContestTime: "0:20:00.000"}
	require.NoError(t, repo.AppendEvent(ctx, ccs.Event{
		Token: 1, Type: ccs.EvSubmissions, Op: ccs.OpCreate, ID: subm.ID, Data: mustJSON(t, subm),
	}))
	require.NoError(t, repo.Close())

	reopened, err := feedsrvc.NewSqliteRepo(path)
	require.NoError(t, err)
	defer reopened.Close()

	// The service starts clean over the reopened store and can keep appending.
	srvc, err := feedsrvc.NewFeedSrvc(reopened, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), srvc.LastToken())

	subms, err := reopened.Submissions(ctx)
	require.NoError(t, err)
	require.Len(t, subms, 1)
	assert.Equal(t, "t1-p1-1", subms[0].ID)
}
