package cpkg_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contest-ops/ccsfeed/cpkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePackage(t *testing.T, withTeams bool) string {
	t.Helper()
	dir := t.TempDir()

	contest := `id: nwerc24
name: NWERC 2024
formal_name: The Northwestern Europe Regional Contest 2024
start_time: "2024-11-24T10:00:00+01:00"
duration: "5:00:00"
scoreboard_freeze_duration: "1:00:00"
penalty_time: 20
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contest.yaml"), []byte(contest), 0644))

	problems := `- id: accession
  label: A
  name: Accession
  rgb: "#FF0000"
  color: red
  time_limit: 2.0
  test_data_count: 25
- id: brexit
  label: B
  name: Brexit Negotiations
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "problems.yaml"), []byte(problems), 0644))

	if withTeams {
		teams := `[{"id":"t1","name":"Gennady's Fan Club","group_ids":["official"],"organization_id":"u-lv","icpc_id":"449111"},
{"id":"t2","name":"Segfault Hunters","display_name":"Segfault Hunters (RTU)"}]`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "teams.json"), []byte(teams), 0644))
	}

	return dir
}

func TestLoadContest(t *testing.T) {
	pkg, err := cpkg.Load(writePackage(t, true))
	require.NoError(t, err)

	contest := pkg.Contest()
	assert.Equal(t, "nwerc24", contest.ID)
	assert.Equal(t, "NWERC 2024", contest.Name)
	assert.Equal(t, "2024-11-24T10:00:00.000+01:00", contest.StartTime)
	assert.Equal(t, "5:00:00.000", contest.Duration)
	assert.Equal(t, "1:00:00.000", contest.ScoreboardFreezeDuration)
	assert.Equal(t, 20, contest.PenaltyTime)
	assert.Equal(t, 5*time.Hour, pkg.Duration())
}

func TestLoadProblems(t *testing.T) {
	pkg, err := cpkg.Load(writePackage(t, true))
	require.NoError(t, err)

	problems := pkg.Problems()
	require.Len(t, problems, 2)
	assert.Equal(t, 0, problems[0].Ordinal)
	assert.Equal(t, "A", problems[0].Label)
	assert.Equal(t, 2.0, problems[0].TimeLimit)

	// Defaults for omitted fields.
	assert.Equal(t, 1, problems[1].Ordinal)
	assert.Equal(t, "#000000", problems[1].RGB)
	assert.Equal(t, 1.0, problems[1].TimeLimit)
	assert.Equal(t, 1, problems[1].TestDataCount)

	byLabel, ok := pkg.ProblemByLabel("B")
	require.True(t, ok)
	assert.Equal(t, "brexit", byLabel.ID)

	_, ok = pkg.ProblemByID("missing")
	assert.False(t, ok)
}

func TestLoadTeams(t *testing.T) {
	pkg, err := cpkg.Load(writePackage(t, true))
	require.NoError(t, err)

	teams := pkg.Teams()
	require.Len(t, teams, 2)
	assert.Equal(t, "Gennady's Fan Club", teams[0].DisplayName, "display name falls back to name")
	assert.Equal(t, []string{"official"}, teams[0].GroupIDs)
	assert.Equal(t, "Segfault Hunters (RTU)", teams[1].DisplayName)
	assert.Equal(t, []string{}, teams[1].GroupIDs)

	team, ok := pkg.TeamByID("t2")
	require.True(t, ok)
	assert.Equal(t, "Segfault Hunters", team.Name)
}

func TestLoadWithoutTeamsFile(t *testing.T) {
	pkg, err := cpkg.Load(writePackage(t, false))
	require.NoError(t, err)
	assert.Empty(t, pkg.Teams())
}

func TestParseDuration(t *testing.T) {
	for input, want := range map[string]time.Duration{
		"5:00:00": 5 * time.Hour,
		"90:00":   90 * time.Minute,
		"45":      45 * time.Second,
		"0:30:15": 30*time.Minute + 15*time.Second,
	} {
		got, err := cpkg.ParseDuration(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := cpkg.ParseDuration("not-a-duration")
	assert.Error(t, err)
}
