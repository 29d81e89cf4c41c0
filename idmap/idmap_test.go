package idmap_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contest-ops/ccsfeed/idmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndMap(t *testing.T) {
	dir := t.TempDir()
	teamPath := filepath.Join(dir, "team_mapping.yaml")
	problemPath := filepath.Join(dir, "problem_mapping.yaml")

	require.NoError(t, os.WriteFile(teamPath, []byte("\"1042\": t1\n\"1043\": t2\n"), 0644))
	require.NoError(t, os.WriteFile(problemPath, []byte("\"10197\": accession\n"), 0644))

	m, err := idmap.Load(teamPath, problemPath)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TeamCount())
	assert.Equal(t, 1, m.ProblemCount())

	teamID, err := m.TeamID("1042")
	require.NoError(t, err)
	assert.Equal(t, "t1", teamID)

	problemID, err := m.ProblemID("10197")
	require.NoError(t, err)
	assert.Equal(t, "accession", problemID)
}

func TestUnmappedIdentifier(t *testing.T) {
	m := idmap.New(map[string]string{"1042": "t1"}, nil)

	_, err := m.TeamID("9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, idmap.ErrUnmapped))
	assert.Contains(t, err.Error(), "9999")

	_, err = m.ProblemID("10197")
	assert.True(t, errors.Is(err, idmap.ErrUnmapped))
}

func TestMissingFilesYieldEmptyMapper(t *testing.T) {
	dir := t.TempDir()
	m, err := idmap.Load(filepath.Join(dir, "absent.yaml"), filepath.Join(dir, "absent2.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.TeamCount())
	assert.Equal(t, 0, m.ProblemCount())
}
