// Package idmap translates scoreboard entity identifiers into contest
// package identifiers. Mappings are generated out of process (cmd/mapgen)
// and loaded once at startup; they never change for the process lifetime.
package idmap

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnmapped is returned when a scoreboard identifier has no mapping entry.
// Callers must treat it as per-record: skip the record and continue.
var ErrUnmapped = errors.New("unmapped identifier")

type Mapper struct {
	teams    map[string]string
	problems map[string]string
}

// Load reads the team and problem mapping files. A missing file yields an
// empty mapping rather than an error, matching how a fresh deployment starts
// before mapgen has been run.
func Load(teamPath, problemPath string) (*Mapper, error) {
	teams, err := loadMappingFile(teamPath)
	if err != nil {
		return nil, fmt.Errorf("load team mapping: %w", err)
	}
	problems, err := loadMappingFile(problemPath)
	if err != nil {
		return nil, fmt.Errorf("load problem mapping: %w", err)
	}
	return &Mapper{teams: teams, problems: problems}, nil
}

// New builds a mapper from in-memory tables.
func New(teams, problems map[string]string) *Mapper {
	if teams == nil {
		teams = map[string]string{}
	}
	if problems == nil {
		problems = map[string]string{}
	}
	return &Mapper{teams: teams, problems: problems}
}

func loadMappingFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	mapping := map[string]string{}
	if err := yaml.Unmarshal(raw, &mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// TeamID maps a scoreboard team id to a contest package team id.
func (m *Mapper) TeamID(externalID string) (string, error) {
	id, ok := m.teams[externalID]
	if !ok {
		return "", fmt.Errorf("team %q: %w", externalID, ErrUnmapped)
	}
	return id, nil
}

// ProblemID maps a scoreboard problem id to a contest package problem id.
func (m *Mapper) ProblemID(externalID string) (string, error) {
	id, ok := m.problems[externalID]
	if !ok {
		return "", fmt.Errorf("problem %q: %w", externalID, ErrUnmapped)
	}
	return id, nil
}

func (m *Mapper) TeamCount() int    { return len(m.teams) }
func (m *Mapper) ProblemCount() int { return len(m.problems) }
