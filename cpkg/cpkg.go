// Package cpkg loads a static contest package directory: contest.yaml,
// problems.yaml and teams.json. The package is the authoritative universe of
// contest, problem and team identifiers served over the Contest API.
package cpkg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/contest-ops/ccsfeed/ccs"
	"gopkg.in/yaml.v3"
)

type rawContest struct {
	ID                       string `yaml:"id"`
	Name                     string `yaml:"name"`
	FormalName               string `yaml:"formal_name"`
	StartTime                string `yaml:"start_time"`
	Duration                 string `yaml:"duration"`
	ScoreboardFreezeDuration string `yaml:"scoreboard_freeze_duration"`
	PenaltyTime              int    `yaml:"penalty_time"`
}

type rawProblem struct {
	ID            string  `yaml:"id"`
	Label         string  `yaml:"label"`
	Name          string  `yaml:"name"`
	RGB           string  `yaml:"rgb"`
	Color         string  `yaml:"color"`
	TimeLimit     float64 `yaml:"time_limit"`
	TestDataCount int     `yaml:"test_data_count"`
}

type rawTeam struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	GroupIDs       []string `json:"group_ids"`
	OrganizationID string   `json:"organization_id"`
	ICPCID         string   `json:"icpc_id"`
}

type Package struct {
	contest  rawContest
	problems []rawProblem
	teams    []rawTeam

	startTime time.Time
	duration  time.Duration
	freeze    time.Duration
}

// Load reads contest.yaml and problems.yaml (required) and teams.json
// (optional) from dir.
func Load(dir string) (*Package, error) {
	p := &Package{}

	contestRaw, err := os.ReadFile(filepath.Join(dir, "contest.yaml"))
	if err != nil {
		return nil, fmt.Errorf("read contest.yaml: %w", err)
	}
	if err := yaml.Unmarshal(contestRaw, &p.contest); err != nil {
		return nil, fmt.Errorf("parse contest.yaml: %w", err)
	}

	problemsRaw, err := os.ReadFile(filepath.Join(dir, "problems.yaml"))
	if err != nil {
		return nil, fmt.Errorf("read problems.yaml: %w", err)
	}
	if err := yaml.Unmarshal(problemsRaw, &p.problems); err != nil {
		return nil, fmt.Errorf("parse problems.yaml: %w", err)
	}

	teamsRaw, err := os.ReadFile(filepath.Join(dir, "teams.json"))
	if err == nil {
		if err := json.Unmarshal(teamsRaw, &p.teams); err != nil {
			return nil, fmt.Errorf("parse teams.json: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read teams.json: %w", err)
	}

	if p.contest.StartTime != "" {
		t, err := time.Parse(time.RFC3339, p.contest.StartTime)
		if err != nil {
			return nil, fmt.Errorf("parse contest start_time: %w", err)
		}
		p.startTime = t
	}

	p.duration, err = ParseDuration(valueOr(p.contest.Duration, "5:00:00"))
	if err != nil {
		return nil, fmt.Errorf("parse contest duration: %w", err)
	}
	p.freeze, err = ParseDuration(valueOr(p.contest.ScoreboardFreezeDuration, "1:00:00"))
	if err != nil {
		return nil, fmt.Errorf("parse scoreboard freeze duration: %w", err)
	}

	return p, nil
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ParseDuration parses contest package durations: "H:MM:SS", "MM:SS" or
// plain seconds.
func ParseDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	var total int64
	for _, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

func (p *Package) ContestID() string { return p.contest.ID }

// StartTime returns the contest start, or the zero time when the package
// does not declare one.
func (p *Package) StartTime() time.Time { return p.startTime }

func (p *Package) Duration() time.Duration { return p.duration }

func (p *Package) Contest() ccs.Contest {
	start := ""
	if !p.startTime.IsZero() {
		start = ccs.FormatTime(p.startTime)
	}
	name := valueOr(p.contest.Name, p.contest.FormalName)
	formal := valueOr(p.contest.FormalName, p.contest.Name)
	penalty := p.contest.PenaltyTime
	if penalty == 0 {
		penalty = 20
	}
	return ccs.Contest{
		ID:                       p.contest.ID,
		Name:                     name,
		FormalName:               formal,
		StartTime:                start,
		Duration:                 ccs.FormatRelTime(p.duration),
		ScoreboardFreezeDuration: ccs.FormatRelTime(p.freeze),
		PenaltyTime:              penalty,
	}
}

// Problems returns the problem table; ordinals follow file order.
func (p *Package) Problems() []ccs.Problem {
	out := make([]ccs.Problem, 0, len(p.problems))
	for i, prob := range p.problems {
		out = append(out, ccs.Problem{
			ID:            prob.ID,
			Label:         prob.Label,
			Name:          prob.Name,
			Ordinal:       i,
			RGB:           valueOr(prob.RGB, "#000000"),
			Color:         valueOr(prob.Color, "black"),
			TimeLimit:     timeLimitOr(prob.TimeLimit, 1.0),
			TestDataCount: testCountOr(prob.TestDataCount, 1),
		})
	}
	return out
}

func timeLimitOr(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func testCountOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func (p *Package) ProblemByID(id string) (ccs.Problem, bool) {
	for _, prob := range p.Problems() {
		if prob.ID == id {
			return prob, true
		}
	}
	return ccs.Problem{}, false
}

func (p *Package) ProblemByLabel(label string) (ccs.Problem, bool) {
	for _, prob := range p.Problems() {
		if prob.Label == label {
			return prob, true
		}
	}
	return ccs.Problem{}, false
}

func (p *Package) Teams() []ccs.Team {
	out := make([]ccs.Team, 0, len(p.teams))
	for _, team := range p.teams {
		groupIDs := team.GroupIDs
		if groupIDs == nil {
			groupIDs = []string{}
		}
		out = append(out, ccs.Team{
			ID:             team.ID,
			Name:           team.Name,
			DisplayName:    valueOr(team.DisplayName, team.Name),
			GroupIDs:       groupIDs,
			OrganizationID: team.OrganizationID,
			ICPCID:         team.ICPCID,
		})
	}
	return out
}

func (p *Package) TeamByID(id string) (ccs.Team, bool) {
	for _, team := range p.Teams() {
		if team.ID == id {
			return team, true
		}
	}
	return ccs.Team{}, false
}
