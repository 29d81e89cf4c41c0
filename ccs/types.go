package ccs

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Event types as they appear in the event feed.
const (
	EvContests       = "contests"
	EvJudgementTypes = "judgement-types"
	EvLanguages      = "languages"
	EvProblems       = "problems"
	EvTeams          = "teams"
	EvState          = "state"
	EvSubmissions    = "submissions"
	EvJudgements     = "judgements"
)

const (
	OpCreate = "create"
	OpUpdate = "update"
)

// Verdict identifiers (judgement type ids). An empty verdict means the
// judgement is still pending.
const (
	VerdictAC      = "AC"
	VerdictWA      = "WA"
	VerdictTLE     = "TLE"
	VerdictRTE     = "RTE"
	VerdictCE      = "CE"
	VerdictPending = ""
)

// Event is one record of the event feed. Tokens are assigned contiguously
// from 1 and serialized as decimal strings on the wire.
type Event struct {
	Token int64
	Type  string
	Op    string
	ID    string
	Data  json.RawMessage
}

type eventWire struct {
	Token string          `json:"token"`
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Op    string          `json:"op"`
	Data  json.RawMessage `json:"data"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{
		Token: strconv.FormatInt(e.Token, 10),
		ID:    e.ID,
		Type:  e.Type,
		Op:    e.Op,
		Data:  e.Data,
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	token, err := strconv.ParseInt(w.Token, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid event token %q: %w", w.Token, err)
	}
	*e = Event{Token: token, Type: w.Type, Op: w.Op, ID: w.ID, Data: w.Data}
	return nil
}

type Submission struct {
	ID          string `json:"id"`
	TeamID      string `json:"team_id"`
	ProblemID   string `json:"problem_id"`
	LanguageID  string `json:"language_id"`
	Time        string `json:"time"`
	ContestTime string `json:"contest_time"`
}

type Judgement struct {
	ID               string `json:"id"`
	SubmissionID     string `json:"submission_id"`
	JudgementTypeID  string `json:"judgement_type_id,omitempty"`
	StartTime        string `json:"start_time"`
	StartContestTime string `json:"start_contest_time"`
	EndTime          string `json:"end_time,omitempty"`
	EndContestTime   string `json:"end_contest_time,omitempty"`
}

// Pending reports whether the judgement has no terminal verdict yet.
func (j Judgement) Pending() bool {
	return j.JudgementTypeID == VerdictPending
}

type JudgementType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Penalty bool   `json:"penalty"`
	Solved  bool   `json:"solved"`
}

type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Problem struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	Name          string  `json:"name"`
	Ordinal       int     `json:"ordinal"`
	RGB           string  `json:"rgb"`
	Color         string  `json:"color"`
	TimeLimit     float64 `json:"time_limit"`
	TestDataCount int     `json:"test_data_count"`
}

type Team struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	GroupIDs       []string `json:"group_ids"`
	OrganizationID string   `json:"organization_id,omitempty"`
	ICPCID         string   `json:"icpc_id,omitempty"`
}

type Contest struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	FormalName               string `json:"formal_name"`
	StartTime                string `json:"start_time"`
	Duration                 string `json:"duration"`
	ScoreboardFreezeDuration string `json:"scoreboard_freeze_duration"`
	PenaltyTime              int    `json:"penalty_time"`
}

// State is the contest state object; all fields are nullable timestamps.
type State struct {
	Started      *string `json:"started"`
	Ended        *string `json:"ended"`
	Frozen       *string `json:"frozen"`
	Thawed       *string `json:"thawed"`
	Finalized    *string `json:"finalized"`
	EndOfUpdates *string `json:"end_of_updates"`
}

// JudgementTypes returns the verdict table served by the bridge.
func JudgementTypes() []JudgementType {
	return []JudgementType{
		{ID: VerdictAC, Name: "Accepted", Penalty: false, Solved: true},
		{ID: VerdictWA, Name: "Wrong Answer", Penalty: true, Solved: false},
		{ID: VerdictTLE, Name: "Time Limit Exceeded", Penalty: true, Solved: false},
		{ID: VerdictRTE, Name: "Run-Time Error", Penalty: true, Solved: false},
		{ID: VerdictCE, Name: "Compile Error", Penalty: false, Solved: false},
	}
}

// Languages returns the language table served by the bridge. The scoreboard
// does not expose per-submission languages, so submissions default to cpp.
func Languages() []Language {
	return []Language{
		{ID: "c", Name: "C"},
		{ID: "cpp", Name: "C++"},
		{ID: "java", Name: "Java"},
		{ID: "kotlin", Name: "Kotlin"},
		{ID: "python3", Name: "Python 3"},
	}
}
