// Package algotester talks to the Algotester scoreboard API and turns its
// rows into normalized submission/judgement candidates for the feed engine.
package algotester

import (
	"encoding/json"
	"strings"
)

// Snapshot is one parsed scoreboard poll.
type Snapshot struct {
	Rows []Row `json:"rows"`
}

// Row is one scoreboard row (one team) in normalized form.
type Row struct {
	TeamID       string          `json:"team_id"`
	TeamName     string          `json:"team_name"`
	Rank         int             `json:"rank"`
	Score        int             `json:"score"`
	PenaltyMs    float64         `json:"penalty_ms"`
	IsUnofficial bool            `json:"is_unofficial"`
	Group        string          `json:"group"`
	Results      map[string]Cell `json:"results"`
}

// Cell is one team/problem result. Attempts counts rejected attempts only;
// an accepted solve adds one more submission on top.
type Cell struct {
	IsAccepted      bool    `json:"is_accepted"`
	Attempts        int     `json:"attempts"`
	PendingAttempts int     `json:"pending_attempts"`
	TimeMs          float64 `json:"time_ms"`
	PenaltyMs       float64 `json:"penalty_ms"`
	IsFirstAccepted bool    `json:"is_first_accepted"`
}

type wireText struct {
	Text string `json:"Text"`
}

type wireCell struct {
	IsAccepted        bool    `json:"IsAccepted"`
	Attempts          int     `json:"Attempts"`
	PendingAttempts   int     `json:"PendingAttempts"`
	LastImprovementMs float64 `json:"LastImprovementMs"`
	PenaltyMs         float64 `json:"PenaltyMs"`
	IsFirstAccepted   bool    `json:"IsFirstAccepted"`
}

type wireRow struct {
	ID           json.Number         `json:"Id"`
	Contestant   wireText            `json:"Contestant"`
	Rank         int                 `json:"Rank"`
	Score        int                 `json:"Score"`
	PenaltyMs    float64             `json:"PenaltyMs"`
	IsUnofficial bool                `json:"IsUnofficial"`
	Group        wireText            `json:"Group"`
	Results      map[string]wireCell `json:"Results"`
}

func parseRow(w wireRow) Row {
	results := make(map[string]Cell, len(w.Results))
	for problemID, cell := range w.Results {
		results[problemID] = Cell{
			IsAccepted:      cell.IsAccepted,
			Attempts:        cell.Attempts,
			PendingAttempts: cell.PendingAttempts,
			TimeMs:          cell.LastImprovementMs,
			PenaltyMs:       cell.PenaltyMs,
			IsFirstAccepted: cell.IsFirstAccepted,
		}
	}
	return Row{
		TeamID:       w.ID.String(),
		TeamName:     strings.TrimSpace(w.Contestant.Text),
		Rank:         w.Rank,
		Score:        w.Score,
		PenaltyMs:    w.PenaltyMs,
		IsUnofficial: w.IsUnofficial,
		Group:        w.Group.Text,
		Results:      results,
	}
}
