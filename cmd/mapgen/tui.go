package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/contest-ops/ccsfeed/algotester"
	"github.com/contest-ops/ccsfeed/ccs"
	"github.com/contest-ops/ccsfeed/cpkg"
)

type phase int

const (
	phaseFetching phase = iota
	phaseProblems
	phaseTeams
	phaseDone
)

type fetchResultMsg struct {
	problemIDs []string
	rows       []algotester.Row
	err        error
}

type model struct {
	phase     phase
	fetcher   *algotester.Fetcher
	contestID int
	spinner   spinner.Model
	err       error

	upstreamProblems []string
	upstreamTeams    []algotester.Row
	pkgProblems      []ccs.Problem
	pkgTeams         []ccs.Team

	idx    int // upstream entity being mapped
	cursor int // highlighted package entity; len(choices) means skip

	problemMapping map[string]string
	teamMapping    map[string]string
}

func initialModel(fetcher *algotester.Fetcher, contestID int, pkg *cpkg.Package) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))

	return model{
		phase:          phaseFetching,
		fetcher:        fetcher,
		contestID:      contestID,
		spinner:        s,
		pkgProblems:    pkg.Problems(),
		pkgTeams:       pkg.Teams(),
		problemMapping: map[string]string{},
		teamMapping:    map[string]string{},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchUpstream())
}

func (m model) fetchUpstream() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		problemIDs, err := m.fetcher.FetchProblemIDs(ctx)
		if err != nil {
			return fetchResultMsg{err: fmt.Errorf("fetch problem list: %w", err)}
		}
		snap, err := m.fetcher.FetchScoreboard(ctx)
		if err != nil {
			return fetchResultMsg{err: fmt.Errorf("fetch scoreboard: %w", err)}
		}
		if len(snap.Rows) == 0 {
			return fetchResultMsg{err: fmt.Errorf("scoreboard is empty, nothing to map")}
		}

		rows := make([]algotester.Row, len(snap.Rows))
		copy(rows, snap.Rows)
		sort.Slice(rows, func(i, j int) bool { return rows[i].TeamID < rows[j].TeamID })

		return fetchResultMsg{problemIDs: problemIDs, rows: rows}
	}
}

func (m model) choiceCount() int {
	if m.phase == phaseProblems {
		return len(m.pkgProblems)
	}
	return len(m.pkgTeams)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseFetching:
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" || msg.String() == "q" {
				return m, tea.Quit
			}
		case fetchResultMsg:
			if msg.err != nil {
				m.err = msg.err
				return m, tea.Quit
			}
			m.upstreamProblems = msg.problemIDs
			m.upstreamTeams = msg.rows
			m.phase = phaseProblems
			if len(m.upstreamProblems) == 0 {
				m.phase = phaseTeams
			}
			m.cursor = m.preselect()
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case phaseProblems, phaseTeams:
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				// One slot past the last choice means "skip".
				if m.cursor < m.choiceCount() {
					m.cursor++
				}
			case "s":
				return m.confirm(true)
			case "enter":
				return m.confirm(m.cursor == m.choiceCount())
			}
		}
	}
	return m, nil
}

// confirm records the selection for the current upstream entity and advances
// to the next one, changing phase when the current list runs out.
func (m model) confirm(skip bool) (tea.Model, tea.Cmd) {
	if !skip {
		switch m.phase {
		case phaseProblems:
			m.problemMapping[m.upstreamProblems[m.idx]] = m.pkgProblems[m.cursor].ID
		case phaseTeams:
			m.teamMapping[m.upstreamTeams[m.idx].TeamID] = m.pkgTeams[m.cursor].ID
		}
	}

	m.idx++
	switch m.phase {
	case phaseProblems:
		if m.idx >= len(m.upstreamProblems) {
			m.phase = phaseTeams
			m.idx = 0
		}
	case phaseTeams:
		if m.idx >= len(m.upstreamTeams) {
			m.phase = phaseDone
			return m, tea.Quit
		}
	}

	m.cursor = m.preselect()
	return m, nil
}

// preselect picks the default choice for the current upstream entity: an
// exact team-name match when one exists, otherwise the entity at the same
// position, which is right when both sides list entries in the same order.
func (m model) preselect() int {
	if m.phase == phaseTeams && m.idx < len(m.upstreamTeams) {
		name := m.upstreamTeams[m.idx].TeamName
		for i, t := range m.pkgTeams {
			if name != "" && (t.Name == name || t.DisplayName == name) {
				return i
			}
		}
	}
	if m.idx < m.choiceCount() {
		return m.idx
	}
	return m.choiceCount()
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e056fd"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d"))
)

func (m model) View() string {
	switch m.phase {
	case phaseFetching:
		if m.err != nil {
			return ""
		}
		return fmt.Sprintf("%s Fetching scoreboard for contest %d...\n", m.spinner.View(), m.contestID)
	case phaseDone:
		return "Mappings complete, writing files...\n"
	}

	var b strings.Builder

	switch m.phase {
	case phaseProblems:
		b.WriteString(headerStyle.Render(fmt.Sprintf(
			"Problem mapping (%d/%d)", m.idx+1, len(m.upstreamProblems))))
		b.WriteString(fmt.Sprintf("\n\nUpstream problem %s maps to:\n\n",
			activeStyle.Render(m.upstreamProblems[m.idx])))
		for i, p := range m.pkgProblems {
			b.WriteString(m.renderChoice(i, fmt.Sprintf("%s: %s (%s)", p.Label, p.Name, p.ID)))
		}
	case phaseTeams:
		row := m.upstreamTeams[m.idx]
		b.WriteString(headerStyle.Render(fmt.Sprintf(
			"Team mapping (%d/%d)", m.idx+1, len(m.upstreamTeams))))
		b.WriteString(fmt.Sprintf("\n\nUpstream team %s (%s) maps to:\n\n",
			activeStyle.Render(row.TeamID), row.TeamName))
		for i, t := range m.pkgTeams {
			name := t.DisplayName
			if name == "" {
				name = t.Name
			}
			b.WriteString(m.renderChoice(i, fmt.Sprintf("%s: %s", t.ID, name)))
		}
	}

	b.WriteString(m.renderChoice(m.choiceCount(), "Skip (no mapping)"))
	b.WriteString(dimStyle.Render("\nup/down to move, enter to confirm, s to skip, q to quit\n"))
	return b.String()
}

func (m model) renderChoice(i int, label string) string {
	if i == m.cursor {
		return activeStyle.Render("> "+label) + "\n"
	}
	return "  " + label + "\n"
}
