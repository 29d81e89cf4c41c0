package feedsrvc

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/contest-ops/ccsfeed/ccs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// sqliteRepo persists the event log, last-known state and token counter in
// one SQLite file. WAL mode lets feed readers run concurrently with the
// single writer.
type sqliteRepo struct {
	db *sql.DB
}

// NewSqliteRepo creates or opens the store at path.
func NewSqliteRepo(path string) (Repo, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to store: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY on the write path.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &sqliteRepo{db: db}, nil
}

// AppendEvent implements Repo. The event insert, the entity upsert and the
// token counter advance commit as one transaction.
func (r *sqliteRepo) AppendEvent(ctx context.Context, ev ccs.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var last int64
	if err := tx.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = 'last_token'`).Scan(&last); err != nil {
		return fmt.Errorf("read token counter: %w", err)
	}
	if ev.Token != last+1 {
		return fmt.Errorf("append token %d does not follow last token %d", ev.Token, last)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events (token, id, type, op, data) VALUES (?, ?, ?, ?, ?)
	`, ev.Token, ev.ID, ev.Type, ev.Op, string(ev.Data)); err != nil {
		return fmt.Errorf("insert event %d: %w", ev.Token, err)
	}

	switch ev.Type {
	case ccs.EvSubmissions:
		var subm ccs.Submission
		if err := json.Unmarshal(ev.Data, &subm); err != nil {
			return fmt.Errorf("decode submission payload: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO submissions (id, team_id, problem_id, language_id, time, contest_time)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				team_id = excluded.team_id,
				problem_id = excluded.problem_id,
				language_id = excluded.language_id,
				time = excluded.time,
				contest_time = excluded.contest_time
		`, subm.ID, subm.TeamID, subm.ProblemID, subm.LanguageID, subm.Time, subm.ContestTime); err != nil {
			return fmt.Errorf("upsert submission %s: %w", subm.ID, err)
		}
	case ccs.EvJudgements:
		var judg ccs.Judgement
		if err := json.Unmarshal(ev.Data, &judg); err != nil {
			return fmt.Errorf("decode judgement payload: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO judgements (id, submission_id, judgement_type_id,
				start_time, start_contest_time, end_time, end_contest_time)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				judgement_type_id = excluded.judgement_type_id,
				end_time = excluded.end_time,
				end_contest_time = excluded.end_contest_time
		`, judg.ID, judg.SubmissionID, judg.JudgementTypeID,
			judg.StartTime, judg.StartContestTime, judg.EndTime, judg.EndContestTime); err != nil {
			return fmt.Errorf("upsert judgement %s: %w", judg.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE meta SET v = ? WHERE k = 'last_token'`, ev.Token); err != nil {
		return fmt.Errorf("advance token counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// ReadEventsFrom implements Repo.
func (r *sqliteRepo) ReadEventsFrom(ctx context.Context, from int64) ([]ccs.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT token, id, type, op, data FROM events
		WHERE token >= ?
		ORDER BY token ASC
	`, from)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []ccs.Event
	for rows.Next() {
		var ev ccs.Event
		var data string
		if err := rows.Scan(&ev.Token, &ev.ID, &ev.Type, &ev.Op, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Data = json.RawMessage(data)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func (r *sqliteRepo) LastToken(ctx context.Context) (int64, error) {
	var last int64
	if err := r.db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = 'last_token'`).Scan(&last); err != nil {
		return 0, fmt.Errorf("read token counter: %w", err)
	}
	return last, nil
}

func (r *sqliteRepo) EventCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func (r *sqliteRepo) Submission(ctx context.Context, id string) (*ccs.Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, team_id, problem_id, language_id, time, contest_time
		FROM submissions WHERE id = ?
	`, id)
	var subm ccs.Submission
	err := row.Scan(&subm.ID, &subm.TeamID, &subm.ProblemID, &subm.LanguageID, &subm.Time, &subm.ContestTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission %s: %w", id, err)
	}
	return &subm, nil
}

func (r *sqliteRepo) Submissions(ctx context.Context) ([]ccs.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, problem_id, language_id, time, contest_time
		FROM submissions
		ORDER BY contest_time ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []ccs.Submission
	for rows.Next() {
		var subm ccs.Submission
		if err := rows.Scan(&subm.ID, &subm.TeamID, &subm.ProblemID, &subm.LanguageID, &subm.Time, &subm.ContestTime); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, subm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

func (r *sqliteRepo) Judgement(ctx context.Context, id string) (*ccs.Judgement, error) {
	return r.scanJudgement(r.db.QueryRowContext(ctx, `
		SELECT id, submission_id, judgement_type_id, start_time, start_contest_time, end_time, end_contest_time
		FROM judgements WHERE id = ?
	`, id))
}

func (r *sqliteRepo) JudgementBySubmission(ctx context.Context, submissionID string) (*ccs.Judgement, error) {
	return r.scanJudgement(r.db.QueryRowContext(ctx, `
		SELECT id, submission_id, judgement_type_id, start_time, start_contest_time, end_time, end_contest_time
		FROM judgements WHERE submission_id = ?
	`, submissionID))
}

func (r *sqliteRepo) scanJudgement(row *sql.Row) (*ccs.Judgement, error) {
	var judg ccs.Judgement
	err := row.Scan(&judg.ID, &judg.SubmissionID, &judg.JudgementTypeID,
		&judg.StartTime, &judg.StartContestTime, &judg.EndTime, &judg.EndContestTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan judgement: %w", err)
	}
	return &judg, nil
}

func (r *sqliteRepo) Judgements(ctx context.Context) ([]ccs.Judgement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, submission_id, judgement_type_id, start_time, start_contest_time, end_time, end_contest_time
		FROM judgements
		ORDER BY start_contest_time ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query judgements: %w", err)
	}
	defer rows.Close()

	var out []ccs.Judgement
	for rows.Next() {
		var judg ccs.Judgement
		if err := rows.Scan(&judg.ID, &judg.SubmissionID, &judg.JudgementTypeID,
			&judg.StartTime, &judg.StartContestTime, &judg.EndTime, &judg.EndContestTime); err != nil {
			return nil, fmt.Errorf("scan judgement: %w", err)
		}
		out = append(out, judg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate judgements: %w", err)
	}
	return out, nil
}

func (r *sqliteRepo) Close() error { return r.db.Close() }
