package storage

import (
	"context"
	"database/sql"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"volgrader/internal/session"

	_ "modernc.org/sqlite"
)

const sqliteDriverKey = "sqlite"

// SQLiteSink stores session records in a local SQLite file.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens dsn and creates the tables when missing.
func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open(sqliteDriverKey, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		logs.Errorf("sqlite: set WAL mode, err: %+v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		logs.Errorf("sqlite: set synchronous mode, err: %+v", err)
	}

	s := &SQLiteSink{db: db}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS grader_sessions (
			id TEXT PRIMARY KEY,
			username TEXT,
			started_at INTEGER,
			ended_at INTEGER,
			state TEXT,
			sent INTEGER,
			responses INTEGER,
			score REAL
		);
	`
	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrap(err, "create grader_sessions")
	}

	query = `
		CREATE TABLE IF NOT EXISTS grader_session_lines (
			session_id TEXT,
			seq INTEGER,
			line TEXT,
			PRIMARY KEY (session_id, seq)
		);
	`
	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrap(err, "create grader_session_lines")
	}
	return nil
}

// Save inserts the session row and its log lines in one transaction.
func (s *SQLiteSink) Save(ctx context.Context, record session.Record) error {
	row, lines := toRows(record)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin sqlite tx")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO grader_sessions (id, username, started_at, ended_at, state, sent, responses, score) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Username, row.StartedAt.UnixMilli(), row.EndedAt.UnixMilli(), row.State, int64(row.Sent), row.Responses, row.Score,
	)
	if err != nil {
		return errors.Wrap(err, "insert session").With("id", row.ID)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO grader_session_lines (session_id, seq, line) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare line insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, line := range lines {
		if _, err := stmt.ExecContext(ctx, line.SessionID, line.Seq, line.Line); err != nil {
			return errors.Wrap(err, "insert session line").With("seq", line.Seq)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit sqlite tx")
	}
	return nil
}

// CountLines returns how many log lines are stored for a session.
func (s *SQLiteSink) CountLines(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grader_session_lines WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
