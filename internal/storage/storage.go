package storage

import (
	"context"
	"time"

	"volgrader/internal/session"
)

// Sink persists the record of a terminated session.
type Sink interface {
	Save(ctx context.Context, record session.Record) error
	Close() error
}

// SessionRow is the summary row stored per session.
type SessionRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Username  string `gorm:"index"`
	StartedAt time.Time
	EndedAt   time.Time
	State     string `gorm:"size:32"`
	Sent      uint64
	Responses int
	Score     float64
}

func (SessionRow) TableName() string { return "grader_sessions" }

// LineRow is one rendered session log line.
type LineRow struct {
	SessionID string `gorm:"primaryKey;size:36"`
	Seq       int    `gorm:"primaryKey"`
	Line      string
}

func (LineRow) TableName() string { return "grader_session_lines" }

func toRows(r session.Record) (SessionRow, []LineRow) {
	row := SessionRow{
		ID:        r.ID,
		Username:  r.Username,
		StartedAt: r.Start,
		EndedAt:   r.End,
		State:     r.State.String(),
		Sent:      r.Sent,
		Responses: r.Responses,
		Score:     r.Score,
	}
	lines := make([]LineRow, len(r.Lines))
	for i, line := range r.Lines {
		lines[i] = LineRow{SessionID: r.ID, Seq: i, Line: line}
	}
	return row, lines
}
