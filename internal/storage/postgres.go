package storage

import (
	"context"

	"github.com/yanun0323/errors"
	"gorm.io/gorm"

	"volgrader/internal/session"
	"volgrader/pkg/conn"
)

const postgresLineBatch = 1000

// PostgresSink stores session records through gorm.
type PostgresSink struct {
	client *conn.Client
	db     *gorm.DB
}

// NewPostgresSink connects with option and migrates the session tables.
func NewPostgresSink(option conn.Option) (*PostgresSink, error) {
	client, err := conn.New(option)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	db := client.DB()
	if err := db.AutoMigrate(&SessionRow{}, &LineRow{}); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "migrate session tables")
	}
	return &PostgresSink{client: client, db: db}, nil
}

// Save writes the session row and its lines in one transaction.
func (s *PostgresSink) Save(ctx context.Context, record session.Record) error {
	row, lines := toRows(record)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return errors.Wrap(err, "insert session").With("id", row.ID)
		}
		if len(lines) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(lines, postgresLineBatch).Error; err != nil {
			return errors.Wrap(err, "insert session lines").With("id", row.ID)
		}
		return nil
	})
}

// Close closes the connection pool.
func (s *PostgresSink) Close() error {
	return s.client.Close()
}
