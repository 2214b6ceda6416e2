package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema mirrors the three document collections as tables keyed by group_id.
const schema = `
CREATE TABLE IF NOT EXISTS group_info (
	group_id   TEXT PRIMARY KEY,
	active     BOOLEAN NOT NULL,
	created_at BIGINT NOT NULL,
	members    TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS event_log (
	group_id TEXT PRIMARY KEY,
	event_ts BIGINT NOT NULL,
	funcs    TEXT NOT NULL DEFAULT '',
	date     TEXT
);

CREATE TABLE IF NOT EXISTS calendar (
	id          BIGSERIAL PRIMARY KEY,
	group_id    TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	event_ts    BIGINT NOT NULL,
	record_date TEXT NOT NULL,
	content     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS calendar_group_id_idx ON calendar (group_id);
`

// Store implements ports.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for the given connection string and verifies it.
func Connect(ctx context.Context, connStr string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse config error: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgx connect error: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx ping error: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// LoadFlow retrieves the EventLog of a group.
func (s *Store) LoadFlow(ctx context.Context, groupID string) (*domain.EventLog, error) {
	var (
		log   domain.EventLog
		funcs string
	)
	err := s.pool.QueryRow(ctx, `
SELECT group_id, event_ts, funcs, COALESCE(date, '')
FROM event_log
WHERE group_id = $1
`, groupID).Scan(&log.GroupID, &log.Timestamp, &funcs, &log.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to select flow: %w", err)
	}
	log.Funcs = domain.FlowState(funcs)
	return &log, nil
}

// SaveFlow upserts the EventLog of a group. An empty date is stored as NULL.
func (s *Store) SaveFlow(ctx context.Context, log *domain.EventLog) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO event_log (group_id, event_ts, funcs, date)
VALUES ($1, $2, $3, NULLIF($4, ''))
ON CONFLICT (group_id) DO UPDATE
SET event_ts = EXCLUDED.event_ts, funcs = EXCLUDED.funcs, date = EXCLUDED.date
`, log.GroupID, log.Timestamp, string(log.Funcs), log.Date)
	if err != nil {
		return fmt.Errorf("failed to upsert flow: %w", err)
	}
	return nil
}

// DeleteFlow removes the EventLog of a group.
func (s *Store) DeleteFlow(ctx context.Context, groupID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM event_log WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	return nil
}

// CreateGroup upserts the GroupInfo of a group.
func (s *Store) CreateGroup(ctx context.Context, group *domain.GroupInfo) error {
	members := group.Members
	if members == nil {
		members = []string{}
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO group_info (group_id, active, created_at, members)
VALUES ($1, $2, $3, $4)
ON CONFLICT (group_id) DO UPDATE
SET active = EXCLUDED.active, created_at = EXCLUDED.created_at, members = EXCLUDED.members
`, group.GroupID, group.Active, group.CreatedAt, members)
	if err != nil {
		return fmt.Errorf("failed to upsert group: %w", err)
	}
	return nil
}

// LoadGroup retrieves the GroupInfo of a group.
func (s *Store) LoadGroup(ctx context.Context, groupID string) (*domain.GroupInfo, error) {
	var group domain.GroupInfo
	err := s.pool.QueryRow(ctx, `
SELECT group_id, active, created_at, members
FROM group_info
WHERE group_id = $1
`, groupID).Scan(&group.GroupID, &group.Active, &group.CreatedAt, &group.Members)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to select group: %w", err)
	}
	return &group, nil
}

// DeleteGroup removes the GroupInfo of a group.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM group_info WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// AppendRecord inserts a calendar row.
func (s *Store) AppendRecord(ctx context.Context, record *domain.CalendarRecord) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO calendar (group_id, user_id, event_ts, record_date, content)
VALUES ($1, $2, $3, $4, $5)
`, record.GroupID, record.UserID, record.Timestamp, record.RecordDate, record.Content)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// FirstRecord returns one calendar row of the group, in no defined order.
func (s *Store) FirstRecord(ctx context.Context, groupID string) (*domain.CalendarRecord, error) {
	var rec domain.CalendarRecord
	err := s.pool.QueryRow(ctx, `
SELECT group_id, user_id, event_ts, record_date, content
FROM calendar
WHERE group_id = $1
LIMIT 1
`, groupID).Scan(&rec.GroupID, &rec.UserID, &rec.Timestamp, &rec.RecordDate, &rec.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	return &rec, nil
}

// DeleteRecords removes every calendar row of the group.
func (s *Store) DeleteRecords(ctx context.Context, groupID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM calendar WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}
