package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
)

// ChoreStore is the chore catalog.
type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

const choreCols = `id, text, weekdays, sort_order`

func scanChore(scanner interface{ Scan(...any) error }) (*model.ChoreDefinition, error) {
	var c model.ChoreDefinition
	var days int64
	if err := scanner.Scan(&c.ID, &c.Text, &days, &c.SortOrder); err != nil {
		return nil, err
	}
	c.Days = model.WeekdaySet(days)
	return &c, nil
}

// Upsert writes a chore definition with a fixed id.
func (s *ChoreStore) Upsert(ctx context.Context, c model.ChoreDefinition) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chores (id, text, weekdays, sort_order) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   text = excluded.text,
		   weekdays = excluded.weekdays,
		   sort_order = excluded.sort_order`,
		c.ID, c.Text, int64(c.Days), c.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("upsert chore %d: %w", c.ID, err)
	}
	return nil
}

func (s *ChoreStore) List(ctx context.Context) ([]model.ChoreDefinition, error) {
	return s.list(ctx, `SELECT `+choreCols+` FROM chores ORDER BY sort_order ASC, id ASC`)
}

// ListForWeekday returns the chores scheduled on d. A chore with no days
// applies to every school day; weekends have no chores.
func (s *ChoreStore) ListForWeekday(ctx context.Context, d time.Weekday) ([]model.ChoreDefinition, error) {
	if !model.IsSchoolDay(d) {
		return nil, nil
	}
	bit := int64(model.NewWeekdaySet(d))
	return s.list(ctx,
		`SELECT `+choreCols+` FROM chores WHERE weekdays = 0 OR (weekdays & ?) != 0 ORDER BY sort_order ASC, id ASC`,
		bit,
	)
}

func (s *ChoreStore) list(ctx context.Context, query string, args ...any) ([]model.ChoreDefinition, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.ChoreDefinition
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}
