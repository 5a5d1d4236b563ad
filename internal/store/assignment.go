package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
)

// AssignmentStore is the assignment history: at most one student per
// calendar day, never updated once written.
type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

const assignmentCols = `id, date, student_id, created_at`

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var date string
	if err := scanner.Scan(&a.ID, &date, &a.StudentID, &a.CreatedAt); err != nil {
		return nil, err
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	a.Date = d
	return &a, nil
}

func (s *AssignmentStore) Get(ctx context.Context, date time.Time) (*model.Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assignmentCols+` FROM assignments WHERE date = ?`, model.FormatDate(date))
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// Put records studentID for date unless the day already has an
// assignment. The check and the write are one statement, so concurrent
// callers cannot both create a row; created reports whether this call did.
func (s *AssignmentStore) Put(ctx context.Context, date time.Time, studentID int64) (created bool, err error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (date, student_id) VALUES (?, ?) ON CONFLICT (date) DO NOTHING`,
		model.FormatDate(date), studentID,
	)
	if err != nil {
		return false, fmt.Errorf("insert assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// CountByStudentBetween counts the days in [from, to) assigned to
// studentID.
func (s *AssignmentStore) CountByStudentBetween(ctx context.Context, studentID int64, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE student_id = ? AND date >= ? AND date < ?`,
		studentID, model.FormatDate(from), model.FormatDate(to),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return n, nil
}

// ListRange returns the assignments for days in [from, to), oldest first.
func (s *AssignmentStore) ListRange(ctx context.Context, from, to time.Time) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assignmentCols+` FROM assignments WHERE date >= ? AND date < ? ORDER BY date ASC`,
		model.FormatDate(from), model.FormatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}
