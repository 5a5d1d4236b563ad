package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/dutyroster/internal/model"
)

// StudentStore is the roster. The duty core only reads it; rows are
// written by seeding and administration.
type StudentStore struct {
	db *sql.DB
}

func NewStudentStore(db *sql.DB) *StudentStore {
	return &StudentStore{db: db}
}

const studentCols = `id, name, class_group, sort_order, created_at, updated_at`

func scanStudent(scanner interface{ Scan(...any) error }) (*model.Student, error) {
	var s model.Student
	var group string
	if err := scanner.Scan(&s.ID, &s.Name, &group, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Group = model.Group(group)
	return &s, nil
}

// Upsert writes a student with a fixed id, updating name, group and order
// when the id already exists.
func (s *StudentStore) Upsert(ctx context.Context, st model.Student) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id, name, class_group, sort_order) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   class_group = excluded.class_group,
		   sort_order = excluded.sort_order,
		   updated_at = CURRENT_TIMESTAMP`,
		st.ID, st.Name, string(st.Group), st.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("upsert student %d: %w", st.ID, err)
	}
	return nil
}

func (s *StudentStore) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id = ?`, id)
	st, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return st, nil
}

// ListByGroup returns the students of group in roster order. The rotation
// selector relies on this order being stable.
func (s *StudentStore) ListByGroup(ctx context.Context, group model.Group) ([]model.Student, error) {
	return s.list(ctx, `SELECT `+studentCols+` FROM students WHERE class_group = ? ORDER BY sort_order ASC, id ASC`, string(group))
}

// List returns the whole roster grouped by class.
func (s *StudentStore) List(ctx context.Context) ([]model.Student, error) {
	return s.list(ctx, `SELECT `+studentCols+` FROM students ORDER BY class_group ASC, sort_order ASC, id ASC`)
}

func (s *StudentStore) list(ctx context.Context, query string, args ...any) ([]model.Student, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *st)
	}
	return students, rows.Err()
}
