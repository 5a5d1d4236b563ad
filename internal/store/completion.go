package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
)

// ErrAlreadySubmitted is returned by Submit when the day's record is
// already submitted and overwriting is not allowed.
var ErrAlreadySubmitted = errors.New("completion already submitted")

// CompletionStore holds one completion record per calendar day together
// with its per-chore outcomes.
type CompletionStore struct {
	db *sql.DB
}

func NewCompletionStore(db *sql.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

const completionCols = `id, date, student_id, attachment1, attachment2, comment, submitted, submitted_at, created_at, updated_at`

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.CompletionRecord, error) {
	var c model.CompletionRecord
	var date string
	var submittedAt sql.NullTime
	err := scanner.Scan(
		&c.ID, &date, &c.StudentID, &c.Attachments[0], &c.Attachments[1],
		&c.Comment, &c.Submitted, &submittedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	c.Date = d
	if submittedAt.Valid {
		c.SubmittedAt = &submittedAt.Time
	}
	return &c, nil
}

func (s *CompletionStore) Get(ctx context.Context, date time.Time) (*model.CompletionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+completionCols+` FROM completions WHERE date = ?`, model.FormatDate(date))
	return s.getOne(ctx, row)
}

func (s *CompletionStore) GetByID(ctx context.Context, id int64) (*model.CompletionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+completionCols+` FROM completions WHERE id = ?`, id)
	return s.getOne(ctx, row)
}

func (s *CompletionStore) getOne(ctx context.Context, row *sql.Row) (*model.CompletionRecord, error) {
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	outcomes, err := s.outcomes(ctx, `WHERE completion_id = ?`, c.ID)
	if err != nil {
		return nil, err
	}
	applyOutcomes(c, outcomes[c.ID])
	return c, nil
}

// List returns every record, newest day first.
func (s *CompletionStore) List(ctx context.Context) ([]model.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+completionCols+` FROM completions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var records []model.CompletionRecord
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		records = append(records, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	outcomes, err := s.outcomes(ctx, ``)
	if err != nil {
		return nil, err
	}
	for i := range records {
		applyOutcomes(&records[i], outcomes[records[i].ID])
	}
	return records, nil
}

type outcome struct {
	choreID   int64
	completed bool
}

func (s *CompletionStore) outcomes(ctx context.Context, where string, args ...any) (map[int64][]outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT completion_id, chore_id, completed FROM completion_outcomes `+where+` ORDER BY completion_id, chore_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	byCompletion := make(map[int64][]outcome)
	for rows.Next() {
		var id int64
		var o outcome
		if err := rows.Scan(&id, &o.choreID, &o.completed); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		byCompletion[id] = append(byCompletion[id], o)
	}
	return byCompletion, rows.Err()
}

func applyOutcomes(c *model.CompletionRecord, outcomes []outcome) {
	c.CompletedChoreIDs = []int64{}
	c.NonCompletedChoreIDs = []int64{}
	for _, o := range outcomes {
		if o.completed {
			c.CompletedChoreIDs = append(c.CompletedChoreIDs, o.choreID)
		} else {
			c.NonCompletedChoreIDs = append(c.NonCompletedChoreIDs, o.choreID)
		}
	}
}

// CreateStaged creates the pending record for date with every chore in
// choreIDs marked not completed. An existing record for the day is left
// untouched; created reports whether this call wrote the row.
func (s *CompletionStore) CreateStaged(ctx context.Context, date time.Time, studentID int64, choreIDs []int64) (created bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO completions (date, student_id, submitted) VALUES (?, ?, 0) ON CONFLICT (date) DO NOTHING`,
		model.FormatDate(date), studentID,
	)
	if err != nil {
		return false, fmt.Errorf("insert staged completion: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("last insert id: %w", err)
	}

	if err := insertOutcomes(ctx, tx, id, nil, choreIDs); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit staged completion: %w", err)
	}
	return true, nil
}

// SubmitParams is a full replacement of a day's reported outcome.
type SubmitParams struct {
	Date         time.Time
	StudentID    int64
	Completed    []int64
	NotCompleted []int64
	Attachments  model.AttachmentFlags
	Comment      string
	// Overwrite allows replacing a record that is already submitted.
	Overwrite bool
}

// Submit creates or updates the record for p.Date and marks it submitted.
// The record row and its outcome rows are written in one transaction, and
// the create-or-update decision is a single upsert on the date key.
func (s *CompletionStore) Submit(ctx context.Context, p SubmitParams) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	guard := ` WHERE completions.submitted = 0`
	if p.Overwrite {
		guard = ``
	}
	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO completions (date, student_id, attachment1, attachment2, comment, submitted, submitted_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT (date) DO UPDATE SET
		   student_id = excluded.student_id,
		   attachment1 = excluded.attachment1,
		   attachment2 = excluded.attachment2,
		   comment = excluded.comment,
		   submitted = 1,
		   submitted_at = excluded.submitted_at,
		   updated_at = CURRENT_TIMESTAMP`+guard+`
		 RETURNING id`,
		model.FormatDate(p.Date), p.StudentID, p.Attachments[0], p.Attachments[1], p.Comment, time.Now().UTC(),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrAlreadySubmitted
	}
	if err != nil {
		return 0, fmt.Errorf("upsert completion: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM completion_outcomes WHERE completion_id = ?`, id); err != nil {
		return 0, fmt.Errorf("clear outcomes: %w", err)
	}
	if err := insertOutcomes(ctx, tx, id, p.Completed, p.NotCompleted); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit completion: %w", err)
	}
	return id, nil
}

func insertOutcomes(ctx context.Context, tx *sql.Tx, completionID int64, completed, notCompleted []int64) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO completion_outcomes (completion_id, chore_id, completed) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range completed {
		if _, err := stmt.ExecContext(ctx, completionID, id, true); err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
	}
	for _, id := range notCompleted {
		if _, err := stmt.ExecContext(ctx, completionID, id, false); err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
	}
	return nil
}

// SetAttachment flags an image slot on the record. It reports false when
// no record has the given id.
func (s *CompletionStore) SetAttachment(ctx context.Context, id int64, slot int) (bool, error) {
	if !model.ValidSlot(slot) {
		return false, fmt.Errorf("invalid attachment slot %d", slot)
	}
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE completions SET attachment%d = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, slot),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("set attachment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}
