package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/dutyroster/internal/completion"
	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/store"
)

type CompletionHandler struct {
	tracker     *completion.Tracker
	completions *store.CompletionStore
	students    *store.StudentStore
	chores      *store.ChoreStore
	today       Clock
	logger      *slog.Logger
}

func NewCompletionHandler(tracker *completion.Tracker, completions *store.CompletionStore, students *store.StudentStore, chores *store.ChoreStore, today Clock, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{
		tracker:     tracker,
		completions: completions,
		students:    students,
		chores:      chores,
		today:       today,
		logger:      logger,
	}
}

// completionView is a history entry with the student and chore texts
// resolved.
type completionView struct {
	ID           int64                   `json:"id"`
	Date         string                  `json:"date"`
	StudentID    int64                   `json:"student_id"`
	Student      *model.Student          `json:"student"`
	Status       model.CompletionStatus  `json:"status"`
	Completed    []model.ChoreDefinition `json:"completed_chores"`
	NotCompleted []model.ChoreDefinition `json:"non_completed_chores"`
	Attachments  model.AttachmentFlags   `json:"attachments"`
	Comment      string                  `json:"comment"`
	SubmittedAt  *time.Time              `json:"submitted_at,omitempty"`
}

// resolver looks up students and chores for a batch of records. Chores
// removed from the catalog keep their id with empty text.
type resolver struct {
	students *store.StudentStore
	chores   map[int64]model.ChoreDefinition
	seen     map[int64]*model.Student
}

func (h *CompletionHandler) newResolver(ctx context.Context) (*resolver, error) {
	defs, err := h.chores.List(ctx)
	if err != nil {
		return nil, err
	}
	chores := make(map[int64]model.ChoreDefinition, len(defs))
	for _, d := range defs {
		chores[d.ID] = d
	}
	return &resolver{students: h.students, chores: chores, seen: map[int64]*model.Student{}}, nil
}

func (rs *resolver) choreList(ids []int64) []model.ChoreDefinition {
	out := make([]model.ChoreDefinition, 0, len(ids))
	for _, id := range ids {
		def, ok := rs.chores[id]
		if !ok {
			def = model.ChoreDefinition{ID: id}
		}
		out = append(out, def)
	}
	return out
}

func (rs *resolver) view(ctx context.Context, rec *model.CompletionRecord) (completionView, error) {
	st, ok := rs.seen[rec.StudentID]
	if !ok {
		var err error
		st, err = rs.students.GetByID(ctx, rec.StudentID)
		if err != nil {
			return completionView{}, err
		}
		rs.seen[rec.StudentID] = st
	}
	return completionView{
		ID:           rec.ID,
		Date:         model.FormatDate(rec.Date),
		StudentID:    rec.StudentID,
		Student:      st,
		Status:       rec.Status(),
		Completed:    rs.choreList(rec.CompletedChoreIDs),
		NotCompleted: rs.choreList(rec.NonCompletedChoreIDs),
		Attachments:  rec.Attachments,
		Comment:      rec.Comment,
		SubmittedAt:  rec.SubmittedAt,
	}, nil
}

// idList accepts a JSON array of ids or a string holding a JSON array or
// a comma separated list.
func idList(raw json.RawMessage) []int64 {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return completion.ParseIDs(s)
	}
	return completion.ParseIDs(string(raw))
}

// Submit records the outcome of a day's chores. The day defaults to today
// and the student to the day's assigned student.
func (h *CompletionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date         string                `json:"date"`
		StudentID    int64                 `json:"student_id"`
		Completed    json.RawMessage       `json:"completed_chore_ids"`
		NotCompleted json.RawMessage       `json:"non_completed_chore_ids"`
		Attachments  model.AttachmentFlags `json:"attachments"`
		Comment      string                `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	date := h.today()
	if req.Date != "" {
		d, err := model.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}

	id, err := h.tracker.RecordOutcome(r.Context(), completion.Submission{
		Date:         date,
		StudentID:    req.StudentID,
		Completed:    idList(req.Completed),
		NotCompleted: idList(req.NotCompleted),
		Attachments:  req.Attachments,
		Comment:      strings.TrimSpace(req.Comment),
	})
	switch {
	case errors.Is(err, completion.ErrNoAssignment):
		writeError(w, http.StatusUnprocessableEntity, "no student assigned for this day")
		return
	case errors.Is(err, completion.ErrUnknownStudent):
		writeError(w, http.StatusUnprocessableEntity, "unknown student")
		return
	case errors.Is(err, completion.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, "this day has already been submitted")
		return
	case err != nil:
		h.logger.Error("record outcome", "date", model.FormatDate(date), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit completion")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "completion_id": id})
}

// List returns the completion history, newest day first.
func (h *CompletionHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.completions.List(r.Context())
	if err != nil {
		h.logger.Error("list completions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	rs, err := h.newResolver(r.Context())
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	views := make([]completionView, 0, len(records))
	for i := range records {
		v, err := rs.view(r.Context(), &records[i])
		if err != nil {
			h.logger.Error("resolve completion", "id", records[i].ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list completions")
			return
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *CompletionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rec, err := h.completions.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get completion", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get completion")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "completion not found")
		return
	}
	rs, err := h.newResolver(r.Context())
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get completion")
		return
	}
	v, err := rs.view(r.Context(), rec)
	if err != nil {
		h.logger.Error("resolve completion", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get completion")
		return
	}
	writeJSON(w, http.StatusOK, v)
}
