package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/dutyroster/internal/chore"
	"github.com/dukerupert/dutyroster/internal/completion"
	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/staging"
	"github.com/dukerupert/dutyroster/internal/store"
)

type DayHandler struct {
	rule        model.ScheduleRule
	stager      *staging.Stager
	tracker     *completion.Tracker
	chores      *store.ChoreStore
	assignments *store.AssignmentStore
	students    *store.StudentStore
	today       Clock
	logger      *slog.Logger
}

// DayStores are the read models the day and week views query directly.
type DayStores struct {
	Chores      *store.ChoreStore
	Assignments *store.AssignmentStore
	Students    *store.StudentStore
}

func NewDayHandler(rule model.ScheduleRule, stager *staging.Stager, tracker *completion.Tracker, stores DayStores, today Clock, logger *slog.Logger) *DayHandler {
	return &DayHandler{
		rule:        rule,
		stager:      stager,
		tracker:     tracker,
		chores:      stores.Chores,
		assignments: stores.Assignments,
		students:    stores.Students,
		today:       today,
		logger:      logger,
	}
}

type dayResponse struct {
	Date         string                  `json:"date"`
	Weekday      string                  `json:"weekday"`
	Duty         bool                    `json:"duty"`
	Group        model.Group             `json:"group,omitempty"`
	Student      *model.Student          `json:"student"`
	Status       model.CompletionStatus  `json:"status"`
	CompletionID int64                   `json:"completion_id,omitempty"`
	Comment      string                  `json:"comment,omitempty"`
	Attachments  model.AttachmentFlags   `json:"attachments"`
	Chores       []chore.ChoreWithStatus `json:"chores"`
	Summary      map[chore.Status]int    `json:"summary"`
}

// Today returns the chores of a day with their status and the student on
// duty. The day defaults to today; ?date=YYYY-MM-DD selects another.
func (h *DayHandler) Today(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	date, err := parseDateQuery(r, today)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	resp := dayResponse{
		Date:    model.FormatDate(date),
		Weekday: date.Weekday().String(),
		Chores:  []chore.ChoreWithStatus{},
	}
	group, ok := h.rule.GroupFor(date.Weekday())
	if !ok {
		resp.Status = model.StatusUnstaged
		resp.Summary = map[chore.Status]int{}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Duty = true
	resp.Group = group

	student, err := h.stager.GetAssignment(r.Context(), date)
	if err != nil {
		h.logger.Error("get assignment", "date", resp.Date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load assignment")
		return
	}
	resp.Student = student

	rec, err := h.tracker.GetCompletion(r.Context(), date)
	if err != nil {
		h.logger.Error("get completion", "date", resp.Date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load completion")
		return
	}
	resp.Status = rec.Status()
	if rec != nil {
		resp.CompletionID = rec.ID
		resp.Comment = rec.Comment
		resp.Attachments = rec.Attachments
	}

	defs, err := h.chores.ListForWeekday(r.Context(), date.Weekday())
	if err != nil {
		h.logger.Error("list chores", "date", resp.Date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	resp.Chores = chore.ForDay(defs, rec, date, today)
	resp.Summary = chore.Summary(resp.Chores)
	writeJSON(w, http.StatusOK, resp)
}

type weekDay struct {
	Date    string         `json:"date"`
	Weekday string         `json:"weekday"`
	Group   model.Group    `json:"group,omitempty"`
	Student *model.Student `json:"student"`
}

// Week returns Monday to Friday of the ISO week containing ?date= (or
// today) with the student assigned to each day.
func (h *DayHandler) Week(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r, h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	monday := model.WeekStart(date)
	assigned, err := h.assignments.ListRange(r.Context(), monday, monday.AddDate(0, 0, 5))
	if err != nil {
		h.logger.Error("list assignments", "monday", model.FormatDate(monday), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load assignments")
		return
	}
	byDate := make(map[string]int64, len(assigned))
	for _, a := range assigned {
		byDate[model.FormatDate(a.Date)] = a.StudentID
	}

	days := make([]weekDay, 0, 5)
	for _, d := range model.SchoolWeek(date) {
		wd := weekDay{Date: model.FormatDate(d), Weekday: d.Weekday().String()}
		if g, ok := h.rule.GroupFor(d.Weekday()); ok {
			wd.Group = g
		}
		if id, ok := byDate[wd.Date]; ok {
			wd.Student, err = h.students.GetByID(r.Context(), id)
			if err != nil {
				h.logger.Error("get student", "date", wd.Date, "student_id", id, "error", err)
				writeError(w, http.StatusInternalServerError, "failed to load assignments")
				return
			}
		}
		days = append(days, wd)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"week":   model.ISOWeek(date),
		"monday": model.FormatDate(monday),
		"days":   days,
	})
}
