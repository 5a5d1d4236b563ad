package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/store"
)

// RosterHandler lists the seeded students and chore catalog.
type RosterHandler struct {
	students *store.StudentStore
	chores   *store.ChoreStore
	logger   *slog.Logger
}

func NewRosterHandler(students *store.StudentStore, chores *store.ChoreStore, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{students: students, chores: chores, logger: logger}
}

func (h *RosterHandler) Students(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		h.logger.Error("list students", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list students")
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

// Chores returns every chore definition, including those not scheduled
// today.
func (h *RosterHandler) Chores(w http.ResponseWriter, r *http.Request) {
	chores, err := h.chores.List(r.Context())
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	if chores == nil {
		chores = []model.ChoreDefinition{}
	}
	writeJSON(w, http.StatusOK, chores)
}
