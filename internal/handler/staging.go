package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/staging"
)

// StagingHandler exposes manual triggers for the periodic staging jobs.
type StagingHandler struct {
	stager *staging.Stager
	today  Clock
	logger *slog.Logger
}

func NewStagingHandler(stager *staging.Stager, today Clock, logger *slog.Logger) *StagingHandler {
	return &StagingHandler{stager: stager, today: today, logger: logger}
}

// StageWeek assigns the school days of the week containing ?date= (or
// today). Per-day failures are reported in the result with status 207.
func (h *StagingHandler) StageWeek(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r, h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	res, err := h.stager.StageWeek(r.Context(), date)
	if err != nil {
		h.logger.Warn("stage week incomplete", "week", res.Week, "error", err)
		writeJSON(w, http.StatusMultiStatus, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// StageDay creates the pending completion record for ?date= (or today).
func (h *StagingHandler) StageDay(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r, h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	res, err := h.stager.StageDay(r.Context(), date)
	if errors.Is(err, staging.ErrMissingAssignment) {
		writeError(w, http.StatusConflict, "no student assigned for "+model.FormatDate(date)+"; stage the week first")
		return
	}
	if err != nil {
		h.logger.Error("stage day", "date", model.FormatDate(date), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to stage day")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
