// Package handler serves the duty roster JSON API.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
)

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// parseDateQuery reads the "date" query parameter, defaulting to today.
func parseDateQuery(r *http.Request, today time.Time) (time.Time, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return today, nil
	}
	return model.ParseDate(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Clock returns the current calendar day in the configured location.
type Clock func() time.Time

// LocalClock is a Clock reading the wall clock in loc.
func LocalClock(loc *time.Location) Clock {
	return func() time.Time { return model.Today(loc) }
}
