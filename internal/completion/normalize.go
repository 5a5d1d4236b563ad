package completion

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/dukerupert/dutyroster/internal/model"
)

// Normalize splits the scheduled chores into completed and not completed.
// An id reported in both lists counts as completed, and scheduled chores
// reported in neither list are not completed. Both results keep the order
// of scheduled. Reported ids that are not scheduled come back in dropped.
func Normalize(scheduled []model.ChoreDefinition, completed, notCompleted []int64) (done, notDone []model.ChoreDefinition, dropped []int64) {
	reported := make(map[int64]bool, len(completed))
	for _, id := range completed {
		reported[id] = true
	}
	known := make(map[int64]bool, len(scheduled))
	done = []model.ChoreDefinition{}
	notDone = []model.ChoreDefinition{}
	for _, def := range scheduled {
		known[def.ID] = true
		if reported[def.ID] {
			done = append(done, def)
		} else {
			notDone = append(notDone, def)
		}
	}

	seen := make(map[int64]bool)
	for _, id := range append(slices.Clone(completed), notCompleted...) {
		if !known[id] && !seen[id] {
			seen[id] = true
			dropped = append(dropped, id)
		}
	}
	return done, notDone, dropped
}

// ParseIDs reads a list of chore ids. It accepts a JSON array of numbers
// or numeric strings, or a comma separated list. Malformed input yields
// an empty list; absent ids mean nothing was reported.
func ParseIDs(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil
		}
		ids := make([]int64, 0, len(items))
		for _, item := range items {
			s := strings.Trim(string(item), `"`)
			id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return nil
			}
			ids = append(ids, id)
		}
		return ids
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}
