package completion

import (
	"slices"
	"testing"

	"github.com/dukerupert/dutyroster/internal/model"
)

func TestNormalize(t *testing.T) {
	scheduled := []model.ChoreDefinition{{ID: 1}, {ID: 2}, {ID: 3}}

	tests := []struct {
		name         string
		completed    []int64
		notCompleted []int64
		wantDone     []int64
		wantNotDone  []int64
		wantDropped  []int64
	}{
		{"nothing reported", nil, nil, []int64{}, []int64{1, 2, 3}, nil},
		{"exact split", []int64{1}, []int64{2, 3}, []int64{1}, []int64{2, 3}, nil},
		{"in both counts as done", []int64{2}, []int64{2}, []int64{2}, []int64{1, 3}, nil},
		{"duplicates", []int64{3, 3, 1}, nil, []int64{1, 3}, []int64{2}, nil},
		{"unscheduled dropped", []int64{7}, []int64{8, 7}, []int64{}, []int64{1, 2, 3}, []int64{7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done, notDone, dropped := Normalize(scheduled, tt.completed, tt.notCompleted)
			if got := model.ChoreIDs(done); !slices.Equal(got, tt.wantDone) {
				t.Errorf("done = %v, want %v", got, tt.wantDone)
			}
			if got := model.ChoreIDs(notDone); !slices.Equal(got, tt.wantNotDone) {
				t.Errorf("notDone = %v, want %v", got, tt.wantNotDone)
			}
			if !slices.Equal(dropped, tt.wantDropped) {
				t.Errorf("dropped = %v, want %v", dropped, tt.wantDropped)
			}
		})
	}
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		in   string
		want []int64
	}{
		{"", nil},
		{"[]", []int64{}},
		{"[1, 2]", []int64{1, 2}},
		{`["3","4"]`, []int64{3, 4}},
		{"5,6", []int64{5, 6}},
		{"[1, \"x\"]", nil},
		{"not json", nil},
		{"[1,", nil},
	}
	for _, tt := range tests {
		if got := ParseIDs(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseIDs(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
