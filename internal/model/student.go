package model

import (
	"fmt"
	"strings"
	"time"
)

// Group is the class a student belongs to. Duty for a weekday is drawn
// from exactly one group.
type Group string

const (
	GroupIM1 Group = "IM1"
	GroupIM2 Group = "IM2"
	GroupIT1 Group = "IT1"
	GroupIT2 Group = "IT2"
)

// Groups lists every known class code.
var Groups = []Group{GroupIM1, GroupIM2, GroupIT1, GroupIT2}

func (g Group) Valid() bool {
	for _, known := range Groups {
		if g == known {
			return true
		}
	}
	return false
}

// ParseGroup accepts a class code in any case.
func ParseGroup(s string) (Group, error) {
	g := Group(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown group %q", s)
	}
	return g, nil
}

type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Group     Group     `json:"group"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
