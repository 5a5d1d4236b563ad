// Package rotation picks the duty student for a group: the student with
// the fewest assignments over a trailing window.
package rotation

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/dukerupert/dutyroster/internal/model"
)

// DefaultWindowDays is the length of the trailing usage window.
const DefaultWindowDays = 180

// Roster lists the students of a group in a stable order.
type Roster interface {
	ListByGroup(ctx context.Context, group model.Group) ([]model.Student, error)
}

// UsageCounter counts a student's assignments on days in [from, to).
type UsageCounter interface {
	CountByStudentBetween(ctx context.Context, studentID int64, from, to time.Time) (int, error)
}

// TieBreak decides between students with equal usage.
type TieBreak string

const (
	// TieBreakRoster keeps roster order among equals.
	TieBreakRoster TieBreak = "roster"
	// TieBreakLowestID prefers the lowest student id among equals.
	TieBreakLowestID TieBreak = "lowest_id"
	// TieBreakRandom picks uniformly among equals.
	TieBreakRandom TieBreak = "random"
)

func ParseTieBreak(s string) (TieBreak, error) {
	switch tb := TieBreak(s); tb {
	case TieBreakRoster, TieBreakLowestID, TieBreakRandom:
		return tb, nil
	case "":
		return TieBreakRoster, nil
	default:
		return "", fmt.Errorf("unknown tie-break strategy %q", s)
	}
}

// Candidate is a student with their usage in the window.
type Candidate struct {
	Student model.Student `json:"student"`
	Uses    int           `json:"uses"`
}

type Selector struct {
	roster   Roster
	usage    UsageCounter
	window   int
	tieBreak TieBreak
	logger   *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Selector)

// WithWindow sets the trailing window length in days.
func WithWindow(days int) Option {
	return func(s *Selector) {
		if days > 0 {
			s.window = days
		}
	}
}

func WithTieBreak(tb TieBreak) Option {
	return func(s *Selector) {
		s.tieBreak = tb
	}
}

// WithRand sets the random source used by TieBreakRandom.
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) {
		s.rng = r
	}
}

func NewSelector(roster Roster, usage UsageCounter, logger *slog.Logger, opts ...Option) *Selector {
	s := &Selector{
		roster:   roster,
		usage:    usage,
		window:   DefaultWindowDays,
		tieBreak: TieBreakRoster,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// SelectForGroup returns the least-used student of group for the day
// asOf. It returns nil with no error when the group has no students; the
// caller decides what to do with an unstaffed day.
func (s *Selector) SelectForGroup(ctx context.Context, group model.Group, asOf time.Time) (*model.Student, error) {
	ranked, err := s.Rank(ctx, group, asOf)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, nil
	}
	s.logger.Debug("selected student", "group", group, "date", model.FormatDate(asOf), "student_id", ranked[0].Student.ID, "uses", ranked[0].Uses)
	return &ranked[0].Student, nil
}

// Rank returns every student of group ordered by usage over the window
// [asOf-window, asOf), ties resolved by the configured strategy.
func (s *Selector) Rank(ctx context.Context, group model.Group, asOf time.Time) ([]Candidate, error) {
	students, err := s.roster.ListByGroup(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("list students in %s: %w", group, err)
	}
	if len(students) == 0 {
		return nil, nil
	}

	to := model.Day(asOf)
	from := model.AddDays(to, -s.window)
	candidates := make([]Candidate, 0, len(students))
	for _, st := range students {
		n, err := s.usage.CountByStudentBetween(ctx, st.ID, from, to)
		if err != nil {
			return nil, fmt.Errorf("count usage for student %d: %w", st.ID, err)
		}
		candidates = append(candidates, Candidate{Student: st, Uses: n})
	}

	switch s.tieBreak {
	case TieBreakLowestID:
		slices.SortStableFunc(candidates, func(a, b Candidate) int {
			return cmp.Or(cmp.Compare(a.Uses, b.Uses), cmp.Compare(a.Student.ID, b.Student.ID))
		})
	case TieBreakRandom:
		s.mu.Lock()
		s.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		s.mu.Unlock()
		fallthrough
	default:
		slices.SortStableFunc(candidates, func(a, b Candidate) int {
			return cmp.Compare(a.Uses, b.Uses)
		})
	}
	return candidates, nil
}
