package curriculum

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrUnknownCourse is returned when an id is not part of the registry.
var ErrUnknownCourse = errors.New("unknown course")

// DefaultNoneLabel is shown for an empty prerequisite set.
const DefaultNoneLabel = "None"

// StateStore persists the complete id -> state mapping.
type StateStore interface {
	Load(ctx context.Context) (map[ID]State, error)
	Save(ctx context.Context, states map[ID]State) error
}

// Option configures a Registry.
type Option func(*Registry)

// WithStore sets the store used by Load, Advance and Reset.
func WithStore(s StateStore) Option {
	return func(r *Registry) { r.store = s }
}

// WithTermOrder sets the term precedence used by Grouped.
func WithTermOrder(o TermOrder) Option {
	return func(r *Registry) { r.terms = o }
}

// WithNoneLabel sets the text used for empty prerequisite sets.
func WithNoneLabel(label string) Option {
	return func(r *Registry) {
		if strings.TrimSpace(label) != "" {
			r.noneLabel = label
		}
	}
}

// WithLogger sets the logger for persistence events.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// Registry owns the courses and their completion state. It is not safe for
// concurrent use; the TUI drives it from a single event loop.
type Registry struct {
	courses    []Course
	index      map[ID]int
	duplicates []ID
	eligible   map[ID]bool

	store     StateStore
	terms     TermOrder
	noneLabel string
	log       zerolog.Logger
	collator  *collate.Collator
}

// NewRegistry builds a registry from catalog records, keeping their order.
// Records repeating an earlier id are skipped and reported by Duplicates.
func NewRegistry(courses []Course, opts ...Option) *Registry {
	r := &Registry{
		courses:   make([]Course, 0, len(courses)),
		index:     make(map[ID]int, len(courses)),
		terms:     DefaultTermOrder(),
		noneLabel: DefaultNoneLabel,
		log:       zerolog.Nop(),
		collator:  collate.New(language.Spanish, collate.IgnoreCase),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, c := range courses {
		if _, dup := r.index[c.ID]; dup {
			r.duplicates = append(r.duplicates, c.ID)
			continue
		}
		if !c.State.Valid() {
			c.State = Pending
		}
		r.index[c.ID] = len(r.courses)
		r.courses = append(r.courses, c)
	}
	r.recompute()
	return r
}

// Duplicates lists ids that appeared more than once in the input.
func (r *Registry) Duplicates() []ID {
	return append([]ID(nil), r.duplicates...)
}

// Len returns the number of courses.
func (r *Registry) Len() int { return len(r.courses) }

// Load overlays persisted state. Every course starts Pending and takes the
// stored state when one exists. A store failure leaves everything Pending;
// the error is returned for reporting only.
func (r *Registry) Load(ctx context.Context) error {
	for i := range r.courses {
		r.courses[i].State = Pending
	}
	defer r.recompute()
	if r.store == nil {
		return nil
	}
	saved, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	restored := 0
	for id, st := range saved {
		i, ok := r.index[id]
		if !ok || !st.Valid() {
			continue
		}
		r.courses[i].State = st
		restored++
	}
	r.log.Debug().Int("restored", restored).Int("stored", len(saved)).Msg("progress overlaid")
	return nil
}

// Advance moves a course to its next state, writes the full snapshot and
// recomputes eligibility. When the write fails the in-memory change is kept
// and the error is returned with the new state.
func (r *Registry) Advance(ctx context.Context, id ID) (State, error) {
	i, ok := r.index[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCourse, id)
	}
	next := r.courses[i].State.Next()
	r.courses[i].State = next
	r.recompute()
	if err := r.persist(ctx); err != nil {
		return next, err
	}
	return next, nil
}

// Reset puts every course back to Pending and writes the snapshot.
func (r *Registry) Reset(ctx context.Context) error {
	for i := range r.courses {
		r.courses[i].State = Pending
	}
	r.recompute()
	return r.persist(ctx)
}

func (r *Registry) persist(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.Save(ctx, r.Snapshot()); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Snapshot returns the current id -> state mapping of every course.
func (r *Registry) Snapshot() map[ID]State {
	out := make(map[ID]State, len(r.courses))
	for _, c := range r.courses {
		out[c.ID] = c.State
	}
	return out
}

// Course returns a copy of the course with the given id.
func (r *Registry) Course(id ID) (Course, bool) {
	i, ok := r.index[id]
	if !ok {
		return Course{}, false
	}
	return r.courses[i], true
}

// Courses returns copies of all courses in catalog order.
func (r *Registry) Courses() []Course {
	return append([]Course(nil), r.courses...)
}

// State returns the state of a course; unknown ids report Pending.
func (r *Registry) State(id ID) State {
	if i, ok := r.index[id]; ok {
		return r.courses[i].State
	}
	return Pending
}

// ComputeFinalEligible flags every Pending course whose prerequisites are
// all Completed. In-progress and completed courses are never flagged.
// Prerequisites that are not in the registry count as not completed.
func (r *Registry) ComputeFinalEligible() map[ID]bool {
	out := make(map[ID]bool)
	for _, c := range r.courses {
		if c.State != Pending {
			continue
		}
		if r.allCompleted(c.Before) {
			out[c.ID] = true
		}
	}
	return out
}

func (r *Registry) allCompleted(ids []ID) bool {
	for _, id := range ids {
		i, ok := r.index[id]
		if !ok || r.courses[i].State != Completed {
			return false
		}
	}
	return true
}

func (r *Registry) recompute() {
	r.eligible = r.ComputeFinalEligible()
}

// Eligible reports the cached eligibility flag of a course.
func (r *Registry) Eligible(id ID) bool {
	return r.eligible[id]
}

// Grouped returns the courses by year ascending, then by term rank, then by
// name.
func (r *Registry) Grouped() []YearGroup {
	// terms differing only in case or spacing share a group; the first
	// spelling in catalog order is the one displayed
	byYear := map[int]map[string][]Course{}
	labelOf := map[string]string{}
	for _, c := range r.courses {
		terms, ok := byYear[c.Year]
		if !ok {
			terms = map[string][]Course{}
			byYear[c.Year] = terms
		}
		k := normalizeTerm(c.Term)
		if _, ok := labelOf[k]; !ok {
			labelOf[k] = strings.TrimSpace(c.Term)
		}
		terms[k] = append(terms[k], c)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]YearGroup, 0, len(years))
	for _, y := range years {
		keys := make([]string, 0, len(byYear[y]))
		for k := range byYear[y] {
			keys = append(keys, k)
		}
		sort.SliceStable(keys, func(i, j int) bool { return r.terms.Less(keys[i], keys[j]) })

		yg := YearGroup{Year: y}
		for _, k := range keys {
			courses := byYear[y][k]
			sort.SliceStable(courses, func(i, j int) bool {
				if c := r.collator.CompareString(courses[i].Name, courses[j].Name); c != 0 {
					return c < 0
				}
				return courses[i].ID < courses[j].ID
			})
			yg.Terms = append(yg.Terms, TermGroup{Year: y, Label: labelOf[k], Courses: courses})
		}
		out = append(out, yg)
	}
	return out
}

// Related returns the prerequisite ids of a course in both directions.
func (r *Registry) Related(id ID) (before, after []ID) {
	c, ok := r.Course(id)
	if !ok {
		return nil, nil
	}
	return c.Before, c.After
}

// Name resolves a course id to its name, or the raw id when unknown.
func (r *Registry) Name(id ID) string {
	if i, ok := r.index[id]; ok {
		return r.courses[i].Name
	}
	return string(id)
}

// DescribePrerequisites resolves both prerequisite sets to display text.
func (r *Registry) DescribePrerequisites(id ID) (Prerequisites, bool) {
	c, ok := r.Course(id)
	if !ok {
		return Prerequisites{Before: r.noneLabel, After: r.noneLabel}, false
	}
	return Prerequisites{
		Before: r.joinNames(c.Before),
		After:  r.joinNames(c.After),
	}, true
}

func (r *Registry) joinNames(ids []ID) string {
	if len(ids) == 0 {
		return r.noneLabel
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = r.Name(id)
	}
	return strings.Join(names, ", ")
}

// Summary counts courses per state and totals credits.
func (r *Registry) Summary() Summary {
	var s Summary
	for _, c := range r.courses {
		s.Total++
		s.Credits += c.Credits
		switch c.State {
		case Completed:
			s.Completed++
			s.CreditsCompleted += c.Credits
		case InProgress:
			s.InProgress++
		default:
			s.Pending++
		}
	}
	s.Eligible = len(r.eligible)
	return s
}
