package curriculum

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type memStore struct {
	saved   map[ID]State
	loadErr error
	saveErr error
	writes  int
}

func (m *memStore) Load(context.Context) (map[ID]State, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[ID]State, len(m.saved))
	for k, v := range m.saved {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) Save(_ context.Context, states map[ID]State) error {
	m.writes++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = make(map[ID]State, len(states))
	for k, v := range states {
		m.saved[k] = v
	}
	return nil
}

func sampleCourses() []Course {
	return []Course{
		{ID: "1", Name: "Análisis Matemático I", Year: 1, Term: "Anual"},
		{ID: "2", Name: "Algoritmos", Year: 1, Term: "1er Cuatrimestre"},
		{ID: "3", Name: "Física I", Year: 1, Term: "2do Cuatrimestre", Before: []ID{"1"}},
		{ID: "4", Name: "Análisis Matemático II", Year: 2, Term: "Anual", Before: []ID{"1", "3"}},
		{ID: "5", Name: "Sintaxis", Year: 2, Term: "1er Cuatrimestre", Before: []ID{"2", "99"}},
	}
}

func TestAdvanceCyclesWithPeriodThree(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(sampleCourses(), WithStore(&memStore{}))
	want := []State{InProgress, Completed, Pending, InProgress}
	for i, w := range want {
		got, err := r.Advance(ctx, "2")
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("advance %d = %s, want %s", i, got, w)
		}
	}
}

func TestAdvanceUnknownStateResets(t *testing.T) {
	courses := []Course{{ID: "x", Name: "X", State: State("aprobada-con-10")}}
	r := NewRegistry(courses)
	if got := r.State("x"); got != Pending {
		t.Fatalf("invalid initial state should normalise to pending, got %s", got)
	}
	if got := State("bogus").Next(); got != Pending {
		t.Fatalf("bogus.Next() = %s, want pending", got)
	}
}

func TestAdvanceUnknownCourse(t *testing.T) {
	store := &memStore{}
	r := NewRegistry(sampleCourses(), WithStore(store))
	_, err := r.Advance(context.Background(), "nope")
	if !errors.Is(err, ErrUnknownCourse) {
		t.Fatalf("expected ErrUnknownCourse, got %v", err)
	}
	if store.writes != 0 {
		t.Fatalf("unknown id must not write, got %d writes", store.writes)
	}
}

func TestAdvancePersistsFullSnapshot(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	r := NewRegistry(sampleCourses(), WithStore(store))
	for _, id := range []ID{"1", "1", "2", "3"} {
		if _, err := r.Advance(ctx, id); err != nil {
			t.Fatalf("advance %s: %v", id, err)
		}
		if !reflect.DeepEqual(store.saved, r.Snapshot()) {
			t.Fatalf("store %v != memory %v", store.saved, r.Snapshot())
		}
	}

	reloaded := NewRegistry(sampleCourses(), WithStore(store))
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Snapshot(), r.Snapshot()) {
		t.Fatalf("round trip mismatch: %v vs %v", reloaded.Snapshot(), r.Snapshot())
	}
}

func TestAdvanceKeepsStateWhenSaveFails(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	r := NewRegistry(sampleCourses(), WithStore(store))
	got, err := r.Advance(context.Background(), "1")
	if err == nil {
		t.Fatalf("expected save error")
	}
	if got != InProgress || r.State("1") != InProgress {
		t.Fatalf("state should advance in memory, got %s", r.State("1"))
	}
}

func TestLoadOverlaysPersistedState(t *testing.T) {
	store := &memStore{saved: map[ID]State{"A": Completed}}
	r := NewRegistry([]Course{{ID: "A", Name: "A", Year: 1, Term: "Anual"}}, WithStore(store))
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := r.State("A"); got != Completed {
		t.Fatalf("A = %s, want completed", got)
	}
}

func TestLoadFailureFallsBackToPending(t *testing.T) {
	courses := sampleCourses()
	courses[0].State = Completed
	r := NewRegistry(courses, WithStore(&memStore{loadErr: errors.New("corrupt")}))
	if err := r.Load(context.Background()); err == nil {
		t.Fatalf("expected load error to be reported")
	}
	for _, c := range r.Courses() {
		if c.State != Pending {
			t.Fatalf("%s = %s, want pending", c.ID, c.State)
		}
	}
}

func TestLoadIgnoresUnknownIDsAndLabels(t *testing.T) {
	store := &memStore{saved: map[ID]State{"1": Completed, "ghost": Completed, "2": State("weird")}}
	r := NewRegistry(sampleCourses(), WithStore(store))
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.State("1") != Completed || r.State("2") != Pending {
		t.Fatalf("unexpected states: %v", r.Snapshot())
	}
	if _, ok := r.Snapshot()["ghost"]; ok {
		t.Fatalf("snapshot should only hold registry ids")
	}
}

func TestEligibilityScenario(t *testing.T) {
	courses := []Course{
		{ID: "X", Name: "X", Before: []ID{"Y", "Z"}},
		{ID: "Y", Name: "Y", State: Completed},
		{ID: "Z", Name: "Z"},
	}
	r := NewRegistry(courses)
	if r.ComputeFinalEligible()["X"] {
		t.Fatalf("X must not be eligible while Z is pending")
	}
	ctx := context.Background()
	// pending -> in_progress -> completed
	r.Advance(ctx, "Z")
	r.Advance(ctx, "Z")
	if !r.ComputeFinalEligible()["X"] || !r.Eligible("X") {
		t.Fatalf("X must be eligible once Y and Z are completed")
	}
}

func TestEligibilityNeverFlagsStartedCourses(t *testing.T) {
	courses := []Course{
		{ID: "a", Name: "a", State: Completed},
		{ID: "b", Name: "b", State: InProgress},
		{ID: "c", Name: "c", State: InProgress, Before: []ID{"a"}},
		{ID: "d", Name: "d"},
		{ID: "e", Name: "e", Before: []ID{"missing"}},
	}
	got := NewRegistry(courses).ComputeFinalEligible()
	want := map[ID]bool{"d": true}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("eligible = %v, want %v", got, want)
	}
}

func TestGroupedOrdersYearsTermsAndNames(t *testing.T) {
	r := NewRegistry([]Course{
		{ID: "C", Name: "C", Year: 2, Term: "first"},
		{ID: "B", Name: "B", Year: 1, Term: "second"},
		{ID: "A2", Name: "Zeta", Year: 1, Term: "first"},
		{ID: "A", Name: "Alfa", Year: 1, Term: "first"},
	}, WithTermOrder(NewTermOrder(map[string]int{"first": 1, "second": 2})))

	groups := r.Grouped()
	if len(groups) != 2 || groups[0].Year != 1 || groups[1].Year != 2 {
		t.Fatalf("unexpected years: %+v", groups)
	}
	terms := groups[0].Terms
	if len(terms) != 2 || terms[0].Label != "first" || terms[1].Label != "second" {
		t.Fatalf("unexpected terms: %+v", terms)
	}
	if terms[0].Courses[0].ID != "A" || terms[0].Courses[1].ID != "A2" {
		t.Fatalf("names not sorted: %+v", terms[0].Courses)
	}
}

func TestGroupedDefaultOrderPutsAnualFirst(t *testing.T) {
	groups := NewRegistry(sampleCourses()).Grouped()
	var labels []string
	for _, tg := range groups[0].Terms {
		labels = append(labels, tg.Label)
	}
	want := []string{"Anual", "1er Cuatrimestre", "2do Cuatrimestre"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
}

func TestGroupedUnknownTermsSortLast(t *testing.T) {
	r := NewRegistry([]Course{
		{ID: "1", Name: "a", Year: 1, Term: "Verano"},
		{ID: "2", Name: "b", Year: 1, Term: "2do cuatrimestre"},
		{ID: "3", Name: "c", Year: 1, Term: "Bimestre"},
	})
	terms := r.Grouped()[0].Terms
	if terms[0].Label != "2do cuatrimestre" || terms[1].Label != "Bimestre" || terms[2].Label != "Verano" {
		t.Fatalf("unexpected order: %v, %v, %v", terms[0].Label, terms[1].Label, terms[2].Label)
	}
}

func TestGroupedMergesTermSpellings(t *testing.T) {
	r := NewRegistry([]Course{
		{ID: "1", Name: "Física I", Year: 1, Term: "Anual"},
		{ID: "2", Name: "Álgebra", Year: 1, Term: "anual "},
		{ID: "3", Name: "Sintaxis", Year: 1, Term: "1er  cuatrimestre"},
		{ID: "4", Name: "Algoritmos", Year: 1, Term: "1er Cuatrimestre"},
	})
	terms := r.Grouped()[0].Terms
	if len(terms) != 2 {
		t.Fatalf("expected 2 term groups, got %+v", terms)
	}
	if terms[0].Label != "Anual" || len(terms[0].Courses) != 2 {
		t.Fatalf("unexpected first group: %+v", terms[0])
	}
	if terms[0].Courses[0].ID != "2" {
		t.Fatalf("courses not sorted inside merged group: %+v", terms[0].Courses)
	}
	if terms[1].Label != "1er  cuatrimestre" || len(terms[1].Courses) != 2 {
		t.Fatalf("unexpected second group: %+v", terms[1])
	}
}

func TestGroupedCollatesAccents(t *testing.T) {
	r := NewRegistry([]Course{
		{ID: "1", Name: "Química", Year: 1, Term: "Anual"},
		{ID: "2", Name: "Álgebra", Year: 1, Term: "Anual"},
		{ID: "3", Name: "Biología", Year: 1, Term: "Anual"},
	})
	courses := r.Grouped()[0].Terms[0].Courses
	if courses[0].Name != "Álgebra" || courses[1].Name != "Biología" || courses[2].Name != "Química" {
		t.Fatalf("unexpected order: %s, %s, %s", courses[0].Name, courses[1].Name, courses[2].Name)
	}
}

func TestDescribePrerequisites(t *testing.T) {
	r := NewRegistry(sampleCourses(), WithNoneLabel("Ninguna"))

	p, ok := r.DescribePrerequisites("5")
	if !ok {
		t.Fatalf("course 5 should exist")
	}
	if p.Before != "Algoritmos, 99" {
		t.Fatalf("before = %q", p.Before)
	}
	if p.After != "Ninguna" {
		t.Fatalf("after = %q", p.After)
	}

	if _, ok := r.DescribePrerequisites("404"); ok {
		t.Fatalf("unknown course should report false")
	}
}

func TestDuplicatesAreSkipped(t *testing.T) {
	r := NewRegistry([]Course{
		{ID: "1", Name: "first"},
		{ID: "1", Name: "second"},
	})
	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}
	if c, _ := r.Course("1"); c.Name != "first" {
		t.Fatalf("first record should win, got %q", c.Name)
	}
	if d := r.Duplicates(); len(d) != 1 || d[0] != "1" {
		t.Fatalf("duplicates = %v", d)
	}
}

func TestResetWritesPendingSnapshot(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	r := NewRegistry(sampleCourses(), WithStore(store))
	r.Advance(ctx, "1")
	r.Advance(ctx, "2")
	if err := r.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for id, st := range store.saved {
		if st != Pending {
			t.Fatalf("%s = %s after reset", id, st)
		}
	}
}

func TestSummary(t *testing.T) {
	courses := sampleCourses()
	courses[0].Credits, courses[0].State = 8, Completed
	courses[1].Credits, courses[1].State = 6, InProgress
	courses[2].Credits = 4
	s := NewRegistry(courses).Summary()
	if s.Total != 5 || s.Completed != 1 || s.InProgress != 1 || s.Pending != 3 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.Credits != 18 || s.CreditsCompleted != 8 {
		t.Fatalf("unexpected credits: %+v", s)
	}
	// only 3: course 5 waits on an in-progress course and a dangling id
	if s.Eligible != 1 {
		t.Fatalf("eligible = %d, want 1", s.Eligible)
	}
	if s.Percent() != 20 {
		t.Fatalf("percent = %d", s.Percent())
	}
}
