package curriculum

import "testing"

func TestSearchRanksIDThenSubstringThenTypos(t *testing.T) {
	r := NewRegistry(sampleCourses())

	got := r.Search("4", 0)
	if len(got) == 0 || got[0].ID != "4" {
		t.Fatalf("id match should come first, got %+v", got)
	}

	got = r.Search("análisis", 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 substring hits, got %d", len(got))
	}

	got = r.Search("fisica", 0)
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("typo tolerant match failed: %+v", got)
	}

	if got := r.Search("zzzzzzzz", 0); len(got) != 0 {
		t.Fatalf("unrelated query should not match, got %+v", got)
	}
}

func TestSearchLimit(t *testing.T) {
	r := NewRegistry(sampleCourses())
	if got := r.Search("a", 1); len(got) != 1 {
		t.Fatalf("limit not applied: %d", len(got))
	}
	if got := r.Search("   ", 5); got != nil {
		t.Fatalf("blank query should return nil")
	}
}

func TestTermOrderRank(t *testing.T) {
	o := DefaultTermOrder()
	if r, ok := o.Rank("  ANUAL "); !ok || r != 0 {
		t.Fatalf("rank(anual) = %d, %v", r, ok)
	}
	if r, ok := o.Rank("Verano"); ok || r != 3 {
		t.Fatalf("unknown term rank = %d, %v", r, ok)
	}
	if !o.Less("1er Cuatrimestre", "2do Cuatrimestre") {
		t.Fatalf("first term should sort before second")
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want State
		ok   bool
	}{
		{"pending", Pending, true},
		{"In_Progress", InProgress, true},
		{"aprobada", Completed, true},
		{"cursando", InProgress, true},
		{"", "", false},
		{"done", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseState(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseState(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
