package tui

import "github.com/jask/malla/internal/curriculum"

type rowKind int

const (
	rowYear rowKind = iota
	rowTerm
	rowCourse
)

// row is one line of the tree view.
type row struct {
	kind rowKind
	year int
	term string
	id   curriculum.ID
}

// tree is the projection of the registry onto display rows. handles maps a
// course id to its row so the view never has to search rendered output to
// find a course; order lists course ids top to bottom for cursor movement.
type tree struct {
	rows     []row
	handles  map[curriculum.ID]int
	order    []curriculum.ID
	position map[curriculum.ID]int // id -> index in order
}

func buildTree(groups []curriculum.YearGroup) tree {
	t := tree{
		handles:  map[curriculum.ID]int{},
		position: map[curriculum.ID]int{},
	}
	for _, yg := range groups {
		t.rows = append(t.rows, row{kind: rowYear, year: yg.Year})
		for _, tg := range yg.Terms {
			t.rows = append(t.rows, row{kind: rowTerm, year: yg.Year, term: tg.Label})
			for _, c := range tg.Courses {
				t.handles[c.ID] = len(t.rows)
				t.position[c.ID] = len(t.order)
				t.order = append(t.order, c.ID)
				t.rows = append(t.rows, row{kind: rowCourse, year: yg.Year, term: tg.Label, id: c.ID})
			}
		}
	}
	return t
}

// rowOf returns the row index of a course, or -1.
func (t tree) rowOf(id curriculum.ID) int {
	if i, ok := t.handles[id]; ok {
		return i
	}
	return -1
}

// courseAt returns the course drawn on row i.
func (t tree) courseAt(i int) (curriculum.ID, bool) {
	if i < 0 || i >= len(t.rows) || t.rows[i].kind != rowCourse {
		return "", false
	}
	return t.rows[i].id, true
}
