package curriculum

import "strings"

// TermOrder maps term labels to a sort rank. Lower ranks come first within a
// year. Lookups ignore case and surrounding space.
type TermOrder struct {
	ranks map[string]int
	max   int
}

// DefaultTermOrder puts full-year courses before the two semesters.
func DefaultTermOrder() TermOrder {
	return NewTermOrder(map[string]int{
		"Anual":            0,
		"1er Cuatrimestre": 1,
		"2do Cuatrimestre": 2,
	})
}

// NewTermOrder builds an order from a label -> rank table.
func NewTermOrder(ranks map[string]int) TermOrder {
	o := TermOrder{ranks: make(map[string]int, len(ranks))}
	for label, rank := range ranks {
		o.ranks[normalizeTerm(label)] = rank
		if rank > o.max {
			o.max = rank
		}
	}
	return o
}

// Rank returns the rank of label and whether the label is configured.
// Unknown labels rank after every configured one.
func (o TermOrder) Rank(label string) (int, bool) {
	if r, ok := o.ranks[normalizeTerm(label)]; ok {
		return r, true
	}
	return o.max + 1, false
}

// Less orders two term labels: by rank, then by label.
func (o TermOrder) Less(a, b string) bool {
	ra, _ := o.Rank(a)
	rb, _ := o.Rank(b)
	if ra != rb {
		return ra < rb
	}
	return normalizeTerm(a) < normalizeTerm(b)
}

func normalizeTerm(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}
