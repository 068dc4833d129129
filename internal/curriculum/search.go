package curriculum

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Search ranks courses against a free-text query. Exact id matches come
// first, then names containing the query, then the rest by edit distance
// to the closest word of the name. At most limit results are returned;
// limit <= 0 means no limit.
func (r *Registry) Search(query string, limit int) []Course {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	type hit struct {
		course Course
		tier   int
		dist   int
	}
	hits := make([]hit, 0, len(r.courses))
	for _, c := range r.courses {
		name := strings.ToLower(c.Name)
		switch {
		case strings.ToLower(string(c.ID)) == q:
			hits = append(hits, hit{course: c, tier: 0})
		case strings.Contains(name, q):
			hits = append(hits, hit{course: c, tier: 1, dist: strings.Index(name, q)})
		default:
			d := closestWord(name, q)
			if d > maxDistance(q) {
				continue
			}
			hits = append(hits, hit{course: c, tier: 2, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].tier != hits[j].tier {
			return hits[i].tier < hits[j].tier
		}
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].course.Name < hits[j].course.Name
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Course, len(hits))
	for i, h := range hits {
		out[i] = h.course
	}
	return out
}

func closestWord(name, q string) int {
	best := levenshtein.ComputeDistance(name, q)
	for _, w := range strings.Fields(name) {
		if d := levenshtein.ComputeDistance(w, q); d < best {
			best = d
		}
	}
	return best
}

// maxDistance tolerates roughly one typo per four characters.
func maxDistance(q string) int {
	n := len([]rune(q))/4 + 1
	if n > 3 {
		n = 3
	}
	return n
}
