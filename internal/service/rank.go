package service

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/fireflymoney/internal/model"
)

// Rank filters candidates against a free-text query and orders them: names
// starting with the query first, then names containing it, then near misses
// (one edit away from a prefix, for queries of three runes or more). Ties
// break on edit distance to the whole name and then alphabetically. An
// empty query keeps the input order. At most limit items are returned when
// limit is positive.
func Rank(query string, items []model.Suggestion, limit int) []model.Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return truncate(append([]model.Suggestion(nil), items...), limit)
	}

	type scored struct {
		s     model.Suggestion
		tier  int
		dist  int
		lower string
	}
	qr := []rune(q)
	var hits []scored
	for _, it := range items {
		name := strings.ToLower(it.Name)
		tier := -1
		switch {
		case strings.HasPrefix(name, q):
			tier = 0
		case strings.Contains(name, q):
			tier = 1
		case len(qr) >= 3:
			nr := []rune(name)
			if len(nr) >= len(qr)-1 {
				end := len(qr)
				if end > len(nr) {
					end = len(nr)
				}
				if levenshtein.ComputeDistance(q, string(nr[:end])) <= 1 {
					tier = 2
				}
			}
		}
		if tier < 0 {
			continue
		}
		hits = append(hits, scored{s: it, tier: tier, dist: levenshtein.ComputeDistance(q, name), lower: name})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.lower < b.lower
	})
	out := make([]model.Suggestion, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.s)
	}
	return truncate(out, limit)
}

func truncate(s []model.Suggestion, limit int) []model.Suggestion {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
