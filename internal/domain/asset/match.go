package asset

import (
	"sort"
	"strings"
)

// Match scores for name resolution, most specific first.
const (
	scoreExact       = 1000
	scoreContains    = 500
	scoreContainedIn = 400
	scoreWordOverlap = 100
)

// Score rates how well an asset name matches a search term. Exact
// case-insensitive equality scores 1000, name-contains-term 500,
// term-contains-name 400, otherwise 100 per overlapping word. Zero means no
// relation.
func Score(name, term string) int {
	nameLower := strings.ToLower(name)
	termLower := strings.ToLower(term)

	switch {
	case nameLower == termLower:
		return scoreExact
	case strings.Contains(nameLower, termLower):
		return scoreContains
	case strings.Contains(termLower, nameLower):
		return scoreContainedIn
	}

	nameWords := strings.Fields(nameLower)
	termWords := strings.Fields(termLower)
	overlap := 0
	for _, w := range nameWords {
		for _, t := range termWords {
			if w == t {
				overlap++
				break
			}
		}
	}
	return overlap * scoreWordOverlap
}

// BestMatch returns the asset whose name best matches the search term, or nil
// when every candidate scores zero. Ties on score break by lexicographic name
// so resolution is deterministic regardless of the store's scan order.
func BestMatch(candidates []*Asset, term string) *Asset {
	var best *Asset
	bestScore := 0

	for _, c := range candidates {
		s := Score(c.Name, term)
		if s == 0 {
			continue
		}
		if s > bestScore || (s == bestScore && best != nil && c.Name < best.Name) {
			best = c
			bestScore = s
		}
	}
	return best
}

// RankMatches returns all non-zero-scoring candidates ordered best first,
// ties broken by name. Used by diagnostics to report near-misses when
// resolution fails.
func RankMatches(candidates []*Asset, term string) []*Asset {
	type scored struct {
		asset *Asset
		score int
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if s := Score(c.Name, term); s > 0 {
			ranked = append(ranked, scored{asset: c, score: s})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].asset.Name < ranked[j].asset.Name
	})

	out := make([]*Asset, len(ranked))
	for i, r := range ranked {
		out[i] = r.asset
	}
	return out
}
