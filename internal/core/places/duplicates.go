package places

import (
	"strings"

	"Placemap/internal/core/geo"
)

// DuplicateType tells why two places are suspected duplicates.
type DuplicateType int

const (
	// SimilarChars: the titles are within a small Levenshtein distance.
	SimilarChars DuplicateType = iota
	// SimilarWords: at most two words of one title are missing in the other.
	SimilarWords
)

func (t DuplicateType) String() string {
	if t == SimilarChars {
		return "SimilarChars"
	}
	return "SimilarWords"
}

// Duplicate reports a suspected duplicate pair, with ID1 < ID2.
type Duplicate struct {
	ID1  string        `json:"id1"`
	ID2  string        `json:"id2"`
	Type DuplicateType `json:"type"`
}

// duplicateMaxDistanceMeters is the proximity threshold below which similar
// titles count as duplicates.
const duplicateMaxDistanceMeters = 100.0

// FindDuplicates scans two collections pairwise and reports suspected
// duplicates. Pairs are emitted once with ID1 < ID2.
func FindDuplicates(placeList, candidates []PlaceRevision) []Duplicate {
	var out []Duplicate
	for i := range placeList {
		p1 := &placeList[i].Place
		for j := range candidates {
			p2 := &candidates[j].Place
			if p1.ID >= p2.ID {
				continue
			}
			if t, ok := isDuplicate(p1, p2); ok {
				out = append(out, Duplicate{ID1: p1.ID, ID2: p2.ID, Type: t})
			}
		}
	}
	return out
}

// DuplicatesOf compares an incoming place against existing candidates.
func DuplicatesOf(newPlace *Place, candidates []PlaceRevision) []Duplicate {
	var out []Duplicate
	for i := range candidates {
		p := &candidates[i].Place
		if t, ok := isDuplicate(newPlace, p); ok {
			out = append(out, Duplicate{ID1: newPlace.ID, ID2: p.ID, Type: t})
		}
	}
	return out
}

func isDuplicate(a, b *Place) (DuplicateType, bool) {
	switch {
	case similarTitle(a.Title, b.Title, 0.3, 0) && inCloseProximity(a, b):
		return SimilarChars, true
	case similarTitle(a.Title, b.Title, 0.0, 2) && inCloseProximity(a, b):
		return SimilarWords, true
	}
	return 0, false
}

func inCloseProximity(a, b *Place) bool {
	d, ok := geo.DistanceMeters(a.Location.Pos, b.Location.Pos)
	return ok && d <= duplicateMaxDistanceMeters
}

// similarTitle holds when the titles are within maxPercentDifferent
// Levenshtein edits of the shorter title's length, or differ in at most
// maxWordsDifferent words. Lengths are code-point counts: titles are UTF-8
// and umlauts must count as one character.
func similarTitle(t1, t2 string, maxPercentDifferent float64, maxWordsDifferent int) bool {
	len1 := len([]rune(t1))
	len2 := len([]rune(t2))
	maxDist := int(float64(min(len1, len2))*maxPercentDifferent) + 1
	return levenshteinDistance(t1, t2) <= maxDist ||
		wordsEqualExceptK(t1, t2, maxWordsDifferent)
}

// wordsEqualExceptK reports whether all but k words of the two titles match.
// Words are tokenized on ASCII whitespace and treated as sets; two
// single-word titles never match this way.
func wordsEqualExceptK(s1, s2 string, k int) bool {
	w1 := strings.Fields(s1)
	w2 := strings.Fields(s2)
	if len(w1) == 1 && len(w2) == 1 {
		return false
	}
	if len(w1) > len(w2) {
		w1, w2 = w2, w1
	}
	set := make(map[string]struct{}, len(w1))
	for _, w := range w1 {
		set[w] = struct{}{}
	}
	diff := 0
	for _, w := range w2 {
		if _, ok := set[w]; !ok {
			diff++
		}
	}
	return diff <= k
}

// levenshteinDistance computes the classic O(n·m) edit distance over code
// points.
func levenshteinDistance(s, t string) int {
	rs := []rune(s)
	rt := []rune(t)
	prev := make([]int, len(rt)+1)
	cur := make([]int, len(rt)+1)
	for j := 0; j <= len(rt); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(rs); i++ {
		cur[0] = i
		for j := 1; j <= len(rt); j++ {
			cost := 1
			if rs[i-1] == rt[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(rt)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
