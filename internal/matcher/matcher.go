// Package matcher implements the lexical fuzzy scorer.
//
// The scorer is an ordered-subsequence match: every query character must
// appear in the target in order, but not necessarily contiguously. Matches
// at word boundaries and contiguous runs score higher; gaps cost points.
// Matching is case-insensitive.
package matcher

import (
	"strings"
	"unicode"
)

const (
	pointsPerChar    = 4
	bonusFirstChar   = 12
	bonusBoundary    = 6
	bonusConsecutive = 8
	gapPenalty       = 1
)

// Score returns the fuzzy score of query against target and whether the
// query matched at all. A query whose characters cannot be found as an
// ordered subsequence of the target yields (0, false).
//
// Queries with a trailing plural "s" on a term get a second chance with the
// "s" dropped, so "docs" still matches "documentation".
func Score(query, target string) (int, bool) {
	query = strings.TrimSpace(query)
	if query == "" || target == "" {
		return 0, false
	}

	if s, ok := scoreSubsequence(query, target); ok {
		return s, true
	}
	if stemmed := stemTerms(query); stemmed != query {
		if s, ok := scoreSubsequence(stemmed, target); ok {
			return s, true
		}
	}
	return 0, false
}

// ScoreProject scores a query against a project's name, falling back to the
// full path when the name alone does not match.
func ScoreProject(query, name, path string) (int, bool) {
	if s, ok := Score(query, name); ok {
		return s, true
	}
	return Score(query, path)
}

// Normalized maps a raw score into 0..100 by dividing by the ideal score of
// the query matched against itself (a perfect contiguous prefix match).
func Normalized(query string, raw int) float64 {
	ideal, ok := scoreSubsequence(query, query)
	if !ok || ideal == 0 {
		return 0
	}
	n := 100 * float64(raw) / float64(ideal)
	if n > 100 {
		n = 100
	}
	if n < 0 {
		n = 0
	}
	return n
}

func scoreSubsequence(query, target string) (int, bool) {
	q := []rune(strings.ToLower(query))
	t := []rune(target)
	tl := []rune(strings.ToLower(target))

	score := 0
	gaps := 0
	qi := 0
	lastMatch := -2

	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		// Whitespace in the query separates terms; it never has to
		// match anything in the target.
		for qi < len(q) && unicode.IsSpace(q[qi]) {
			qi++
		}
		if qi == len(q) {
			break
		}

		if tl[ti] != q[qi] {
			if qi > 0 {
				gaps++
			}
			continue
		}

		s := pointsPerChar
		switch {
		case ti == 0:
			s += bonusFirstChar
		case isBoundary(t[ti-1], t[ti]):
			s += bonusBoundary
		}
		if ti == lastMatch+1 {
			s += bonusConsecutive
		}
		score += s
		lastMatch = ti
		qi++
	}

	for qi < len(q) && unicode.IsSpace(q[qi]) {
		qi++
	}
	if qi < len(q) {
		return 0, false
	}

	score -= gaps * gapPenalty
	if score < 1 {
		score = 1
	}
	return score, true
}

// isBoundary reports whether cur starts a new word given the previous rune:
// after a separator, or a lower-to-upper case change.
func isBoundary(prev, cur rune) bool {
	if prev == '-' || prev == '_' || prev == '/' || prev == '.' || unicode.IsSpace(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}

// stemTerms drops a trailing plural "s" from each query term of four or
// more characters.
func stemTerms(query string) string {
	terms := strings.Fields(query)
	for i, term := range terms {
		if len(term) >= 4 && strings.HasSuffix(term, "s") && !strings.HasSuffix(term, "ss") {
			terms[i] = strings.TrimSuffix(term, "s")
		}
	}
	return strings.Join(terms, " ")
}

// TermsContained reports whether every whitespace-delimited query term is
// contained in text, case-insensitively. A term with a trailing plural "s"
// also counts when its singular form is contained, so "docs" matches
// "documentation".
func TermsContained(query, text string) bool {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			continue
		}
		stemmed := stemTerms(term)
		if stemmed != term && strings.Contains(lower, stemmed) {
			continue
		}
		return false
	}
	return true
}
