// Package ranker fuses lexical and semantic signals into one project
// ranking.
//
// Both "best match" and "all matches" views come from the same ordered
// slice; there is exactly one ranking function.
package ranker

import (
	"sort"
	"strings"

	"github.com/fyrsmithlabs/goto/internal/matcher"
	"github.com/fyrsmithlabs/goto/internal/store"
)

const (
	// weightFuzzy and weightSemantic blend the two signals when both
	// exist. When only one signal exists it stands alone, unweighted.
	weightFuzzy    = 0.6
	weightSemantic = 0.4

	// boostName rewards every query term appearing in the project name.
	// boostMetadata rewards terms appearing in the description instead.
	// The two are mutually exclusive; the name boost wins.
	boostName     = 25.0
	boostMetadata = 10.0

	// Threshold is the minimum total a candidate must clear to count as
	// a match at all.
	Threshold = 40.0

	// epsilon is the score distance within which two candidates are
	// considered tied and usage recency decides.
	epsilon = 1.0

	maxScore = 100.0
)

// Match is one ranked candidate.
type Match struct {
	Project store.Project

	// Score is the final total, 0..100.
	Score float64

	// Fuzzy and Semantic are the component scores, 0..100. A negative
	// value means the signal was absent for this candidate.
	Fuzzy    float64
	Semantic float64
}

// Rank scores every project against the query and returns the candidates
// clearing the threshold, best first. semantic maps canonical path to a
// 0..100 similarity and may be nil when no query vector exists.
func Rank(query string, projects []store.Project, semantic map[string]float64) []Match {
	var matches []Match
	for _, p := range projects {
		m, ok := score(query, p, semantic)
		if !ok {
			continue
		}
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Project.Path < matches[j].Project.Path
	})
	resolveTies(matches)
	return matches
}

func score(query string, p store.Project, semantic map[string]float64) (Match, bool) {
	m := Match{Project: p, Fuzzy: -1, Semantic: -1}

	if raw, ok := matcher.ScoreProject(query, p.Name, p.Path); ok {
		m.Fuzzy = matcher.Normalized(query, raw)
	}
	if sim, ok := semantic[p.Path]; ok {
		m.Semantic = sim
	}
	if m.Fuzzy < 0 && m.Semantic < 0 {
		return Match{}, false
	}

	switch {
	case m.Fuzzy >= 0 && m.Semantic >= 0:
		m.Score = weightFuzzy*m.Fuzzy + weightSemantic*m.Semantic
	case m.Fuzzy >= 0:
		m.Score = m.Fuzzy
	default:
		m.Score = m.Semantic
	}

	switch {
	case matcher.TermsContained(query, p.Name):
		m.Score += boostName
	case matcher.TermsContained(query, descriptionCorpus(p)):
		m.Score += boostMetadata
	}

	if m.Score > maxScore {
		m.Score = maxScore
	}
	if m.Score < Threshold {
		return Match{}, false
	}
	return m, true
}

// descriptionCorpus is the text the metadata boost searches: the full
// extracted metadata blob when the record carries one, otherwise the
// manifest description plus detected technology tags.
func descriptionCorpus(p store.Project) string {
	if p.DescriptionText != "" {
		return p.DescriptionText
	}
	if len(p.TechTags) == 0 {
		return p.Description
	}
	return p.Description + " " + strings.Join(p.TechTags, " ")
}

// resolveTies reorders each run of scores within epsilon of its leader by
// usage recency. Runs as a second pass over the strictly sorted slice; an
// epsilon band comparator is not a strict weak ordering, so it cannot be
// folded into the sort itself.
func resolveTies(matches []Match) {
	for i := 0; i < len(matches); {
		j := i + 1
		for j < len(matches) && matches[i].Score-matches[j].Score <= epsilon {
			j++
		}
		band := matches[i:j]
		sort.SliceStable(band, func(a, b int) bool {
			return moreRecent(band[a].Project, band[b].Project)
		})
		i = j
	}
}

// moreRecent orders by last access descending, never-accessed last, then
// by path for determinism.
func moreRecent(a, b store.Project) bool {
	la, lb := a.LastAccessed, b.LastAccessed
	switch {
	case la != nil && lb == nil:
		return true
	case la == nil && lb != nil:
		return false
	case la != nil && lb != nil && !la.Equal(*lb):
		return la.After(*lb)
	}
	return a.Path < b.Path
}

// Best returns the head of the ranking, if any.
func Best(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// Recent returns projects that have been accessed at least once, most
// recent first, capped at limit. It backs the "-" query mode and bypasses
// scoring entirely.
func Recent(projects []store.Project, limit int) []store.Project {
	var visited []store.Project
	for _, p := range projects {
		if p.LastAccessed != nil {
			visited = append(visited, p)
		}
	}
	sort.Slice(visited, func(i, j int) bool {
		a, b := visited[i].LastAccessed, visited[j].LastAccessed
		if !a.Equal(*b) {
			return a.After(*b)
		}
		return visited[i].Path < visited[j].Path
	})
	if limit > 0 && len(visited) > limit {
		visited = visited[:limit]
	}
	return visited
}
