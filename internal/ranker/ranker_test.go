package ranker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/goto/internal/store"
)

func proj(path, name string) store.Project {
	return store.Project{Path: path, Name: name}
}

func TestRankDocsMatchesDocumentation(t *testing.T) {
	projects := []store.Project{
		proj("/Users/x/code/documentation", "documentation"),
	}

	matches := Rank("docs", projects, nil)
	require.Len(t, matches, 1, "plural-tolerant containment must fire")
	m := matches[0]
	assert.Equal(t, "/Users/x/code/documentation", m.Project.Path)
	assert.InDelta(t, m.Fuzzy+boostName, m.Score, 0.01, "name boost applies")
}

func TestRankNameBoostSkipsNamesLackingTerms(t *testing.T) {
	p := proj("/p/zeppelin-api", "zeppelin-api")
	semantic := map[string]float64{p.Path: 60}

	matches := Rank("flights", []store.Project{p}, semantic)
	require.Len(t, matches, 1)
	assert.InDelta(t, 60.0, matches[0].Score, 0.01, "no boost without containment")
}

func TestRankStrictlyDescending(t *testing.T) {
	projects := []store.Project{
		proj("/p/api", "api"),
		proj("/p/api-gateway", "api-gateway"),
		proj("/p/grpc-api-tools", "grpc-api-tools"),
	}

	matches := Rank("api", projects, nil)
	require.GreaterOrEqual(t, len(matches), 3)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestRankThresholdExcludesWeakCandidates(t *testing.T) {
	projects := []store.Project{
		proj("/p/zebra", "zebra"),
	}
	matches := Rank("api", projects, nil)
	assert.Empty(t, matches)
}

func TestRankSemanticOnlyCandidate(t *testing.T) {
	// "machine learning" shares no subsequence with the name, but the
	// embedding knows better.
	projects := []store.Project{
		proj("/p/torchvision", "tv-models"),
	}
	semantic := map[string]float64{"/p/torchvision": 85}

	matches := Rank("qqq", projects, semantic)
	require.Len(t, matches, 1)
	assert.Less(t, matches[0].Fuzzy, 0.0)
	assert.Equal(t, 85.0, matches[0].Semantic)
	assert.Equal(t, 85.0, matches[0].Score)
}

func TestRankBlendsBothSignals(t *testing.T) {
	projects := []store.Project{
		proj("/p/api", "api"),
	}
	semantic := map[string]float64{"/p/api": 20}

	matches := Rank("api", projects, semantic)
	require.Len(t, matches, 1)
	m := matches[0]
	require.GreaterOrEqual(t, m.Fuzzy, 0.0)
	expectedBase := weightFuzzy*m.Fuzzy + weightSemantic*m.Semantic
	assert.InDelta(t, expectedBase+boostName, m.Score, 0.01)
}

func TestRankMetadataBoostWhenNameMisses(t *testing.T) {
	withMeta := store.Project{
		Path: "/p/hub", Name: "hub",
		Description: "terminal dashboard for kubernetes clusters",
	}
	semantic := map[string]float64{"/p/hub": 70}

	matches := Rank("kubernetes", []store.Project{withMeta}, semantic)
	require.Len(t, matches, 1)
	assert.InDelta(t, 70+boostMetadata, matches[0].Score, 0.01)
}

func TestRankMetadataBoostSearchesFullCorpus(t *testing.T) {
	p := store.Project{
		Path: "/p/foyer", Name: "foyer",
		DescriptionText: "foyer | Hybrid cache library written in Rust for hybrid storage systems.",
	}
	semantic := map[string]float64{p.Path: 35}

	matches := Rank("cache rust", []store.Project{p}, semantic)
	require.Len(t, matches, 1,
		"README-derived terms lift a borderline semantic candidate over the threshold")
	assert.InDelta(t, 35+boostMetadata, matches[0].Score, 0.01)
}

func TestRankNameBoostWinsOverMetadataBoost(t *testing.T) {
	p := store.Project{
		Path: "/p/kubernetes-tools", Name: "kubernetes-tools",
		Description: "kubernetes utilities",
	}
	semantic := map[string]float64{p.Path: 20}

	matches := Rank("kubernetes", []store.Project{p}, semantic)
	require.Len(t, matches, 1)
	base := weightFuzzy*matches[0].Fuzzy + weightSemantic*20
	assert.InDelta(t, base+boostName, matches[0].Score, 0.01,
		"only the name boost applies")
}

func TestRankCapsAtHundred(t *testing.T) {
	projects := []store.Project{proj("/p/api", "api")}
	semantic := map[string]float64{"/p/api": 100}

	matches := Rank("api", projects, semantic)
	require.Len(t, matches, 1)
	assert.LessOrEqual(t, matches[0].Score, 100.0)
}

func TestRankTieBreakByLastAccessed(t *testing.T) {
	recent := time.Now().Add(-time.Hour)
	old := time.Now().Add(-100 * time.Hour)

	a := proj("/p/api-one", "api-one")
	a.LastAccessed = &old
	b := proj("/p/api-two", "api-two")
	b.LastAccessed = &recent
	c := proj("/p/api-zzz", "api-zzz")

	matches := Rank("api", []store.Project{a, b, c}, nil)
	require.Len(t, matches, 3)
	assert.Equal(t, "/p/api-two", matches[0].Project.Path)
	assert.Equal(t, "/p/api-one", matches[1].Project.Path)
	assert.Equal(t, "/p/api-zzz", matches[2].Project.Path, "never accessed sorts last")
}

func TestRankRecencyBreaksNearTies(t *testing.T) {
	recent := time.Now().Add(-time.Hour)

	a := proj("/p/alpha", "alpha")
	b := proj("/p/beta", "beta")
	b.LastAccessed = &recent
	c := proj("/p/gamma", "gamma")
	semantic := map[string]float64{"/p/alpha": 80, "/p/beta": 79.5, "/p/gamma": 70}

	matches := Rank("qqq", []store.Project{a, b, c}, semantic)
	require.Len(t, matches, 3)
	assert.Equal(t, "/p/beta", matches[0].Project.Path, "recency wins inside the epsilon band")
	assert.Equal(t, "/p/alpha", matches[1].Project.Path)
	assert.Equal(t, "/p/gamma", matches[2].Project.Path, "a clear score gap is never reordered")
}

func TestRankDeterministicPathOrderOnFullTie(t *testing.T) {
	a := proj("/p/api-a", "api-x")
	b := proj("/p/api-b", "api-x")

	first := Rank("api", []store.Project{b, a}, nil)
	second := Rank("api", []store.Project{a, b}, nil)
	require.Len(t, first, 2)
	assert.Equal(t, "/p/api-a", first[0].Project.Path)
	assert.Equal(t, first[0].Project.Path, second[0].Project.Path, "stable across runs")
}

func TestRankDegradationKeepsNameBoostWinner(t *testing.T) {
	winner := proj("/p/api", "api")
	rival := proj("/p/backend-service", "backend-service")

	withVectors := Rank("api", []store.Project{winner, rival},
		map[string]float64{"/p/backend-service": 90})
	require.NotEmpty(t, withVectors)
	assert.Equal(t, "/p/api", withVectors[0].Project.Path)

	lexicalOnly := Rank("api", []store.Project{winner, rival}, nil)
	require.NotEmpty(t, lexicalOnly)
	assert.Equal(t, "/p/api", lexicalOnly[0].Project.Path,
		"losing the provider must not demote the name-boost winner")
}

func TestBestEmpty(t *testing.T) {
	_, ok := Best(nil)
	assert.False(t, ok)
}

func TestRecentBypassesScoring(t *testing.T) {
	t1 := time.Now().Add(-time.Hour)
	t2 := time.Now().Add(-2 * time.Hour)

	a := proj("/p/zzz", "zzz")
	a.LastAccessed = &t1
	b := proj("/p/aaa", "aaa")
	b.LastAccessed = &t2
	never := proj("/p/never", "never")

	got := Recent([]store.Project{never, b, a}, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "/p/zzz", got[0].Path)
	assert.Equal(t, "/p/aaa", got[1].Path)

	capped := Recent([]store.Project{never, b, a}, 1)
	assert.Len(t, capped, 1)
}
