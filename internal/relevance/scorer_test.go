// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-vault/pkg/types"
)

func TestScoreBaseline(t *testing.T) {
	s := Default()
	for _, u := range []string{
		"https://example.com/page",
		"https://blog.example.org/2024/01/hello",
		"http://shop.example.net/",
	} {
		sc := s.Score(types.HistoryEntry{URL: u, Title: "Hello world", VisitCount: 1})
		assert.Equal(t, 0.3, sc.Total, u)
		assert.Equal(t, 0.3, sc.Domain, u)
		assert.Zero(t, sc.Keyword, u)
		assert.Zero(t, sc.VisitFrequency, u)
		assert.False(t, s.Classify(sc).IsAcademic, u)
	}
}

func TestScoreAcademicAllowList(t *testing.T) {
	s := Default()
	for _, u := range []string{
		"https://arxiv.org/abs/2101.00001",
		"https://www.nature.com/articles/x",
		"https://scholar.google.com/scholar?q=x",
		"https://scholar.google.co.jp/",
		"https://pubmed.ncbi.nlm.nih.gov/123/",
		"https://ieeexplore.ieee.org/document/1",
		"https://www.jstor.org/stable/1",
		"https://web.mit.edu/",
		"https://www.ox.ac.uk/",
		"https://www.u-tokyo.ac.jp/",
		"https://www.cdc.gov/",
		"https://www.unimelb.edu.au/",
	} {
		sc := s.Score(types.HistoryEntry{URL: u, VisitCount: 1})
		assert.GreaterOrEqual(t, sc.Total, 0.7, u)
		assert.NotEmpty(t, sc.MatchedDomain, u)
		c := s.Classify(sc)
		assert.True(t, c.IsAcademic, u)
		assert.Equal(t, types.CategoryAcademicDomain, c.Category, u)
	}
}

func TestScoreAcademicPatternIsLabelBased(t *testing.T) {
	s := Default()
	// "tac.example.com" contains "ac." but has no "ac" label.
	sc := s.Score(types.HistoryEntry{URL: "https://tac.example.com/"})
	assert.Empty(t, sc.MatchedDomain)
	assert.Equal(t, 0.3, sc.Domain)

	// "notnature.com" is not a subdomain of nature.com.
	sc = s.Score(types.HistoryEntry{URL: "https://notnature.com/"})
	assert.Empty(t, sc.MatchedDomain)
}

func TestScoreVisitFrequency(t *testing.T) {
	s := Default()
	prev := -1.0
	for visits := 0; visits <= 10; visits++ {
		sc := s.Score(types.HistoryEntry{URL: "https://example.com/", VisitCount: visits})
		assert.GreaterOrEqual(t, sc.Total, prev, "visits=%d", visits)
		prev = sc.Total
		switch {
		case visits <= 1:
			assert.Zero(t, sc.VisitFrequency, "visits=%d", visits)
		case visits == 2:
			assert.Equal(t, 0.2, sc.VisitFrequency)
		default:
			assert.Equal(t, 0.3, sc.VisitFrequency, "visits=%d", visits)
		}
	}
}

func TestScoreKeywords(t *testing.T) {
	s := Default()

	sc := s.Score(types.HistoryEntry{URL: "https://example.com/x", Title: "A Study of Things"})
	assert.True(t, sc.TitleMatch)
	assert.False(t, sc.URLMatch)
	assert.Equal(t, 0.2, sc.Keyword)
	assert.Equal(t, 0.5, sc.Total)

	sc = s.Score(types.HistoryEntry{URL: "https://example.com/Research/x"})
	assert.False(t, sc.TitleMatch)
	assert.True(t, sc.URLMatch)
	assert.Equal(t, 0.1, sc.Keyword)
	assert.Equal(t, 0.4, sc.Total)

	sc = s.Score(types.HistoryEntry{URL: "https://example.com/paper", Title: "THESIS"})
	assert.Equal(t, 0.3, sc.Keyword)
	assert.Equal(t, 0.6, sc.Total)
}

func TestScoreCap(t *testing.T) {
	s := Default()
	sc := s.Score(types.HistoryEntry{
		URL:        "https://arxiv.org/abs/research-paper",
		Title:      "Research paper: a journal article analysis",
		VisitCount: 50,
	})
	assert.Equal(t, 1.0, sc.Total)
	for _, v := range []float64{sc.Domain, sc.Keyword, sc.VisitFrequency, sc.Total} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestScoreInvalidURL(t *testing.T) {
	s := Default()
	for _, u := range []string{"", "not a url", "://broken", "http://[::1", "example.com/path"} {
		var sc types.Score
		require.NotPanics(t, func() {
			sc = s.Score(types.HistoryEntry{URL: u, Title: "research", VisitCount: 9})
		}, u)
		assert.True(t, sc.Invalid, u)
		assert.Zero(t, sc.Total, u)
		c := s.Classify(sc)
		assert.False(t, c.IsAcademic, u)
	}
}

func TestClassifyPriority(t *testing.T) {
	s := Default()

	_, c := s.Evaluate(types.HistoryEntry{URL: "https://example.com/", VisitCount: 4, Title: "research"})
	assert.Equal(t, types.CategoryFrequentVisit, c.Category)
	assert.Equal(t, "Frequently visited site", c.Reason)

	_, c = s.Evaluate(types.HistoryEntry{URL: "https://example.com/", VisitCount: 3, Title: "research"})
	assert.Equal(t, types.CategoryKeywordMatch, c.Category)
	assert.Equal(t, "Research-related content", c.Reason)

	// URL keywords alone do not trigger the keyword rule.
	_, c = s.Evaluate(types.HistoryEntry{URL: "https://example.com/research"})
	assert.Equal(t, types.CategoryGeneral, c.Category)
	assert.Equal(t, "May be related to research", c.Reason)
	assert.False(t, c.IsAcademic)
}

func TestClassifyDomainReasons(t *testing.T) {
	s := Default()
	tests := []struct {
		url  string
		want string
	}{
		{"https://scholar.google.com/scholar?q=x", "Google Scholar academic search"},
		{"https://www.nature.com/articles/1", "Article from the scientific journal Nature"},
		{"https://www.science.org/doi/1", "Article from the scientific journal Science"},
		{"https://arxiv.org/abs/1", "Academic preprint on arXiv"},
		{"https://pubmed.ncbi.nlm.nih.gov/1", "Biomedical literature from NIH/PubMed"},
		{"https://cs.stanford.edu/", "Educational institution website"},
		{"https://www.ox.ac.uk/", "Academic institution website"},
		{"https://www.census.gov/", "Government publication"},
		{"https://www.jstor.org/stable/1", "Academic website"},
	}
	for _, tt := range tests {
		_, c := s.Evaluate(types.HistoryEntry{URL: tt.url})
		assert.Equal(t, tt.want, c.Reason, tt.url)
	}
}

func TestClassifyJapaneseLabels(t *testing.T) {
	s, err := New(DefaultTables(), DefaultWeights(), WithLocale("ja-JP"))
	require.NoError(t, err)

	_, c := s.Evaluate(types.HistoryEntry{URL: "https://www.jstor.org/stable/1"})
	assert.Equal(t, "学術的なウェブサイト", c.Reason)

	_, c = s.Evaluate(types.HistoryEntry{URL: "https://www.nature.com/"})
	assert.Equal(t, "科学誌Natureの記事", c.Reason)

	_, c = s.Evaluate(types.HistoryEntry{URL: "https://example.com/"})
	assert.Equal(t, "研究に関連する可能性があります", c.Reason)
}

func TestArxivEndToEnd(t *testing.T) {
	s := Default()
	sc, c := s.Evaluate(types.HistoryEntry{
		URL:        "https://arxiv.org/abs/1234",
		Title:      "Deep Learning Survey",
		VisitCount: 1,
	})
	assert.GreaterOrEqual(t, sc.Total, 0.7)
	assert.True(t, c.IsAcademic)
	assert.Contains(t, c.Reason, "arXiv")
	assert.NotEqual(t, "May be related to research", c.Reason)
}

func TestNewRejectsBadWeights(t *testing.T) {
	w := DefaultWeights()
	w.AcademicDomainBonus = 1.5
	_, err := New(DefaultTables(), w)
	assert.Error(t, err)

	w = DefaultWeights()
	w.FrequentVisits = -1
	_, err = New(DefaultTables(), w)
	assert.Error(t, err)
}

func TestSmallTables(t *testing.T) {
	tables := Tables{
		AcademicDomains: []string{"Example.ORG"},
		TitleKeywords:   []string{"widget"},
	}
	s, err := New(tables, DefaultWeights())
	require.NoError(t, err)

	sc := s.Score(types.HistoryEntry{URL: "https://docs.example.org/", Title: "Widget guide"})
	assert.Equal(t, "example.org", sc.MatchedDomain)
	assert.True(t, sc.TitleMatch)
	assert.Equal(t, 0.9, sc.Total)

	// Caller mutation after construction does not leak in.
	tables.AcademicDomains[0] = "other.org"
	sc = s.Score(types.HistoryEntry{URL: "https://example.org/"})
	assert.Equal(t, "example.org", sc.MatchedDomain)

	// Arxiv is not academic with these tables.
	sc = s.Score(types.HistoryEntry{URL: "https://arxiv.org/abs/1"})
	assert.Empty(t, sc.MatchedDomain)
}

func TestLoadTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	data := "academic_domains:\n  - example.org\ntitle_keywords:\n  - Widget\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.org"}, tables.AcademicDomains)
	assert.Equal(t, []string{"widget"}, tables.TitleKeywords)
	// Keys absent from the file keep the defaults.
	assert.Equal(t, DefaultTables().URLKeywords, tables.URLKeywords)
	assert.NotEmpty(t, tables.DomainReasons)

	_, err = LoadTables(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSiteName(t *testing.T) {
	tables := DefaultTables()
	assert.Equal(t, "arXiv", tables.SiteName("arxiv.org"))
	assert.Equal(t, "National Institutes of Health", tables.SiteName("pubmed.ncbi.nlm.nih.gov"))
	assert.Equal(t, "Wikipedia", tables.SiteName("en.wikipedia.org"))
	assert.Empty(t, tables.SiteName("example.com"))
}

func TestScoreConcurrent(t *testing.T) {
	s := Default()
	entry := types.HistoryEntry{URL: "https://arxiv.org/abs/1", Title: "A paper", VisitCount: 2}
	want := s.Score(entry)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := s.Score(entry); got != want {
					t.Errorf("concurrent score = %+v, want %+v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestHostname(t *testing.T) {
	h, err := Hostname("https://WWW.Example.COM.:8080/x")
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", h)

	_, err = Hostname("mailto:someone")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.True(t, strings.Contains(err.Error(), "invalid URL"))
}
