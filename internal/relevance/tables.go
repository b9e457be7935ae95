// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Tables holds the static lookup data of the scorer and the pre-filter.
// Tables are loaded once at startup and never mutated afterwards.
//
// Domain entries use one matching rule everywhere (see hostMatches):
// "nature.com" matches the host and its subdomains, ".edu" matches a
// label anywhere in the host, and "scholar.google." matches any
// scholar.google.* host.
type Tables struct {
	// AcademicDomains is the allow-list of academic, government and
	// research-organization domains.
	AcademicDomains []string `yaml:"academic_domains"`

	// AcademicPatterns are TLD-style labels that mark academic hosts.
	AcademicPatterns []string `yaml:"academic_patterns"`

	// TitleKeywords are matched case-insensitively against page titles.
	TitleKeywords []string `yaml:"title_keywords"`

	// URLKeywords are matched case-insensitively against the full URL.
	URLKeywords []string `yaml:"url_keywords"`

	// DomainReasons maps academic hosts to specific reason wording,
	// evaluated in order; the first matching rule wins.
	DomainReasons []DomainReason `yaml:"domain_reasons"`

	// SkipSchemes are URL prefixes of browser-internal pages.
	SkipSchemes []string `yaml:"skip_schemes"`

	// BlockedDomains are high-traffic non-research sites.
	BlockedDomains []string `yaml:"blocked_domains"`

	// BlockedPatterns are regular expressions over the lowercased URL.
	BlockedPatterns []string `yaml:"blocked_patterns"`

	// SiteNames maps domains to display names, used when an author must be
	// derived from the site.
	SiteNames map[string]string `yaml:"site_names"`
}

// DomainReason is one row of the reason table.
type DomainReason struct {
	Match string `yaml:"match"`

	// Reasons holds the wording per locale ("en", "ja").
	Reasons map[string]string `yaml:"reasons"`
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return Tables{
		AcademicDomains: []string{
			"scholar.google.",
			"arxiv.org",
			"biorxiv.org",
			"medrxiv.org",
			"nature.com",
			"science.org",
			"sciencedirect.com",
			"springer.com",
			"wiley.com",
			"tandfonline.com",
			"sagepub.com",
			"cambridge.org",
			"oup.com",
			"plos.org",
			"frontiersin.org",
			"mdpi.com",
			"ieee.org",
			"acm.org",
			"jstor.org",
			"researchgate.net",
			"academia.edu",
			"semanticscholar.org",
			"openalex.org",
			"ssrn.com",
			"doi.org",
			"crossref.org",
			"nih.gov",
			"ci.nii.ac.jp",
			"jstage.jst.go.jp",
			"who.int",
			"oecd.org",
			"worldbank.org",
		},
		AcademicPatterns: []string{".edu", ".ac", ".gov"},
		TitleKeywords: []string{
			"research", "study", "analysis", "paper",
			"journal", "article", "thesis", "dissertation",
		},
		URLKeywords: []string{
			"research", "scholar", "academic", "journal",
			"paper", "article", "study",
		},
		DomainReasons: []DomainReason{
			{Match: "scholar.google.", Reasons: map[string]string{
				"en": "Google Scholar academic search",
				"ja": "Google Scholarの学術検索ページ",
			}},
			{Match: "nature.com", Reasons: map[string]string{
				"en": "Article from the scientific journal Nature",
				"ja": "科学誌Natureの記事",
			}},
			{Match: "science.org", Reasons: map[string]string{
				"en": "Article from the scientific journal Science",
				"ja": "科学誌Scienceの記事",
			}},
			{Match: "arxiv.org", Reasons: map[string]string{
				"en": "Academic preprint on arXiv",
				"ja": "arXivの学術プレプリント",
			}},
			{Match: "nih.gov", Reasons: map[string]string{
				"en": "Biomedical literature from NIH/PubMed",
				"ja": "NIH/PubMedの医学文献",
			}},
			{Match: ".edu", Reasons: map[string]string{
				"en": "Educational institution website",
				"ja": "教育機関のウェブサイト",
			}},
			{Match: ".ac", Reasons: map[string]string{
				"en": "Academic institution website",
				"ja": "学術機関のウェブサイト",
			}},
			{Match: ".gov", Reasons: map[string]string{
				"en": "Government publication",
				"ja": "政府機関の公開資料",
			}},
		},
		SkipSchemes: []string{
			"chrome://", "chrome-extension://", "moz-extension://",
			"edge://", "about:", "file://", "view-source:", "data:", "javascript:",
		},
		BlockedDomains: []string{
			"facebook.com", "twitter.com", "x.com", "instagram.com",
			"tiktok.com", "linkedin.com", "pinterest.com", "reddit.com",
			"youtube.com", "netflix.com", "twitch.tv", "nicovideo.jp",
			"amazon.com", "amazon.co.jp", "rakuten.co.jp", "ebay.com",
			"mail.google.com", "web.whatsapp.com", "discord.com",
		},
		BlockedPatterns: []string{
			`^https?://(www\.)?google\.[a-z.]+/(search|url|maps)`,
			`^https?://(www\.)?bing\.com/search`,
			`^https?://search\.yahoo\.`,
			`^https?://(html\.)?duckduckgo\.com/`,
			`^https?://(www\.)?amazon\.[a-z.]+/`,
			`^https?://[^/]+/(login|signin|logout|auth)(/|\?|$)`,
		},
		SiteNames: map[string]string{
			"arxiv.org":           "arXiv",
			"nature.com":          "Nature",
			"science.org":         "Science",
			"sciencedirect.com":   "ScienceDirect",
			"springer.com":        "Springer",
			"wiley.com":           "Wiley",
			"ieee.org":            "IEEE",
			"acm.org":             "ACM",
			"jstor.org":           "JSTOR",
			"nih.gov":             "National Institutes of Health",
			"semanticscholar.org": "Semantic Scholar",
			"wikipedia.org":       "Wikipedia",
			"jstage.jst.go.jp":    "J-STAGE",
			"ci.nii.ac.jp":        "CiNii",
		},
	}
}

// LoadTables reads a YAML tables file. Keys absent from the file keep the
// built-in defaults.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	data, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("reading tables %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return tables, fmt.Errorf("parsing tables %s: %w", path, err)
	}
	tables.normalize()
	return tables, nil
}

// normalize lowercases and trims every matcher so lookups can compare
// lowercased input directly.
func (t *Tables) normalize() {
	for _, list := range []*[]string{
		&t.AcademicDomains, &t.AcademicPatterns, &t.TitleKeywords, &t.URLKeywords,
		&t.SkipSchemes, &t.BlockedDomains,
	} {
		out := (*list)[:0]
		for _, s := range *list {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				out = append(out, s)
			}
		}
		*list = out
	}
	for i := range t.DomainReasons {
		t.DomainReasons[i].Match = strings.ToLower(strings.TrimSpace(t.DomainReasons[i].Match))
	}
}

// SiteName returns the display name for host, or "" when none is known.
func (t Tables) SiteName(host string) string {
	host = strings.ToLower(host)
	best, bestLen := "", 0
	for domain, name := range t.SiteNames {
		d := strings.ToLower(domain)
		if hostMatches(host, d) && len(d) > bestLen {
			best, bestLen = name, len(d)
		}
	}
	return best
}

// hostMatches applies the table matching rule of pattern to a lowercased
// host.
func hostMatches(host, pattern string) bool {
	switch {
	case pattern == "":
		return false
	case strings.HasSuffix(pattern, "."):
		return strings.HasPrefix(host, pattern) || strings.Contains(host, "."+pattern)
	case strings.HasPrefix(pattern, "."):
		label := pattern[1:]
		return host == label ||
			strings.HasSuffix(host, pattern) ||
			strings.Contains(host, pattern+".") ||
			strings.HasPrefix(host, label+".")
	default:
		return host == pattern || strings.HasSuffix(host, "."+pattern)
	}
}
