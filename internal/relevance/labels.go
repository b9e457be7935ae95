// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import "strings"

// Labels holds the generic reason wording of the classifier for one
// locale. Domain-specific wording lives in Tables.DomainReasons.
type Labels struct {
	Locale   string
	Academic string
	Frequent string
	Keyword  string
	General  string
}

var labelSets = map[string]Labels{
	"en": {
		Locale:   "en",
		Academic: "Academic website",
		Frequent: "Frequently visited site",
		Keyword:  "Research-related content",
		General:  "May be related to research",
	},
	"ja": {
		Locale:   "ja",
		Academic: "学術的なウェブサイト",
		Frequent: "頻繁に訪問しているサイト",
		Keyword:  "研究関連のコンテンツ",
		General:  "研究に関連する可能性があります",
	},
}

// LabelsFor returns the labels for locale ("en", "ja", or a tag such as
// "ja-JP"). Unknown locales get English.
func LabelsFor(locale string) Labels {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	if l, ok := labelSets[locale]; ok {
		return l
	}
	return labelSets["en"]
}
