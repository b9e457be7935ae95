// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import "strings"

// Labels holds the placeholder text of the formatter for one locale.
type Labels struct {
	UnknownAuthor string

	// Japanese renders access dates as 2024年3月15日 and the APA access
	// note as (…閲覧).
	Japanese bool
}

// LabelsFor returns the labels for locale ("en", "ja", or a tag such as
// "ja-JP"). Unknown locales get English.
func LabelsFor(locale string) Labels {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(locale, "ja") {
		return Labels{UnknownAuthor: "著者不明", Japanese: true}
	}
	return Labels{UnknownAuthor: "Unknown author"}
}

func (l Labels) apaAccessed(date string) string {
	if l.Japanese {
		return "(" + date + "閲覧)"
	}
	return "(accessed " + date + ")"
}
