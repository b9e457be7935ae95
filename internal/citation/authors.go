// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"strings"
	"unicode"

	"github.com/pdiddy/research-vault/pkg/types"
)

// Mode selects between reference-list and inline author rendering.
type Mode int

const (
	// ModeFull renders names for a reference-list entry.
	ModeFull Mode = iota
	// ModeInText renders surnames for an inline citation.
	ModeInText
)

// apaMaxListed is the largest author count APA lists in full.
const apaMaxListed = 20

// FormatAuthors renders an author list for style. It returns "" for an
// empty list; callers decide on the substitute.
//
// Full mode:
//   - APA: "A & B"; "A, B, & C" up to 20 authors; for more, the first 19,
//     then ", ..., & " and the last author.
//   - Harvard: "A & B"; from the third author on, "A, B et al.".
//   - IEEE: "A and B"; from the third author on, "A, B, et al.".
//   - MLA, Chicago: "A and B"; three or more, "A et al.".
//
// In-text mode uses surnames: "S", "S1 & S2" (APA, Harvard) or
// "S1 and S2", and "S1 et al." for three or more.
func FormatAuthors(authors types.AuthorList, style types.CitationStyle, mode Mode) string {
	names := types.NormalizeAuthors(authors).Names()
	style = resolveStyle(style)
	if mode == ModeInText {
		return inTextAuthors(names, style)
	}

	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}

	switch style {
	case types.StyleAPA:
		return apaAuthors(names)
	case types.StyleHarvard:
		if len(names) == 2 {
			return names[0] + " & " + names[1]
		}
		return names[0] + ", " + names[1] + " et al."
	case types.StyleIEEE:
		if len(names) == 2 {
			return names[0] + " and " + names[1]
		}
		return names[0] + ", " + names[1] + ", et al."
	default:
		if len(names) == 2 {
			return names[0] + " and " + names[1]
		}
		return names[0] + " et al."
	}
}

func apaAuthors(names []string) string {
	n := len(names)
	if n == 2 {
		return names[0] + " & " + names[1]
	}
	if n <= apaMaxListed {
		return strings.Join(names[:n-1], ", ") + ", & " + names[n-1]
	}
	return strings.Join(names[:apaMaxListed-1], ", ") + ", ..., & " + names[n-1]
}

func inTextAuthors(names []string, style types.CitationStyle) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return Surname(names[0])
	case 2:
		conj := " and "
		if style == types.StyleAPA || style == types.StyleHarvard {
			conj = " & "
		}
		return Surname(names[0]) + conj + Surname(names[1])
	default:
		return Surname(names[0]) + " et al."
	}
}

// Surname extracts the family name. "Last, First" yields the part before
// the comma. Names containing Japanese script use the first token
// (family-name-first order); other names use the last token.
func Surname(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ",，"); i > 0 {
		if last := strings.TrimSpace(name[:i]); last != "" {
			return last
		}
	}
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return ""
	}
	if hasJapanese(name) {
		return tokens[0]
	}
	return tokens[len(tokens)-1]
}

func hasJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

// resolveStyle maps any casing of a known style to its constant and
// anything else to APA.
func resolveStyle(style types.CitationStyle) types.CitationStyle {
	s, _ := ParseStyle(string(style))
	return s
}
