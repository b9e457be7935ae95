// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-vault/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form.
// Field names follow the CSL-YAML schema so the output is consumable by
// Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Publisher      string    `yaml:"publisher,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	Accessed       *CSLDate  `yaml:"accessed,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	ISBN           string    `yaml:"ISBN,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL date-parts form, truncated to the precision
// of the source text.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

var cslTypes = map[types.ReferenceType]string{
	types.ReferenceWebsite: "webpage",
	types.ReferenceArticle: "article",
	types.ReferenceJournal: "article-journal",
	types.ReferenceBook:    "book",
	types.ReferenceReport:  "report",
}

// ToCSL converts a reference to a CSL item. The ID is a citation key
// built from the first author's surname and the year.
func ToCSL(ref types.Reference) CSLItem {
	item := CSLItem{
		ID:             citeKey(ref),
		Type:           cslType(ref),
		Title:          clean(ref.Title),
		ContainerTitle: clean(ref.JournalName),
		Volume:         clean(ref.Volume),
		Issue:          clean(ref.Issue),
		Page:           clean(ref.Pages),
		Publisher:      ref.PublisherName(),
		Abstract:       clean(ref.Description),
		Issued:         cslDate(ParseDate(ref.PublishedDate)),
		Accessed:       cslDate(ParseDate(ref.AccessDate)),
		DOI:            stripDOI(ref.DOI),
		ISBN:           clean(ref.ISBN),
		URL:            clean(ref.URL),
	}
	for _, a := range types.NormalizeAuthors(ref.Authors) {
		item.Author = append(item.Author, parseAuthorName(a.Name))
	}
	return item
}

// WriteCSL writes refs as a CSL-YAML list to w. Colliding citation keys
// get a, b, c suffixes in input order.
func WriteCSL(refs []types.Reference, w io.Writer) error {
	items := make([]CSLItem, len(refs))
	seen := make(map[string]int, len(refs))
	for i, r := range refs {
		items[i] = ToCSL(r)
		id := items[i].ID
		if n := seen[id]; n > 0 {
			items[i].ID = id + string(rune('a'+(n-1)%26))
			if n > 26 {
				items[i].ID += strconv.Itoa((n - 1) / 26)
			}
		}
		seen[id]++
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding CSL: %w", err)
	}
	return nil
}

func cslType(ref types.Reference) string {
	if t, ok := cslTypes[ref.ReferenceType]; ok {
		return t
	}
	switch {
	case clean(ref.JournalName) != "":
		return "article-journal"
	case clean(ref.ISBN) != "":
		return "book"
	default:
		return "webpage"
	}
}

func cslDate(d Date) *CSLDate {
	switch d.Precision {
	case PrecisionYear:
		return &CSLDate{DateParts: [][]int{{d.Year}}}
	case PrecisionMonth:
		return &CSLDate{DateParts: [][]int{{d.Year, int(d.Month)}}}
	case PrecisionDay:
		return &CSLDate{DateParts: [][]int{{d.Year, int(d.Month), d.Day}}}
	}
	return nil
}

// citeKey builds "surnameYEAR", lowercased ASCII letters and digits only.
// Non-Latin surnames fall back to "ref".
func citeKey(ref types.Reference) string {
	base := ""
	if authors := types.NormalizeAuthors(ref.Authors); len(authors) > 0 {
		base = Surname(authors[0].Name)
	}
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	key := b.String()
	if key == "" {
		key = "ref"
	}
	if year := YearString(ref.PublishedDate); year != "" {
		key += year
	}
	return key
}

// parseAuthorName splits a full name into CSL family and given parts.
// "Family, Given" is honored; otherwise the last token is the family name.
// Single-token and Japanese-script names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if i := strings.Index(name, ","); i > 0 {
		return CSLName{
			Family: strings.TrimSpace(name[:i]),
			Given:  strings.TrimSpace(name[i+1:]),
		}
	}
	if hasJapanese(name) {
		return CSLName{Literal: name}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
