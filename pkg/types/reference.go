// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// CitationStyle selects a bibliographic style.
type CitationStyle string

const (
	StyleAPA     CitationStyle = "APA"
	StyleMLA     CitationStyle = "MLA"
	StyleChicago CitationStyle = "CHICAGO"
	StyleHarvard CitationStyle = "HARVARD"
	StyleIEEE    CitationStyle = "IEEE"
)

// Styles lists every supported style in display order.
var Styles = []CitationStyle{StyleAPA, StyleMLA, StyleChicago, StyleHarvard, StyleIEEE}

// ReferenceType is the closed set of reference kinds.
type ReferenceType string

const (
	ReferenceWebsite ReferenceType = "website"
	ReferenceArticle ReferenceType = "article"
	ReferenceJournal ReferenceType = "journal"
	ReferenceBook    ReferenceType = "book"
	ReferenceReport  ReferenceType = "report"
)

// Author is one contributor in citation order.
type Author struct {
	Name  string `json:"name" yaml:"name"`
	Order int    `json:"order,omitempty" yaml:"order,omitempty"`
}

// AuthorList is the canonical author sequence. It decodes from any of the
// three shapes stored by older clients: a single free-text string, an
// array of names, or an array of {name, order} objects. Decoding always
// yields a normalized list.
type AuthorList []Author

// AuthorsFromNames builds a normalized AuthorList in the given order.
func AuthorsFromNames(names ...string) AuthorList {
	authors := make([]Author, 0, len(names))
	for _, n := range names {
		authors = append(authors, Author{Name: n})
	}
	return NormalizeAuthors(authors)
}

// ParseAuthorString splits a free-text author field. Semicolons, newlines
// and the Japanese comma separate names; commas do not, since "Doe, J." is
// a single name.
func ParseAuthorString(s string) AuthorList {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '\n' || r == '、'
	})
	return AuthorsFromNames(parts...)
}

// NormalizeAuthors trims names, drops empty ones and orders the rest by
// Order. Entries without an Order keep their input position.
func NormalizeAuthors(authors []Author) AuthorList {
	type keyed struct {
		Author
		key int
	}
	ks := make([]keyed, 0, len(authors))
	for i, a := range authors {
		name := strings.Join(strings.Fields(a.Name), " ")
		if name == "" {
			continue
		}
		key := a.Order
		if key <= 0 {
			key = i + 1
		}
		ks = append(ks, keyed{Author: Author{Name: name, Order: a.Order}, key: key})
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })

	out := make(AuthorList, len(ks))
	for i, k := range ks {
		out[i] = Author{Name: k.Name, Order: i + 1}
	}
	return out
}

// Names returns the author names in order.
func (l AuthorList) Names() []string {
	names := make([]string, len(l))
	for i, a := range l {
		names[i] = a.Name
	}
	return names
}

// UnmarshalJSON accepts a string, an array of strings, or an array of
// {name, order} objects.
func (l *AuthorList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding author string: %w", err)
		}
		*l = ParseAuthorString(s)
		return nil
	case '[':
	default:
		return fmt.Errorf("authors: unsupported JSON value %.20q", data)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decoding author list: %w", err)
	}
	authors := make([]Author, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch item[0] {
		case '"':
			var name string
			if err := json.Unmarshal(item, &name); err != nil {
				return fmt.Errorf("decoding author %d: %w", i, err)
			}
			authors = append(authors, Author{Name: name})
		case '{':
			var a Author
			if err := json.Unmarshal(item, &a); err != nil {
				return fmt.Errorf("decoding author %d: %w", i, err)
			}
			authors = append(authors, a)
		case 'n':
			// null entries are dropped
		default:
			return fmt.Errorf("authors: unsupported element %d %.20q", i, item)
		}
	}
	*l = NormalizeAuthors(authors)
	return nil
}

// UnmarshalYAML accepts the same three shapes as UnmarshalJSON.
func (l *AuthorList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = ParseAuthorString(value.Value)
		return nil
	case yaml.SequenceNode:
		authors := make([]Author, 0, len(value.Content))
		for i, n := range value.Content {
			switch n.Kind {
			case yaml.ScalarNode:
				authors = append(authors, Author{Name: n.Value})
			case yaml.MappingNode:
				var a Author
				if err := n.Decode(&a); err != nil {
					return fmt.Errorf("decoding author %d: %w", i, err)
				}
				authors = append(authors, a)
			default:
				return fmt.Errorf("authors: unsupported YAML element %d at line %d", i, n.Line)
			}
		}
		*l = NormalizeAuthors(authors)
		return nil
	default:
		return fmt.Errorf("authors: unsupported YAML node at line %d", value.Line)
	}
}

// Reference holds the bibliographic fields of a saved page, PDF or book.
// Only Title is required for a full citation.
type Reference struct {
	URL           string        `json:"url,omitempty" yaml:"url,omitempty"`
	Title         string        `json:"title" yaml:"title"`
	Authors       AuthorList    `json:"authors,omitempty" yaml:"authors,omitempty"`
	PublishedDate string        `json:"publishedDate,omitempty" yaml:"published_date,omitempty"`
	Publisher     string        `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	SiteName      string        `json:"siteName,omitempty" yaml:"site_name,omitempty"`
	JournalName   string        `json:"journalName,omitempty" yaml:"journal_name,omitempty"`
	Volume        string        `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue         string        `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages         string        `json:"pages,omitempty" yaml:"pages,omitempty"`
	DOI           string        `json:"doi,omitempty" yaml:"doi,omitempty"`
	ISBN          string        `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	AccessDate    string        `json:"accessDate,omitempty" yaml:"access_date,omitempty"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	ReferenceType ReferenceType `json:"referenceType,omitempty" yaml:"reference_type,omitempty"`
}

// PublisherName returns Publisher, falling back to SiteName.
func (r Reference) PublisherName() string {
	if p := strings.TrimSpace(r.Publisher); p != "" {
		return p
	}
	return strings.TrimSpace(r.SiteName)
}
