// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation renders bibliographic citations in APA, MLA, Chicago,
// Harvard and IEEE styles, as full reference-list entries and as in-text
// fragments.
//
// Formatting is pure: identical input yields byte-identical output and
// nothing reads the clock. The Formatter only adds logging and metrics
// around the pure functions and is safe for concurrent use.
package citation

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-vault/internal/observability"
	"github.com/pdiddy/research-vault/pkg/types"
)

const doiResolver = "https://doi.org/"

// Option configures a Formatter.
type Option func(*Formatter)

// WithLogger sets the logger used for style fallback warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Formatter) { f.logger = l }
}

// WithLabels sets the placeholder wording.
func WithLabels(l Labels) Option {
	return func(f *Formatter) { f.labels = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *Formatter) { f.metrics = m }
}

// Formatter generates citations.
type Formatter struct {
	logger  zerolog.Logger
	labels  Labels
	metrics *observability.Metrics
}

// New returns a Formatter with English labels and no logging.
func New(opts ...Option) *Formatter {
	f := &Formatter{logger: zerolog.Nop(), labels: LabelsFor("en")}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Style resolves a style name. Unknown names fall back to APA with a
// warning; they never fail.
func (f *Formatter) Style(name string) types.CitationStyle {
	style, err := ParseStyle(name)
	if err != nil {
		var use *UnsupportedStyleError
		if errors.As(err, &use) {
			f.logger.Warn().Err(err).Str("style", use.Value).Msg("unsupported citation style")
		}
		f.metrics.StyleFallback()
	}
	return style
}

// FullCitation renders the reference-list entry of ref in style. It
// returns an *IncompleteDataError when the title is blank. Output
// whitespace is collapsed and trimmed.
func (f *Formatter) FullCitation(ref types.Reference, style types.CitationStyle) (string, error) {
	style = f.Style(string(style))
	title := clean(ref.Title)
	if title == "" {
		f.metrics.Incomplete()
		return "", &IncompleteDataError{Field: "title"}
	}

	var s string
	switch style {
	case types.StyleMLA:
		s = f.mla(ref, title)
	case types.StyleChicago:
		s = f.chicago(ref, title)
	case types.StyleHarvard:
		s = f.harvard(ref, title)
	case types.StyleIEEE:
		s = f.ieee(ref, title)
	default:
		s = f.apa(ref, title)
	}
	f.metrics.Citation(string(style), "full")
	return clean(s), nil
}

// InTextCitation renders the inline citation of ref in style. IEEE uses
// the caller's running number n and ignores authors and dates.
func (f *Formatter) InTextCitation(ref types.Reference, style types.CitationStyle, n int) string {
	style = f.Style(string(style))
	f.metrics.Citation(string(style), "in_text")
	if style == types.StyleIEEE {
		if n < 1 {
			n = 1
		}
		return "[" + strconv.Itoa(n) + "]"
	}

	who := FormatAuthors(ref.Authors, style, ModeInText)
	if who == "" {
		who = f.labels.UnknownAuthor
	}
	year := YearString(ref.PublishedDate)
	pages := clean(ref.Pages)

	var s string
	switch style {
	case types.StyleMLA:
		s = join(" ", who, pages)
	case types.StyleChicago:
		s = who + " " + orNoDate(year)
		if pages != "" {
			s += ", " + pages
		}
	case types.StyleHarvard:
		s = who + " " + orNoDate(year)
	default:
		s = who + ", " + orNoDate(year)
	}
	return "(" + clean(s) + ")"
}

// apa: Authors. (Date). Title. Source. [access note]
// Without authors the title moves into the author slot.
func (f *Formatter) apa(ref types.Reference, title string) string {
	var b strings.Builder
	date := "(" + FormatDate(ref.PublishedDate, types.StyleAPA) + ")."
	if authors := FormatAuthors(ref.Authors, types.StyleAPA, ModeFull); authors != "" {
		b.WriteString(terminate(authors) + " " + date + " " + terminate(title))
	} else {
		b.WriteString(terminate(title) + " " + date)
	}

	url := clean(ref.URL)
	journal := clean(ref.JournalName)
	doi := stripDOI(ref.DOI)
	switch {
	case journal != "":
		src := "*" + journal + "*"
		if vol := clean(ref.Volume); vol != "" {
			src += ", " + vol
			if issue := clean(ref.Issue); issue != "" {
				src += "(" + issue + ")"
			}
		} else if issue := clean(ref.Issue); issue != "" {
			src += ", (" + issue + ")"
		}
		if pages := clean(ref.Pages); pages != "" {
			src += ", " + pages
		}
		b.WriteString(" " + terminate(src))
		if doi != "" {
			b.WriteString(" " + doiResolver + doi)
		} else if url != "" {
			b.WriteString(" " + url)
		}
	case ref.PublisherName() != "":
		b.WriteString(" " + terminate(ref.PublisherName()))
		if doi != "" {
			b.WriteString(" " + doiResolver + doi)
		} else if url != "" {
			b.WriteString(" " + url)
		}
	default:
		if doi != "" {
			b.WriteString(" " + doiResolver + doi)
		} else if url != "" {
			b.WriteString(" " + url)
		}
	}

	if url != "" && doi == "" && journal == "" && clean(ref.AccessDate) != "" {
		b.WriteString(" " + f.labels.apaAccessed(accessDate(ref.AccessDate, types.StyleAPA, f.labels.Japanese)))
	}
	return b.String()
}

// mla: Authors. "Title." Container, Year, URL. Accessed Date.
func (f *Formatter) mla(ref types.Reference, title string) string {
	year := YearString(ref.PublishedDate)
	var container []string
	switch {
	case clean(ref.JournalName) != "":
		container = []string{
			clean(ref.JournalName),
			prefixed("vol. ", ref.Volume),
			prefixed("no. ", ref.Issue),
			clean(ref.Pages),
			year,
		}
	case ref.PublisherName() != "":
		container = []string{ref.PublisherName(), year}
	default:
		container = []string{year}
	}
	container = append(container, f.link(ref))

	s := terminate(f.authorsOrPlaceholder(ref, types.StyleMLA)) + ` "` + terminate(title) + `"`
	if c := join(", ", container...); c != "" {
		s += " " + terminate(c)
	}
	if acc := clean(ref.AccessDate); acc != "" {
		s += " Accessed " + terminate(accessDate(acc, types.StyleMLA, f.labels.Japanese))
	}
	return s
}

// chicago: Authors. "Title." Journal V, no. I (Year): Pages. URL (accessed Date).
func (f *Formatter) chicago(ref types.Reference, title string) string {
	year := orNoDate(YearString(ref.PublishedDate))
	var src string
	switch {
	case clean(ref.JournalName) != "":
		src = join(" ", clean(ref.JournalName), clean(ref.Volume))
		src += prefixed(", no. ", ref.Issue)
		src += " (" + year + ")"
		src += prefixed(": ", ref.Pages)
	case ref.PublisherName() != "":
		src = ref.PublisherName() + ", " + year
	default:
		src = year
	}

	s := terminate(f.authorsOrPlaceholder(ref, types.StyleChicago)) + ` "` + terminate(title) + `" ` + terminate(src)
	if link := f.link(ref); link != "" {
		if acc := clean(ref.AccessDate); acc != "" {
			link += " (accessed " + accessDate(acc, types.StyleChicago, f.labels.Japanese) + ")"
		}
		s += " " + terminate(link)
	}
	return s
}

// harvard: Authors Year, 'Title', Source, viewed Date, <URL>.
func (f *Formatter) harvard(ref types.Reference, title string) string {
	year := orNoDate(YearString(ref.PublishedDate))
	parts := []string{
		f.authorsOrPlaceholder(ref, types.StyleHarvard) + " " + year,
		"'" + title + "'",
	}
	switch {
	case clean(ref.JournalName) != "":
		parts = append(parts,
			clean(ref.JournalName),
			prefixed("vol. ", ref.Volume),
			prefixed("no. ", ref.Issue),
			prefixed("pp. ", ref.Pages))
	case ref.PublisherName() != "":
		parts = append(parts, ref.PublisherName())
	}
	if acc := clean(ref.AccessDate); acc != "" {
		parts = append(parts, "viewed "+accessDate(acc, types.StyleHarvard, f.labels.Japanese))
	}
	if link := f.link(ref); link != "" {
		parts = append(parts, "<"+link+">")
	}
	return terminate(join(", ", parts...))
}

// ieee: Authors, "Title," Container, Year, doi: DOI.
func (f *Formatter) ieee(ref types.Reference, title string) string {
	year := YearString(ref.PublishedDate)
	var items []string
	switch {
	case clean(ref.JournalName) != "":
		items = []string{
			clean(ref.JournalName),
			prefixed("vol. ", ref.Volume),
			prefixed("no. ", ref.Issue),
			prefixed("pp. ", ref.Pages),
			year,
		}
	case ref.PublisherName() != "":
		items = []string{ref.PublisherName(), year}
	default:
		items = []string{year}
	}
	if doi := stripDOI(ref.DOI); doi != "" {
		items = append(items, "doi: "+doi)
	} else {
		items = append(items, clean(ref.URL))
	}

	head := f.authorsOrPlaceholder(ref, types.StyleIEEE) + `, "`
	rest := join(", ", items...)
	if rest == "" {
		return head + terminate(title) + `"`
	}
	if endsWithPunct(title) {
		return head + title + `" ` + terminate(rest)
	}
	return head + title + `," ` + terminate(rest)
}

func (f *Formatter) authorsOrPlaceholder(ref types.Reference, style types.CitationStyle) string {
	if a := FormatAuthors(ref.Authors, style, ModeFull); a != "" {
		return a
	}
	return f.labels.UnknownAuthor
}

// link prefers the page URL and falls back to the DOI resolver.
func (f *Formatter) link(ref types.Reference) string {
	if u := clean(ref.URL); u != "" {
		return u
	}
	if doi := stripDOI(ref.DOI); doi != "" {
		return doiResolver + doi
	}
	return ""
}

// stripDOI removes resolver prefixes so a DOI can be re-linked.
func stripDOI(doi string) string {
	doi = clean(doi)
	lower := strings.ToLower(doi)
	for _, p := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(doi[len(p):])
		}
	}
	return doi
}

// clean collapses runs of whitespace and trims.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// terminate appends a period unless s already ends a sentence.
func terminate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || endsWithPunct(s) {
		return s
	}
	return s + "."
}

func endsWithPunct(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") ||
		strings.HasSuffix(s, "。") || strings.HasSuffix(s, "？") || strings.HasSuffix(s, "！")
}

func prefixed(prefix, v string) string {
	v = clean(v)
	if v == "" {
		return ""
	}
	return prefix + v
}

// join joins the non-empty values with sep.
func join(sep string, values ...string) string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func orNoDate(year string) string {
	if year == "" {
		return noDate
	}
	return year
}
