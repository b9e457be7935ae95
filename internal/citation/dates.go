// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-vault/pkg/types"
)

// noDate is the token for a missing or unparseable date.
const noDate = "n.d."

// Precision is the granularity present in a raw date string.
type Precision int

const (
	PrecisionNone Precision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
)

// Date is a calendar date with the precision of its source text. Fields
// finer than Precision are zero.
type Date struct {
	Year      int
	Month     time.Month
	Day       int
	Precision Precision
}

// IsZero reports whether no date was recognized.
func (d Date) IsZero() bool { return d.Precision == PrecisionNone }

var (
	reISODay    = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})(?:$|[T\s])`)
	reISOMonth  = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})$`)
	reYear      = regexp.MustCompile(`^(\d{4})$`)
	reUSDay     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	reJaDay     = regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日`)
	reJaMonth   = regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月`)
	reNameDay   = regexp.MustCompile(`^(?:[A-Za-z]+,?\s+)?([A-Za-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
	reDayName   = regexp.MustCompile(`^(?:[A-Za-z]+,?\s+)?(\d{1,2})(?:st|nd|rd|th)?\s+([A-Za-z]+)\.?,?\s+(\d{4})`)
	reNameMonth = regexp.MustCompile(`^([A-Za-z]+)\.?,?\s+(\d{4})$`)
	reEpoch     = regexp.MustCompile(`^(?:\d{10}|\d{13})$`)
	reAnyYear   = regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var ieeeMonths = [...]string{
	"Jan.", "Feb.", "Mar.", "Apr.", "May", "Jun.",
	"Jul.", "Aug.", "Sep.", "Oct.", "Nov.", "Dec.",
}

// ParseDate recognizes a date and its precision from the shape of raw.
// "2020" parses with year precision, "2020-03" with month precision and
// "2020-03-15" with day precision. Anything unrecognized that still holds
// a plausible four-digit year parses with year precision.
func ParseDate(raw string) Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}
	}

	if m := reISODay.FindStringSubmatch(s); m != nil {
		if d, ok := dayDate(m[1], m[2], m[3]); ok {
			return d
		}
	}
	if m := reISOMonth.FindStringSubmatch(s); m != nil {
		if d, ok := monthDate(m[1], m[2]); ok {
			return d
		}
	}
	if m := reYear.FindStringSubmatch(s); m != nil {
		if d, ok := yearDate(m[1]); ok {
			return d
		}
	}
	if m := reUSDay.FindStringSubmatch(s); m != nil {
		if d, ok := dayDate(m[3], m[1], m[2]); ok {
			return d
		}
	}
	if m := reJaDay.FindStringSubmatch(s); m != nil {
		if d, ok := dayDate(m[1], m[2], m[3]); ok {
			return d
		}
	}
	if m := reJaMonth.FindStringSubmatch(s); m != nil {
		if d, ok := monthDate(m[1], m[2]); ok {
			return d
		}
	}
	if m := reNameDay.FindStringSubmatch(s); m != nil {
		if mon, ok := monthNames[strings.ToLower(m[1])]; ok {
			if d, ok := dayDate(m[3], strconv.Itoa(int(mon)), m[2]); ok {
				return d
			}
		}
	}
	if m := reDayName.FindStringSubmatch(s); m != nil {
		if mon, ok := monthNames[strings.ToLower(m[2])]; ok {
			if d, ok := dayDate(m[3], strconv.Itoa(int(mon)), m[1]); ok {
				return d
			}
		}
	}
	if m := reNameMonth.FindStringSubmatch(s); m != nil {
		if mon, ok := monthNames[strings.ToLower(m[1])]; ok {
			if d, ok := monthDate(m[2], strconv.Itoa(int(mon))); ok {
				return d
			}
		}
	}
	if reEpoch.MatchString(s) {
		n, _ := strconv.ParseInt(s, 10, 64)
		var t time.Time
		if len(s) == 13 {
			t = time.UnixMilli(n).UTC()
		} else {
			t = time.Unix(n, 0).UTC()
		}
		return FromTime(t)
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC850, time.ANSIC, time.UnixDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t)
		}
	}
	if m := reAnyYear.FindStringSubmatch(s); m != nil {
		if d, ok := yearDate(m[1]); ok {
			return d
		}
	}
	return Date{}
}

// FromTime returns a day-precision Date.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day(), Precision: PrecisionDay}
}

func yearDate(y string) (Date, bool) {
	year, err := strconv.Atoi(y)
	if err != nil || year < 1000 || year > 2999 {
		return Date{}, false
	}
	return Date{Year: year, Precision: PrecisionYear}, true
}

func monthDate(y, m string) (Date, bool) {
	d, ok := yearDate(y)
	if !ok {
		return Date{}, false
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return Date{}, false
	}
	d.Month = time.Month(month)
	d.Precision = PrecisionMonth
	return d, true
}

func dayDate(y, m, dd string) (Date, bool) {
	d, ok := monthDate(y, m)
	if !ok {
		return Date{}, false
	}
	day, err := strconv.Atoi(dd)
	if err != nil || day < 1 || day > daysIn(d.Month, d.Year) {
		return Date{}, false
	}
	d.Day = day
	d.Precision = PrecisionDay
	return d, true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// YearString returns the year of raw, or "" when none is recognized.
func YearString(raw string) string {
	d := ParseDate(raw)
	if d.IsZero() {
		return ""
	}
	return strconv.Itoa(d.Year)
}

// FormatDate renders a published date for style at the precision of the
// raw input. APA renders "2020", "2020, March" or "2020, March 15". A
// missing or unparseable date renders "n.d." for APA, Chicago and Harvard
// and "" for MLA and IEEE.
func FormatDate(raw string, style types.CitationStyle) string {
	d := ParseDate(raw)
	style = resolveStyle(style)
	if d.IsZero() {
		switch style {
		case types.StyleMLA, types.StyleIEEE:
			return ""
		default:
			return noDate
		}
	}
	return renderDate(d, style)
}

func renderDate(d Date, style types.CitationStyle) string {
	switch d.Precision {
	case PrecisionYear:
		return strconv.Itoa(d.Year)
	case PrecisionMonth:
		switch style {
		case types.StyleAPA:
			return fmt.Sprintf("%d, %s", d.Year, d.Month)
		case types.StyleIEEE:
			return fmt.Sprintf("%s %d", ieeeMonths[d.Month-1], d.Year)
		default:
			return fmt.Sprintf("%s %d", d.Month, d.Year)
		}
	case PrecisionDay:
		switch style {
		case types.StyleAPA:
			return fmt.Sprintf("%d, %s %d", d.Year, d.Month, d.Day)
		case types.StyleMLA, types.StyleHarvard:
			return fmt.Sprintf("%d %s %d", d.Day, d.Month, d.Year)
		case types.StyleIEEE:
			return fmt.Sprintf("%s %d, %d", ieeeMonths[d.Month-1], d.Day, d.Year)
		default:
			return fmt.Sprintf("%s %d, %d", d.Month, d.Day, d.Year)
		}
	}
	return ""
}

// accessDate renders an access date. APA and Chicago use "March 15, 2024",
// MLA and Harvard "15 March 2024", Japanese labels "2024年3月15日". Text
// that does not parse is used verbatim.
func accessDate(raw string, style types.CitationStyle, japanese bool) string {
	raw = strings.TrimSpace(raw)
	d := ParseDate(raw)
	if d.IsZero() {
		return raw
	}
	if japanese {
		switch d.Precision {
		case PrecisionDay:
			return fmt.Sprintf("%d年%d月%d日", d.Year, int(d.Month), d.Day)
		case PrecisionMonth:
			return fmt.Sprintf("%d年%d月", d.Year, int(d.Month))
		default:
			return fmt.Sprintf("%d年", d.Year)
		}
	}
	if style == types.StyleAPA {
		style = types.StyleChicago
	}
	return renderDate(d, style)
}
