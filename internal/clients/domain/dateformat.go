package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// DateFormat is a moment-style date pattern such as "MM/DD/YYYY" or
// "YYYY-MM-DD[T]HH:mm:ss". Text in square brackets is copied verbatim.
type DateFormat string

type dateToken struct {
	pattern string
	render  func(t time.Time) string
}

func layout(l string) func(time.Time) string {
	return func(t time.Time) string { return t.Format(l) }
}

// Longest patterns first so "MMMM" wins over "MM".
var dateTokens = []dateToken{
	{"YYYY", layout("2006")},
	{"MMMM", layout("January")},
	{"dddd", layout("Monday")},
	{"MMM", layout("Jan")},
	{"ddd", layout("Mon")},
	{"SSS", func(t time.Time) string { return strings.TrimPrefix(t.Format(".000"), ".") }},
	{"YY", layout("06")},
	{"MM", layout("01")},
	{"DD", layout("02")},
	{"Do", func(t time.Time) string { return ordinal(t.Day()) }},
	{"HH", layout("15")},
	{"hh", layout("03")},
	{"mm", layout("04")},
	{"ss", layout("05")},
	{"ZZ", layout("-0700")},
	{"M", layout("1")},
	{"D", layout("2")},
	{"H", func(t time.Time) string { return strconv.Itoa(t.Hour()) }},
	{"h", layout("3")},
	{"m", layout("4")},
	{"s", layout("5")},
	{"A", layout("PM")},
	{"a", layout("pm")},
	{"Z", layout("-07:00")},
	{"X", func(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) }},
	{"x", func(t time.Time) string { return strconv.FormatInt(t.UnixMilli(), 10) }},
}

var errUnclosedLiteral = errors.New("unclosed [ in date format")

// Validate reports whether the pattern can be rendered.
func (f DateFormat) Validate() error {
	_, err := f.segments()
	return err
}

// Format renders t with the pattern.
func (f DateFormat) Format(t time.Time) (string, error) {
	segs, err := f.segments()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, seg := range segs {
		if seg.render != nil {
			b.WriteString(seg.render(t))
			continue
		}
		b.WriteString(seg.pattern)
	}
	return b.String(), nil
}

// segments splits the pattern into tokens and literal runs. Literal runs have
// a nil render func.
func (f DateFormat) segments() ([]dateToken, error) {
	src := string(f)
	var out []dateToken
	for len(src) > 0 {
		if src[0] == '[' {
			end := strings.IndexByte(src, ']')
			if end < 0 {
				return nil, errUnclosedLiteral
			}
			out = append(out, dateToken{pattern: src[1:end]})
			src = src[end+1:]
			continue
		}
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(src, tok.pattern) {
				out = append(out, tok)
				src = src[len(tok.pattern):]
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, dateToken{pattern: src[:1]})
			src = src[1:]
		}
	}
	return out, nil
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// answerLayouts are the shapes date answers arrive in from the intake forms.
var answerLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseAnswerDate reads a date typed into a lead form.
func ParseAnswerDate(answer string) (time.Time, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return time.Time{}, false
	}
	for _, l := range answerLayouts {
		if t, err := time.Parse(l, answer); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
