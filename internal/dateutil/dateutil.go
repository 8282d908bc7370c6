// Package dateutil formats page dates for templates. Layouts are written
// with readable tokens instead of Go reference-time digits:
//
//	YYYY 2024   YY 24    MMMM March   MMM Mar   MM 03   M 3
//	DD 05       D 5      dddd Friday  ddd Fri   HH 09   mm 07
//
// Text in square brackets is copied as is, so "[Updated] D MMM" prints
// "Updated 5 Mar". Any other character is kept literally.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat is returned for a layout that cannot be used.
var ErrInvalidDateFormat = errors.New("invalid date format")

// ErrInvalidDate is returned for a value that is not a date.
var ErrInvalidDate = errors.New("invalid date")

// MaxDateFormatLength bounds a layout written in a template or manifest.
const MaxDateFormatLength = 50

// DefaultDateFormat applies when a template passes an empty layout.
const DefaultDateFormat = "YYYY-MM-DD"

// Presets are named layouts, matched case-insensitively.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"long":     "MMMM D, YYYY",
	"short":    "D MMM YYYY",
	"us":       "MM/DD/YYYY",
	"european": "DD/MM/YYYY",
	"datetime": "YYYY-MM-DD HH:mm",
}

// tokens is scanned in order, so a token must precede its prefixes.
var tokens = [...]struct{ token, layout string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"DD", "02"},
	{"D", "2"},
	{"HH", "15"},
	{"mm", "04"},
}

// inputLayouts are the date spellings accepted from manifest fields.
var inputLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", time.DateOnly}

// segment is either literal text or a Go layout element for one token.
type segment struct {
	text    string
	literal bool
}

// compile splits a token layout into segments. Literal text is never handed
// to time.Format, so digits or words such as "1" or "Mon" in it stay as
// written.
func compile(format string) ([]segment, error) {
	if format == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return nil, fmt.Errorf("%w: longer than %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var segs []segment
	rest := format
	for rest != "" {
		if literal, ok := strings.CutPrefix(rest, "["); ok {
			text, after, closed := strings.Cut(literal, "]")
			if !closed {
				return nil, fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidDateFormat, format)
			}
			segs = appendLiteral(segs, text)
			rest = after
			continue
		}
		layout, n := matchToken(rest)
		if n == 0 {
			segs = appendLiteral(segs, rest[:1])
			rest = rest[1:]
			continue
		}
		segs = append(segs, segment{text: layout})
		rest = rest[n:]
	}
	return segs, nil
}

// matchToken returns the layout of the token leading s and its length, or
// zero when s does not start with a token.
func matchToken(s string) (string, int) {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.token) {
			return t.layout, len(t.token)
		}
	}
	return "", 0
}

func appendLiteral(segs []segment, text string) []segment {
	if n := len(segs); n > 0 && segs[n-1].literal {
		segs[n-1].text += text
		return segs
	}
	return append(segs, segment{text: text, literal: true})
}

// Format renders date with format, a token layout or a preset name. date is
// a time.Time or a manifest string such as "2024-03-05" or an RFC 3339
// timestamp. Templates call it as formatDate:
//
//	{{ .currentPage.updated | formatDate "long" }}
func Format(format string, date any) (string, error) {
	t, err := toTime(date)
	if err != nil {
		return "", err
	}

	if format == "" {
		format = DefaultDateFormat
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	segs, err := compile(format)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, seg := range segs {
		if seg.literal {
			b.WriteString(seg.text)
		} else {
			b.WriteString(t.Format(seg.text))
		}
	}
	return b.String(), nil
}

func toTime(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case *time.Time:
		if d != nil {
			return *d, nil
		}
	case string:
		s := strings.TrimSpace(d)
		for _, l := range inputLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, d)
	}
	return time.Time{}, fmt.Errorf("%w: %T", ErrInvalidDate, v)
}
