package transform

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// splitWords breaks s into words for identifier-style cases. Boundaries are
// any rune that is not a letter or digit, a lower-to-upper transition, a
// letter/digit transition, and the last capital of an acronym run that is
// followed by a lower-case letter ("HTTPServer" -> "HTTP", "Server").
func splitWords(s string) []string {
	runes := []rune(s)
	var (
		words []string
		start = -1
	)

	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}

		prev := runes[i-1]
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(r):
			flush(i)
			start = i
		case unicode.IsLetter(prev) != unicode.IsLetter(r):
			flush(i)
			start = i
		case unicode.IsUpper(prev) && unicode.IsUpper(r) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(runes))

	return words
}

// capitalize upper-cases the first rune of w and lower-cases the rest.
func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}

// joinWords maps every word of s through fn and joins them with sep.
func joinWords(s, sep string, fn func(i int, w string) string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = fn(i, w)
	}
	return strings.Join(words, sep)
}

// mapFields rewrites each whitespace-separated field of s in place,
// preserving the original whitespace between fields.
func mapFields(s string, fn func(i, n int, field string) string) string {
	type span struct{ start, end int }

	var spans []span
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(s)})
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for i, sp := range spans {
		b.WriteString(s[last:sp.start])
		b.WriteString(fn(i, len(spans), s[sp.start:sp.end]))
		last = sp.end
	}
	b.WriteString(s[last:])

	return b.String()
}
