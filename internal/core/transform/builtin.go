package transform

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Categories of the built-in methods.
const (
	CategoryCase     = "case"
	CategoryCode     = "code"
	CategoryText     = "text"
	CategoryEncoding = "encoding"
)

// Title case styles accepted by the title-case "style" option.
const (
	TitleSimple  = "simple"
	TitleAP      = "ap"
	TitleChicago = "chicago"
)

// Func implements a transformation. opts is already resolved against the
// method's declared options.
type Func func(text string, opts Options) (string, error)

// Definition pairs method metadata with its implementation.
type Definition struct {
	Method Method
	Func   Func
}

// LocalRegistry is an in-process Registry backed by a fixed set of definitions.
type LocalRegistry struct {
	defs    map[string]Definition
	methods []Method
}

// NewRegistry builds a registry from defs. Later definitions replace earlier
// ones with the same name.
func NewRegistry(defs ...Definition) *LocalRegistry {
	r := &LocalRegistry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		r.defs[d.Method.Name] = d
	}

	r.methods = make([]Method, 0, len(r.defs))
	for _, d := range r.defs {
		r.methods = append(r.methods, d.Method)
	}
	SortMethods(r.methods)

	return r
}

var builtin = sync.OnceValue(func() *LocalRegistry {
	return NewRegistry(builtinDefinitions()...)
})

// Builtin returns the shared registry of built-in methods.
func Builtin() *LocalRegistry {
	return builtin()
}

// Transform applies the named method to text.
func (r *LocalRegistry) Transform(ctx context.Context, name, text string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d, ok := r.defs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	out, err := d.Func(text, d.Method.Resolve(opts))
	if err != nil {
		var failure *Failure
		if errors.As(err, &failure) {
			return "", err
		}
		return "", &Failure{Method: name, Err: err}
	}

	return out, nil
}

// Has reports whether name is registered.
func (r *LocalRegistry) Has(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Method returns the metadata for name.
func (r *LocalRegistry) Method(name string) (Method, bool) {
	d, ok := r.defs[name]
	return d.Method, ok
}

// Methods returns all methods sorted by category, then name.
func (r *LocalRegistry) Methods() []Method {
	out := make([]Method, len(r.methods))
	copy(out, r.methods)
	return out
}

// Grouped returns methods keyed by category.
func (r *LocalRegistry) Grouped() map[string][]Method {
	return Group(r.methods)
}

func simple(name, label, category, description string, fn func(string) string) Definition {
	return Definition{
		Method: Method{Name: name, Label: label, Category: category, Description: description},
		Func: func(text string, _ Options) (string, error) {
			return fn(text), nil
		},
	}
}

func builtinDefinitions() []Definition {
	defs := []Definition{
		simple("upper-case", "UPPER CASE", CategoryCase, "Convert every letter to upper case", strings.ToUpper),
		simple("lower-case", "lower case", CategoryCase, "Convert every letter to lower case", strings.ToLower),
		simple("sentence-case", "Sentence case", CategoryCase, "Capitalize the first letter of each sentence", sentenceCase),
		simple("alternating-case", "aLtErNaTiNg CaSe", CategoryCase, "Alternate lower and upper case letters", alternatingCase),
		simple("inverse-case", "iNVERSE cASE", CategoryCase, "Swap the case of every letter", inverseCase),
		{
			Method: Method{
				Name:        "title-case",
				Label:       "Title Case",
				Category:    CategoryCase,
				Description: "Capitalize words following a style guide",
				Options: []OptionSpec{{
					Key:     "style",
					Label:   "Style guide",
					Kind:    KindChoice,
					Default: ChoiceValue(TitleSimple),
					Choices: []string{TitleSimple, TitleAP, TitleChicago},
				}},
			},
			Func: func(text string, opts Options) (string, error) {
				return titleCase(text, opts.Str("style")), nil
			},
		},

		simple("camel-case", "camelCase", CategoryCode, "Join words, capitalizing all but the first", func(s string) string {
			return joinWords(s, "", func(i int, w string) string {
				if i == 0 {
					return strings.ToLower(w)
				}
				return capitalize(w)
			})
		}),
		simple("pascal-case", "PascalCase", CategoryCode, "Join capitalized words", func(s string) string {
			return joinWords(s, "", func(_ int, w string) string { return capitalize(w) })
		}),
		simple("snake-case", "snake_case", CategoryCode, "Join lower-case words with underscores", separated("_", strings.ToLower)),
		simple("kebab-case", "kebab-case", CategoryCode, "Join lower-case words with hyphens", separated("-", strings.ToLower)),
		simple("constant-case", "CONSTANT_CASE", CategoryCode, "Join upper-case words with underscores", separated("_", strings.ToUpper)),
		simple("dot-case", "dot.case", CategoryCode, "Join lower-case words with dots", separated(".", strings.ToLower)),
		simple("path-case", "path/case", CategoryCode, "Join lower-case words with slashes", separated("/", strings.ToLower)),
		simple("train-case", "Train-Case", CategoryCode, "Join capitalized words with hyphens", separated("-", capitalize)),

		simple("reverse", "Reverse", CategoryText, "Reverse the text", reverse),
		simple("remove-punctuation", "Remove punctuation", CategoryText, "Strip punctuation characters", removePunctuation),
		{
			Method: Method{
				Name:        "trim-whitespace",
				Label:       "Trim whitespace",
				Category:    CategoryText,
				Description: "Trim lines and optionally collapse repeated spaces",
				Options: []OptionSpec{{
					Key:     "collapse",
					Label:   "Collapse inner spaces",
					Kind:    KindBool,
					Default: BoolValue(true),
				}},
			},
			Func: func(text string, opts Options) (string, error) {
				return trimWhitespace(text, opts.Bool("collapse")), nil
			},
		},
		{
			Method: Method{
				Name:        "slugify",
				Label:       "slugify",
				Category:    CategoryText,
				Description: "Build a URL slug from the text",
				Options: []OptionSpec{{
					Key:     "separator",
					Label:   "Separator",
					Kind:    KindString,
					Default: StringValue("-"),
				}},
			},
			Func: slugify,
		},
		{
			Method: Method{
				Name:        "wrap",
				Label:       "Word wrap",
				Category:    CategoryText,
				Description: "Wrap lines at a column width",
				Options: []OptionSpec{{
					Key:     "width",
					Label:   "Width",
					Kind:    KindInt,
					Default: IntValue(80),
					Min:     AtLeast(1),
				}},
			},
			Func: wrap,
		},

		simple("base64-encode", "Base64 encode", CategoryEncoding, "Encode the text as standard base64", func(s string) string {
			return base64.StdEncoding.EncodeToString([]byte(s))
		}),
		{
			Method: Method{Name: "base64-decode", Label: "Base64 decode", Category: CategoryEncoding, Description: "Decode standard base64 text"},
			Func: func(text string, _ Options) (string, error) {
				b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
				if err != nil {
					return "", errors.New("input is not valid base64")
				}
				return string(b), nil
			},
		},
		simple("url-encode", "URL encode", CategoryEncoding, "Percent-encode the text for a query string", url.QueryEscape),
		{
			Method: Method{Name: "url-decode", Label: "URL decode", Category: CategoryEncoding, Description: "Decode percent-encoded text"},
			Func: func(text string, _ Options) (string, error) {
				s, err := url.QueryUnescape(text)
				if err != nil {
					return "", errors.New("input is not valid percent-encoding")
				}
				return s, nil
			},
		},
		simple("rot13", "ROT13", CategoryEncoding, "Rotate letters by 13 places", rot13),
	}

	return defs
}

func separated(sep string, fn func(string) string) func(string) string {
	return func(s string) string {
		return joinWords(s, sep, func(_ int, w string) string { return fn(w) })
	}
}

func sentenceCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	capNext := true
	for _, r := range strings.ToLower(s) {
		switch {
		case capNext && unicode.IsLetter(r):
			b.WriteRune(unicode.ToUpper(r))
			capNext = false
		case r == '.' || r == '!' || r == '?':
			b.WriteRune(r)
			capNext = true
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func alternatingCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	upper := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			b.WriteRune(r)
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		upper = !upper
	}

	return b.String()
}

func inverseCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		default:
			return r
		}
	}, s)
}

var (
	apMinorWords = wordSet("a", "an", "and", "as", "at", "but", "by", "for", "if", "in",
		"nor", "of", "off", "on", "or", "per", "so", "the", "to", "up", "via", "yet")
	chicagoMinorWords = wordSet("a", "an", "and", "as", "at", "but", "by", "for", "from",
		"in", "into", "like", "near", "nor", "of", "off", "on", "onto", "or", "over",
		"per", "so", "than", "the", "to", "up", "upon", "via", "with", "yet")
)

func wordSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func titleCase(s, style string) string {
	caser := cases.Title(language.English)

	var minor map[string]struct{}
	switch style {
	case TitleAP:
		minor = apMinorWords
	case TitleChicago:
		minor = chicagoMinorWords
	default:
		return caser.String(s)
	}

	return mapFields(s, func(i, n int, field string) string {
		bare := strings.ToLower(strings.TrimFunc(field, unicode.IsPunct))
		if _, ok := minor[bare]; ok && i > 0 && i < n-1 {
			return strings.ToLower(field)
		}
		return caser.String(field)
	})
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func removePunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
}

func trimWhitespace(s string, collapse bool) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if collapse {
			line = strings.Join(strings.Fields(line), " ")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func slugify(text string, opts Options) (string, error) {
	sep := opts.Str("separator")
	if sep == "" {
		sep = "-"
	}

	folded, _, err := xtransform.String(
		xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		text,
	)
	if err != nil {
		return "", fmt.Errorf("normalize text: %w", err)
	}

	fields := strings.FieldsFunc(strings.ToLower(folded), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	return strings.Join(fields, sep), nil
}

func wrap(text string, opts Options) (string, error) {
	width := opts.Int("width")
	if width < 1 {
		return "", errors.New("width must be at least 1")
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		current := words[0]
		for _, w := range words[1:] {
			if len([]rune(current))+1+len([]rune(w)) > width {
				out = append(out, current)
				current = w
				continue
			}
			current += " " + w
		}
		out = append(out, current)
	}

	return strings.Join(out, "\n"), nil
}

func rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		default:
			return r
		}
	}, s)
}
