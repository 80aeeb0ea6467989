package casekit

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"

	"github.com/hay-kot/casekit/internal/core/transform"
)

// MatchMethods keeps the methods whose name or "category/name" path matches
// the glob pattern. An empty pattern matches every method.
func MatchMethods(methods []transform.Method, pattern string) ([]transform.Method, error) {
	if pattern == "" {
		return methods, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	var out []transform.Method
	for _, m := range methods {
		byName, _ := doublestar.Match(pattern, m.Name)
		byPath, _ := doublestar.Match(pattern, m.Category+"/"+m.Name)
		if byName || byPath {
			out = append(out, m)
		}
	}
	return out, nil
}

// methodSource exposes method names and labels to fuzzy matching.
type methodSource []transform.Method

func (s methodSource) String(i int) string { return s[i].Name + " " + s[i].Label }
func (s methodSource) Len() int            { return len(s) }

// SearchMethods ranks methods by fuzzy match of query against name and
// label, best first. An empty query returns methods unchanged.
func SearchMethods(methods []transform.Method, query string) []transform.Method {
	if query == "" {
		return methods
	}

	matches := fuzzy.FindFrom(query, methodSource(methods))
	out := make([]transform.Method, len(matches))
	for i, match := range matches {
		out[i] = methods[match.Index]
	}
	return out
}
