// Package tmpl renders user-supplied output templates.
package tmpl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"text/template"
)

// shellQuote returns a shell-safe quoted string. It wraps the string in single
// quotes and escapes any existing single quotes using the '\'' technique.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	escaped := strings.ReplaceAll(s, "'", `'\''`)
	return "'" + escaped + "'"
}

func jsonQuote(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var funcs = template.FuncMap{
	"shq":  shellQuote,
	"json": jsonQuote,
	"trim": strings.TrimSpace,
}

// Render executes a Go template string with the given data. extra adds or
// overrides template functions.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - shq: Shell-quote a string for safe use in shell commands
//   - json: Quote a string as a JSON string literal
//   - trim: Strip leading and trailing whitespace
func Render(tmpl string, data any, extra template.FuncMap) (string, error) {
	fm := maps.Clone(funcs)
	maps.Copy(fm, extra)

	t, err := template.New("").Funcs(fm).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
