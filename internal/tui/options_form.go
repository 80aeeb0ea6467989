package tui

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/styles"
)

// OptionsForm wraps a huh.Form that edits every option of one method.
type OptionsForm struct {
	form   *huh.Form
	method transform.Method
	flags  map[string]*bool
	text   map[string]*string
}

// NewOptionsForm builds a form for m prefilled with values. Values that
// m does not accept are replaced by their defaults.
func NewOptionsForm(m transform.Method, values transform.Options) *OptionsForm {
	f := &OptionsForm{
		method: m,
		flags:  make(map[string]*bool),
		text:   make(map[string]*string),
	}

	values = m.Resolve(values)
	fields := make([]huh.Field, 0, len(m.Options))
	for _, spec := range m.Options {
		fields = append(fields, f.field(spec, values[spec.Key]))
	}

	f.form = huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(styles.FormTheme()).
		WithShowHelp(true)
	return f
}

func (f *OptionsForm) field(spec transform.OptionSpec, cur transform.Value) huh.Field {
	switch spec.Kind {
	case transform.KindBool:
		b := cur.Bool
		f.flags[spec.Key] = &b
		return huh.NewConfirm().
			Title(spec.Label).
			Affirmative("On").
			Negative("Off").
			Value(&b)
	case transform.KindChoice:
		s := cur.Str
		f.text[spec.Key] = &s
		return huh.NewSelect[string]().
			Title(spec.Label).
			Options(huh.NewOptions(spec.Choices...)...).
			Value(&s)
	default:
		s := cur.String()
		f.text[spec.Key] = &s
		return huh.NewInput().
			Title(spec.Label).
			Value(&s).
			Validate(func(raw string) error {
				_, err := spec.Parse(raw)
				return err
			})
	}
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *OptionsForm) Form() *huh.Form {
	return f.form
}

// Method returns the method being edited.
func (f *OptionsForm) Method() transform.Method {
	return f.method
}

// Result returns the entered values. Every invalid value is reported.
func (f *OptionsForm) Result() (transform.Options, error) {
	out := make(transform.Options, len(f.method.Options))

	var errs []error
	for _, spec := range f.method.Options {
		if b, ok := f.flags[spec.Key]; ok {
			out[spec.Key] = transform.BoolValue(*b)
			continue
		}
		v, err := spec.Parse(*f.text[spec.Key])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[spec.Key] = v
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// View renders the form.
func (f *OptionsForm) View() string {
	return f.form.View()
}
