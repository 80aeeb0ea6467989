package transform

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// OptionKind identifies the type carried by a Value.
type OptionKind int

const (
	KindBool OptionKind = iota + 1
	KindInt
	KindString
	KindChoice
)

var kindNames = map[OptionKind]string{
	KindBool:   "bool",
	KindInt:    "int",
	KindString: "string",
	KindChoice: "choice",
}

func (k OptionKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k OptionKind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown option kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OptionKind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown option kind %q", string(b))
}

// Value is a single option value tagged with its kind. Only the field
// matching Kind is meaningful. Choice values are stored in Str.
type Value struct {
	Kind OptionKind
	Bool bool
	Int  int
	Str  string
}

func BoolValue(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func IntValue(n int) Value       { return Value{Kind: KindInt, Int: n} }
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func ChoiceValue(s string) Value { return Value{Kind: KindChoice, Str: s} }

// String renders the value the way it would be typed on the command line.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.Itoa(v.Int)
	default:
		return v.Str
	}
}

type valueJSON struct {
	Kind  OptionKind      `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the value as {"kind": ..., "value": ...}.
func (v Value) MarshalJSON() ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch v.Kind {
	case KindBool:
		raw, err = json.Marshal(v.Bool)
	case KindInt:
		raw, err = json.Marshal(v.Int)
	case KindString, KindChoice:
		raw, err = json.Marshal(v.Str)
	default:
		return nil, fmt.Errorf("marshal option value: unknown kind %d", int(v.Kind))
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueJSON{Kind: v.Kind, Value: raw})
}

// UnmarshalJSON decodes the tagged form written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var tagged valueJSON
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}

	out := Value{Kind: tagged.Kind}
	var err error
	switch tagged.Kind {
	case KindBool:
		err = json.Unmarshal(tagged.Value, &out.Bool)
	case KindInt:
		err = json.Unmarshal(tagged.Value, &out.Int)
	case KindString, KindChoice:
		err = json.Unmarshal(tagged.Value, &out.Str)
	default:
		return fmt.Errorf("unmarshal option value: unknown kind %d", int(tagged.Kind))
	}
	if err != nil {
		return fmt.Errorf("unmarshal %s option value: %w", tagged.Kind, err)
	}

	*v = out
	return nil
}

// OptionSpec declares a parameter accepted by a method.
type OptionSpec struct {
	Key     string     `json:"key"`
	Label   string     `json:"label"`
	Kind    OptionKind `json:"kind"`
	Default Value      `json:"default"`
	Choices []string   `json:"choices,omitempty"`
	// Min is the smallest accepted int value. Nil means unbounded.
	Min *int `json:"min,omitempty"`
}

// AtLeast returns a lower bound for OptionSpec.Min.
func AtLeast(n int) *int { return &n }

// Accepts reports whether v is a valid value for this option.
func (s OptionSpec) Accepts(v Value) bool {
	if v.Kind != s.Kind {
		return false
	}
	switch s.Kind {
	case KindChoice:
		return slices.Contains(s.Choices, v.Str)
	case KindInt:
		return s.Min == nil || v.Int >= *s.Min
	}
	return true
}

// Parse converts raw command-line text into a value of the option's kind.
func (s OptionSpec) Parse(raw string) (Value, error) {
	switch s.Kind {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Value{}, fmt.Errorf("option %q expects true or false", s.Key)
		}
		return BoolValue(b), nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Value{}, fmt.Errorf("option %q expects an integer", s.Key)
		}
		if s.Min != nil && n < *s.Min {
			return Value{}, fmt.Errorf("option %q must be at least %d", s.Key, *s.Min)
		}
		return IntValue(n), nil
	case KindChoice:
		v := ChoiceValue(raw)
		if !s.Accepts(v) {
			return Value{}, fmt.Errorf("option %q must be one of %s", s.Key, strings.Join(s.Choices, ", "))
		}
		return v, nil
	default:
		return StringValue(raw), nil
	}
}

// Options holds option values keyed by OptionSpec.Key.
type Options map[string]Value

// Clone returns an independent copy. A nil receiver yields an empty map.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	maps.Copy(out, o)
	return out
}

// Equal reports whether both option sets hold the same values.
func (o Options) Equal(other Options) bool {
	return maps.Equal(o, other)
}

func (o Options) Bool(key string) bool   { return o[key].Bool }
func (o Options) Int(key string) int     { return o[key].Int }
func (o Options) Str(key string) string { return o[key].Str }
