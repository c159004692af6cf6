package format

import (
	"fmt"
	"strconv"
)

const (
	Integer Kind = "integer"
	Real    Kind = "real"
	Boolean Kind = "boolean"
	String  Kind = "string"
)

type primitive struct {
	name       Kind
	def        any
	hasDefault bool
	accepts    func(any) bool
	parse      func(string) (any, error)
	unparse    func(any) (string, error)
	subOf      func(Format) bool
}

func (p *primitive) Name() Kind                      { return p.name }
func (p *primitive) Default() (any, bool)            { return p.def, p.hasDefault }
func (p *primitive) Accepts(v any) bool               { return p.accepts(v) }
func (p *primitive) Parse(text string) (any, error)   { return p.parse(text) }
func (p *primitive) Unparse(v any) (string, error)    { return p.unparse(v) }
func (p *primitive) IsSubformatOf(other Format) bool {
	if other == Format(p) {
		return true
	}
	return p.subOf(other)
}

// IntegerFormat is the signed-integer primitive format.
var IntegerFormat Format = &primitive{
	name:       Integer,
	def:        int64(0),
	hasDefault: true,
	accepts:    func(v any) bool { _, ok := v.(int64); return ok },
	parse: func(text string) (any, error) {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer: %w", err)
		}
		return n, nil
	},
	unparse: func(v any) (string, error) {
		n, ok := v.(int64)
		if !ok {
			return "", fmt.Errorf("integer: value %v is not an int64", v)
		}
		return strconv.FormatInt(n, 10), nil
	},
	subOf: func(other Format) bool {
		// Every integer value is also a valid real value.
		return other.Name() == Real
	},
}

// RealFormat is the floating-point primitive format.
var RealFormat Format = &primitive{
	name:       Real,
	def:        float64(0),
	hasDefault: true,
	accepts:    func(v any) bool { _, ok := v.(float64); return ok },
	parse: func(text string) (any, error) {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("real: %w", err)
		}
		return f, nil
	},
	unparse: func(v any) (string, error) {
		f, ok := v.(float64)
		if !ok {
			return "", fmt.Errorf("real: value %v is not a float64", v)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	},
	subOf: func(Format) bool { return false },
}

// BooleanFormat is the boolean primitive format.
var BooleanFormat Format = &primitive{
	name:       Boolean,
	def:        false,
	hasDefault: true,
	accepts:    func(v any) bool { _, ok := v.(bool); return ok },
	parse: func(text string) (any, error) {
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("boolean: %w", err)
		}
		return b, nil
	},
	unparse: func(v any) (string, error) {
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("boolean: value %v is not a bool", v)
		}
		return strconv.FormatBool(b), nil
	},
	subOf: func(Format) bool { return false },
}

// StringFormat is the text primitive format.
var StringFormat Format = &primitive{
	name:       String,
	def:        "",
	hasDefault: true,
	accepts:    func(v any) bool { _, ok := v.(string); return ok },
	parse:      func(text string) (any, error) { return text, nil },
	unparse: func(v any) (string, error) {
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("string: value %v is not a string", v)
		}
		return s, nil
	},
	subOf: func(Format) bool { return false },
}

// NaturalFormat returns the primitive format a raw Go value would be
// asserted under if declared directly, used to test whether a value
// rejected by one format's exact Accepts is still legal as a subformat
// value (Store.Put: an int64 is a legal real, since IntegerFormat is a
// subformat of RealFormat, even though RealFormat.Accepts(int64) is false).
func NaturalFormat(value any) (Format, bool) {
	switch value.(type) {
	case int64:
		return IntegerFormat, true
	case float64:
		return RealFormat, true
	case bool:
		return BooleanFormat, true
	case string:
		return StringFormat, true
	}
	return nil, false
}

// RegisterPrimitives installs the four built-in primitive formats into r.
func RegisterPrimitives(r *Registry) error {
	for _, f := range []Format{IntegerFormat, RealFormat, BooleanFormat, StringFormat} {
		if err := r.Register(f); err != nil {
			return err
		}
	}
	return nil
}
