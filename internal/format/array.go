package format

import (
	"fmt"
	"strings"
)

// arrayFormat is the array-of-F composite format produced by ArrayOf. Two
// calls to ArrayOf with equal element formats return formats that compare
// equal by name, so repeated calls are safe to use as map keys via Name().
type arrayFormat struct {
	elem Format
}

// ArrayOf returns the format whose values are ordered sequences of elem.
func ArrayOf(elem Format) Format {
	return &arrayFormat{elem: elem}
}

func (a *arrayFormat) Name() Kind {
	return Kind("array<" + string(a.elem.Name()) + ">")
}

func (a *arrayFormat) Default() (any, bool) {
	return []any{}, true
}

func (a *arrayFormat) Accepts(v any) bool {
	vs, ok := v.([]any)
	if !ok {
		return false
	}
	for _, e := range vs {
		if !a.elem.Accepts(e) {
			return false
		}
	}
	return true
}

func (a *arrayFormat) Parse(text string) (any, error) {
	// Comma-separated element list, e.g. "1,2,3". Empty text is the empty array.
	text = strings.TrimSpace(text)
	if text == "" {
		return []any{}, nil
	}
	parts := strings.Split(text, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		v, err := a.elem.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("array element %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (a *arrayFormat) Unparse(v any) (string, error) {
	vs, ok := v.([]any)
	if !ok {
		return "", fmt.Errorf("array: value %v is not []any", v)
	}
	parts := make([]string, len(vs))
	for i, e := range vs {
		s, err := a.elem.Unparse(e)
		if err != nil {
			return "", fmt.Errorf("array element %d: %w", i, err)
		}
		parts[i] = s
	}
	return strings.Join(parts, ","), nil
}

func (a *arrayFormat) IsSubformatOf(other Format) bool {
	oa, ok := other.(*arrayFormat)
	if !ok {
		return false
	}
	return a.elem.IsSubformatOf(oa.elem)
}

// ElementFormat returns f's element format if f is an array format.
func ElementFormat(f Format) (Format, bool) {
	a, ok := f.(*arrayFormat)
	if !ok {
		return nil, false
	}
	return a.elem, true
}
