package modifier

import "fmt"

// asNumeric normalizes a stored value to float64 plus whether the original
// was an int64, so combiners can decide the result's representation the
// same way the builtin operator library promotes integer/real mixes.
func asNumeric(v any) (f float64, isInt bool, err error) {
	switch n := v.(type) {
	case int64:
		return float64(n), true, nil
	case float64:
		return n, false, nil
	default:
		return 0, false, fmt.Errorf("modifier: value %v is not numeric", v)
	}
}

func numericResult(f float64, bothInt bool) any {
	if bothInt {
		return int64(f)
	}
	return f
}

func addValues(a, b any) (any, error) {
	af, aInt, err := asNumeric(a)
	if err != nil {
		return nil, err
	}
	bf, bInt, err := asNumeric(b)
	if err != nil {
		return nil, err
	}
	return numericResult(af+bf, aInt && bInt), nil
}

func mulValues(a, b any) (any, error) {
	af, aInt, err := asNumeric(a)
	if err != nil {
		return nil, err
	}
	bf, bInt, err := asNumeric(b)
	if err != nil {
		return nil, err
	}
	return numericResult(af*bf, aInt && bInt), nil
}

func minValues(a, b any) (any, error) {
	af, aInt, err := asNumeric(a)
	if err != nil {
		return nil, err
	}
	bf, bInt, err := asNumeric(b)
	if err != nil {
		return nil, err
	}
	if af <= bf {
		return numericResult(af, aInt), nil
	}
	return numericResult(bf, bInt), nil
}

func maxValues(a, b any) (any, error) {
	af, aInt, err := asNumeric(a)
	if err != nil {
		return nil, err
	}
	bf, bInt, err := asNumeric(b)
	if err != nil {
		return nil, err
	}
	if af >= bf {
		return numericResult(af, aInt), nil
	}
	return numericResult(bf, bInt), nil
}
