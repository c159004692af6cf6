package modifier

import (
	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/vid"
)

// operand is the constant-or-formula value every modifier kind combines
// with its running input (spec.md §4.6: "a constant or formula-evaluated
// value"/"operand").
type operand struct {
	constant any
	formula  *ast.Root
}

// Const returns an operand that always evaluates to value.
func Const(value any) operand {
	return operand{constant: value}
}

// Formula parses src and returns an operand that evaluates it each step.
func Formula(src string) (operand, error) {
	root, err := ast.Parse(src)
	if err != nil {
		return operand{}, err
	}
	return operand{formula: root}, nil
}

func (o operand) dependencies(v *ast.Visitor) ([]vid.VID, error) {
	if o.formula == nil {
		return nil, nil
	}
	bag := ast.NewDependencyBag()
	if err := ast.CollectDependencies(v, o.formula, bag); err != nil {
		return nil, err
	}
	return bag.Variables, nil
}

func (o operand) evaluate(v *ast.Visitor, asserted format.Format) (any, error) {
	if o.formula == nil {
		return o.constant, nil
	}
	return ast.Evaluate(v, o.formula, asserted)
}
