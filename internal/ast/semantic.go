package ast

import (
	"fmt"

	"github.com/solverlab/formula/internal/format"
)

// CheckSemantics walks root with v, threading the inherited asserted format
// (the format the parent context expects; pass nil if none) and returns the
// node's result format or the first failure encountered (spec.md §4.5,
// "Semantic pass").
func CheckSemantics(v *Visitor, root Node, asserted format.Format) (format.Format, error) {
	return checkNode(v, root, asserted)
}

func checkNode(v *Visitor, n Node, asserted format.Format) (format.Format, error) {
	switch node := n.(type) {
	case *Root:
		result, err := checkNode(v, node.Child, asserted)
		if err != nil {
			return nil, err
		}
		if asserted != nil && !result.IsSubformatOf(asserted) {
			return nil, fmt.Errorf("%w: expression yields %s, expected %s", ErrBadFormula, result.Name(), asserted.Name())
		}
		return result, nil

	case *Paren:
		return checkNode(v, node.Child, asserted)

	case *Binary:
		leftFmt, err := checkNode(v, node.Left, nil)
		if err != nil {
			return nil, err
		}
		rightFmt, err := checkNode(v, node.Right, nil)
		if err != nil {
			return nil, err
		}
		for _, action := range v.Operators.Binary(node.Category, node.Op) {
			if result, ok := action.AbstractEvaluate(leftFmt, rightFmt); ok {
				return result, nil
			}
		}
		return nil, fmt.Errorf("%w: operator %q has no action for (%s, %s)", ErrBadOperand, node.Op, leftFmt.Name(), rightFmt.Name())

	case *Unary:
		operandFmt, err := checkNode(v, node.Operand, nil)
		if err != nil {
			return nil, err
		}
		for _, action := range v.Operators.Unary(node.Category, node.Op) {
			if result, ok := action.AbstractEvaluate(operandFmt); ok {
				return result, nil
			}
		}
		return nil, fmt.Errorf("%w: unary operator %q has no action for %s", ErrBadOperand, node.Op, operandFmt.Name())

	case *Number:
		if _, err := format.IntegerFormat.Parse(node.Text); err == nil {
			return format.IntegerFormat, nil
		}
		if _, err := format.RealFormat.Parse(node.Text); err == nil {
			return format.RealFormat, nil
		}
		return nil, fmt.Errorf("%w: %q is neither an integer nor a real", ErrBadNumber, node.Text)

	case *String:
		return format.StringFormat, nil

	case *Identifier:
		if node.Name == inputKeyword {
			if asserted != nil {
				return asserted, nil
			}
			// During evaluation an INPUT value is pushed; its own format
			// lets operator dispatch keep integer INPUT arithmetic integer.
			if val, ok := v.Input(); ok {
				if f, ok := format.NaturalFormat(val); ok {
					return f, nil
				}
			}
			return format.RealFormat, nil
		}
		f, ok := v.Library.FormatOf(v.Scope.Legal(), node.Name)
		if !ok {
			return nil, fmt.Errorf("%q: %w", node.Name, ErrUnknownVariable)
		}
		return f, nil

	case *Function:
		fn, ok := v.Functions.Lookup(node.Name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown function %q", ErrBadFormula, node.Name)
		}
		return fn.CheckSemantics(v, node.Args.Args, asserted)

	case *FuncParen, *FuncBrack:
		return nil, fmt.Errorf("%w: structural argument-list node evaluated directly", ErrInvariantViolation)

	default:
		return nil, fmt.Errorf("%w: unhandled node kind %T", ErrInvariantViolation, n)
	}
}

// inputKeyword is the reserved identifier name that reads the running INPUT
// value threaded by the modifier/solver machinery rather than a declared
// variable (spec.md §4.5/§4.6: "the *input* value (used by array-component
// and chained modifiers)"). It is not itself a VID and never appears in a
// dependency set.
const inputKeyword = "INPUT"
