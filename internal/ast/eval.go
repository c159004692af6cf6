package ast

import (
	"fmt"

	"github.com/solverlab/formula/internal/format"
)

// Evaluate walks root with v, returning the computed value (spec.md §4.5,
// "Evaluation pass"). asserted is the format the caller expects back; it is
// only consulted by functions that need it (e.g. `if`'s branches).
func Evaluate(v *Visitor, root Node, asserted format.Format) (any, error) {
	return evalNode(v, root, asserted)
}

func evalNode(v *Visitor, n Node, asserted format.Format) (any, error) {
	switch node := n.(type) {
	case *Root:
		return evalNode(v, node.Child, asserted)

	case *Paren:
		return evalNode(v, node.Child, asserted)

	case *Number:
		if val, err := format.IntegerFormat.Parse(node.Text); err == nil {
			return val, nil
		}
		return format.RealFormat.Parse(node.Text)

	case *String:
		return node.Text, nil

	case *Identifier:
		return evalIdentifier(v, node, asserted)

	case *Unary:
		operand, err := evalNode(v, node.Operand, nil)
		if err != nil {
			return nil, err
		}
		operandFmt, err := checkNode(v, node.Operand, nil)
		if err != nil {
			return nil, err
		}
		for _, action := range v.Operators.Unary(node.Category, node.Op) {
			if _, ok := action.AbstractEvaluate(operandFmt); ok {
				return action.Evaluate(operand)
			}
		}
		return nil, fmt.Errorf("%w: unary operator %q has no action for %s", ErrBadOperand, node.Op, operandFmt.Name())

	case *Binary:
		left, err := evalNode(v, node.Left, nil)
		if err != nil {
			return nil, err
		}
		right, err := evalNode(v, node.Right, nil)
		if err != nil {
			return nil, err
		}
		leftFmt, err := checkNode(v, node.Left, nil)
		if err != nil {
			return nil, err
		}
		rightFmt, err := checkNode(v, node.Right, nil)
		if err != nil {
			return nil, err
		}
		for _, action := range v.Operators.Binary(node.Category, node.Op) {
			if _, ok := action.AbstractEvaluate(leftFmt, rightFmt); ok {
				return action.Evaluate(left, right)
			}
		}
		return nil, fmt.Errorf("%w: operator %q has no action for (%s, %s)", ErrBadOperand, node.Op, leftFmt.Name(), rightFmt.Name())

	case *Function:
		fn, ok := v.Functions.Lookup(node.Name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown function %q", ErrBadFormula, node.Name)
		}
		return fn.Evaluate(v, node.Args.Args, asserted)

	case *FuncParen, *FuncBrack:
		return nil, fmt.Errorf("%w: structural argument-list node evaluated directly", ErrInvariantViolation)

	default:
		return nil, fmt.Errorf("%w: unhandled node kind %T", ErrInvariantViolation, n)
	}
}

func evalIdentifier(v *Visitor, node *Identifier, asserted format.Format) (any, error) {
	if node.Name == inputKeyword {
		val, ok := v.Input()
		if !ok {
			return nil, fmt.Errorf("%w: INPUT referenced outside a modifier evaluation context", ErrInvariantViolation)
		}
		return val, nil
	}

	f, ok := v.Library.FormatOf(v.Scope.Legal(), node.Name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", node.Name, ErrUnknownVariable)
	}
	id := vidFor(v, node.Name, f)

	val, ok := v.Store.Get(id)
	if ok {
		return val, nil
	}

	// Deliberate non-fatal policy (spec.md §4.5/§7): a VID absent from the
	// store mid-evaluation is not an error. It happens transiently while a
	// dependency cycle hasn't reached its first fixed point yet; the solver
	// manager guarantees it will recompute once the cycle stabilizes.
	if v.Logger != nil {
		v.Logger.Printf("ast: %s has no stored value yet, substituting default", id)
	}
	def, hasDefault := f.Default()
	if !hasDefault {
		return nil, fmt.Errorf("%w: %s has no stored value and format %s has no default", ErrInvariantViolation, id, f.Name())
	}
	return def, nil
}
