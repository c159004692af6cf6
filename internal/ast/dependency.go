package ast

import "fmt"

// CollectDependencies walks root with v, accumulating into bag what
// spec.md §4.5's "Dependency pass" describes: VIDs referenced by Identifier
// nodes (key "variables") and the maximum arg(n) index referenced (key
// "arguments"). Functions may consume or ignore either key.
func CollectDependencies(v *Visitor, root Node, bag *DependencyBag) error {
	return collectNode(v, root, bag)
}

func collectNode(v *Visitor, n Node, bag *DependencyBag) error {
	switch node := n.(type) {
	case *Root:
		return collectNode(v, node.Child, bag)

	case *Paren:
		return collectNode(v, node.Child, bag)

	case *Binary:
		if err := collectNode(v, node.Left, bag); err != nil {
			return err
		}
		return collectNode(v, node.Right, bag)

	case *Unary:
		return collectNode(v, node.Operand, bag)

	case *Number, *String:
		return nil

	case *Identifier:
		if node.Name == inputKeyword {
			return nil
		}
		f, ok := v.Library.FormatOf(v.Scope.Legal(), node.Name)
		if !ok {
			return fmt.Errorf("%q: %w", node.Name, ErrUnknownVariable)
		}
		bag.AddVariable(vidFor(v, node.Name, f))
		return nil

	case *Function:
		fn, ok := v.Functions.Lookup(node.Name)
		if !ok {
			return fmt.Errorf("%w: unknown function %q", ErrBadFormula, node.Name)
		}
		return fn.GetDependencies(v, bag, node.Args.Args)

	case *FuncParen, *FuncBrack:
		return fmt.Errorf("%w: structural argument-list node visited directly", ErrInvariantViolation)

	default:
		return fmt.Errorf("%w: unhandled node kind %T", ErrInvariantViolation, n)
	}
}
