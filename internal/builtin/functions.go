package builtin

import (
	"fmt"
	"strconv"

	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/format"
)

// Functions is the default FunctionLibrary: abs, min, max, if, arg, length
// (spec.md §6).
type Functions struct {
	byName map[string]ast.Function
}

var _ ast.FunctionLibrary = (*Functions)(nil)

// NewFunctions returns a library with the six built-in functions registered.
func NewFunctions() *Functions {
	f := &Functions{byName: make(map[string]ast.Function)}
	for _, fn := range []ast.Function{
		absFunction{}, minFunction{}, maxFunction{}, ifFunction{}, argFunction{}, lengthFunction{},
	} {
		f.byName[fn.Name()] = fn
	}
	return f
}

func (f *Functions) Lookup(name string) (ast.Function, bool) {
	fn, ok := f.byName[name]
	return fn, ok
}

func requireArgCount(name string, args []ast.Node, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s expects %d argument(s), got %d", ast.ErrBadFormula, name, n, len(args))
	}
	return nil
}

// --- abs ---

type absFunction struct{}

func (absFunction) Name() string { return "abs" }

func (absFunction) CheckSemantics(v *ast.Visitor, args []ast.Node, asserted format.Format) (format.Format, error) {
	if err := requireArgCount("abs", args, 1); err != nil {
		return nil, err
	}
	argFmt, err := ast.CheckSemantics(v, args[0], nil)
	if err != nil {
		return nil, err
	}
	if !argFmt.IsSubformatOf(format.RealFormat) {
		return nil, fmt.Errorf("%w: abs expects a numeric argument, got %s", ast.ErrBadOperand, argFmt.Name())
	}
	return argFmt, nil
}

func (absFunction) GetDependencies(v *ast.Visitor, bag *ast.DependencyBag, args []ast.Node) error {
	if err := requireArgCount("abs", args, 1); err != nil {
		return err
	}
	return ast.CollectDependencies(v, args[0], bag)
}

func (absFunction) Evaluate(v *ast.Visitor, args []ast.Node, asserted format.Format) (any, error) {
	if err := requireArgCount("abs", args, 1); err != nil {
		return nil, err
	}
	val, err := ast.Evaluate(v, args[0], nil)
	if err != nil {
		return nil, err
	}
	switch n := val.(type) {
	case int64:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	case float64:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: abs expects a numeric argument", ast.ErrBadOperand)
	}
}

// --- min / max ---

type minFunction struct{}
type maxFunction struct{}

func (minFunction) Name() string { return "min" }
func (maxFunction) Name() string { return "max" }

func numericVariadicCheck(name string, v *ast.Visitor, args []ast.Node) (format.Format, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %s expects at least one argument", ast.ErrBadFormula, name)
	}
	result := format.Format(format.IntegerFormat)
	for _, a := range args {
		argFmt, err := ast.CheckSemantics(v, a, nil)
		if err != nil {
			return nil, err
		}
		if !argFmt.IsSubformatOf(format.RealFormat) {
			return nil, fmt.Errorf("%w: %s expects numeric arguments, got %s", ast.ErrBadOperand, name, argFmt.Name())
		}
		if argFmt.Name() == format.Real {
			result = format.RealFormat
		}
	}
	return result, nil
}

func (minFunction) CheckSemantics(v *ast.Visitor, args []ast.Node, asserted format.Format) (format.Format, error) {
	return numericVariadicCheck("min", v, args)
}

func (maxFunction) CheckSemantics(v *ast.Visitor, args []ast.Node, asserted format.Format) (format.Format, error) {
	return numericVariadicCheck("max", v, args)
}

func variadicDeps(v *ast.Visitor, bag *ast.DependencyBag, args []ast.Node) error {
	for _, a := range args {
		if err := ast.CollectDependencies(v, a, bag); err != nil {
			return err
		}
	}
	return nil
}

func (minFunction) GetDependencies(v *ast.Visitor, bag *ast.DependencyBag, args []ast.Node) error {
	return variadicDeps(v, bag, args)
}

func (maxFunction) GetDependencies(v *ast.Visitor, bag *ast.DependencyBag, args []ast.Node) error {
	return variadicDeps(v, bag, args)
}

func evalNumericVariadic(name string, v *ast.Visitor, args []ast.Node, pickMax bool) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %s expects at least one argument", ast.ErrBadFormula, name)
	}
	anyReal := false
	vals := make([]float64, len(args))
	for i, a := range args {
		val, err := ast.Evaluate(v, a, nil)
		if err != nil {
			return nil, err
		}
		switch n := val.(type) {
		case int64:
			vals[i] = float64(n)
		case float64:
			anyReal = true
			vals[i] = n
		default:
			return nil, fmt.Errorf("%w: %s expects numeric arguments", ast.ErrBadOperand, name)
		}
	}
	best := vals[0]
	for _, n := range vals[1:] {
		if (pickMax && n > best) || (!pickMax && n < best) {
			best = n
		}
	}
	if anyReal {
		return best, nil
	}
	return int64(best), nil
}

func (minFunction) Evaluate(v *ast.Visitor, args []ast.Node, asserted format.Format) (any, error) {
	return evalNumericVariadic("min", v, args, false)
}

func (maxFunction) Evaluate(v *ast.Visitor, args []ast.Node, asserted format.Format) (any, error) {
	return evalNumericVariadic("max", v, args, true)
}

// --- if ---

type ifFunction struct{}

func (ifFunction) Name() string { return "if" }

func (ifFunction) CheckSemantics(v *ast.Visitor, args []ast.Node, asserted format.Format) (format.Format, error) {
	if err := requireArgCount("if", args, 3); err != nil {
		return nil, err
	}
	condFmt, err := ast.CheckSemantics(v, args[0], format.BooleanFormat)
	if err != nil {
		return nil, err
	}
	if condFmt.Name() != format.Boolean {
		return nil, fmt.Errorf("%w: if's condition must be boolean, got %s", ast.ErrBadOperand, condFmt.Name())
	}
	thenFmt, err := ast.CheckSemantics(v, args[1], asserted)
	if err != nil {
		return nil, err
	}
	elseFmt, err := ast.CheckSemantics(v, args[2], asserted)
	if err != nil {
		return nil, err
	}
	if thenFmt.Name() == elseFmt.Name() {
		return thenFmt, nil
	}
	if thenFmt.IsSubformatOf(elseFmt) {
		return elseFmt, nil
	}
	if elseFmt.IsSubformatOf(thenFmt) {
		return thenFmt, nil
	}
	return nil, fmt.Errorf("%w: if's branches yield incompatible formats %s and %s", ast.ErrBadFormula, thenFmt.Name(), elseFmt.Name())
}

func (ifFunction) GetDependencies(v *ast.Visitor, bag *ast.DependencyBag, args []ast.Node) error {
	if err := requireArgCount("if", args, 3); err != nil {
		return err
	}
	// Both branches are recorded as dependencies even though only one
	// executes, since the dependency pass must be conservative: which
	// branch runs can change every evaluation (spec.md §4.5).
	for _, a := range args {
		if err := ast.CollectDependencies(v, a, bag); err != nil {
			return err
		}
	}
	return nil
}

func (ifFunction) Evaluate(v *ast.Visitor, args []ast.Node, asserted format.Format) (any, error) {
	if err := requireArgCount("if", args, 3); err != nil {
		return nil, err
	}
	cond, err := ast.Evaluate(v, args[0], format.BooleanFormat)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: if's condition did not evaluate to a boolean", ast.ErrBadOperand)
	}
	if b {
		return ast.Evaluate(v, args[1], asserted)
	}
	return ast.Evaluate(v, args[2], asserted)
}

// --- arg ---

type argFunction struct{}

func (argFunction) Name() string { return "arg" }

func literalIndex(args []ast.Node) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: arg expects exactly one literal integer argument", ast.ErrBadFormula)
	}
	num, ok := args[0].(*ast.Number)
	if !ok {
		return 0, fmt.Errorf("%w: arg's argument must be a literal integer", ast.ErrBadFormula)
	}
	n, err := strconv.Atoi(num.Text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: arg's argument must be a non-negative integer literal", ast.ErrBadFormula)
	}
	return n, nil
}

func (argFunction) CheckSemantics(v *ast.Visitor, args []ast.Node, asserted format.Format) (format.Format, error) {
	if _, err := literalIndex(args); err != nil {
		return nil, err
	}
	if asserted != nil {
		return asserted, nil
	}
	return format.RealFormat, nil
}

func (argFunction) GetDependencies(v *ast.Visitor, bag *ast.DependencyBag, args []ast.Node) error {
	n, err := literalIndex(args)
	if err != nil {
		return err
	}
	bag.NoteArgument(n)
	return nil
}

func (argFunction) Evaluate(v *ast.Visitor, args []ast.Node, asserted format.Format) (any, error) {
	n, err := literalIndex(args)
	if err != nil {
		return nil, err
	}
	if n >= len(v.Args) {
		return nil, fmt.Errorf("%w: arg(%d) referenced but only %d argument(s) supplied", ast.ErrInvariantViolation, n, len(v.Args))
	}
	return v.Args[n], nil
}

// --- length ---

type lengthFunction struct{}

func (lengthFunction) Name() string { return "length" }

func (lengthFunction) CheckSemantics(v *ast.Visitor, args []ast.Node, asserted format.Format) (format.Format, error) {
	if err := requireArgCount("length", args, 1); err != nil {
		return nil, err
	}
	argFmt, err := ast.CheckSemantics(v, args[0], nil)
	if err != nil {
		return nil, err
	}
	if argFmt.Name() != format.String {
		if _, isArray := format.ElementFormat(argFmt); !isArray {
			return nil, fmt.Errorf("%w: length expects a string or array argument, got %s", ast.ErrBadOperand, argFmt.Name())
		}
	}
	return format.IntegerFormat, nil
}

func (lengthFunction) GetDependencies(v *ast.Visitor, bag *ast.DependencyBag, args []ast.Node) error {
	if err := requireArgCount("length", args, 1); err != nil {
		return err
	}
	return ast.CollectDependencies(v, args[0], bag)
}

func (lengthFunction) Evaluate(v *ast.Visitor, args []ast.Node, asserted format.Format) (any, error) {
	if err := requireArgCount("length", args, 1); err != nil {
		return nil, err
	}
	val, err := ast.Evaluate(v, args[0], nil)
	if err != nil {
		return nil, err
	}
	switch x := val.(type) {
	case string:
		return int64(len(x)), nil
	case []any:
		return int64(len(x)), nil
	default:
		return nil, fmt.Errorf("%w: length expects a string or array value", ast.ErrBadOperand)
	}
}
