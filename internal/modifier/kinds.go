package modifier

import (
	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/vid"
)

// SetModifier ignores the running input and returns its operand
// (spec.md §4.6: "Set: ignores input, returns a constant or
// formula-evaluated value"). Priority 0: it always runs first.
type SetModifier struct {
	format format.Format
	op     operand
}

// NewSet returns a Set modifier over f with the given operand.
func NewSet(f format.Format, op operand) *SetModifier {
	return &SetModifier{format: f, op: op}
}

func (m *SetModifier) Priority() Priority      { return PrioritySet }
func (m *SetModifier) Format() format.Format   { return m.format }
func (m *SetModifier) OperatorName() string    { return "set" }
func (m *SetModifier) Dependencies(v *ast.Visitor) ([]vid.VID, error) { return m.op.dependencies(v) }

func (m *SetModifier) Apply(v *ast.Visitor, input any) (any, error) {
	return m.op.evaluate(v, m.format)
}

// combineModifier is the shared shape of Add/Multiply/Min/Max: evaluate the
// operand, combine it with the running input via combine, pushing the
// input as INPUT so a formula operand can reference it.
type combineModifier struct {
	priority Priority
	name     string
	format   format.Format
	op       operand
	combine  func(input, operand any) (any, error)
}

func (m *combineModifier) Priority() Priority    { return m.priority }
func (m *combineModifier) Format() format.Format { return m.format }
func (m *combineModifier) OperatorName() string  { return m.name }

func (m *combineModifier) Dependencies(v *ast.Visitor) ([]vid.VID, error) {
	return m.op.dependencies(v)
}

func (m *combineModifier) Apply(v *ast.Visitor, input any) (any, error) {
	pop := v.PushInput(input)
	defer pop()
	operandVal, err := m.op.evaluate(v, m.format)
	if err != nil {
		return nil, err
	}
	return m.combine(input, operandVal)
}

// NewAdd returns a modifier that adds its operand to the running input.
func NewAdd(f format.Format, op operand) Modifier {
	return &combineModifier{priority: PriorityAdd, name: "add", format: f, op: op, combine: addValues}
}

// NewMultiply returns a modifier that multiplies the running input by its operand.
func NewMultiply(f format.Format, op operand) Modifier {
	return &combineModifier{priority: PriorityMultiply, name: "multiply", format: f, op: op, combine: mulValues}
}

// NewMin returns a modifier that clamps the running input to at most its operand.
func NewMin(f format.Format, op operand) Modifier {
	return &combineModifier{priority: PriorityMinMax, name: "min", format: f, op: op, combine: minValues}
}

// NewMax returns a modifier that clamps the running input to at least its operand.
func NewMax(f format.Format, op operand) Modifier {
	return &combineModifier{priority: PriorityMinMax, name: "max", format: f, op: op, combine: maxValues}
}
