package main

import (
	"fmt"

	"github.com/solverlab/formula"
	"github.com/solverlab/formula/internal/config"
	"github.com/solverlab/formula/internal/modifier"
	"github.com/solverlab/formula/internal/vid"
)

// apply interprets one recorded op against the session's engine. It is used
// both to replay the ops log on startup and to perform the operation a
// subcommand was invoked for.
func (s *session) apply(o op) error {
	switch o.Kind {
	case "declare_scope":
		parent := s.eng.Global()
		if o.Parent != "" {
			p, ok := s.scopes[o.Parent]
			if !ok {
				return fmt.Errorf("declare_scope %s: unknown parent scope %q", o.Name, o.Parent)
			}
			parent = p
		}
		ls, err := s.eng.DeclareScope(parent, o.Name)
		if err != nil {
			return err
		}
		s.scopes[o.Name] = ls
		return nil

	case "assert":
		ls, err := s.lookupScope(o.Scope)
		if err != nil {
			return err
		}
		f, err := config.ResolveFormat(s.eng.Registry, o.Format)
		if err != nil {
			return err
		}
		return s.eng.Assert(o.Name, ls, f)

	case "open":
		ls, err := s.lookupScope(o.Scope)
		if err != nil {
			return err
		}
		parentInst, err := s.resolveInstance(o.ParentInstance)
		if err != nil {
			return err
		}
		si, err := s.eng.Open(ls, parentInst, o.Owner)
		if err != nil {
			return err
		}
		s.instances[o.Instance] = si
		return nil

	case "set", "add", "multiply", "min", "max":
		id, err := s.resolveVID(o.Instance, o.Var)
		if err != nil {
			return err
		}
		mod, err := s.buildModifier(o.Kind, o, id)
		if err != nil {
			return err
		}
		if _, err := s.eng.AddModifier(id, mod, o.Source); err != nil {
			return err
		}
		// AddModifier's identity for a later RemoveModifier is the exact
		// (Modifier, source) pair (spec.md §4.7) — Modifier is an interface
		// over a pointer, so a remove op can only detach the attached
		// instance we still hold here, never a freshly-built look-alike
		// (two separately constructed modifiers with identical fields are
		// distinct pointers and compare unequal).
		s.attached[attachKey(o.Instance, o.Var, o.Kind, o.Source)] = mod
		return nil

	case "remove":
		id, err := s.resolveVID(o.Instance, o.Var)
		if err != nil {
			return err
		}
		// A "remove" op names the kind of the modifier being detached in
		// Format, since "remove" itself isn't one of the five modifier kinds.
		key := attachKey(o.Instance, o.Var, o.Format, o.Source)
		mod, ok := s.attached[key]
		if !ok {
			return fmt.Errorf("remove: no modifier of kind %q attached to %s.%s under source %q in this session",
				o.Format, o.Instance, o.Var, o.Source)
		}
		if err := s.eng.RemoveModifier(id, mod, o.Source); err != nil {
			return err
		}
		delete(s.attached, key)
		return nil

	default:
		return fmt.Errorf("unknown op kind %q", o.Kind)
	}
}

// attachKey identifies an attached (modifier, source) pair by the terms a
// human operator names it with, so a later "remove" op in the same ops log
// can look the live Modifier value back up instead of reconstructing a
// look-alike.
func attachKey(instance, varName, kind, source string) string {
	return instance + "\x00" + varName + "\x00" + kind + "\x00" + source
}

// buildModifier constructs the Modifier a (kind, op) pair describes,
// without attaching it. modifier.Const/modifier.Formula return an
// unexported operand type, so the const-operand and formula-operand cases
// are switched on kind separately rather than through a shared helper that
// would need to name that type.
func (s *session) buildModifier(kind string, o op, id vid.VID) (formula.Modifier, error) {
	if o.Formula != "" {
		operand, err := modifier.Formula(o.Formula)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "set":
			return modifier.NewSet(id.Format, operand), nil
		case "add":
			return modifier.NewAdd(id.Format, operand), nil
		case "multiply":
			return modifier.NewMultiply(id.Format, operand), nil
		case "min":
			return modifier.NewMin(id.Format, operand), nil
		case "max":
			return modifier.NewMax(id.Format, operand), nil
		default:
			return nil, fmt.Errorf("unknown modifier kind %q", kind)
		}
	}

	value, err := id.Format.Parse(o.Const)
	if err != nil {
		return nil, fmt.Errorf("parsing constant %q for %s: %w", o.Const, id, err)
	}
	operand := modifier.Const(value)
	switch kind {
	case "set":
		return modifier.NewSet(id.Format, operand), nil
	case "add":
		return modifier.NewAdd(id.Format, operand), nil
	case "multiply":
		return modifier.NewMultiply(id.Format, operand), nil
	case "min":
		return modifier.NewMin(id.Format, operand), nil
	case "max":
		return modifier.NewMax(id.Format, operand), nil
	default:
		return nil, fmt.Errorf("unknown modifier kind %q", kind)
	}
}

func (s *session) lookupScope(name string) (*formula.LegalScope, error) {
	if name == "" || name == "global" {
		return s.eng.Global(), nil
	}
	ls, ok := s.scopes[name]
	if !ok {
		return nil, fmt.Errorf("unknown legal scope %q", name)
	}
	return ls, nil
}

func (s *session) resolveVID(instance, name string) (vid.VID, error) {
	si, err := s.resolveInstance(instance)
	if err != nil {
		return vid.VID{}, err
	}
	return s.eng.Identifier(si, name)
}
