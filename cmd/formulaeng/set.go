package main

import (
	"github.com/spf13/cobra"
)

// setCmd attaches a Set modifier to a variable (spec.md scenario S1's
// set(a, 3)) — a constant if --const is given, a formula-evaluated value if
// --formula is given.
var (
	setInstance string
	setVar      string
	setConst    string
	setFormula  string
	setSource   string
)

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Attach a Set modifier to a variable",
		Long: `set attaches a Set modifier — the modifier kind that runs first (the
lowest priority value), which ignores the variable's running input and replaces it outright (spec.md
§4.6) — to INSTANCE.VAR, sourced from SOURCE. Exactly one of --const or
--formula must be given.`,
		RunE: runSet,
	}
	addModifyFlags(cmd, &setInstance, &setVar, &setConst, &setFormula, &setSource)
	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	return runModify(cmd, "set", setInstance, setVar, setConst, setFormula, setSource)
}

// addModifyFlags wires the flag set shared by set/add/multiply-style
// subcommands onto dest.
func addModifyFlags(cmd *cobra.Command, instance, varName, constVal, formulaVal, source *string) {
	cmd.Flags().StringVar(instance, "instance", "global", "scope instance name opened via a prior 'open' op, or 'global'")
	cmd.Flags().StringVar(varName, "var", "", "variable name within the instance")
	cmd.Flags().StringVar(constVal, "const", "", "constant operand, parsed per the variable's format")
	cmd.Flags().StringVar(formulaVal, "formula", "", "formula-text operand (spec.md §6 grammar)")
	cmd.Flags().StringVar(source, "source", "", "caller-supplied source identity for this modifier (spec.md §4.6)")
	cmd.MarkFlagRequired("var")
}

func runModify(cmd *cobra.Command, kind, instance, varName, constVal, formulaVal, source string) error {
	s, err := buildSession()
	if err != nil {
		return err
	}
	defer s.shutdown()
	o := op{Kind: kind, Instance: instance, Var: varName, Const: constVal, Formula: formulaVal, Source: source}
	if err := s.apply(o); err != nil {
		return err
	}
	if err := s.append(o); err != nil {
		return err
	}
	id, err := s.resolveVID(instance, varName)
	if err != nil {
		return err
	}
	value, _ := s.eng.Get(id)
	writeResult(cmd, id, value)
	return nil
}
