package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// addCmd attaches an additive-stage modifier to a variable: add, multiply,
// min, or max, selected by --kind (spec.md §4.6's four non-Set kinds, all
// sharing the same running-input/operand shape).
var (
	addInstance string
	addVar      string
	addConst    string
	addFormula  string
	addSource   string
	addKind     string
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Attach an add/multiply/min/max modifier to a variable",
		Long: `add attaches a combining modifier to INSTANCE.VAR, sourced from SOURCE:
add and multiply combine the operand with the running input arithmetically;
min and max clamp it (spec.md §4.6). Select the kind with --kind (default
"add"). Exactly one of --const or --formula must be given.`,
		RunE: runAdd,
	}
	addModifyFlags(cmd, &addInstance, &addVar, &addConst, &addFormula, &addSource)
	cmd.Flags().StringVar(&addKind, "kind", "add", `modifier kind: "add", "multiply", "min", or "max"`)
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	switch addKind {
	case "add", "multiply", "min", "max":
	default:
		return fmt.Errorf("--kind must be one of add, multiply, min, max (got %q)", addKind)
	}
	return runModify(cmd, addKind, addInstance, addVar, addConst, addFormula, addSource)
}
