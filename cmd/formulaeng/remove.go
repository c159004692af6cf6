package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// removeCmd detaches a previously attached modifier (spec.md §4.7's
// remove_modifier), identified by the (instance, var, kind, source) it was
// attached with earlier in the same ops log.
var (
	removeInstance string
	removeVar      string
	removeConst    string
	removeFormula  string
	removeSource   string
	removeKind     string
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Detach a modifier from a variable",
		Long: `remove detaches the modifier previously attached to INSTANCE.VAR under
SOURCE. --kind must match the kind the modifier was attached with; the
modifier is looked up by (INSTANCE, VAR, kind, SOURCE) among those attached
earlier in the ops log, and --const/--formula are recorded but not used to
find it.`,
		RunE: runRemove,
	}
	addModifyFlags(cmd, &removeInstance, &removeVar, &removeConst, &removeFormula, &removeSource)
	cmd.Flags().StringVar(&removeKind, "kind", "set", `modifier kind to detach: "set", "add", "multiply", "min", or "max"`)
	return cmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	switch removeKind {
	case "set", "add", "multiply", "min", "max":
	default:
		return fmt.Errorf("--kind must be one of set, add, multiply, min, max (got %q)", removeKind)
	}
	s, err := buildSession()
	if err != nil {
		return err
	}
	defer s.shutdown()
	// "remove" reuses op.Format to carry the modifier kind being detached,
	// since "remove" itself is not one of the five modifier kinds.
	o := op{
		Kind:     "remove",
		Instance: removeInstance,
		Var:      removeVar,
		Const:    removeConst,
		Formula:  removeFormula,
		Source:   removeSource,
		Format:   removeKind,
	}
	if err := s.apply(o); err != nil {
		return err
	}
	if err := s.append(o); err != nil {
		return err
	}
	id, err := s.resolveVID(removeInstance, removeVar)
	if err != nil {
		return err
	}
	value, _ := s.eng.Get(id)
	writeResult(cmd, id, value)
	return nil
}
