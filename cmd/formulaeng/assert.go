package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// assertCmd declares that a name may exist in a scope with a given format
// (spec.md §4.3), mirroring the teacher's one-command-one-file layout (e.g.
// cmd/bd/advice_list.go).
var (
	assertScope         string
	assertName          string
	assertFormat        string
	assertCheckDefaults bool
)

func newAssertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assert",
		Short: "Declare a variable's name and format within a scope",
		Long: `assert records that NAME may exist within SCOPE with the given FORMAT,
the variable library's one-shot declaration (spec.md §4.3). Re-asserting the
same (scope, name, format) triple is a no-op; asserting a conflicting format
or a name already taken by a nested scope is rejected.

With --check-defaults, assert ignores --name/--format and instead lists every
registered format that has no default value (spec.md §4.3's
formats_without_default diagnostic) — useful before asserting a variable of
that format, since no channel can be created for such a variable, so
attaching a modifier to it fails.`,
		RunE: runAssert,
	}
	cmd.Flags().StringVar(&assertScope, "scope", "global", "legal scope name ('global' for the root scope)")
	cmd.Flags().StringVar(&assertName, "name", "", "variable name")
	cmd.Flags().StringVar(&assertFormat, "format", "", `format name ("integer", "real", "boolean", "string", or "array<...>")`)
	cmd.Flags().BoolVar(&assertCheckDefaults, "check-defaults", false, "list registered formats with no default value instead of asserting")
	return cmd
}

func runAssert(cmd *cobra.Command, args []string) error {
	s, err := buildSession()
	if err != nil {
		return err
	}
	defer s.shutdown()

	if assertCheckDefaults {
		for _, f := range s.eng.Registry.WithoutDefault() {
			fmt.Fprintln(cmd.OutOrStdout(), f.Name())
		}
		return nil
	}
	if assertName == "" || assertFormat == "" {
		return fmt.Errorf("assert: --name and --format are required unless --check-defaults is set")
	}

	o := op{Kind: "assert", Scope: assertScope, Name: assertName, Format: assertFormat}
	if err := s.apply(o); err != nil {
		return err
	}
	if err := s.append(o); err != nil {
		return err
	}
	cmd.Printf("asserted %s.%s : %s\n", assertScope, assertName, assertFormat)
	return nil
}
