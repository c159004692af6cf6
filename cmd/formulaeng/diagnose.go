package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/solverlab/formula/internal/modifier"
)

// diagnose renders a variable's per-modifier evaluation trace (spec.md
// §4.6's diagnose()). Styling follows cmd/bd-examples/main.go's
// AdaptiveColor palette; on a non-TTY stdout it falls back to a plain
// tab-separated table, the same TTY check cmd/bd/import.go makes before
// prompting interactively.
var (
	diagInstance string
	diagVar      string

	diagHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"})
	diagMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
	diagFinalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"})
)

func newDiagnoseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Show a variable's per-modifier evaluation trace",
		Long: `diagnose runs INSTANCE.VAR's solver stack and reports the intermediate
value after each modifier, source first to last, ending with the final
stored value (spec.md §4.6).`,
		RunE: runDiagnose,
	}
	cmd.Flags().StringVar(&diagInstance, "instance", "global", "scope instance name opened via a prior 'open' op, or 'global'")
	cmd.Flags().StringVar(&diagVar, "var", "", "variable name within the instance")
	cmd.MarkFlagRequired("var")
	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	s, err := buildSession()
	if err != nil {
		return err
	}
	defer s.shutdown()
	id, err := s.resolveVID(diagInstance, diagVar)
	if err != nil {
		return err
	}
	steps, final, err := s.eng.Diagnose(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); !flagNoColor && ok && term.IsTerminal(int(f.Fd())) {
		renderDiagnoseTable(cmd, id, steps, final)
		return nil
	}
	renderDiagnosePlain(cmd, id, steps, final)
	return nil
}

func renderDiagnoseTable(cmd *cobra.Command, id any, steps []modifier.Step, final any) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, diagHeaderStyle.Render(fmt.Sprintf("%v", id)))
	fmt.Fprintln(w, diagMutedStyle.Render(strings.Repeat("-", 40)))
	for i, step := range steps {
		fmt.Fprintf(w, "%2d  %-12s %v\n", i+1, step.OperatorName, fmt.Sprintf("%v", step.Intermediate))
		if step.Source != nil {
			fmt.Fprintln(w, diagMutedStyle.Render(fmt.Sprintf("      source: %v", step.Source)))
		}
	}
	fmt.Fprintln(w, diagMutedStyle.Render(strings.Repeat("-", 40)))
	fmt.Fprintln(w, diagFinalStyle.Render(fmt.Sprintf("= %v", final)))
}

func renderDiagnosePlain(cmd *cobra.Command, id any, steps []modifier.Step, final any) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%v\n", id)
	for i, step := range steps {
		fmt.Fprintf(w, "%d\t%s\t%v\tsource=%v\n", i+1, step.OperatorName, step.Intermediate, step.Source)
	}
	fmt.Fprintf(w, "=\t%v\n", final)
}
