// Command formulaeng is a small CLI surface over the formula engine,
// grounded in the teacher's cmd/bd one-package-per-subcommand Cobra layout.
//
// Non-goals §1 excludes persistence of evaluated values across process
// runs, so formulaeng never caches a computed value between invocations:
// every invocation rebuilds the engine from the config files (--scopes,
// --vars) and replays the prior operations recorded in --ops-log, then
// applies the new operation the subcommand names and appends it to the
// log. The log records *instructions*, not results — each run recomputes
// everything from scratch, matching spec.md §1's aggressive/push model.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solverlab/formula"
	"github.com/solverlab/formula/internal/config"
)

var (
	flagScopes    string
	flagVars      []string
	flagOpsLog    string
	flagNoColor   bool
	flagTelemetry bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "formulaeng",
		Short: "Drive a reactive formula engine from the command line",
		Long: `formulaeng loads a legal-scope tree and variable assertions from
config files, replays a recorded sequence of prior operations, applies one
new operation, and prints the affected variable's resulting value.

Each invocation is a fresh process: formulaeng never persists computed
values, only the instruction log (--ops-log) used to rebuild engine state.`,
	}
	root.PersistentFlags().StringVar(&flagScopes, "scopes", "scopes.yaml", "legal-scope tree YAML file")
	root.PersistentFlags().StringArrayVar(&flagVars, "vars", nil, "variable-assertion TOML fragment (repeatable)")
	root.PersistentFlags().StringVar(&flagOpsLog, "ops-log", "formulaeng.ops.jsonl", "append-only JSON-lines operation log")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable lipgloss styling even on a TTY")
	root.PersistentFlags().BoolVar(&flagTelemetry, "telemetry", false, "print OpenTelemetry traces and metrics to stderr as the engine runs")

	root.AddCommand(newAssertCmd())
	root.AddCommand(newSetCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newRemoveCmd())
	root.AddCommand(newDiagnoseCmd())
	return root
}

// op is one recorded entry in the ops log. Kind selects which fields apply;
// unused fields are left zero.
type op struct {
	Kind           string `json:"kind"` // "declare_scope", "open", "assert", "set", "add", "multiply", "min", "max", "remove"
	Scope          string `json:"scope,omitempty"`
	Parent         string `json:"parent,omitempty"`
	Name           string `json:"name,omitempty"`
	Format         string `json:"format,omitempty"`
	Instance       string `json:"instance,omitempty"`
	ParentInstance string `json:"parent_instance,omitempty"`
	Owner          string `json:"owner,omitempty"`
	Var            string `json:"var,omitempty"`
	Const          string `json:"const,omitempty"`
	Formula        string `json:"formula,omitempty"`
	Source         string `json:"source,omitempty"`
}

// session bundles a live Engine with the name tables an ops log needs to
// refer back to scopes and scope instances by the names the operator chose
// on the command line.
type session struct {
	eng       *formula.Engine
	scopes    map[string]*formula.LegalScope
	instances map[string]*formula.ScopeInst
	attached  map[string]formula.Modifier
	shutdown  func()
}

// buildSession constructs a fresh engine and replays --ops-log into it.
// Callers must defer s.shutdown() once the session is built, which flushes
// any telemetry exporters wired by --telemetry.
func buildSession() (*session, error) {
	opts, shutdown, err := telemetryOptions()
	if err != nil {
		return nil, fmt.Errorf("formulaeng: %w", err)
	}

	eng, err := formula.New(opts...)
	if err != nil {
		shutdown()
		return nil, fmt.Errorf("formulaeng: %w", err)
	}
	scopesByName, err := config.LoadScopeTreeFile(eng.Scopes, flagScopes)
	if err != nil {
		shutdown()
		return nil, fmt.Errorf("formulaeng: %w", err)
	}
	for _, p := range flagVars {
		if err := config.LoadVariableAssertionsFile(eng.Library, eng.Registry, scopesByName, p); err != nil {
			shutdown()
			return nil, fmt.Errorf("formulaeng: %w", err)
		}
	}

	s := &session{
		eng:       eng,
		scopes:    scopesByName,
		instances: map[string]*formula.ScopeInst{"global": eng.GlobalInstance()},
		attached:  make(map[string]formula.Modifier),
		shutdown:  shutdown,
	}
	if err := s.replay(); err != nil {
		shutdown()
		return nil, err
	}
	return s, nil
}

func (s *session) replay() error {
	f, err := os.Open(flagOpsLog)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("formulaeng: reading ops log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var o op
		if err := json.Unmarshal(line, &o); err != nil {
			return fmt.Errorf("formulaeng: malformed ops log entry: %w", err)
		}
		if err := s.apply(o); err != nil {
			return fmt.Errorf("formulaeng: replaying ops log: %w", err)
		}
	}
	return scanner.Err()
}

func (s *session) append(o op) error {
	f, err := os.OpenFile(flagOpsLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("formulaeng: opening ops log: %w", err)
	}
	defer f.Close()
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

func (s *session) resolveInstance(name string) (*formula.ScopeInst, error) {
	if name == "" {
		name = "global"
	}
	si, ok := s.instances[name]
	if !ok {
		return nil, fmt.Errorf("unknown scope instance %q (opened instances must be named via 'open' before use)", name)
	}
	return si, nil
}

func writeResult(cmd *cobra.Command, id formula.VID, value any) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", id, value)
}
