package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solverlab/formula/internal/scope"
)

// ScopeTreeFile is the on-disk shape of a legal-scope-tree configuration
// fragment (spec.md §3: "LS: created at library configuration, immortal").
// YAML's nesting suits a parent/child hierarchy better than TOML's flat
// tables, mirroring the teacher's choice of YAML for its own nested
// config.yaml (internal/config/yaml_config.go).
type ScopeTreeFile struct {
	Scopes []ScopeDecl `yaml:"scopes"`
}

// ScopeDecl declares one non-global legal scope. Parent defaults to
// "global" (the zero value) when omitted.
type ScopeDecl struct {
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"`
}

// LoadScopeTree parses a scope-tree YAML document and declares every scope
// it names against mgr, in an order that tolerates parents appearing after
// their children in the file (a scope is declared lazily, the first time
// it's needed as either a declaration target or someone else's parent).
func LoadScopeTree(mgr *scope.Manager, data []byte) (map[string]*scope.Legal, error) {
	var file ScopeTreeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadScopeTree, err)
	}

	byName := map[string]*scope.Legal{"global": mgr.Global()}
	declared := make(map[string]ScopeDecl, len(file.Scopes))
	for _, d := range file.Scopes {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: scope with empty name", ErrBadScopeTree)
		}
		if d.Name == "global" {
			return nil, fmt.Errorf("%w: %q redeclares the implicit global scope", ErrBadScopeTree, d.Name)
		}
		declared[d.Name] = d
	}

	var resolve func(name string, seen map[string]bool) (*scope.Legal, error)
	resolve = func(name string, seen map[string]bool) (*scope.Legal, error) {
		if ls, ok := byName[name]; ok {
			return ls, nil
		}
		d, ok := declared[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScope, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: cycle in parent chain at %q", ErrBadScopeTree, name)
		}
		seen[name] = true

		parentName := d.Parent
		if parentName == "" {
			parentName = "global"
		}
		parent, err := resolve(parentName, seen)
		if err != nil {
			return nil, err
		}
		ls, err := mgr.DeclareChild(parent, d.Name)
		if err != nil {
			return nil, err
		}
		byName[name] = ls
		return ls, nil
	}

	for name := range declared {
		if _, err := resolve(name, make(map[string]bool)); err != nil {
			return nil, err
		}
	}
	return byName, nil
}

// LoadScopeTreeFile reads path and calls LoadScopeTree on its contents.
func LoadScopeTreeFile(mgr *scope.Manager, path string) (map[string]*scope.Legal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading scope tree %s: %w", path, err)
	}
	return LoadScopeTree(mgr, data)
}
