package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/vid"
)

// VariableAssertionExt mirrors the teacher's .formula.toml convention
// (internal/formula/parser.go's FormulaExtTOML) for this engine's own
// variable-assertion fragments.
const VariableAssertionExt = ".vars.toml"

// VariableAssertionFile is the on-disk shape of a variable-assertion
// fragment: a flat TOML table of [[variable]] entries, each declaring one
// (LegalScope, name) -> Format triple (spec.md §4.3's assert operation).
type VariableAssertionFile struct {
	Variable []VariableDecl `toml:"variable"`
}

// VariableDecl is one asserted variable. Scope names a legal scope declared
// in the scope-tree file ("global" always resolves to the implicit root).
// Format is either a primitive name (integer, real, boolean, string) or an
// array<...> combinator expression, arbitrarily nested (array<array<integer>>).
type VariableDecl struct {
	Scope  string `toml:"scope"`
	Name   string `toml:"name"`
	Format string `toml:"format"`
}

// ResolveFormat parses a format expression against registry: either a
// registered primitive name, or an array<elem> combinator wrapping any
// resolvable inner expression, arbitrarily nested. This is the bridge
// between the flat text the TOML fragment carries and the format.ArrayOf
// combinator spec.md §4.1 describes ("Composite formats (arrays) are
// constructed by combinators").
func ResolveFormat(registry *format.Registry, expr string) (format.Format, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "array<") && strings.HasSuffix(expr, ">") {
		inner := expr[len("array<") : len(expr)-1]
		elem, err := ResolveFormat(registry, inner)
		if err != nil {
			return nil, err
		}
		return format.ArrayOf(elem), nil
	}
	f, ok := registry.Lookup(format.Kind(expr))
	if !ok {
		return nil, fmt.Errorf("%q: %w", expr, ErrUnknownFormat)
	}
	return f, nil
}

// LoadVariableAssertions parses a variable-assertion TOML document and
// asserts every declaration into lib, resolving each Scope name against
// scopesByName (as produced by LoadScopeTree).
func LoadVariableAssertions(lib *vid.Library, registry *format.Registry, scopesByName map[string]*scope.Legal, data []byte) error {
	var file VariableAssertionFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return fmt.Errorf("config: decoding variable assertions: %w", err)
	}
	for _, decl := range file.Variable {
		scopeName := decl.Scope
		if scopeName == "" {
			scopeName = "global"
		}
		ls, ok := scopesByName[scopeName]
		if !ok {
			return fmt.Errorf("variable %q: %w: %q", decl.Name, ErrUnknownScope, scopeName)
		}
		f, err := ResolveFormat(registry, decl.Format)
		if err != nil {
			return fmt.Errorf("variable %q: %w", decl.Name, err)
		}
		if err := lib.Assert(decl.Name, ls, f); err != nil {
			return fmt.Errorf("variable %q in scope %q: %w", decl.Name, scopeName, err)
		}
	}
	return nil
}

// LoadVariableAssertionsFile reads path and calls LoadVariableAssertions on
// its contents.
func LoadVariableAssertionsFile(lib *vid.Library, registry *format.Registry, scopesByName map[string]*scope.Legal, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading variable assertions %s: %w", path, err)
	}
	return LoadVariableAssertions(lib, registry, scopesByName, data)
}
