// Package scope implements the static scope tree (C2): legal scope
// declarations and the runtime scope instances opened against them.
package scope

import (
	"fmt"

	"github.com/google/uuid"
)

// Legal is a named node in the static scope tree. The global scope is the
// unique root, created by NewManager, and has no parent.
type Legal struct {
	name   string
	parent *Legal
}

// Name returns the legal scope's declared name.
func (l *Legal) Name() string { return l.name }

// Parent returns the legal scope's parent, or nil for the global scope.
func (l *Legal) Parent() *Legal { return l.parent }

// Path returns the root-to-leaf chain of legal scopes ending at l.
func (l *Legal) Path() []*Legal {
	var path []*Legal
	for cur := l; cur != nil; cur = cur.parent {
		path = append([]*Legal{cur}, path...)
	}
	return path
}

// IsAncestorOf reports whether l is a strict ancestor of other.
func (l *Legal) IsAncestorOf(other *Legal) bool {
	for cur := other.parent; cur != nil; cur = cur.parent {
		if cur == l {
			return true
		}
	}
	return false
}

// IsRelatedTo reports whether l and other lie on the same root-to-leaf path,
// i.e. one is an ancestor of the other (in either direction) or they are the
// same scope. Used by the variable library to reject shadowing.
func (l *Legal) IsRelatedTo(other *Legal) bool {
	return l == other || l.IsAncestorOf(other) || other.IsAncestorOf(l)
}

// Instance is a runtime occurrence of a Legal scope, optionally owned by an
// external entity and optionally nested under a parent Instance.
type Instance struct {
	id         uuid.UUID
	legal      *Legal
	parent     *Instance
	owner      any
}

// ID returns a process-unique identifier for this instance, used when no
// caller-supplied owner exists to distinguish sibling instances of the same
// legal scope (e.g. two opened Equipment instances with no owner object).
func (si *Instance) ID() uuid.UUID { return si.id }

// Legal returns the legal scope this instance was opened against.
func (si *Instance) Legal() *Legal { return si.legal }

// Parent returns the parent scope instance, or nil for the global instance.
func (si *Instance) Parent() *Instance { return si.parent }

// Owner returns the entity this instance was opened for, if any.
func (si *Instance) Owner() any { return si.owner }

// Manager creates legal scopes and scope instances and enforces the
// parent-consistency invariant: SI.legal_scope.parent == SI.parent.legal_scope.
type Manager struct {
	global       *Legal
	globalInst   *Instance
	legalByPath  map[string]*Legal // "parent.name" keyed, for diagnostics/tests
}

// NewManager creates a scope manager with its single global legal scope and
// global instance already populated, matching the spec.md §4.2 invariant
// that the global scope has no parent and exactly one instance.
func NewManager() *Manager {
	global := &Legal{name: "global"}
	m := &Manager{
		global:      global,
		legalByPath: map[string]*Legal{"": global},
	}
	m.globalInst = &Instance{id: uuid.New(), legal: global}
	return m
}

// Global returns the legal global scope.
func (m *Manager) Global() *Legal { return m.global }

// GlobalInstance returns the single global scope instance.
func (m *Manager) GlobalInstance() *Instance { return m.globalInst }

// DeclareChild declares a new legal scope named name as a child of parent.
// Re-declaring the same (parent, name) pair returns the existing scope.
func (m *Manager) DeclareChild(parent *Legal, name string) (*Legal, error) {
	if parent == nil {
		return nil, fmt.Errorf("scope: parent legal scope must not be nil")
	}
	if name == "" {
		return nil, fmt.Errorf("scope: legal scope name must not be empty")
	}
	key := scopeKey(parent, name)
	if existing, ok := m.legalByPath[key]; ok {
		return existing, nil
	}
	ls := &Legal{name: name, parent: parent}
	m.legalByPath[key] = ls
	return ls, nil
}

func scopeKey(parent *Legal, name string) string {
	if parent == nil {
		return name
	}
	return fmt.Sprintf("%p.%s", parent, name)
}

// Open creates a new scope instance of legal scope ls, nested under
// parentInst, for the given owner; every call yields a distinct instance.
// Opening the global legal scope returns the single global instance. For
// any other scope it enforces ls.Parent() == parentInst.Legal().
func (m *Manager) Open(ls *Legal, parentInst *Instance, owner any) (*Instance, error) {
	if ls == m.global {
		return m.globalInst, nil
	}
	if parentInst == nil {
		return nil, fmt.Errorf("scope: non-global legal scope %q requires a parent instance", ls.name)
	}
	if ls.parent != parentInst.legal {
		return nil, fmt.Errorf("scope: legal scope %q's parent %v does not match instance parent's legal scope %v",
			ls.name, ls.parent, parentInst.legal)
	}
	si := &Instance{
		id:         uuid.New(),
		legal:      ls,
		parent:     parentInst,
		owner:      owner,
	}
	return si, nil
}
