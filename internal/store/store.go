// Package store implements the variable store (C4): a typed map from
// variable identifier to current value.
package store

import (
	"fmt"

	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/vid"
)

// ErrNullValue is returned by Put when value is nil.
var ErrNullValue = fmt.Errorf("store: null value rejected")

// Store is a typed key-value map from VID to current value. Writes are
// type-checked at put-time against the VID's format.
type Store struct {
	values map[vid.VID]any
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[vid.VID]any)}
}

// Put writes value for id, rejecting a nil value or a value whose type is
// not a subformat of id.Format. It returns the prior value, if any.
func (s *Store) Put(id vid.VID, value any) (prior any, hadPrior bool, err error) {
	if value == nil {
		return nil, false, ErrNullValue
	}
	if id.Format == nil {
		return nil, false, fmt.Errorf("store: put %s: nil format", id)
	}
	if !id.Format.Accepts(value) {
		native, ok := format.NaturalFormat(value)
		if !ok || !native.IsSubformatOf(id.Format) {
			return nil, false, fmt.Errorf("store: put %s: value %v is not a %s", id, value, id.Format.Name())
		}
	}
	prior, hadPrior = s.values[id]
	s.values[id] = value
	return prior, hadPrior, nil
}

// Get returns the current value for id, if present.
func (s *Store) Get(id vid.VID) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Contains reports whether id has a stored value.
func (s *Store) Contains(id vid.VID) bool {
	_, ok := s.values[id]
	return ok
}

// Delete removes id's value, if any.
func (s *Store) Delete(id vid.VID) {
	delete(s.values, id)
}
