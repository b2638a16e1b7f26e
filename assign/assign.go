// Package assign holds VariableAssignments, the structure that backs
// unification during recursive rule matching. It replaces the teacher's
// union-find (unionfind.UnionFind), which gives near-O(1) find but no
// way to snapshot and roll back cheaply: matching one antecedent at a
// time needs to try many candidate facts and undo on failure, which
// union-find's hash-map-of-parents cannot do in less than O(n) per
// restore. An append-only slice with a length-based token does it in
// O(1) snapshot and O(k) restore, where k is the number of bindings made
// since the snapshot.
package assign

import (
	"fmt"
	"strings"

	"github.com/sirkibsirkib/seaso/ast"
	"github.com/sirkibsirkib/seaso/knowledge"
)

type binding struct {
	variable ast.VariableId
	atom     knowledge.Atom
}

// VariableAssignments is an append-only record of variable bindings
// made while matching a rule's antecedents against known facts. It is
// deliberately not a map: StateToken and RestoreState give matching
// O(1) snapshot and O(k) backtracking, which a map-based structure
// would need to simulate with a parallel undo log anyway.
type VariableAssignments struct {
	bindings []binding
	index    map[ast.VariableId]int // variable -> position in bindings, for O(1) lookup
}

// New returns an empty VariableAssignments.
func New() *VariableAssignments {
	return &VariableAssignments{index: map[ast.VariableId]int{}}
}

// StateToken identifies a point in a VariableAssignments' history.
type StateToken int

// GetStateToken returns a token for the current state, to later
// RestoreState to.
func (va *VariableAssignments) GetStateToken() StateToken {
	return StateToken(len(va.bindings))
}

// RestoreState truncates the assignment back to the given token,
// undoing every binding made since. tok must have come from an earlier
// GetStateToken call on the same VariableAssignments.
func (va *VariableAssignments) RestoreState(tok StateToken) {
	for i := len(va.bindings) - 1; i >= int(tok); i-- {
		delete(va.index, va.bindings[i].variable)
	}
	va.bindings = va.bindings[:tok]
}

// Lookup returns the atom bound to v, if any.
func (va *VariableAssignments) Lookup(v ast.VariableId) (knowledge.Atom, bool) {
	i, ok := va.index[v]
	if !ok {
		return knowledge.Atom{}, false
	}
	return va.bindings[i].atom, true
}

// Insert records a new binding for v. It is an error to rebind a
// variable to a different atom than it already has; rebinding to an
// Equals atom is a harmless no-op.
func (va *VariableAssignments) Insert(v ast.VariableId, a knowledge.Atom) error {
	if existing, ok := va.Lookup(v); ok {
		if existing.Equals(a) {
			return nil
		}
		return fmt.Errorf("assign: variable %s already bound to %v, cannot rebind to %v", v, existing, a)
	}
	va.index[v] = len(va.bindings)
	va.bindings = append(va.bindings, binding{variable: v, atom: a})
	return nil
}

func (va *VariableAssignments) String() string {
	var sb strings.Builder
	sb.WriteRune('{')
	for i, b := range va.bindings {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(b.variable))
		sb.WriteString("->")
		sb.WriteString(b.atom.String())
	}
	sb.WriteRune('}')
	return sb.String()
}

// Resolve substitutes every bound variable occurring in a with its
// assigned atom. It returns an error if some variable in a is unbound.
func Resolve(a ast.RuleAtom, va *VariableAssignments) (knowledge.Atom, error) {
	switch t := a.(type) {
	case ast.VarAtom:
		bound, ok := va.Lookup(t.Var)
		if !ok {
			return knowledge.Atom{}, fmt.Errorf("assign: variable %s is unbound", t.Var)
		}
		return bound, nil
	case ast.ConstAtom:
		return knowledge.FromConstant(t.Const), nil
	case ast.ConstructAtom:
		args := make([]knowledge.Atom, len(t.Args))
		for i, arg := range t.Args {
			ga, err := Resolve(arg, va)
			if err != nil {
				return knowledge.Atom{}, err
			}
			args[i] = ga
		}
		return knowledge.FromConstruct(t.Domain, args), nil
	default:
		return knowledge.Atom{}, fmt.Errorf("assign: unsupported rule atom %T", a)
	}
}

// UniquelyAssignVariables attempts to unify ruleAtom (which may contain
// unbound variables, already-bound variables and constructor
// applications) against the ground fact, recording any newly-bound
// variables into va. It returns false if unification fails; va may then
// still hold bindings made for arguments matched before the mismatch,
// so the caller is expected to snapshot before calling and restore on
// failure (or on backtracking after trying this match).
func UniquelyAssignVariables(ruleAtom ast.RuleAtom, fact knowledge.Atom, va *VariableAssignments) (bool, error) {
	switch t := ruleAtom.(type) {
	case ast.VarAtom:
		if bound, ok := va.Lookup(t.Var); ok {
			return bound.Equals(fact), nil
		}
		if t.Ascription != nil && *t.Ascription != fact.Domain {
			return false, nil
		}
		if err := va.Insert(t.Var, fact); err != nil {
			return false, err
		}
		return true, nil
	case ast.ConstAtom:
		return knowledge.FromConstant(t.Const).Equals(fact), nil
	case ast.ConstructAtom:
		if t.Domain != fact.Domain || len(t.Args) != len(fact.Args) {
			return false, nil
		}
		for i, arg := range t.Args {
			ok, err := UniquelyAssignVariables(arg, fact.Args[i], va)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("assign: unsupported rule atom %T", ruleAtom)
	}
}
