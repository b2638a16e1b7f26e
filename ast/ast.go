// Package ast contains the abstract syntax tree representation of Seaso
// programs: domains, constants, rule atoms, rules and the part system
// that groups them.
package ast

import (
	"fmt"
	"strings"
)

// DomainId is the interned name of a type, constructor and relation all
// at once. The primitive domains "int" and "str" are never redefined.
type DomainId string

const (
	// IntDomain is the primitive domain of integer constants.
	IntDomain DomainId = "int"
	// StrDomain is the primitive domain of string constants.
	StrDomain DomainId = "str"
)

// IsPrimitive returns true for the two built-in domains.
func (d DomainId) IsPrimitive() bool {
	return d == IntDomain || d == StrDomain
}

// VariableId is a rule-scoped variable name. After de-anonymization
// (see ReplaceAnonymousVariables) every variable occurring in a rule has
// a unique, non-"_" VariableId.
type VariableId string

// AnonymousVariable is the wildcard spelling recognized by the normalizer.
const AnonymousVariable VariableId = "_"

// ConstantKind distinguishes the two constant variants.
type ConstantKind int

const (
	// IntConstant marks a Constant carrying an int64.
	IntConstant ConstantKind = iota
	// StrConstant marks a Constant carrying a string.
	StrConstant
)

// Constant is an opaque integer or string literal. Constants never carry
// arithmetic: the only operation defined on them is equality.
type Constant struct {
	Kind ConstantKind
	I    int64
	S    string
}

// Int constructs an integer constant.
func Int(i int64) Constant {
	return Constant{Kind: IntConstant, I: i}
}

// Str constructs a string constant.
func Str(s string) Constant {
	return Constant{Kind: StrConstant, S: s}
}

// Domain returns the primitive domain of this constant.
func (c Constant) Domain() DomainId {
	if c.Kind == IntConstant {
		return IntDomain
	}
	return StrDomain
}

// Equals reports structural (value) equality between two constants.
func (c Constant) Equals(o Constant) bool {
	if c.Kind != o.Kind {
		return false
	}
	if c.Kind == IntConstant {
		return c.I == o.I
	}
	return c.S == o.S
}

// String renders the constant the way it would appear in source.
func (c Constant) String() string {
	if c.Kind == IntConstant {
		return fmt.Sprintf("%d", c.I)
	}
	return fmt.Sprintf("%q", c.S)
}

// RuleAtom is the building block of rule consequents and antecedents:
// a variable (with optional domain ascription), a constant, or a
// constructor application to further rule atoms.
//
// RuleAtom is a closed tagged union, not meant to be implemented outside
// this package; it has no exported variant beyond the three below.
type RuleAtom interface {
	isRuleAtom()
	String() string
	Equals(RuleAtom) bool
}

// VarAtom is an occurrence of a variable, with an optional domain
// ascription written by the user (e.g. "X : foo").
type VarAtom struct {
	Var        VariableId
	Ascription *DomainId
}

func (VarAtom) isRuleAtom() {}

// Equals reports structural equality, ascriptions included.
func (v VarAtom) Equals(o RuleAtom) bool {
	ov, ok := o.(VarAtom)
	if !ok || v.Var != ov.Var {
		return false
	}
	switch {
	case v.Ascription == nil && ov.Ascription == nil:
		return true
	case v.Ascription == nil || ov.Ascription == nil:
		return false
	default:
		return *v.Ascription == *ov.Ascription
	}
}

func (v VarAtom) String() string {
	if v.Ascription == nil {
		return string(v.Var)
	}
	return fmt.Sprintf("%s:%s", v.Var, *v.Ascription)
}

// ConstAtom wraps a ground Constant as a RuleAtom.
type ConstAtom struct {
	Const Constant
}

func (ConstAtom) isRuleAtom() {}

func (c ConstAtom) Equals(o RuleAtom) bool {
	oc, ok := o.(ConstAtom)
	return ok && c.Const.Equals(oc.Const)
}

func (c ConstAtom) String() string {
	return c.Const.String()
}

// ConstructAtom is a constructor application: a domain id applied to a
// tuple of further rule atoms. Its arity is len(Args).
type ConstructAtom struct {
	Domain DomainId
	Args   []RuleAtom
}

func (ConstructAtom) isRuleAtom() {}

func (c ConstructAtom) Equals(o RuleAtom) bool {
	oc, ok := o.(ConstructAtom)
	if !ok || c.Domain != oc.Domain || len(c.Args) != len(oc.Args) {
		return false
	}
	for i, a := range c.Args {
		if !a.Equals(oc.Args[i]) {
			return false
		}
	}
	return true
}

func (c ConstructAtom) String() string {
	var sb strings.Builder
	sb.WriteString(string(c.Domain))
	sb.WriteRune('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteRune(')')
	return sb.String()
}

// Sign marks a rule literal as positive or negated.
type Sign int

const (
	// Pos marks an ordinary (non-negated) literal.
	Pos Sign = iota
	// Neg marks a negated literal.
	Neg
)

func (s Sign) String() string {
	if s == Neg {
		return "!"
	}
	return ""
}

// RuleLiteral is a signed rule atom, valid only in a rule's antecedents.
type RuleLiteral struct {
	Sign Sign
	Atom RuleAtom
}

func (l RuleLiteral) String() string {
	return l.Sign.String() + l.Atom.String()
}

// Equals reports structural equality between two rule literals.
func (l RuleLiteral) Equals(o RuleLiteral) bool {
	return l.Sign == o.Sign && l.Atom.Equals(o.Atom)
}

// Rule is a Datalog-like clause: zero or more consequents, derived when
// every antecedent literal holds.
type Rule struct {
	Consequents []RuleAtom
	Antecedents []RuleLiteral
}

func (r Rule) String() string {
	var sb strings.Builder
	for i, c := range r.Consequents {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.String())
	}
	if len(r.Antecedents) == 0 {
		sb.WriteRune('.')
		return sb.String()
	}
	sb.WriteString(" :- ")
	for i, a := range r.Antecedents {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteRune('.')
	return sb.String()
}

// Vars collects the distinct variables occurring anywhere in the rule atom.
func Vars(a RuleAtom, into map[VariableId]bool) {
	switch t := a.(type) {
	case VarAtom:
		into[t.Var] = true
	case ConstAtom:
	case ConstructAtom:
		for _, arg := range t.Args {
			Vars(arg, into)
		}
	}
}

// ConsequentVars returns the set of variables occurring in a rule's
// consequents.
func ConsequentVars(r Rule) map[VariableId]bool {
	vs := map[VariableId]bool{}
	for _, c := range r.Consequents {
		Vars(c, vs)
	}
	return vs
}

// PositiveAntecedentVars returns the set of variables occurring anywhere
// in some positive antecedent literal's atom — a bare Var(vid)
// antecedent, a Construct argument, or nested inside one. A variable in
// this set is enumerable (see analysis.InferTypes).
func PositiveAntecedentVars(r Rule) map[VariableId]bool {
	vs := map[VariableId]bool{}
	for _, lit := range r.Antecedents {
		if lit.Sign != Pos {
			continue
		}
		Vars(lit.Atom, vs)
	}
	return vs
}
