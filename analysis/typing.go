// Package analysis contains the per-rule typing pass and the two-pass
// static checker that together turn a normalized ast.Program into a
// checked ExecutableProgram.
package analysis

import (
	"fmt"

	"github.com/sirkibsirkib/seaso/ast"
)

// DomainDefinitions maps a defined domain to its constructor parameter
// domains, in declared order.
type DomainDefinitions map[ast.DomainId][]ast.DomainId

// VariableTypes maps every variable occurring in a rule to its unique
// inferred domain.
type VariableTypes map[ast.VariableId]ast.DomainId

// WrongArity reports a Construct whose argument count does not match
// its domain's declared arity.
type WrongArity struct {
	Domain   ast.DomainId
	Expected int
	Got      int
}

func (e *WrongArity) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Domain, e.Expected, e.Got)
}

// MistypedArgument reports a Construct argument whose apparent domain
// conflicts with the parameter domain at that position.
type MistypedArgument struct {
	Constructor ast.DomainId
	Position    int
	Expected    ast.DomainId
	Got         ast.DomainId
}

func (e *MistypedArgument) Error() string {
	return fmt.Sprintf("%s argument %d: expected %s, got %s", e.Constructor, e.Position, e.Expected, e.Got)
}

// OneVariableTwoTypes reports a variable constrained to two different
// domains by distinct positions (or by a conflicting ascription).
type OneVariableTwoTypes struct {
	Var   ast.VariableId
	First ast.DomainId
	Second ast.DomainId
}

func (e *OneVariableTwoTypes) Error() string {
	return fmt.Sprintf("variable %s has conflicting types %s and %s", e.Var, e.First, e.Second)
}

// NoTypes reports a variable that no position constrains.
type NoTypes struct {
	Var ast.VariableId
}

func (e *NoTypes) Error() string {
	return fmt.Sprintf("variable %s has no constraining position", e.Var)
}

// VariableNotEnumerable reports a variable that occurs in no positive
// antecedent (neither as a bare Var antecedent nor anywhere inside one).
type VariableNotEnumerable struct {
	Var ast.VariableId
}

func (e *VariableNotEnumerable) Error() string {
	return fmt.Sprintf("variable %s is not enumerable: it must occur in some positive antecedent", e.Var)
}

// InferTypes computes the total VariableTypes map for a rule, or
// returns one of the typed errors documented above.
func InferTypes(r ast.Rule, dd DomainDefinitions) (VariableTypes, error) {
	vt := VariableTypes{}

	var walk func(a ast.RuleAtom) error
	walk = func(a ast.RuleAtom) error {
		v, ok := a.(ast.VarAtom)
		if ok && v.Ascription != nil {
			if err := addOrRefine(vt, v.Var, *v.Ascription); err != nil {
				return err
			}
		}
		construct, ok := a.(ast.ConstructAtom)
		if !ok {
			return nil
		}
		params, known := dd[construct.Domain]
		if known && len(construct.Args) != len(params) {
			return &WrongArity{Domain: construct.Domain, Expected: len(params), Got: len(construct.Args)}
		}
		for i, arg := range construct.Args {
			var param ast.DomainId
			haveParam := known && i < len(params)
			if haveParam {
				param = params[i]
			}
			switch t := arg.(type) {
			case ast.VarAtom:
				if haveParam {
					if err := addOrRefine(vt, t.Var, param); err != nil {
						return err
					}
				}
			case ast.ConstAtom:
				if haveParam && t.Const.Domain() != param {
					return &MistypedArgument{Constructor: construct.Domain, Position: i, Expected: param, Got: t.Const.Domain()}
				}
			case ast.ConstructAtom:
				if haveParam && t.Domain != param {
					return &MistypedArgument{Constructor: construct.Domain, Position: i, Expected: param, Got: t.Domain}
				}
			}
			if err := walk(arg); err != nil {
				return err
			}
		}
		return nil
	}

	for _, c := range r.Consequents {
		if err := walk(c); err != nil {
			return nil, err
		}
	}
	for _, lit := range r.Antecedents {
		if err := walk(lit.Atom); err != nil {
			return nil, err
		}
	}

	allVars := map[ast.VariableId]bool{}
	for _, c := range r.Consequents {
		ast.Vars(c, allVars)
	}
	for _, lit := range r.Antecedents {
		ast.Vars(lit.Atom, allVars)
	}
	for v := range allVars {
		if _, ok := vt[v]; !ok {
			return nil, &NoTypes{Var: v}
		}
	}

	enumerable := ast.PositiveAntecedentVars(r)
	for v := range allVars {
		if !enumerable[v] {
			return nil, &VariableNotEnumerable{Var: v}
		}
	}

	return vt, nil
}

// addOrRefine either records v's first domain constraint, or checks a
// subsequent constraint against the one already recorded.
func addOrRefine(vt VariableTypes, v ast.VariableId, d ast.DomainId) error {
	existing, ok := vt[v]
	if !ok {
		vt[v] = d
		return nil
	}
	if existing != d {
		return &OneVariableTwoTypes{Var: v, First: existing, Second: d}
	}
	return nil
}
