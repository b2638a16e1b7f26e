package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ascr(d DomainId) *DomainId { return &d }

func TestConstantEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b Constant
		want bool
	}{
		{"same int", Int(7), Int(7), true},
		{"different int", Int(7), Int(8), false},
		{"same str", Str("x"), Str("x"), true},
		{"different str", Str("x"), Str("y"), false},
		{"different kind", Int(0), Str(""), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.a.Equals(test.b); got != test.want {
				t.Errorf("Equals() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestConstantDomain(t *testing.T) {
	if Int(1).Domain() != IntDomain {
		t.Errorf("Int(1).Domain() = %v, want IntDomain", Int(1).Domain())
	}
	if Str("a").Domain() != StrDomain {
		t.Errorf("Str(\"a\").Domain() = %v, want StrDomain", Str("a").Domain())
	}
}

func TestRuleAtomEquals(t *testing.T) {
	a := ConstructAtom{Domain: "pair", Args: []RuleAtom{
		VarAtom{Var: "X"},
		ConstAtom{Const: Int(3)},
	}}
	b := ConstructAtom{Domain: "pair", Args: []RuleAtom{
		VarAtom{Var: "X"},
		ConstAtom{Const: Int(3)},
	}}
	c := ConstructAtom{Domain: "pair", Args: []RuleAtom{
		VarAtom{Var: "X"},
		ConstAtom{Const: Int(4)},
	}}
	if !a.Equals(b) {
		t.Errorf("expected a.Equals(b)")
	}
	if a.Equals(c) {
		t.Errorf("expected !a.Equals(c)")
	}

	v1 := VarAtom{Var: "X", Ascription: ascr("foo")}
	v2 := VarAtom{Var: "X", Ascription: ascr("foo")}
	v3 := VarAtom{Var: "X"}
	if !v1.Equals(v2) {
		t.Errorf("expected v1.Equals(v2)")
	}
	if v1.Equals(v3) {
		t.Errorf("expected !v1.Equals(v3), differing ascriptions")
	}
}

func TestRuleAtomString(t *testing.T) {
	tests := []struct {
		name string
		atom RuleAtom
		want string
	}{
		{"var", VarAtom{Var: "X"}, "X"},
		{"ascribed var", VarAtom{Var: "X", Ascription: ascr("foo")}, "X:foo"},
		{"int const", ConstAtom{Const: Int(5)}, "5"},
		{"construct", ConstructAtom{Domain: "pair", Args: []RuleAtom{VarAtom{Var: "X"}, VarAtom{Var: "Y"}}}, "pair(X, Y)"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.atom.String(); got != test.want {
				t.Errorf("String() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestVarsAndConsequentVars(t *testing.T) {
	rule := Rule{
		Consequents: []RuleAtom{
			ConstructAtom{Domain: "edge", Args: []RuleAtom{VarAtom{Var: "X"}, VarAtom{Var: "Y"}}},
		},
		Antecedents: []RuleLiteral{
			{Sign: Pos, Atom: ConstructAtom{Domain: "node", Args: []RuleAtom{VarAtom{Var: "X"}}}},
			{Sign: Neg, Atom: ConstructAtom{Domain: "excluded", Args: []RuleAtom{VarAtom{Var: "Y"}}}},
		},
	}
	got := ConsequentVars(rule)
	want := map[VariableId]bool{"X": true, "Y": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ConsequentVars() diff (-want +got):\n%s", diff)
	}
}

func TestPositiveAntecedentVars(t *testing.T) {
	rule := Rule{
		Consequents: []RuleAtom{ConstructAtom{Domain: "out", Args: []RuleAtom{VarAtom{Var: "X"}, VarAtom{Var: "Y"}, VarAtom{Var: "Z"}}}},
		Antecedents: []RuleLiteral{
			{Sign: Pos, Atom: ConstructAtom{Domain: "node", Args: []RuleAtom{VarAtom{Var: "X"}}}},
			{Sign: Pos, Atom: VarAtom{Var: "Z"}},
			{Sign: Neg, Atom: ConstructAtom{Domain: "node", Args: []RuleAtom{VarAtom{Var: "Y"}}}},
		},
	}
	got := PositiveAntecedentVars(rule)
	want := map[VariableId]bool{"X": true, "Z": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PositiveAntecedentVars() diff (-want +got):\n%s", diff)
	}
}
