package analysis

import (
	"errors"
	"testing"

	"github.com/sirkibsirkib/seaso/ast"
)

func TestInferTypesSimple(t *testing.T) {
	dd := DomainDefinitions{"pair": {"int", "int"}}
	rule := ast.Rule{
		Consequents: []ast.RuleAtom{
			ast.ConstructAtom{Domain: "pair", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}, ast.VarAtom{Var: "Y"}}},
		},
		Antecedents: []ast.RuleLiteral{
			{Sign: ast.Pos, Atom: ast.ConstructAtom{Domain: "pair", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}, ast.VarAtom{Var: "Y"}}}},
		},
	}
	vt, err := InferTypes(rule, dd)
	if err != nil {
		t.Fatalf("InferTypes: %v", err)
	}
	if vt["X"] != "int" || vt["Y"] != "int" {
		t.Errorf("vt = %v, want X,Y both int", vt)
	}
}

func TestInferTypesWrongArity(t *testing.T) {
	dd := DomainDefinitions{"pair": {"int", "int"}}
	rule := ast.Rule{
		Consequents: []ast.RuleAtom{ast.ConstructAtom{Domain: "pair", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}}}},
		Antecedents: []ast.RuleLiteral{{Sign: ast.Pos, Atom: ast.ConstructAtom{Domain: "node", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}}}}},
	}
	dd["node"] = []ast.DomainId{"int"}
	_, err := InferTypes(rule, dd)
	var wa *WrongArity
	if !errors.As(err, &wa) {
		t.Fatalf("expected WrongArity, got %v", err)
	}
}

func TestInferTypesMistypedArgument(t *testing.T) {
	dd := DomainDefinitions{"pair": {"int", "int"}, "node": {"str"}}
	rule := ast.Rule{
		Consequents: []ast.RuleAtom{ast.ConstructAtom{Domain: "pair", Args: []ast.RuleAtom{ast.ConstAtom{Const: ast.Str("x")}, ast.VarAtom{Var: "Y"}}}},
		Antecedents: []ast.RuleLiteral{{Sign: ast.Pos, Atom: ast.ConstructAtom{Domain: "node", Args: []ast.RuleAtom{ast.VarAtom{Var: "Y"}}}}},
	}
	_, err := InferTypes(rule, dd)
	var mt *MistypedArgument
	if !errors.As(err, &mt) {
		t.Fatalf("expected MistypedArgument, got %v", err)
	}
}

func TestInferTypesOneVariableTwoTypes(t *testing.T) {
	dd := DomainDefinitions{"pair": {"int", "str"}}
	rule := ast.Rule{
		Consequents: []ast.RuleAtom{ast.ConstructAtom{Domain: "pair", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}, ast.VarAtom{Var: "X"}}}},
		Antecedents: []ast.RuleLiteral{{Sign: ast.Pos, Atom: ast.ConstructAtom{Domain: "pair", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}, ast.VarAtom{Var: "X"}}}}},
	}
	_, err := InferTypes(rule, dd)
	var ov *OneVariableTwoTypes
	if !errors.As(err, &ov) {
		t.Fatalf("expected OneVariableTwoTypes, got %v", err)
	}
}

func TestInferTypesVariableNotEnumerable(t *testing.T) {
	dd := DomainDefinitions{"pair": {"int"}}
	rule := ast.Rule{
		Consequents: []ast.RuleAtom{ast.ConstructAtom{Domain: "pair", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}}}},
	}
	_, err := InferTypes(rule, dd)
	var ne *VariableNotEnumerable
	if !errors.As(err, &ne) {
		t.Fatalf("expected VariableNotEnumerable, got %v", err)
	}
}

func TestInferTypesNoTypes(t *testing.T) {
	dd := DomainDefinitions{}
	rule := ast.Rule{
		Consequents: []ast.RuleAtom{ast.VarAtom{Var: "X"}},
		Antecedents: []ast.RuleLiteral{{Sign: ast.Pos, Atom: ast.VarAtom{Var: "X"}}},
	}
	_, err := InferTypes(rule, dd)
	var nt *NoTypes
	if !errors.As(err, &nt) {
		t.Fatalf("expected NoTypes, got %v", err)
	}
}
