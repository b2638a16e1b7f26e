package engine

import (
	"testing"

	"bitbucket.org/creachadair/stringset"

	"github.com/sirkibsirkib/seaso/analysis"
	"github.com/sirkibsirkib/seaso/ast"
	"github.com/sirkibsirkib/seaso/knowledge"
)

// mutualNegationProgram builds the classic two-rule loop through
// negation: p(X) :- base(X), !q(X). q(X) :- base(X), !p(X). Neither p(1)
// nor q(1) can be resolved to a stable truth value; the alternating
// fixpoint must report both as unknown.
func mutualNegationProgram() *analysis.ExecutableProgram {
	pRule := ast.Rule{
		Consequents: []ast.RuleAtom{ast.ConstructAtom{Domain: "p", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}}}},
		Antecedents: []ast.RuleLiteral{
			{Sign: ast.Pos, Atom: ast.ConstructAtom{Domain: "base", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}}}},
			{Sign: ast.Neg, Atom: ast.ConstructAtom{Domain: "q", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}}}},
		},
	}
	qRule := ast.Rule{
		Consequents: []ast.RuleAtom{ast.ConstructAtom{Domain: "q", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}}}},
		Antecedents: []ast.RuleLiteral{
			{Sign: ast.Pos, Atom: ast.ConstructAtom{Domain: "base", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}}}},
			{Sign: ast.Neg, Atom: ast.ConstructAtom{Domain: "p", Args: []ast.RuleAtom{ast.VarAtom{Var: "X"}}}},
		},
	}
	return &analysis.ExecutableProgram{
		Rules: []analysis.AnnotatedRule{
			{Rule: pRule, VariableTypes: analysis.VariableTypes{"X": "int"}},
			{Rule: qRule, VariableTypes: analysis.VariableTypes{"X": "int"}},
		},
		Emissive: stringset.New("base"),
	}
}

func TestComputeDenotationUnresolvedNegationIsUnknown(t *testing.T) {
	ep := mutualNegationProgram()
	facts := knowledge.New()
	base1 := knowledge.FromConstruct("base", []knowledge.Atom{knowledge.FromConstant(ast.Int(1))})
	facts.Add(base1)

	deno, prevTruths, err := ComputeDenotation(ep, facts, Options{})
	if err != nil {
		t.Fatalf("ComputeDenotation: %v", err)
	}

	if !deno.Truths.Contains(base1) {
		t.Errorf("expected base(1) to be a truth")
	}
	p1 := knowledge.FromConstruct("p", []knowledge.Atom{knowledge.FromConstant(ast.Int(1))})
	q1 := knowledge.FromConstruct("q", []knowledge.Atom{knowledge.FromConstant(ast.Int(1))})
	if deno.Truths.Contains(p1) || deno.Truths.Contains(q1) {
		t.Errorf("neither p(1) nor q(1) should be a settled truth")
	}
	if !deno.Unknowns.Contains(p1) || !deno.Unknowns.Contains(q1) {
		t.Errorf("expected both p(1) and q(1) to be unknown, got %v", deno.Unknowns)
	}
	if !deno.Emissions.Contains(base1) {
		t.Errorf("expected base(1) among emissions")
	}
	if deno.Emissions.Contains(p1) || deno.Emissions.Contains(q1) {
		t.Errorf("p and q are not emissive domains, should not appear in emissions")
	}
	if prevTruths == nil {
		t.Errorf("expected a non-nil prevTruths for provenance re-runs")
	}
}

func TestComputeDenotationPurePositiveProgramHasNoUnknowns(t *testing.T) {
	ep := pathProgram()
	deno, _, err := ComputeDenotation(ep, pathStartingFacts(), Options{})
	if err != nil {
		t.Fatalf("ComputeDenotation: %v", err)
	}
	if deno.Unknowns.Count() != 0 {
		t.Errorf("expected no unknowns for a purely positive program, got %v", deno.Unknowns)
	}
	if len(deno.Truths.Domain("path")) != 3 {
		t.Errorf("expected 3 path facts in truths, got %v", deno.Truths.Domain("path"))
	}
}
