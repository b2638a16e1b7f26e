package interpreter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirkibsirkib/seaso/ast"
)

func writeProgramFile(t *testing.T, p *ast.Program) string {
	t.Helper()
	data, err := ast.EncodeProgram(p)
	if err != nil {
		t.Fatalf("EncodeProgram: %v", err)
	}
	path := filepath.Join(t.TempDir(), "program.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func reachabilityProgram() *ast.Program {
	p := ast.NewProgram()
	p.AddAnonStatement(ast.Defn{Domain: "edge", Params: []ast.DomainId{"int", "int"}})
	p.AddAnonStatement(ast.Defn{Domain: "path", Params: []ast.DomainId{"int", "int"}})
	p.AddAnonStatement(ast.RuleStmt{Rule: ast.Rule{
		Consequents: []ast.RuleAtom{ast.ConstructAtom{Domain: "path", Args: []ast.RuleAtom{
			ast.VarAtom{Var: "X"}, ast.VarAtom{Var: "Y"},
		}}},
		Antecedents: []ast.RuleLiteral{
			{Sign: ast.Pos, Atom: ast.ConstructAtom{Domain: "edge", Args: []ast.RuleAtom{
				ast.VarAtom{Var: "X"}, ast.VarAtom{Var: "Y"},
			}}},
		},
	}})
	p.AddAnonStatement(ast.Emit{Domain: "path"})
	return p
}

func TestLoadRunsPipelineAndReportsCounts(t *testing.T) {
	path := writeProgramFile(t, reachabilityProgram())
	var buf bytes.Buffer
	i := New(&buf, false)
	if err := i.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(buf.String(), "truths:") {
		t.Errorf("expected a truths/unknowns/emissions summary, got %q", buf.String())
	}
}

func TestDefineAddsFactAndRerunsPipeline(t *testing.T) {
	path := writeProgramFile(t, reachabilityProgram())
	var buf bytes.Buffer
	i := New(&buf, false)
	if err := i.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	buf.Reset()

	edgeAtom := ast.ConstructAtom{Domain: "edge", Args: []ast.RuleAtom{
		ast.ConstAtom{Const: ast.Int(1)}, ast.ConstAtom{Const: ast.Int(2)},
	}}
	data, err := ast.EncodeRuleAtom(edgeAtom)
	if err != nil {
		t.Fatalf("EncodeRuleAtom: %v", err)
	}
	if err := i.Define(string(data)); err != nil {
		t.Fatalf("Define: %v", err)
	}

	buf.Reset()
	if err := i.Query("path"); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(buf.String(), "path(1, 2)") {
		t.Errorf("expected path(1, 2) among query results, got %q", buf.String())
	}
}

func TestDefineRejectsAtomWithVariable(t *testing.T) {
	path := writeProgramFile(t, reachabilityProgram())
	var buf bytes.Buffer
	i := New(&buf, false)
	if err := i.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	data, err := ast.EncodeRuleAtom(ast.VarAtom{Var: "X"})
	if err != nil {
		t.Fatalf("EncodeRuleAtom: %v", err)
	}
	if err := i.Define(string(data)); err == nil {
		t.Errorf("expected an error defining a non-ground atom")
	}
}

func TestPopDiscardsOneOffFacts(t *testing.T) {
	path := writeProgramFile(t, reachabilityProgram())
	var buf bytes.Buffer
	i := New(&buf, false)
	if err := i.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	edgeAtom := ast.ConstructAtom{Domain: "edge", Args: []ast.RuleAtom{
		ast.ConstAtom{Const: ast.Int(1)}, ast.ConstAtom{Const: ast.Int(2)},
	}}
	data, _ := ast.EncodeRuleAtom(edgeAtom)
	if err := i.Define(string(data)); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := i.Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	buf.Reset()
	if err := i.Query("path"); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(buf.String(), "no entries") {
		t.Errorf("expected no path entries after popping the one-off edge, got %q", buf.String())
	}
}
