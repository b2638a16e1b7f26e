package ast

import "testing"

func TestDeclEquals(t *testing.T) {
	a := Decl{Ids: []DomainId{"x", "y"}}
	b := Decl{Ids: []DomainId{"x", "y"}}
	c := Decl{Ids: []DomainId{"x", "z"}}
	if !a.Equals(b) {
		t.Errorf("expected a.Equals(b)")
	}
	if a.Equals(c) {
		t.Errorf("expected !a.Equals(c)")
	}
}

func TestPartAddStatementDedup(t *testing.T) {
	p := NewPart("p1")
	p.AddStatement(Seal{Domain: "foo"})
	p.AddStatement(Seal{Domain: "foo"})
	if len(p.Statements) != 1 {
		t.Errorf("len(p.Statements) = %d, want 1 after duplicate insert", len(p.Statements))
	}
	p.AddStatement(Seal{Domain: "bar"})
	if len(p.Statements) != 2 {
		t.Errorf("len(p.Statements) = %d, want 2", len(p.Statements))
	}
}

func TestProgramPartOrderIsDeterministic(t *testing.T) {
	p := NewProgram()
	p.Part("c")
	p.Part("a")
	p.Part("b")
	want := []string{"c", "a", "b"}
	for i, name := range want {
		if p.PartOrder[i] != name {
			t.Errorf("PartOrder[%d] = %q, want %q", i, p.PartOrder[i], name)
		}
	}
	// Re-fetching an existing part must not duplicate its order entry.
	p.Part("a")
	if len(p.PartOrder) != 3 {
		t.Errorf("len(PartOrder) = %d, want 3 after re-fetch", len(p.PartOrder))
	}
}

func TestAllStatementsOrder(t *testing.T) {
	p := NewProgram()
	p.AddAnonStatement(Seal{Domain: "anon1"})
	part := p.Part("p")
	part.AddStatement(Seal{Domain: "in-part"})
	all := p.AllStatements()
	if len(all) != 2 {
		t.Fatalf("len(AllStatements()) = %d, want 2", len(all))
	}
	if all[0].PartName != "" || !all[0].Statement.Equals(Seal{Domain: "anon1"}) {
		t.Errorf("all[0] = %+v, want anon Seal(anon1)", all[0])
	}
	if all[1].PartName != "p" || !all[1].Statement.Equals(Seal{Domain: "in-part"}) {
		t.Errorf("all[1] = %+v, want part p Seal(in-part)", all[1])
	}
}
