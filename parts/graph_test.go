package parts

import (
	"testing"

	"github.com/sirkibsirkib/seaso/analysis"
	"github.com/sirkibsirkib/seaso/ast"
)

func TestBuildGraphTransitiveClosure(t *testing.T) {
	p := ast.NewProgram()
	a := p.Part("a")
	a.AddUse("b")
	b := p.Part("b")
	b.AddUse("c")
	p.Part("c")

	g, err := BuildGraph(p)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if !g.Reaches("a", "c") {
		t.Errorf("expected a to transitively reach c via b")
	}
	if g.Reaches("c", "a") {
		t.Errorf("c must not reach a: uses edges are directed")
	}
}

func TestBuildGraphReportsDependedUndefined(t *testing.T) {
	p := ast.NewProgram()
	a := p.Part("a")
	a.AddUse("missing")
	if _, err := BuildGraph(p); err == nil {
		t.Errorf("expected an error for a use of an undefined part")
	}
}

func TestDetectSealBreaksPartToPart(t *testing.T) {
	sealerInA := analysis.Locus{PartName: "a"}
	modifierInB := analysis.Locus{PartName: "b"}
	ep := &analysis.ExecutableProgram{
		Sealers:   map[ast.DomainId][]analysis.Locus{"d": {sealerInA}},
		Modifiers: map[ast.DomainId][]analysis.Locus{"d": {modifierInB}},
	}

	p := ast.NewProgram()
	p.Part("a")
	p.Part("b")
	g, err := BuildGraph(p)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	breaks := DetectSealBreaks(ep, g)
	if len(breaks) != 1 {
		t.Fatalf("len(breaks) = %d, want 1 (no usage path between a and b)", len(breaks))
	}

	p2 := ast.NewProgram()
	pa := p2.Part("a")
	pa.AddUse("b")
	p2.Part("b")
	g2, err := BuildGraph(p2)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if breaks := DetectSealBreaks(ep, g2); len(breaks) != 0 {
		t.Errorf("expected no break once sealer's part uses the modifier's part, got %v", breaks)
	}
}

func TestDetectSealBreaksAnonOrdering(t *testing.T) {
	ep := &analysis.ExecutableProgram{
		Sealers:   map[ast.DomainId][]analysis.Locus{"d": {{IsAnon: true, AnonIndex: 2}}},
		Modifiers: map[ast.DomainId][]analysis.Locus{"d": {{IsAnon: true, AnonIndex: 5}}},
	}
	g, _ := BuildGraph(ast.NewProgram())
	breaks := DetectSealBreaks(ep, g)
	if len(breaks) != 1 {
		t.Fatalf("expected a break: modification at index 5 comes after seal at index 2")
	}

	epReversed := &analysis.ExecutableProgram{
		Sealers:   map[ast.DomainId][]analysis.Locus{"d": {{IsAnon: true, AnonIndex: 5}}},
		Modifiers: map[ast.DomainId][]analysis.Locus{"d": {{IsAnon: true, AnonIndex: 2}}},
	}
	if breaks := DetectSealBreaks(epReversed, g); len(breaks) != 0 {
		t.Errorf("expected no break: modification at index 2 precedes seal at index 5, got %v", breaks)
	}
}

func TestDetectSealBreaksMixedLociAlwaysBreaks(t *testing.T) {
	ep := &analysis.ExecutableProgram{
		Sealers:   map[ast.DomainId][]analysis.Locus{"d": {{PartName: "a"}}},
		Modifiers: map[ast.DomainId][]analysis.Locus{"d": {{IsAnon: true, AnonIndex: 0}}},
	}
	p := ast.NewProgram()
	p.Part("a")
	g, _ := BuildGraph(p)
	if breaks := DetectSealBreaks(ep, g); len(breaks) != 1 {
		t.Errorf("expected a mixed-locus break, got %v", breaks)
	}
}
