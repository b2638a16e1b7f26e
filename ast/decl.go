package ast

import "fmt"

// Statement is one of the five top-level forms a part (or the anonymous
// part) can contain: Decl, Defn, RuleStmt, Seal, Emit.
//
// Like RuleAtom, Statement is a closed tagged union.
type Statement interface {
	isStatement()
	String() string
	Equals(Statement) bool
}

// Decl declares a chain of domain ids as equivalent (ast.Decl{a,b,c}
// means a = b = c). A Decl with a single id is a no-op for equivalence
// purposes but is still a legal, storable statement.
type Decl struct {
	Ids []DomainId
}

func (Decl) isStatement() {}

func (d Decl) String() string {
	s := "decl"
	for i, id := range d.Ids {
		if i == 0 {
			s += " " + string(id)
			continue
		}
		s += " = " + string(id)
	}
	return s + "."
}

func (d Decl) Equals(o Statement) bool {
	od, ok := o.(Decl)
	if !ok || len(d.Ids) != len(od.Ids) {
		return false
	}
	for i, id := range d.Ids {
		if id != od.Ids[i] {
			return false
		}
	}
	return true
}

// Defn defines a domain's constructor arity and parameter domains.
type Defn struct {
	Domain DomainId
	Params []DomainId
}

func (Defn) isStatement() {}

func (d Defn) String() string {
	s := fmt.Sprintf("defn %s(", d.Domain)
	for i, p := range d.Params {
		if i > 0 {
			s += ", "
		}
		s += string(p)
	}
	return s + ")."
}

func (d Defn) Equals(o Statement) bool {
	od, ok := o.(Defn)
	if !ok || d.Domain != od.Domain || len(d.Params) != len(od.Params) {
		return false
	}
	for i, p := range d.Params {
		if p != od.Params[i] {
			return false
		}
	}
	return true
}

// RuleStmt wraps a Rule as a Statement.
type RuleStmt struct {
	Rule Rule
}

func (RuleStmt) isStatement() {}

func (r RuleStmt) String() string { return r.Rule.String() }

func (r RuleStmt) Equals(o Statement) bool {
	or, ok := o.(RuleStmt)
	if !ok || len(r.Rule.Consequents) != len(or.Rule.Consequents) || len(r.Rule.Antecedents) != len(or.Rule.Antecedents) {
		return false
	}
	for i, c := range r.Rule.Consequents {
		if !c.Equals(or.Rule.Consequents[i]) {
			return false
		}
	}
	for i, a := range r.Rule.Antecedents {
		if !a.Equals(or.Rule.Antecedents[i]) {
			return false
		}
	}
	return true
}

// Seal declares that a domain admits no further modifications from
// outside the sealing part's uses-closure.
type Seal struct {
	Domain DomainId
}

func (Seal) isStatement() {}

func (s Seal) String() string { return fmt.Sprintf("seal %s.", s.Domain) }

func (s Seal) Equals(o Statement) bool {
	os, ok := o.(Seal)
	return ok && s.Domain == os.Domain
}

// Emit declares that a domain's truths belong to the program's
// observable output.
type Emit struct {
	Domain DomainId
}

func (Emit) isStatement() {}

func (e Emit) String() string { return fmt.Sprintf("emit %s.", e.Domain) }

func (e Emit) Equals(o Statement) bool {
	oe, ok := o.(Emit)
	return ok && e.Domain == oe.Domain
}

// Part is a named grouping of statements with a "uses" relation to other
// parts. Both Uses and Statements have set semantics: insertion order is
// irrelevant and duplicates collapse.
type Part struct {
	Name       string
	Uses       map[string]struct{}
	Statements []Statement
}

// NewPart returns an empty part with the given name.
func NewPart(name string) *Part {
	return &Part{Name: name, Uses: map[string]struct{}{}}
}

// AddUse records that this part uses the named part.
func (p *Part) AddUse(name string) {
	p.Uses[name] = struct{}{}
}

// AddStatement inserts a statement, collapsing exact duplicates.
func (p *Part) AddStatement(s Statement) {
	for _, existing := range p.Statements {
		if existing.Equals(s) {
			return
		}
	}
	p.Statements = append(p.Statements, s)
}

// Program is the root AST node: statements outside any part, plus the
// named parts, each with unique names.
type Program struct {
	AnonStatements []Statement
	Parts          map[string]*Part
	// PartOrder records part-declaration order, so iteration over Parts
	// is deterministic (needed for reproducible provenance traces).
	PartOrder []string
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{Parts: map[string]*Part{}}
}

// AddAnonStatement inserts a top-level (part-less) statement, collapsing
// exact duplicates.
func (p *Program) AddAnonStatement(s Statement) {
	for _, existing := range p.AnonStatements {
		if existing.Equals(s) {
			return
		}
	}
	p.AnonStatements = append(p.AnonStatements, s)
}

// Part returns the named part, creating it (and recording its order) if
// it does not yet exist.
func (p *Program) Part(name string) *Part {
	if part, ok := p.Parts[name]; ok {
		return part
	}
	part := NewPart(name)
	p.Parts[name] = part
	p.PartOrder = append(p.PartOrder, name)
	return part
}

// AllStatements returns every statement in the program together with the
// name of the part it belongs to ("" for anonymous statements), in
// deterministic (part-declaration, then insertion) order.
func (p *Program) AllStatements() []StatementInPart {
	var all []StatementInPart
	for _, s := range p.AnonStatements {
		all = append(all, StatementInPart{PartName: "", Statement: s})
	}
	for _, name := range p.PartOrder {
		for _, s := range p.Parts[name].Statements {
			all = append(all, StatementInPart{PartName: name, Statement: s})
		}
	}
	return all
}

// StatementInPart pairs a statement with the name of the part that
// contains it ("" for the anonymous part).
type StatementInPart struct {
	PartName  string
	Statement Statement
}
