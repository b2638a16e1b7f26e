package analysis

import (
	"fmt"

	"bitbucket.org/creachadair/stringset"
	"go.uber.org/multierr"

	"github.com/sirkibsirkib/seaso/ast"
)

// Locus identifies where a seal or a modification originated: either a
// named part, or a position among the program's anonymous statements.
type Locus struct {
	PartName  string
	AnonIndex int
	IsAnon    bool
}

func (l Locus) String() string {
	if l.IsAnon {
		return fmt.Sprintf("<anon #%d>", l.AnonIndex)
	}
	return l.PartName
}

// AnnotatedRule pairs a rule with its inferred variable types and the
// locus it was declared at.
type AnnotatedRule struct {
	Rule          ast.Rule
	VariableTypes VariableTypes
	Locus         Locus
}

// ExecutableProgram is the checked intermediate representation the
// engine consumes: domain definitions, typed rules, and the
// sealer/modifier/emissive bookkeeping needed for seal-break detection.
type ExecutableProgram struct {
	Definitions DomainDefinitions
	Rules       []AnnotatedRule

	Sealers   map[ast.DomainId][]Locus
	Modifiers map[ast.DomainId][]Locus
	Emissive  stringset.Set

	Declared stringset.Set
	Used     stringset.Set

	UsedUndeclared    stringset.Set
	DeclaredUndefined stringset.Set
}

// Options controls pass-2 behavior.
type Options struct {
	// Sub enables subconsequent mode: a consequent counts as a
	// modification only if it is not a subatom of some positive
	// antecedent (instead of requiring a verbatim match).
	Sub bool
}

// Check runs the two-pass static checker over a normalized program,
// returning the checked ExecutableProgram plus a non-fatal aggregate of
// structural warnings (used-undeclared domains, declared-but-undefined
// domains), or a fatal error (a conflicting Defn, a primitive
// redefinition, or a rule typing error).
func Check(p *ast.Program, opts Options) (*ExecutableProgram, error) {
	dd, err := collectDefinitions(p)
	if err != nil {
		return nil, err
	}

	ep := &ExecutableProgram{
		Definitions: dd,
		Sealers:     map[ast.DomainId][]Locus{},
		Modifiers:   map[ast.DomainId][]Locus{},
		Emissive:    stringset.New(),
		Declared:    stringset.New(),
		Used:        stringset.New(),
	}
	for did := range dd {
		ep.Declared.Add(string(did))
	}

	anonIndex := 0
	var warnings error
	for _, sip := range p.AllStatements() {
		locus := Locus{PartName: sip.PartName}
		if sip.PartName == "" {
			locus = Locus{IsAnon: true, AnonIndex: anonIndex}
			anonIndex++
		}
		switch stmt := sip.Statement.(type) {
		case ast.Defn:
			// Already folded into dd by collectDefinitions.
		case ast.Decl:
			// Already applied by the equivalence pass; nothing to do here.
		case ast.RuleStmt:
			vt, err := InferTypes(stmt.Rule, dd)
			if err != nil {
				return nil, fmt.Errorf("rule %v: %w", stmt.Rule, err)
			}
			ep.Rules = append(ep.Rules, AnnotatedRule{Rule: stmt.Rule, VariableTypes: vt, Locus: locus})
			recordRuleUsage(ep, stmt.Rule, locus, opts)
		case ast.Seal:
			ep.Sealers[stmt.Domain] = append(ep.Sealers[stmt.Domain], locus)
			ep.Declared.Add(string(stmt.Domain))
		case ast.Emit:
			ep.Emissive.Add(string(stmt.Domain))
			ep.Declared.Add(string(stmt.Domain))
			ep.Used.Add(string(stmt.Domain))
		}
	}

	primitives := stringset.New(string(ast.IntDomain), string(ast.StrDomain))
	ep.UsedUndeclared = ep.Used.Diff(ep.Declared.Union(primitives))
	ep.DeclaredUndefined = ep.Declared.Diff(declaredDomainNames(dd))

	for _, name := range ep.UsedUndeclared.Elements() {
		warnings = multierr.Append(warnings, fmt.Errorf("domain %s is used but never declared", name))
	}
	for _, name := range ep.DeclaredUndefined.Elements() {
		warnings = multierr.Append(warnings, fmt.Errorf("domain %s is declared (sealed/emitted) but never defined", name))
	}

	return ep, warnings
}

func declaredDomainNames(dd DomainDefinitions) stringset.Set {
	s := stringset.New()
	for did := range dd {
		s.Add(string(did))
	}
	return s
}

// collectDefinitions runs pass 1: fold every Defn statement into a
// DomainDefinitions map, failing on a primitive redefinition or a
// conflicting prior definition.
func collectDefinitions(p *ast.Program) (DomainDefinitions, error) {
	dd := DomainDefinitions{}
	for _, sip := range p.AllStatements() {
		defn, ok := sip.Statement.(ast.Defn)
		if !ok {
			continue
		}
		if defn.Domain.IsPrimitive() {
			return nil, fmt.Errorf("cannot redefine primitive domain %s", defn.Domain)
		}
		if existing, ok := dd[defn.Domain]; ok {
			if !sameParams(existing, defn.Params) {
				return nil, fmt.Errorf("conflicting definitions for domain %s: %v vs %v", defn.Domain, existing, defn.Params)
			}
			continue
		}
		dd[defn.Domain] = defn.Params
	}
	return dd, nil
}

func sameParams(a, b []ast.DomainId) bool {
	if len(a) != len(b) {
		return false
	}
	for i, d := range a {
		if d != b[i] {
			return false
		}
	}
	return true
}

// recordRuleUsage updates Used and Modifiers for one rule's consequents
// and antecedents.
func recordRuleUsage(ep *ExecutableProgram, r ast.Rule, locus Locus, opts Options) {
	for _, lit := range r.Antecedents {
		if construct, ok := lit.Atom.(ast.ConstructAtom); ok {
			ep.Used.Add(string(construct.Domain))
		}
	}
	for _, c := range r.Consequents {
		domain, ok := consequentDomain(c)
		if !ok {
			continue
		}
		ep.Used.Add(string(domain))
		if !isPreexisting(c, r, opts.Sub) {
			ep.Modifiers[domain] = append(ep.Modifiers[domain], locus)
		}
	}
}

func consequentDomain(a ast.RuleAtom) (ast.DomainId, bool) {
	switch t := a.(type) {
	case ast.ConstructAtom:
		return t.Domain, true
	case ast.ConstAtom:
		return t.Const.Domain(), true
	default:
		return "", false
	}
}

// isPreexisting reports whether consequent c already appears as a
// positive antecedent of r (verbatim), or, under sub mode, as a subatom
// of some positive antecedent.
func isPreexisting(c ast.RuleAtom, r ast.Rule, sub bool) bool {
	for _, lit := range r.Antecedents {
		if lit.Sign != ast.Pos {
			continue
		}
		if sub {
			if isSubatom(c, lit.Atom) {
				return true
			}
			continue
		}
		if c.Equals(lit.Atom) {
			return true
		}
	}
	return false
}

// isSubatom reports whether needle occurs verbatim as haystack itself
// or as one of haystack's (possibly nested) constructor arguments.
func isSubatom(needle, haystack ast.RuleAtom) bool {
	if needle.Equals(haystack) {
		return true
	}
	construct, ok := haystack.(ast.ConstructAtom)
	if !ok {
		return false
	}
	for _, arg := range construct.Args {
		if isSubatom(needle, arg) {
			return true
		}
	}
	return false
}
