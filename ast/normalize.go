package ast

import (
	"fmt"
	"strings"
)

// MapAtomDomains returns a new RuleAtom with every DomainId occurrence
// (ascriptions and constructor domains) replaced by f(id). Used both by
// domain-id canonicalization and by equivalence-class rewriting.
func MapAtomDomains(a RuleAtom, f func(DomainId) DomainId) RuleAtom {
	switch t := a.(type) {
	case VarAtom:
		if t.Ascription == nil {
			return t
		}
		newAscr := f(*t.Ascription)
		return VarAtom{Var: t.Var, Ascription: &newAscr}
	case ConstAtom:
		return t
	case ConstructAtom:
		args := make([]RuleAtom, len(t.Args))
		for i, arg := range t.Args {
			args[i] = MapAtomDomains(arg, f)
		}
		return ConstructAtom{Domain: f(t.Domain), Args: args}
	default:
		return a
	}
}

func mapLiteralDomains(l RuleLiteral, f func(DomainId) DomainId) RuleLiteral {
	return RuleLiteral{Sign: l.Sign, Atom: MapAtomDomains(l.Atom, f)}
}

func mapRuleDomains(r Rule, f func(DomainId) DomainId) Rule {
	consequents := make([]RuleAtom, len(r.Consequents))
	for i, c := range r.Consequents {
		consequents[i] = MapAtomDomains(c, f)
	}
	antecedents := make([]RuleLiteral, len(r.Antecedents))
	for i, a := range r.Antecedents {
		antecedents[i] = mapLiteralDomains(a, f)
	}
	return Rule{Consequents: consequents, Antecedents: antecedents}
}

// MapStatementDomains returns a new Statement with every DomainId
// occurrence replaced by f(id).
func MapStatementDomains(s Statement, f func(DomainId) DomainId) Statement {
	switch t := s.(type) {
	case Decl:
		ids := make([]DomainId, len(t.Ids))
		for i, id := range t.Ids {
			ids[i] = f(id)
		}
		return Decl{Ids: ids}
	case Defn:
		params := make([]DomainId, len(t.Params))
		for i, p := range t.Params {
			params[i] = f(p)
		}
		return Defn{Domain: f(t.Domain), Params: params}
	case RuleStmt:
		return RuleStmt{Rule: mapRuleDomains(t.Rule, f)}
	case Seal:
		return Seal{Domain: f(t.Domain)}
	case Emit:
		return Emit{Domain: f(t.Domain)}
	default:
		return s
	}
}

// canonicalizeDomainID strips internal whitespace, and, if localize is
// set, the id is not primitive and not already "@"-qualified, suffixes
// it with "@partName".
func canonicalizeDomainID(id DomainId, partName string, localize bool) DomainId {
	stripped := DomainId(strings.Join(strings.Fields(string(id)), ""))
	if !localize || partName == "" || stripped.IsPrimitive() || strings.Contains(string(stripped), "@") {
		return stripped
	}
	return DomainId(fmt.Sprintf("%s@%s", stripped, partName))
}

// CanonicalizeDomainIds rewrites every domain id in the program:
// whitespace is stripped unconditionally; if localize is set, ids local
// to a part are suffixed with "@<part name>".
func CanonicalizeDomainIds(p *Program, localize bool) {
	f := func(partName string) func(DomainId) DomainId {
		return func(id DomainId) DomainId { return canonicalizeDomainID(id, partName, localize) }
	}
	for i, s := range p.AnonStatements {
		p.AnonStatements[i] = MapStatementDomains(s, f(""))
	}
	for _, name := range p.PartOrder {
		part := p.Parts[name]
		for i, s := range part.Statements {
			part.Statements[i] = MapStatementDomains(s, f(name))
		}
	}
}

// ReplaceAnonymousVariables replaces each "_" variable occurrence inside
// a rule with a fresh "V{i}ANON" name, i being a rule-local counter.
// Two distinct "_" occurrences in the same rule are NEVER the same
// variable, so each is named independently.
func ReplaceAnonymousVariables(r Rule) Rule {
	counter := 0
	fresh := func() VariableId {
		v := VariableId(fmt.Sprintf("V%dANON", counter))
		counter++
		return v
	}
	var replaceAtom func(a RuleAtom) RuleAtom
	replaceAtom = func(a RuleAtom) RuleAtom {
		switch t := a.(type) {
		case VarAtom:
			if t.Var != AnonymousVariable {
				return t
			}
			return VarAtom{Var: fresh(), Ascription: t.Ascription}
		case ConstructAtom:
			args := make([]RuleAtom, len(t.Args))
			for i, arg := range t.Args {
				args[i] = replaceAtom(arg)
			}
			return ConstructAtom{Domain: t.Domain, Args: args}
		default:
			return a
		}
	}
	consequents := make([]RuleAtom, len(r.Consequents))
	for i, c := range r.Consequents {
		consequents[i] = replaceAtom(c)
	}
	antecedents := make([]RuleLiteral, len(r.Antecedents))
	for i, a := range r.Antecedents {
		antecedents[i] = RuleLiteral{Sign: a.Sign, Atom: replaceAtom(a.Atom)}
	}
	return Rule{Consequents: consequents, Antecedents: antecedents}
}

// ReplaceAnonymousVariablesInProgram applies ReplaceAnonymousVariables to
// every rule in the program.
func ReplaceAnonymousVariablesInProgram(p *Program) {
	for i, s := range p.AnonStatements {
		if rs, ok := s.(RuleStmt); ok {
			p.AnonStatements[i] = RuleStmt{Rule: ReplaceAnonymousVariables(rs.Rule)}
		}
	}
	for _, name := range p.PartOrder {
		part := p.Parts[name]
		for i, s := range part.Statements {
			if rs, ok := s.(RuleStmt); ok {
				part.Statements[i] = RuleStmt{Rule: ReplaceAnonymousVariables(rs.Rule)}
			}
		}
	}
}

// SafetyRewrite adds, for every rule, a positive "Var(vid)" antecedent
// literal for each consequent variable that is not enumerable (does not
// already occur in some positive antecedent literal). This is the
// "save" rewrite; cmd/seaso and the interpreter apply it to every
// program unconditionally (there is no flag that turns it off). The
// added literal is itself a bare VarAtom, so that it becomes both an
// antecedent and, trivially, positively-grounding for the variable once
// evaluated against the corresponding domain's facts.
//
// Note: after the rewrite, analysis.InferTypes accepts such a variable
// as enumerable instead of failing with VariableNotEnumerable; at
// evaluation the added literal is matched against every known atom of
// the variable's inferred domain, so the rule only fires for atoms some
// other rule or fact provides.
func SafetyRewrite(r Rule) Rule {
	enumerable := PositiveAntecedentVars(r)
	consequentVars := ConsequentVars(r)
	var added []RuleLiteral
	// Deterministic order: iterate consequents left to right, args
	// depth-first, so the same rule always gets the same rewrite.
	seen := map[VariableId]bool{}
	var walk func(a RuleAtom)
	walk = func(a RuleAtom) {
		switch t := a.(type) {
		case VarAtom:
			if consequentVars[t.Var] && !enumerable[t.Var] && !seen[t.Var] {
				seen[t.Var] = true
				added = append(added, RuleLiteral{Sign: Pos, Atom: VarAtom{Var: t.Var}})
			}
		case ConstructAtom:
			for _, arg := range t.Args {
				walk(arg)
			}
		}
	}
	for _, c := range r.Consequents {
		walk(c)
	}
	if len(added) == 0 {
		return r
	}
	return Rule{Consequents: r.Consequents, Antecedents: append(append([]RuleLiteral{}, r.Antecedents...), added...)}
}

// SafetyRewriteProgram applies SafetyRewrite to every rule in the program.
func SafetyRewriteProgram(p *Program) {
	for i, s := range p.AnonStatements {
		if rs, ok := s.(RuleStmt); ok {
			p.AnonStatements[i] = RuleStmt{Rule: SafetyRewrite(rs.Rule)}
		}
	}
	for _, name := range p.PartOrder {
		part := p.Parts[name]
		for i, s := range part.Statements {
			if rs, ok := s.(RuleStmt); ok {
				part.Statements[i] = RuleStmt{Rule: SafetyRewrite(rs.Rule)}
			}
		}
	}
}

// StripComments removes line comments ("#...\n", the newline retained)
// and block comments ("<...>", entirely dropped, not nestable) from
// source text. It is a pure function over an already-read string; it
// performs no file I/O and is not reachable from the part of the
// pipeline that handles source files (that is out of scope — see
// spec.md section 1), but is specified and tested because it is the one
// pure lexical state machine spec.md names explicitly.
func StripComments(src string) string {
	const (
		outside = iota
		lineComment
		blockComment
	)
	state := outside
	var out strings.Builder
	for _, r := range src {
		switch state {
		case outside:
			switch r {
			case '#':
				state = lineComment
			case '<':
				state = blockComment
			default:
				out.WriteRune(r)
			}
		case lineComment:
			if r == '\n' {
				out.WriteRune(r)
				state = outside
			}
		case blockComment:
			if r == '>' {
				state = outside
			}
		}
	}
	return out.String()
}
