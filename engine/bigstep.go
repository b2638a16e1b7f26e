// Package engine computes big_step_inference (a monotone fixpoint over
// positive rule firings under a fixed negative oracle), the alternating
// fixpoint built on top of it, and the provenance trace.
package engine

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/sirkibsirkib/seaso/analysis"
	"github.com/sirkibsirkib/seaso/assign"
	"github.com/sirkibsirkib/seaso/ast"
	"github.com/sirkibsirkib/seaso/knowledge"
)

// ConcreteLiteral is a fully-resolved (ground) antecedent literal,
// recorded as part of a ConcreteInference.
type ConcreteLiteral struct {
	Sign ast.Sign
	Atom knowledge.Atom
}

// ConcreteInference records one rule firing that derived a previously
// unknown atom: the user-written consequent that fired, and every
// antecedent literal it fired against, both concretized against the
// binding that produced them. Under sub mode, SubAtoms additionally
// lists every proper sub-atom of Consequent, whether or not it was
// already known (Consequent itself is never repeated in SubAtoms).
type ConcreteInference struct {
	Consequent  knowledge.Atom
	Antecedents []ConcreteLiteral
	SubAtoms    []knowledge.Atom
}

// Options controls one big_step_inference run.
type Options struct {
	// Sub additionally inserts every sub-atom of a fired consequent,
	// each typed by its own domain, not only the consequent itself.
	Sub bool
	// OnInsert, if set, is invoked for every rule firing that is about
	// to insert a consequent atom not already present in pos_r (the
	// facts accumulated before the current pass). Used to build a
	// provenance trace; nil during ordinary evaluation.
	OnInsert func(ConcreteInference)
}

// BigStepInference iterates rule firings to a fixpoint: every annotated
// rule is tried against the accumulated facts (pos_r) each pass, newly
// derived atoms are buffered into pos_w, and pos_w is drained into
// pos_r between passes until a pass derives nothing new.
func BigStepInference(ep *analysis.ExecutableProgram, startingFacts *knowledge.Knowledge, neg knowledge.ComplementKnowledge, opts Options) (*knowledge.Knowledge, error) {
	posR := startingFacts.Clone()
	for pass := 0; ; pass++ {
		posW := knowledge.New()
		for _, rule := range ep.Rules {
			if err := evalRule(rule, posR, posW, neg, opts); err != nil {
				return nil, fmt.Errorf("evaluating rule %v: %w", rule.Rule, err)
			}
		}
		log.V(1).Infof("big_step_inference pass %d: %d new fact(s), %d accumulated", pass, posW.Count(), posR.Count())
		if posW.Count() == 0 {
			return posR, nil
		}
		for _, d := range posW.Domains() {
			for _, atom := range posW.Domain(d) {
				posR.Add(atom)
			}
		}
	}
}

func evalRule(rule analysis.AnnotatedRule, posR, posW *knowledge.Knowledge, neg knowledge.ComplementKnowledge, opts Options) error {
	va := assign.New()
	return matchAntecedent(rule, 0, va, posR, posW, neg, opts)
}

// matchAntecedent recursively walks the rule's antecedent list,
// snapshotting and restoring va around each candidate fact so that a
// failed or exhausted branch leaves no trace of its bindings.
func matchAntecedent(rule analysis.AnnotatedRule, idx int, va *assign.VariableAssignments, posR, posW *knowledge.Knowledge, neg knowledge.ComplementKnowledge, opts Options) error {
	lits := rule.Rule.Antecedents
	if idx == len(lits) {
		return fireRule(rule, va, posR, posW, neg, opts)
	}
	lit := lits[idx]
	if lit.Sign == ast.Neg {
		return matchAntecedent(rule, idx+1, va, posR, posW, neg, opts)
	}
	domain := domainOfAtom(lit.Atom, rule.VariableTypes)
	for _, fact := range posR.Domain(domain) {
		tok := va.GetStateToken()
		ok, err := assign.UniquelyAssignVariables(lit.Atom, fact, va)
		if err != nil {
			return err
		}
		if ok {
			if err := matchAntecedent(rule, idx+1, va, posR, posW, neg, opts); err != nil {
				return err
			}
		}
		va.RestoreState(tok)
	}
	return nil
}

// fireRule runs once all positive antecedents are bound: it checks
// every negative antecedent against the oracle, then concretizes and
// inserts every consequent.
func fireRule(rule analysis.AnnotatedRule, va *assign.VariableAssignments, posR, posW *knowledge.Knowledge, neg knowledge.ComplementKnowledge, opts Options) error {
	for _, lit := range rule.Rule.Antecedents {
		if lit.Sign != ast.Neg {
			continue
		}
		atom, err := assign.Resolve(lit.Atom, va)
		if err != nil {
			return err
		}
		if !neg.Holds(atom) {
			return nil
		}
	}

	var concreteAntecedents []ConcreteLiteral
	if opts.OnInsert != nil {
		concreteAntecedents = make([]ConcreteLiteral, 0, len(rule.Rule.Antecedents))
		for _, lit := range rule.Rule.Antecedents {
			atom, err := assign.Resolve(lit.Atom, va)
			if err != nil {
				return err
			}
			concreteAntecedents = append(concreteAntecedents, ConcreteLiteral{Sign: lit.Sign, Atom: atom})
		}
	}

	for _, c := range rule.Rule.Consequents {
		atom, err := assign.Resolve(c, va)
		if err != nil {
			return err
		}
		isNew := !posR.Contains(atom)
		if isNew && opts.OnInsert != nil {
			ci := ConcreteInference{Consequent: atom, Antecedents: concreteAntecedents}
			if opts.Sub {
				ci.SubAtoms = subAtomsOf(atom)
			}
			opts.OnInsert(ci)
		}
		if isNew {
			posW.Add(atom)
		}
		if opts.Sub {
			for _, sub := range subAtomsOf(atom) {
				if !posR.Contains(sub) {
					posW.Add(sub)
				}
			}
		}
	}
	return nil
}

// subAtomsOf collects every proper descendant of atom (its constructor
// arguments and their own descendants, recursively), not atom itself.
func subAtomsOf(atom knowledge.Atom) []knowledge.Atom {
	var subs []knowledge.Atom
	for _, arg := range atom.Args {
		subs = append(subs, arg)
		subs = append(subs, subAtomsOf(arg)...)
	}
	return subs
}

// domainOfAtom determines which domain's facts a positive antecedent
// atom should be matched against.
func domainOfAtom(a ast.RuleAtom, vt analysis.VariableTypes) ast.DomainId {
	switch t := a.(type) {
	case ast.ConstructAtom:
		return t.Domain
	case ast.ConstAtom:
		return t.Const.Domain()
	case ast.VarAtom:
		if t.Ascription != nil {
			return *t.Ascription
		}
		return vt[t.Var]
	default:
		return ""
	}
}
