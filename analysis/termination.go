package analysis

import (
	"fmt"
	"sort"

	"github.com/sirkibsirkib/seaso/ast"
)

// UnboundedDomainCycle reports that some domain can be nested inside
// itself arbitrarily deeply via rule consequents, so the big-step
// fixpoint is not guaranteed to terminate.
type UnboundedDomainCycle struct {
	Domain ast.DomainId
}

func (e *UnboundedDomainCycle) Error() string {
	return fmt.Sprintf("domain %s can grow without bound: a rule consequent nests it inside itself", e.Domain)
}

// CheckTermination builds the outer->inner domain-nesting graph over
// every rule consequent (outer is a construct's domain, inner is the
// domain of a variable appearing in one of its argument positions),
// transitively closes it, and fails if any domain reaches itself.
func CheckTermination(ep *ExecutableProgram) error {
	edges := map[ast.DomainId]map[ast.DomainId]bool{}
	addEdge := func(outer, inner ast.DomainId) {
		if edges[outer] == nil {
			edges[outer] = map[ast.DomainId]bool{}
		}
		edges[outer][inner] = true
	}

	var walk func(a ast.RuleAtom, vt VariableTypes)
	walk = func(a ast.RuleAtom, vt VariableTypes) {
		construct, ok := a.(ast.ConstructAtom)
		if !ok {
			return
		}
		for _, arg := range construct.Args {
			switch t := arg.(type) {
			case ast.VarAtom:
				if inner, ok := vt[t.Var]; ok {
					addEdge(construct.Domain, inner)
				}
			case ast.ConstructAtom:
				walk(t, vt)
			}
		}
	}

	for _, rule := range ep.Rules {
		for _, c := range rule.Rule.Consequents {
			walk(c, rule.VariableTypes)
		}
	}

	var domains []ast.DomainId
	seen := map[ast.DomainId]bool{}
	for d, targets := range edges {
		if !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
		for t := range targets {
			if !seen[t] {
				seen[t] = true
				domains = append(domains, t)
			}
		}
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	reach := map[ast.DomainId]map[ast.DomainId]bool{}
	for _, d := range domains {
		reach[d] = map[ast.DomainId]bool{}
		for t := range edges[d] {
			reach[d][t] = true
		}
	}
	for _, k := range domains {
		for _, i := range domains {
			if !reach[i][k] {
				continue
			}
			for _, j := range domains {
				if reach[k][j] {
					reach[i][j] = true
				}
			}
		}
	}

	for _, d := range domains {
		if reach[d][d] {
			return &UnboundedDomainCycle{Domain: d}
		}
	}
	return nil
}
