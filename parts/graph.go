// Package parts computes the transitive closure of the part "uses"
// relation and detects seal breaks: a domain sealed by one source and
// modified by another with no usage path between them.
package parts

import (
	"fmt"
	"sort"

	"bitbucket.org/creachadair/stringset"

	"github.com/sirkibsirkib/seaso/analysis"
	"github.com/sirkibsirkib/seaso/ast"
)

// Graph is the transitive closure of the part "uses" relation.
type Graph struct {
	names stringset.Set
	reach map[string]map[string]bool
}

// Reaches reports whether part a transitively uses part b.
func (g Graph) Reaches(a, b string) bool {
	return g.reach[a][b]
}

// BuildGraph computes the transitive closure of every part's Uses
// relation with a Floyd-Warshall triple loop: parts are few, so the
// O(n^3) cost is immaterial, exactly the spec's own rationale for
// choosing this over an incremental reachability structure.
//
// It also reports, as a non-fatal warning, every "uses" reference to a
// part name that does not exist in the program.
func BuildGraph(p *ast.Program) (Graph, error) {
	var names []string
	seen := stringset.New()
	for _, name := range p.PartOrder {
		if !seen.Contains(name) {
			seen.Add(name)
			names = append(names, name)
		}
	}
	sort.Strings(names)

	reach := map[string]map[string]bool{}
	for _, name := range names {
		reach[name] = map[string]bool{}
	}

	var dependedUndefined []string
	for _, name := range names {
		for use := range p.Parts[name].Uses {
			if _, ok := p.Parts[use]; !ok {
				dependedUndefined = append(dependedUndefined, use)
				continue
			}
			reach[name][use] = true
		}
	}

	for _, k := range names {
		for _, i := range names {
			if !reach[i][k] {
				continue
			}
			for _, j := range names {
				if reach[k][j] {
					reach[i][j] = true
				}
			}
		}
	}

	g := Graph{names: seen, reach: reach}
	if len(dependedUndefined) == 0 {
		return g, nil
	}
	sort.Strings(dependedUndefined)
	return g, fmt.Errorf("part(s) depend on undefined part(s): %v", dependedUndefined)
}

// SealBreak records one conflicting (sealer, modifier) pair for a
// sealed domain.
type SealBreak struct {
	Domain   ast.DomainId
	Sealer   analysis.Locus
	Modifier analysis.Locus
}

func (b SealBreak) String() string {
	return fmt.Sprintf("domain %s sealed at %v is modified at %v with no usage path between them", b.Domain, b.Sealer, b.Modifier)
}

// DetectSealBreaks reports every (domain, sealer, modifier) triple that
// violates sealing: per spec, two part loci break when they name
// different parts and the sealer's part does not transitively use the
// modifier's part; two anonymous loci break if
// the modifier comes after the sealer; a part/anonymous mix always
// breaks.
func DetectSealBreaks(ep *analysis.ExecutableProgram, g Graph) []SealBreak {
	var breaks []SealBreak
	var domains []ast.DomainId
	for d := range ep.Sealers {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	for _, d := range domains {
		for _, sealer := range ep.Sealers[d] {
			for _, modifier := range ep.Modifiers[d] {
				if breaksSeal(sealer, modifier, g) {
					breaks = append(breaks, SealBreak{Domain: d, Sealer: sealer, Modifier: modifier})
				}
			}
		}
	}
	return breaks
}

func breaksSeal(sealer, modifier analysis.Locus, g Graph) bool {
	switch {
	case !sealer.IsAnon && !modifier.IsAnon:
		return sealer.PartName != modifier.PartName && !g.Reaches(sealer.PartName, modifier.PartName)
	case sealer.IsAnon && modifier.IsAnon:
		return sealer.AnonIndex < modifier.AnonIndex
	default:
		return true
	}
}
