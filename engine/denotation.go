package engine

import (
	"bitbucket.org/creachadair/stringset"
	log "github.com/golang/glog"

	"github.com/sirkibsirkib/seaso/analysis"
	"github.com/sirkibsirkib/seaso/knowledge"
)

// Denotation is the three-valued result of a converged alternating
// fixpoint: truths and unknowns are disjoint, and emissions is truths
// restricted to emissive domains.
type Denotation struct {
	Truths    *knowledge.Knowledge
	Unknowns  *knowledge.Knowledge
	Emissions *knowledge.Knowledge
}

// ComputeDenotation runs the alternating fixpoint: I0 is big-stepped
// under the empty oracle, then each In+1 is big-stepped under
// ComplementOf(In), until three consecutive interpretations converge
// (a == c in the sliding window [a,b,c]). It also returns prevTruths
// (b in that window), needed unchanged as the oracle for a provenance
// re-run.
func ComputeDenotation(ep *analysis.ExecutableProgram, startingFacts *knowledge.Knowledge, opts Options) (*Denotation, *knowledge.Knowledge, error) {
	var history []*knowledge.Knowledge
	neg := knowledge.Empty()

	for round := 0; ; round++ {
		cur, err := BigStepInference(ep, startingFacts, neg, opts)
		if err != nil {
			return nil, nil, err
		}
		history = append(history, cur)
		log.V(1).Infof("alternation round %d: %d fact(s)", round, cur.Count())

		if round%2 == 1 && len(history) >= 3 {
			a := history[len(history)-3]
			c := history[len(history)-1]
			if knowledgeEqual(a, c) {
				truths := c
				prevTruths := history[len(history)-2]
				log.V(1).Infof("alternation converged after round %d", round)
				return &Denotation{
					Truths:    truths,
					Unknowns:  diffKnowledge(prevTruths, truths),
					Emissions: restrictToDomains(truths, ep.Emissive),
				}, prevTruths, nil
			}
		}
		neg = knowledge.ComplementOf(cur)
	}
}

func knowledgeEqual(a, b *knowledge.Knowledge) bool {
	if a.Count() != b.Count() {
		return false
	}
	for _, d := range a.Domains() {
		for _, atom := range a.Domain(d) {
			if !b.Contains(atom) {
				return false
			}
		}
	}
	return true
}

// diffKnowledge returns every atom of a that is absent from b.
func diffKnowledge(a, b *knowledge.Knowledge) *knowledge.Knowledge {
	out := knowledge.New()
	for _, d := range a.Domains() {
		for _, atom := range a.Domain(d) {
			if !b.Contains(atom) {
				out.Add(atom)
			}
		}
	}
	return out
}

// restrictToDomains returns every atom of k whose domain name appears
// in names.
func restrictToDomains(k *knowledge.Knowledge, names stringset.Set) *knowledge.Knowledge {
	out := knowledge.New()
	for _, d := range k.Domains() {
		if !names.Contains(string(d)) {
			continue
		}
		for _, atom := range k.Domain(d) {
			out.Add(atom)
		}
	}
	return out
}
