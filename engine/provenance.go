package engine

import (
	"github.com/sirkibsirkib/seaso/analysis"
	"github.com/sirkibsirkib/seaso/knowledge"
)

// ComputeProvenance explains a converged denotation: it re-runs
// big_step_inference under ComplementOf(prevTruths) (the oracle the
// final alternation round used), collecting one ConcreteInference for
// every rule firing that derives an atom not already present in the
// facts accumulated before the current pass.
func ComputeProvenance(ep *analysis.ExecutableProgram, startingFacts *knowledge.Knowledge, prevTruths *knowledge.Knowledge, sub bool) ([]ConcreteInference, error) {
	var trace []ConcreteInference
	opts := Options{
		Sub: sub,
		OnInsert: func(ci ConcreteInference) {
			trace = append(trace, ci)
		},
	}
	if _, err := BigStepInference(ep, startingFacts, knowledge.ComplementOf(prevTruths), opts); err != nil {
		return nil, err
	}
	return trace, nil
}
