// Package knowledge contains Atom, the ground (variable-free) counterpart
// of a rule atom, and Knowledge, an in-memory store of such facts.
package knowledge

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/sirkibsirkib/seaso/ast"
)

// Atom is a ground (variable-free) counterpart of ast.RuleAtom. Every
// Atom is typed by exactly one domain: either a primitive constant's
// own domain, or the domain of the constructor that built it.
type Atom struct {
	Domain ast.DomainId
	// Const is set when this atom is a bare primitive constant
	// (Domain == Const.Domain()).
	Const *ast.Constant
	// Args is set when this atom is a constructor application; every
	// element is itself ground.
	Args []Atom
}

// FromConstant wraps a primitive constant as an Atom.
func FromConstant(c ast.Constant) Atom {
	return Atom{Domain: c.Domain(), Const: &c}
}

// FromConstruct builds a constructor-application Atom.
func FromConstruct(domain ast.DomainId, args []Atom) Atom {
	return Atom{Domain: domain, Args: args}
}

// ToRuleAtom renders this ground Atom back as a variable-free ast.RuleAtom.
func (a Atom) ToRuleAtom() ast.RuleAtom {
	if a.Const != nil {
		return ast.ConstAtom{Const: *a.Const}
	}
	args := make([]ast.RuleAtom, len(a.Args))
	for i, arg := range a.Args {
		args[i] = arg.ToRuleAtom()
	}
	return ast.ConstructAtom{Domain: a.Domain, Args: args}
}

// FromGroundRuleAtom converts a variable-free ast.RuleAtom into an Atom.
// It returns an error if the atom still contains a variable.
func FromGroundRuleAtom(a ast.RuleAtom) (Atom, error) {
	switch t := a.(type) {
	case ast.ConstAtom:
		return FromConstant(t.Const), nil
	case ast.ConstructAtom:
		args := make([]Atom, len(t.Args))
		for i, arg := range t.Args {
			ga, err := FromGroundRuleAtom(arg)
			if err != nil {
				return Atom{}, err
			}
			args[i] = ga
		}
		return FromConstruct(t.Domain, args), nil
	default:
		return Atom{}, fmt.Errorf("knowledge: atom is not ground: %v", a)
	}
}

// Equals reports structural equality between two ground atoms.
func (a Atom) Equals(o Atom) bool {
	if a.Domain != o.Domain || len(a.Args) != len(o.Args) {
		return false
	}
	if (a.Const == nil) != (o.Const == nil) {
		return false
	}
	if a.Const != nil {
		return a.Const.Equals(*o.Const)
	}
	for i, arg := range a.Args {
		if !arg.Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

// String renders the atom the way it would appear in source.
func (a Atom) String() string {
	if a.Const != nil {
		return a.Const.String()
	}
	var sb strings.Builder
	sb.WriteString(string(a.Domain))
	sb.WriteRune('(')
	for i, arg := range a.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteRune(')')
	return sb.String()
}

// Hash returns a content hash suitable for use as a map key shard.
func (a Atom) Hash() uint64 {
	h := fnv.New64a()
	a.writeHash(h)
	return h.Sum64()
}

func (a Atom) writeHash(h interface{ Write([]byte) (int, error) }) {
	h.Write([]byte(a.Domain))
	h.Write([]byte{0})
	if a.Const != nil {
		h.Write([]byte(a.Const.String()))
		return
	}
	for _, arg := range a.Args {
		arg.writeHash(h)
		h.Write([]byte{1})
	}
}

// Knowledge holds ground facts, sharded by domain then keyed by content
// hash, mirroring the teacher's SimpleInMemoryStore: a two-level map
// backs lookup instead of a single flat set, since the engine always
// queries one domain at a time.
type Knowledge struct {
	byDomain map[ast.DomainId]map[uint64]Atom
}

// New returns an empty Knowledge store.
func New() *Knowledge {
	return &Knowledge{byDomain: map[ast.DomainId]map[uint64]Atom{}}
}

// Add inserts an atom, returning true if it was not already present.
func (k *Knowledge) Add(a Atom) bool {
	shard, ok := k.byDomain[a.Domain]
	if !ok {
		shard = map[uint64]Atom{}
		k.byDomain[a.Domain] = shard
	}
	key := a.Hash()
	if _, exists := shard[key]; exists {
		return false
	}
	shard[key] = a
	return true
}

// Contains reports whether the given atom is already present.
func (k *Knowledge) Contains(a Atom) bool {
	shard, ok := k.byDomain[a.Domain]
	if !ok {
		return false
	}
	_, exists := shard[a.Hash()]
	return exists
}

// Domain returns every known atom of the given domain, in no particular
// order.
func (k *Knowledge) Domain(d ast.DomainId) []Atom {
	shard := k.byDomain[d]
	atoms := make([]Atom, 0, len(shard))
	for _, a := range shard {
		atoms = append(atoms, a)
	}
	return atoms
}

// Domains lists every domain that has at least one atom recorded.
func (k *Knowledge) Domains() []ast.DomainId {
	domains := make([]ast.DomainId, 0, len(k.byDomain))
	for d := range k.byDomain {
		domains = append(domains, d)
	}
	return domains
}

// Count returns the total number of atoms across all domains.
func (k *Knowledge) Count() int {
	c := 0
	for _, shard := range k.byDomain {
		c += len(shard)
	}
	return c
}

// Clone returns a deep-enough copy: atoms are immutable once built, so
// only the map structure needs duplicating.
func (k *Knowledge) Clone() *Knowledge {
	clone := New()
	for d, shard := range k.byDomain {
		newShard := make(map[uint64]Atom, len(shard))
		for key, a := range shard {
			newShard[key] = a
		}
		clone.byDomain[d] = newShard
	}
	return clone
}

// ComplementKnowledge is the negative-literal oracle threaded through
// big-step inference: either Empty (every negative literal succeeds, as
// in the first round) or ComplementOf some Knowledge snapshot (a
// negative literal succeeds exactly when the positive atom is absent
// from that snapshot).
type ComplementKnowledge struct {
	snapshot *Knowledge // nil means Empty
}

// Empty returns the oracle under which every negative literal holds.
func Empty() ComplementKnowledge { return ComplementKnowledge{} }

// ComplementOf returns the oracle under which a negative literal on
// atom a holds iff a is absent from k.
func ComplementOf(k *Knowledge) ComplementKnowledge { return ComplementKnowledge{snapshot: k} }

// Holds reports whether the negative literal for atom a succeeds under
// this oracle.
func (c ComplementKnowledge) Holds(a Atom) bool {
	if c.snapshot == nil {
		return true
	}
	return !c.snapshot.Contains(a)
}
