package ast

import (
	"encoding/json"
	"fmt"
)

// This file is the JSON counterpart of the teacher's string-escaping
// serde.go: where the teacher hand-writes an escaper/unescaper pair for
// rendering constants back into source text, we hand-write a tagged
// encode/decode pair for the closed RuleAtom and Statement unions, since
// encoding/json cannot discriminate an interface's dynamic type on its
// own. This package has no source-level parser; this is the on-disk
// form cmd/seaso reads and writes in its place.

// wireAtom is the tagged-union wire form of a RuleAtom.
type wireAtom struct {
	Kind       string    `json:"kind"`
	Var        string    `json:"var,omitempty"`
	Ascription *string   `json:"ascription,omitempty"`
	ConstKind  string    `json:"const_kind,omitempty"`
	Int        int64     `json:"int,omitempty"`
	Str        string    `json:"str,omitempty"`
	Domain     string    `json:"domain,omitempty"`
	Args       []wireAtom `json:"args,omitempty"`
}

func encodeAtom(a RuleAtom) wireAtom {
	switch t := a.(type) {
	case VarAtom:
		w := wireAtom{Kind: "var", Var: string(t.Var)}
		if t.Ascription != nil {
			s := string(*t.Ascription)
			w.Ascription = &s
		}
		return w
	case ConstAtom:
		if t.Const.Kind == IntConstant {
			return wireAtom{Kind: "const", ConstKind: "int", Int: t.Const.I}
		}
		return wireAtom{Kind: "const", ConstKind: "str", Str: t.Const.S}
	case ConstructAtom:
		args := make([]wireAtom, len(t.Args))
		for i, arg := range t.Args {
			args[i] = encodeAtom(arg)
		}
		return wireAtom{Kind: "construct", Domain: string(t.Domain), Args: args}
	default:
		panic(fmt.Sprintf("ast: unknown RuleAtom variant %T", a))
	}
}

func decodeAtom(w wireAtom) (RuleAtom, error) {
	switch w.Kind {
	case "var":
		v := VarAtom{Var: VariableId(w.Var)}
		if w.Ascription != nil {
			d := DomainId(*w.Ascription)
			v.Ascription = &d
		}
		return v, nil
	case "const":
		switch w.ConstKind {
		case "int":
			return ConstAtom{Const: Int(w.Int)}, nil
		case "str":
			return ConstAtom{Const: Str(w.Str)}, nil
		default:
			return nil, fmt.Errorf("ast: unknown const_kind %q", w.ConstKind)
		}
	case "construct":
		args := make([]RuleAtom, len(w.Args))
		for i, aw := range w.Args {
			a, err := decodeAtom(aw)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return ConstructAtom{Domain: DomainId(w.Domain), Args: args}, nil
	default:
		return nil, fmt.Errorf("ast: unknown RuleAtom kind %q", w.Kind)
	}
}

type wireLiteral struct {
	Neg  bool     `json:"neg,omitempty"`
	Atom wireAtom `json:"atom"`
}

func encodeLiteral(l RuleLiteral) wireLiteral {
	return wireLiteral{Neg: l.Sign == Neg, Atom: encodeAtom(l.Atom)}
}

func decodeLiteral(w wireLiteral) (RuleLiteral, error) {
	a, err := decodeAtom(w.Atom)
	if err != nil {
		return RuleLiteral{}, err
	}
	sign := Pos
	if w.Neg {
		sign = Neg
	}
	return RuleLiteral{Sign: sign, Atom: a}, nil
}

type wireRule struct {
	Consequents []wireAtom    `json:"consequents"`
	Antecedents []wireLiteral `json:"antecedents,omitempty"`
}

func encodeRule(r Rule) wireRule {
	consequents := make([]wireAtom, len(r.Consequents))
	for i, c := range r.Consequents {
		consequents[i] = encodeAtom(c)
	}
	antecedents := make([]wireLiteral, len(r.Antecedents))
	for i, a := range r.Antecedents {
		antecedents[i] = encodeLiteral(a)
	}
	return wireRule{Consequents: consequents, Antecedents: antecedents}
}

func decodeRule(w wireRule) (Rule, error) {
	consequents := make([]RuleAtom, len(w.Consequents))
	for i, c := range w.Consequents {
		a, err := decodeAtom(c)
		if err != nil {
			return Rule{}, err
		}
		consequents[i] = a
	}
	antecedents := make([]RuleLiteral, len(w.Antecedents))
	for i, lw := range w.Antecedents {
		l, err := decodeLiteral(lw)
		if err != nil {
			return Rule{}, err
		}
		antecedents[i] = l
	}
	return Rule{Consequents: consequents, Antecedents: antecedents}, nil
}

// wireStatement is the tagged-union wire form of a Statement.
type wireStatement struct {
	Kind   string   `json:"kind"`
	Ids    []string `json:"ids,omitempty"`
	Domain string   `json:"domain,omitempty"`
	Params []string `json:"params,omitempty"`
	Rule   *wireRule `json:"rule,omitempty"`
}

func encodeStatement(s Statement) wireStatement {
	switch t := s.(type) {
	case Decl:
		ids := make([]string, len(t.Ids))
		for i, id := range t.Ids {
			ids[i] = string(id)
		}
		return wireStatement{Kind: "decl", Ids: ids}
	case Defn:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = string(p)
		}
		return wireStatement{Kind: "defn", Domain: string(t.Domain), Params: params}
	case RuleStmt:
		r := encodeRule(t.Rule)
		return wireStatement{Kind: "rule", Rule: &r}
	case Seal:
		return wireStatement{Kind: "seal", Domain: string(t.Domain)}
	case Emit:
		return wireStatement{Kind: "emit", Domain: string(t.Domain)}
	default:
		panic(fmt.Sprintf("ast: unknown Statement variant %T", s))
	}
}

func decodeStatement(w wireStatement) (Statement, error) {
	switch w.Kind {
	case "decl":
		ids := make([]DomainId, len(w.Ids))
		for i, id := range w.Ids {
			ids[i] = DomainId(id)
		}
		return Decl{Ids: ids}, nil
	case "defn":
		params := make([]DomainId, len(w.Params))
		for i, p := range w.Params {
			params[i] = DomainId(p)
		}
		return Defn{Domain: DomainId(w.Domain), Params: params}, nil
	case "rule":
		if w.Rule == nil {
			return nil, fmt.Errorf("ast: rule statement missing rule body")
		}
		r, err := decodeRule(*w.Rule)
		if err != nil {
			return nil, err
		}
		return RuleStmt{Rule: r}, nil
	case "seal":
		return Seal{Domain: DomainId(w.Domain)}, nil
	case "emit":
		return Emit{Domain: DomainId(w.Domain)}, nil
	default:
		return nil, fmt.Errorf("ast: unknown Statement kind %q", w.Kind)
	}
}

type wirePart struct {
	Name       string          `json:"name"`
	Uses       []string        `json:"uses,omitempty"`
	Statements []wireStatement `json:"statements,omitempty"`
}

type wireProgram struct {
	AnonStatements []wireStatement `json:"anon_statements,omitempty"`
	Parts          []wirePart      `json:"parts,omitempty"`
}

// EncodeRuleAtom renders a single RuleAtom as JSON, in the same wire
// form used for rule consequents and antecedents inside EncodeProgram.
// This is the form the CLI's interactive mode accepts for a one-off
// fact (see DecodeRuleAtom), and lets callers persist one fact outside
// of a whole Program.
func EncodeRuleAtom(a RuleAtom) ([]byte, error) {
	return json.Marshal(encodeAtom(a))
}

// DecodeRuleAtom parses a single RuleAtom from its EncodeRuleAtom JSON
// form.
func DecodeRuleAtom(data []byte) (RuleAtom, error) {
	var w wireAtom
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("ast: decoding atom: %w", err)
	}
	return decodeAtom(w)
}

// EncodeProgram renders a Program as indented JSON.
func EncodeProgram(p *Program) ([]byte, error) {
	w := wireProgram{}
	for _, s := range p.AnonStatements {
		w.AnonStatements = append(w.AnonStatements, encodeStatement(s))
	}
	for _, name := range p.PartOrder {
		part := p.Parts[name]
		wp := wirePart{Name: part.Name}
		for use := range part.Uses {
			wp.Uses = append(wp.Uses, use)
		}
		for _, s := range part.Statements {
			wp.Statements = append(wp.Statements, encodeStatement(s))
		}
		w.Parts = append(w.Parts, wp)
	}
	return json.MarshalIndent(w, "", "  ")
}

// DecodeProgram parses a Program from its EncodeProgram JSON form.
func DecodeProgram(data []byte) (*Program, error) {
	var w wireProgram
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("ast: decoding program: %w", err)
	}
	p := NewProgram()
	for _, ws := range w.AnonStatements {
		s, err := decodeStatement(ws)
		if err != nil {
			return nil, fmt.Errorf("ast: decoding anonymous statement: %w", err)
		}
		p.AddAnonStatement(s)
	}
	for _, wp := range w.Parts {
		part := p.Part(wp.Name)
		for _, use := range wp.Uses {
			part.AddUse(use)
		}
		for _, ws := range wp.Statements {
			s, err := decodeStatement(ws)
			if err != nil {
				return nil, fmt.Errorf("ast: decoding statement in part %q: %w", wp.Name, err)
			}
			part.AddStatement(s)
		}
	}
	return p, nil
}
