// Package interpreter provides an interactive loop for the seaso CLI:
// load a checked program, add one-off ground facts, and re-run the
// pipeline to inspect the resulting denotation.
package interpreter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sirkibsirkib/seaso/analysis"
	"github.com/sirkibsirkib/seaso/ast"
	"github.com/sirkibsirkib/seaso/engine"
	"github.com/sirkibsirkib/seaso/equivalence"
	"github.com/sirkibsirkib/seaso/knowledge"
	"github.com/sirkibsirkib/seaso/parts"
)

// Interpreter is an interactive front-end over one loaded program: it
// tracks extra one-off facts entered at the prompt and re-derives the
// denotation on demand, without ever re-parsing source text (parsing is
// out of scope; a program always arrives fully formed, via Load).
type Interpreter struct {
	out io.Writer
	sub bool

	program *ast.Program
	checked *analysis.ExecutableProgram
	extra   *knowledge.Knowledge

	denotation *engine.Denotation
	prevTruths *knowledge.Knowledge
}

// New returns an interpreter with no program loaded yet.
func New(out io.Writer, sub bool) *Interpreter {
	return &Interpreter{out: out, sub: sub, extra: knowledge.New()}
}

const (
	normalPrompt = "seaso >"
	loadPrefix   = "::load "
)

func nextLine(prompt string) (string, error) {
	rl, err := readline.New(prompt)
	if err != nil {
		return "", err
	}
	defer rl.Close()
	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	readline.AddHistory(line)
	return strings.TrimSpace(line), nil
}

// Load reads a JSON-encoded ast.Program from path, normalizes and
// checks it, clears any one-off facts from a prior program, and runs
// the pipeline once.
func (i *Interpreter) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	program, err := ast.DecodeProgram(data)
	if err != nil {
		return err
	}

	classes, err := equivalence.BuildClasses(program)
	if err != nil {
		return fmt.Errorf("equivalence: %w", err)
	}
	equivalence.Apply(program, classes)
	ast.CanonicalizeDomainIds(program, true)
	ast.ReplaceAnonymousVariablesInProgram(program)
	ast.SafetyRewriteProgram(program)

	checked, warnings := analysis.Check(program, analysis.Options{Sub: i.sub})
	if checked == nil {
		return fmt.Errorf("static check: %w", warnings)
	}
	if warnings != nil {
		fmt.Fprintf(i.out, "warnings: %v\n", warnings)
	}
	if err := analysis.CheckTermination(checked); err != nil {
		return fmt.Errorf("termination: %w", err)
	}
	if g, err := parts.BuildGraph(program); err != nil {
		fmt.Fprintf(i.out, "warnings: %v\n", err)
	} else if breaks := parts.DetectSealBreaks(checked, g); len(breaks) > 0 {
		for _, b := range breaks {
			fmt.Fprintf(i.out, "warning: %v\n", b)
		}
	}

	i.program = program
	i.checked = checked
	i.extra = knowledge.New()
	i.denotation = nil
	i.prevTruths = nil
	fmt.Fprintf(i.out, "loaded %s.\n", path)
	return i.run()
}

// Define adds one ground fact (in EncodeRuleAtom JSON form) to the
// extra facts the pipeline starts from, then re-runs it.
func (i *Interpreter) Define(atomJSON string) error {
	if i.checked == nil {
		return fmt.Errorf("no program loaded, use ::load <path> first")
	}
	ruleAtom, err := ast.DecodeRuleAtom([]byte(atomJSON))
	if err != nil {
		return fmt.Errorf("parsing atom: %w", err)
	}
	atom, err := knowledge.FromGroundRuleAtom(ruleAtom)
	if err != nil {
		return fmt.Errorf("atom must be ground: %w", err)
	}
	i.extra.Add(atom)
	fmt.Fprintf(i.out, "added %s.\n", atom)
	return i.run()
}

// Pop discards every one-off fact added via Define and re-runs.
func (i *Interpreter) Pop() error {
	if i.checked == nil {
		return fmt.Errorf("no program loaded")
	}
	i.extra = knowledge.New()
	fmt.Fprintln(i.out, "popped all one-off facts.")
	return i.run()
}

func (i *Interpreter) run() error {
	deno, prevTruths, err := engine.ComputeDenotation(i.checked, i.extra, engine.Options{Sub: i.sub})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	i.denotation = deno
	i.prevTruths = prevTruths
	fmt.Fprintf(i.out, "truths: %d, unknowns: %d, emissions: %d\n",
		deno.Truths.Count(), deno.Unknowns.Count(), deno.Emissions.Count())
	return nil
}

// Query prints every truth and unknown atom of the given domain.
func (i *Interpreter) Query(domain string) error {
	if i.denotation == nil {
		return fmt.Errorf("nothing evaluated yet")
	}
	d := ast.DomainId(domain)
	truths := i.denotation.Truths.Domain(d)
	unknowns := i.denotation.Unknowns.Domain(d)
	var lines []string
	for _, a := range truths {
		lines = append(lines, a.String())
	}
	for _, a := range unknowns {
		lines = append(lines, a.String()+" (unknown)")
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		fmt.Fprintf(i.out, "no entries for %s.\n", domain)
		return nil
	}
	fmt.Fprintf(i.out, "%s\n", strings.Join(lines, "\n"))
	return nil
}

// How dumps the provenance trace, re-running the final big step under
// the prior round's complement.
func (i *Interpreter) How() error {
	if i.checked == nil || i.prevTruths == nil {
		return fmt.Errorf("nothing converged yet")
	}
	trace, err := engine.ComputeProvenance(i.checked, i.extra, i.prevTruths, i.sub)
	if err != nil {
		return err
	}
	for _, ci := range trace {
		fmt.Fprintf(i.out, "%s :- %v\n", ci.Consequent, ci.Antecedents)
	}
	fmt.Fprintf(i.out, "%d inference(s).\n", len(trace))
	return nil
}

// ShowHelp prints the command summary.
func (i *Interpreter) ShowHelp() {
	fmt.Fprintln(i.out, `
::load <path>   load a JSON-encoded program and run the pipeline
{...}           add a one-off ground fact (EncodeRuleAtom JSON) and re-run
::pop           discard one-off facts added so far and re-run
?<domain>       list truths and unknowns for a domain
::how           dump the provenance trace for the last converged run
::help          show this text
<Ctrl-D>        quit`)
}

// Loop reads commands from stdin until EOF.
func (i *Interpreter) Loop() error {
	i.ShowHelp()
	for {
		line, err := nextLine(normalPrompt)
		if err != nil {
			return err
		}
		switch {
		case line == "":
			continue
		case line == "::help":
			i.ShowHelp()
		case line == "::pop":
			if err := i.Pop(); err != nil {
				fmt.Fprintf(i.out, "pop failed: %v\n", err)
			}
		case line == "::how":
			if err := i.How(); err != nil {
				fmt.Fprintf(i.out, "how failed: %v\n", err)
			}
		case strings.HasPrefix(line, loadPrefix):
			if err := i.Load(strings.TrimPrefix(line, loadPrefix)); err != nil {
				fmt.Fprintf(i.out, "load failed: %v\n", err)
			}
		case strings.HasPrefix(line, "?"):
			if err := i.Query(strings.TrimPrefix(line, "?")); err != nil {
				fmt.Fprintf(i.out, "query failed: %v\n", err)
			}
		case strings.HasPrefix(line, "{"):
			if err := i.Define(line); err != nil {
				fmt.Fprintf(i.out, "definition failed: %v\n", err)
			}
		default:
			fmt.Fprintf(i.out, "unrecognized input %q, ::help for commands.\n", line)
		}
	}
}
