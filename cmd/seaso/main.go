// Binary seaso loads a JSON-encoded program, runs it through the
// normalization, static-checking and inference pipeline, and prints
// the resulting denotation.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/sirkibsirkib/seaso/analysis"
	"github.com/sirkibsirkib/seaso/ast"
	"github.com/sirkibsirkib/seaso/engine"
	"github.com/sirkibsirkib/seaso/equivalence"
	"github.com/sirkibsirkib/seaso/interpreter"
	"github.com/sirkibsirkib/seaso/knowledge"
	"github.com/sirkibsirkib/seaso/parts"
)

var (
	ast1        = flag.Bool("ast1", false, "dump the AST before preprocessing")
	ast2        = flag.Bool("ast2", false, "dump the AST after preprocessing")
	local       = flag.Bool("local", false, "localize unqualified domain ids to their part")
	eq          = flag.Bool("eq", false, "dump equivalence classes")
	ir          = flag.Bool("ir", false, "dump the checked intermediate representation")
	noDeno      = flag.Bool("no-deno", false, "skip denotation output")
	cluster     = flag.Bool("cluster", false, "group denotation atoms by domain")
	how         = flag.Bool("how", false, "dump the provenance trace")
	sub         = flag.Bool("sub", false, "subconsequent mode: also infer sub-atoms of consequents")
	interactive = flag.Bool("i", false, "enter interactive mode after loading")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: seaso [flags] <program.json>\n\n")
		fmt.Fprintf(os.Stderr, "Runs a checked seaso program to its denotation.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *interactive {
		i := interpreter.New(os.Stdout, *sub)
		if path := flag.Arg(0); path != "" {
			if err := i.Load(path); err != nil {
				fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
			}
		}
		if err := i.Loop(); err != nil {
			os.Exit(0)
		}
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "seaso: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	program, err := ast.DecodeProgram(data)
	if err != nil {
		return fmt.Errorf("decoding program: %w", err)
	}
	if *ast1 {
		dumpProgram(os.Stdout, program, "AST before preprocessing")
	}

	classes, err := equivalence.BuildClasses(program)
	if err != nil {
		return fmt.Errorf("equivalence: %w", err)
	}
	if *eq {
		dumpClasses(os.Stdout, classes)
	}
	equivalence.Apply(program, classes)
	ast.CanonicalizeDomainIds(program, *local)
	ast.ReplaceAnonymousVariablesInProgram(program)
	ast.SafetyRewriteProgram(program)
	if *ast2 {
		dumpProgram(os.Stdout, program, "AST after preprocessing")
	}

	checked, warnings := analysis.Check(program, analysis.Options{Sub: *sub})
	if checked == nil {
		return fmt.Errorf("static check: %w", warnings)
	}
	if warnings != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", warnings)
	}
	if err := analysis.CheckTermination(checked); err != nil {
		return fmt.Errorf("termination: %w", err)
	}

	g, graphErr := parts.BuildGraph(program)
	if graphErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", graphErr)
	}
	for _, b := range parts.DetectSealBreaks(checked, g) {
		fmt.Fprintf(os.Stderr, "warning: %v\n", b)
	}

	if *ir {
		dumpIR(os.Stdout, checked)
	}

	if *noDeno {
		return nil
	}

	deno, prevTruths, err := engine.ComputeDenotation(checked, knowledge.New(), engine.Options{Sub: *sub})
	if err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	dumpDenotation(os.Stdout, deno, *cluster)

	if *how {
		trace, err := engine.ComputeProvenance(checked, knowledge.New(), prevTruths, *sub)
		if err != nil {
			return fmt.Errorf("provenance: %w", err)
		}
		dumpProvenance(os.Stdout, trace)
	}
	return nil
}

func dumpProgram(w *os.File, p *ast.Program, title string) {
	fmt.Fprintf(w, "--- %s ---\n", title)
	for _, sip := range p.AllStatements() {
		fmt.Fprintln(w, sip.Statement)
	}
}

func dumpClasses(w *os.File, classes equivalence.Classes) {
	fmt.Fprintln(w, "--- equivalence classes ---")
	var ids []string
	for id := range classes {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "%s -> %s\n", id, classes.Representative(ast.DomainId(id)))
	}
}

func dumpIR(w *os.File, ep *analysis.ExecutableProgram) {
	fmt.Fprintln(w, "--- checked IR ---")
	for _, r := range ep.Rules {
		fmt.Fprintf(w, "[%s] %s  types=%v\n", r.Locus, r.Rule, r.VariableTypes)
	}
}

func dumpDenotation(w *os.File, deno *engine.Denotation, clustered bool) {
	fmt.Fprintln(w, "--- denotation ---")
	printSet := func(label string, k *knowledge.Knowledge) {
		fmt.Fprintf(w, "%s (%d):\n", label, k.Count())
		if !clustered {
			var lines []string
			for _, d := range k.Domains() {
				for _, a := range k.Domain(d) {
					lines = append(lines, a.String())
				}
			}
			sort.Strings(lines)
			for _, l := range lines {
				fmt.Fprintf(w, "  %s\n", l)
			}
			return
		}
		domains := k.Domains()
		sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })
		for _, d := range domains {
			fmt.Fprintf(w, "  %s:\n", d)
			var lines []string
			for _, a := range k.Domain(d) {
				lines = append(lines, a.String())
			}
			sort.Strings(lines)
			for _, l := range lines {
				fmt.Fprintf(w, "    %s\n", l)
			}
		}
	}
	printSet("truths", deno.Truths)
	printSet("unknowns", deno.Unknowns)
	printSet("emissions", deno.Emissions)
}

func dumpProvenance(w *os.File, trace []engine.ConcreteInference) {
	fmt.Fprintln(w, "--- provenance ---")
	for _, ci := range trace {
		fmt.Fprintf(w, "%s :- %v", ci.Consequent, ci.Antecedents)
		if len(ci.SubAtoms) > 0 {
			fmt.Fprintf(w, "  (sub-atoms: %v)", ci.SubAtoms)
		}
		fmt.Fprintln(w)
	}
}
