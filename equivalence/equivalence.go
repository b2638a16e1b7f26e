// Package equivalence computes and applies domain equivalence classes
// declared by "decl a = b = ..." statements.
//
// A chain of decls is an undirected graph over domain ids; this package
// finds its connected components with a single undirected DFS pass
// (rather than a two-pass directed SCC algorithm such as Kosaraju's),
// since equivalence edges are symmetric by construction.
package equivalence

import (
	"fmt"
	"sort"

	"github.com/sirkibsirkib/seaso/ast"
)

// Classes maps every domain id that appears in some Decl to the
// representative of its equivalence class.
type Classes map[ast.DomainId]ast.DomainId

// Representative returns the representative of id's class, or id itself
// if id belongs to no declared class.
func (c Classes) Representative(id ast.DomainId) ast.DomainId {
	if rep, ok := c[id]; ok {
		return rep
	}
	return id
}

type adjacency map[ast.DomainId]map[ast.DomainId]bool

func (g adjacency) addEdge(a, b ast.DomainId) {
	if g[a] == nil {
		g[a] = map[ast.DomainId]bool{}
	}
	if g[b] == nil {
		g[b] = map[ast.DomainId]bool{}
	}
	g[a][b] = true
	g[b][a] = true
}

// BuildClasses walks every Decl statement in the program and returns the
// resulting equivalence classes. It returns an error if two distinct
// primitive domains (int, str) would be merged into the same class.
func BuildClasses(p *ast.Program) (Classes, error) {
	graph := adjacency{}
	for _, sip := range p.AllStatements() {
		decl, ok := sip.Statement.(ast.Decl)
		if !ok {
			continue
		}
		for i := 1; i < len(decl.Ids); i++ {
			graph.addEdge(decl.Ids[i-1], decl.Ids[i])
		}
		if len(decl.Ids) == 1 {
			if graph[decl.Ids[0]] == nil {
				graph[decl.Ids[0]] = map[ast.DomainId]bool{}
			}
		}
	}

	visited := map[ast.DomainId]bool{}
	classes := Classes{}
	// Deterministic component discovery order.
	var ids []ast.DomainId
	for id := range graph {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if visited[id] {
			continue
		}
		component := collectComponent(graph, id, visited)
		primitives := 0
		for _, m := range component {
			if m.IsPrimitive() {
				primitives++
			}
		}
		if primitives > 1 {
			return nil, fmt.Errorf("equivalence: cannot merge two distinct primitive domains in the same class: %v", component)
		}
		rep := electRepresentative(component)
		for _, m := range component {
			classes[m] = rep
		}
	}
	return classes, nil
}

// collectComponent runs a DFS from start over the undirected graph,
// marking every reached node visited, and returns the component members
// in deterministic (sorted) order.
func collectComponent(graph adjacency, start ast.DomainId, visited map[ast.DomainId]bool) []ast.DomainId {
	var component []ast.DomainId
	stack := []ast.DomainId{start}
	visited[start] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		component = append(component, n)
		var neighbors []ast.DomainId
		for m := range graph[n] {
			neighbors = append(neighbors, m)
		}
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
		for _, m := range neighbors {
			if !visited[m] {
				visited[m] = true
				stack = append(stack, m)
			}
		}
	}
	sort.Slice(component, func(i, j int) bool { return component[i] < component[j] })
	return component
}

// electRepresentative picks the class representative: a primitive
// domain wins outright; otherwise the shortest id wins, ties broken
// lexicographically.
func electRepresentative(component []ast.DomainId) ast.DomainId {
	for _, id := range component {
		if id.IsPrimitive() {
			return id
		}
	}
	best := component[0]
	for _, id := range component[1:] {
		if len(id) < len(best) || (len(id) == len(best) && id < best) {
			best = id
		}
	}
	return best
}

// Apply rewrites every domain id occurring anywhere in the program to
// its class representative.
func Apply(p *ast.Program, classes Classes) {
	f := func(id ast.DomainId) ast.DomainId { return classes.Representative(id) }
	for i, s := range p.AnonStatements {
		p.AnonStatements[i] = ast.MapStatementDomains(s, f)
	}
	for _, name := range p.PartOrder {
		part := p.Parts[name]
		for i, s := range part.Statements {
			part.Statements[i] = ast.MapStatementDomains(s, f)
		}
	}
}
