package check

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// callGraph maps a collection to the collections its body uses. Keys are
// case-folded names.
type callGraph map[string][]string

// collectionCycles reports every strongly connected component of the
// collection call graph that is a cycle: more than one member, or a single
// member that uses itself.
func (c *checker) collectionCycles() []Issue {
	if len(c.collections) == 0 {
		return nil
	}
	graph, names := c.buildCallGraph()

	var issues []Issue
	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		path := reconstructCyclePath(scc, graph)
		display := make([]string, len(path))
		for i, key := range path {
			display[i] = names[key]
		}
		issues = append(issues, Issue{
			Code:    CodeRecursiveColl,
			Level:   LevelError,
			Message: fmt.Sprintf("recursive collection: %s", strings.Join(display, " -> ")),
		})
	}
	slices.SortFunc(issues, func(a, b Issue) int { return strings.Compare(a.Message, b.Message) })
	return issues
}

// buildCallGraph walks each collection body and records the collections it
// uses, including uses nested inside control flow.
func (c *checker) buildCallGraph() (callGraph, map[string]string) {
	graph := make(callGraph)
	names := make(map[string]string)
	for key, col := range c.collections {
		names[key] = col.FieldText("NAME")
		graph[key] = []string{}

		body := col.Input("STACK")
		if body == nil {
			continue
		}
		ir.WalkNode(body, ir.Link{Kind: ir.LinkInput, Parent: col, Input: "STACK"}, func(n *ir.Node, _ ir.Link) bool {
			if n.Type != registry.KindCollectionCall {
				return true
			}
			target := c.fold.String(n.FieldText("NAME"))
			if _, ok := c.collections[target]; ok && !slices.Contains(graph[key], target) {
				graph[key] = append(graph[key], target)
			}
			return true
		})
	}
	return graph, names
}

func hasSelfLoop(node string, graph callGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are stable.
func tarjanSCC(graph callGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath follows edges inside the component from its first
// member until it returns there.
func reconstructCyclePath(scc []string, graph callGraph) []string {
	if len(scc) == 0 {
		return nil
	}
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)
	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
