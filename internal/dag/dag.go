// Package dag provides the directed dependency graph backing task
// dependencies, with cycle detection over the declared edges.
package dag

import (
	"fmt"
	"slices"
	"sort"
)

// Graph is a directed graph whose nodes carry data of type T.
// An edge from parent to child means the child depends on the parent.
type Graph[T any] struct {
	nodes map[string]T
	edges map[string][]string // parent -> children (dependents)
}

// New creates a new empty graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{
		nodes: make(map[string]T),
		edges: make(map[string][]string),
	}
}

// AddNode adds a node to the graph, replacing the data of an existing node.
func (g *Graph[T]) AddNode(id string, data T) {
	if _, exists := g.nodes[id]; !exists {
		g.edges[id] = []string{}
	}
	g.nodes[id] = data
}

// AddEdge adds a directed edge from parent to child (child depends on
// parent). Both nodes must exist and self-loops are rejected; duplicate edges
// are ignored.
func (g *Graph[T]) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return fmt.Errorf("child node %q does not exist", childID)
	}
	if parentID == childID {
		return fmt.Errorf("self-loop detected: %s", parentID)
	}

	if !slices.Contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	return nil
}

// HasCycle reports whether the graph contains a cycle, along with the cycle
// path when one exists.
func (g *Graph[T]) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				// Found a cycle; reconstruct its path.
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	ids := g.sortedIDs()
	for _, id := range ids {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

// sortedIDs returns all node IDs sorted for deterministic traversal.
func (g *Graph[T]) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
