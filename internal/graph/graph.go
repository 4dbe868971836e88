package graph

import "fmt"

// Graph is a collection of named nodes and their declared dependency edges.
// Insertion order is preserved so that mutually independent nodes sort
// stably rather than arbitrarily.
type Graph struct {
	// order records node ids in the order they were added.
	order []string
	// deps maps a node id to the ids it depends on, in declaration order.
	deps map[string][]string
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		deps: make(map[string][]string),
	}
}

// Add registers a node with the given id and its dependency edges. Adding
// the same id twice is a definition error.
func (g *Graph) Add(id string, deps ...string) error {
	if _, exists := g.deps[id]; exists {
		return fmt.Errorf("%w: '%s'", ErrDuplicateNode, id)
	}
	g.order = append(g.order, id)
	g.deps[id] = append([]string(nil), deps...)
	return nil
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// Contains reports whether a node with the given id has been registered.
func (g *Graph) Contains(id string) bool {
	_, ok := g.deps[id]
	return ok
}

// Dependencies returns the declared dependency ids of a node, in
// declaration order. The returned slice is a copy.
func (g *Graph) Dependencies(id string) []string {
	return append([]string(nil), g.deps[id]...)
}

// Dependents returns the ids of nodes that declare a dependency on id,
// in insertion order.
func (g *Graph) Dependents(id string) []string {
	var out []string
	for _, candidate := range g.order {
		for _, dep := range g.deps[candidate] {
			if dep == id {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}
