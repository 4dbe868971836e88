package graph

// Order produces a topological ordering of the graph: every node appears
// after all of its declared dependencies. Ties between mutually independent
// nodes are broken by insertion order, so the result is deterministic for a
// given construction sequence.
//
// It returns a *MissingDependencyError if any edge references an id that was
// never added, and a *CyclicDependencyError if the graph contains a cycle.
// Validation runs before traversal, so a malformed graph is always rejected
// as a whole.
func (g *Graph) Order() ([]string, error) {
	for _, id := range g.order {
		for _, dep := range g.deps[id] {
			if _, ok := g.deps[dep]; !ok {
				return nil, &MissingDependencyError{Node: id, Missing: dep}
			}
		}
	}

	// Classic depth-first search with three node states:
	// visiting: nodes on the current recursion stack.
	// visited: nodes fully processed and already emitted.
	// Everything else is untouched.
	visiting := make(map[string]bool, len(g.order))
	visited := make(map[string]bool, len(g.order))
	out := make([]string, 0, len(g.order))

	var visit func(id string) error
	visit = func(id string) error {
		visiting[id] = true
		for _, dep := range g.deps[id] {
			if visiting[dep] {
				// A dependency still on the recursion stack means we walked
				// back into the current path.
				return &CyclicDependencyError{Node: dep}
			}
			if !visited[dep] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, id)
		visited[id] = true
		out = append(out, id)
		return nil
	}

	for _, id := range g.order {
		if !visited[id] {
			if err := visit(id); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
