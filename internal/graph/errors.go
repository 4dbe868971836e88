package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching across package boundaries.
var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrCyclicDependency  = errors.New("cyclic dependency")
	ErrDuplicateNode     = errors.New("duplicate node")
)

// MissingDependencyError reports an edge that references a node id not
// present in the graph.
type MissingDependencyError struct {
	Node    string // the node declaring the edge
	Missing string // the id the edge points at
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("node '%s' depends on undeclared node '%s'", e.Node, e.Missing)
}

func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }

// CyclicDependencyError names one node on a detected dependency cycle.
type CyclicDependencyError struct {
	Node string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cycle detected involving node '%s'", e.Node)
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }
