// Package graph implements a small state-graph workflow engine. A graph is a
// set of named nodes connected by static, conditional, or dispatch edges.
// Execution proceeds in supersteps: every node on the current frontier runs
// concurrently, the partial updates are merged into the shared state through
// per-key reducers, and the merged state selects the next frontier.
package graph

import (
	"context"
	"fmt"
	"maps"
)

const (
	// Start is the virtual entry node every graph must connect from.
	Start = "__start__"
	// End is the virtual exit node. Routing to End removes a branch from
	// the frontier.
	End = "__end__"
)

// State is the shared graph state. Nodes receive a snapshot and return a
// partial update.
type State map[string]any

// Clone returns a shallow copy of the state.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	return maps.Clone(s)
}

// NodeFunc is the unit of work at a node. It must not mutate the passed
// state; changes are returned as a partial update.
type NodeFunc func(ctx context.Context, state State) (State, error)

// RouterFunc selects the next node after a conditional edge. It may return
// End to finish the branch.
type RouterFunc func(ctx context.Context, state State) (string, error)

// Send targets a node with its own private input state, independent of the
// shared state. Used for map-style fan-out where one node instance runs per
// work item.
type Send struct {
	Node  string
	State State
}

// SenderFunc produces the Send fan-out after a dispatch edge.
type SenderFunc func(ctx context.Context, state State) ([]Send, error)

// Reducer merges a node's partial update for one key into the current value.
type Reducer func(current, update any) any

// Append accumulates updates into a slice. A non-slice update is appended as
// a single element; a slice update is concatenated.
func Append(current, update any) any {
	out, _ := current.([]any)

	if items, ok := update.([]any); ok {
		return append(out, items...)
	}
	return append(out, update)
}

// StateGraph builds a workflow graph. Zero value is not usable; call
// NewStateGraph.
type StateGraph struct {
	nodes    map[string]NodeFunc
	edges    map[string][]string
	routers  map[string]RouterFunc
	senders  map[string]SenderFunc
	reducers map[string]Reducer
}

// NewStateGraph creates an empty graph builder.
func NewStateGraph() *StateGraph {
	return &StateGraph{
		nodes:    map[string]NodeFunc{},
		edges:    map[string][]string{},
		routers:  map[string]RouterFunc{},
		senders:  map[string]SenderFunc{},
		reducers: map[string]Reducer{},
	}
}

// AddNode registers a named node. Registering the same name twice replaces
// the previous function.
func (g *StateGraph) AddNode(name string, fn NodeFunc) *StateGraph {
	g.nodes[name] = fn
	return g
}

// AddEdge adds a static edge. Multiple edges from the same node fan out to
// all targets in the same superstep.
func (g *StateGraph) AddEdge(from, to string) *StateGraph {
	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdges routes from a node through a router function evaluated
// against the merged state.
func (g *StateGraph) AddConditionalEdges(from string, router RouterFunc) *StateGraph {
	g.routers[from] = router
	return g
}

// AddDispatchEdges fans out from a node into per-item Send tasks.
func (g *StateGraph) AddDispatchEdges(from string, sender SenderFunc) *StateGraph {
	g.senders[from] = sender
	return g
}

// WithReducer installs a merge function for one state key. Keys without a
// reducer are overwritten on merge.
func (g *StateGraph) WithReducer(key string, reducer Reducer) *StateGraph {
	g.reducers[key] = reducer
	return g
}

// Compile validates the topology and returns an executable graph.
func (g *StateGraph) Compile(optFns ...func(o *Options)) (*Runnable, error) {
	if len(g.nodes) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}

	if len(g.edges[Start]) == 0 && g.routers[Start] == nil {
		return nil, fmt.Errorf("graph has no entry edge from Start")
	}

	for from, targets := range g.edges {
		if err := g.checkSource(from); err != nil {
			return nil, err
		}
		for _, to := range targets {
			if to != End && g.nodes[to] == nil {
				return nil, fmt.Errorf("edge %s -> %s references unknown node", from, to)
			}
		}
	}

	for from := range g.routers {
		if err := g.checkSource(from); err != nil {
			return nil, err
		}
	}

	for from := range g.senders {
		if err := g.checkSource(from); err != nil {
			return nil, err
		}
		if g.routers[from] != nil {
			return nil, fmt.Errorf("node %s has both conditional and dispatch edges", from)
		}
	}

	opts := Options{
		MaxSteps: DefaultMaxSteps,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return newRunnable(g, opts), nil
}

func (g *StateGraph) checkSource(from string) error {
	if from != Start && g.nodes[from] == nil {
		return fmt.Errorf("edge source %s references unknown node", from)
	}
	return nil
}
