package graph

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/hupe1980/agentacademy/logging"
)

// DefaultMaxSteps bounds the number of supersteps a run may take. Cyclic
// graphs that never route to End fail instead of spinning forever.
const DefaultMaxSteps = 50

// Options configure a compiled graph.
type Options struct {
	MaxSteps int
	Logger   logging.Logger
}

// Runnable is a compiled, executable graph. It is safe for concurrent use;
// each invocation carries its own state.
type Runnable struct {
	nodes    map[string]NodeFunc
	edges    map[string][]string
	routers  map[string]RouterFunc
	senders  map[string]SenderFunc
	reducers map[string]Reducer
	maxSteps int
	logger   logging.Logger
}

func newRunnable(g *StateGraph, opts Options) *Runnable {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	return &Runnable{
		nodes:    maps.Clone(g.nodes),
		edges:    maps.Clone(g.edges),
		routers:  maps.Clone(g.routers),
		senders:  maps.Clone(g.senders),
		reducers: maps.Clone(g.reducers),
		maxSteps: maxSteps,
		logger:   logger,
	}
}

// StreamEvent reports graph progress. Node events carry the partial update a
// node produced; the final event has Done set and State holding the merged
// result.
type StreamEvent struct {
	Step   int
	Node   string
	Update State
	Done   bool
	State  State
	Err    error
}

// task is one scheduled node execution. overlay is non-nil for Send tasks,
// which run against their private state instead of the shared snapshot.
type task struct {
	node    string
	overlay State
	seq     int
}

type taskResult struct {
	task   task
	update State
	err    error
}

// Invoke runs the graph to completion and returns the final state.
func (r *Runnable) Invoke(ctx context.Context, initial State) (State, error) {
	return r.run(ctx, initial, nil)
}

// Stream runs the graph in a goroutine and emits one event per node update
// plus a terminal event. The channel is closed when the run finishes.
func (r *Runnable) Stream(ctx context.Context, initial State) <-chan StreamEvent {
	events := make(chan StreamEvent, 16)

	go func() {
		defer close(events)

		final, err := r.run(ctx, initial, func(ev StreamEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})

		ev := StreamEvent{Done: true, State: final, Err: err}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}()

	return events
}

func (r *Runnable) run(ctx context.Context, initial State, emit func(StreamEvent)) (State, error) {
	state := initial.Clone()

	frontier, err := r.successors(ctx, Start, state, 0)
	if err != nil {
		return state, err
	}

	for step := 1; len(frontier) > 0; step++ {
		if step > r.maxSteps {
			return state, fmt.Errorf("graph exceeded %d supersteps", r.maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		r.logger.Debug("graph.step", "step", step, "frontier", len(frontier))

		results, err := r.runStep(ctx, frontier, state)
		if err != nil {
			return state, err
		}

		for _, res := range results {
			r.mergeUpdate(state, res.update)
			if emit != nil {
				emit(StreamEvent{Step: step, Node: res.task.node, Update: res.update})
			}
		}

		frontier, err = r.nextFrontier(ctx, results, state)
		if err != nil {
			return state, err
		}
	}

	return state, nil
}

// runStep executes all frontier tasks concurrently and returns their results
// ordered by node name, then scheduling order, so merging is deterministic.
func (r *Runnable) runStep(ctx context.Context, frontier []task, state State) ([]taskResult, error) {
	snapshot := state.Clone()
	results := make([]taskResult, len(frontier))

	var wg sync.WaitGroup
	for i, t := range frontier {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()

			input := snapshot
			if t.overlay != nil {
				input = t.overlay
			}

			update, err := r.nodes[t.node](ctx, input)
			if err != nil {
				err = fmt.Errorf("node %s: %w", t.node, err)
			}
			results[i] = taskResult{task: t, update: update, err: err}
		}(i, t)
	}
	wg.Wait()

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].task.node != results[b].task.node {
			return results[a].task.node < results[b].task.node
		}
		return results[a].task.seq < results[b].task.seq
	})

	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
	}

	return results, nil
}

func (r *Runnable) mergeUpdate(state State, update State) {
	keys := make([]string, 0, len(update))
	for k := range update {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if reducer, ok := r.reducers[k]; ok {
			state[k] = reducer(state[k], update[k])
			continue
		}
		state[k] = update[k]
	}
}

// nextFrontier resolves the successors of every node that just ran. Static
// targets are deduplicated so join nodes execute once per superstep; Send
// tasks are never deduplicated.
func (r *Runnable) nextFrontier(ctx context.Context, results []taskResult, state State) ([]task, error) {
	var frontier []task
	seen := map[string]bool{}
	resolved := map[string]bool{}
	seq := 0

	for _, res := range results {
		node := res.task.node
		if resolved[node] {
			continue
		}
		resolved[node] = true

		succ, err := r.successors(ctx, node, state, seq)
		if err != nil {
			return nil, err
		}

		for _, t := range succ {
			if t.overlay == nil {
				if seen[t.node] {
					continue
				}
				seen[t.node] = true
			}
			t.seq = seq
			seq++
			frontier = append(frontier, t)
		}
	}

	return frontier, nil
}

func (r *Runnable) successors(ctx context.Context, node string, state State, seq int) ([]task, error) {
	if sender, ok := r.senders[node]; ok {
		sends, err := sender(ctx, state)
		if err != nil {
			return nil, fmt.Errorf("dispatch from %s: %w", node, err)
		}

		tasks := make([]task, 0, len(sends))
		for _, s := range sends {
			if r.nodes[s.Node] == nil {
				return nil, fmt.Errorf("dispatch from %s targets unknown node %s", node, s.Node)
			}
			overlay := s.State
			if overlay == nil {
				overlay = State{}
			}
			tasks = append(tasks, task{node: s.Node, overlay: overlay, seq: seq})
			seq++
		}
		return tasks, nil
	}

	if router, ok := r.routers[node]; ok {
		target, err := router(ctx, state)
		if err != nil {
			return nil, fmt.Errorf("route from %s: %w", node, err)
		}
		if target == End {
			return nil, nil
		}
		if r.nodes[target] == nil {
			return nil, fmt.Errorf("route from %s targets unknown node %s", node, target)
		}
		return []task{{node: target, seq: seq}}, nil
	}

	var tasks []task
	for _, to := range r.edges[node] {
		if to == End {
			continue
		}
		tasks = append(tasks, task{node: to, seq: seq})
		seq++
	}
	return tasks, nil
}
