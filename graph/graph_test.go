package graph

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendNode(text string) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		current, _ := state["graph_state"].(string)
		return State{"graph_state": current + text}, nil
	}
}

func TestInvokeSequential(t *testing.T) {
	g := NewStateGraph().
		AddNode("one", appendNode(" I am")).
		AddNode("two", appendNode(" happy :)")).
		AddEdge(Start, "one").
		AddEdge("one", "two").
		AddEdge("two", End)

	runnable, err := g.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), State{"graph_state": "Hello, I am Tom."})
	require.NoError(t, err)

	assert.Equal(t, "Hello, I am Tom. I am happy :)", final["graph_state"])
}

func TestInvokeConditional(t *testing.T) {
	g := NewStateGraph().
		AddNode("one", appendNode(" I am")).
		AddNode("happy", appendNode(" happy :)")).
		AddNode("sad", appendNode(" sad :(")).
		AddEdge(Start, "one").
		AddConditionalEdges("one", func(ctx context.Context, state State) (string, error) {
			return "happy", nil
		}).
		AddEdge("happy", End).
		AddEdge("sad", End)

	runnable, err := g.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), State{"graph_state": "Hi."})
	require.NoError(t, err)

	assert.Equal(t, "Hi. I am happy :)", final["graph_state"])
}

func TestParallelFanOutMergesInNodeNameOrder(t *testing.T) {
	value := func(v string) NodeFunc {
		return func(ctx context.Context, state State) (State, error) {
			return State{"values": []any{v}}, nil
		}
	}

	g := NewStateGraph().
		AddNode("a", value("I am A")).
		AddNode("b", value("I am B")).
		AddNode("c", value("I am C")).
		AddNode("d", value("I am D")).
		WithReducer("values", Append).
		AddEdge(Start, "a").
		AddEdge("a", "b").
		AddEdge("a", "c").
		AddEdge("b", "d").
		AddEdge("c", "d").
		AddEdge("d", End)

	runnable, err := g.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), State{})
	require.NoError(t, err)

	assert.Equal(t, []any{"I am A", "I am B", "I am C", "I am D"}, final["values"])
}

func TestJoinNodeRunsOncePerSuperstep(t *testing.T) {
	var joins int32

	pass := func(ctx context.Context, state State) (State, error) { return nil, nil }

	g := NewStateGraph().
		AddNode("left", pass).
		AddNode("right", pass).
		AddNode("join", func(ctx context.Context, state State) (State, error) {
			atomic.AddInt32(&joins, 1)
			return nil, nil
		}).
		AddEdge(Start, "left").
		AddEdge(Start, "right").
		AddEdge("left", "join").
		AddEdge("right", "join").
		AddEdge("join", End)

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), State{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), joins)
}

func TestDispatchMapReduce(t *testing.T) {
	g := NewStateGraph().
		AddNode("topics", func(ctx context.Context, state State) (State, error) {
			return State{"subjects": []any{"cats", "dogs", "birds"}}, nil
		}).
		AddNode("joke", func(ctx context.Context, state State) (State, error) {
			return State{"jokes": []any{fmt.Sprintf("joke about %s", state["subject"])}}, nil
		}).
		AddNode("best", func(ctx context.Context, state State) (State, error) {
			jokes := state["jokes"].([]any)
			return State{"best": jokes[0]}, nil
		}).
		WithReducer("jokes", Append).
		AddEdge(Start, "topics").
		AddDispatchEdges("topics", func(ctx context.Context, state State) ([]Send, error) {
			var sends []Send
			for _, s := range state["subjects"].([]any) {
				sends = append(sends, Send{Node: "joke", State: State{"subject": s}})
			}
			return sends, nil
		}).
		AddEdge("joke", "best").
		AddEdge("best", End)

	runnable, err := g.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), State{})
	require.NoError(t, err)

	assert.Equal(t, []any{"joke about cats", "joke about dogs", "joke about birds"}, final["jokes"])
	assert.Equal(t, "joke about cats", final["best"])
}

func TestStream(t *testing.T) {
	g := NewStateGraph().
		AddNode("one", appendNode("a")).
		AddNode("two", appendNode("b")).
		AddEdge(Start, "one").
		AddEdge("one", "two").
		AddEdge("two", End)

	runnable, err := g.Compile()
	require.NoError(t, err)

	var nodes []string
	var final State
	for ev := range runnable.Stream(context.Background(), State{"graph_state": ""}) {
		if ev.Done {
			require.NoError(t, ev.Err)
			final = ev.State
			continue
		}
		nodes = append(nodes, ev.Node)
	}

	assert.Equal(t, []string{"one", "two"}, nodes)
	assert.Equal(t, "ab", final["graph_state"])
}

func TestSuperstepLimit(t *testing.T) {
	g := NewStateGraph().
		AddNode("loop", func(ctx context.Context, state State) (State, error) {
			return nil, nil
		}).
		AddEdge(Start, "loop").
		AddEdge("loop", "loop")

	runnable, err := g.Compile(func(o *Options) { o.MaxSteps = 5 })
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), State{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 5 supersteps")
}

func TestNodeErrorStopsRun(t *testing.T) {
	g := NewStateGraph().
		AddNode("boom", func(ctx context.Context, state State) (State, error) {
			return nil, errors.New("kaput")
		}).
		AddEdge(Start, "boom").
		AddEdge("boom", End)

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), State{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node boom: kaput")
}

func TestCompileValidation(t *testing.T) {
	_, err := NewStateGraph().Compile()
	require.Error(t, err)

	_, err = NewStateGraph().
		AddNode("a", appendNode("x")).
		Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry edge")

	_, err = NewStateGraph().
		AddNode("a", appendNode("x")).
		AddEdge(Start, "a").
		AddEdge("a", "missing").
		Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node")
}

func TestRouterUnknownTarget(t *testing.T) {
	g := NewStateGraph().
		AddNode("a", appendNode("x")).
		AddEdge(Start, "a").
		AddConditionalEdges("a", func(ctx context.Context, state State) (string, error) {
			return "nowhere", nil
		})

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), State{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node nowhere")
}

func TestInitialStateNotMutated(t *testing.T) {
	g := NewStateGraph().
		AddNode("one", appendNode("!")).
		AddEdge(Start, "one").
		AddEdge("one", End)

	runnable, err := g.Compile()
	require.NoError(t, err)

	initial := State{"graph_state": "hi"}
	_, err = runnable.Invoke(context.Background(), initial)
	require.NoError(t, err)

	assert.Equal(t, "hi", initial["graph_state"])
}
