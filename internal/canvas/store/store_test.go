package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markus41/flowcanvas/internal/canvas/core"
)

func newTestStore(opts ...Option) *Store {
	seq := 0
	gen := func() string {
		seq++
		return fmt.Sprintf("gen-%d", seq)
	}
	return New(append([]Option{WithIDGenerator(gen)}, opts...)...)
}

func node(id string, x, y float64) core.Node {
	return core.Node{ID: id, Type: "task", Position: core.Position{X: x, Y: y}}
}

func edge(id, source, target string) core.Edge {
	return core.Edge{ID: id, Source: source, Target: target}
}

func nodeIDs(nodes []core.Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestAddNode(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("a", 10, 20))
	s.AddNode(node("b", 30, 40))

	nodes := s.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0].ID)
	assert.Equal(t, core.Position{X: 30, Y: 40}, nodes[1].Position)
	assert.True(t, s.CanUndo())
}

func TestUpdateNode(t *testing.T) {
	t.Run("merges only the patched fields", func(t *testing.T) {
		s := newTestStore()
		s.AddNode(node("a", 10, 20))

		newType := "decision"
		s.UpdateNode("a", NodePatch{Type: &newType})

		nodes := s.Nodes()
		require.Len(t, nodes, 1)
		assert.Equal(t, "decision", nodes[0].Type)
		assert.Equal(t, core.Position{X: 10, Y: 20}, nodes[0].Position)
	})

	t.Run("replaces data wholesale", func(t *testing.T) {
		s := newTestStore()
		n := node("a", 0, 0)
		n.Data = map[string]any{"keep": "me"}
		s.AddNode(n)

		s.UpdateNode("a", NodePatch{Data: map[string]any{"fresh": true}})

		nodes := s.Nodes()
		assert.Equal(t, map[string]any{"fresh": true}, nodes[0].Data)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		s := newTestStore()
		s.AddNode(node("a", 0, 0))
		past, _ := s.HistoryDepth()

		newType := "x"
		s.UpdateNode("missing", NodePatch{Type: &newType})

		after, _ := s.HistoryDepth()
		assert.Equal(t, past, after, "a no-op must not record history")
		assert.Equal(t, "task", s.Nodes()[0].Type)
	})
}

func TestUpdateNodePosition(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("a", 0, 0))
	past, _ := s.HistoryDepth()

	s.UpdateNodePosition("a", core.Position{X: 99, Y: 100})

	after, _ := s.HistoryDepth()
	assert.Equal(t, past, after, "position updates bypass history")
	assert.Equal(t, core.Position{X: 99, Y: 100}, s.Nodes()[0].Position)

	s.UpdateNodePosition("missing", core.Position{X: 1, Y: 1})
	require.Len(t, s.Nodes(), 1)
}

func TestUpdateNodeData(t *testing.T) {
	s := newTestStore()
	n := node("a", 0, 0)
	n.Data = map[string]any{"retries": 3, "name": "fetch"}
	s.AddNode(n)

	s.UpdateNodeData("a", map[string]any{"retries": 5, "timeout": 30})

	data := s.Nodes()[0].Data
	assert.Equal(t, 5, data["retries"])
	assert.Equal(t, "fetch", data["name"])
	assert.Equal(t, 30, data["timeout"])
}

func TestDeleteNodesCascadesEdges(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("a", 0, 0))
	s.AddNode(node("b", 0, 0))
	s.AddNode(node("c", 0, 0))
	s.AddEdge(edge("ab", "a", "b"))
	s.AddEdge(edge("bc", "b", "c"))
	s.SelectNode("b", false)

	s.DeleteNodes([]string{"b"})

	assert.Equal(t, []string{"a", "c"}, nodeIDs(s.Nodes()))
	assert.Empty(t, s.Edges(), "every edge touching a deleted node must go with it")
	assert.Empty(t, s.SelectedNodes())
}

func TestNoDanglingEdges(t *testing.T) {
	s := newTestStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		s.AddNode(node(id, 0, 0))
	}
	s.AddEdge(edge("ab", "a", "b"))
	s.AddEdge(edge("cd", "c", "d"))
	s.AddEdge(edge("bd", "b", "d"))

	s.DeleteNode("a")
	s.DeleteNodes([]string{"c", "d"})

	remaining := make(map[string]bool)
	for _, n := range s.Nodes() {
		remaining[n.ID] = true
	}
	for _, e := range s.Edges() {
		assert.True(t, remaining[e.Source], "edge %s has dangling source", e.ID)
		assert.True(t, remaining[e.Target], "edge %s has dangling target", e.ID)
	}
}

func TestAddEdgeRejectsDuplicates(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("a", 0, 0))
	s.AddNode(node("b", 0, 0))

	s.AddEdge(edge("e1", "a", "b"))
	s.AddEdge(edge("e2", "a", "b"))
	require.Len(t, s.Edges(), 1, "identical (source,target,handles) tuple must not coexist")

	different := edge("e3", "a", "b")
	different.SourceHandle = "out-2"
	s.AddEdge(different)
	assert.Len(t, s.Edges(), 2, "a different handle is a different edge")

	past, _ := s.HistoryDepth()
	s.AddEdge(edge("e4", "a", "b"))
	after, _ := s.HistoryDepth()
	assert.Equal(t, past, after, "duplicate skip must not record history")
}

func TestDeleteEdges(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("a", 0, 0))
	s.AddNode(node("b", 0, 0))
	s.AddNode(node("c", 0, 0))
	s.AddEdge(edge("ab", "a", "b"))
	s.AddEdge(edge("bc", "b", "c"))
	s.SelectEdge("ab", false)

	s.DeleteEdge("ab")

	require.Len(t, s.Edges(), 1)
	assert.Equal(t, "bc", s.Edges()[0].ID)
	assert.Empty(t, s.SelectedEdges())

	s.DeleteEdges([]string{"missing"})
	assert.Len(t, s.Edges(), 1)
}

func TestSelection(t *testing.T) {
	setup := func() *Store {
		s := newTestStore()
		s.AddNode(node("a", 0, 0))
		s.AddNode(node("b", 0, 0))
		s.AddEdge(edge("ab", "a", "b"))
		return s
	}

	t.Run("single select clears the other kind", func(t *testing.T) {
		s := setup()
		s.SelectEdge("ab", false)
		s.SelectNode("a", false)

		assert.Equal(t, []string{"a"}, s.SelectedNodes())
		assert.Empty(t, s.SelectedEdges())
	})

	t.Run("multi select appends within the same kind", func(t *testing.T) {
		s := setup()
		s.SelectEdge("ab", false)
		s.SelectNode("a", true)
		s.SelectNode("b", true)
		s.SelectNode("b", true)

		assert.Equal(t, []string{"a", "b"}, s.SelectedNodes())
		assert.Equal(t, []string{"ab"}, s.SelectedEdges(), "multi-select must not clear the other kind")
	})

	t.Run("selected flags track the lists", func(t *testing.T) {
		s := setup()
		s.SelectNode("a", false)

		for _, n := range s.Nodes() {
			assert.Equal(t, n.ID == "a", n.Selected)
		}

		s.ClearSelection()
		for _, n := range s.Nodes() {
			assert.False(t, n.Selected)
		}
		for _, e := range s.Edges() {
			assert.False(t, e.Selected)
		}
	})

	t.Run("select all", func(t *testing.T) {
		s := setup()
		s.SelectAll()

		assert.Len(t, s.SelectedNodes(), 2)
		assert.Len(t, s.SelectedEdges(), 1)
		for _, n := range s.Nodes() {
			assert.True(t, n.Selected)
		}
		for _, e := range s.Edges() {
			assert.True(t, e.Selected)
		}
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		s := setup()
		s.SelectNode("missing", false)
		assert.Empty(t, s.SelectedNodes())
	})
}

func TestCopyInducedSubgraph(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("a", 0, 0))
	s.AddNode(node("b", 0, 0))
	s.AddNode(node("c", 0, 0))
	s.AddEdge(edge("ab", "a", "b"))
	s.AddEdge(edge("bc", "b", "c"))

	s.SelectNode("a", true)
	s.SelectNode("b", true)
	s.Copy()

	nodes, edges := s.ClipboardSize()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 1, edges, "only edges with both endpoints selected are copied")
}

func TestPaste(t *testing.T) {
	setup := func() *Store {
		s := newTestStore()
		s.AddNode(node("a", 10, 10))
		s.AddNode(node("b", 20, 20))
		s.AddEdge(edge("ab", "a", "b"))
		s.SelectAll()
		s.Copy()
		return s
	}

	t.Run("ids never collide with originals", func(t *testing.T) {
		s := setup()
		s.Paste(nil)

		nodes := s.Nodes()
		require.Len(t, nodes, 4)
		original := map[string]bool{"a": true, "b": true}
		pasted := make(map[string]bool)
		for _, n := range nodes[2:] {
			assert.False(t, original[n.ID], "pasted node reused an original id")
			pasted[n.ID] = true
		}

		edges := s.Edges()
		require.Len(t, edges, 2)
		assert.True(t, pasted[edges[1].Source], "pasted edge must point into the pasted set")
		assert.True(t, pasted[edges[1].Target], "pasted edge must point into the pasted set")
	})

	t.Run("default offset is 50,50", func(t *testing.T) {
		s := setup()
		s.Paste(nil)

		nodes := s.Nodes()
		assert.Equal(t, core.Position{X: 60, Y: 60}, nodes[2].Position)
		assert.Equal(t, core.Position{X: 70, Y: 70}, nodes[3].Position)
	})

	t.Run("explicit offset", func(t *testing.T) {
		s := setup()
		s.Paste(&core.Position{X: 100, Y: 0})

		assert.Equal(t, core.Position{X: 110, Y: 10}, s.Nodes()[2].Position)
	})

	t.Run("pasted set becomes the selection", func(t *testing.T) {
		s := setup()
		s.Paste(nil)

		selected := s.SelectedNodes()
		require.Len(t, selected, 2)
		assert.NotContains(t, selected, "a")
		assert.NotContains(t, selected, "b")
		assert.Len(t, s.SelectedEdges(), 1)
	})

	t.Run("empty clipboard is a no-op", func(t *testing.T) {
		s := newTestStore()
		s.AddNode(node("a", 0, 0))
		past, _ := s.HistoryDepth()

		s.Paste(nil)

		after, _ := s.HistoryDepth()
		assert.Equal(t, past, after)
		assert.Len(t, s.Nodes(), 1)
	})
}

func TestCut(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("a", 0, 0))
	s.AddNode(node("b", 0, 0))
	s.AddEdge(edge("ab", "a", "b"))
	s.SelectNode("a", false)

	s.Cut()

	assert.Equal(t, []string{"b"}, nodeIDs(s.Nodes()))
	assert.Empty(t, s.Edges())

	s.Paste(nil)
	assert.Len(t, s.Nodes(), 2, "cut content can be pasted back")
}

func TestUndoRedo(t *testing.T) {
	t.Run("undo immediately after an operation restores the prior graph", func(t *testing.T) {
		s := newTestStore()
		s.AddNode(node("a", 0, 0))
		s.AddNode(node("b", 0, 0))

		require.True(t, s.Undo())
		assert.Equal(t, []string{"a"}, nodeIDs(s.Nodes()))

		require.True(t, s.Redo())
		assert.Equal(t, []string{"a", "b"}, nodeIDs(s.Nodes()))
	})

	t.Run("undo drops selection", func(t *testing.T) {
		s := newTestStore()
		s.AddNode(node("a", 0, 0))
		s.AddNode(node("b", 0, 0))
		s.SelectNode("a", false)

		s.Undo()

		assert.Empty(t, s.SelectedNodes())
		for _, n := range s.Nodes() {
			assert.False(t, n.Selected)
		}
	})

	t.Run("new mutation after undo empties the redo stack", func(t *testing.T) {
		s := newTestStore()
		s.AddNode(node("a", 0, 0))
		s.AddNode(node("b", 0, 0))

		s.Undo()
		require.True(t, s.CanRedo())

		s.AddNode(node("c", 0, 0))
		assert.False(t, s.CanRedo())
		assert.False(t, s.Redo())
		assert.Equal(t, []string{"a", "c"}, nodeIDs(s.Nodes()))
	})

	t.Run("undo and redo on empty stacks are no-ops", func(t *testing.T) {
		s := newTestStore()
		assert.False(t, s.Undo())
		assert.False(t, s.Redo())
		assert.False(t, s.CanUndo())
		assert.False(t, s.CanRedo())
	})

	t.Run("earlier snapshots survive later mutations", func(t *testing.T) {
		s := newTestStore()
		s.AddNode(node("a", 0, 0))
		s.AddNode(node("b", 0, 0))
		s.Undo()
		s.AddNode(node("c", 0, 0))
		s.Undo()
		s.Undo()
		assert.Empty(t, s.Nodes())

		s.Redo()
		assert.Equal(t, []string{"a"}, nodeIDs(s.Nodes()))
		s.Redo()
		assert.Equal(t, []string{"a", "c"}, nodeIDs(s.Nodes()))
	})
}

func TestHistoryBounded(t *testing.T) {
	s := newTestStore(WithHistoryLimit(3))
	for i := 0; i < 10; i++ {
		s.AddNode(node(fmt.Sprintf("n%d", i), 0, 0))
	}

	undos := 0
	for s.Undo() {
		undos++
	}
	assert.Equal(t, 3, undos)
	assert.Len(t, s.Nodes(), 7, "only the capped number of mutations can be unwound")
}

func TestClearHistory(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("a", 0, 0))
	s.Undo()
	require.True(t, s.CanRedo())

	s.Redo()
	s.ClearHistory()

	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.Len(t, s.Nodes(), 1, "clearing history must not touch the document")
}

func TestReplaceNodesAndEdges(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("a", 0, 0))
	s.AddNode(node("b", 0, 0))
	s.AddEdge(edge("ab", "a", "b"))
	s.SelectNode("a", false)

	s.ReplaceNodesAndEdges(
		[]core.Node{node("a", 5, 5), node("x", 1, 1)},
		[]core.Edge{edge("ax", "a", "x")},
	)

	assert.Equal(t, []string{"a", "x"}, nodeIDs(s.Nodes()))
	assert.Equal(t, []string{"a"}, s.SelectedNodes(), "surviving ids stay selected")

	s.Undo()
	assert.Equal(t, []string{"a", "b"}, nodeIDs(s.Nodes()))
}

func TestSetWorkflow(t *testing.T) {
	s := newTestStore()
	s.AddNode(node("old", 0, 0))

	wf := core.NewWorkflow()
	wf.Nodes = []core.Node{node("fresh", 1, 1)}
	s.SetWorkflow(wf)

	assert.Equal(t, []string{"fresh"}, nodeIDs(s.Nodes()))
	assert.False(t, s.CanUndo(), "loading a document resets history")
	assert.Empty(t, s.SelectedNodes())
}

func TestUpdateCanvasSettings(t *testing.T) {
	s := newTestStore()
	zoom := 2.5
	snap := true

	s.UpdateCanvasSettings(CanvasSettingsPatch{Zoom: &zoom, SnapToGrid: &snap})

	cs := s.CanvasSettings()
	assert.Equal(t, 2.5, cs.Zoom)
	assert.True(t, cs.SnapToGrid)
	assert.Equal(t, 20.0, cs.GridSize, "unpatched fields keep their values")
	assert.False(t, s.CanUndo(), "view state is not history-tracked")
}

func TestEvents(t *testing.T) {
	var events []Event
	s := newTestStore(WithEventEmitter(func(e Event) { events = append(events, e) }))

	s.AddNode(node("a", 0, 0))
	s.AddNode(node("b", 0, 0))
	s.AddEdge(edge("ab", "a", "b"))
	s.DeleteNode("a")
	s.Undo()

	var types []string
	for _, e := range events {
		types = append(types, e.Type)
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}
	assert.Equal(t, []string{
		EventNodeAdded, EventNodeAdded, EventEdgeAdded,
		EventNodeDeleted, EventEdgeDeleted, EventHistoryUndo,
	}, types)
}

func TestWorkflowAccessorIsACopy(t *testing.T) {
	s := newTestStore()
	n := node("a", 0, 0)
	n.Data = map[string]any{"k": "v"}
	s.AddNode(n)

	wf := s.Workflow()
	wf.Nodes[0].ID = "mutated"
	wf.Nodes[0].Data["k"] = "mutated"

	assert.Equal(t, "a", s.Nodes()[0].ID)
	assert.Equal(t, "v", s.Nodes()[0].Data["k"])
}
