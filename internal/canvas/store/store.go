// Package store implements the workflow document store: node and edge
// mutations, selection, clipboard, and undo/redo over a single workflow.
//
// Every structural mutation snapshots the pre-mutation graph into a
// bounded history log and installs freshly allocated node/edge slices, so
// the top-level document is never reference-equal across mutations and
// earlier snapshots stay valid. Position updates and canvas settings
// bypass history. Lookups by an unknown id are silent no-ops; UI races
// such as deleting a node mid-drag must not crash the editor.
package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/markus41/flowcanvas/internal/canvas/core"
	"github.com/markus41/flowcanvas/internal/canvas/history"
)

// Store owns one workflow document for the duration of an editing
// session. It is safe for concurrent use; all operations run to
// completion under the store's lock.
type Store struct {
	mu            sync.RWMutex
	wf            core.Workflow
	log           *history.Log
	selectedNodes []string
	selectedEdges []string
	clipNodes     []core.Node
	clipEdges     []core.Edge
	emit          EventEmitter
	newID         func() string
	historyLimit  int
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithHistoryLimit caps the undo stack at n snapshots.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.historyLimit = n }
}

// WithEventEmitter registers a callback invoked after each mutation
// commits. The callback runs under the store lock and must not call back
// into the store.
func WithEventEmitter(fn EventEmitter) Option {
	return func(s *Store) { s.emit = fn }
}

// WithIDGenerator overrides the id generator used for paste remapping.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates a store holding an empty workflow.
func New(opts ...Option) *Store {
	s := &Store{
		wf:    core.NewWorkflow(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = history.NewLog(s.historyLimit)
	return s
}

// Workflow returns a copy of the current document.
func (s *Store) Workflow() core.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CloneWorkflow(s.wf)
}

// Nodes returns a copy of the current node list.
func (s *Store) Nodes() []core.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CloneNodes(s.wf.Nodes)
}

// Edges returns a copy of the current edge list.
func (s *Store) Edges() []core.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CloneEdges(s.wf.Edges)
}

// CanvasSettings returns the current viewport settings.
func (s *Store) CanvasSettings() core.CanvasSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wf.CanvasSettings
}

// SetWorkflow replaces the document wholesale, dropping selection and
// history. Used when loading a document into the editor.
func (s *Store) SetWorkflow(wf core.Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wf = core.CloneWorkflow(wf)
	if s.wf.Nodes == nil {
		s.wf.Nodes = []core.Node{}
	}
	if s.wf.Edges == nil {
		s.wf.Edges = []core.Edge{}
	}
	s.selectedNodes = nil
	s.selectedEdges = nil
	s.applySelectionFlags()
	s.log.Clear()
	s.emitEvent(Event{Type: EventDocumentReplaced})
}

// ReplaceNodesAndEdges swaps the graph wholesale as one undoable
// mutation. Used for server-sync and layout-algorithm results. Selection
// is pruned to ids that survive the swap.
func (s *Store) ReplaceNodesAndEdges(nodes []core.Node, edges []core.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistory()
	s.wf.Nodes = core.CloneNodes(nodes)
	s.wf.Edges = core.CloneEdges(edges)
	s.selectedNodes = filterToExisting(s.selectedNodes, nodeIDSet(s.wf.Nodes))
	s.selectedEdges = filterToExisting(s.selectedEdges, edgeIDSet(s.wf.Edges))
	s.applySelectionFlags()
	s.emitEvent(Event{Type: EventDocumentReplaced})
}

// CanvasSettingsPatch is a partial update of canvas settings. Nil fields
// are left unchanged.
type CanvasSettingsPatch struct {
	Zoom       *float64 `json:"zoom,omitempty"`
	OffsetX    *float64 `json:"offsetX,omitempty"`
	OffsetY    *float64 `json:"offsetY,omitempty"`
	GridSize   *float64 `json:"gridSize,omitempty"`
	SnapToGrid *bool    `json:"snapToGrid,omitempty"`
	ShowGrid   *bool    `json:"showGrid,omitempty"`
}

// UpdateCanvasSettings merges viewport settings. View state only; it is
// not history-tracked.
func (s *Store) UpdateCanvasSettings(patch CanvasSettingsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := s.wf.CanvasSettings
	if patch.Zoom != nil {
		cs.Zoom = *patch.Zoom
	}
	if patch.OffsetX != nil {
		cs.OffsetX = *patch.OffsetX
	}
	if patch.OffsetY != nil {
		cs.OffsetY = *patch.OffsetY
	}
	if patch.GridSize != nil {
		cs.GridSize = *patch.GridSize
	}
	if patch.SnapToGrid != nil {
		cs.SnapToGrid = *patch.SnapToGrid
	}
	if patch.ShowGrid != nil {
		cs.ShowGrid = *patch.ShowGrid
	}
	s.wf.CanvasSettings = cs
}

// Undo restores the most recent past snapshot, pushing the current graph
// onto the redo stack. Selection is not part of history and is dropped.
// Returns false if there was nothing to undo.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.log.Undo(s.snapshot())
	if !ok {
		return false
	}
	s.install(snap)
	s.emitEvent(Event{Type: EventHistoryUndo})
	return true
}

// Redo restores the most recent future snapshot. Returns false if there
// was nothing to redo.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.log.Redo(s.snapshot())
	if !ok {
		return false
	}
	s.install(snap)
	s.emitEvent(Event{Type: EventHistoryRedo})
	return true
}

// CanUndo reports whether an undo snapshot is available.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.CanUndo()
}

// CanRedo reports whether a redo snapshot is available.
func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.CanRedo()
}

// HistoryDepth returns the past and future stack sizes.
func (s *Store) HistoryDepth() (past, future int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Depth()
}

// ClearHistory empties both history stacks without touching the current
// document. Called at explicit save boundaries.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Clear()
}

// snapshot captures the current graph. Safe to share because mutations
// always install freshly allocated slices.
func (s *Store) snapshot() history.Snapshot {
	return history.Snapshot{Nodes: s.wf.Nodes, Edges: s.wf.Edges}
}

// pushHistory records the pre-mutation graph. Must precede the mutation.
func (s *Store) pushHistory() {
	s.log.Push(s.snapshot())
}

// install makes a snapshot current, dropping selection.
func (s *Store) install(snap history.Snapshot) {
	s.wf.Nodes = snap.Nodes
	s.wf.Edges = snap.Edges
	s.selectedNodes = nil
	s.selectedEdges = nil
	s.applySelectionFlags()
}

func nodeIDSet(nodes []core.Node) map[string]struct{} {
	set := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		set[n.ID] = struct{}{}
	}
	return set
}

func edgeIDSet(edges []core.Edge) map[string]struct{} {
	set := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		set[e.ID] = struct{}{}
	}
	return set
}

func filterToExisting(ids []string, existing map[string]struct{}) []string {
	var kept []string
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			kept = append(kept, id)
		}
	}
	return kept
}
