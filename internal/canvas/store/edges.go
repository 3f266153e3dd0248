package store

import "github.com/markus41/flowcanvas/internal/canvas/core"

// EdgePatch is a partial edge update. Nil fields are left unchanged.
type EdgePatch struct {
	Source       *string `json:"source,omitempty"`
	Target       *string `json:"target,omitempty"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
}

// AddEdge appends an edge unless an equivalent one already exists. Two
// edges are equivalent when their (source, target, sourceHandle,
// targetHandle) tuples match; adding a duplicate is a silent no-op.
func (s *Store) AddEdge(e core.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := e.Key()
	for _, existing := range s.wf.Edges {
		if existing.Key() == key {
			return
		}
	}
	s.pushHistory()
	s.wf.Edges = appendEdges(s.wf.Edges, e)
	s.emitEvent(Event{Type: EventEdgeAdded, EdgeID: e.ID, EdgeSource: e.Source, EdgeTarget: e.Target})
}

// UpdateEdge shallow-merges a patch into the matching edge. No-op if the
// id is not found.
func (s *Store) UpdateEdge(id string, patch EdgePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.edgeIndex(id)
	if idx < 0 {
		return
	}
	s.pushHistory()
	edges := core.CloneEdges(s.wf.Edges)
	e := &edges[idx]
	if patch.Source != nil {
		e.Source = *patch.Source
	}
	if patch.Target != nil {
		e.Target = *patch.Target
	}
	if patch.SourceHandle != nil {
		e.SourceHandle = *patch.SourceHandle
	}
	if patch.TargetHandle != nil {
		e.TargetHandle = *patch.TargetHandle
	}
	s.wf.Edges = edges
	s.emitEvent(Event{Type: EventEdgeUpdated, EdgeID: id, EdgeSource: e.Source, EdgeTarget: e.Target})
}

// DeleteEdge removes a single edge.
func (s *Store) DeleteEdge(id string) {
	s.DeleteEdges([]string{id})
}

// DeleteEdges removes a batch of edges in one undoable mutation and
// prunes them from the selection. Unknown ids are ignored.
func (s *Store) DeleteEdges(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := edgeIDSet(s.wf.Edges)
	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			doomed[id] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		return
	}
	s.pushHistory()

	var removed []core.Edge
	kept := make([]core.Edge, 0, len(s.wf.Edges)-len(doomed))
	for _, e := range s.wf.Edges {
		if _, gone := doomed[e.ID]; gone {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	s.wf.Edges = kept
	s.selectedEdges = filterToExisting(s.selectedEdges, edgeIDSet(kept))

	for _, e := range removed {
		s.emitEvent(Event{Type: EventEdgeDeleted, EdgeID: e.ID, EdgeSource: e.Source, EdgeTarget: e.Target})
	}
}

func (s *Store) edgeIndex(id string) int {
	for i, e := range s.wf.Edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// appendEdges copies into a fresh backing array; see appendNodes.
func appendEdges(edges []core.Edge, extra ...core.Edge) []core.Edge {
	out := make([]core.Edge, 0, len(edges)+len(extra))
	out = append(out, edges...)
	return append(out, extra...)
}
