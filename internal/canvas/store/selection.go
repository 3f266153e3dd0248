package store

import "github.com/markus41/flowcanvas/internal/canvas/core"

// SelectNode selects a node. Single-select replaces the node selection
// with just this id and clears the edge selection; multi-select appends
// the id to the node selection, leaving everything else alone. Unknown
// ids are ignored.
func (s *Store) SelectNode(id string, multi bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nodeIndex(id) < 0 {
		return
	}
	if multi {
		if !containsID(s.selectedNodes, id) {
			s.selectedNodes = append(s.selectedNodes, id)
		}
	} else {
		s.selectedNodes = []string{id}
		s.selectedEdges = nil
	}
	s.applySelectionFlags()
}

// SelectEdge selects an edge, symmetric to SelectNode.
func (s *Store) SelectEdge(id string, multi bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edgeIndex(id) < 0 {
		return
	}
	if multi {
		if !containsID(s.selectedEdges, id) {
			s.selectedEdges = append(s.selectedEdges, id)
		}
	} else {
		s.selectedEdges = []string{id}
		s.selectedNodes = nil
	}
	s.applySelectionFlags()
}

// SelectAll selects every node and edge in the document.
func (s *Store) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedNodes = make([]string, 0, len(s.wf.Nodes))
	for _, n := range s.wf.Nodes {
		s.selectedNodes = append(s.selectedNodes, n.ID)
	}
	s.selectedEdges = make([]string, 0, len(s.wf.Edges))
	for _, e := range s.wf.Edges {
		s.selectedEdges = append(s.selectedEdges, e.ID)
	}
	s.applySelectionFlags()
}

// ClearSelection empties both selection lists and resets every selected
// flag.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedNodes = nil
	s.selectedEdges = nil
	s.applySelectionFlags()
}

// SelectedNodes returns a copy of the selected node ids.
func (s *Store) SelectedNodes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selectedNodes...)
}

// SelectedEdges returns a copy of the selected edge ids.
func (s *Store) SelectedEdges() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selectedEdges...)
}

// applySelectionFlags resynchronizes the Selected flag on every node and
// edge with the selection lists. Renderers read the flags directly, so
// the objects are the single source of truth after every selection
// change. Fresh slices are installed to keep the copy-on-write contract.
func (s *Store) applySelectionFlags() {
	nodeSel := make(map[string]struct{}, len(s.selectedNodes))
	for _, id := range s.selectedNodes {
		nodeSel[id] = struct{}{}
	}
	edgeSel := make(map[string]struct{}, len(s.selectedEdges))
	for _, id := range s.selectedEdges {
		edgeSel[id] = struct{}{}
	}

	nodes := make([]core.Node, len(s.wf.Nodes))
	for i, n := range s.wf.Nodes {
		_, n.Selected = nodeSel[n.ID]
		nodes[i] = n
	}
	s.wf.Nodes = nodes

	edges := make([]core.Edge, len(s.wf.Edges))
	for i, e := range s.wf.Edges {
		_, e.Selected = edgeSel[e.ID]
		edges[i] = e
	}
	s.wf.Edges = edges
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
