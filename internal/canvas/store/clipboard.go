package store

import "github.com/markus41/flowcanvas/internal/canvas/core"

// defaultPasteOffset keeps pasted copies from landing exactly on top of
// the originals.
var defaultPasteOffset = core.Position{X: 50, Y: 50}

// Copy captures the subgraph induced by the selected nodes: every
// selected node, plus only those edges whose both endpoints are
// selected. The clipboard is transient and never enters history.
func (s *Store) Copy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := make(map[string]struct{}, len(s.selectedNodes))
	for _, id := range s.selectedNodes {
		sel[id] = struct{}{}
	}

	var nodes []core.Node
	for _, n := range s.wf.Nodes {
		if _, ok := sel[n.ID]; ok {
			n.Data = core.CloneData(n.Data)
			nodes = append(nodes, n)
		}
	}
	var edges []core.Edge
	for _, e := range s.wf.Edges {
		_, srcIn := sel[e.Source]
		_, tgtIn := sel[e.Target]
		if srcIn && tgtIn {
			edges = append(edges, e)
		}
	}
	s.clipNodes = nodes
	s.clipEdges = edges
}

// Paste inserts a copy of the clipboard, remapping every copied node id
// to a fresh id and rewriting edge endpoints through the remap table, so
// pasted copies never collide with or reference the originals. Positions
// are offset by the given amount, or {50,50} when nil. The pasted set
// becomes the new selection. No-op when the clipboard is empty.
func (s *Store) Paste(offset *core.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clipNodes) == 0 {
		return
	}
	s.pushHistory()

	off := defaultPasteOffset
	if offset != nil {
		off = *offset
	}

	remap := make(map[string]string, len(s.clipNodes))
	pasted := make([]core.Node, 0, len(s.clipNodes))
	for _, n := range s.clipNodes {
		fresh := s.newID()
		remap[n.ID] = fresh
		n.ID = fresh
		n.Position.X += off.X
		n.Position.Y += off.Y
		n.Data = core.CloneData(n.Data)
		n.Selected = true
		pasted = append(pasted, n)
	}

	pastedEdges := make([]core.Edge, 0, len(s.clipEdges))
	for _, e := range s.clipEdges {
		e.ID = s.newID()
		e.Source = remap[e.Source]
		e.Target = remap[e.Target]
		e.Selected = true
		pastedEdges = append(pastedEdges, e)
	}

	s.wf.Nodes = appendNodes(s.wf.Nodes, pasted...)
	s.wf.Edges = appendEdges(s.wf.Edges, pastedEdges...)

	s.selectedNodes = make([]string, 0, len(pasted))
	for _, n := range pasted {
		s.selectedNodes = append(s.selectedNodes, n.ID)
	}
	s.selectedEdges = make([]string, 0, len(pastedEdges))
	for _, e := range pastedEdges {
		s.selectedEdges = append(s.selectedEdges, e.ID)
	}
	s.applySelectionFlags()

	for _, n := range pasted {
		s.emitEvent(Event{Type: EventNodeAdded, NodeID: n.ID, NodeType: n.Type})
	}
	for _, e := range pastedEdges {
		s.emitEvent(Event{Type: EventEdgeAdded, EdgeID: e.ID, EdgeSource: e.Source, EdgeTarget: e.Target})
	}
}

// Cut is Copy followed by deleting the selected nodes.
func (s *Store) Cut() {
	s.Copy()
	s.DeleteNodes(s.SelectedNodes())
}

// ClipboardSize returns how many nodes and edges are on the clipboard.
func (s *Store) ClipboardSize() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clipNodes), len(s.clipEdges)
}
