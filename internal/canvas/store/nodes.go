package store

import "github.com/markus41/flowcanvas/internal/canvas/core"

// NodePatch is a partial node update. Nil fields are left unchanged;
// a non-nil Data replaces the node's data map wholesale. Use
// UpdateNodeData to merge individual configuration keys instead.
type NodePatch struct {
	Type     *string        `json:"type,omitempty"`
	Position *core.Position `json:"position,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// AddNode appends a node to the document. The caller assigns the id and
// must guarantee its uniqueness; the store does not check.
func (s *Store) AddNode(n core.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistory()
	n.Data = core.CloneData(n.Data)
	s.wf.Nodes = appendNodes(s.wf.Nodes, n)
	s.emitEvent(Event{Type: EventNodeAdded, NodeID: n.ID, NodeType: n.Type})
}

// UpdateNode shallow-merges a patch into the matching node. No-op if the
// id is not found.
func (s *Store) UpdateNode(id string, patch NodePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.nodeIndex(id)
	if idx < 0 {
		return
	}
	s.pushHistory()
	nodes := core.CloneNodes(s.wf.Nodes)
	n := &nodes[idx]
	if patch.Type != nil {
		n.Type = *patch.Type
	}
	if patch.Position != nil {
		n.Position = *patch.Position
	}
	if patch.Data != nil {
		n.Data = core.CloneData(patch.Data)
	}
	s.wf.Nodes = nodes
	s.emitEvent(Event{Type: EventNodeUpdated, NodeID: id, NodeType: n.Type})
}

// UpdateNodePosition moves a node without recording history. Live drags
// call this per frame; recording each frame would flood the undo log.
func (s *Store) UpdateNodePosition(id string, pos core.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.nodeIndex(id)
	if idx < 0 {
		return
	}
	nodes := core.CloneNodes(s.wf.Nodes)
	nodes[idx].Position = pos
	s.wf.Nodes = nodes
	s.emitEvent(Event{Type: EventNodeUpdated, NodeID: id, NodeType: nodes[idx].Type})
}

// UpdateNodeData merges keys into the node's data map. No-op if the id is
// not found.
func (s *Store) UpdateNodeData(id string, patch map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.nodeIndex(id)
	if idx < 0 {
		return
	}
	s.pushHistory()
	nodes := core.CloneNodes(s.wf.Nodes)
	if nodes[idx].Data == nil {
		nodes[idx].Data = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		nodes[idx].Data[k] = v
	}
	s.wf.Nodes = nodes
	s.emitEvent(Event{Type: EventNodeUpdated, NodeID: id, NodeType: nodes[idx].Type})
}

// DeleteNode removes a node, cascading to its edges.
func (s *Store) DeleteNode(id string) {
	s.DeleteNodes([]string{id})
}

// DeleteNodes removes a batch of nodes in one undoable mutation. Every
// edge touching a deleted node is removed in the same mutation, and the
// ids are dropped from the selection. Unknown ids are ignored; the whole
// call is a no-op when none of the ids exist.
func (s *Store) DeleteNodes(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := nodeIDSet(s.wf.Nodes)
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

	var removed []core.Node
	kept := make([]core.Node, 0, len(s.wf.Nodes)-len(doomed))
	for _, n := range s.wf.Nodes {
		if _, gone := doomed[n.ID]; gone {
			removed = append(removed, n)
			continue
		}
		kept = append(kept, n)
	}
	s.wf.Nodes = kept

	var prunedEdges []core.Edge
	keptEdges := make([]core.Edge, 0, len(s.wf.Edges))
	for _, e := range s.wf.Edges {
		_, srcGone := doomed[e.Source]
		_, tgtGone := doomed[e.Target]
		if srcGone || tgtGone {
			prunedEdges = append(prunedEdges, e)
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	s.wf.Edges = keptEdges

	s.selectedNodes = filterToExisting(s.selectedNodes, nodeIDSet(kept))
	s.selectedEdges = filterToExisting(s.selectedEdges, edgeIDSet(keptEdges))

	for _, n := range removed {
		s.emitEvent(Event{Type: EventNodeDeleted, NodeID: n.ID, NodeType: n.Type})
	}
	for _, e := range prunedEdges {
		s.emitEvent(Event{Type: EventEdgeDeleted, EdgeID: e.ID, EdgeSource: e.Source, EdgeTarget: e.Target})
	}
}

func (s *Store) nodeIndex(id string) int {
	for i, n := range s.wf.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// appendNodes copies into a fresh backing array so earlier snapshots
// sharing the old array are never written through.
func appendNodes(nodes []core.Node, extra ...core.Node) []core.Node {
	out := make([]core.Node, 0, len(nodes)+len(extra))
	out = append(out, nodes...)
	return append(out, extra...)
}
