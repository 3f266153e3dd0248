package store

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the store.
const (
	EventNodeAdded        = "node.added"
	EventNodeUpdated      = "node.updated"
	EventNodeDeleted      = "node.deleted"
	EventEdgeAdded        = "edge.added"
	EventEdgeUpdated      = "edge.updated"
	EventEdgeDeleted      = "edge.deleted"
	EventDocumentReplaced = "document.replaced"
	EventHistoryUndo      = "history.undo"
	EventHistoryRedo      = "history.redo"
)

// Event describes a committed document change.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	NodeID   string `json:"node_id,omitempty"`
	NodeType string `json:"node_type,omitempty"`

	EdgeID     string `json:"edge_id,omitempty"`
	EdgeSource string `json:"edge_source,omitempty"`
	EdgeTarget string `json:"edge_target,omitempty"`
}

// EventEmitter receives events from the store.
type EventEmitter func(Event)

func (s *Store) emitEvent(e Event) {
	if s.emit == nil {
		return
	}
	e.ID = uuid.NewString()
	e.Timestamp = time.Now()
	s.emit(e)
}
