// Package history implements the bounded undo/redo log backing the
// workflow store. Snapshots capture the graph portion of the document;
// canvas settings and selection are not part of history.
package history

import "github.com/markus41/flowcanvas/internal/canvas/core"

// DefaultLimit is the snapshot cap used when no limit is configured.
const DefaultLimit = 50

// Snapshot is one captured document state. The log stores snapshots by
// reference; callers must not mutate slices they hand to Push.
type Snapshot struct {
	Nodes []core.Node
	Edges []core.Edge
}

// Log holds bounded past and future snapshot stacks. Pushing a new
// snapshot discards the future stack, so history never branches.
type Log struct {
	limit  int
	past   []Snapshot
	future []Snapshot
}

// NewLog creates a log that retains at most limit past snapshots.
// A non-positive limit selects DefaultLimit.
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Push records a pre-mutation snapshot and invalidates any redo state.
// The oldest snapshot is dropped once the cap is reached.
func (l *Log) Push(s Snapshot) {
	l.past = append(l.past, s)
	if len(l.past) > l.limit {
		l.past = l.past[1:]
	}
	l.future = nil
}

// Undo pops the most recent past snapshot and stashes current on the
// future stack. Returns false if there is nothing to undo.
func (l *Log) Undo(current Snapshot) (Snapshot, bool) {
	if len(l.past) == 0 {
		return Snapshot{}, false
	}
	top := l.past[len(l.past)-1]
	l.past = l.past[:len(l.past)-1]
	l.future = append(l.future, current)
	return top, true
}

// Redo pops the most recent future snapshot and stashes current back on
// the past stack. Returns false if there is nothing to redo.
func (l *Log) Redo(current Snapshot) (Snapshot, bool) {
	if len(l.future) == 0 {
		return Snapshot{}, false
	}
	top := l.future[len(l.future)-1]
	l.future = l.future[:len(l.future)-1]
	l.past = append(l.past, current)
	return top, true
}

// CanUndo reports whether the past stack is non-empty.
func (l *Log) CanUndo() bool { return len(l.past) > 0 }

// CanRedo reports whether the future stack is non-empty.
func (l *Log) CanRedo() bool { return len(l.future) > 0 }

// Depth returns the current past and future stack sizes.
func (l *Log) Depth() (past, future int) {
	return len(l.past), len(l.future)
}

// Clear empties both stacks without touching any document state.
func (l *Log) Clear() {
	l.past = nil
	l.future = nil
}
