package core

// Position is a point on the canvas in logical coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned, typed unit in the workflow graph.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data,omitempty"`
	Selected bool           `json:"selected,omitempty"`
}

// Edge is a directed connection between two nodes. SourceHandle and
// TargetHandle discriminate ports on multi-port nodes.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Selected     bool   `json:"selected,omitempty"`
}

// EdgeKey is the identity tuple of an edge. Two edges with equal keys are
// considered duplicates regardless of their IDs.
type EdgeKey struct {
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}

// Key returns the identity tuple of the edge.
func (e Edge) Key() EdgeKey {
	return EdgeKey{
		Source:       e.Source,
		Target:       e.Target,
		SourceHandle: e.SourceHandle,
		TargetHandle: e.TargetHandle,
	}
}

// CanvasSettings holds viewport state. It is view state, not document
// state, and is never history-tracked.
type CanvasSettings struct {
	Zoom       float64 `json:"zoom"`
	OffsetX    float64 `json:"offsetX"`
	OffsetY    float64 `json:"offsetY"`
	GridSize   float64 `json:"gridSize"`
	SnapToGrid bool    `json:"snapToGrid"`
	ShowGrid   bool    `json:"showGrid"`
}

// DefaultCanvasSettings returns the settings a fresh document starts with.
func DefaultCanvasSettings() CanvasSettings {
	return CanvasSettings{
		Zoom:     1.0,
		GridSize: 20,
		ShowGrid: true,
	}
}

// WorkflowMetadata carries descriptive fields that are not part of the
// editable graph.
type WorkflowMetadata struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Workflow is the aggregate document: the node/edge graph plus canvas
// settings and metadata.
type Workflow struct {
	Nodes          []Node           `json:"nodes"`
	Edges          []Edge           `json:"edges"`
	CanvasSettings CanvasSettings   `json:"canvas_settings"`
	Metadata       WorkflowMetadata `json:"metadata"`
}

// NewWorkflow returns an empty workflow with default canvas settings.
func NewWorkflow() Workflow {
	return Workflow{
		Nodes:          []Node{},
		Edges:          []Edge{},
		CanvasSettings: DefaultCanvasSettings(),
	}
}

// NodeTypeDefinition describes an entry in the node-type catalog. The
// editing core copies TypeName and DefaultConfig into new nodes and treats
// everything else as opaque display data.
type NodeTypeDefinition struct {
	TypeName      string         `json:"type_name"`
	DisplayName   string         `json:"display_name"`
	Category      string         `json:"category"`
	Description   string         `json:"description,omitempty"`
	Icon          string         `json:"icon,omitempty"`
	DefaultConfig map[string]any `json:"default_config,omitempty"`
}
