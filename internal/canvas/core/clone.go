package core

// CloneData returns a shallow copy of a node data map. Values are shared;
// node configuration updates replace keys rather than mutating values.
func CloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// CloneNodes copies a node slice, giving each node its own data map.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		n.Data = CloneData(n.Data)
		out[i] = n
	}
	return out
}

// CloneEdges copies an edge slice.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// CloneWorkflow copies a workflow deeply enough that the copy can be
// mutated without affecting the original.
func CloneWorkflow(wf Workflow) Workflow {
	wf.Nodes = CloneNodes(wf.Nodes)
	wf.Edges = CloneEdges(wf.Edges)
	if wf.Metadata.Tags != nil {
		tags := make([]string, len(wf.Metadata.Tags))
		copy(tags, wf.Metadata.Tags)
		wf.Metadata.Tags = tags
	}
	return wf
}
