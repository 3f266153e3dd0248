// Package api exposes editing sessions, the node-type catalog, and
// palette preferences over HTTP for a canvas frontend.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/markus41/flowcanvas/internal/canvas/catalog"
	"github.com/markus41/flowcanvas/internal/canvas/core"
	"github.com/markus41/flowcanvas/internal/canvas/palette"
	"github.com/markus41/flowcanvas/internal/canvas/store"
	"github.com/markus41/flowcanvas/internal/server/session"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	sessions *session.Manager
	catalog  *catalog.Catalog
	palette  *palette.Store
	logger   zerolog.Logger
}

// New creates an API server.
func New(sessions *session.Manager, cat *catalog.Catalog, pal *palette.Store, logger zerolog.Logger) *Server {
	return &Server{sessions: sessions, catalog: cat, palette: pal, logger: logger}
}

// Routes builds the router for the API surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/api/health", s.Health)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)

			r.Get("/workflow", s.GetWorkflow)
			r.Put("/workflow", s.SetWorkflow)
			r.Post("/workflow/replace", s.ReplaceGraph)
			r.Patch("/canvas", s.UpdateCanvasSettings)

			r.Post("/nodes", s.AddNode)
			r.Post("/nodes/from-type", s.AddNodeFromType)
			r.Post("/nodes/delete", s.DeleteNodes)
			r.Patch("/nodes/{nodeID}", s.UpdateNode)
			r.Delete("/nodes/{nodeID}", s.DeleteNode)
			r.Post("/nodes/{nodeID}/position", s.UpdateNodePosition)
			r.Post("/nodes/{nodeID}/data", s.UpdateNodeData)

			r.Post("/edges", s.AddEdge)
			r.Post("/edges/delete", s.DeleteEdges)
			r.Patch("/edges/{edgeID}", s.UpdateEdge)
			r.Delete("/edges/{edgeID}", s.DeleteEdge)

			r.Get("/selection", s.GetSelection)
			r.Delete("/selection", s.ClearSelection)
			r.Post("/selection/all", s.SelectAll)
			r.Post("/selection/nodes/{nodeID}", s.SelectNode)
			r.Post("/selection/edges/{edgeID}", s.SelectEdge)

			r.Post("/clipboard/copy", s.CopySelection)
			r.Post("/clipboard/cut", s.CutSelection)
			r.Post("/clipboard/paste", s.PasteClipboard)

			r.Get("/history", s.GetHistory)
			r.Delete("/history", s.ClearHistory)
			r.Post("/history/undo", s.Undo)
			r.Post("/history/redo", s.Redo)
		})
	})

	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/", s.GetCatalog)
		r.Get("/search", s.SearchCatalog)
		r.Get("/categories", s.GetCategories)
	})

	r.Route("/api/palette", func(r chi.Router) {
		r.Get("/", s.GetPalette)
		r.Post("/reset", s.ResetPalette)
		r.Put("/favorites/{type}", s.AddFavorite)
		r.Delete("/favorites/{type}", s.RemoveFavorite)
		r.Post("/favorites/{type}/toggle", s.ToggleFavorite)
		r.Post("/recents/{type}", s.AddRecent)
		r.Put("/search", s.SetPaletteSearch)
		r.Delete("/search", s.ClearPaletteSearch)
		r.Post("/categories/{category}/toggle", s.ToggleCategory)
		r.Post("/categories/collapse-all", s.CollapseAll)
		r.Post("/categories/expand-all", s.ExpandAll)
	})

	return r
}

// Health handles GET /api/health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSession handles POST /api/sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sess)
}

// ListSessions handles GET /api/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.List())
}

// GetSession handles GET /api/sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWorkflow handles GET /api/sessions/{id}/workflow.
func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Store.Workflow())
}

// SetWorkflow handles PUT /api/sessions/{id}/workflow. Replaces the
// document wholesale and drops history.
func (s *Server) SetWorkflow(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var wf core.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Store.SetWorkflow(wf)
	writeJSON(w, http.StatusOK, sess.Store.Workflow())
}

// ReplaceGraphRequest is the body for POST .../workflow/replace.
type ReplaceGraphRequest struct {
	Nodes []core.Node `json:"nodes"`
	Edges []core.Edge `json:"edges"`
}

// ReplaceGraph handles POST /api/sessions/{id}/workflow/replace as one
// undoable bulk swap.
func (s *Server) ReplaceGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req ReplaceGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Store.ReplaceNodesAndEdges(req.Nodes, req.Edges)
	writeJSON(w, http.StatusOK, sess.Store.Workflow())
}

// UpdateCanvasSettings handles PATCH /api/sessions/{id}/canvas.
func (s *Server) UpdateCanvasSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var patch store.CanvasSettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Store.UpdateCanvasSettings(patch)
	writeJSON(w, http.StatusOK, sess.Store.CanvasSettings())
}

// AddNode handles POST /api/sessions/{id}/nodes. The caller supplies a
// fully formed node; a missing id is filled in.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var node core.Node
	if err := json.NewDecoder(r.Body).Decode(&node); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	sess.Store.AddNode(node)
	writeJSON(w, http.StatusCreated, node)
}

// AddNodeFromTypeRequest is the body for POST .../nodes/from-type.
type AddNodeFromTypeRequest struct {
	Type     string         `json:"type"`
	Position *core.Position `json:"position,omitempty"`
}

// AddNodeFromType handles POST /api/sessions/{id}/nodes/from-type: the
// palette "add to canvas" path. The node is built from the catalog
// definition's default config, and the type is recorded as recently
// used.
func (s *Server) AddNodeFromType(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req AddNodeFromTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	def, found := s.catalog.Get(req.Type)
	if !found {
		http.Error(w, "unknown node type", http.StatusNotFound)
		return
	}

	node := core.Node{
		ID:   uuid.NewString(),
		Type: def.TypeName,
		Data: core.CloneData(def.DefaultConfig),
	}
	if req.Position != nil {
		node.Position = *req.Position
	}
	sess.Store.AddNode(node)
	s.palette.AddRecentNode(def.TypeName)
	writeJSON(w, http.StatusCreated, node)
}

// UpdateNode handles PATCH /api/sessions/{id}/nodes/{nodeID}.
func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var patch store.NodePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Store.UpdateNode(chi.URLParam(r, "nodeID"), patch)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateNodePosition handles POST .../nodes/{nodeID}/position. Not
// recorded in history; this is the live-drag path.
func (s *Server) UpdateNodePosition(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var pos core.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Store.UpdateNodePosition(chi.URLParam(r, "nodeID"), pos)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateNodeData handles POST .../nodes/{nodeID}/data, merging keys into
// the node's configuration.
func (s *Server) UpdateNodeData(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Store.UpdateNodeData(chi.URLParam(r, "nodeID"), patch)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNode handles DELETE /api/sessions/{id}/nodes/{nodeID}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Store.DeleteNode(chi.URLParam(r, "nodeID"))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteBatchRequest is the body for batch delete endpoints.
type DeleteBatchRequest struct {
	IDs []string `json:"ids"`
}

// DeleteNodes handles POST /api/sessions/{id}/nodes/delete.
func (s *Server) DeleteNodes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req DeleteBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Store.DeleteNodes(req.IDs)
	w.WriteHeader(http.StatusNoContent)
}

// AddEdge handles POST /api/sessions/{id}/edges.
func (s *Server) AddEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var edge core.Edge
	if err := json.NewDecoder(r.Body).Decode(&edge); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	sess.Store.AddEdge(edge)
	writeJSON(w, http.StatusCreated, edge)
}

// UpdateEdge handles PATCH /api/sessions/{id}/edges/{edgeID}.
func (s *Server) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var patch store.EdgePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Store.UpdateEdge(chi.URLParam(r, "edgeID"), patch)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEdge handles DELETE /api/sessions/{id}/edges/{edgeID}.
func (s *Server) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Store.DeleteEdge(chi.URLParam(r, "edgeID"))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEdges handles POST /api/sessions/{id}/edges/delete.
func (s *Server) DeleteEdges(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req DeleteBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Store.DeleteEdges(req.IDs)
	w.WriteHeader(http.StatusNoContent)
}

// SelectionResponse mirrors the store's selection lists.
type SelectionResponse struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// GetSelection handles GET /api/sessions/{id}/selection.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, SelectionResponse{
		Nodes: sess.Store.SelectedNodes(),
		Edges: sess.Store.SelectedEdges(),
	})
}

// SelectNode handles POST .../selection/nodes/{nodeID}?multi=true.
func (s *Server) SelectNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	multi := r.URL.Query().Get("multi") == "true"
	sess.Store.SelectNode(chi.URLParam(r, "nodeID"), multi)
	w.WriteHeader(http.StatusNoContent)
}

// SelectEdge handles POST .../selection/edges/{edgeID}?multi=true.
func (s *Server) SelectEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	multi := r.URL.Query().Get("multi") == "true"
	sess.Store.SelectEdge(chi.URLParam(r, "edgeID"), multi)
	w.WriteHeader(http.StatusNoContent)
}

// SelectAll handles POST /api/sessions/{id}/selection/all.
func (s *Server) SelectAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Store.SelectAll()
	w.WriteHeader(http.StatusNoContent)
}

// ClearSelection handles DELETE /api/sessions/{id}/selection.
func (s *Server) ClearSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Store.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// CopySelection handles POST /api/sessions/{id}/clipboard/copy.
func (s *Server) CopySelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Store.Copy()
	nodes, edges := sess.Store.ClipboardSize()
	writeJSON(w, http.StatusOK, map[string]int{"nodes": nodes, "edges": edges})
}

// CutSelection handles POST /api/sessions/{id}/clipboard/cut.
func (s *Server) CutSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Store.Cut()
	w.WriteHeader(http.StatusNoContent)
}

// PasteRequest is the optional body for POST .../clipboard/paste.
type PasteRequest struct {
	Offset *core.Position `json:"offset,omitempty"`
}

// PasteClipboard handles POST /api/sessions/{id}/clipboard/paste and
// returns the pasted selection.
func (s *Server) PasteClipboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req PasteRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	sess.Store.Paste(req.Offset)
	writeJSON(w, http.StatusOK, SelectionResponse{
		Nodes: sess.Store.SelectedNodes(),
		Edges: sess.Store.SelectedEdges(),
	})
}

// HistoryResponse describes the undo/redo state of a session.
type HistoryResponse struct {
	Past    int  `json:"past"`
	Future  int  `json:"future"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// GetHistory handles GET /api/sessions/{id}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	past, future := sess.Store.HistoryDepth()
	writeJSON(w, http.StatusOK, HistoryResponse{
		Past:    past,
		Future:  future,
		CanUndo: sess.Store.CanUndo(),
		CanRedo: sess.Store.CanRedo(),
	})
}

// Undo handles POST /api/sessions/{id}/history/undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	applied := sess.Store.Undo()
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

// Redo handles POST /api/sessions/{id}/history/redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	applied := sess.Store.Redo()
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

// ClearHistory handles DELETE /api/sessions/{id}/history. Called at save
// boundaries.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Store.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the {id} URL parameter, writing a 404 on a miss.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
