package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetCatalog handles GET /api/catalog.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Types())
}

// SearchCatalog handles GET /api/catalog/search?q=term.
func (s *Server) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Search(r.URL.Query().Get("q")))
}

// GetCategories handles GET /api/catalog/categories.
func (s *Server) GetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Categories())
}

// PaletteResponse is the full palette preference state.
type PaletteResponse struct {
	Favorites           []string        `json:"favorites"`
	RecentNodes         []string        `json:"recent_nodes"`
	SearchQuery         string          `json:"search_query"`
	CollapsedCategories map[string]bool `json:"collapsed_categories"`
}

// GetPalette handles GET /api/palette.
func (s *Server) GetPalette(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PaletteResponse{
		Favorites:           s.palette.Favorites(),
		RecentNodes:         s.palette.RecentNodes(),
		SearchQuery:         s.palette.SearchQuery(),
		CollapsedCategories: s.palette.CollapsedCategories(),
	})
}

// ResetPalette handles POST /api/palette/reset.
func (s *Server) ResetPalette(w http.ResponseWriter, r *http.Request) {
	s.palette.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// AddFavorite handles PUT /api/palette/favorites/{type}.
func (s *Server) AddFavorite(w http.ResponseWriter, r *http.Request) {
	s.palette.AddFavorite(chi.URLParam(r, "type"))
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFavorite handles DELETE /api/palette/favorites/{type}.
func (s *Server) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	s.palette.RemoveFavorite(chi.URLParam(r, "type"))
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite handles POST /api/palette/favorites/{type}/toggle and
// returns the resulting state.
func (s *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	typeName := chi.URLParam(r, "type")
	s.palette.ToggleFavorite(typeName)
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": s.palette.IsFavorite(typeName)})
}

// AddRecent handles POST /api/palette/recents/{type}. Called on
// drag-start so the palette can surface recently used types.
func (s *Server) AddRecent(w http.ResponseWriter, r *http.Request) {
	s.palette.AddRecentNode(chi.URLParam(r, "type"))
	writeJSON(w, http.StatusOK, s.palette.RecentNodes())
}

// SetSearchRequest is the body for PUT /api/palette/search.
type SetSearchRequest struct {
	Query string `json:"query"`
}

// SetPaletteSearch handles PUT /api/palette/search.
func (s *Server) SetPaletteSearch(w http.ResponseWriter, r *http.Request) {
	var req SetSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.palette.SetSearchQuery(req.Query)
	w.WriteHeader(http.StatusNoContent)
}

// ClearPaletteSearch handles DELETE /api/palette/search.
func (s *Server) ClearPaletteSearch(w http.ResponseWriter, r *http.Request) {
	s.palette.ClearSearch()
	w.WriteHeader(http.StatusNoContent)
}

// ToggleCategory handles POST /api/palette/categories/{category}/toggle.
func (s *Server) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	s.palette.ToggleCategory(category)
	writeJSON(w, http.StatusOK, map[string]bool{"collapsed": s.palette.IsCollapsed(category)})
}

// CollapseAll handles POST /api/palette/categories/collapse-all.
func (s *Server) CollapseAll(w http.ResponseWriter, r *http.Request) {
	s.palette.CollapseAll()
	w.WriteHeader(http.StatusNoContent)
}

// ExpandAll handles POST /api/palette/categories/expand-all.
func (s *Server) ExpandAll(w http.ResponseWriter, r *http.Request) {
	s.palette.ExpandAll()
	w.WriteHeader(http.StatusNoContent)
}
