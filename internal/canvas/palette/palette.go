// Package palette tracks per-user palette personalization: favorite node
// types, a bounded most-recent-first list of recently used types, the
// active search query, and per-category collapse flags.
//
// Favorites, recents, and collapse state persist through a kv.Blob and
// survive restarts; the search query is session-only. The store is
// independent of the workflow document store.
package palette

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/markus41/flowcanvas/internal/canvas/kv"
)

// MaxRecent bounds the recents list.
const MaxRecent = 5

// persistedState is the serialized shape of the store. Favorites are
// stored as a sorted array and rebuilt into a set on load.
type persistedState struct {
	Favorites           []string        `json:"favorites"`
	RecentNodes         []string        `json:"recent_nodes"`
	CollapsedCategories map[string]bool `json:"collapsed_categories"`
}

// Store holds palette preferences, writing through to its blob on every
// mutation. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	blob       kv.Blob
	logger     zerolog.Logger
	categories []string

	favorites map[string]struct{}
	recents   []string
	search    string
	collapsed map[string]bool
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithCategories sets the known category names. Persisted state missing
// any of them is backfilled with the expanded default, so new categories
// in later releases never corrupt saved preferences.
func WithCategories(categories []string) Option {
	return func(s *Store) {
		s.categories = append([]string(nil), categories...)
	}
}

// WithLogger sets the logger used to report persistence failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a store backed by blob, loading persisted state once.
// A malformed or missing blob yields defaults rather than an error.
func New(blob kv.Blob, opts ...Option) *Store {
	s := &Store{
		blob:   blob,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.favorites = make(map[string]struct{})
	s.collapsed = s.defaultCollapsed()
	s.load()
	return s
}

// AddFavorite marks a node type as a favorite.
func (s *Store) AddFavorite(typeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites[typeName] = struct{}{}
	s.persist()
}

// RemoveFavorite unmarks a node type.
func (s *Store) RemoveFavorite(typeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.favorites, typeName)
	s.persist()
}

// ToggleFavorite flips the favorite state of a node type.
func (s *Store) ToggleFavorite(typeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.favorites[typeName]; ok {
		delete(s.favorites, typeName)
	} else {
		s.favorites[typeName] = struct{}{}
	}
	s.persist()
}

// IsFavorite reports whether a node type is a favorite.
func (s *Store) IsFavorite(typeName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favorites[typeName]
	return ok
}

// Favorites returns the favorite type names in sorted order.
func (s *Store) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedFavorites()
}

// AddRecentNode records a node type as most recently used. Any existing
// occurrence moves to the front, keeping the list distinct, and the list
// is truncated to MaxRecent.
func (s *Store) AddRecentNode(typeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recents := make([]string, 0, len(s.recents)+1)
	recents = append(recents, typeName)
	for _, existing := range s.recents {
		if existing != typeName {
			recents = append(recents, existing)
		}
	}
	if len(recents) > MaxRecent {
		recents = recents[:MaxRecent]
	}
	s.recents = recents
	s.persist()
}

// RecentNodes returns a copy of the recents list, most recent first.
func (s *Store) RecentNodes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.recents...)
}

// SetSearchQuery replaces the active search text. Matching lives in the
// palette UI; the query is never persisted.
func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = query
}

// ClearSearch resets the search text.
func (s *Store) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = ""
}

// SearchQuery returns the active search text.
func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

// ToggleCategory flips the collapse flag of one category.
func (s *Store) ToggleCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collapsed[category] = !s.collapsed[category]
	s.persist()
}

// IsCollapsed reports whether a category is collapsed. Unknown
// categories are expanded.
func (s *Store) IsCollapsed(category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collapsed[category]
}

// CollapseAll collapses every known category.
func (s *Store) CollapseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for category := range s.collapsed {
		s.collapsed[category] = true
	}
	s.persist()
}

// ExpandAll expands every known category.
func (s *Store) ExpandAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for category := range s.collapsed {
		s.collapsed[category] = false
	}
	s.persist()
}

// CollapsedCategories returns a copy of the collapse map.
func (s *Store) CollapsedCategories() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.collapsed))
	for k, v := range s.collapsed {
		out[k] = v
	}
	return out
}

// Reset restores favorites, recents, search, and collapse state to their
// defaults and persists the result.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = make(map[string]struct{})
	s.recents = nil
	s.search = ""
	s.collapsed = s.defaultCollapsed()
	s.persist()
}

func (s *Store) defaultCollapsed() map[string]bool {
	collapsed := make(map[string]bool, len(s.categories))
	for _, category := range s.categories {
		collapsed[category] = false
	}
	return collapsed
}

func (s *Store) sortedFavorites() []string {
	out := make([]string, 0, len(s.favorites))
	for typeName := range s.favorites {
		out = append(out, typeName)
	}
	sort.Strings(out)
	return out
}

// load restores persisted state, backfilling anything missing or
// malformed with defaults.
func (s *Store) load() {
	data, err := s.blob.Load()
	if err != nil {
		s.logger.Warn().Err(err).Msg("loading palette preferences, using defaults")
		return
	}
	if data == nil {
		return
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn().Err(err).Msg("parsing palette preferences, using defaults")
		return
	}
	for _, typeName := range state.Favorites {
		s.favorites[typeName] = struct{}{}
	}
	if len(state.RecentNodes) > MaxRecent {
		state.RecentNodes = state.RecentNodes[:MaxRecent]
	}
	s.recents = state.RecentNodes
	for category, collapsed := range state.CollapsedCategories {
		s.collapsed[category] = collapsed
	}
}

// persist writes through the current state. Failures are logged, not
// surfaced; preferences degrade to session-only.
func (s *Store) persist() {
	state := persistedState{
		Favorites:           s.sortedFavorites(),
		RecentNodes:         append([]string{}, s.recents...),
		CollapsedCategories: s.collapsed,
	}
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error().Err(err).Msg("encoding palette preferences")
		return
	}
	if err := s.blob.Save(data); err != nil {
		s.logger.Error().Err(err).Msg("saving palette preferences")
	}
}
