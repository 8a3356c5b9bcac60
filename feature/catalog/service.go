package catalog

import (
	"context"
	"errors"
	"strings"

	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/store"

	"go.uber.org/zap"
)

// ErrItemNotFound is returned when no catalog item has the requested id.
var ErrItemNotFound = errors.New("catalog item not found")

// Filter narrows a catalog listing. Zero values match everything.
type Filter struct {
	Category string
	InStock  *bool
	// Query matches item names case-insensitively.
	Query string
}

// Match reports whether item passes the filter.
func (f Filter) Match(item models.CatalogItem) bool {
	if f.Category != "" && !strings.EqualFold(item.Category, f.Category) {
		return false
	}
	if f.InStock != nil && item.InStock != *f.InStock {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(strings.TrimSpace(f.Query))) {
		return false
	}
	return true
}

// Service serves read access to the catalog.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(st store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// List returns the catalog items matching the filter in catalog order.
func (s *Service) List(ctx context.Context, f Filter) ([]models.CatalogItem, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.CatalogItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Get returns a single item by id.
func (s *Service) Get(ctx context.Context, id string) (*models.CatalogItem, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snap.Items {
		if snap.Items[i].ID == id {
			return &snap.Items[i], nil
		}
	}
	return nil, ErrItemNotFound
}
