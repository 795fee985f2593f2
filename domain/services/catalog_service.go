package services

import (
	"context"
	"fmt"

	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"
)

type catalogService struct {
	catalogRepo interfaces.CatalogRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo interfaces.CatalogRepository) interfaces.CatalogService {
	return &catalogService{catalogRepo: catalogRepo}
}

func (s *catalogService) GetItem(ctx context.Context, clubID, itemID string) (*entities.CatalogItem, error) {
	item, err := s.catalogRepo.GetItem(ctx, clubID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("catalog item %s in club %s: %w", itemID, clubID, entities.ErrNotFound)
	}
	return item, nil
}

func (s *catalogService) ListItems(ctx context.Context, clubID string, activeOnly bool) ([]*entities.CatalogItem, error) {
	items, err := s.catalogRepo.ListItems(ctx, clubID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}
	return items, nil
}
