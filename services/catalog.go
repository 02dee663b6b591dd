package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"food-delivery/models"
)

type CatalogService struct {
	repo CatalogRepository
	log  *slog.Logger
}

func NewCatalogService(repo CatalogRepository, log *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

// ListRestaurants degrades to an empty list when the store fails.
func (s *CatalogService) ListRestaurants(ctx context.Context) []models.Restaurant {
	rs, err := s.repo.ListRestaurants(ctx)
	if err != nil {
		s.log.Error("list restaurants", slog.Any("error", err))
		return []models.Restaurant{}
	}
	return rs
}

// GetMenu is empty for an unknown restaurant.
func (s *CatalogService) GetMenu(ctx context.Context, restaurantID int64) []models.MenuItem {
	items, err := s.repo.ListMenuItems(ctx, restaurantID)
	if err != nil {
		s.log.Error("list menu", slog.Int64("restaurant_id", restaurantID), slog.Any("error", err))
		return []models.MenuItem{}
	}
	if items == nil {
		return []models.MenuItem{}
	}
	return items
}

func (s *CatalogService) GetItemDetails(ctx context.Context, menuItemID int64) (*models.MenuItem, bool) {
	item, err := s.repo.GetMenuItem(ctx, menuItemID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.log.Error("get menu item", slog.Int64("menu_item_id", menuItemID), slog.Any("error", err))
		}
		return nil, false
	}
	return item, true
}

// Prices returns live menu items for ids; missing ids are simply absent.
func (s *CatalogService) Prices(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	if len(ids) == 0 {
		return map[int64]models.MenuItem{}, nil
	}
	items, err := s.repo.GetMenuItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	return items, nil
}

func (s *CatalogService) AddMenuItem(ctx context.Context, restaurantID int64, in models.MenuItemInput) (*models.MenuItem, error) {
	if err := validateMenuItemInput(in); err != nil {
		return nil, err
	}
	item := &models.MenuItem{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        models.RoundCents(in.Price),
		Available:    in.Available == nil || *in.Available,
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	s.log.Info("menu item added", slog.Int64("restaurant_id", restaurantID), slog.Int64("menu_item_id", item.ID))
	return item, nil
}

func (s *CatalogService) UpdateMenuItem(ctx context.Context, restaurantID, itemID int64, in models.MenuItemInput) (*models.MenuItem, error) {
	if err := validateMenuItemInput(in); err != nil {
		return nil, err
	}
	current, err := s.repo.GetMenuItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get menu item %d: %w", itemID, err)
	}
	if current.RestaurantID != restaurantID {
		return nil, fmt.Errorf("menu item %d: %w", itemID, models.ErrForbidden)
	}
	current.Name = strings.TrimSpace(in.Name)
	current.Description = in.Description
	current.Price = models.RoundCents(in.Price)
	if in.Available != nil {
		current.Available = *in.Available
	}
	if err := s.repo.UpdateMenuItem(ctx, current); err != nil {
		return nil, fmt.Errorf("update menu item %d: %w", itemID, err)
	}
	return current, nil
}

func (s *CatalogService) SetAvailability(ctx context.Context, restaurantID, itemID int64, available bool) error {
	if err := s.repo.SetAvailability(ctx, restaurantID, itemID, available); err != nil {
		return fmt.Errorf("set availability of %d: %w", itemID, err)
	}
	return nil
}

func (s *CatalogService) RemoveMenuItem(ctx context.Context, restaurantID, itemID int64) error {
	if err := s.repo.DeleteMenuItem(ctx, restaurantID, itemID); err != nil {
		return fmt.Errorf("delete menu item %d: %w", itemID, err)
	}
	s.log.Info("menu item removed", slog.Int64("restaurant_id", restaurantID), slog.Int64("menu_item_id", itemID))
	return nil
}
