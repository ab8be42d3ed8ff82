package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/foodgram/foodgram/internal/metrics"
	"github.com/foodgram/foodgram/internal/model"
)

// ShoppingListHeader is the first line of a rendered shopping list.
const ShoppingListHeader = "Shopping list:"

// ShoppingListFilename is the attachment name used for downloads.
const ShoppingListFilename = "list-to-buy.txt"

// ShoppingService aggregates the ingredients of a user's cart.
type ShoppingService struct {
	store   ShoppingStore
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewShoppingService creates a new ShoppingService.
func NewShoppingService(store ShoppingStore, logger *slog.Logger, recorder metrics.Recorder) *ShoppingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ShoppingService{store: store, logger: logger, metrics: recorder}
}

// BuildShoppingList sums ingredient amounts across every recipe in the
// user's cart. An empty cart yields an empty list.
func (s *ShoppingService) BuildShoppingList(ctx context.Context, userID int64) ([]model.ShoppingItem, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	start := time.Now()
	lines, err := s.store.ListCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	items := Aggregate(lines)
	s.metrics.ObserveShoppingListBuild(time.Since(start), len(items))
	s.logger.Debug("shopping_list_built",
		slog.Int64("user_id", userID),
		slog.Int("lines", len(lines)),
		slog.Int("items", len(items)),
	)
	return items, nil
}

// Aggregate groups cart lines by ingredient and sums their amounts.
// Items are ordered by name, then unit, then ingredient ID.
func Aggregate(lines []model.CartLine) []model.ShoppingItem {
	byID := make(map[int64]*model.ShoppingItem)
	for _, line := range lines {
		item, ok := byID[line.IngredientID]
		if !ok {
			item = &model.ShoppingItem{
				IngredientID:    line.IngredientID,
				Name:            line.Name,
				MeasurementUnit: line.MeasurementUnit,
			}
			byID[line.IngredientID] = item
		}
		item.Amount += int64(line.Amount)
	}

	items := make([]model.ShoppingItem, 0, len(byID))
	for _, item := range byID {
		items = append(items, *item)
	}

	slices.SortFunc(items, func(a, b model.ShoppingItem) int {
		return cmp.Or(
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.MeasurementUnit, b.MeasurementUnit),
			cmp.Compare(a.IngredientID, b.IngredientID),
		)
	})
	return items
}

// RenderShoppingList formats items as plain text: the header line, then one
// "{name} - {amount} {unit}." line per item.
func RenderShoppingList(items []model.ShoppingItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = item.String()
	}
	return ShoppingListHeader + "\n" + strings.Join(lines, "\n")
}
