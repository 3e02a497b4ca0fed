package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/cafe-pickup/api/internal/database"
	"github.com/shopspring/decimal"
)

// AnalyticsStore defines the store methods analytics reads.
// Satisfied by database.Store; narrow interface for testability.
type AnalyticsStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
}

// PopularItem is the ordered quantity of one menu item across all orders.
type PopularItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
	TotalAmount int64  `json:"totalAmount"`
	// RevenueShare is TotalAmount as a percentage of all item revenue, two decimals.
	RevenueShare string `json:"revenueShare"`
}

// TimeSlot counts orders sharing a pickup time.
type TimeSlot struct {
	TimeSlot   string `json:"timeSlot"`
	OrderCount int64  `json:"orderCount"`
}

// AnalyticsService aggregates orders on every call. Nothing is cached.
type AnalyticsService struct {
	store AnalyticsStore
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// PopularItems sums quantities per menu item over all orders, priced at the
// current menu price. Lines whose menu item no longer exists are skipped.
func (s *AnalyticsService) PopularItems(ctx context.Context) ([]PopularItem, error) {
	menu, err := s.store.ListMenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	orders, err := s.store.ListOrders(ctx, database.ListOrdersParams{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	byID := make(map[int64]database.MenuItem, len(menu))
	for _, item := range menu {
		byID[item.ID] = item
	}

	agg := make(map[int64]*PopularItem)
	for _, o := range orders {
		for _, line := range o.Items {
			item, ok := byID[line.MenuItemID]
			if !ok {
				continue
			}
			p, ok := agg[item.ID]
			if !ok {
				p = &PopularItem{ID: item.ID, Name: item.Name}
				agg[item.ID] = p
			}
			p.Quantity += int64(line.Quantity)
		}
	}

	result := make([]PopularItem, 0, len(agg))
	revenue := decimal.Zero
	for _, p := range agg {
		p.TotalAmount = byID[p.ID].Price * p.Quantity
		revenue = revenue.Add(decimal.NewFromInt(p.TotalAmount))
		result = append(result, *p)
	}

	hundred := decimal.NewFromInt(100)
	for i := range result {
		share := decimal.Zero
		if revenue.IsPositive() {
			share = decimal.NewFromInt(result[i].TotalAmount).Mul(hundred).Div(revenue)
		}
		result[i].RevenueShare = share.StringFixed(2)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Quantity != result[j].Quantity {
			return result[i].Quantity > result[j].Quantity
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// OrdersByTimeSlot counts orders per raw pickup time, in ascending slot order.
func (s *AnalyticsService) OrdersByTimeSlot(ctx context.Context) ([]TimeSlot, error) {
	orders, err := s.store.ListOrders(ctx, database.ListOrdersParams{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	counts := make(map[string]int64)
	for _, o := range orders {
		counts[o.PickupTime]++
	}

	result := make([]TimeSlot, 0, len(counts))
	for slot, n := range counts {
		result = append(result, TimeSlot{TimeSlot: slot, OrderCount: n})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimeSlot < result[j].TimeSlot
	})
	return result, nil
}
