package api

import (
	"context"
	"net/http"
	"time"

	"github.com/panelkit/dealerpanel/internal/cart"
	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
)

// OrdersGateway places orders and reads order history.
type OrdersGateway struct {
	client *Client
}

// Orders returns the orders resource gateway.
func (c *Client) Orders() *OrdersGateway {
	return &OrdersGateway{client: c}
}

// Order is one placed order as reported by the backend.
type Order struct {
	OrderNo   string      `json:"siparisNo"`
	Status    string      `json:"durum,omitempty"`
	Total     float64     `json:"toplam,omitempty"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
	Items     []cart.Item `json:"products,omitempty"`
}

// DashboardStats summarizes the dealer's activity for the landing page.
type DashboardStats struct {
	OrderCount    int     `json:"orderCount"`
	PendingOrders int     `json:"pendingOrders"`
	FavoriteCount int     `json:"favoriteCount"`
	CartTotal     float64 `json:"cartTotal"`
}

// List returns the dealer's order history.
func (g *OrdersGateway) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := g.client.get(ctx, "/orders", nil, &orders); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOrdersUnavailable, "list orders", err)
	}
	return orders, nil
}

// Create places an order from the given cart lines. Order placement is
// the one cart-adjacent operation whose failure IS user-visible; the
// caller surfaces the localized error.
func (g *OrdersGateway) Create(ctx context.Context, items []cart.Item) (Order, error) {
	if len(items) == 0 {
		return Order{}, apperrors.New(apperrors.CodeOrderCreateFailed, "cannot order an empty cart")
	}
	body := map[string][]cart.Item{"products": items}
	var order Order
	if err := g.client.send(ctx, http.MethodPost, "/orders", body, &order); err != nil {
		return Order{}, apperrors.Wrap(apperrors.CodeOrderCreateFailed, "create order", err)
	}
	return order, nil
}

// DashboardStats returns the landing-page summary numbers.
func (g *OrdersGateway) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	if err := g.client.get(ctx, "/dashboard/stats", nil, &stats); err != nil {
		return DashboardStats{}, apperrors.Wrap(apperrors.CodeOrdersUnavailable, "dashboard stats", err)
	}
	return stats, nil
}
