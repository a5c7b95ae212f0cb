package api

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
)

// FavoritesGateway manages the dealer's server-side favorite products.
type FavoritesGateway struct {
	client *Client
}

// Favorites returns the favorites resource gateway.
func (c *Client) Favorites() *FavoritesGateway {
	return &FavoritesGateway{client: c}
}

// List returns the dealer's favorite products.
func (g *FavoritesGateway) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := g.client.get(ctx, "/favorites", nil, &products); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFavoritesUnavailable, "list favorites", err)
	}
	return products, nil
}

// Add marks a product as favorite. The backend stores a catalog
// snapshot, so the full product is posted.
func (g *FavoritesGateway) Add(ctx context.Context, product Product) error {
	if err := g.client.send(ctx, http.MethodPost, "/favorites", product, nil); err != nil {
		return apperrors.Wrap(apperrors.CodeFavoritesUnavailable, "add favorite "+product.StockNo, err)
	}
	return nil
}

// Remove unmarks a favorite by stock number.
func (g *FavoritesGateway) Remove(ctx context.Context, stockNo string) error {
	if err := g.client.send(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(stockNo), nil, nil); err != nil {
		return apperrors.Wrap(apperrors.CodeFavoritesUnavailable, "remove favorite "+stockNo, err)
	}
	return nil
}

// Check reports which of the given stock numbers are favorites, so
// listing pages can badge results with one call.
func (g *FavoritesGateway) Check(ctx context.Context, stockNos []string) (map[string]bool, error) {
	body := map[string][]string{"stknoList": stockNos}
	var marks map[string]bool
	if err := g.client.send(ctx, http.MethodPost, "/favorites/check", body, &marks); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFavoritesUnavailable, "check favorites", err)
	}
	if marks == nil {
		marks = map[string]bool{}
	}
	return marks, nil
}

// Count returns how many favorites the dealer has.
func (g *FavoritesGateway) Count(ctx context.Context) (int, error) {
	var payload struct {
		Count int `json:"count"`
	}
	if err := g.client.get(ctx, "/favorites/count", nil, &payload); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeFavoritesUnavailable, "count favorites", err)
	}
	return payload.Count, nil
}
