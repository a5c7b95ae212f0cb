package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/panelkit/dealerpanel/internal/cart"
)

// CartGateway issues authenticated calls against the backend cart
// resource. It satisfies the sync engine's RemoteCart contract.
type CartGateway struct {
	client *Client
}

// Cart returns the cart resource gateway.
func (c *Client) Cart() *CartGateway {
	return &CartGateway{client: c}
}

// cartPayload is the data section shared by every cart response.
type cartPayload struct {
	Items        []cart.Item `json:"items"`
	LastSyncedAt *time.Time  `json:"lastSyncedAt"`
}

func (p cartPayload) state() cart.ServerState {
	items := p.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cart.ServerState{Items: items, LastSyncedAt: p.LastSyncedAt}
}

// Fetch reads the current server cart.
func (g *CartGateway) Fetch(ctx context.Context) (cart.ServerState, error) {
	var payload cartPayload
	if err := g.client.get(ctx, "/cart", nil, &payload); err != nil {
		return cart.ServerState{}, err
	}
	return payload.state(), nil
}

// AddItem posts one line item; the server answers with the merged cart.
func (g *CartGateway) AddItem(ctx context.Context, item cart.Item) (cart.ServerState, error) {
	var payload cartPayload
	if err := g.client.send(ctx, http.MethodPost, "/cart/items", item, &payload); err != nil {
		return cart.ServerState{}, err
	}
	return payload.state(), nil
}

// UpdateQuantity replaces the quantity of one line.
func (g *CartGateway) UpdateQuantity(ctx context.Context, stockNo string, quantity int) (cart.ServerState, error) {
	var payload cartPayload
	body := map[string]int{"adet": quantity}
	if err := g.client.send(ctx, http.MethodPut, "/cart/items/"+url.PathEscape(stockNo), body, &payload); err != nil {
		return cart.ServerState{}, err
	}
	return payload.state(), nil
}

// RemoveItem deletes one line.
func (g *CartGateway) RemoveItem(ctx context.Context, stockNo string) (cart.ServerState, error) {
	var payload cartPayload
	if err := g.client.send(ctx, http.MethodDelete, "/cart/items/"+url.PathEscape(stockNo), nil, &payload); err != nil {
		return cart.ServerState{}, err
	}
	return payload.state(), nil
}

// Clear deletes the whole server cart. The response carries only a
// timestamp; the resulting state is the empty cart.
func (g *CartGateway) Clear(ctx context.Context) (cart.ServerState, error) {
	var payload cartPayload
	if err := g.client.send(ctx, http.MethodDelete, "/cart", nil, &payload); err != nil {
		return cart.ServerState{}, err
	}
	return cart.ServerState{Items: []cart.Item{}, LastSyncedAt: payload.LastSyncedAt}, nil
}

// Sync pushes a full local item list for server-side merge and returns
// the merged result.
func (g *CartGateway) Sync(ctx context.Context, items []cart.Item) (cart.ServerState, error) {
	var payload cartPayload
	body := map[string][]cart.Item{"items": items}
	if err := g.client.send(ctx, http.MethodPost, "/cart/sync", body, &payload); err != nil {
		return cart.ServerState{}, err
	}
	return payload.state(), nil
}
