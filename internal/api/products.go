package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/panelkit/dealerpanel/internal/cart"
	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
)

// ProductsGateway reads the product catalog: paged group listings,
// full-text search, and the group taxonomy the filter sidebar shows.
type ProductsGateway struct {
	client *Client
}

// Products returns the catalog resource gateway.
func (c *Client) Products() *ProductsGateway {
	return &ProductsGateway{client: c}
}

// Product is one catalog entry.
type Product struct {
	StockNo     string  `json:"stkno"`
	Name        string  `json:"stokadi"`
	Price       float64 `json:"fiyat"`
	Unit        string  `json:"birim"`
	Kind        string  `json:"cinsi,omitempty"`
	GroupName   string  `json:"grupadi,omitempty"`
	VATRate     float64 `json:"kdv,omitempty"`
	Stock       float64 `json:"bakiye,omitempty"`
	ProductType string  `json:"uruntipi,omitempty"`
	Image       string  `json:"resim,omitempty"`
}

// CartItem converts a catalog product into a cart line with the given
// quantity, carrying catalog attributes in the line's metadata.
func (p Product) CartItem(quantity int) cart.Item {
	if quantity < 1 {
		quantity = 1
	}
	meta := map[string]any{}
	if p.Kind != "" {
		meta["cinsi"] = p.Kind
	}
	if p.GroupName != "" {
		meta["grupadi"] = p.GroupName
	}
	if p.VATRate != 0 {
		meta["kdv"] = p.VATRate
	}
	if p.ProductType != "" {
		meta["uruntipi"] = p.ProductType
	}
	if p.Image != "" {
		meta["resim"] = p.Image
	}
	if len(meta) == 0 {
		meta = nil
	}
	return cart.Item{
		StockNo:  p.StockNo,
		Name:     p.Name,
		Price:    p.Price,
		Currency: cart.DefaultCurrency,
		Unit:     p.Unit,
		Quantity: quantity,
		Meta:     meta,
	}
}

// Group is one node of the product group taxonomy.
type Group struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
	// TotalMatched is only set by search responses.
	TotalMatched int `json:"totalMatched,omitempty"`
}

// ListFilters narrows a catalog listing.
type ListFilters struct {
	Group     string // fgrp
	SubGroup  string // fagrp
	SubGroup2 string // fatgrp
	Page      int
	Limit     int
}

func (f ListFilters) query() url.Values {
	q := url.Values{}
	if f.Group != "" {
		q.Set("fgrp", f.Group)
	}
	if f.SubGroup != "" {
		q.Set("fagrp", f.SubGroup)
	}
	if f.SubGroup2 != "" {
		q.Set("fatgrp", f.SubGroup2)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// List returns a page of the catalog.
func (g *ProductsGateway) List(ctx context.Context, filters ListFilters) (ProductPage, error) {
	var page ProductPage
	if err := g.client.get(ctx, "/products", filters.query(), &page); err != nil {
		return ProductPage{}, apperrors.Wrap(apperrors.CodeProductsUnavailable, "list products", err)
	}
	return page, nil
}

// Search runs a full-text catalog search.
func (g *ProductsGateway) Search(ctx context.Context, term string, filters ListFilters) (ProductPage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return ProductPage{}, apperrors.New(apperrors.CodeProductsUnavailable, "search term is required")
	}
	q := filters.query()
	q.Set("q", term)

	var page ProductPage
	if err := g.client.get(ctx, "/products/search", q, &page); err != nil {
		return ProductPage{}, apperrors.Wrap(apperrors.CodeProductsUnavailable, "search products", err)
	}
	return page, nil
}

// Groups returns the top-level product groups.
func (g *ProductsGateway) Groups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := g.client.get(ctx, "/products/groups", nil, &groups); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProductsUnavailable, "list product groups", err)
	}
	return groups, nil
}

// SubGroups returns the second-level groups under a group.
func (g *ProductsGateway) SubGroups(ctx context.Context, groupID string) ([]Group, error) {
	var groups []Group
	path := "/products/groups/" + url.PathEscape(groupID) + "/subgroups"
	if err := g.client.get(ctx, path, nil, &groups); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProductsUnavailable, "list subgroups", err)
	}
	return groups, nil
}

// SubGroups2 returns the third-level groups under a group.
func (g *ProductsGateway) SubGroups2(ctx context.Context, groupID string) ([]Group, error) {
	var groups []Group
	path := "/products/groups/" + url.PathEscape(groupID) + "/subgroups2"
	if err := g.client.get(ctx, path, nil, &groups); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProductsUnavailable, "list subgroups2", err)
	}
	return groups, nil
}

// Get returns a single product by stock number.
func (g *ProductsGateway) Get(ctx context.Context, stockNo string) (Product, error) {
	var product Product
	if err := g.client.get(ctx, "/products/"+url.PathEscape(stockNo), nil, &product); err != nil {
		return Product{}, apperrors.Wrap(apperrors.CodeProductNotFound, "get product "+stockNo, err)
	}
	return product, nil
}
