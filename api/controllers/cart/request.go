package cart

import (
	"strings"

	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
)

type addItemRequest struct {
	ProductID     string  `json:"product_id" validate:"required"`
	Quantity      *int    `json:"quantity,omitempty"`
	SelectedColor *string `json:"selected_color,omitempty"`
}

// quantity defaults to one; the reducer floors anything lower.
func (r addItemRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

func (r addItemRequest) color() *string {
	if r.SelectedColor == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.SelectedColor)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type visibilityRequest struct {
	Open *bool `json:"open" validate:"required"`
}

type checkoutRequest struct {
	Payer    *checkout.Payer    `json:"payer,omitempty"`
	BackURLs *checkout.BackURLs `json:"back_urls,omitempty"`
}

func toCartProduct(p *catalog.ProductDTO) cartsvc.Product {
	images := append([]string(nil), p.Images...)
	return cartsvc.Product{
		ID:     p.ID.String(),
		Name:   p.Name,
		Slug:   p.Slug,
		Price:  p.Price,
		Images: images,
	}
}
