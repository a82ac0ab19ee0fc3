package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the snapshot of a catalog product taken when it enters the cart.
type Product struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Slug   string          `json:"slug"`
	Price  decimal.Decimal `json:"price"`
	Images []string        `json:"images"`
}

// Item is one cart line. Product.ID is its identity; a cart holds at most one Item
// per product.
type Item struct {
	Product       Product   `json:"product"`
	Quantity      int       `json:"quantity"`
	SelectedColor *string   `json:"selected_color,omitempty"`
	AddedAt       time.Time `json:"added_at"`
}

// Subtotal is quantity × price.
func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is the whole cart. ItemCount and Total are derived from Items on every
// transition and are never set independently.
type State struct {
	Items          []Item          `json:"items"`
	ItemCount      int             `json:"item_count"`
	Total          decimal.Decimal `json:"total"`
	IsOpen         bool            `json:"is_open"`
	IsLoading      bool            `json:"is_loading"`
	Error          *string         `json:"error"`
	SuccessMessage *string         `json:"success_message"`
}

// Default is the empty cart.
func Default() State {
	return State{
		Items: []Item{},
		Total: decimal.Zero,
	}
}

// Find returns the item for productID, if present.
func (s State) Find(productID string) (Item, bool) {
	for _, item := range s.Items {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return Item{}, false
}
