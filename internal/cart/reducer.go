package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddItem appends product with max(1, quantity), or bumps an existing line by
// exactly one. The quantity argument only applies to new lines. No stock check.
func AddItem(state State, product Product, quantity int, selectedColor *string, now time.Time) State {
	items := cloneItems(state.Items)
	for i := range items {
		if items[i].Product.ID == product.ID {
			items[i].Quantity++
			return recompute(state, items)
		}
	}

	if quantity < 1 {
		quantity = 1
	}
	items = append(items, Item{
		Product:       cloneProduct(product),
		Quantity:      quantity,
		SelectedColor: cloneString(selectedColor),
		AddedAt:       now,
	})
	return recompute(state, items)
}

// RemoveItem drops the line for productID. Absent products are a no-op.
func RemoveItem(state State, productID string) State {
	items := make([]Item, 0, len(state.Items))
	for _, item := range state.Items {
		if item.Product.ID != productID {
			items = append(items, item)
		}
	}
	return recompute(state, items)
}

// UpdateQuantity sets the line's quantity to max(0, quantity); zero removes the line.
// No stock clamp.
func UpdateQuantity(state State, productID string, quantity int) State {
	if quantity <= 0 {
		return RemoveItem(state, productID)
	}
	items := cloneItems(state.Items)
	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity = quantity
			break
		}
	}
	return recompute(state, items)
}

// ClearCart empties the cart.
func ClearCart(state State) State {
	return recompute(state, []Item{})
}

// SetOpen toggles the cart drawer flag without touching items.
func SetOpen(state State, open bool) State {
	state.IsOpen = open
	return recompute(state, state.Items)
}

func recompute(state State, items []Item) State {
	if items == nil {
		items = []Item{}
	}
	state.Items = items
	state.ItemCount = 0
	state.Total = decimal.Zero
	for _, item := range items {
		state.ItemCount += item.Quantity
		state.Total = state.Total.Add(item.Subtotal())
	}
	return state
}

// normalize repairs a decoded state: lines with a non-positive quantity or a
// duplicate product are dropped, then derived fields are recomputed.
func normalize(state State) State {
	seen := make(map[string]struct{}, len(state.Items))
	items := make([]Item, 0, len(state.Items))
	for _, item := range state.Items {
		if item.Quantity < 1 || item.Product.ID == "" {
			continue
		}
		if _, dup := seen[item.Product.ID]; dup {
			continue
		}
		seen[item.Product.ID] = struct{}{}
		items = append(items, item)
	}
	return recompute(state, items)
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func cloneProduct(p Product) Product {
	if p.Images != nil {
		p.Images = append([]string(nil), p.Images...)
	}
	return p
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
