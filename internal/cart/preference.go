package cart

import "github.com/angelmondragon/storefront-backend/internal/checkout"

// ToPreferenceItems maps cart lines onto checkout line items, in cart order.
func ToPreferenceItems(state State) []checkout.LineItem {
	items := make([]checkout.LineItem, 0, len(state.Items))
	for _, item := range state.Items {
		items = append(items, checkout.LineItem{
			ID:        item.Product.ID,
			Title:     item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
		})
	}
	return items
}
