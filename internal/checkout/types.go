package checkout

import "github.com/shopspring/decimal"

// LineItem is one product line sent to the processor.
type LineItem struct {
	ID        string          `json:"id" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal is quantity × unit price.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Phone struct {
	AreaCode string `json:"area_code"`
	Number   string `json:"number"`
}

type Address struct {
	StreetName   string `json:"street_name"`
	StreetNumber string `json:"street_number"`
	ZipCode      string `json:"zip_code"`
}

type Payer struct {
	Name    string   `json:"name"`
	Surname string   `json:"surname"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Phone   *Phone   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

type BackURLs struct {
	Success string `json:"success" validate:"omitempty,url"`
	Failure string `json:"failure" validate:"omitempty,url"`
	Pending string `json:"pending" validate:"omitempty,url"`
}

// PreferenceRequest is the checkout payload. Items are validated by the service so
// an empty or invalid list maps to a single "items required" error.
type PreferenceRequest struct {
	Items    []LineItem `json:"items"`
	Payer    *Payer     `json:"payer,omitempty" validate:"omitempty"`
	BackURLs *BackURLs  `json:"back_urls,omitempty" validate:"omitempty"`
}

// PreferenceResult is what the client needs to redirect to the hosted checkout.
type PreferenceResult struct {
	ID                string `json:"id"`
	InitPoint         string `json:"init_point"`
	SandboxInitPoint  string `json:"sandbox_init_point"`
	ExternalReference string `json:"-"`
}

// Total sums every line's subtotal.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
