package mercadopago

// Item is one preference line item.
type Item struct {
	ID         string
	Title      string
	CurrencyID string
	Quantity   int
	UnitPrice  float64
}

type Phone struct {
	AreaCode string
	Number   string
}

type Address struct {
	StreetName   string
	StreetNumber string
	ZipCode      string
}

type Payer struct {
	Name    string
	Surname string
	Email   string
	Phone   *Phone
	Address *Address
}

type BackURLs struct {
	Success string
	Failure string
	Pending string
}

// PreferenceInput is everything needed to open a hosted checkout.
type PreferenceInput struct {
	Items             []Item
	Payer             *Payer
	BackURLs          BackURLs
	AutoReturn        string
	ExternalReference string
	NotificationURL   string
}

// Preference is the processor's answer to a preference creation.
type Preference struct {
	ID                string
	InitPoint         string
	SandboxInitPoint  string
	ExternalReference string
}

// Payment is the subset of a processor payment the storefront acts on.
type Payment struct {
	ID                int64
	Status            string
	StatusDetail      string
	ExternalReference string
	CurrencyID        string
	TransactionAmount float64
}
