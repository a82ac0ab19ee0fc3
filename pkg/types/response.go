package types

// SuccessEnvelope wraps storefront reads and cart mutations: {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public half of a pkg/errors.Error. Code is one of the
// pkg/errors codes (VALIDATION_ERROR, UPSTREAM_ERROR, ...).
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewErrorEnvelope drops details when the code does not allow exposing them.
func NewErrorEnvelope(code, message string, details any, detailsAllowed bool) ErrorEnvelope {
	env := ErrorEnvelope{Error: APIError{Code: code, Message: message}}
	if detailsAllowed {
		env.Error.Details = details
	}
	return env
}

// Receipt is the bare acknowledgement returned to the payment processor for
// every notification it should not redeliver.
type Receipt struct {
	Received bool `json:"received"`
}
