package enums

import (
	"fmt"
	"strings"
)

// PaymentStatus is the outcome branch a processor payment lands in.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
	PaymentStatusUnknown  PaymentStatus = "unknown"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusApproved,
	PaymentStatusRejected,
	PaymentStatusUnknown,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is expected.
func (p PaymentStatus) IsTerminal() bool {
	return p == PaymentStatusApproved || p == PaymentStatusRejected
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}

// ClassifyPaymentStatus maps a processor status onto the branches the storefront
// acts on. Anything it does not recognize is unknown.
func ClassifyPaymentStatus(raw string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved":
		return PaymentStatusApproved
	case "pending":
		return PaymentStatusPending
	case "rejected":
		return PaymentStatusRejected
	default:
		return PaymentStatusUnknown
	}
}
