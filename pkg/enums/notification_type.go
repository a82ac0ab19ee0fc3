package enums

import "strings"

// NotificationType is the declared type (or legacy topic) of a processor webhook.
type NotificationType string

const (
	NotificationTypePayment          NotificationType = "payment"
	NotificationTypeMerchantOrder    NotificationType = "merchant_order"
	NotificationTypePlan             NotificationType = "plan"
	NotificationTypeSubscription     NotificationType = "subscription_preapproval"
	NotificationTypePointIntegration NotificationType = "point_integration_wh"
)

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsPayment reports whether the notification refers to a payment resource.
func (n NotificationType) IsPayment() bool {
	return n == NotificationTypePayment
}

// ParseNotificationType normalizes raw input. Unknown types are kept verbatim so
// callers can log them.
func ParseNotificationType(value string) NotificationType {
	return NotificationType(strings.ToLower(strings.TrimSpace(value)))
}
