package mercadopagowebhook

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Notification is a parsed webhook delivery: either *PaymentNotification or
// *IgnoredNotification.
type Notification interface {
	Type() enums.NotificationType
	notification()
}

// PaymentNotification announces a change on a payment.
type PaymentNotification struct {
	NotificationID string
	PaymentID      int64
	Action         string
}

func (*PaymentNotification) Type() enums.NotificationType { return enums.NotificationTypePayment }
func (*PaymentNotification) notification()                {}

// DataID is the payment id as it appears in data.id.
func (n *PaymentNotification) DataID() string {
	return strconv.FormatInt(n.PaymentID, 10)
}

// DedupeKey identifies the delivery. Redeliveries of the same notification share it.
func (n *PaymentNotification) DedupeKey() string {
	if n.NotificationID != "" {
		return n.NotificationID
	}
	action := n.Action
	if action == "" {
		action = "notified"
	}
	return n.DataID() + ":" + action
}

// IgnoredNotification is a well-formed delivery for a type the storefront does not act on.
type IgnoredNotification struct {
	NotificationType enums.NotificationType
}

func (n *IgnoredNotification) Type() enums.NotificationType { return n.NotificationType }
func (*IgnoredNotification) notification()                 {}

type notificationBody struct {
	ID     json.RawMessage `json:"id"`
	Type   string          `json:"type"`
	Topic  string          `json:"topic"`
	Action string          `json:"action"`
	Data   struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// Parse builds a Notification from a JSON body, falling back to the legacy
// query-string form (?topic=payment&id=… or ?type=payment&data.id=…) when the
// body is empty.
func Parse(body []byte, query url.Values) (Notification, error) {
	var raw notificationBody
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification body")
		}
	}

	kind := firstNonEmpty(raw.Type, raw.Topic, query.Get("type"), query.Get("topic"))
	if kind == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification type required")
	}
	notificationType := enums.ParseNotificationType(kind)
	if !notificationType.IsPayment() {
		return &IgnoredNotification{NotificationType: notificationType}, nil
	}

	dataID := firstNonEmpty(rawID(raw.Data.ID), query.Get("data.id"))
	notificationID := rawID(raw.ID)
	if dataID == "" && raw.Type == "" && raw.Topic == "" {
		// legacy ?topic=payment&id=<payment id>
		dataID = query.Get("id")
	}
	if dataID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	paymentID, err := strconv.ParseInt(dataID, 10, 64)
	if err != nil || paymentID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id must be numeric").
			WithDetails(map[string]any{"data.id": dataID})
	}

	return &PaymentNotification{
		NotificationID: notificationID,
		PaymentID:      paymentID,
		Action:         strings.TrimSpace(raw.Action),
	}, nil
}

// rawID accepts ids sent either as JSON strings or numbers.
func rawID(msg json.RawMessage) string {
	if len(msg) == 0 || string(msg) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
