package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	mercadopagowebhook "github.com/angelmondragon/storefront-backend/internal/webhooks/mercadopago"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const maxWebhookBody = 1 << 20

// NotificationHandler processes a parsed processor notification.
type NotificationHandler interface {
	Handle(ctx context.Context, n mercadopagowebhook.Notification) (mercadopagowebhook.Outcome, error)
}

type signatureVerifier interface {
	Verify(signature, requestID, dataID string) error
}

// MercadoPagoWebhook acknowledges processor notifications. Malformed bodies are 400
// and bad signatures 401. Processing failures keep their mapped 5xx so the
// processor retries.
func MercadoPagoWebhook(svc NotificationHandler, verifier signatureVerifier, m *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		notification, err := mercadopagowebhook.Parse(payload, r.URL.Query())
		if err != nil {
			m.IncWebhook(metrics.WebhookInvalid)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// Ignored types never reach the processor, so they are acknowledged even
		// when payments are not configured.
		if ignored, ok := notification.(*mercadopagowebhook.IgnoredNotification); ok && svc == nil {
			m.IncWebhook(metrics.WebhookIgnored)
			if logg != nil {
				logg.Info(logg.WithField(ctx, "notification_type", ignored.NotificationType.String()), "webhook.ignored")
			}
			responses.WriteJSON(w, http.StatusOK, types.Receipt{Received: true})
			return
		}
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		if payment, ok := notification.(*mercadopagowebhook.PaymentNotification); ok && verifier != nil {
			err := verifier.Verify(
				r.Header.Get(mercadopagowebhook.SignatureHeader),
				r.Header.Get(mercadopagowebhook.RequestIDHeader),
				payment.DataID(),
			)
			if err != nil {
				m.IncWebhook(metrics.WebhookInvalid)
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		if _, err := svc.Handle(ctx, notification); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, types.Receipt{Received: true})
	}
}
