package mercadopagowebhook

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/mercadopago"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"gorm.io/gorm"
)

// PaymentFetcher loads the authoritative payment from the processor.
type PaymentFetcher interface {
	GetPayment(ctx context.Context, id int64) (*mercadopago.Payment, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type deliveryGuard interface {
	CheckAndMark(ctx context.Context, deliveryID string) (bool, error)
	Delete(ctx context.Context, deliveryID string) error
}

type ServiceParams struct {
	Payments          PaymentFetcher
	Events            EventRepository
	Preferences       checkout.Repository
	TransactionRunner txRunner
	// Guard is optional; without it every delivery is processed.
	Guard   deliveryGuard
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

// Outcome describes what Handle did with a notification.
type Outcome struct {
	Ignored   bool
	Duplicate bool
	Status    enums.PaymentStatus
}

type Service struct {
	payments PaymentFetcher
	events   EventRepository
	prefs    checkout.Repository
	txRunner txRunner
	guard    deliveryGuard
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment client required")
	}
	if params.Events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment event repo required")
	}
	if params.Preferences == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "preference repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		payments: params.Payments,
		events:   params.Events,
		prefs:    params.Preferences,
		txRunner: params.TransactionRunner,
		guard:    params.Guard,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Handle processes one notification: received, fetched, then one of
// approved, pending, rejected or unknown.
func (s *Service) Handle(ctx context.Context, n Notification) (Outcome, error) {
	switch note := n.(type) {
	case *IgnoredNotification:
		s.logg.Info(s.logg.WithField(ctx, "notification_type", note.NotificationType.String()), "webhook.ignored")
		s.metrics.IncWebhook(metrics.WebhookIgnored)
		return Outcome{Ignored: true}, nil
	case *PaymentNotification:
		outcome, err := s.handlePayment(ctx, note)
		if err != nil {
			s.metrics.IncWebhook(metrics.WebhookFailed)
		}
		return outcome, err
	default:
		s.metrics.IncWebhook(metrics.WebhookInvalid)
		return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported notification")
	}
}

func (s *Service) handlePayment(ctx context.Context, n *PaymentNotification) (Outcome, error) {
	ctx = s.logg.WithPaymentID(ctx, n.PaymentID)
	ctx = s.logg.WithFields(ctx, map[string]any{"action": n.Action, "delivery_id": n.DedupeKey()})
	s.logg.Info(ctx, "webhook.received")

	if s.guard != nil {
		seen, err := s.guard.CheckAndMark(ctx, n.DedupeKey())
		if err != nil {
			return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook guard")
		}
		if seen {
			s.logg.Info(ctx, "webhook.duplicate_delivery")
			s.metrics.IncWebhook(metrics.WebhookDuplicate)
			return Outcome{Duplicate: true}, nil
		}
	}

	outcome, err := s.process(ctx, n)
	if err != nil && s.guard != nil {
		if delErr := s.guard.Delete(ctx, n.DedupeKey()); delErr != nil {
			s.logg.Error(ctx, "webhook.guard_release_failed", delErr)
		}
	}
	return outcome, err
}

func (s *Service) process(ctx context.Context, n *PaymentNotification) (Outcome, error) {
	payment, err := s.payments.GetPayment(ctx, n.PaymentID)
	if err != nil {
		s.logg.Error(ctx, "webhook.fetch_failed", err)
		if typed := pkgerrors.As(err); typed != nil {
			return Outcome{}, typed
		}
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, err.Error())
	}
	if payment == nil {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeUpstream, "payment not returned by processor")
	}

	status := enums.ClassifyPaymentStatus(payment.Status)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"payment_status":     status.String(),
		"raw_status":         payment.Status,
		"status_detail":      payment.StatusDetail,
		"external_reference": payment.ExternalReference,
	})
	s.logg.Info(ctx, "webhook.fetched")

	applied := false
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		inserted, err := s.events.WithTx(tx).Record(ctx, &models.PaymentEvent{
			PaymentID:         payment.ID,
			Status:            status,
			StatusDetail:      payment.StatusDetail,
			ExternalReference: payment.ExternalReference,
			Action:            n.Action,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment event")
		}
		if !inserted {
			return nil
		}
		applied = true
		return s.applyStatus(ctx, tx, payment, status)
	})
	if err != nil {
		return Outcome{}, err
	}

	if !applied {
		s.logg.Info(ctx, "webhook.status_already_applied")
		s.metrics.IncWebhook(metrics.WebhookDuplicate)
		return Outcome{Duplicate: true, Status: status}, nil
	}

	switch status {
	case enums.PaymentStatusApproved:
		s.logg.Info(ctx, "webhook.payment_approved")
	case enums.PaymentStatusPending:
		s.logg.Info(ctx, "webhook.payment_pending")
	case enums.PaymentStatusRejected:
		s.logg.Info(ctx, "webhook.payment_rejected")
	default:
		s.logg.Warn(ctx, "webhook.payment_unknown_status")
	}
	s.metrics.IncWebhook(status.String())
	return Outcome{Status: status}, nil
}

func (s *Service) applyStatus(ctx context.Context, tx *gorm.DB, payment *mercadopago.Payment, status enums.PaymentStatus) error {
	if status == enums.PaymentStatusUnknown {
		return nil
	}
	if payment.ExternalReference == "" {
		s.logg.Warn(ctx, "webhook.missing_external_reference")
		return nil
	}
	err := s.prefs.WithTx(tx).UpdateStatus(ctx, payment.ExternalReference, status, payment.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Warn(ctx, "webhook.unknown_external_reference")
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment preference")
	}
	return nil
}
