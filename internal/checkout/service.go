package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/mercadopago"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const ItemsRequiredMessage = "items required"

// Gateway is the processor surface used to open a hosted checkout.
type Gateway interface {
	CreatePreference(ctx context.Context, in mercadopago.PreferenceInput) (*mercadopago.Preference, error)
}

// Service creates payment preferences.
type Service interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*PreferenceResult, error)
}

// ServiceParams wires the checkout service. A nil Gateway means the processor is
// not configured; a nil Repo skips recording preferences.
type ServiceParams struct {
	Gateway    Gateway
	Repo       Repository
	Storefront config.StorefrontConfig
	Currency   currency.Unit
	Logger     *logger.Logger
	Metrics    *metrics.StorefrontMetrics
	Now        func() time.Time
}

type service struct {
	gateway    Gateway
	repo       Repository
	storefront config.StorefrontConfig
	currency   string
	logg       *logger.Logger
	metrics    *metrics.StorefrontMetrics
	now        func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Currency == (currency.Unit{}) {
		return nil, fmt.Errorf("currency required")
	}
	if strings.TrimSpace(params.Storefront.BaseURL) == "" {
		return nil, fmt.Errorf("storefront base url required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		gateway:    params.Gateway,
		repo:       params.Repo,
		storefront: params.Storefront,
		currency:   params.Currency.String(),
		logg:       params.Logger,
		metrics:    params.Metrics,
		now:        now,
	}, nil
}

func (s *service) CreatePreference(ctx context.Context, req PreferenceRequest) (*PreferenceResult, error) {
	if !validItems(req.Items) {
		s.metrics.IncPreference(metrics.PreferenceInvalid)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ItemsRequiredMessage)
	}
	if s.gateway == nil {
		s.metrics.IncPreference(metrics.PreferenceUnconfigured)
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment processor not configured")
	}

	now := s.now()
	input := mercadopago.PreferenceInput{
		Items:             s.toGatewayItems(req.Items),
		Payer:             toGatewayPayer(req.Payer),
		BackURLs:          s.backURLs(req.BackURLs),
		AutoReturn:        mercadopago.AutoReturnApproved,
		ExternalReference: newExternalReference(now),
		NotificationURL:   s.storefront.WebhookURL(),
	}

	ctx = s.logg.WithField(ctx, "external_reference", input.ExternalReference)
	started := time.Now()
	pref, err := s.gateway.CreatePreference(ctx, input)
	s.metrics.ObservePreferenceDuration(time.Since(started))
	if err != nil {
		s.metrics.IncPreference(metrics.PreferenceUpstreamErr)
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, err.Error())
	}

	s.metrics.IncPreference(metrics.PreferenceCreated)
	s.record(ctx, req, input, pref)

	return &PreferenceResult{
		ID:                pref.ID,
		InitPoint:         pref.InitPoint,
		SandboxInitPoint:  pref.SandboxInitPoint,
		ExternalReference: input.ExternalReference,
	}, nil
}

func (s *service) record(ctx context.Context, req PreferenceRequest, input mercadopago.PreferenceInput, pref *mercadopago.Preference) {
	if s.repo == nil {
		return
	}
	items, err := json.Marshal(req.Items)
	if err != nil {
		s.logg.Error(ctx, "checkout.record_preference.encode_failed", err)
		return
	}
	row := &models.PaymentPreference{
		ExternalReference: input.ExternalReference,
		PreferenceID:      pref.ID,
		Currency:          s.currency,
		Total:             Total(req.Items),
		Items:             string(items),
		Status:            enums.PaymentStatusPending,
	}
	if req.Payer != nil && strings.TrimSpace(req.Payer.Email) != "" {
		email := strings.TrimSpace(req.Payer.Email)
		row.PayerEmail = &email
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logg.Error(ctx, "checkout.record_preference_failed", err)
	}
}

func (s *service) toGatewayItems(items []LineItem) []mercadopago.Item {
	out := make([]mercadopago.Item, 0, len(items))
	for _, item := range items {
		out = append(out, mercadopago.Item{
			ID:         item.ID,
			Title:      item.Title,
			CurrencyID: s.currency,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.InexactFloat64(),
		})
	}
	return out
}

func (s *service) backURLs(in *BackURLs) mercadopago.BackURLs {
	out := mercadopago.BackURLs{
		Success: s.storefront.CheckoutURL("success"),
		Failure: s.storefront.CheckoutURL("failure"),
		Pending: s.storefront.CheckoutURL("pending"),
	}
	if in == nil {
		return out
	}
	if v := strings.TrimSpace(in.Success); v != "" {
		out.Success = v
	}
	if v := strings.TrimSpace(in.Failure); v != "" {
		out.Failure = v
	}
	if v := strings.TrimSpace(in.Pending); v != "" {
		out.Pending = v
	}
	return out
}

func toGatewayPayer(p *Payer) *mercadopago.Payer {
	if p == nil {
		return nil
	}
	out := &mercadopago.Payer{
		Name:    p.Name,
		Surname: p.Surname,
		Email:   p.Email,
	}
	if p.Phone != nil {
		out.Phone = &mercadopago.Phone{AreaCode: p.Phone.AreaCode, Number: p.Phone.Number}
	}
	if p.Address != nil {
		out.Address = &mercadopago.Address{
			StreetName:   p.Address.StreetName,
			StreetNumber: p.Address.StreetNumber,
			ZipCode:      p.Address.ZipCode,
		}
	}
	return out
}

func validItems(items []LineItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Title) == "" {
			return false
		}
		if item.Quantity <= 0 || !item.UnitPrice.IsPositive() {
			return false
		}
	}
	return true
}

// newExternalReference returns order-<unix millis>-<8 hex chars>.
func newExternalReference(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("order-%d-%s", now.UnixMilli(), suffix)
}
