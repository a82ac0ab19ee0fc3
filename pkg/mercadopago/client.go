package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const AutoReturnApproved = "approved"

var (
	errAccessTokenRequired = errors.New("mercadopago access token is required")
	errLoggerRequired      = errors.New("mercadopago logger is required")
)

type preferenceAPI interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentAPI interface {
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// Client exposes the Mercado Pago primitives the storefront needs with centralized
// logging and error mapping.
type Client struct {
	preferences preferenceAPI
	payments    paymentAPI
	logger      *logger.Logger
}

// NewClient initializes the SDK clients from the configured access token.
func NewClient(ctx context.Context, cfg config.MercadoPagoConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}

	sdkCfg, err := mpconfig.New(token)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	c := &Client{
		preferences: preference.NewClient(sdkCfg),
		payments:    payment.NewClient(sdkCfg),
		logger:      logg,
	}
	logg.Info(ctx, "mercadopago client initialized")
	return c, nil
}

// CreatePreference opens a hosted checkout. Failures come back as upstream errors
// carrying the processor's message.
func (c *Client) CreatePreference(ctx context.Context, in PreferenceInput) (*Preference, error) {
	if c == nil || c.preferences == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mercadopago client not configured")
	}

	req := toPreferenceRequest(in)
	c.log(ctx, "request", "create_preference", map[string]any{
		"external_reference": in.ExternalReference,
		"items":              len(in.Items),
		"payer_email":        payerEmail(in.Payer),
	})

	resp, err := c.preferences.Create(ctx, req)
	if err != nil {
		c.log(ctx, "error", "create_preference", map[string]any{"error": err.Error()})
		return nil, mapError(err)
	}
	if resp == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "mercadopago returned an empty preference")
	}

	c.log(ctx, "response", "create_preference", map[string]any{"preference_id": resp.ID})
	return &Preference{
		ID:                resp.ID,
		InitPoint:         resp.InitPoint,
		SandboxInitPoint:  resp.SandboxInitPoint,
		ExternalReference: resp.ExternalReference,
	}, nil
}

// GetPayment fetches the authoritative payment state.
func (c *Client) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	if c == nil || c.payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mercadopago client not configured")
	}

	c.log(ctx, "request", "get_payment", map[string]any{"payment_id": id})
	resp, err := c.payments.Get(ctx, int(id))
	if err != nil {
		c.log(ctx, "error", "get_payment", map[string]any{"error": err.Error()})
		return nil, mapError(err)
	}
	if resp == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "mercadopago returned an empty payment")
	}

	c.log(ctx, "response", "get_payment", map[string]any{"payment_id": resp.ID, "status": resp.Status})
	return &Payment{
		ID:                int64(resp.ID),
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
		CurrencyID:        resp.CurrencyID,
		TransactionAmount: resp.TransactionAmount,
	}, nil
}

func toPreferenceRequest(in PreferenceInput) preference.Request {
	items := make([]preference.ItemRequest, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, preference.ItemRequest{
			ID:         item.ID,
			Title:      item.Title,
			CurrencyID: item.CurrencyID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}

	req := preference.Request{
		Items: items,
		BackURLs: &preference.BackURLsRequest{
			Success: in.BackURLs.Success,
			Failure: in.BackURLs.Failure,
			Pending: in.BackURLs.Pending,
		},
		AutoReturn:        in.AutoReturn,
		ExternalReference: in.ExternalReference,
		NotificationURL:   in.NotificationURL,
	}

	if in.Payer != nil {
		payer := &preference.PayerRequest{
			Name:    in.Payer.Name,
			Surname: in.Payer.Surname,
			Email:   in.Payer.Email,
		}
		if in.Payer.Phone != nil {
			payer.Phone = &preference.PhoneRequest{
				AreaCode: in.Payer.Phone.AreaCode,
				Number:   in.Payer.Phone.Number,
			}
		}
		if in.Payer.Address != nil {
			payer.Address = &preference.AddressRequest{
				StreetName:   in.Payer.Address.StreetName,
				StreetNumber: in.Payer.Address.StreetNumber,
				ZipCode:      in.Payer.Address.ZipCode,
			}
		}
		req.Payer = payer
	}
	return req
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mercadopago request timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, err.Error())
}

func payerEmail(p *Payer) string {
	if p == nil {
		return ""
	}
	return p.Email
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("mercadopago %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("mercadopago %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
