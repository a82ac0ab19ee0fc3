package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/mercadopago"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type fakeGateway struct {
	calls int
	got   mercadopago.PreferenceInput
	resp  *mercadopago.Preference
	err   error
}

func (f *fakeGateway) CreatePreference(_ context.Context, in mercadopago.PreferenceInput) (*mercadopago.Preference, error) {
	f.calls++
	f.got = in
	return f.resp, f.err
}

type fakeRepo struct {
	created []*models.PaymentPreference
	err     error
}

func (f *fakeRepo) WithTx(*gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, pref *models.PaymentPreference) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, pref)
	return nil
}

func (f *fakeRepo) FindByExternalReference(context.Context, string) (*models.PaymentPreference, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateStatus(context.Context, string, enums.PaymentStatus, int64) error {
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, gw Gateway, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Gateway:    gw,
		Repo:       repo,
		Storefront: config.StorefrontConfig{BaseURL: "https://shop.example.com", PublicAPIURL: "https://api.example.com"},
		Currency:   currency.MustParseISO("ARS"),
		Logger:     logger.Nop(),
		Metrics:    metrics.NewStorefrontMetrics(prometheus.NewRegistry()),
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func validRequest() PreferenceRequest {
	return PreferenceRequest{
		Items: []LineItem{
			{ID: "lamp", Title: "Lamp", Quantity: 2, UnitPrice: decimal.NewFromInt(20000)},
			{ID: "vase", Title: "Vase", Quantity: 1, UnitPrice: decimal.NewFromInt(5000)},
		},
	}
}

func TestNewServiceValidatesParams(t *testing.T) {
	_, err := NewService(ServiceParams{Currency: currency.MustParseISO("ARS"), Storefront: config.StorefrontConfig{BaseURL: "x"}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop(), Storefront: config.StorefrontConfig{BaseURL: "x"}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop(), Currency: currency.MustParseISO("ARS")})
	require.Error(t, err)
}

func TestCreatePreferenceRejectsInvalidItemsWithoutCallingProcessor(t *testing.T) {
	cases := map[string][]LineItem{
		"empty":         nil,
		"zero quantity": {{ID: "a", Title: "A", Quantity: 0, UnitPrice: decimal.NewFromInt(1)}},
		"zero price":    {{ID: "a", Title: "A", Quantity: 1, UnitPrice: decimal.Zero}},
		"missing title": {{ID: "a", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			gw := &fakeGateway{}
			svc := newTestService(t, gw, nil)

			_, err := svc.CreatePreference(context.Background(), PreferenceRequest{Items: items})
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Equal(t, ItemsRequiredMessage, typed.Message())
			assert.Zero(t, gw.calls)
		})
	}
}

func TestCreatePreferenceWithoutGatewayIsInternalError(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.CreatePreference(context.Background(), validRequest())
	require.Equal(t, pkgerrors.CodeInternal, pkgerrors.As(err).Code())
}

func TestCreatePreferenceBuildsProcessorInput(t *testing.T) {
	gw := &fakeGateway{resp: &mercadopago.Preference{ID: "pref-1", InitPoint: "https://init", SandboxInitPoint: "https://sandbox"}}
	repo := &fakeRepo{}
	svc := newTestService(t, gw, repo)

	res, err := svc.CreatePreference(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "pref-1", res.ID)
	require.Equal(t, "https://init", res.InitPoint)
	require.Equal(t, "https://sandbox", res.SandboxInitPoint)

	require.Equal(t, 1, gw.calls)
	in := gw.got
	require.Len(t, in.Items, 2)
	assert.Equal(t, "ARS", in.Items[0].CurrencyID)
	assert.Equal(t, 20000.0, in.Items[0].UnitPrice)
	assert.Equal(t, mercadopago.AutoReturnApproved, in.AutoReturn)
	assert.Equal(t, mercadopago.BackURLs{
		Success: "https://shop.example.com/checkout/success",
		Failure: "https://shop.example.com/checkout/failure",
		Pending: "https://shop.example.com/checkout/pending",
	}, in.BackURLs)
	assert.Equal(t, "https://api.example.com/api/v1/webhooks/mercadopago", in.NotificationURL)
	assert.Regexp(t, regexp.MustCompile(`^order-1772366400000-[0-9a-f]{8}$`), in.ExternalReference)
	assert.Equal(t, in.ExternalReference, res.ExternalReference)

	require.Len(t, repo.created, 1)
	row := repo.created[0]
	assert.Equal(t, in.ExternalReference, row.ExternalReference)
	assert.Equal(t, "pref-1", row.PreferenceID)
	assert.True(t, decimal.NewFromInt(45000).Equal(row.Total))
	assert.Equal(t, enums.PaymentStatusPending, row.Status)

	var stored []LineItem
	require.NoError(t, json.Unmarshal([]byte(row.Items), &stored))
	assert.Len(t, stored, 2)
}

func TestCreatePreferenceKeepsCallerBackURLs(t *testing.T) {
	gw := &fakeGateway{resp: &mercadopago.Preference{ID: "pref-1"}}
	svc := newTestService(t, gw, nil)

	req := validRequest()
	req.BackURLs = &BackURLs{Success: "https://custom/ok"}
	req.Payer = &Payer{Name: "Ana", Email: "ana@example.com", Phone: &Phone{AreaCode: "11", Number: "5555"}}

	_, err := svc.CreatePreference(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "https://custom/ok", gw.got.BackURLs.Success)
	assert.Equal(t, "https://shop.example.com/checkout/failure", gw.got.BackURLs.Failure)
	require.NotNil(t, gw.got.Payer)
	assert.Equal(t, "11", gw.got.Payer.Phone.AreaCode)
}

func TestCreatePreferenceUpstreamFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("invalid_token")}
	repo := &fakeRepo{}
	svc := newTestService(t, gw, repo)

	_, err := svc.CreatePreference(context.Background(), validRequest())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUpstream, typed.Code())
	assert.Equal(t, "invalid_token", typed.Message())
	assert.Equal(t, 1, gw.calls, "no retry")
	assert.Empty(t, repo.created)
}

func TestCreatePreferenceRecordFailureIsNotSurfaced(t *testing.T) {
	gw := &fakeGateway{resp: &mercadopago.Preference{ID: "pref-1"}}
	svc := newTestService(t, gw, &fakeRepo{err: errors.New("db down")})

	res, err := svc.CreatePreference(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "pref-1", res.ID)
}

func TestTotal(t *testing.T) {
	require.True(t, decimal.NewFromInt(45000).Equal(Total(validRequest().Items)))
	require.True(t, decimal.Zero.Equal(Total(nil)))
}
