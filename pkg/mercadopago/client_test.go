package mercadopago

import (
	"context"
	"errors"
	"testing"

	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type fakePreferences struct {
	got  preference.Request
	resp *preference.Response
	err  error
}

func (f *fakePreferences) Create(_ context.Context, req preference.Request) (*preference.Response, error) {
	f.got = req
	return f.resp, f.err
}

type fakePayments struct {
	gotID int
	resp  *payment.Response
	err   error
}

func (f *fakePayments) Get(_ context.Context, id int) (*payment.Response, error) {
	f.gotID = id
	return f.resp, f.err
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(context.Background(), config.MercadoPagoConfig{}, logger.Nop())
	require.ErrorIs(t, err, errAccessTokenRequired)

	_, err = NewClient(context.Background(), config.MercadoPagoConfig{AccessToken: "TEST-123"}, nil)
	require.ErrorIs(t, err, errLoggerRequired)
}

func TestCreatePreferenceMapsRequestAndResponse(t *testing.T) {
	prefs := &fakePreferences{resp: &preference.Response{
		ID:                "pref-1",
		InitPoint:         "https://mp.example/init",
		SandboxInitPoint:  "https://sandbox.mp.example/init",
		ExternalReference: "order-1",
	}}
	c := &Client{preferences: prefs, logger: logger.Nop()}

	out, err := c.CreatePreference(context.Background(), PreferenceInput{
		Items: []Item{{ID: "p1", Title: "Lamp", CurrencyID: "ARS", Quantity: 2, UnitPrice: 20000}},
		Payer: &Payer{
			Name:    "Ana",
			Email:   "ana@example.com",
			Phone:   &Phone{AreaCode: "11", Number: "5555"},
			Address: &Address{StreetName: "Corrientes", StreetNumber: "1234", ZipCode: "1043"},
		},
		BackURLs:          BackURLs{Success: "s", Failure: "f", Pending: "p"},
		AutoReturn:        AutoReturnApproved,
		ExternalReference: "order-1",
		NotificationURL:   "https://api.example.com/hook",
	})
	require.NoError(t, err)
	require.Equal(t, &Preference{
		ID:                "pref-1",
		InitPoint:         "https://mp.example/init",
		SandboxInitPoint:  "https://sandbox.mp.example/init",
		ExternalReference: "order-1",
	}, out)

	require.Len(t, prefs.got.Items, 1)
	require.Equal(t, "ARS", prefs.got.Items[0].CurrencyID)
	require.Equal(t, 2, prefs.got.Items[0].Quantity)
	require.Equal(t, "approved", prefs.got.AutoReturn)
	require.Equal(t, "s", prefs.got.BackURLs.Success)
	require.Equal(t, "1234", prefs.got.Payer.Address.StreetNumber)
	require.Equal(t, "11", prefs.got.Payer.Phone.AreaCode)
	require.Equal(t, "https://api.example.com/hook", prefs.got.NotificationURL)
}

func TestCreatePreferenceUpstreamError(t *testing.T) {
	c := &Client{preferences: &fakePreferences{err: errors.New("invalid access token")}, logger: logger.Nop()}

	_, err := c.CreatePreference(context.Background(), PreferenceInput{Items: []Item{{ID: "p1", Quantity: 1, UnitPrice: 1}}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUpstream, typed.Code())
	require.Equal(t, "invalid access token", typed.Message())
}

func TestGetPayment(t *testing.T) {
	payments := &fakePayments{resp: &payment.Response{
		ID:                123,
		Status:            "approved",
		StatusDetail:      "accredited",
		ExternalReference: "order-1",
		CurrencyID:        "ARS",
		TransactionAmount: 45000,
	}}
	c := &Client{payments: payments, logger: logger.Nop()}

	out, err := c.GetPayment(context.Background(), 123)
	require.NoError(t, err)
	require.Equal(t, 123, payments.gotID)
	require.Equal(t, int64(123), out.ID)
	require.Equal(t, "approved", out.Status)
	require.Equal(t, "order-1", out.ExternalReference)
}

func TestGetPaymentErrors(t *testing.T) {
	c := &Client{payments: &fakePayments{err: context.DeadlineExceeded}, logger: logger.Nop()}
	_, err := c.GetPayment(context.Background(), 1)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	var unconfigured *Client
	_, err = unconfigured.GetPayment(context.Background(), 1)
	require.Equal(t, pkgerrors.CodeInternal, pkgerrors.As(err).Code())
}

func TestRedact(t *testing.T) {
	require.Equal(t, "[REDACTED]", redact("payer_email", "ana@example.com"))
	require.Equal(t, "pref-1", redact("preference_id", "pref-1"))
}
