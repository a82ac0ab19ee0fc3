package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitStoresMessage(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), logger.Nop())
	require.NoError(t, err)

	subject := "  Order question "
	blank := "   "
	receipt, err := svc.Submit(context.Background(), Input{
		Name:     gofakeit.Name(),
		Email:    " Buyer@Example.com ",
		Subject:  &subject,
		Phone:    &blank,
		Message:  gofakeit.Sentence(12),
		RemoteIP: "10.0.0.1",
	})
	require.NoError(t, err)
	require.NotNil(t, receipt)

	var stored models.ContactMessage
	require.NoError(t, conn.First(&stored, "id = ?", receipt.ID).Error)
	assert.Equal(t, "buyer@example.com", stored.Email)
	require.NotNil(t, stored.Subject)
	assert.Equal(t, "Order question", *stored.Subject)
	assert.Nil(t, stored.Phone)
	require.NotNil(t, stored.RemoteIP)
	assert.Equal(t, "10.0.0.1", *stored.RemoteIP)
}

func TestSubmitReportsEveryMissingField(t *testing.T) {
	svc, err := NewService(&stubRepo{}, logger.Nop())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), Input{Email: "not-an-email"})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{
		"name":    "is required",
		"email":   "must be a valid email",
		"message": "is required",
	}, typed.Details())
}

func TestSubmitWrapsRepositoryFailure(t *testing.T) {
	svc, err := NewService(&stubRepo{err: errors.New("db down")}, logger.Nop())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), Input{Name: "Ana", Email: "ana@example.com", Message: "hola"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(nil, logger.Nop())
	require.Error(t, err)
	_, err = NewService(&stubRepo{}, nil)
	require.Error(t, err)
}

type stubRepo struct {
	err error
}

func (s *stubRepo) Create(context.Context, *models.ContactMessage) error {
	return s.err
}
