package checkout

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists payment preferences.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, pref *models.PaymentPreference) error
	FindByExternalReference(ctx context.Context, externalReference string) (*models.PaymentPreference, error)
	UpdateStatus(ctx context.Context, externalReference string, status enums.PaymentStatus, paymentID int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a preference repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, pref *models.PaymentPreference) error {
	return r.db.WithContext(ctx).Create(pref).Error
}

// FindByExternalReference returns nil, nil when no preference matches.
func (r *repository) FindByExternalReference(ctx context.Context, externalReference string) (*models.PaymentPreference, error) {
	var pref models.PaymentPreference
	err := r.db.WithContext(ctx).
		Where("external_reference = ?", externalReference).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

func (r *repository) UpdateStatus(ctx context.Context, externalReference string, status enums.PaymentStatus, paymentID int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentPreference{}).
		Where("external_reference = ?", externalReference).
		Updates(map[string]any{
			"status":          status,
			"last_payment_id": paymentID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
