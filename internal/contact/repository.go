package contact

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository stores contact form submissions.
type Repository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

type repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, msg *models.ContactMessage) error {
	return r.base.Create(ctx, msg)
}
