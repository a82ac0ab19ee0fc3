package catalog

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads catalog products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, query listQuery) ([]models.Product, error)
}

type listQuery struct {
	Category string
	Query    string
	Featured *bool
	Limit    int
	Cursor   *pagination.Cursor
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Tx(tx)}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.Base.Create(ctx, product)
}

// FindByID returns nil, nil when the product does not exist.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.first(ctx, "id = ?", id)
}

// FindBySlug returns nil, nil when the product does not exist.
func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *repository) first(ctx context.Context, cond string, arg any) (*models.Product, error) {
	var product models.Product
	found, err := r.First(ctx, &product, cond, arg)
	if err != nil || !found {
		return nil, err
	}
	return &product, nil
}

// List returns up to query.Limit products, newest first, strictly after the cursor.
func (r *repository) List(ctx context.Context, query listQuery) ([]models.Product, error) {
	tx := r.DB(ctx).Model(&models.Product{})
	if query.Category != "" {
		tx = tx.Where("category = ?", query.Category)
	}
	if q := strings.TrimSpace(query.Query); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if query.Featured != nil {
		tx = tx.Where("is_featured = ?", *query.Featured)
	}
	if query.Cursor != nil {
		tx = tx.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			query.Cursor.CreatedAt, query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var products []models.Product
	err := tx.Order("created_at DESC").Order("id DESC").Limit(query.Limit).Find(&products).Error
	return products, err
}
