package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service exposes read-only catalog browsing.
type Service interface {
	List(ctx context.Context, filter Filter) (*pagination.Page[ProductDTO], error)
	GetByID(ctx context.Context, id string) (*ProductDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
}

// Filter narrows the product listing.
type Filter struct {
	Category string
	Query    string
	Featured *bool
	Limit    int
	Cursor   string
}

// ProductDTO is the public shape of a catalog product.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"in_stock"`
	Images      []string        `json:"images"`
	Colors      []string        `json:"colors"`
	IsFeatured  bool            `json:"is_featured"`
	CreatedAt   time.Time       `json:"created_at"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filter Filter) (*pagination.Page[ProductDTO], error) {
	cursor, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(filter.Limit)

	rows, err := s.repo.List(ctx, listQuery{
		Category: strings.TrimSpace(filter.Category),
		Query:    filter.Query,
		Featured: filter.Featured,
		Limit:    limit + 1,
		Cursor:   cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page := &pagination.Page[ProductDTO]{Items: make([]ProductDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for _, row := range rows {
		page.Items = append(page.Items, toDTO(row))
	}
	return page, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*ProductDTO, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product, err := s.repo.FindByID(ctx, parsed)
	return found(product, err)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	return found(product, err)
}

func found(product *models.Product, err error) (*ProductDTO, error) {
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := toDTO(*product)
	return &dto, nil
}

func toDTO(p models.Product) ProductDTO {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	colors := []string(p.Colors)
	if colors == nil {
		colors = []string{}
	}
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		InStock:     p.InStock(),
		Images:      images,
		Colors:      colors,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
	}
}
