package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// listColumns is the projection used by listings; description is left out.
var listColumns = []string{"id", "name", "slug", "short_description", "logo", "category_id"}

// ErrProviderNotFound is returned when no provider matches a slug.
var ErrProviderNotFound = errors.New("service provider not found")

type ProvidersRepository struct {
	db *gorm.DB
}

// ProviderFilters narrows a provider listing. Nil fields mean "no filter".
type ProviderFilters struct {
	// Category matches the category name or slug exactly.
	Category   *string
	CategoryID *uint
}

func NewProvidersRepository(db *gorm.DB) *ProvidersRepository {
	return &ProvidersRepository{
		db: db,
	}
}

func (r *ProvidersRepository) filter(filters ProviderFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filters.Category != nil {
			categories := r.db.Model(&Category{}).
				Select("id").
				Where("name = ? OR slug = ?", *filters.Category, *filters.Category)
			db = db.Where("category_id IN (?)", categories)
		}
		if filters.CategoryID != nil {
			db = db.Where("category_id = ?", *filters.CategoryID)
		}
		return db
	}
}

// GetFilteredProviders returns one page of providers matching filters
// together with the total number of matches. The category of every returned
// provider is loaded with a single batched query, so the number of
// statements issued does not depend on the page size.
func (r *ProvidersRepository) GetFilteredProviders(ctx context.Context, offset, limit int, filters ProviderFilters) ([]ServiceProvider, int64, error) {
	var providers []ServiceProvider
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ServiceProvider{}).
			Scopes(r.filter(filters)).
			Count(&total).Error; err != nil {
			return fmt.Errorf("count providers: %w", err)
		}
		if total == 0 || int64(offset) >= total {
			return nil
		}

		err := tx.Model(&ServiceProvider{}).
			Scopes(r.filter(filters)).
			Select(listColumns).
			Preload("Category", func(db *gorm.DB) *gorm.DB {
				return db.Select("id", "name", "slug")
			}).
			Order("id").
			Offset(offset).
			Limit(limit).
			Find(&providers).Error
		if err != nil {
			return fmt.Errorf("find providers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return providers, total, nil
}

func (r *ProvidersRepository) GetBySlug(ctx context.Context, slug string) (*ServiceProvider, error) {
	var provider ServiceProvider
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ?", slug).
		First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("find provider %q: %w", slug, err)
	}
	return &provider, nil
}
