package repository

import (
	"context"
	"time"

	"github.com/roomloop/flatmarket/internal/dto"
	"github.com/roomloop/flatmarket/internal/model"
	ctxutil "github.com/roomloop/flatmarket/pkg/context"
	"github.com/roomloop/flatmarket/pkg/logger"
	"gorm.io/gorm"
)

type FlatRepository struct {
	db *gorm.DB
}

func NewFlatRepository(db *gorm.DB) *FlatRepository {
	return &FlatRepository{db: db}
}

func (r *FlatRepository) GetByID(ctx context.Context, id uint) (*model.Flat, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var flat model.Flat
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&flat)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get flat by ID").
			Uint("flat_id", id).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &flat, nil
}

// List returns a page of flats matching the filter. Inactive listings are
// excluded unless the filter explicitly includes them (admin path).
func (r *FlatRepository) List(ctx context.Context, filter dto.FlatFilter, limit, offset int) ([]model.Flat, int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "List")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	var flats []model.Flat
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Flat{})

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.City != "" {
		query = query.Where("city ILIKE ?", filter.City)
	}
	if filter.Locality != "" {
		query = query.Where("locality ILIKE ?", "%"+filter.Locality+"%")
	}
	if filter.BHK > 0 {
		query = query.Where("bhk = ?", filter.BHK)
	}
	if filter.MinRent > 0 {
		query = query.Where("monthly_rent >= ?", filter.MinRent)
	}
	if filter.MaxRent > 0 {
		query = query.Where("monthly_rent <= ?", filter.MaxRent)
	}
	if filter.Furnishing != "" {
		query = query.Where("furnishing = ?", filter.Furnishing)
	}

	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count flats").
			Err(err).
			Log()
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&flats).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch flats").
			Int("limit", limit).
			Int("offset", offset).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.DebugWithContext(ctx, "Flats retrieved").
		Int64("total", total).
		Int("returned_count", len(flats)).
		Duration(time.Since(start)).
		Log()

	return flats, total, nil
}

// ListByOwner returns every flat created by the given user.
func (r *FlatRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Flat, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ListByOwner")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var flats []model.Flat
	if err := r.db.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Order("created_at DESC").
		Find(&flats).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch flats by owner").
			Uint("owner_id", ownerID).
			Err(err).
			Log()
		return nil, err
	}

	return flats, nil
}

func (r *FlatRepository) Create(ctx context.Context, flat *model.Flat) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(flat)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create flat").
			String("title", flat.Title).
			Uint("created_by", flat.CreatedBy).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Flat created").
		Uint("flat_id", flat.ID).
		Uint("created_by", flat.CreatedBy).
		Duration(time.Since(start)).
		Log()

	return nil
}

// Update applies the given column updates. created_by is never part of
// updates; ownership is immutable.
func (r *FlatRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if len(updates) == 0 {
		return nil
	}

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Flat{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update flat").
			Uint("flat_id", id).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Flat updated").
		Uint("flat_id", id).
		Int64("rows_affected", result.RowsAffected).
		Duration(time.Since(start)).
		Log()

	return nil
}

// Delete removes the flat permanently; there is no soft-delete for
// listings.
func (r *FlatRepository) Delete(ctx context.Context, id uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Delete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Flat{}, id)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete flat").
			Uint("flat_id", id).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Flat deleted").
		Uint("flat_id", id).
		Duration(time.Since(start)).
		Log()

	return nil
}
