package service

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/model"
	ctxutil "github.com/roomloop/flatmarket/pkg/context"
	"github.com/roomloop/flatmarket/pkg/logger"
)

// flatStore is the persistence surface FlatService needs. Implemented by
// repository.FlatRepository; faked in tests.
type flatStore interface {
	GetByID(ctx context.Context, id uint) (*model.Flat, error)
	List(ctx context.Context, filter dto.FlatFilter, limit, offset int) ([]model.Flat, int64, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Flat, error)
	Create(ctx context.Context, flat *model.Flat) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type FlatService struct {
	flats flatStore
	cache ListingCache
}

func NewFlatService(flats flatStore, cache ListingCache) *FlatService {
	return &FlatService{flats: flats, cache: cache}
}

// cachedListing is the serialized form of a listing page.
type cachedListing struct {
	Total int64              `json:"total"`
	Flats []dto.FlatResponse `json:"flats"`
}

// GetByID returns one flat.
func (s *FlatService) GetByID(ctx context.Context, id uint) (*model.Flat, error) {
	flat, err := s.flats.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFlatNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return flat, nil
}

// List returns a page of flats matching the filter, served from cache when
// a fresh page is available.
func (s *FlatService) List(ctx context.Context, filter dto.FlatFilter, limit, offset int) ([]dto.FlatResponse, int64, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "flat_service", "List")

	key := listingCacheKey(filter, limit, offset)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var page cachedListing
		if err := json.Unmarshal([]byte(raw), &page); err == nil {
			logger.DebugWithContext(ctx, "Listing served from cache").
				String("key", key).
				Log()
			return page.Flats, page.Total, nil
		}
	}

	flats, total, err := s.flats.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	responses := make([]dto.FlatResponse, 0, len(flats))
	for i := range flats {
		responses = append(responses, dto.NewFlatResponse(&flats[i]))
	}

	if raw, err := json.Marshal(cachedListing{Total: total, Flats: responses}); err == nil {
		s.cache.Set(ctx, key, string(raw))
	}

	return responses, total, nil
}

// ListByOwner returns all flats created by a user, including inactive ones.
func (s *FlatService) ListByOwner(ctx context.Context, ownerID uint) ([]model.Flat, error) {
	flats, err := s.flats.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return flats, nil
}

// Create inserts a new flat owned by the caller.
func (s *FlatService) Create(ctx context.Context, creatorID uint, req dto.CreateFlatRequest) (*model.Flat, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "flat_service", "Create")

	flat := &model.Flat{
		Title:         req.Title,
		Description:   req.Description,
		MonthlyRent:   req.MonthlyRent,
		DepositAmount: req.DepositAmount,
		Negotiable:    req.Negotiable,
		Address:       req.Address,
		Locality:      req.Locality,
		City:          req.City,
		State:         req.State,
		Pincode:       req.Pincode,
		BHK:           req.BHK,
		AreaSqft:      req.AreaSqft,
		Floor:         req.Floor,
		TotalFloors:   req.TotalFloors,
		PropertyAge:   req.PropertyAge,
		Facing:        req.Facing,
		Furnishing:    req.Furnishing,
		IsActive:      true,
		CreatedBy:     creatorID,
	}

	if req.Amenities != nil {
		jsonb, err := toJSONB(req.Amenities)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		flat.Amenities = jsonb
	}
	if req.Preferences != nil {
		jsonb, err := toJSONB(req.Preferences)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		flat.Preferences = jsonb
	}
	if len(req.Images) > 0 {
		jsonb, err := toJSONB(req.Images)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		flat.Images = jsonb
	}

	if err := s.flats.Create(ctx, flat); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.Invalidate(ctx)

	logger.InfoWithContext(ctx, "Flat created").
		Uint("flat_id", flat.ID).
		Uint("created_by", creatorID).
		Log()

	return flat, nil
}

// Update applies a partial edit. Only the creator or an admin may edit a
// flat; the creator is immutable.
func (s *FlatService) Update(ctx context.Context, actor *dto.SessionClaims, flatID uint, req dto.UpdateFlatRequest) (*model.Flat, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "flat_service", "Update")

	flat, err := s.GetByID(ctx, flatID)
	if err != nil {
		return nil, err
	}

	if flat.CreatedBy != actor.UserID && actor.Role != model.RoleAdmin {
		logger.WarnWithContext(ctx, "Flat update denied").
			Uint("flat_id", flatID).
			Uint("actor_id", actor.UserID).
			Uint("created_by", flat.CreatedBy).
			Log()
		return nil, apperrors.ErrNotFlatOwner
	}

	updates := map[string]interface{}{}
	setIf(updates, "title", req.Title)
	setIf(updates, "description", req.Description)
	setIf(updates, "monthly_rent", req.MonthlyRent)
	setIf(updates, "deposit_amount", req.DepositAmount)
	setIf(updates, "negotiable", req.Negotiable)
	setIf(updates, "address", req.Address)
	setIf(updates, "locality", req.Locality)
	setIf(updates, "city", req.City)
	setIf(updates, "state", req.State)
	setIf(updates, "pincode", req.Pincode)
	setIf(updates, "bhk", req.BHK)
	setIf(updates, "area_sqft", req.AreaSqft)
	setIf(updates, "floor", req.Floor)
	setIf(updates, "total_floors", req.TotalFloors)
	setIf(updates, "property_age", req.PropertyAge)
	setIf(updates, "facing", req.Facing)
	setIf(updates, "furnishing", req.Furnishing)
	setIf(updates, "is_active", req.IsActive)

	if req.Amenities != nil {
		jsonb, err := toJSONB(req.Amenities)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		updates["amenities"] = jsonb
	}
	if req.Preferences != nil {
		jsonb, err := toJSONB(req.Preferences)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		updates["preferences"] = jsonb
	}
	if req.Images != nil {
		jsonb, err := toJSONB(req.Images)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		updates["images"] = jsonb
	}

	if len(updates) > 0 {
		if err := s.flats.Update(ctx, flatID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrFlatNotFound
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		s.cache.Invalidate(ctx)
	}

	return s.GetByID(ctx, flatID)
}

// Delete removes a flat. Only the creator or an admin may delete it.
func (s *FlatService) Delete(ctx context.Context, actor *dto.SessionClaims, flatID uint) error {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "flat_service", "Delete")

	flat, err := s.GetByID(ctx, flatID)
	if err != nil {
		return err
	}

	if flat.CreatedBy != actor.UserID && actor.Role != model.RoleAdmin {
		return apperrors.ErrNotFlatOwner
	}

	if err := s.flats.Delete(ctx, flatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrFlatNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.Invalidate(ctx)

	logger.InfoWithContext(ctx, "Flat deleted").
		Uint("flat_id", flatID).
		Uint("actor_id", actor.UserID).
		Log()

	return nil
}

// toJSONB marshals a request field into a jsonb column value. Nil maps and
// slices keep the column's database default.
func toJSONB(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// setIf adds a column update when the request field was provided.
func setIf[T any](updates map[string]interface{}, column string, value *T) {
	if value != nil {
		updates[column] = *value
	}
}
