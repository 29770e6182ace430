package dto

import (
	"time"

	"github.com/roomloop/flatmarket/internal/model"
	"gorm.io/datatypes"
)

type CreateFlatRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=120"`
	Description string `json:"description" binding:"omitempty,max=2000"`

	MonthlyRent   int64 `json:"monthly_rent" binding:"required,gt=0"`
	DepositAmount int64 `json:"deposit_amount" binding:"omitempty,gte=0"`
	Negotiable    bool  `json:"negotiable"`

	Address  string `json:"address" binding:"omitempty,max=255"`
	Locality string `json:"locality" binding:"omitempty,max=100"`
	City     string `json:"city" binding:"required,max=100"`
	State    string `json:"state" binding:"omitempty,max=100"`
	Pincode  string `json:"pincode" binding:"omitempty,len=6"`

	BHK         int     `json:"bhk" binding:"omitempty,gte=1,lte=10"`
	AreaSqft    float64 `json:"area_sqft" binding:"omitempty,gt=0"`
	Floor       int     `json:"floor" binding:"omitempty,gte=0"`
	TotalFloors int     `json:"total_floors" binding:"omitempty,gte=0"`
	PropertyAge int     `json:"property_age" binding:"omitempty,gte=0"`
	Facing      string  `json:"facing" binding:"omitempty,max=20"`
	Furnishing  string  `json:"furnishing" binding:"omitempty,oneof=unfurnished semi-furnished furnished"`

	Amenities   map[string]bool `json:"amenities"`
	Preferences map[string]bool `json:"preferences"`
	Images      []string        `json:"images" binding:"omitempty,dive,url"`
}

// UpdateFlatRequest uses pointers so partial updates can distinguish
// "unset" from zero values.
type UpdateFlatRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=120"`
	Description *string `json:"description" binding:"omitempty,max=2000"`

	MonthlyRent   *int64 `json:"monthly_rent" binding:"omitempty,gt=0"`
	DepositAmount *int64 `json:"deposit_amount" binding:"omitempty,gte=0"`
	Negotiable    *bool  `json:"negotiable"`

	Address  *string `json:"address" binding:"omitempty,max=255"`
	Locality *string `json:"locality" binding:"omitempty,max=100"`
	City     *string `json:"city" binding:"omitempty,max=100"`
	State    *string `json:"state" binding:"omitempty,max=100"`
	Pincode  *string `json:"pincode" binding:"omitempty,len=6"`

	BHK         *int     `json:"bhk" binding:"omitempty,gte=1,lte=10"`
	AreaSqft    *float64 `json:"area_sqft" binding:"omitempty,gt=0"`
	Floor       *int     `json:"floor" binding:"omitempty,gte=0"`
	TotalFloors *int     `json:"total_floors" binding:"omitempty,gte=0"`
	PropertyAge *int     `json:"property_age" binding:"omitempty,gte=0"`
	Facing      *string  `json:"facing" binding:"omitempty,max=20"`
	Furnishing  *string  `json:"furnishing" binding:"omitempty,oneof=unfurnished semi-furnished furnished"`

	Amenities   map[string]bool `json:"amenities"`
	Preferences map[string]bool `json:"preferences"`
	Images      []string        `json:"images" binding:"omitempty,dive,url"`

	IsActive *bool `json:"is_active"`
}

// FlatFilter is the public listing query surface.
type FlatFilter struct {
	City       string `form:"city"`
	Locality   string `form:"locality"`
	BHK        int    `form:"bhk"`
	MinRent    int64  `form:"min_rent"`
	MaxRent    int64  `form:"max_rent"`
	Furnishing string `form:"furnishing"`
	// IncludeInactive is only honored on the admin listing path.
	IncludeInactive bool `form:"-"`
}

type FlatResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	MonthlyRent   int64 `json:"monthly_rent"`
	DepositAmount int64 `json:"deposit_amount"`
	Negotiable    bool  `json:"negotiable"`

	Address  string `json:"address,omitempty"`
	Locality string `json:"locality,omitempty"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode,omitempty"`

	BHK         int     `json:"bhk,omitempty"`
	AreaSqft    float64 `json:"area_sqft,omitempty"`
	Floor       int     `json:"floor,omitempty"`
	TotalFloors int     `json:"total_floors,omitempty"`
	PropertyAge int     `json:"property_age,omitempty"`
	Facing      string  `json:"facing,omitempty"`
	Furnishing  string  `json:"furnishing,omitempty"`

	Amenities   datatypes.JSON `json:"amenities,omitempty"`
	Preferences datatypes.JSON `json:"preferences,omitempty"`
	Images      datatypes.JSON `json:"images,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFlatResponse maps a model onto the API view.
func NewFlatResponse(f *model.Flat) FlatResponse {
	return FlatResponse{
		ID:            f.ID,
		Title:         f.Title,
		Description:   f.Description,
		MonthlyRent:   f.MonthlyRent,
		DepositAmount: f.DepositAmount,
		Negotiable:    f.Negotiable,
		Address:       f.Address,
		Locality:      f.Locality,
		City:          f.City,
		State:         f.State,
		Pincode:       f.Pincode,
		BHK:           f.BHK,
		AreaSqft:      f.AreaSqft,
		Floor:         f.Floor,
		TotalFloors:   f.TotalFloors,
		PropertyAge:   f.PropertyAge,
		Facing:        f.Facing,
		Furnishing:    f.Furnishing,
		Amenities:     f.Amenities,
		Preferences:   f.Preferences,
		Images:        f.Images,
		IsActive:      f.IsActive,
		CreatedBy:     f.CreatedBy,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}
