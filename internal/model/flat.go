package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Flat struct {
	gorm.Model
	Title       string `gorm:"column:title;not null"`
	Description string `gorm:"column:description;type:text"`

	// Pricing, amounts in whole rupees
	MonthlyRent   int64 `gorm:"column:monthly_rent;not null"`
	DepositAmount int64 `gorm:"column:deposit_amount"`
	Negotiable    bool  `gorm:"column:negotiable;not null;default:false"`

	// Location
	Address  string `gorm:"column:address"`
	Locality string `gorm:"column:locality;index"`
	City     string `gorm:"column:city;index;not null"`
	State    string `gorm:"column:state"`
	Pincode  string `gorm:"column:pincode"`

	// Physical attributes
	BHK         int     `gorm:"column:bhk;index"`
	AreaSqft    float64 `gorm:"column:area_sqft"`
	Floor       int     `gorm:"column:floor"`
	TotalFloors int     `gorm:"column:total_floors"`
	PropertyAge int     `gorm:"column:property_age"`
	Facing      string  `gorm:"column:facing"`
	Furnishing  string  `gorm:"column:furnishing"`

	// Flag sets and media, stored as jsonb
	Amenities   datatypes.JSON `gorm:"column:amenities;type:jsonb;default:'{}'::jsonb"`
	Preferences datatypes.JSON `gorm:"column:preferences;type:jsonb;default:'{}'::jsonb"`
	Images      datatypes.JSON `gorm:"column:images;type:jsonb;default:'[]'::jsonb"`

	// Default public listing queries filter on this
	IsActive bool `gorm:"column:is_active;not null;default:true;index"`

	// Owning user, immutable after creation. Deleting a user does not
	// cascade to flats.
	CreatedBy uint `gorm:"column:created_by;not null;index"`
}
