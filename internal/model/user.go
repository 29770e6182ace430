package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the single role a user holds. Fixed at registration, mutable
// only through the admin surface.
type Role string

const (
	RoleTenant Role = "tenant"
	RoleOwner  Role = "owner"
	RoleBroker Role = "broker"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the four known values.
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleOwner, RoleBroker, RoleAdmin:
		return true
	}
	return false
}

// Purchasable reports whether a subscription can be bought for this role.
// The admin tier is not for sale.
func (r Role) Purchasable() bool {
	switch r {
	case RoleTenant, RoleOwner, RoleBroker:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Name               string     `gorm:"column:name;not null"`
	Email              string     `gorm:"column:email;uniqueIndex;not null"`
	Phone              string     `gorm:"column:phone"`
	ProfilePicture     string     `gorm:"column:profile_picture"`
	Password           string     `gorm:"column:password;not null" json:"-"`
	Role               Role       `gorm:"column:role;type:varchar(16);not null;default:'tenant';index"`
	IsSubscribed       bool       `gorm:"column:is_subscribed;not null;default:false"`
	SubscriptionExpiry *time.Time `gorm:"column:subscription_expiry_date"`
	LastLogin          time.Time  `gorm:"column:last_login"`
}
