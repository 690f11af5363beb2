package models

import (
	"time"

	"royalfootwear/internal/lockout"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Address is a postal address with a contact phone number. It is embedded in
// users and snapshotted into orders.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
	Phone   string `json:"phone"`
}

// User represents a registered storefront account.
type User struct {
	Base
	Name                   string     `gorm:"not null" json:"name"`
	Email                  string     `gorm:"uniqueIndex;not null" json:"email"`
	Password               string     `gorm:"not null" json:"-"`
	Role                   Role       `gorm:"type:varchar(20);not null;default:customer" json:"role"`
	Avatar                 string     `json:"avatar,omitempty"`
	IsVerified             bool       `gorm:"default:false" json:"is_verified"`
	NewsletterSubscription bool       `gorm:"default:false" json:"newsletter_subscription"`
	Address                Address    `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	IsActive               bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash       string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts    int        `gorm:"not null;default:0" json:"-"`
	LockedUntil            *time.Time `json:"locked_until,omitempty"`
	LastLoginAt            *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LockoutState returns the login-attempt bookkeeping of the user.
func (u *User) LockoutState() lockout.State {
	return lockout.State{
		FailedAttempts: u.FailedLoginAttempts,
		LockedUntil:    u.LockedUntil,
		LastLoginAt:    u.LastLoginAt,
	}
}

// ApplyLockoutState copies a lockout decision back onto the user.
func (u *User) ApplyLockoutState(s lockout.State) {
	u.FailedLoginAttempts = s.FailedAttempts
	u.LockedUntil = s.LockedUntil
	u.LastLoginAt = s.LastLoginAt
}
