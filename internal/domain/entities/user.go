package entities

import (
	"strings"
	"time"
)

// User is a registered member. CustomerID is the billing provider's
// customer reference; empty means no subscription was ever started.
type User struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Username      string    `json:"username" db:"username"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	FirstNameKana string    `json:"first_name_kana" db:"first_name_kana"`
	LastNameKana  string    `json:"last_name_kana" db:"last_name_kana"`
	PhoneNumber   string    `json:"phone_number" db:"phone_number"`
	Age           *int      `json:"age,omitempty" db:"age"`
	CustomerID    string    `json:"-" db:"customer_id"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	IsStaff       bool      `json:"is_staff" db:"is_staff"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	DateJoined    time.Time `json:"date_joined" db:"date_joined"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// HasCustomer reports whether the user has a cached billing customer reference
func (u *User) HasCustomer() bool {
	return u != nil && u.CustomerID != ""
}

// DisplayName returns the full name, falling back to the username
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.LastName + " " + u.FirstName)
	if name == "" {
		return u.Username
	}
	return name
}

// ProfileUpdate carries the user-editable profile fields
type ProfileUpdate struct {
	Username      string
	FirstName     string
	LastName      string
	FirstNameKana string
	LastNameKana  string
	PhoneNumber   string
	Age           *int
}
