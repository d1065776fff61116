package domain

import (
	"strings"
	"time"
)

// Role represents the account type of a user.
type Role string

const (
	RolePublic   Role = "PUBLIC"
	RoleEmployee Role = "EMPLOYEE"
	RoleCompany  Role = "COMPANY"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RolePublic, RoleEmployee, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// User is the account record behind every profile.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	Role         Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// PublicProfileType distinguishes owners from renters.
type PublicProfileType string

const (
	PublicProfileOwner  PublicProfileType = "OWNER"
	PublicProfileRenter PublicProfileType = "RENTER"
)

// PublicProfile is the occupant side of a unit binding. It shares its ID with the user.
type PublicProfile struct {
	UserID      int64
	Type        PublicProfileType
	Address     string
	City        string
	Province    string
	PostalCode  string
	PhoneNumber string
}

// CompanyProfile owns properties and issues registration keys. It shares its ID with the user.
type CompanyProfile struct {
	UserID      int64
	Address     string
	City        string
	Province    string
	PostalCode  string
	PhoneNumber string
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
