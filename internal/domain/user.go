package domain

import (
	"strings"
	"time"
)

// =============================================================================
// ADMIN USER DOMAIN TYPES
// =============================================================================

// Role is an admin back-office role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// AdminUser is a back-office account.
type AdminUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Role         Role       `json:"role"`
	Permissions  []string   `json:"permissions,omitempty"`
	IsActive     bool       `json:"isActive"`
	Phone        string     `json:"phone,omitempty"`
	ProfileImage string     `json:"profileImage,omitempty"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (u AdminUser) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasPermission reports whether the user holds perm. Admins hold every permission.
func (u AdminUser) HasPermission(perm string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// UserFilter narrows an admin user listing.
type UserFilter struct {
	Page     int
	Limit    int
	Search   string
	Role     Role
	IsActive *bool
}

// UserPage is one page of admin users.
type UserPage struct {
	Users      []AdminUser `json:"users"`
	Pagination Pagination  `json:"pagination"`
}

// UserStats summarises the admin user population.
type UserStats struct {
	Total             int `json:"total"`
	TotalUsers        int `json:"totalUsers"`
	TotalActive       int `json:"totalActive"`
	TotalInactive     int `json:"totalInactive"`
	TotalAdmins       int `json:"totalAdmins"`
	TotalManagers     int `json:"totalManagers"`
	NewUsersLastMonth int `json:"newUsersLastMonth"`
}

// Session is the result of a successful admin login.
type Session struct {
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}
