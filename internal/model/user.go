package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User stores system users with role-based access.
// Role: "admin" | "cashier". Superusers pass every capability check.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	IsSuperuser  bool      `gorm:"not null;default:false"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsCashier gates every reporting, closing and order-capture endpoint.
func (u *User) IsCashier() bool { return u.IsSuperuser || u.Role == RoleCashier }

// IsAdmin gates catalog and tax type writes.
func (u *User) IsAdmin() bool { return u.IsSuperuser || u.Role == RoleAdmin }
