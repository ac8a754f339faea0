package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the closed set of roles known to the platform.
type UserRole string

const (
	RolePlatformAdmin      UserRole = "PLATFORM_ADMIN"
	RoleOrganizationAdmin  UserRole = "ORGANIZATION_ADMIN"
	RoleOrganizationMember UserRole = "ORGANIZATION_MEMBER"
)

type User struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	Password       string     `json:"-" gorm:"not null"`
	FullName       string     `json:"full_name" gorm:"size:200;not null"`
	Role           UserRole   `json:"role" gorm:"size:50;not null"`
	OrganizationID *uuid.UUID `json:"organization_id" gorm:"type:uuid"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}
