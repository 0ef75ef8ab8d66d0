package models

import (
	"time"
)

// Role values carried in JWT claims and checked by middleware.RequireRole.
const (
	RoleSuperAdmin         = "super_admin"
	RoleUniversityAdmin    = "university_admin"
	RoleCounsellingManager = "counselling_manager"
	RoleCounsellor         = "counsellor"
	RoleStudent            = "student"
)

// StaffRoles are the roles a university admin may create.
var StaffRoles = []string{RoleCounsellingManager, RoleCounsellor}

type User struct {
	ID           string `gorm:"primaryKey;column:id;size:36" json:"id"`
	Email        string `gorm:"column:email;size:255;uniqueIndex:idx_users_tenant_email" json:"email"`
	Name         string `gorm:"column:name;size:255" json:"name"`
	Role         string `gorm:"column:role;size:32;index" json:"role"`
	UniversityID string `gorm:"column:university_id;size:36;uniqueIndex:idx_users_tenant_email;uniqueIndex:idx_users_tenant_person" json:"university_id,omitempty"`
	// PersonID is the staff login id, unique within a university.
	// NULL for students and the super admin so the unique index skips them.
	PersonID     *string    `gorm:"column:person_id;size:64;uniqueIndex:idx_users_tenant_person" json:"person_id,omitempty"`
	Phone        string     `gorm:"column:phone;size:32" json:"phone,omitempty"`
	IsActive     bool       `gorm:"column:is_active;default:true" json:"is_active"`
	PasswordHash string     `gorm:"column:password_hash;size:255" json:"-"`
	LastLogin    *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
