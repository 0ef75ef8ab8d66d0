package models

import (
	"time"
)

type Department struct {
	ID           string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID string    `gorm:"column:university_id;size:36;index" json:"university_id"`
	Name         string    `gorm:"column:name;size:255" json:"name"`
	Code         string    `gorm:"column:code;size:32" json:"code"`
	Description  string    `gorm:"column:description;size:512" json:"description,omitempty"`
	HeadName     string    `gorm:"column:head_name;size:255" json:"head_name,omitempty"`
	ContactEmail string    `gorm:"column:contact_email;size:255" json:"contact_email,omitempty"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

type Course struct {
	ID           string `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID string `gorm:"column:university_id;size:36;index" json:"university_id"`
	DepartmentID string `gorm:"column:department_id;size:36;index" json:"department_id"`
	Name         string `gorm:"column:name;size:255" json:"name"`
	Code         string `gorm:"column:code;size:32" json:"code"`
	// DurationMonths is the nominal course length.
	DurationMonths int       `gorm:"column:duration_months" json:"duration_months,omitempty"`
	Description    string    `gorm:"column:description;size:512" json:"description,omitempty"`
	Eligibility    string    `gorm:"column:eligibility;size:512" json:"eligibility,omitempty"`
	IsActive       bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// Session is an admission intake window (e.g. "2026-27 Fall").
type Session struct {
	ID           string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID string     `gorm:"column:university_id;size:36;index" json:"university_id"`
	Name         string     `gorm:"column:name;size:255" json:"name"`
	StartDate    *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate      *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	IsActive     bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}
