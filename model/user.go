package model

import "time"

type User struct {
	ID         string `gorm:"primaryKey"`
	Email      string `gorm:"unique"`
	Username   string `gorm:"unique;not null"`
	Password   string
	Role       string `gorm:"not null;default:student"` // admin, teacher, student
	GradeLevel string
	IsApproved bool `gorm:"default:false"`
	IsVerified bool `gorm:"default:false"`
	IsActive   bool `gorm:"default:true"`
	LastLogin  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
