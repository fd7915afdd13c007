// model/badge.go
package model

import "time"

// Badge is a catalog entry. Generic badges are not tied to any book.
type Badge struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url"`
	IsGeneric   bool      `json:"is_generic" gorm:"default:false"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookBadge maps a badge onto a book. CompletionThreshold is only
// meaningful for the auto_on_book_complete award method.
type BookBadge struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	BookID              uint      `json:"book_id" gorm:"not null;uniqueIndex:idx_book_badge"`
	BadgeID             uint      `json:"badge_id" gorm:"not null;uniqueIndex:idx_book_badge"`
	AwardMethod         string    `json:"award_method" gorm:"not null;default:auto_on_book_complete"` // auto_on_book_complete, manual
	CompletionThreshold int       `json:"completion_threshold" gorm:"default:100"`                    // 0-100
	IsEnabled           bool      `json:"is_enabled" gorm:"default:true"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Badge Badge `json:"badge" gorm:"foreignKey:BadgeID"`
}

// EarnedBadge is the grant record: a badge can be earned by a user at
// most once, enforced by the unique (user, badge) pair.
type EarnedBadge struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_badge"`
	BadgeID   uint      `json:"badge_id" gorm:"not null;uniqueIndex:idx_user_badge"`
	BookID    *uint     `json:"book_id"`
	Note      string    `json:"note"`
	EarnedAt  time.Time `json:"earned_at"`
	CreatedAt time.Time `json:"created_at"`

	Badge Badge `json:"badge" gorm:"foreignKey:BadgeID"`
}
