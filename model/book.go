// model/book.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Book is a content unit. The slug is globally unique and never changes
// once pages or progress reference it.
type Book struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Type        string `json:"type" gorm:"not null;default:storybook"` // storybook, educational
	Subject     string `json:"subject"`
	Grade       string `json:"grade"`
	Description string `json:"description" gorm:"type:text"`
	CoverURL    string `json:"cover_url"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Page is ordered content within a book.
type Page struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookID     uint      `json:"book_id" gorm:"not null;uniqueIndex:idx_book_page"`
	PageNumber int       `json:"page_number" gorm:"not null;uniqueIndex:idx_book_page"`
	Content    string    `json:"content" gorm:"type:text"`
	ImageURL   string    `json:"image_url"`
	AudioURL   string    `json:"audio_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Book Book `json:"-" gorm:"foreignKey:BookID"`
}

// Question belongs to a page. The correct answer never leaves the server.
type Question struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	PageID        uint           `json:"page_id" gorm:"not null"`
	Prompt        string         `json:"prompt" gorm:"type:text;not null"`
	AnswerType    string         `json:"answer_type" gorm:"not null;default:text"` // text, multiple_choice
	Options       datatypes.JSON `json:"options,omitempty"`
	CorrectAnswer string         `json:"-" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Page Page `json:"-" gorm:"foreignKey:PageID"`
}
