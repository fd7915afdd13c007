package dto

import "time"

// Badge catalog DTOs
type CreateBadgeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url" validate:"omitempty,url"`
	IsGeneric   bool   `json:"is_generic"`
}

func (r CreateBadgeRequest) Validate() error {
	return validate.Struct(r)
}

type BadgeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	IsGeneric   bool   `json:"is_generic"`
	IsActive    bool   `json:"is_active"`
}

type BadgeCollectionResponse struct {
	Badges []BadgeResponse `json:"badges"`
	Total  int             `json:"total"`
}

// Book-badge mapping DTOs
type MapBadgeRequest struct {
	BadgeID             uint   `json:"badge_id" validate:"required"`
	AwardMethod         string `json:"award_method" validate:"required,oneof=auto_on_book_complete manual"`
	CompletionThreshold int    `json:"completion_threshold" validate:"gte=0,lte=100"`

	BadgeIDAlias             uint   `json:"badgeId"`
	AwardMethodAlias         string `json:"awardMethod"`
	CompletionThresholdAlias *int   `json:"completionThreshold"`
}

func (r *MapBadgeRequest) Normalize() {
	if r.BadgeID == 0 {
		r.BadgeID = r.BadgeIDAlias
	}
	if r.AwardMethod == "" {
		r.AwardMethod = r.AwardMethodAlias
	}
	if r.CompletionThreshold == 0 && r.CompletionThresholdAlias != nil {
		r.CompletionThreshold = *r.CompletionThresholdAlias
	}
	r.BadgeIDAlias = 0
	r.AwardMethodAlias = ""
	r.CompletionThresholdAlias = nil
}

func (r MapBadgeRequest) Validate() error {
	return validate.Struct(r)
}

type BookBadgeResponse struct {
	BookID              uint          `json:"book_id"`
	Badge               BadgeResponse `json:"badge"`
	AwardMethod         string        `json:"award_method"`
	CompletionThreshold int           `json:"completion_threshold"`
	IsEnabled           bool          `json:"is_enabled"`
}

// Manual award DTOs
type AwardBadgeRequest struct {
	BadgeID uint   `json:"badge_id" validate:"required"`
	BookID  *uint  `json:"book_id"`
	Note    string `json:"note" validate:"omitempty,max=500"`

	BadgeIDAlias uint  `json:"badgeId"`
	BookIDAlias  *uint `json:"bookId"`
}

func (r *AwardBadgeRequest) Normalize() {
	if r.BadgeID == 0 {
		r.BadgeID = r.BadgeIDAlias
	}
	if r.BookID == nil {
		r.BookID = r.BookIDAlias
	}
	r.BadgeIDAlias = 0
	r.BookIDAlias = nil
}

func (r AwardBadgeRequest) Validate() error {
	return validate.Struct(r)
}

type AwardBadgeResponse struct {
	BadgeID    uint `json:"badge_id"`
	Awarded    bool `json:"awarded"`
	AlreadyHad bool `json:"already_had"`
}

type EarnedBadgeResponse struct {
	Badge    BadgeResponse `json:"badge"`
	BookID   *uint         `json:"book_id"`
	Note     string        `json:"note"`
	EarnedAt time.Time     `json:"earned_at"`
}

type EarnedBadgeCollectionResponse struct {
	Badges []EarnedBadgeResponse `json:"badges"`
	Total  int                   `json:"total"`
}

// CompletionResponse is the unified result of marking a book complete,
// returned by both the numeric-id and slug routes.
type CompletionResponse struct {
	BookID            uint   `json:"book_id"`
	Slug              string `json:"slug"`
	PercentComplete   int    `json:"percent_complete"`
	BadgesAutoAwarded []uint `json:"badges_auto_awarded"`
	AlreadyHad        []uint `json:"already_had"`
}
