package dto

import "encoding/json"

// Book DTOs
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Type        string `json:"type" validate:"required,oneof=storybook educational"`
	Subject     string `json:"subject" validate:"omitempty,max=100"`
	Grade       string `json:"grade" validate:"omitempty,max=20"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url" validate:"omitempty,url"`
}

func (r CreateBookRequest) Validate() error {
	return validate.Struct(r)
}

type UpdateBookRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Subject     *string `json:"subject" validate:"omitempty,max=100"`
	Grade       *string `json:"grade" validate:"omitempty,max=20"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

func (r UpdateBookRequest) Validate() error {
	return validate.Struct(r)
}

type BookResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	Subject     string `json:"subject"`
	Grade       string `json:"grade"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
	IsActive    bool   `json:"is_active"`
	PageCount   int    `json:"page_count"`
}

type BookCollectionResponse struct {
	Books []BookResponse `json:"books"`
	Total int            `json:"total"`
}

// Page DTOs
type CreatePageRequest struct {
	PageNumber int    `json:"page_number" validate:"required,gte=1"`
	Content    string `json:"content"`
	ImageURL   string `json:"image_url" validate:"omitempty,url"`
	AudioURL   string `json:"audio_url" validate:"omitempty,url"`
}

func (r CreatePageRequest) Validate() error {
	return validate.Struct(r)
}

type PageResponse struct {
	ID         uint   `json:"id"`
	BookID     uint   `json:"book_id"`
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
	ImageURL   string `json:"image_url"`
	AudioURL   string `json:"audio_url"`
}

// Question DTOs
type CreateQuestionRequest struct {
	Prompt        string          `json:"prompt" validate:"required"`
	AnswerType    string          `json:"answer_type" validate:"required,oneof=text multiple_choice"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer string          `json:"correct_answer" validate:"required"`
}

func (r CreateQuestionRequest) Validate() error {
	return validate.Struct(r)
}

type QuestionResponse struct {
	ID         uint            `json:"id"`
	PageID     uint            `json:"page_id"`
	Prompt     string          `json:"prompt"`
	AnswerType string          `json:"answer_type"`
	Options    json.RawMessage `json:"options,omitempty"`
	// CorrectAnswer deliberately omitted
}
