package dto

import "time"

// Reading session DTOs
type StartSessionRequest struct {
	BookID uint `json:"book_id" validate:"required"`

	BookIDAlias uint `json:"bookId"`
}

func (r *StartSessionRequest) Normalize() {
	if r.BookID == 0 {
		r.BookID = r.BookIDAlias
	}
	r.BookIDAlias = 0
}

func (r StartSessionRequest) Validate() error {
	return validate.Struct(r)
}

type EndSessionRequest struct {
	SessionID uint `json:"session_id" validate:"required"`

	SessionIDAlias uint `json:"sessionId"`
}

func (r *EndSessionRequest) Normalize() {
	if r.SessionID == 0 {
		r.SessionID = r.SessionIDAlias
	}
	r.SessionIDAlias = 0
}

func (r EndSessionRequest) Validate() error {
	return validate.Struct(r)
}

type SessionResponse struct {
	SessionID  uint       `json:"session_id"`
	BookID     uint       `json:"book_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	ElapsedSec int        `json:"elapsed_sec,omitempty"`
}

type ProgressResponse struct {
	BookID          uint      `json:"book_id"`
	PercentComplete int       `json:"percent_complete"`
	ReadingTimeSec  int       `json:"reading_time_sec"`
	LastReadAt      time.Time `json:"last_read_at"`
}

type ProgressCollectionResponse struct {
	Progress []ProgressResponse `json:"progress"`
	Total    int                `json:"total"`
}

// Quiz attempt DTOs. The percentage is computed server-side; a value sent
// by the client is ignored.
type QuizAttemptRequest struct {
	BookID       uint  `json:"book_id" validate:"required"`
	PageID       *uint `json:"page_id"`
	ScoreCorrect int   `json:"score_correct" validate:"gte=0"`
	ScoreTotal   int   `json:"score_total" validate:"required,gte=1"`

	BookIDAlias       uint  `json:"bookId"`
	PageIDAlias       *uint `json:"pageId"`
	ScoreCorrectAlias *int  `json:"scoreCorrect"`
	ScoreTotalAlias   *int  `json:"scoreTotal"`
}

func (r *QuizAttemptRequest) Normalize() {
	if r.BookID == 0 {
		r.BookID = r.BookIDAlias
	}
	if r.PageID == nil {
		r.PageID = r.PageIDAlias
	}
	if r.ScoreCorrect == 0 && r.ScoreCorrectAlias != nil {
		r.ScoreCorrect = *r.ScoreCorrectAlias
	}
	if r.ScoreTotal == 0 && r.ScoreTotalAlias != nil {
		r.ScoreTotal = *r.ScoreTotalAlias
	}
	r.BookIDAlias = 0
	r.PageIDAlias = nil
	r.ScoreCorrectAlias = nil
	r.ScoreTotalAlias = nil
}

func (r QuizAttemptRequest) Validate() error {
	return validate.Struct(r)
}

type QuizAttemptResponse struct {
	AttemptID    uint      `json:"attempt_id"`
	BookID       uint      `json:"book_id"`
	ScoreCorrect int       `json:"score_correct"`
	ScoreTotal   int       `json:"score_total"`
	Percentage   int       `json:"percentage"`
	CreatedAt    time.Time `json:"created_at"`
}
