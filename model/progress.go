// model/progress.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Progress is the coarse completion record: one row per (user, book),
// created on first activity and never deleted.
type Progress struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_book_progress"`
	BookID          uint      `json:"book_id" gorm:"not null;uniqueIndex:idx_user_book_progress"`
	PercentComplete int       `json:"percent_complete" gorm:"default:0"` // 0-100
	ReadingTimeSec  int       `json:"reading_time_sec" gorm:"default:0"`
	LastReadAt      time.Time `json:"last_read_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StoryCheckpoint is the authoritative exact-resume record, distinct from
// Progress. Answers and quiz state are opaque blobs owned by the client.
type StoryCheckpoint struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	UserID           string         `json:"user_id" gorm:"not null;uniqueIndex:idx_user_book_checkpoint"`
	BookID           uint           `json:"book_id" gorm:"not null;uniqueIndex:idx_user_book_checkpoint"`
	PageID           *uint          `json:"page_id"`
	PageNumber       *int           `json:"page_number"`
	Answers          datatypes.JSON `json:"answers,omitempty"`
	QuizState        datatypes.JSON `json:"quiz_state,omitempty"`
	AudioPositionSec float64        `json:"audio_position_sec" gorm:"default:0"` // >= 0
	PercentComplete  int            `json:"percent_complete" gorm:"default:0"`   // 0-100
	LastCheckpointAt time.Time      `json:"last_checkpoint_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ReadingSession is one open reading interval. EndTime null means active.
// At most one active session per (user, book) is enforced by an application
// lookup only; concurrent starts can still race (known gap, left to a
// product decision on a partial unique index).
type ReadingSession struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"not null;index"`
	BookID    uint       `json:"book_id" gorm:"not null;index"`
	StartTime time.Time  `json:"start_time" gorm:"not null"`
	EndTime   *time.Time `json:"end_time"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// QuizAttempt records one quiz run. Percentage is always computed
// server-side from the correct/total counts.
type QuizAttempt struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"not null;index"`
	BookID       uint      `json:"book_id" gorm:"not null;index"`
	PageID       *uint     `json:"page_id"`
	ScoreCorrect int       `json:"score_correct" gorm:"not null"`
	ScoreTotal   int       `json:"score_total" gorm:"not null"`
	Percentage   int       `json:"percentage" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}
