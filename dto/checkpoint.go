package dto

import (
	"encoding/json"
	"time"
)

// SaveCheckpointRequest carries a partial checkpoint update. Clients have
// historically sent both camelCase and snake_case spellings for every
// field; the snake_case fields are canonical and Normalize folds each
// accepted alias into them before validation. Omitted fields leave the
// stored value untouched.
type SaveCheckpointRequest struct {
	PageID           *uint           `json:"page_id"`
	PageNumber       *int            `json:"page_number"`
	Answers          json.RawMessage `json:"answers,omitempty"`
	QuizState        json.RawMessage `json:"quiz_state,omitempty"`
	AudioPositionSec *float64        `json:"audio_position_sec"`
	PercentComplete  *int            `json:"percent_complete"`

	// Accepted aliases; never read after Normalize.
	PageIDAlias           *uint           `json:"pageId"`
	PageNumberAlias       *int            `json:"pageNumber"`
	AnswersAlias          json.RawMessage `json:"answersJson,omitempty"`
	QuizStateAlias        json.RawMessage `json:"quizStateJson,omitempty"`
	AudioPositionSecAlias *float64        `json:"audioPositionSec"`
	AudioPositionAlias    *float64        `json:"audio_position"`
	PercentCompleteAlias  *int            `json:"percentComplete"`
}

// Normalize maps every accepted alias onto its canonical field. The
// canonical spelling wins when a request carries both.
func (r *SaveCheckpointRequest) Normalize() {
	if r.PageID == nil {
		r.PageID = r.PageIDAlias
	}
	if r.PageNumber == nil {
		r.PageNumber = r.PageNumberAlias
	}
	if r.Answers == nil {
		r.Answers = r.AnswersAlias
	}
	if r.QuizState == nil {
		r.QuizState = r.QuizStateAlias
	}
	if r.AudioPositionSec == nil {
		r.AudioPositionSec = r.AudioPositionSecAlias
	}
	if r.AudioPositionSec == nil {
		r.AudioPositionSec = r.AudioPositionAlias
	}
	if r.PercentComplete == nil {
		r.PercentComplete = r.PercentCompleteAlias
	}

	r.PageIDAlias = nil
	r.PageNumberAlias = nil
	r.AnswersAlias = nil
	r.QuizStateAlias = nil
	r.AudioPositionSecAlias = nil
	r.AudioPositionAlias = nil
	r.PercentCompleteAlias = nil
}

// IsEmpty reports whether the request carries no updatable field.
func (r *SaveCheckpointRequest) IsEmpty() bool {
	return r.PageID == nil && r.PageNumber == nil && r.Answers == nil &&
		r.QuizState == nil && r.AudioPositionSec == nil && r.PercentComplete == nil
}

// CheckpointActionRequest covers non-update checkpoint operations.
type CheckpointActionRequest struct {
	Action string `json:"action" validate:"required,oneof=reset"`
}

func (r CheckpointActionRequest) Validate() error {
	return validate.Struct(r)
}

type CheckpointResponse struct {
	BookID           uint            `json:"book_id"`
	PageID           *uint           `json:"page_id"`
	PageNumber       *int            `json:"page_number"`
	Answers          json.RawMessage `json:"answers,omitempty"`
	QuizState        json.RawMessage `json:"quiz_state,omitempty"`
	AudioPositionSec float64         `json:"audio_position_sec"`
	PercentComplete  int             `json:"percent_complete"`
	LastCheckpointAt time.Time       `json:"last_checkpoint_at"`
}

// CheckpointResult wraps a fetch so that "no checkpoint yet" serializes
// as checkpoint:null instead of an error.
type CheckpointResult struct {
	Checkpoint *CheckpointResponse `json:"checkpoint"`
}
