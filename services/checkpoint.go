// services/checkpoint.go
package services

import (
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"
)

// CheckpointService owns the exact-resume record per (user, book). Saves
// are partial merges: only fields present in the request overwrite stored
// values, everything else is preserved.
type CheckpointService struct {
	appContext.DefaultService

	sqlSvc  *PostgresService
	bookSvc *BookService
}

const CHECKPOINT_SVC = "checkpoint_svc"

func (svc CheckpointService) Id() string {
	return CHECKPOINT_SVC
}

func (svc *CheckpointService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.bookSvc = svc.Service(BOOK_SVC).(*BookService)
	return nil
}

// GetCheckpoint returns the stored checkpoint, or a null result when the
// user has never saved one for this book.
func (svc *CheckpointService) GetCheckpoint(userID, bookRef string) (*dto.CheckpointResult, error) {
	book, err := svc.bookSvc.ResolveBook(bookRef)
	if err != nil {
		return nil, err
	}

	checkpoint, err := svc.sqlSvc.GetCheckpoint(userID, book.ID)
	if err != nil {
		return nil, err
	}
	if checkpoint == nil {
		return &dto.CheckpointResult{Checkpoint: nil}, nil
	}

	return &dto.CheckpointResult{Checkpoint: mapCheckpointToResponse(checkpoint)}, nil
}

// SaveCheckpoint upserts the (user, book) checkpoint with the request's
// present fields. Percent is clamped to 0-100 and the audio position to
// >= 0 rather than rejected.
func (svc *CheckpointService) SaveCheckpoint(userID, bookRef string, req *dto.SaveCheckpointRequest) (*dto.CheckpointResult, error) {
	book, err := svc.bookSvc.ResolveBook(bookRef)
	if err != nil {
		return nil, err
	}

	req.Normalize()

	now := time.Now()
	updates := map[string]interface{}{
		"last_checkpoint_at": now,
		"updated_at":         now,
	}

	row := &model.StoryCheckpoint{
		UserID:           userID,
		BookID:           book.ID,
		LastCheckpointAt: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if req.PageID != nil {
		row.PageID = req.PageID
		updates["page_id"] = *req.PageID
	}
	if req.PageNumber != nil {
		row.PageNumber = req.PageNumber
		updates["page_number"] = *req.PageNumber
	}
	if req.Answers != nil {
		row.Answers = []byte(req.Answers)
		updates["answers"] = []byte(req.Answers)
	}
	if req.QuizState != nil {
		row.QuizState = []byte(req.QuizState)
		updates["quiz_state"] = []byte(req.QuizState)
	}
	if req.AudioPositionSec != nil {
		pos := *req.AudioPositionSec
		if pos < 0 {
			pos = 0
		}
		row.AudioPositionSec = pos
		updates["audio_position_sec"] = pos
	}
	if req.PercentComplete != nil {
		percent := clampPercent(*req.PercentComplete)
		row.PercentComplete = percent
		updates["percent_complete"] = percent
	}

	if err := svc.sqlSvc.UpsertCheckpoint(row, updates); err != nil {
		return nil, err
	}

	checkpoint, err := svc.sqlSvc.GetCheckpoint(userID, book.ID)
	if err != nil {
		return nil, err
	}
	if checkpoint == nil {
		return nil, shared.NewInternalError(nil, "Checkpoint missing after save")
	}

	return &dto.CheckpointResult{Checkpoint: mapCheckpointToResponse(checkpoint)}, nil
}

// ResetCheckpoint deletes the stored checkpoint. Resetting a checkpoint
// that never existed is a success.
func (svc *CheckpointService) ResetCheckpoint(userID, bookRef string) error {
	book, err := svc.bookSvc.ResolveBook(bookRef)
	if err != nil {
		return err
	}

	if err := svc.sqlSvc.DeleteCheckpoint(userID, book.ID); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"book_id": book.ID,
	}).Info("Checkpoint reset")
	return nil
}

func mapCheckpointToResponse(cp *model.StoryCheckpoint) *dto.CheckpointResponse {
	return &dto.CheckpointResponse{
		BookID:           cp.BookID,
		PageID:           cp.PageID,
		PageNumber:       cp.PageNumber,
		Answers:          []byte(cp.Answers),
		QuizState:        []byte(cp.QuizState),
		AudioPositionSec: cp.AudioPositionSec,
		PercentComplete:  cp.PercentComplete,
		LastCheckpointAt: cp.LastCheckpointAt,
	}
}

func clampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
