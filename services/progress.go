// services/progress.go
package services

import (
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"
)

// ProgressService owns the coarse per-book progress record and the
// reading sessions and quiz attempts that feed it.
type ProgressService struct {
	appContext.DefaultService

	sqlSvc  *PostgresService
	bookSvc *BookService
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.bookSvc = svc.Service(BOOK_SVC).(*BookService)
	return nil
}

// ==================== SESSIONS ====================

// StartSession opens a reading session. If the user already has an open
// session for the book it is returned instead of opening a second one.
// The check is an application-level lookup; see model.ReadingSession for
// the concurrency caveat.
func (svc *ProgressService) StartSession(userID string, req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid session request")
	}

	if _, err := svc.sqlSvc.GetBook(req.BookID); err != nil {
		return nil, shared.NewNotFoundError(err, "Book not found")
	}

	active, err := svc.sqlSvc.GetActiveSession(userID, req.BookID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return mapSessionToResponse(active), nil
	}

	now := time.Now()
	session, err := svc.sqlSvc.CreateReadingSession(&model.ReadingSession{
		UserID:    userID,
		BookID:    req.BookID,
		StartTime: now,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return mapSessionToResponse(session), nil
}

// EndSession closes a session and folds its elapsed time into the
// progress row. Ending an already-ended session returns it unchanged
// without double-counting.
func (svc *ProgressService) EndSession(userID string, req *dto.EndSessionRequest) (*dto.SessionResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid session request")
	}

	session, err := svc.sqlSvc.GetReadingSession(req.SessionID, userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Session not found")
	}

	if session.EndTime != nil {
		return mapSessionToResponse(session), nil
	}

	now := time.Now()
	session.EndTime = &now
	if err := svc.sqlSvc.UpdateReadingSession(session); err != nil {
		return nil, err
	}

	elapsed := int(now.Sub(session.StartTime).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	if err := svc.sqlSvc.AddReadingTime(userID, session.BookID, elapsed); err != nil {
		// The session is already closed; losing the time increment is
		// preferable to failing the close.
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"book_id": session.BookID,
		}).Warn("Failed to accumulate reading time")
	}

	resp := mapSessionToResponse(session)
	resp.ElapsedSec = elapsed
	return resp, nil
}

func mapSessionToResponse(session *model.ReadingSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		SessionID: session.ID,
		BookID:    session.BookID,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
	}
}

// ==================== PROGRESS ====================

// GetBookProgress returns the progress row for one book, zero-valued when
// the user has no activity yet.
func (svc *ProgressService) GetBookProgress(userID, bookRef string) (*dto.ProgressResponse, error) {
	book, err := svc.bookSvc.ResolveBook(bookRef)
	if err != nil {
		return nil, err
	}

	progress, err := svc.sqlSvc.GetProgress(userID, book.ID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return &dto.ProgressResponse{BookID: book.ID}, nil
	}

	return mapProgressToResponse(progress), nil
}

func (svc *ProgressService) GetUserProgress(userID string) (*dto.ProgressCollectionResponse, error) {
	rows, err := svc.sqlSvc.GetUserProgress(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ProgressResponse, len(rows))
	for i := range rows {
		responses[i] = *mapProgressToResponse(&rows[i])
	}

	return &dto.ProgressCollectionResponse{
		Progress: responses,
		Total:    len(rows),
	}, nil
}

// SetPercent raises the stored completion percent. Values are clamped to
// 0-100 and a value below the stored one leaves it untouched; progress
// only moves forward outside an explicit reset.
func (svc *ProgressService) SetPercent(userID, bookRef string, percent int) (*dto.ProgressResponse, error) {
	book, err := svc.bookSvc.ResolveBook(bookRef)
	if err != nil {
		return nil, err
	}

	if err := svc.sqlSvc.SetProgressPercent(userID, book.ID, clampPercent(percent)); err != nil {
		return nil, err
	}

	progress, err := svc.sqlSvc.GetProgress(userID, book.ID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, shared.NewInternalError(nil, "Progress missing after update")
	}
	return mapProgressToResponse(progress), nil
}

func mapProgressToResponse(progress *model.Progress) *dto.ProgressResponse {
	return &dto.ProgressResponse{
		BookID:          progress.BookID,
		PercentComplete: progress.PercentComplete,
		ReadingTimeSec:  progress.ReadingTimeSec,
		LastReadAt:      progress.LastReadAt,
	}
}

// ==================== QUIZ ATTEMPTS ====================

// RecordQuizAttempt stores a quiz run. The percentage comes from the
// correct/total counts, never from the client.
func (svc *ProgressService) RecordQuizAttempt(userID string, req *dto.QuizAttemptRequest) (*dto.QuizAttemptResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid quiz attempt")
	}
	if req.ScoreCorrect > req.ScoreTotal {
		return nil, shared.NewBadRequestError(nil, "Correct count exceeds total")
	}

	if _, err := svc.sqlSvc.GetBook(req.BookID); err != nil {
		return nil, shared.NewNotFoundError(err, "Book not found")
	}

	attempt, err := svc.sqlSvc.CreateQuizAttempt(&model.QuizAttempt{
		UserID:       userID,
		BookID:       req.BookID,
		PageID:       req.PageID,
		ScoreCorrect: req.ScoreCorrect,
		ScoreTotal:   req.ScoreTotal,
		Percentage:   req.ScoreCorrect * 100 / req.ScoreTotal,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}

	return &dto.QuizAttemptResponse{
		AttemptID:    attempt.ID,
		BookID:       attempt.BookID,
		ScoreCorrect: attempt.ScoreCorrect,
		ScoreTotal:   attempt.ScoreTotal,
		Percentage:   attempt.Percentage,
		CreatedAt:    attempt.CreatedAt,
	}, nil
}
