// services/completion.go
package services

import (
	"strconv"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"
)

// CompletionService reconciles everything that "this user finished this
// book" implies: progress forced to 100, checkpoint pinned at 100, and
// every eligible badge granted. All writes happen in one transaction so a
// completion is either fully applied or not at all, and re-running it is
// a no-op apart from the response echoing already-held badges.
type CompletionService struct {
	appContext.DefaultService

	sqlSvc        *PostgresService
	bookSvc       *BookService
	badgeSvc      *BadgeService
	monitoringSvc *MonitoringService
}

const COMPLETION_SVC = "completion_svc"

func (svc CompletionService) Id() string {
	return COMPLETION_SVC
}

func (svc *CompletionService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.bookSvc = svc.Service(BOOK_SVC).(*BookService)
	svc.badgeSvc = svc.Service(BADGE_SVC).(*BadgeService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// CompleteBook marks a book finished for the user. The reference is a
// numeric id or a slug; curated slugs are lazily registered on first
// completion. Only known roles may complete books.
func (svc *CompletionService) CompleteBook(userID, role, ref string) (*dto.CompletionResponse, error) {
	if !shared.IsKnownRole(role) {
		return nil, shared.NewForbiddenError(nil, "Role cannot complete books")
	}

	var resp *dto.CompletionResponse
	err := svc.sqlSvc.Transaction(func(tx *gorm.DB) error {
		book, err := svc.resolveForCompletion(tx, ref)
		if err != nil {
			return err
		}

		if err := svc.sqlSvc.ForceProgressComplete(tx, userID, book.ID); err != nil {
			return err
		}
		if err := svc.sqlSvc.ForceCheckpointComplete(tx, userID, book.ID); err != nil {
			return err
		}

		awarded, alreadyHad, err := svc.badgeSvc.AwardAutoBadges(tx, userID, book.ID, 100)
		if err != nil {
			return err
		}

		if exclusiveAwarded, badgeID := svc.badgeSvc.AwardExclusiveBySlug(tx, userID, book.ID, book.Slug); badgeID != 0 {
			if exclusiveAwarded {
				awarded = appendUnique(awarded, badgeID)
			} else if !containsID(awarded, badgeID) {
				alreadyHad = appendUnique(alreadyHad, badgeID)
			}
		}

		resp = &dto.CompletionResponse{
			BookID:            book.ID,
			Slug:              book.Slug,
			PercentComplete:   100,
			BadgesAutoAwarded: awarded,
			AlreadyHad:        alreadyHad,
		}
		return nil
	})
	if err != nil {
		if appErr, ok := shared.GetAppError(err); ok {
			return nil, appErr
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	if svc.monitoringSvc != nil {
		svc.monitoringSvc.RecordCompletion(len(resp.BadgesAutoAwarded))
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"book_id": resp.BookID,
		"awarded": len(resp.BadgesAutoAwarded),
	}).Info("Book completion reconciled")
	return resp, nil
}

// resolveForCompletion resolves a numeric id or slug inside the
// completion transaction. Slugs in the curated set are created on first
// use; anything else unknown is a not-found.
func (svc *CompletionService) resolveForCompletion(tx *gorm.DB, ref string) (*model.Book, error) {
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		book, err := getBookByID(tx, uint(id))
		if err != nil {
			return nil, shared.NewNotFoundError(err, "Book not found")
		}
		return book, nil
	}

	book, err := getBookBySlug(tx, ref)
	if err == nil {
		return book, nil
	}

	if IsExclusiveSlug(ref) {
		return svc.bookSvc.ResolveExclusiveBook(tx, ref)
	}
	return nil, shared.NewNotFoundError(err, "Book not found")
}

func appendUnique(ids []uint, id uint) []uint {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
