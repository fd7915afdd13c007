// services/badge.go
package services

import (
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"
)

// BadgeService owns the badge catalog, book-badge mappings and earned
// grants. Every award path funnels through the insert-or-ignore on the
// unique (user, badge) pair, so a badge can never be granted twice.
type BadgeService struct {
	appContext.DefaultService

	sqlSvc *PostgresService
}

const BADGE_SVC = "badge_svc"

// exclusiveStoryBadges maps curated story slugs to the badge name granted
// on completion. Slugs without an entry grant nothing.
var exclusiveStoryBadges = map[string]string{
	"necklace-comb":       "Keeper of the Necklace",
	"paper-lantern-river": "Lantern Bearer",
	"clockmakers-sparrow": "Sparrow's Apprentice",
	"salt-merchants-map":  "Master Navigator",
}

func (svc BadgeService) Id() string {
	return BADGE_SVC
}

func (svc *BadgeService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// ==================== CATALOG ====================

func (svc *BadgeService) CreateBadge(req dto.CreateBadgeRequest) (*dto.BadgeResponse, error) {
	now := time.Now()
	badge, err := svc.sqlSvc.CreateBadge(&model.Badge{
		Name:        req.Name,
		Description: req.Description,
		IconURL:     req.IconURL,
		IsGeneric:   req.IsGeneric,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	resp := mapBadgeToResponse(badge)
	return &resp, nil
}

func (svc *BadgeService) GetBadge(badgeID uint) (*dto.BadgeResponse, error) {
	badge, err := svc.sqlSvc.GetBadge(badgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Badge not found")
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	resp := mapBadgeToResponse(badge)
	return &resp, nil
}

func (svc *BadgeService) ListBadges(activeOnly bool) (*dto.BadgeCollectionResponse, error) {
	badges, err := svc.sqlSvc.ListBadges(activeOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BadgeResponse, len(badges))
	for i := range badges {
		responses[i] = mapBadgeToResponse(&badges[i])
	}

	return &dto.BadgeCollectionResponse{
		Badges: responses,
		Total:  len(badges),
	}, nil
}

// ==================== MAPPINGS ====================

func (svc *BadgeService) MapBadgeToBook(bookID uint, req *dto.MapBadgeRequest) (*dto.BookBadgeResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid badge mapping")
	}

	if _, err := svc.sqlSvc.GetBadge(req.BadgeID); err != nil {
		return nil, shared.NewNotFoundError(err, "Badge not found")
	}

	threshold := req.CompletionThreshold
	if threshold == 0 {
		threshold = 100
	}

	now := time.Now()
	mapping, err := svc.sqlSvc.CreateBookBadge(&model.BookBadge{
		BookID:              bookID,
		BadgeID:             req.BadgeID,
		AwardMethod:         req.AwardMethod,
		CompletionThreshold: threshold,
		IsEnabled:           true,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		return nil, err
	}

	badge, err := svc.sqlSvc.GetBadge(req.BadgeID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	mapping.Badge = *badge

	return mapBookBadgeToResponse(mapping), nil
}

func (svc *BadgeService) UnmapBadgeFromBook(bookID, badgeID uint) error {
	if err := svc.sqlSvc.DeleteBookBadge(bookID, badgeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError(err, "Badge mapping not found")
		}
		return svc.sqlSvc.HandleError(err)
	}
	return nil
}

func (svc *BadgeService) GetBookBadges(bookID uint) ([]dto.BookBadgeResponse, error) {
	mappings, err := svc.sqlSvc.GetBookBadges(bookID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BookBadgeResponse, len(mappings))
	for i := range mappings {
		responses[i] = *mapBookBadgeToResponse(&mappings[i])
	}
	return responses, nil
}

// ==================== AWARDS ====================

// AwardBadge grants a badge manually. Re-awarding a held badge reports
// alreadyHad rather than failing.
func (svc *BadgeService) AwardBadge(userID string, req *dto.AwardBadgeRequest) (*dto.AwardBadgeResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid award request")
	}

	if _, err := svc.sqlSvc.GetUser(userID); err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}
	if _, err := svc.sqlSvc.GetBadge(req.BadgeID); err != nil {
		return nil, shared.NewNotFoundError(err, "Badge not found")
	}

	var inserted bool
	err := svc.sqlSvc.Transaction(func(tx *gorm.DB) error {
		var txErr error
		inserted, txErr = svc.sqlSvc.InsertEarnedBadge(tx, &model.EarnedBadge{
			UserID:    userID,
			BadgeID:   req.BadgeID,
			BookID:    req.BookID,
			Note:      req.Note,
			EarnedAt:  time.Now(),
			CreatedAt: time.Now(),
		})
		return txErr
	})
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	return &dto.AwardBadgeResponse{
		BadgeID:    req.BadgeID,
		Awarded:    inserted,
		AlreadyHad: !inserted,
	}, nil
}

// AwardAutoBadges grants every enabled auto-award badge mapped to the
// book whose threshold the percent reaches. Returns newly granted and
// already-held badge ids.
func (svc *BadgeService) AwardAutoBadges(tx *gorm.DB, userID string, bookID uint, percent int) (awarded, alreadyHad []uint, err error) {
	mappings, err := svc.sqlSvc.GetAutoAwardBadges(tx, bookID, percent)
	if err != nil {
		return nil, nil, err
	}

	awarded = []uint{}
	alreadyHad = []uint{}
	now := time.Now()
	for i := range mappings {
		inserted, err := svc.sqlSvc.InsertEarnedBadge(tx, &model.EarnedBadge{
			UserID:    userID,
			BadgeID:   mappings[i].BadgeID,
			BookID:    &bookID,
			EarnedAt:  now,
			CreatedAt: now,
		})
		if err != nil {
			return nil, nil, err
		}
		if inserted {
			awarded = append(awarded, mappings[i].BadgeID)
		} else {
			alreadyHad = append(alreadyHad, mappings[i].BadgeID)
		}
	}
	return awarded, alreadyHad, nil
}

// AwardExclusiveBySlug grants the curated story badge for a slug, if one
// exists. Unknown slugs and missing badge rows are silent no-ops; badge
// trouble never blocks a completion.
func (svc *BadgeService) AwardExclusiveBySlug(tx *gorm.DB, userID string, bookID uint, slug string) (awarded bool, badgeID uint) {
	name, ok := exclusiveStoryBadges[slug]
	if !ok {
		return false, 0
	}

	badge, err := svc.sqlSvc.GetBadgeByName(tx, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).WithField("badge", name).Warn("Exclusive badge lookup failed")
		}
		return false, 0
	}

	now := time.Now()
	inserted, err := svc.sqlSvc.InsertEarnedBadge(tx, &model.EarnedBadge{
		UserID:    userID,
		BadgeID:   badge.ID,
		BookID:    &bookID,
		EarnedAt:  now,
		CreatedAt: now,
	})
	if err != nil {
		log.WithError(err).WithField("badge", name).Warn("Exclusive badge insert failed")
		return false, 0
	}
	if !inserted {
		return false, badge.ID
	}
	return true, badge.ID
}

func (svc *BadgeService) GetUserBadges(userID string) (*dto.EarnedBadgeCollectionResponse, error) {
	earned, err := svc.sqlSvc.GetUserEarnedBadges(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EarnedBadgeResponse, len(earned))
	for i := range earned {
		responses[i] = dto.EarnedBadgeResponse{
			Badge:    mapBadgeToResponse(&earned[i].Badge),
			BookID:   earned[i].BookID,
			Note:     earned[i].Note,
			EarnedAt: earned[i].EarnedAt,
		}
	}

	return &dto.EarnedBadgeCollectionResponse{
		Badges: responses,
		Total:  len(earned),
	}, nil
}

func mapBadgeToResponse(badge *model.Badge) dto.BadgeResponse {
	return dto.BadgeResponse{
		ID:          badge.ID,
		Name:        badge.Name,
		Description: badge.Description,
		IconURL:     badge.IconURL,
		IsGeneric:   badge.IsGeneric,
		IsActive:    badge.IsActive,
	}
}

func mapBookBadgeToResponse(mapping *model.BookBadge) *dto.BookBadgeResponse {
	return &dto.BookBadgeResponse{
		BookID:              mapping.BookID,
		Badge:               mapBadgeToResponse(&mapping.Badge),
		AwardMethod:         mapping.AwardMethod,
		CompletionThreshold: mapping.CompletionThreshold,
		IsEnabled:           mapping.IsEnabled,
	}
}
