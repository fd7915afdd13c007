package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/model"
)

func TestAwardBadgeOnce(t *testing.T) {
	ds, _, _, _, badgeSvc, _ := newTestServices(t)
	badge := seedTestBadge(t, ds, "Star Reader")
	user := seedTestUser(t, ds, "student")

	resp, err := badgeSvc.AwardBadge(user.ID, &dto.AwardBadgeRequest{BadgeID: badge.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Awarded || resp.AlreadyHad {
		t.Errorf("expected fresh award, got %+v", resp)
	}

	resp, err = badgeSvc.AwardBadge(user.ID, &dto.AwardBadgeRequest{BadgeID: badge.ID})
	if err != nil {
		t.Fatalf("expected repeat award to succeed, got %v", err)
	}
	if resp.Awarded || !resp.AlreadyHad {
		t.Errorf("expected already-held report, got %+v", resp)
	}

	var count int64
	if err := ds.db.Model(&model.EarnedBadge{}).Where("user_id = ? AND badge_id = ?", user.ID, badge.ID).Count(&count).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one earned row, got %d", count)
	}
}

func TestAwardBadgeUnknownBadge(t *testing.T) {
	ds, _, _, _, badgeSvc, _ := newTestServices(t)
	user := seedTestUser(t, ds, "student")

	_, err := badgeSvc.AwardBadge(user.ID, &dto.AwardBadgeRequest{BadgeID: 999})
	if err == nil {
		t.Fatal("expected error for unknown badge")
	}
}

func TestAwardAutoBadgesThreshold(t *testing.T) {
	ds, _, _, _, badgeSvc, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Auto Book", "auto-book")
	lowBadge := seedTestBadge(t, ds, "Halfway There")
	highBadge := seedTestBadge(t, ds, "All The Way")
	mapBadgeToBookForTest(t, ds, book.ID, lowBadge.ID, 50)
	mapBadgeToBookForTest(t, ds, book.ID, highBadge.ID, 100)
	user := seedTestUser(t, ds, "student")

	var awarded []uint
	err := ds.Transaction(func(tx *gorm.DB) error {
		var txErr error
		awarded, _, txErr = badgeSvc.AwardAutoBadges(tx, user.ID, book.ID, 60)
		return txErr
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(awarded) != 1 || awarded[0] != lowBadge.ID {
		t.Errorf("expected only the 50%% badge at percent 60, got %v", awarded)
	}
}

func TestAwardExclusiveBySlugUnknownSlugIsNoop(t *testing.T) {
	ds, _, _, _, badgeSvc, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Plain Book", "plain-book")
	user := seedTestUser(t, ds, "student")

	err := ds.Transaction(func(tx *gorm.DB) error {
		awarded, badgeID := badgeSvc.AwardExclusiveBySlug(tx, user.ID, book.ID, "plain-book")
		if awarded || badgeID != 0 {
			t.Errorf("expected no-op for non-curated slug, got awarded=%v badge=%d", awarded, badgeID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAwardExclusiveBySlugMissingBadgeIsNoop(t *testing.T) {
	ds, _, _, _, badgeSvc, _ := newTestServices(t)
	book := seedTestBook(t, ds, "The Necklace and the Comb", "necklace-comb")
	user := seedTestUser(t, ds, "student")

	err := ds.Transaction(func(tx *gorm.DB) error {
		awarded, badgeID := badgeSvc.AwardExclusiveBySlug(tx, user.ID, book.ID, "necklace-comb")
		if awarded || badgeID != 0 {
			t.Errorf("expected no-op when badge row is missing, got awarded=%v badge=%d", awarded, badgeID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMapAndUnmapBadge(t *testing.T) {
	ds, _, _, _, badgeSvc, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Mapped Book", "mapped-book")
	badge := seedTestBadge(t, ds, "Mapped Badge")

	mapping, err := badgeSvc.MapBadgeToBook(book.ID, &dto.MapBadgeRequest{
		BadgeID:     badge.ID,
		AwardMethod: "auto_on_book_complete",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mapping.CompletionThreshold != 100 {
		t.Errorf("expected default threshold 100, got %d", mapping.CompletionThreshold)
	}

	if err := badgeSvc.UnmapBadgeFromBook(book.ID, badge.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := badgeSvc.UnmapBadgeFromBook(book.ID, badge.ID); err == nil {
		t.Fatal("expected error unmapping a missing mapping")
	}
}
