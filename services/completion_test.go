package services

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"
)

func TestCompleteBookFirstTime(t *testing.T) {
	ds, _, _, _, _, completionSvc := newTestServices(t)
	book := seedTestBook(t, ds, "Finish Me", "finish-me")
	badge := seedTestBadge(t, ds, "Finisher")
	mapBadgeToBookForTest(t, ds, book.ID, badge.ID, 100)
	user := seedTestUser(t, ds, "student")

	resp, err := completionSvc.CompleteBook(user.ID, "student", fmt.Sprint(book.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.BookID != book.ID {
		t.Errorf("expected book id %d, got %d", book.ID, resp.BookID)
	}
	if resp.PercentComplete != 100 {
		t.Errorf("expected percent 100, got %d", resp.PercentComplete)
	}
	if len(resp.BadgesAutoAwarded) != 1 || resp.BadgesAutoAwarded[0] != badge.ID {
		t.Errorf("expected badge %d awarded, got %v", badge.ID, resp.BadgesAutoAwarded)
	}
	if len(resp.AlreadyHad) != 0 {
		t.Errorf("expected no already-held badges, got %v", resp.AlreadyHad)
	}

	progress, err := ds.GetProgress(user.ID, book.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress == nil || progress.PercentComplete != 100 {
		t.Errorf("expected progress forced to 100, got %+v", progress)
	}

	checkpoint, err := ds.GetCheckpoint(user.ID, book.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checkpoint == nil || checkpoint.PercentComplete != 100 {
		t.Errorf("expected checkpoint forced to 100, got %+v", checkpoint)
	}
}

func TestCompleteBookIdempotent(t *testing.T) {
	ds, _, _, _, _, completionSvc := newTestServices(t)
	book := seedTestBook(t, ds, "Twice Done", "twice-done")
	badge := seedTestBadge(t, ds, "Twice Badge")
	mapBadgeToBookForTest(t, ds, book.ID, badge.ID, 100)
	user := seedTestUser(t, ds, "student")

	if _, err := completionSvc.CompleteBook(user.ID, "student", fmt.Sprint(book.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := completionSvc.CompleteBook(user.ID, "student", fmt.Sprint(book.ID))
	if err != nil {
		t.Fatalf("expected repeat completion to succeed, got %v", err)
	}

	if len(resp.BadgesAutoAwarded) != 0 {
		t.Errorf("expected no new badges on repeat, got %v", resp.BadgesAutoAwarded)
	}
	if len(resp.AlreadyHad) != 1 || resp.AlreadyHad[0] != badge.ID {
		t.Errorf("expected badge %d reported as already held, got %v", badge.ID, resp.AlreadyHad)
	}

	var count int64
	if err := ds.db.Model(&model.EarnedBadge{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one earned badge row, got %d", count)
	}
}

func TestCompleteBookLowerThresholdProtected(t *testing.T) {
	ds, _, _, progressSvc, _, completionSvc := newTestServices(t)
	book := seedTestBook(t, ds, "Threshold Book", "threshold-book")
	user := seedTestUser(t, ds, "student")

	if _, err := progressSvc.SetPercent(user.ID, fmt.Sprint(book.ID), 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := completionSvc.CompleteBook(user.ID, "student", fmt.Sprint(book.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Progress must never move back below 100 afterwards.
	if _, err := progressSvc.SetPercent(user.ID, fmt.Sprint(book.ID), 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	progress, err := ds.GetProgress(user.ID, book.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.PercentComplete != 100 {
		t.Errorf("expected percent pinned at 100, got %d", progress.PercentComplete)
	}
}

func TestCompleteBookBySlugLazyCreation(t *testing.T) {
	ds, _, _, _, _, completionSvc := newTestServices(t)
	user := seedTestUser(t, ds, "student")
	badge := seedTestBadge(t, ds, "Keeper of the Necklace")

	resp, err := completionSvc.CompleteBook(user.ID, "student", "necklace-comb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Slug != "necklace-comb" {
		t.Errorf("expected slug necklace-comb, got %s", resp.Slug)
	}
	if len(resp.BadgesAutoAwarded) != 1 || resp.BadgesAutoAwarded[0] != badge.ID {
		t.Errorf("expected exclusive badge %d awarded, got %v", badge.ID, resp.BadgesAutoAwarded)
	}

	// A second completion by slug must land on the same row.
	resp2, err := completionSvc.CompleteBook(user.ID, "student", "necklace-comb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.BookID != resp.BookID {
		t.Errorf("expected same book row, got %d and %d", resp.BookID, resp2.BookID)
	}

	var count int64
	if err := ds.db.Model(&model.Book{}).Where("slug = ?", "necklace-comb").Count(&count).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one book row for the slug, got %d", count)
	}
}

func TestCompleteBookBySlugLegacyTitleMatch(t *testing.T) {
	ds, _, _, _, _, completionSvc := newTestServices(t)
	user := seedTestUser(t, ds, "student")

	// A pre-slug row registered under a different slug but the curated
	// title, grade and subject must be reused, not duplicated.
	legacy := seedTestBook(t, ds, "The Necklace and the Comb", "legacy-import-17")

	resp, err := completionSvc.CompleteBook(user.ID, "student", "necklace-comb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.BookID != legacy.ID {
		t.Errorf("expected legacy row %d reused, got %d", legacy.ID, resp.BookID)
	}
}

func TestCompleteBookUnknownSlug(t *testing.T) {
	ds, _, _, _, _, completionSvc := newTestServices(t)
	user := seedTestUser(t, ds, "student")

	_, err := completionSvc.CompleteBook(user.ID, "student", "no-such-story")
	if err == nil {
		t.Fatal("expected error for unknown slug")
	}
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 app error, got %v", err)
	}
}

func TestCompleteBookUnknownRole(t *testing.T) {
	ds, _, _, _, _, completionSvc := newTestServices(t)
	book := seedTestBook(t, ds, "Role Book", "role-book")
	user := seedTestUser(t, ds, "student")

	_, err := completionSvc.CompleteBook(user.ID, "librarian", fmt.Sprint(book.ID))
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 app error, got %v", err)
	}
}

func TestCompleteBookRecordsMetrics(t *testing.T) {
	ds, _, _, _, _, completionSvc := newTestServices(t)
	completionSvc.monitoringSvc = &MonitoringService{}

	book := seedTestBook(t, ds, "Counted Book", "counted-book")
	badge := seedTestBadge(t, ds, "Counted Badge")
	mapBadgeToBookForTest(t, ds, book.ID, badge.ID, 100)
	user := seedTestUser(t, ds, "student")

	completionsBefore := testutil.ToFloat64(completionsTotal)
	badgesBefore := testutil.ToFloat64(badgesAwardedTotal)

	if _, err := completionSvc.CompleteBook(user.ID, "student", fmt.Sprint(book.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(completionsTotal) - completionsBefore; got != 1 {
		t.Errorf("expected one completion counted, got %v", got)
	}
	if got := testutil.ToFloat64(badgesAwardedTotal) - badgesBefore; got != 1 {
		t.Errorf("expected one badge counted, got %v", got)
	}

	// A repeat completion grants nothing new, so only the completion
	// counter moves.
	if _, err := completionSvc.CompleteBook(user.ID, "student", fmt.Sprint(book.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(completionsTotal) - completionsBefore; got != 2 {
		t.Errorf("expected two completions counted, got %v", got)
	}
	if got := testutil.ToFloat64(badgesAwardedTotal) - badgesBefore; got != 1 {
		t.Errorf("expected badge count unchanged on repeat, got %v", got)
	}
}

func TestCompleteBookMissingExclusiveBadgeStillCompletes(t *testing.T) {
	ds, _, _, _, _, completionSvc := newTestServices(t)
	user := seedTestUser(t, ds, "student")

	// No "Keeper of the Necklace" badge row seeded; completion must
	// still go through with no badge granted.
	resp, err := completionSvc.CompleteBook(user.ID, "student", "necklace-comb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.BadgesAutoAwarded) != 0 {
		t.Errorf("expected no badges, got %v", resp.BadgesAutoAwarded)
	}

	progress, err := ds.GetProgress(user.ID, resp.BookID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress == nil || progress.PercentComplete != 100 {
		t.Errorf("expected progress at 100, got %+v", progress)
	}
}
