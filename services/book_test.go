package services

import (
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"
)

func TestResolveBookByIDAndSlug(t *testing.T) {
	ds, bookSvc, _, _, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Resolvable", "resolvable")

	byID, err := bookSvc.ResolveBook(fmt.Sprint(book.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byID.ID != book.ID {
		t.Errorf("expected id %d, got %d", book.ID, byID.ID)
	}

	bySlug, err := bookSvc.ResolveBook("resolvable")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bySlug.ID != book.ID {
		t.Errorf("expected id %d, got %d", book.ID, bySlug.ID)
	}
}

func TestResolveBookUnknown(t *testing.T) {
	_, bookSvc, _, _, _, _ := newTestServices(t)

	_, err := bookSvc.ResolveBook("missing-slug")
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 app error, got %v", err)
	}
}

func TestResolveExclusiveBookCreatesOnce(t *testing.T) {
	ds, bookSvc, _, _, _, _ := newTestServices(t)

	var first, second uint
	err := ds.Transaction(func(tx *gorm.DB) error {
		book, err := bookSvc.ResolveExclusiveBook(tx, "paper-lantern-river")
		if err != nil {
			return err
		}
		first = book.ID
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = ds.Transaction(func(tx *gorm.DB) error {
		book, err := bookSvc.ResolveExclusiveBook(tx, "paper-lantern-river")
		if err != nil {
			return err
		}
		second = book.ID
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("expected same row, got %d and %d", first, second)
	}
}

func TestCreateBookOnConflictReselectReturnsWinner(t *testing.T) {
	ds, _, _, _, _, _ := newTestServices(t)
	existing := seedTestBook(t, ds, "First Writer", "contested-slug")

	// Simulates the loser of two racing first-references: the slug row
	// already exists, so the insert affects nothing and the winner's row
	// must come back instead.
	loser := &model.Book{
		Title:    "Second Writer",
		Slug:     "contested-slug",
		Type:     shared.BookTypeStorybook,
		IsActive: true,
	}
	got, err := ds.CreateBookOnConflictReselect(ds.Db(), loser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != existing.ID {
		t.Errorf("expected winner row %d, got %d", existing.ID, got.ID)
	}
	if got.Title != "First Writer" {
		t.Errorf("expected winner's title, got %q", got.Title)
	}

	var count int64
	if err := ds.db.Model(&model.Book{}).Where("slug = ?", "contested-slug").Count(&count).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one row for the slug, got %d", count)
	}
}

func TestResolveExclusiveBookUnknownSlug(t *testing.T) {
	ds, bookSvc, _, _, _, _ := newTestServices(t)

	err := ds.Transaction(func(tx *gorm.DB) error {
		_, err := bookSvc.ResolveExclusiveBook(tx, "not-curated")
		return err
	})
	if err == nil {
		t.Fatal("expected error for non-curated slug")
	}
}

func TestCreateBookSlugDisambiguation(t *testing.T) {
	ds, bookSvc, _, _, _, _ := newTestServices(t)
	seedTestBook(t, ds, "Taken", "taken")

	created, err := bookSvc.CreateBook(dto.CreateBookRequest{
		Title: "Taken",
		Slug:  "taken",
		Type:  shared.BookTypeStorybook,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Slug != "taken-2" {
		t.Errorf("expected suffixed slug taken-2, got %s", created.Slug)
	}

	next, err := bookSvc.CreateBook(dto.CreateBookRequest{
		Title: "Taken",
		Slug:  "taken",
		Type:  shared.BookTypeStorybook,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Slug != "taken-3" {
		t.Errorf("expected suffixed slug taken-3, got %s", next.Slug)
	}
}

func TestCreateBookDerivesSlugFromTitle(t *testing.T) {
	_, bookSvc, _, _, _, _ := newTestServices(t)

	created, err := bookSvc.CreateBook(dto.CreateBookRequest{
		Title: "The Fox & the Grapes!",
		Type:  shared.BookTypeStorybook,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Slug != "the-fox-the-grapes" {
		t.Errorf("expected derived slug, got %s", created.Slug)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"The Necklace and the Comb": "the-necklace-and-the-comb",
		"Counting 1, 2, 3":          "counting-1-2-3",
		"  Spaced  Out  ":           "spaced-out",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUpdateBookKeepsSlug(t *testing.T) {
	ds, bookSvc, _, _, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Renamable", "renamable")

	newTitle := "Renamed"
	updated, err := bookSvc.UpdateBook(fmt.Sprint(book.ID), dto.UpdateBookRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("expected title updated, got %s", updated.Title)
	}
	if updated.Slug != "renamable" {
		t.Errorf("expected slug unchanged, got %s", updated.Slug)
	}
}
