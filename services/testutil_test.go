package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"
)

// newTestDB opens a throwaway in-memory database, isolated per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.Models()...); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return db
}

func newTestServices(t *testing.T) (*PostgresService, *BookService, *CheckpointService, *ProgressService, *BadgeService, *CompletionService) {
	t.Helper()

	ds := &PostgresService{db: newTestDB(t)}
	bookSvc := &BookService{sqlSvc: ds}
	checkpointSvc := &CheckpointService{sqlSvc: ds, bookSvc: bookSvc}
	progressSvc := &ProgressService{sqlSvc: ds, bookSvc: bookSvc}
	badgeSvc := &BadgeService{sqlSvc: ds}
	completionSvc := &CompletionService{sqlSvc: ds, bookSvc: bookSvc, badgeSvc: badgeSvc}

	return ds, bookSvc, checkpointSvc, progressSvc, badgeSvc, completionSvc
}

func seedTestBook(t *testing.T, ds *PostgresService, title, slug string) *model.Book {
	t.Helper()

	now := time.Now()
	book, err := ds.CreateBook(&model.Book{
		Title:     title,
		Slug:      slug,
		Type:      shared.BookTypeStorybook,
		Subject:   "Reading",
		Grade:     "3",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}
	return book
}

func seedTestBadge(t *testing.T, ds *PostgresService, name string) *model.Badge {
	t.Helper()

	now := time.Now()
	badge, err := ds.CreateBadge(&model.Badge{
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to seed badge: %v", err)
	}
	return badge
}

func seedTestUser(t *testing.T, ds *PostgresService, role string) *model.User {
	t.Helper()

	now := time.Now()
	user, err := ds.CreateUser(&model.User{
		ID:         fmt.Sprintf("user-%s-%d", t.Name(), now.UnixNano()),
		Email:      fmt.Sprintf("%d@test.local", now.UnixNano()),
		Username:   fmt.Sprintf("u%d", now.UnixNano()),
		Password:   "hashed",
		Role:       role,
		IsApproved: true,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func mapBadgeToBookForTest(t *testing.T, ds *PostgresService, bookID, badgeID uint, threshold int) {
	t.Helper()

	now := time.Now()
	_, err := ds.CreateBookBadge(&model.BookBadge{
		BookID:              bookID,
		BadgeID:             badgeID,
		AwardMethod:         shared.AwardMethodAutoOnComplete,
		CompletionThreshold: threshold,
		IsEnabled:           true,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		t.Fatalf("failed to map badge: %v", err)
	}
}
