package seeders

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"
)

// BookSeeder populates a starter library with pages and badge mappings.
type BookSeeder struct {
	db *gorm.DB
}

// NewBookSeeder creates a new book seeder
func NewBookSeeder(db *gorm.DB) *BookSeeder {
	return &BookSeeder{db: db}
}

type seedBook struct {
	book      model.Book
	pageCount int
	badgeName string
}

func (s *BookSeeder) SeedBooks() error {
	now := time.Now()

	books := []seedBook{
		{
			book: model.Book{
				Title:       "The Necklace and the Comb",
				Slug:        "necklace-comb",
				Type:        shared.BookTypeStorybook,
				Subject:     "Reading",
				Grade:       "3",
				Description: "Two sisters trade keepsakes and learn what each is worth.",
				IsActive:    true,
			},
			pageCount: 12,
			badgeName: "Keeper of the Necklace",
		},
		{
			book: model.Book{
				Title:       "The Paper Lantern on the River",
				Slug:        "paper-lantern-river",
				Type:        shared.BookTypeStorybook,
				Subject:     "Reading",
				Grade:       "2",
				Description: "A lantern drifts downstream carrying a wish.",
				IsActive:    true,
			},
			pageCount: 8,
			badgeName: "Lantern Bearer",
		},
		{
			book: model.Book{
				Title:       "Counting with Rivers",
				Slug:        "counting-with-rivers",
				Type:        shared.BookTypeEducational,
				Subject:     "Math",
				Grade:       "1",
				Description: "Early arithmetic told through river crossings.",
				IsActive:    true,
			},
			pageCount: 10,
		},
	}

	for i := range books {
		if err := s.seedBook(&books[i], now); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d books", len(books))
	return nil
}

func (s *BookSeeder) seedBook(sb *seedBook, now time.Time) error {
	sb.book.CreatedAt = now
	sb.book.UpdatedAt = now

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&sb.book)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Already seeded; fetch the id for the mapping step.
		if err := s.db.Where("slug = ?", sb.book.Slug).First(&sb.book).Error; err != nil {
			return err
		}
	}

	if err := s.seedPages(sb, now); err != nil {
		return err
	}
	return s.seedBadgeMapping(sb, now)
}

func (s *BookSeeder) seedPages(sb *seedBook, now time.Time) error {
	pages := make([]model.Page, sb.pageCount)
	for i := 0; i < sb.pageCount; i++ {
		pages[i] = model.Page{
			BookID:     sb.book.ID,
			PageNumber: i + 1,
			Content:    fmt.Sprintf("%s, page %d.", sb.book.Title, i+1),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_id"}, {Name: "page_number"}},
		DoNothing: true,
	}).Create(&pages).Error
}

func (s *BookSeeder) seedBadgeMapping(sb *seedBook, now time.Time) error {
	if sb.badgeName == "" {
		return nil
	}

	var badge model.Badge
	if err := s.db.Where("name = ?", sb.badgeName).First(&badge).Error; err != nil {
		log.Printf("Badge %q not found, skipping mapping for %s", sb.badgeName, sb.book.Slug)
		return nil
	}

	mapping := model.BookBadge{
		BookID:              sb.book.ID,
		BadgeID:             badge.ID,
		AwardMethod:         shared.AwardMethodAutoOnComplete,
		CompletionThreshold: 100,
		IsEnabled:           true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&mapping).Error
}
