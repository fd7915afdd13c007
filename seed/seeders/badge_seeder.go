package seeders

import (
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/readleaf/readleaf_api/model"
)

// BadgeSeeder populates the badge catalog: generic reading badges plus
// the exclusive badges granted by curated stories.
type BadgeSeeder struct {
	db *gorm.DB
}

// NewBadgeSeeder creates a new badge seeder
func NewBadgeSeeder(db *gorm.DB) *BadgeSeeder {
	return &BadgeSeeder{db: db}
}

func (s *BadgeSeeder) SeedBadges() error {
	now := time.Now()

	badges := []model.Badge{
		{
			Name:        "First Book Finished",
			Description: "Awarded for completing your first book",
			IsGeneric:   true,
			IsActive:    true,
		},
		{
			Name:        "Bookworm",
			Description: "Awarded for completing five books",
			IsGeneric:   true,
			IsActive:    true,
		},
		{
			Name:        "Quiz Whiz",
			Description: "Awarded for a perfect quiz score",
			IsGeneric:   true,
			IsActive:    true,
		},

		// Exclusive story badges, matched by name on completion
		{
			Name:        "Keeper of the Necklace",
			Description: "Finished The Necklace and the Comb",
			IsActive:    true,
		},
		{
			Name:        "Lantern Bearer",
			Description: "Finished The Paper Lantern on the River",
			IsActive:    true,
		},
		{
			Name:        "Sparrow's Apprentice",
			Description: "Finished The Clockmaker's Sparrow",
			IsActive:    true,
		},
		{
			Name:        "Master Navigator",
			Description: "Finished The Salt Merchant's Map",
			IsActive:    true,
		},
	}

	for i := range badges {
		badges[i].CreatedAt = now
		badges[i].UpdatedAt = now
	}

	// Re-running the seeder must not duplicate or overwrite badges.
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&badges)
	if result.Error != nil {
		return result.Error
	}

	log.Printf("Seeded badges: %d inserted, %d already present", result.RowsAffected, int64(len(badges))-result.RowsAffected)
	return nil
}
