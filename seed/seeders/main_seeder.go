package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// 1. Badges first so book mappings can reference them
	badgeSeeder := NewBadgeSeeder(s.db)
	if err := badgeSeeder.SeedBadges(); err != nil {
		log.Printf("Badge seeding failed: %v", err)
		return err
	}

	// 2. Books, pages and badge mappings
	bookSeeder := NewBookSeeder(s.db)
	if err := bookSeeder.SeedBooks(); err != nil {
		log.Printf("Book seeding failed: %v", err)
		return err
	}

	// 3. Default admin account
	adminSeeder := NewAdminSeeder(s.db)
	if err := adminSeeder.SeedAdmin(); err != nil {
		log.Printf("Admin seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedBadgesOnly seeds only the badge catalog
func (s *MainSeeder) SeedBadgesOnly() error {
	return NewBadgeSeeder(s.db).SeedBadges()
}

// SeedBooksOnly seeds only books and their pages
func (s *MainSeeder) SeedBooksOnly() error {
	return NewBookSeeder(s.db).SeedBooks()
}

// SeedAdminOnly seeds only the default admin account
func (s *MainSeeder) SeedAdminOnly() error {
	return NewAdminSeeder(s.db).SeedAdmin()
}
