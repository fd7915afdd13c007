// seed/main.go
package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/seed/seeders"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, badges, books, admin")
		dbPath   = flag.String("db", "", "SQLite path for local seeding (ignored when DATABASE_URL is set)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	db, err := connect(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(model.Models()...); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "badges":
		if err := mainSeeder.SeedBadgesOnly(); err != nil {
			log.Fatalf("Failed to seed badges: %v", err)
		}
	case "books":
		if err := mainSeeder.SeedBooksOnly(); err != nil {
			log.Fatalf("Failed to seed books: %v", err)
		}
	case "admin":
		if err := mainSeeder.SeedAdminOnly(); err != nil {
			log.Fatalf("Failed to seed admin: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'badges', 'books', or 'admin'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func connect(dbPath string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		log.Println("Connecting to Postgres")
		return gorm.Open(postgres.Open(dsn), config)
	}

	if dbPath == "" {
		dbPath = os.Getenv("DB_NAME")
		if dbPath == "" {
			dbPath = "readleaf.db"
		}
	}
	log.Printf("Connecting to SQLite: %s", dbPath)
	return gorm.Open(sqlite.Open(dbPath), config)
}

func showHelp() {
	log.Println(`
Database Seeding Tool for the ReadLeaf API

Usage: go run seed/main.go [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, badges, books, admin
  -db string
        SQLite path for local seeding (ignored when DATABASE_URL is set)
  -help
        Show this help message

Environment Variables:
  DATABASE_URL - Postgres DSN; when set, seeding targets Postgres
  DB_NAME      - SQLite path fallback (default: readleaf.db)
`)
}
