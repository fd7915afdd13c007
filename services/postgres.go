package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		// Fallback to individual environment variables
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "readleaf_api"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	err = ds.db.AutoMigrate(model.Models()...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// Transaction runs fn atomically; a returned error rolls everything back.
func (ds *PostgresService) Transaction(fn func(tx *gorm.DB) error) error {
	return ds.db.Transaction(fn)
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound // 404
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict // 409
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest // 400
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError // 500
		errorType = "TRANSACTION_ERROR"
	default:
		// Check for PostgreSQL-specific errors
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			statusCode = http.StatusConflict // 409
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "relation") && strings.Contains(err.Error(), "does not exist") {
			statusCode = http.StatusInternalServerError // 500
			errorType = "SCHEMA_ERROR"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable // 503
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError // 500
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

// ==================== USER METHODS ====================

func (ds *PostgresService) GetUser(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("email = ? OR username = ?", emailOrUsername, emailOrUsername).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) CreateUser(user *model.User) (*model.User, error) {
	if err := ds.db.Create(user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return user, nil
}

func (ds *PostgresService) UpdateUser(user *model.User) error {
	user.UpdatedAt = time.Now()
	if err := ds.db.Save(user).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) ListUsers(page, limit int, search string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := ds.db.Model(&model.User{})
	if search != "" {
		query = query.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}

	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}
	return users, total, nil
}

// ==================== BOOK METHODS ====================

func (ds *PostgresService) CreateBook(book *model.Book) (*model.Book, error) {
	if err := ds.db.Create(book).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return book, nil
}

// CreateBookOnConflictReselect inserts a book and, when the slug already
// exists (two first-references racing), returns the winner's row instead
// of erroring.
func (ds *PostgresService) CreateBookOnConflictReselect(tx *gorm.DB, book *model.Book) (*model.Book, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(book)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var existing model.Book
		if err := tx.Where("slug = ?", book.Slug).First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return book, nil
}

func (ds *PostgresService) GetBook(bookID uint) (*model.Book, error) {
	var book model.Book
	if err := ds.db.Where("id = ?", bookID).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (ds *PostgresService) GetBookBySlug(slug string) (*model.Book, error) {
	return getBookBySlug(ds.db, slug)
}

func getBookByID(tx *gorm.DB, bookID uint) (*model.Book, error) {
	var book model.Book
	if err := tx.First(&book, bookID).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func getBookBySlug(tx *gorm.DB, slug string) (*model.Book, error) {
	var book model.Book
	if err := tx.Where("slug = ?", slug).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByTitleGradeSubject matches legacy rows created before slugs
// existed: case-insensitive title plus grade and subject.
func (ds *PostgresService) GetBookByTitleGradeSubject(tx *gorm.DB, title, grade, subject string) (*model.Book, error) {
	var book model.Book
	if err := tx.Where("LOWER(title) = LOWER(?) AND grade = ? AND subject = ?", title, grade, subject).
		First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (ds *PostgresService) SlugExists(tx *gorm.DB, slug string) (bool, error) {
	var count int64
	if err := tx.Model(&model.Book{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ds *PostgresService) ListBooks(bookType, subject, grade string) ([]model.Book, error) {
	var books []model.Book
	query := ds.db.Model(&model.Book{}).Where("is_active = ?", true)

	if bookType != "" {
		query = query.Where("type = ?", bookType)
	}
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if grade != "" {
		query = query.Where("grade = ?", grade)
	}

	if err := query.Order("title ASC").Find(&books).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return books, nil
}

func (ds *PostgresService) UpdateBook(book *model.Book) error {
	book.UpdatedAt = time.Now()
	if err := ds.db.Save(book).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) CountPages(bookID uint) (int64, error) {
	var count int64
	if err := ds.db.Model(&model.Page{}).Where("book_id = ?", bookID).Count(&count).Error; err != nil {
		return 0, ds.HandleError(err)
	}
	return count, nil
}

// ==================== PAGE METHODS ====================

func (ds *PostgresService) CreatePage(page *model.Page) (*model.Page, error) {
	if err := ds.db.Create(page).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return page, nil
}

func (ds *PostgresService) GetPagesByBook(bookID uint) ([]model.Page, error) {
	var pages []model.Page
	if err := ds.db.Where("book_id = ?", bookID).
		Order("page_number ASC").Find(&pages).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return pages, nil
}

func (ds *PostgresService) GetPage(pageID uint) (*model.Page, error) {
	var page model.Page
	if err := ds.db.Where("id = ?", pageID).First(&page).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &page, nil
}

// ==================== QUESTION METHODS ====================

func (ds *PostgresService) CreateQuestion(question *model.Question) (*model.Question, error) {
	if err := ds.db.Create(question).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return question, nil
}

func (ds *PostgresService) GetQuestionsByPage(pageID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := ds.db.Where("page_id = ?", pageID).Find(&questions).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return questions, nil
}

// ==================== PROGRESS METHODS ====================

// GetProgress returns nil without error when the pair has no row yet;
// absence means "never started".
func (ds *PostgresService) GetProgress(userID string, bookID uint) (*model.Progress, error) {
	var progress model.Progress
	err := ds.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

func (ds *PostgresService) GetUserProgress(userID string) ([]model.Progress, error) {
	var rows []model.Progress
	if err := ds.db.Where("user_id = ?", userID).
		Order("last_read_at DESC").Find(&rows).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return rows, nil
}

// AddReadingTime accumulates elapsed seconds onto the pair's lifetime
// total, creating the row on first activity.
func (ds *PostgresService) AddReadingTime(userID string, bookID uint, elapsedSec int) error {
	now := time.Now()
	row := model.Progress{
		UserID:         userID,
		BookID:         bookID,
		ReadingTimeSec: elapsedSec,
		LastReadAt:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := ds.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"reading_time_sec": gorm.Expr("reading_time_sec + ?", elapsedSec),
			"last_read_at":     now,
			"updated_at":       now,
		}),
	}).Create(&row).Error
	return err
}

// SetProgressPercent stores a clamped percentage, never lowering the
// current value; only the completion path may force it (to 100, which is
// the ceiling anyway).
func (ds *PostgresService) SetProgressPercent(userID string, bookID uint, percent int) error {
	now := time.Now()
	return ds.db.Transaction(func(tx *gorm.DB) error {
		var progress model.Progress
		err := tx.Where("user_id = ? AND book_id = ?", userID, bookID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := model.Progress{
				UserID:          userID,
				BookID:          bookID,
				PercentComplete: percent,
				LastReadAt:      now,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
				DoNothing: true,
			}).Create(&row).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"last_read_at": now,
			"updated_at":   now,
		}
		if percent > progress.PercentComplete {
			updates["percent_complete"] = percent
		}
		return tx.Model(&model.Progress{}).Where("id = ?", progress.ID).Updates(updates).Error
	})
}

// ForceProgressComplete is the reconciler's upsert: create at 100, raise
// to 100, or just touch the timestamp when already there.
func (ds *PostgresService) ForceProgressComplete(tx *gorm.DB, userID string, bookID uint) error {
	now := time.Now()
	row := model.Progress{
		UserID:          userID,
		BookID:          bookID,
		PercentComplete: 100,
		LastReadAt:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"percent_complete": 100,
			"last_read_at":     now,
			"updated_at":       now,
		}),
	}).Create(&row).Error
}

// ==================== CHECKPOINT METHODS ====================

// GetCheckpoint returns nil without error when no checkpoint exists.
func (ds *PostgresService) GetCheckpoint(userID string, bookID uint) (*model.StoryCheckpoint, error) {
	var checkpoint model.StoryCheckpoint
	err := ds.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&checkpoint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checkpoint, nil
}

// UpsertCheckpoint merges the supplied assignments into the pair's single
// row, inserting the full row when absent. Fields missing from updates
// stay untouched.
func (ds *PostgresService) UpsertCheckpoint(row *model.StoryCheckpoint, updates map[string]interface{}) error {
	return ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(row).Error
}

func (ds *PostgresService) DeleteCheckpoint(userID string, bookID uint) error {
	return ds.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&model.StoryCheckpoint{}).Error
}

// ForceCheckpointComplete pins the checkpoint at 100% regardless of
// whatever exact page state was stored before.
func (ds *PostgresService) ForceCheckpointComplete(tx *gorm.DB, userID string, bookID uint) error {
	now := time.Now()
	row := model.StoryCheckpoint{
		UserID:           userID,
		BookID:           bookID,
		PercentComplete:  100,
		LastCheckpointAt: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"percent_complete":   100,
			"last_checkpoint_at": now,
			"updated_at":         now,
		}),
	}).Create(&row).Error
}

// ==================== READING SESSION METHODS ====================

// GetActiveSession returns nil without error when no open session
// exists. The existence check is application-level only; concurrent
// starts can slip past it (known gap).
func (ds *PostgresService) GetActiveSession(userID string, bookID uint) (*model.ReadingSession, error) {
	var session model.ReadingSession
	err := ds.db.Where("user_id = ? AND book_id = ? AND end_time IS NULL", userID, bookID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (ds *PostgresService) CreateReadingSession(session *model.ReadingSession) (*model.ReadingSession, error) {
	if err := ds.db.Create(session).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return session, nil
}

func (ds *PostgresService) GetReadingSession(sessionID uint, userID string) (*model.ReadingSession, error) {
	var session model.ReadingSession
	if err := ds.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (ds *PostgresService) UpdateReadingSession(session *model.ReadingSession) error {
	session.UpdatedAt = time.Now()
	if err := ds.db.Save(session).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// ==================== QUIZ ATTEMPT METHODS ====================

func (ds *PostgresService) CreateQuizAttempt(attempt *model.QuizAttempt) (*model.QuizAttempt, error) {
	if err := ds.db.Create(attempt).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return attempt, nil
}

// ==================== BADGE METHODS ====================

func (ds *PostgresService) CreateBadge(badge *model.Badge) (*model.Badge, error) {
	if err := ds.db.Create(badge).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return badge, nil
}

func (ds *PostgresService) GetBadge(badgeID uint) (*model.Badge, error) {
	var badge model.Badge
	if err := ds.db.Where("id = ?", badgeID).First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (ds *PostgresService) GetBadgeByName(tx *gorm.DB, name string) (*model.Badge, error) {
	var badge model.Badge
	if err := tx.Where("name = ?", name).First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (ds *PostgresService) ListBadges(activeOnly bool) ([]model.Badge, error) {
	var badges []model.Badge
	query := ds.db.Model(&model.Badge{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&badges).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return badges, nil
}

// ==================== BOOK BADGE METHODS ====================

func (ds *PostgresService) CreateBookBadge(mapping *model.BookBadge) (*model.BookBadge, error) {
	if err := ds.db.Create(mapping).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return mapping, nil
}

func (ds *PostgresService) DeleteBookBadge(bookID, badgeID uint) error {
	res := ds.db.Where("book_id = ? AND badge_id = ?", bookID, badgeID).
		Delete(&model.BookBadge{})
	if res.Error != nil {
		return ds.HandleError(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (ds *PostgresService) GetBookBadges(bookID uint) ([]model.BookBadge, error) {
	var mappings []model.BookBadge
	if err := ds.db.Preload("Badge").Where("book_id = ?", bookID).
		Find(&mappings).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return mappings, nil
}

// GetAutoAwardBadges lists enabled auto-award mappings for a book whose
// threshold is within the reached percentage.
func (ds *PostgresService) GetAutoAwardBadges(tx *gorm.DB, bookID uint, percent int) ([]model.BookBadge, error) {
	var mappings []model.BookBadge
	if err := tx.Preload("Badge").
		Where("book_id = ? AND is_enabled = ? AND award_method = ? AND completion_threshold <= ?",
			bookID, true, shared.AwardMethodAutoOnComplete, percent).
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// ==================== EARNED BADGE METHODS ====================

// InsertEarnedBadge grants a badge with insert-or-ignore semantics on the
// unique (user, badge) pair; it reports whether a new row was written.
func (ds *PostgresService) InsertEarnedBadge(tx *gorm.DB, earned *model.EarnedBadge) (bool, error) {
	if earned.EarnedAt.IsZero() {
		earned.EarnedAt = time.Now()
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(earned)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (ds *PostgresService) GetUserEarnedBadges(userID string) ([]model.EarnedBadge, error) {
	var earned []model.EarnedBadge
	if err := ds.db.Preload("Badge").Where("user_id = ?", userID).
		Order("earned_at DESC").Find(&earned).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return earned, nil
}
