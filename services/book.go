// services/book.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/model"
	"github.com/readleaf/readleaf_api/shared"
)

type BookService struct {
	appContext.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService
}

const BOOK_SVC = "book_svc"

const slugCacheTTL = 10 * time.Minute

// ExclusiveBookMeta holds the known metadata for a curated story slug so
// the first completion of an unregistered slug can lazily create its row.
type ExclusiveBookMeta struct {
	Title   string
	Type    string
	Grade   string
	Subject string
}

// exclusiveBooks is the closed set of curated story slugs, maintained by
// content editors. Slugs outside this set never create books implicitly.
var exclusiveBooks = map[string]ExclusiveBookMeta{
	"necklace-comb": {
		Title:   "The Necklace and the Comb",
		Type:    shared.BookTypeStorybook,
		Grade:   "3",
		Subject: "Reading",
	},
	"paper-lantern-river": {
		Title:   "The Paper Lantern on the River",
		Type:    shared.BookTypeStorybook,
		Grade:   "2",
		Subject: "Reading",
	},
	"clockmakers-sparrow": {
		Title:   "The Clockmaker's Sparrow",
		Type:    shared.BookTypeStorybook,
		Grade:   "4",
		Subject: "Reading",
	},
	"salt-merchants-map": {
		Title:   "The Salt Merchant's Map",
		Type:    shared.BookTypeStorybook,
		Grade:   "5",
		Subject: "Geography",
	},
}

func (svc BookService) Id() string {
	return BOOK_SVC
}

func (svc *BookService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *BookService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// ==================== RESOLUTION ====================

// ResolveBook maps a path reference, numeric id or slug, to its book row.
func (svc *BookService) ResolveBook(ref string) (*model.Book, error) {
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		book, err := svc.sqlSvc.GetBook(uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, shared.NewNotFoundError(err, "Book not found")
			}
			return nil, svc.sqlSvc.HandleError(err)
		}
		return book, nil
	}

	if book := svc.cachedBookBySlug(ref); book != nil {
		return book, nil
	}

	book, err := svc.sqlSvc.GetBookBySlug(ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Book not found")
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	svc.cacheBookSlug(book)
	return book, nil
}

func (svc *BookService) cachedBookBySlug(slug string) *model.Book {
	if svc.redisSvc == nil {
		return nil
	}
	var book model.Book
	if err := svc.redisSvc.GetJSON(context.Background(), "book:slug:"+slug, &book); err != nil {
		return nil
	}
	if book.ID == 0 {
		return nil
	}
	return &book
}

func (svc *BookService) cacheBookSlug(book *model.Book) {
	if svc.redisSvc == nil {
		return
	}
	if err := svc.redisSvc.Set(context.Background(), "book:slug:"+book.Slug, book, slugCacheTTL); err != nil {
		log.WithError(err).WithField("slug", book.Slug).Debug("Failed to cache book slug")
	}
}

// IsExclusiveSlug reports whether the slug belongs to the curated set.
func IsExclusiveSlug(slug string) bool {
	_, ok := exclusiveBooks[slug]
	return ok
}

// ResolveExclusiveBook maps a curated slug to its book id, creating the
// row on first reference. Lookup order: exact slug, then legacy rows
// matched by case-insensitive title with grade and subject, then insert.
// Two requests racing on the first creation converge on one row via the
// slug unique constraint plus re-select.
func (svc *BookService) ResolveExclusiveBook(tx *gorm.DB, slug string) (*model.Book, error) {
	meta, ok := exclusiveBooks[slug]
	if !ok {
		return nil, shared.NewNotFoundError(fmt.Errorf("unknown slug %q", slug), "Book not found")
	}

	book, err := getBookBySlug(tx, slug)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	book, err = svc.sqlSvc.GetBookByTitleGradeSubject(tx, meta.Title, meta.Grade, meta.Subject)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	uniqueSlug, err := svc.generateUniqueSlug(tx, slug)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	created, err := svc.sqlSvc.CreateBookOnConflictReselect(tx, &model.Book{
		Title:     meta.Title,
		Slug:      uniqueSlug,
		Type:      meta.Type,
		Subject:   meta.Subject,
		Grade:     meta.Grade,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"slug":    created.Slug,
		"book_id": created.ID,
	}).Info("Created exclusive book on first reference")
	return created, nil
}

// generateUniqueSlug disambiguates a taken base slug with a numeric
// suffix. The insert still goes through on-conflict re-select, so a
// collision slipping past this check cannot error.
func (svc *BookService) generateUniqueSlug(tx *gorm.DB, base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		taken, err := svc.sqlSvc.SlugExists(tx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify derives a URL slug from a title, used when staff create books
// without supplying one.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ==================== BOOK CRUD ====================

func (svc *BookService) CreateBook(req dto.CreateBookRequest) (*dto.BookResponse, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}

	uniqueSlug, err := svc.generateUniqueSlug(svc.sqlSvc.Db(), slug)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	now := time.Now()
	book, err := svc.sqlSvc.CreateBook(&model.Book{
		Title:       req.Title,
		Slug:        uniqueSlug,
		Type:        req.Type,
		Subject:     req.Subject,
		Grade:       req.Grade,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	resp := svc.mapBookToResponse(book)
	return &resp, nil
}

func (svc *BookService) GetBook(ref string) (*dto.BookResponse, error) {
	book, err := svc.ResolveBook(ref)
	if err != nil {
		return nil, err
	}

	resp := svc.mapBookToResponse(book)
	return &resp, nil
}

func (svc *BookService) ListBooks(bookType, subject, grade string) (*dto.BookCollectionResponse, error) {
	books, err := svc.sqlSvc.ListBooks(bookType, subject, grade)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BookResponse, len(books))
	for i := range books {
		responses[i] = svc.mapBookToResponse(&books[i])
	}

	return &dto.BookCollectionResponse{
		Books: responses,
		Total: len(books),
	}, nil
}

func (svc *BookService) UpdateBook(ref string, req dto.UpdateBookRequest) (*dto.BookResponse, error) {
	book, err := svc.ResolveBook(ref)
	if err != nil {
		return nil, err
	}

	// Slug is immutable once anything references it; updates never touch it.
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Subject != nil {
		book.Subject = *req.Subject
	}
	if req.Grade != nil {
		book.Grade = *req.Grade
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.CoverURL != nil {
		book.CoverURL = *req.CoverURL
	}
	if req.IsActive != nil {
		book.IsActive = *req.IsActive
	}

	if err := svc.sqlSvc.UpdateBook(book); err != nil {
		return nil, err
	}

	svc.cacheBookSlug(book)
	resp := svc.mapBookToResponse(book)
	return &resp, nil
}

func (svc *BookService) mapBookToResponse(book *model.Book) dto.BookResponse {
	resp := dto.BookResponse{
		ID:          book.ID,
		Title:       book.Title,
		Slug:        book.Slug,
		Type:        book.Type,
		Subject:     book.Subject,
		Grade:       book.Grade,
		Description: book.Description,
		CoverURL:    book.CoverURL,
		IsActive:    book.IsActive,
	}

	count, err := svc.sqlSvc.CountPages(book.ID)
	if err != nil {
		log.WithError(err).WithField("book_id", book.ID).Warn("Failed to count pages")
	} else {
		resp.PageCount = int(count)
	}
	return resp
}

// ==================== PAGE METHODS ====================

func (svc *BookService) CreatePage(bookRef string, req dto.CreatePageRequest) (*dto.PageResponse, error) {
	book, err := svc.ResolveBook(bookRef)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	page, err := svc.sqlSvc.CreatePage(&model.Page{
		BookID:     book.ID,
		PageNumber: req.PageNumber,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		AudioURL:   req.AudioURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	return mapPageToResponse(page), nil
}

func (svc *BookService) GetBookPages(bookRef string) ([]dto.PageResponse, error) {
	book, err := svc.ResolveBook(bookRef)
	if err != nil {
		return nil, err
	}

	pages, err := svc.sqlSvc.GetPagesByBook(book.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PageResponse, len(pages))
	for i := range pages {
		responses[i] = *mapPageToResponse(&pages[i])
	}
	return responses, nil
}

func mapPageToResponse(page *model.Page) *dto.PageResponse {
	return &dto.PageResponse{
		ID:         page.ID,
		BookID:     page.BookID,
		PageNumber: page.PageNumber,
		Content:    page.Content,
		ImageURL:   page.ImageURL,
		AudioURL:   page.AudioURL,
	}
}

// ==================== QUESTION METHODS ====================

func (svc *BookService) CreateQuestion(pageID uint, req dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	page, err := svc.sqlSvc.GetPage(pageID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Page not found")
	}

	now := time.Now()
	question, err := svc.sqlSvc.CreateQuestion(&model.Question{
		PageID:        page.ID,
		Prompt:        req.Prompt,
		AnswerType:    req.AnswerType,
		Options:       []byte(req.Options),
		CorrectAnswer: req.CorrectAnswer,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	return mapQuestionToResponse(question), nil
}

func (svc *BookService) GetPageQuestions(pageID uint) ([]dto.QuestionResponse, error) {
	questions, err := svc.sqlSvc.GetQuestionsByPage(pageID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuestionResponse, len(questions))
	for i := range questions {
		responses[i] = *mapQuestionToResponse(&questions[i])
	}
	return responses, nil
}

func mapQuestionToResponse(q *model.Question) *dto.QuestionResponse {
	return &dto.QuestionResponse{
		ID:         q.ID,
		PageID:     q.PageID,
		Prompt:     q.Prompt,
		AnswerType: q.AnswerType,
		Options:    []byte(q.Options),
	}
}
