package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/readleaf/readleaf_api/dto"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	GetUserProfile(userID string) (*dto.UserProfileResponse, error)
	AdminListUsers(page, limit int, search string) (*dto.AdminUserListResponse, error)
	AdminApproveUser(userID string) (*dto.UserProfileResponse, error)
	RequiredAuth() fiber.Handler
	RequireRole(roles ...string) fiber.Handler
}

type BookServiceInterface interface {
	CreateBook(req dto.CreateBookRequest) (*dto.BookResponse, error)
	GetBook(ref string) (*dto.BookResponse, error)
	ListBooks(bookType, subject, grade string) (*dto.BookCollectionResponse, error)
	UpdateBook(ref string, req dto.UpdateBookRequest) (*dto.BookResponse, error)
	CreatePage(bookRef string, req dto.CreatePageRequest) (*dto.PageResponse, error)
	GetBookPages(bookRef string) ([]dto.PageResponse, error)
	CreateQuestion(pageID uint, req dto.CreateQuestionRequest) (*dto.QuestionResponse, error)
	GetPageQuestions(pageID uint) ([]dto.QuestionResponse, error)
}

type CheckpointServiceInterface interface {
	GetCheckpoint(userID, bookRef string) (*dto.CheckpointResult, error)
	SaveCheckpoint(userID, bookRef string, req *dto.SaveCheckpointRequest) (*dto.CheckpointResult, error)
	ResetCheckpoint(userID, bookRef string) error
}

type ProgressServiceInterface interface {
	StartSession(userID string, req *dto.StartSessionRequest) (*dto.SessionResponse, error)
	EndSession(userID string, req *dto.EndSessionRequest) (*dto.SessionResponse, error)
	GetBookProgress(userID, bookRef string) (*dto.ProgressResponse, error)
	GetUserProgress(userID string) (*dto.ProgressCollectionResponse, error)
	SetPercent(userID, bookRef string, percent int) (*dto.ProgressResponse, error)
	RecordQuizAttempt(userID string, req *dto.QuizAttemptRequest) (*dto.QuizAttemptResponse, error)
}

type BadgeServiceInterface interface {
	CreateBadge(req dto.CreateBadgeRequest) (*dto.BadgeResponse, error)
	GetBadge(badgeID uint) (*dto.BadgeResponse, error)
	ListBadges(activeOnly bool) (*dto.BadgeCollectionResponse, error)
	MapBadgeToBook(bookID uint, req *dto.MapBadgeRequest) (*dto.BookBadgeResponse, error)
	UnmapBadgeFromBook(bookID, badgeID uint) error
	GetBookBadges(bookID uint) ([]dto.BookBadgeResponse, error)
	AwardBadge(userID string, req *dto.AwardBadgeRequest) (*dto.AwardBadgeResponse, error)
	GetUserBadges(userID string) (*dto.EarnedBadgeCollectionResponse, error)
}

type CompletionServiceInterface interface {
	CompleteBook(userID, role, ref string) (*dto.CompletionResponse, error)
}
