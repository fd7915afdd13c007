// services/http.go
package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/readleaf/readleaf_api/docs"
	"github.com/readleaf/readleaf_api/services/handlers"
	"github.com/readleaf/readleaf_api/shared"
)

type HttpService struct {
	appContext.DefaultService

	authSvc       *AuthService
	bookSvc       *BookService
	checkpointSvc *CheckpointService
	progressSvc   *ProgressService
	badgeSvc      *BadgeService
	completionSvc *CompletionService
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *appContext.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.bookSvc = svc.Service(BOOK_SVC).(*BookService)
	svc.checkpointSvc = svc.Service(CHECKPOINT_SVC).(*CheckpointService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.badgeSvc = svc.Service(BADGE_SVC).(*BadgeService)
	svc.completionSvc = svc.Service(COMPLETION_SVC).(*CompletionService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	docs.SwaggerInfo.BasePath = ""

	svc.server = fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})

	svc.server.Use(recover.New())
	svc.server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	svc.server.Use(MonitoringMiddleware(svc.monitoringSvc))

	svc.server.Get("/ping", svc.ping)
	svc.server.Get("/swagger/*", swagger.HandlerDefault)

	svc.registerRoutes()

	log.Info().Int("port", svc.port).Msg("HTTP server starting")
	return svc.server.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) registerRoutes() {
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	bookHandler := handlers.NewBookHandler(svc.bookSvc)
	checkpointHandler := handlers.NewCheckpointHandler(svc.checkpointSvc)
	progressHandler := handlers.NewProgressHandler(svc.progressSvc, svc.completionSvc)
	badgeHandler := handlers.NewBadgeHandler(svc.badgeSvc, svc.bookSvc)

	auth := svc.authSvc.RequiredAuth()
	staffOnly := svc.authSvc.RequireRole(shared.RoleTeacher, shared.RoleAdmin)
	adminOnly := svc.authSvc.RequireRole(shared.RoleAdmin)

	v1 := svc.server.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	// Auth
	v1.Post("/register", svc.rateLimitSvc.Middleware("register"), authHandler.Register)
	v1.Post("/login", svc.rateLimitSvc.Middleware("login"), authHandler.Login)
	v1.Get("/me", auth, authHandler.Me)

	// Admin
	v1.Get("/admin/users", auth, adminOnly, authHandler.AdminListUsers)
	v1.Post("/admin/users/:userId/approve", auth, adminOnly, authHandler.AdminApproveUser)

	// Books and content
	v1.Get("/books", auth, bookHandler.ListBooks)
	v1.Post("/books", auth, staffOnly, bookHandler.CreateBook)
	v1.Get("/books/:bookRef", auth, bookHandler.GetBook)
	v1.Put("/books/:bookRef", auth, staffOnly, bookHandler.UpdateBook)
	v1.Get("/books/:bookRef/pages", auth, bookHandler.GetBookPages)
	v1.Post("/books/:bookRef/pages", auth, staffOnly, bookHandler.CreatePage)
	v1.Get("/pages/:pageId/questions", auth, bookHandler.GetPageQuestions)
	v1.Post("/pages/:pageId/questions", auth, staffOnly, bookHandler.CreateQuestion)

	// Checkpoints
	v1.Get("/books/:bookRef/checkpoint", auth, checkpointHandler.GetCheckpoint)
	v1.Put("/books/:bookRef/checkpoint", auth, checkpointHandler.SaveCheckpoint)
	v1.Post("/books/:bookRef/checkpoint", auth, checkpointHandler.CheckpointAction)

	// Stories are books addressed by slug; the mobile client still uses
	// these paths, so keep them wired to the same handlers.
	v1.Get("/stories/:bookRef/checkpoint", auth, checkpointHandler.GetCheckpoint)
	v1.Put("/stories/:bookRef/checkpoint", auth, checkpointHandler.SaveCheckpoint)
	v1.Post("/stories/:bookRef/checkpoint", auth, checkpointHandler.CheckpointAction)
	v1.Post("/stories/:bookRef/complete", auth, svc.rateLimitSvc.Middleware("completion"), progressHandler.CompleteBook)

	// Progress and sessions
	v1.Post("/sessions/start", auth, progressHandler.StartSession)
	v1.Post("/sessions/end", auth, progressHandler.EndSession)
	v1.Get("/progress", auth, progressHandler.GetUserProgress)
	v1.Get("/users/:userId/progress", auth, staffOnly, progressHandler.GetProgressForUser)
	v1.Get("/books/:bookRef/progress", auth, progressHandler.GetBookProgress)
	v1.Post("/books/:bookRef/complete", auth, svc.rateLimitSvc.Middleware("completion"), progressHandler.CompleteBook)
	v1.Post("/quiz-attempts", auth, progressHandler.RecordQuizAttempt)

	// Badges
	v1.Get("/badges", auth, badgeHandler.ListBadges)
	v1.Post("/badges", auth, staffOnly, badgeHandler.CreateBadge)
	v1.Get("/badges/:badgeId", auth, badgeHandler.GetBadge)
	v1.Get("/books/:bookRef/badges", auth, badgeHandler.GetBookBadges)
	v1.Post("/books/:bookRef/badges", auth, staffOnly, badgeHandler.MapBadgeToBook)
	v1.Delete("/books/:bookRef/badges/:badgeId", auth, staffOnly, badgeHandler.UnmapBadgeFromBook)
	v1.Get("/me/badges", auth, badgeHandler.GetMyBadges)
	v1.Get("/users/:userId/badges", auth, staffOnly, badgeHandler.GetUserBadges)
	v1.Post("/users/:userId/badges", auth, staffOnly, badgeHandler.AwardBadge)
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")
	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ResponseNotFound(c)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ResponseJSON(c, http.StatusConflict, "Conflict", nil)
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	return shared.ResponseInternalError(c)
}
