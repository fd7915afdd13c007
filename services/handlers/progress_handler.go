package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/shared"
)

type ProgressHandler struct {
	progressSvc   ProgressServiceInterface
	completionSvc CompletionServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface, completionSvc CompletionServiceInterface) *ProgressHandler {
	return &ProgressHandler{
		progressSvc:   progressSvc,
		completionSvc: completionSvc,
	}
}

// @Summary Start a reading session
// @Description Returns the existing session when one is already open for the book.
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param startSessionRequest body dto.StartSessionRequest true "Book to read"
// @Success 201 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/sessions/start [post]
func (h *ProgressHandler) StartSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	resp, err := h.progressSvc.StartSession(userID, &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Session started", resp)
}

// @Summary End a reading session
// @Description Closes the session and adds its elapsed time to the book's reading total.
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param endSessionRequest body dto.EndSessionRequest true "Session to close"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/sessions/end [post]
func (h *ProgressHandler) EndSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.EndSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	resp, err := h.progressSvc.EndSession(userID, &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Session ended", resp)
}

// @Summary Get progress across all books
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.ProgressCollectionResponse}
// @Router /api/v1/progress [get]
func (h *ProgressHandler) GetUserProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.GetUserProgress(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Progress retrieved", resp)
}

// @Summary Get a user's progress across all books
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} shared.Response{data=dto.ProgressCollectionResponse}
// @Router /api/v1/users/{userId}/progress [get]
func (h *ProgressHandler) GetProgressForUser(c *fiber.Ctx) error {
	resp, err := h.progressSvc.GetUserProgress(c.Params("userId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Progress retrieved", resp)
}

// @Summary Get progress for one book
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/books/{bookRef}/progress [get]
func (h *ProgressHandler) GetBookProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.GetBookProgress(userID, c.Params("bookRef"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Progress retrieved", resp)
}

// @Summary Mark a book complete
// @Description Forces progress and checkpoint to 100 and grants every eligible badge, all atomically. Safe to repeat. The reference may be a numeric id or a slug.
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Success 200 {object} shared.Response{data=dto.CompletionResponse}
// @Router /api/v1/books/{bookRef}/complete [post]
func (h *ProgressHandler) CompleteBook(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	role, _ := c.Locals(shared.UserRole).(string)

	resp, err := h.completionSvc.CompleteBook(userID, role, c.Params("bookRef"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Book completed", resp)
}

// @Summary Record a quiz attempt
// @Description The score percentage is computed server-side from the counts.
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quizAttemptRequest body dto.QuizAttemptRequest true "Quiz scores"
// @Success 201 {object} shared.Response{data=dto.QuizAttemptResponse}
// @Router /api/v1/quiz-attempts [post]
func (h *ProgressHandler) RecordQuizAttempt(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.QuizAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	resp, err := h.progressSvc.RecordQuizAttempt(userID, &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Quiz attempt recorded", resp)
}
