package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/shared"
)

type BookHandler struct {
	bookSvc BookServiceInterface
}

func NewBookHandler(bookSvc BookServiceInterface) *BookHandler {
	return &BookHandler{bookSvc: bookSvc}
}

// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param createBookRequest body dto.CreateBookRequest true "Book details"
// @Success 201 {object} shared.Response{data=dto.BookResponse}
// @Router /api/v1/books [post]
func (h *BookHandler) CreateBook(c *fiber.Ctx) error {
	var req dto.CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.bookSvc.CreateBook(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Book created", resp)
}

// @Summary List books
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param type query string false "Filter by type"
// @Param subject query string false "Filter by subject"
// @Param grade query string false "Filter by grade"
// @Success 200 {object} shared.Response{data=dto.BookCollectionResponse}
// @Router /api/v1/books [get]
func (h *BookHandler) ListBooks(c *fiber.Ctx) error {
	resp, err := h.bookSvc.ListBooks(c.Query("type"), c.Query("subject"), c.Query("grade"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Books retrieved", resp)
}

// @Summary Get a book by id or slug
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Success 200 {object} shared.Response{data=dto.BookResponse}
// @Router /api/v1/books/{bookRef} [get]
func (h *BookHandler) GetBook(c *fiber.Ctx) error {
	resp, err := h.bookSvc.GetBook(c.Params("bookRef"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Book retrieved", resp)
}

// @Summary Update a book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Param updateBookRequest body dto.UpdateBookRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.BookResponse}
// @Router /api/v1/books/{bookRef} [put]
func (h *BookHandler) UpdateBook(c *fiber.Ctx) error {
	var req dto.UpdateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.bookSvc.UpdateBook(c.Params("bookRef"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Book updated", resp)
}

// @Summary Add a page to a book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Param createPageRequest body dto.CreatePageRequest true "Page details"
// @Success 201 {object} shared.Response{data=dto.PageResponse}
// @Router /api/v1/books/{bookRef}/pages [post]
func (h *BookHandler) CreatePage(c *fiber.Ctx) error {
	var req dto.CreatePageRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.bookSvc.CreatePage(c.Params("bookRef"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Page created", resp)
}

// @Summary List a book's pages
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Success 200 {object} shared.Response{data=[]dto.PageResponse}
// @Router /api/v1/books/{bookRef}/pages [get]
func (h *BookHandler) GetBookPages(c *fiber.Ctx) error {
	resp, err := h.bookSvc.GetBookPages(c.Params("bookRef"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Pages retrieved", resp)
}

// @Summary Add a question to a page
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pageId path int true "Page ID"
// @Param createQuestionRequest body dto.CreateQuestionRequest true "Question details"
// @Success 201 {object} shared.Response{data=dto.QuestionResponse}
// @Router /api/v1/pages/{pageId}/questions [post]
func (h *BookHandler) CreateQuestion(c *fiber.Ctx) error {
	pageID, err := strconv.ParseUint(c.Params("pageId"), 10, 32)
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid page id")
	}

	var req dto.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.bookSvc.CreateQuestion(uint(pageID), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Question created", resp)
}

// @Summary List a page's questions
// @Description Correct answers are never included in the response.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param pageId path int true "Page ID"
// @Success 200 {object} shared.Response{data=[]dto.QuestionResponse}
// @Router /api/v1/pages/{pageId}/questions [get]
func (h *BookHandler) GetPageQuestions(c *fiber.Ctx) error {
	pageID, err := strconv.ParseUint(c.Params("pageId"), 10, 32)
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid page id")
	}

	resp, err := h.bookSvc.GetPageQuestions(uint(pageID))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Questions retrieved", resp)
}
