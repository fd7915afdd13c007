package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/shared"
)

type BadgeHandler struct {
	badgeSvc BadgeServiceInterface
	bookSvc  BookServiceInterface
}

func NewBadgeHandler(badgeSvc BadgeServiceInterface, bookSvc BookServiceInterface) *BadgeHandler {
	return &BadgeHandler{
		badgeSvc: badgeSvc,
		bookSvc:  bookSvc,
	}
}

// @Summary Create a badge
// @Tags badges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param createBadgeRequest body dto.CreateBadgeRequest true "Badge details"
// @Success 201 {object} shared.Response{data=dto.BadgeResponse}
// @Router /api/v1/badges [post]
func (h *BadgeHandler) CreateBadge(c *fiber.Ctx) error {
	var req dto.CreateBadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.badgeSvc.CreateBadge(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Badge created", resp)
}

// @Summary List badges
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active badges"
// @Success 200 {object} shared.Response{data=dto.BadgeCollectionResponse}
// @Router /api/v1/badges [get]
func (h *BadgeHandler) ListBadges(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)

	resp, err := h.badgeSvc.ListBadges(activeOnly)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Badges retrieved", resp)
}

// @Summary Get a badge
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param badgeId path int true "Badge ID"
// @Success 200 {object} shared.Response{data=dto.BadgeResponse}
// @Router /api/v1/badges/{badgeId} [get]
func (h *BadgeHandler) GetBadge(c *fiber.Ctx) error {
	badgeID, err := strconv.ParseUint(c.Params("badgeId"), 10, 32)
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid badge id")
	}

	resp, err := h.badgeSvc.GetBadge(uint(badgeID))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Badge retrieved", resp)
}

// @Summary Map a badge to a book
// @Tags badges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Param mapBadgeRequest body dto.MapBadgeRequest true "Mapping details"
// @Success 201 {object} shared.Response{data=dto.BookBadgeResponse}
// @Router /api/v1/books/{bookRef}/badges [post]
func (h *BadgeHandler) MapBadgeToBook(c *fiber.Ctx) error {
	book, err := h.bookSvc.GetBook(c.Params("bookRef"))
	if err != nil {
		return err
	}

	var req dto.MapBadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	resp, err := h.badgeSvc.MapBadgeToBook(book.ID, &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Badge mapped", resp)
}

// @Summary Remove a badge mapping from a book
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Param badgeId path int true "Badge ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/books/{bookRef}/badges/{badgeId} [delete]
func (h *BadgeHandler) UnmapBadgeFromBook(c *fiber.Ctx) error {
	book, err := h.bookSvc.GetBook(c.Params("bookRef"))
	if err != nil {
		return err
	}

	badgeID, err := strconv.ParseUint(c.Params("badgeId"), 10, 32)
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid badge id")
	}

	if err := h.badgeSvc.UnmapBadgeFromBook(book.ID, uint(badgeID)); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Badge unmapped", nil)
}

// @Summary List a book's badge mappings
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Success 200 {object} shared.Response{data=[]dto.BookBadgeResponse}
// @Router /api/v1/books/{bookRef}/badges [get]
func (h *BadgeHandler) GetBookBadges(c *fiber.Ctx) error {
	book, err := h.bookSvc.GetBook(c.Params("bookRef"))
	if err != nil {
		return err
	}

	resp, err := h.badgeSvc.GetBookBadges(book.ID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Book badges retrieved", resp)
}

// @Summary Manually award a badge to a user
// @Description Awarding a badge the user already holds reports already_had instead of failing.
// @Tags badges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param awardBadgeRequest body dto.AwardBadgeRequest true "Badge to award"
// @Success 200 {object} shared.Response{data=dto.AwardBadgeResponse}
// @Router /api/v1/users/{userId}/badges [post]
func (h *BadgeHandler) AwardBadge(c *fiber.Ctx) error {
	var req dto.AwardBadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	resp, err := h.badgeSvc.AwardBadge(c.Params("userId"), &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Badge award processed", resp)
}

// @Summary List the current user's earned badges
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.EarnedBadgeCollectionResponse}
// @Router /api/v1/me/badges [get]
func (h *BadgeHandler) GetMyBadges(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.badgeSvc.GetUserBadges(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Badges retrieved", resp)
}

// @Summary List a user's earned badges
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} shared.Response{data=dto.EarnedBadgeCollectionResponse}
// @Router /api/v1/users/{userId}/badges [get]
func (h *BadgeHandler) GetUserBadges(c *fiber.Ctx) error {
	resp, err := h.badgeSvc.GetUserBadges(c.Params("userId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Badges retrieved", resp)
}
