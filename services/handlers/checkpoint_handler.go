package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/readleaf/readleaf_api/dto"
	"github.com/readleaf/readleaf_api/shared"
)

type CheckpointHandler struct {
	checkpointSvc CheckpointServiceInterface
}

func NewCheckpointHandler(checkpointSvc CheckpointServiceInterface) *CheckpointHandler {
	return &CheckpointHandler{checkpointSvc: checkpointSvc}
}

// @Summary Get the saved checkpoint for a book
// @Description Returns checkpoint:null when the user has never saved one.
// @Tags checkpoints
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Success 200 {object} shared.Response{data=dto.CheckpointResult}
// @Router /api/v1/books/{bookRef}/checkpoint [get]
func (h *CheckpointHandler) GetCheckpoint(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.checkpointSvc.GetCheckpoint(userID, c.Params("bookRef"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Checkpoint retrieved", resp)
}

// @Summary Save a checkpoint
// @Description Partial merge: only fields present in the body overwrite stored values. Both camelCase and snake_case field spellings are accepted.
// @Tags checkpoints
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Param saveCheckpointRequest body dto.SaveCheckpointRequest true "Checkpoint fields"
// @Success 200 {object} shared.Response{data=dto.CheckpointResult}
// @Router /api/v1/books/{bookRef}/checkpoint [put]
func (h *CheckpointHandler) SaveCheckpoint(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SaveCheckpointRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	resp, err := h.checkpointSvc.SaveCheckpoint(userID, c.Params("bookRef"), &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Checkpoint saved", resp)
}

// @Summary Reset a checkpoint
// @Description Deletes the stored checkpoint. Resetting a missing checkpoint succeeds.
// @Tags checkpoints
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookRef path string true "Book ID or slug"
// @Param checkpointActionRequest body dto.CheckpointActionRequest true "Action, currently only reset"
// @Success 200 {object} shared.Response
// @Router /api/v1/books/{bookRef}/checkpoint [post]
func (h *CheckpointHandler) CheckpointAction(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CheckpointActionRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.checkpointSvc.ResetCheckpoint(userID, c.Params("bookRef")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Checkpoint reset", nil)
}
