package controllers

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/app/repository"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/usercontext"
)

type createTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

// HandleListTags returns the user's tags.
func HandleListTags(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	tags, err := repository.GetGlobalFactory().GetTagRepository().ListByUserID(userID)
	if err != nil {
		fiberlog.Errorf("[Tag] list failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load tags")
	}

	return c.JSON(fiber.Map{"tags": tags})
}

// HandleCreateTag creates a tag. Tag names are unique per user.
func HandleCreateTag(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var req createTagRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	tag := models.Tag{UserID: userID, Name: req.Name}
	if err := repository.GetGlobalFactory().GetTagRepository().Create(&tag); err != nil {
		return jsonError(c, fiber.StatusConflict, "tag_exists", "a tag with this name already exists")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"tag": tag})
}
