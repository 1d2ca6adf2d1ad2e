package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/app/repository"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/entitlements"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/gate"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/usercontext"
)

type createProjectRequest struct {
	Name string `json:"name" validate:"required,min=1,max=150"`
}

// HandleListProjects returns all projects of the current user.
func HandleListProjects(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	projects, err := repository.GetGlobalFactory().GetProjectRepository().ListByUserID(userID)
	if err != nil {
		fiberlog.Errorf("[Project] list failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load projects")
	}

	return c.JSON(fiber.Map{"projects": projects})
}

// HandleCreateProject creates a project after the usage gate admits it.
func HandleCreateProject(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var req createProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := getUsageGate().CheckCreate(userID, entitlements.ResourceProjects); err != nil {
		if errors.Is(err, gate.ErrLimitReached) {
			return limitDeniedResponse(c, err)
		}
		fiberlog.Errorf("[Project] gate check failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not create project")
	}

	project := models.Project{
		UserID: userID,
		Name:   req.Name,
	}
	if err := repository.GetGlobalFactory().GetProjectRepository().Create(&project); err != nil {
		fiberlog.Errorf("[Project] create failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not create project")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": project})
}

// HandleDeleteProject removes a project. Its tasks stay and become unassigned.
func HandleDeleteProject(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	projectUUID := c.Params("uuid")

	if err := repository.GetGlobalFactory().GetProjectRepository().Delete(userID, projectUUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "project not found")
		}
		fiberlog.Errorf("[Project] delete failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not delete project")
	}

	return c.JSON(fiber.Map{"ok": true})
}
