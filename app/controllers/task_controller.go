package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/app/repository"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/entitlements"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/gate"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/usercontext"
)

const dueDateLayout = "2006-01-02"

var usageGate *gate.Gate

// InitializeUsageGate injects the gate used before task and project creation.
func InitializeUsageGate(g *gate.Gate) {
	usageGate = g
}

func getUsageGate() *gate.Gate {
	if usageGate == nil {
		repos := repository.GetGlobalFactory().GetRepositories()
		usageGate = gate.New(repos.Profile, repos.Task, repos.Project)
	}
	return usageGate
}

type createTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description string  `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
	ProjectUUID *string `json:"project_uuid"`
}

type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
	Pinned      *bool   `json:"pinned"`
	Archived    *bool   `json:"archived"`
	ProjectUUID *string `json:"project_uuid"`
}

// HandleListTasks returns the user's non-archived tasks, filtered and sorted
// by query parameters.
func HandleListTasks(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	filter := repository.TaskFilter{
		Status:        c.Query("status"),
		Priority:      c.Query("priority"),
		Query:         c.Query("q"),
		SortByCreated: c.Query("sort") == "created",
	}

	switch project := c.Query("project"); project {
	case "", "all":
	case "none":
		filter.OnlyUnassigned = true
	default:
		p, err := repository.GetGlobalFactory().GetProjectRepository().GetByUUID(userID, project)
		if err != nil {
			return jsonError(c, fiber.StatusNotFound, "not_found", "project not found")
		}
		filter.ProjectID = &p.ID
	}

	tasks, err := repository.GetGlobalFactory().GetTaskRepository().List(userID, filter)
	if err != nil {
		fiberlog.Errorf("[Task] list failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load tasks")
	}

	return c.JSON(fiber.Map{"tasks": tasks})
}

// HandleCreateTask creates a task after the usage gate admits it.
func HandleCreateTask(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := getUsageGate().CheckCreate(userID, entitlements.ResourceTasks); err != nil {
		if errors.Is(err, gate.ErrLimitReached) {
			return limitDeniedResponse(c, err)
		}
		fiberlog.Errorf("[Task] gate check failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not create task")
	}

	task := models.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}

	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, *req.DueDate)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "validation_failed", "due_date must be YYYY-MM-DD")
		}
		task.DueDate = &due
	}

	if req.ProjectUUID != nil && *req.ProjectUUID != "" {
		p, err := repository.GetGlobalFactory().GetProjectRepository().GetByUUID(userID, *req.ProjectUUID)
		if err != nil {
			return jsonError(c, fiber.StatusNotFound, "not_found", "project not found")
		}
		task.ProjectID = &p.ID
	}

	if err := repository.GetGlobalFactory().GetTaskRepository().Create(&task); err != nil {
		fiberlog.Errorf("[Task] create failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not create task")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"task": task})
}

// HandleUpdateTask applies a partial update to a task owned by the user.
func HandleUpdateTask(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	taskUUID := c.Params("uuid")

	taskRepo := repository.GetGlobalFactory().GetTaskRepository()
	task, err := taskRepo.GetByUUID(userID, taskUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "task not found")
		}
		fiberlog.Errorf("[Task] lookup failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not update task")
	}

	var req updateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Pinned != nil {
		task.Pinned = *req.Pinned
	}
	if req.Archived != nil {
		task.Archived = *req.Archived
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			task.DueDate = nil
		} else {
			due, err := time.Parse(dueDateLayout, *req.DueDate)
			if err != nil {
				return jsonError(c, fiber.StatusBadRequest, "validation_failed", "due_date must be YYYY-MM-DD")
			}
			task.DueDate = &due
		}
	}
	if req.ProjectUUID != nil {
		if *req.ProjectUUID == "" {
			task.ProjectID = nil
		} else {
			p, err := repository.GetGlobalFactory().GetProjectRepository().GetByUUID(userID, *req.ProjectUUID)
			if err != nil {
				return jsonError(c, fiber.StatusNotFound, "not_found", "project not found")
			}
			task.ProjectID = &p.ID
		}
	}

	if err := taskRepo.Update(task); err != nil {
		fiberlog.Errorf("[Task] update failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not update task")
	}

	return c.JSON(fiber.Map{"task": task})
}

// HandleDeleteTask removes a task and its subtasks.
func HandleDeleteTask(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	taskUUID := c.Params("uuid")

	if err := repository.GetGlobalFactory().GetTaskRepository().Delete(userID, taskUUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "task not found")
		}
		fiberlog.Errorf("[Task] delete failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not delete task")
	}

	return c.JSON(fiber.Map{"ok": true})
}
