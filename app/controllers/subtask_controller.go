package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/app/repository"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/usercontext"
)

type createSubtaskRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
}

type updateSubtaskRequest struct {
	Done bool `json:"done"`
}

// parentTask resolves the task route param and enforces ownership.
func parentTask(c *fiber.Ctx) (*models.Task, error) {
	userID := usercontext.GetUserID(c)
	return repository.GetGlobalFactory().GetTaskRepository().GetByUUID(userID, c.Params("uuid"))
}

// HandleListSubtasks returns the subtasks of a task owned by the user.
func HandleListSubtasks(c *fiber.Ctx) error {
	task, err := parentTask(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "task not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load subtasks")
	}

	subtasks, err := repository.GetGlobalFactory().GetSubtaskRepository().ListByTaskID(task.ID)
	if err != nil {
		fiberlog.Errorf("[Subtask] list failed for task %d: %v", task.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load subtasks")
	}

	return c.JSON(fiber.Map{"subtasks": subtasks})
}

// HandleCreateSubtask adds a subtask to a task owned by the user. Subtasks
// do not count against the task limit.
func HandleCreateSubtask(c *fiber.Ctx) error {
	task, err := parentTask(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "task not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not create subtask")
	}

	var req createSubtaskRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	subtask := models.Subtask{
		TaskID: task.ID,
		Title:  req.Title,
	}
	if err := repository.GetGlobalFactory().GetSubtaskRepository().Create(&subtask); err != nil {
		fiberlog.Errorf("[Subtask] create failed for task %d: %v", task.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not create subtask")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subtask": subtask})
}

// HandleUpdateSubtask toggles the done flag of a subtask.
func HandleUpdateSubtask(c *fiber.Ctx) error {
	task, err := parentTask(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "task not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not update subtask")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid subtask id")
	}

	var req updateSubtaskRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}

	if err := repository.GetGlobalFactory().GetSubtaskRepository().SetDone(task.ID, uint(id), req.Done); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "subtask not found")
		}
		fiberlog.Errorf("[Subtask] update failed for task %d: %v", task.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not update subtask")
	}

	return c.JSON(fiber.Map{"ok": true})
}

// HandleDeleteSubtask removes a subtask.
func HandleDeleteSubtask(c *fiber.Ctx) error {
	task, err := parentTask(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "task not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not delete subtask")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid subtask id")
	}

	if err := repository.GetGlobalFactory().GetSubtaskRepository().Delete(task.ID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "subtask not found")
		}
		fiberlog.Errorf("[Subtask] delete failed for task %d: %v", task.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not delete subtask")
	}

	return c.JSON(fiber.Map{"ok": true})
}
