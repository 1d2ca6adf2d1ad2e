package controllers

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/app/repository"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/entitlements"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/session"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/usercontext"
)

// HandleGetMyPlan returns the current plan together with usage against the
// free tier caps. The plan is read from the profile row, not the session
// cache, so clients polling after checkout see the upgrade as soon as the
// webhook lands.
func HandleGetMyPlan(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	repos := repository.GetGlobalFactory().GetRepositories()

	profile, err := repos.Profile.GetOrCreate(userID)
	if err != nil {
		fiberlog.Errorf("[User] plan lookup failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load plan")
	}
	plan := entitlements.NormalizePlan(profile.Plan)

	// refresh the session cache used by the request middleware
	_ = session.SetSessionValue(c, usercontext.KeyUserPlan, string(plan))

	taskCount, err := repos.Task.CountActiveByUserID(userID)
	if err != nil {
		fiberlog.Errorf("[User] task count failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load plan")
	}
	projectCount, err := repos.Project.CountByUserID(userID)
	if err != nil {
		fiberlog.Errorf("[User] project count failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load plan")
	}

	limits := fiber.Map{"tasks": entitlements.FreeTaskLimit, "projects": entitlements.FreeProjectLimit}
	if plan == entitlements.PlanPremium {
		limits = fiber.Map{"tasks": nil, "projects": nil}
	}

	return c.JSON(fiber.Map{
		"plan":   plan,
		"limits": limits,
		"usage": fiber.Map{
			"tasks":    taskCount,
			"projects": projectCount,
		},
	})
}

// HandleGetAnalytics returns task statistics. Premium only. The plan is
// resolved live from the profile row: webhooks downgrade users without a way
// to touch their session, so the session-cached plan is display-only.
func HandleGetAnalytics(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	plan, err := getBillingService().EffectivePlan(c.Context(), userCtx.UserID)
	if err != nil {
		fiberlog.Errorf("[User] plan lookup failed for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load analytics")
	}
	if plan != entitlements.PlanPremium {
		return jsonError(c, fiber.StatusForbidden, "premium_required", "analytics requires a premium plan")
	}

	tasks, err := repository.GetGlobalFactory().GetTaskRepository().ListAllActive(userCtx.UserID)
	if err != nil {
		fiberlog.Errorf("[User] analytics load failed for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load analytics")
	}

	byStatus := map[string]int{}
	byPriority := map[string]int{}
	overdue := 0
	now := time.Now()
	for i := range tasks {
		byStatus[tasks[i].Status]++
		byPriority[tasks[i].Priority]++
		if tasks[i].IsOverdue(now) {
			overdue++
		}
	}

	completionRate := 0.0
	if len(tasks) > 0 {
		completionRate = float64(byStatus[models.TaskStatusDone]) / float64(len(tasks))
	}

	return c.JSON(fiber.Map{
		"total":           len(tasks),
		"by_status":       byStatus,
		"by_priority":     byPriority,
		"overdue":         overdue,
		"completion_rate": completionRate,
	})
}

// HandleExportTasks streams the user's tasks as CSV. Gated feature, decided
// on the live plan record like the usage gate.
func HandleExportTasks(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	plan, err := getBillingService().EffectivePlan(c.Context(), userCtx.UserID)
	if err != nil {
		fiberlog.Errorf("[User] plan lookup failed for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not export tasks")
	}
	if !entitlements.CanUseFeature(plan, entitlements.FeatureExport) {
		return jsonError(c, fiber.StatusForbidden, "premium_required", "export requires a premium plan")
	}

	tasks, err := repository.GetGlobalFactory().GetTaskRepository().ListAllActive(userCtx.UserID)
	if err != nil {
		fiberlog.Errorf("[User] export load failed for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not export tasks")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"uuid", "title", "status", "priority", "due_date", "pinned", "created_at"})
	for i := range tasks {
		due := ""
		if tasks[i].DueDate != nil {
			due = tasks[i].DueDate.Format(dueDateLayout)
		}
		_ = w.Write([]string{
			tasks[i].UUID,
			tasks[i].Title,
			tasks[i].Status,
			tasks[i].Priority,
			due,
			strconv.FormatBool(tasks[i].Pinned),
			tasks[i].CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not export tasks")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tasks.csv"`)
	return c.Send(buf.Bytes())
}
