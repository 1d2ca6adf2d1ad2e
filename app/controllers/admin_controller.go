package controllers

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/MoritzHellmann/TaskPeak/app/repository"
)

// HandleAdminListUsers returns all accounts with their plan records.
// Admin only; the route is guarded by middleware.RequireAdmin.
func HandleAdminListUsers(c *fiber.Ctx) error {
	repos := repository.GetGlobalFactory().GetRepositories()

	users, err := repos.User.ListAll()
	if err != nil {
		fiberlog.Errorf("[Admin] user list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load users")
	}

	type userWithPlan struct {
		ID     uint   `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Role   string `json:"role"`
		Status string `json:"status"`
		Plan   string `json:"plan"`
	}

	out := make([]userWithPlan, 0, len(users))
	for i := range users {
		plan, err := repos.Profile.PlanByUserID(users[i].ID)
		if err != nil {
			fiberlog.Warnf("[Admin] plan lookup failed for user %d: %v", users[i].ID, err)
		}
		out = append(out, userWithPlan{
			ID:     users[i].ID,
			Name:   users[i].Name,
			Email:  users[i].Email,
			Role:   users[i].Role,
			Status: users[i].Status,
			Plan:   string(plan),
		})
	}

	return c.JSON(fiber.Map{"users": out, "total": len(out)})
}
