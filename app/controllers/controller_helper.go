package controllers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/MoritzHellmann/TaskPeak/internal/pkg/gate"
)

var validate = validator.New()

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// limitDeniedResponse maps a usage gate denial to the distinguishable
// limit_reached response that the UI turns into an upgrade prompt.
func limitDeniedResponse(c *fiber.Ctx, err error) error {
	reason := strings.TrimPrefix(err.Error(), gate.ErrLimitReached.Error()+": ")
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   "limit_reached",
		"message": reason,
	})
}
