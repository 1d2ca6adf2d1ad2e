package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MoritzHellmann/TaskPeak/internal/pkg/billing"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/database"
)

var billingService *billing.Service

// InitializeBillingController injects the billing service. Tests use this to
// swap in fakes; in production main wires it once at startup.
func InitializeBillingController(svc *billing.Service) {
	billingService = svc
}

func getBillingService() *billing.Service {
	if billingService == nil {
		billingService = billing.NewServiceFromDB(database.GetDB())
	}
	return billingService
}

type checkoutSessionRequest struct {
	UserID uint `json:"user_id"`
}

// HandleCreateCheckoutSession starts a Stripe Checkout session for the given
// user and returns the hosted payment page URL.
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	var req checkoutSessionRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing user_id"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 20*time.Second)
	defer cancel()

	url, err := getBillingService().StartCheckout(ctx, req.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"url": url})
}

// HandleStripeWebhook verifies and applies a Stripe event. The signature is
// checked against the raw request body before anything is parsed.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	sig := c.Get("Stripe-Signature")

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	if err := getBillingService().HandleWebhookEvent(ctx, rawBody, sig); err != nil {
		if errors.Is(err, billing.ErrSignatureVerification) {
			return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: " + err.Error())
		}
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	return c.JSON(fiber.Map{"received": true})
}
