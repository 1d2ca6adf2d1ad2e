package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/MoritzHellmann/TaskPeak/app/controllers"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max: 120,
		// Stripe retries webhooks aggressively after deploys; never throttle them
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/v1/billing/stripe/webhook"
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// auth
	v1.Post("/auth/register", controllers.HandleRegister)
	v1.Post("/auth/login", controllers.HandleLogin)
	v1.Post("/auth/logout", controllers.HandleLogout)

	// billing endpoints are unauthenticated: checkout identifies the user by
	// body payload, the webhook authenticates via Stripe signature
	v1.Post("/billing/checkout-session", controllers.HandleCreateCheckoutSession)
	v1.Post("/billing/stripe/webhook", controllers.HandleStripeWebhook)

	authed := v1.Group("", middleware.RequireAPIAuth)

	authed.Get("/me/plan", controllers.HandleGetMyPlan)
	authed.Get("/me/analytics", controllers.HandleGetAnalytics)
	authed.Get("/me/export/tasks", controllers.HandleExportTasks)

	authed.Get("/tasks", controllers.HandleListTasks)
	authed.Post("/tasks", controllers.HandleCreateTask)
	authed.Patch("/tasks/:uuid", controllers.HandleUpdateTask)
	authed.Delete("/tasks/:uuid", controllers.HandleDeleteTask)

	authed.Get("/tasks/:uuid/subtasks", controllers.HandleListSubtasks)
	authed.Post("/tasks/:uuid/subtasks", controllers.HandleCreateSubtask)
	authed.Patch("/tasks/:uuid/subtasks/:id", controllers.HandleUpdateSubtask)
	authed.Delete("/tasks/:uuid/subtasks/:id", controllers.HandleDeleteSubtask)

	authed.Get("/projects", controllers.HandleListProjects)
	authed.Post("/projects", controllers.HandleCreateProject)
	authed.Delete("/projects/:uuid", controllers.HandleDeleteProject)

	authed.Get("/tags", controllers.HandleListTags)
	authed.Post("/tags", controllers.HandleCreateTag)

	admin := authed.Group("/admin", middleware.RequireAdmin)
	admin.Get("/users", controllers.HandleAdminListUsers)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
