package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MoritzHellmann/TaskPeak/app/controllers"
	"github.com/MoritzHellmann/TaskPeak/app/repository"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/billing"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/database"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/gate"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/middleware"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize controllers with their collaborators
	if factory := repository.GetGlobalFactory(); factory != nil {
		repos := factory.GetRepositories()
		controllers.InitializeUsageGate(gate.New(repos.Profile, repos.Task, repos.Project))
	}
	if db := database.GetDB(); db != nil {
		controllers.InitializeBillingController(billing.NewServiceFromDB(db))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
