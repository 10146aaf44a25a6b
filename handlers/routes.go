package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"stylar-exchange/metrics"
	"stylar-exchange/middleware"
	"stylar-exchange/services"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Stylars     *services.StylarService
	Users       *services.UserService
	Investments *services.InvestmentService
	Challenges  *services.ChallengeService
	Battles     *services.BattleService
	Portfolios  *services.PortfolioService
	Badges      *services.BadgeService
}

// SetupHealthRoutes registers liveness and the prometheus scrape endpoint.
func SetupHealthRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

// SetupRoutes registers every domain route behind the user context.
func SetupRoutes(app *fiber.App, svc Services, defaultUserID string) {
	SetupHealthRoutes(app)

	api := app.Group("/", middleware.UserContextMiddleware(defaultUserID))
	SetupStylarRoutes(api, svc.Stylars)
	SetupUserRoutes(api, svc.Users, svc.Portfolios)
	SetupInvestmentRoutes(api, svc.Investments)
	SetupChallengeRoutes(api, svc.Challenges)
	SetupBattleRoutes(api, svc.Battles)
	SetupBadgeRoutes(api, svc.Badges)
}
