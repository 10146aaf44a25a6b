package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stylar-exchange/services"
)

func SetupBadgeRoutes(router fiber.Router, badgeService *services.BadgeService) {
	// 🎖️ static catalogue, earned state lives on /users/me/profile
	router.Get("/badges", func(c *fiber.Ctx) error {
		return c.JSON(badgeService.Catalogue())
	})
}
