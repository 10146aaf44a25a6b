package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stylar-exchange/middleware"
	"stylar-exchange/services"
)

type investRequest struct {
	StylarID string `json:"stylar_id"`
	Amount   int64  `json:"amount"`
}

type adjustCoinsRequest struct {
	Delta int64 `json:"delta"`
}

func SetupUserRoutes(router fiber.Router, userService *services.UserService, portfolioService *services.PortfolioService) {
	// /users/me/* is registered before /users/:id so "me" never reaches the id route
	router.Get("/users/me", func(c *fiber.Ctx) error {
		u, err := userService.Get(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	})

	router.Post("/users/me/investments", func(c *fiber.Ctx) error {
		var req investRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if req.StylarID == "" {
			return badRequest(c, "stylar_id is required", nil)
		}
		res, err := userService.Invest(c.UserContext(), middleware.UserID(c), req.StylarID, req.Amount)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	router.Post("/users/me/coins", func(c *fiber.Ctx) error {
		var req adjustCoinsRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		u, err := userService.AdjustCoins(c.UserContext(), middleware.UserID(c), req.Delta)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	})

	router.Get("/users/me/portfolio", func(c *fiber.Ctx) error {
		p, err := portfolioService.Portfolio(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	})

	router.Get("/users/me/profile", func(c *fiber.Ctx) error {
		p, err := portfolioService.Profile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	})

	router.Get("/users/:id", func(c *fiber.Ctx) error {
		u, err := userService.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	})
}
