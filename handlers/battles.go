package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stylar-exchange/middleware"
	"stylar-exchange/services"
)

type voteRequest struct {
	StylarID string `json:"stylar_id"`
}

func SetupBattleRoutes(router fiber.Router, battleService *services.BattleService) {
	router.Get("/battles", func(c *fiber.Ctx) error {
		battles, err := battleService.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(battles)
	})

	router.Get("/battles/:id", func(c *fiber.Ctx) error {
		b, err := battleService.Get(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(b)
	})

	router.Post("/battles", func(c *fiber.Ctx) error {
		var in services.CreateBattleInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		b, err := battleService.Create(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	})

	// 🗳️ one vote per user per battle
	router.Post("/battles/:id/votes", func(c *fiber.Ctx) error {
		var req voteRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if req.StylarID == "" {
			return badRequest(c, "stylar_id is required", nil)
		}
		res, err := battleService.Vote(c.UserContext(), c.Params("id"), req.StylarID, middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	})
}
