package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stylar-exchange/middleware"
	"stylar-exchange/services"
)

type updateValueRequest struct {
	Value *int64 `json:"value"`
}

func SetupStylarRoutes(router fiber.Router, stylarService *services.StylarService) {
	router.Get("/stylars", func(c *fiber.Ctx) error {
		feed, err := services.ParseFeed(c.Query("feed"))
		if err != nil {
			return fail(c, err)
		}
		stylars, err := stylarService.List(c.UserContext(), feed)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(stylars)
	})

	router.Get("/stylars/:id", func(c *fiber.Ctx) error {
		st, err := stylarService.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(st)
	})

	router.Post("/stylars", func(c *fiber.Ctx) error {
		var in services.CreateStylarInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		st, err := stylarService.Create(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(st)
	})

	router.Patch("/stylars/:id/value", func(c *fiber.Ctx) error {
		var req updateValueRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if req.Value == nil {
			return badRequest(c, "value is required", nil)
		}
		st, err := stylarService.UpdateValue(c.UserContext(), c.Params("id"), *req.Value)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(st)
	})

	router.Delete("/stylars/:id", func(c *fiber.Ctx) error {
		if err := stylarService.Delete(c.UserContext(), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// 🖼️ multipart upload, field "image"
	router.Post("/stylars/:id/images", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("image")
		if err != nil {
			return badRequest(c, "image file is required", err)
		}
		f, err := fh.Open()
		if err != nil {
			return fail(c, err)
		}
		defer f.Close()

		st, err := stylarService.AttachImage(c.UserContext(), c.Params("id"), fh.Filename, fh.Header.Get(fiber.HeaderContentType), f)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(st)
	})
}
