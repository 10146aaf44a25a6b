package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"stylar-exchange/services"
	"stylar-exchange/storage"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var ve *services.ValidationError
	switch {
	case storage.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.As(err, &ve), errors.Is(err, services.ErrInvalidAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientCoins),
		errors.Is(err, services.ErrAlreadyVoted),
		errors.Is(err, services.ErrChallengeClosed),
		errors.Is(err, storage.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err as {"error": ...}. Internal errors are logged and hidden.
func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.Locals("requestid"),
		}).WithError(err).Error("❌ request failed")
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string, err error) error {
	body := fiber.Map{"error": msg}
	if err != nil {
		body["cause"] = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}
