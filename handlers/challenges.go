package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"stylar-exchange/services"
)

type createChallengeRequest struct {
	Name        string `json:"name"`
	Theme       string `json:"theme"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type submissionRequest struct {
	StylarID string `json:"stylar_id"`
}

// parseDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates (UTC midnight).
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: expected YYYY-MM-DD or RFC 3339, got %q", field, raw)
	}
	return t, nil
}

func SetupChallengeRoutes(router fiber.Router, challengeService *services.ChallengeService) {
	router.Get("/challenges", func(c *fiber.Ctx) error {
		status, err := services.ParseChallengeStatus(c.Query("status"))
		if err != nil {
			return fail(c, err)
		}
		list, err := challengeService.List(c.UserContext(), status, challengeService.Now())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	router.Get("/challenges/:id", func(c *fiber.Ctx) error {
		detail, err := challengeService.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(detail)
	})

	router.Post("/challenges", func(c *fiber.Ctx) error {
		var req createChallengeRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		start, err := parseDate("start_date", req.StartDate)
		if err != nil {
			return badRequest(c, "invalid start_date", err)
		}
		end, err := parseDate("end_date", req.EndDate)
		if err != nil {
			return badRequest(c, "invalid end_date", err)
		}

		ch, err := challengeService.Create(c.UserContext(), services.CreateChallengeInput{
			Name:        req.Name,
			Theme:       req.Theme,
			Description: req.Description,
			StartDate:   start,
			EndDate:     end,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ch)
	})

	router.Post("/challenges/:id/submissions", func(c *fiber.Ctx) error {
		var req submissionRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		if req.StylarID == "" {
			return badRequest(c, "stylar_id is required", nil)
		}
		ch, err := challengeService.AddSubmission(c.UserContext(), c.Params("id"), req.StylarID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(ch)
	})
}
