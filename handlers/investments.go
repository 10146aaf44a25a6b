package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stylar-exchange/models"
	"stylar-exchange/services"
)

func SetupInvestmentRoutes(router fiber.Router, investmentService *services.InvestmentService) {
	router.Get("/investments", func(c *fiber.Ctx) error {
		userID, stylarID := c.Query("user_id"), c.Query("stylar_id")

		var (
			invs []models.Investment
			err  error
		)
		switch {
		case userID != "" && stylarID != "":
			invs, err = investmentService.ListByUser(c.UserContext(), userID)
			invs = filterInvestments(invs, models.InvestmentFilter{StylarID: stylarID})
		case userID != "":
			invs, err = investmentService.ListByUser(c.UserContext(), userID)
		case stylarID != "":
			invs, err = investmentService.ListByStylar(c.UserContext(), stylarID)
		default:
			invs, err = investmentService.List(c.UserContext())
		}
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(invs)
	})
}

func filterInvestments(invs []models.Investment, f models.InvestmentFilter) []models.Investment {
	out := make([]models.Investment, 0, len(invs))
	for _, inv := range invs {
		if f.Matches(inv) {
			out = append(out, inv)
		}
	}
	return out
}
