package controllers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/saasbase/internal/pkg/viewmodel"
	"github.com/ManuelReschke/saasbase/views"
)

// PlanCatalog supplies the landing page cards.
type PlanCatalog interface {
	Cards(ctx context.Context) ([]viewmodel.PlanCard, error)
}

type LandingController struct {
	catalog PlanCatalog
}

func NewLandingController(catalog PlanCatalog) *LandingController {
	return &LandingController{catalog: catalog}
}

// HandleIndex renders the pricing page. A catalog outage renders the page
// without plans.
func (lc *LandingController) HandleIndex(c *fiber.Ctx) error {
	cards, err := lc.catalog.Cards(c.UserContext())
	if err != nil {
		log.Printf("[Landing] Catalog unavailable: %v", err)
	}
	return render(c, "Pricing", views.Landing(cards, err != nil))
}
