package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ManuelReschke/saasbase/internal/pkg/billing"
	"github.com/ManuelReschke/saasbase/internal/pkg/viewmodel"
)

// CustomPriceLabel is shown for products without a default price.
const CustomPriceLabel = "Custom"

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
}

// FormatPrice renders a minor-unit amount with two fraction digits.
func FormatPrice(p *billing.Price) string {
	if p == nil {
		return CustomPriceLabel
	}
	amount := p.UnitAmount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	value := fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)

	cur := strings.ToLower(strings.TrimSpace(p.Currency))
	if sym, ok := currencySymbols[cur]; ok {
		return sym + value
	}
	if cur == "" {
		return value
	}
	return strings.ToUpper(cur) + " " + value
}

// ParseFeatures decodes the JSON array stored in metadata["features"].
// Missing or malformed values yield no features.
func ParseFeatures(metadata map[string]string) []string {
	raw := strings.TrimSpace(metadata["features"])
	if raw == "" {
		return nil
	}
	var features []string
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return nil
	}
	return features
}

// Cards maps catalog products to landing page cards, keeping provider order.
func Cards(products []billing.Product) []viewmodel.PlanCard {
	cards := make([]viewmodel.PlanCard, 0, len(products))
	for _, p := range products {
		card := viewmodel.PlanCard{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Features:    ParseFeatures(p.Metadata),
			PriceLabel:  FormatPrice(p.Price),
		}
		if p.Price != nil {
			card.Interval = p.Price.Interval
		}
		cards = append(cards, card)
	}
	return cards
}
