package service

import (
	"strings"
	"testing"
	"time"

	"tripdesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func pricedSuggestion(kind models.SuggestionKind, title string, price float64, loc models.Location) *models.Suggestion {
	s := &models.Suggestion{
		ID:        uuid.New(),
		Kind:      kind,
		Title:     title,
		Location:  loc,
		CreatedAt: time.Now(),
	}
	if price != 0 {
		s.Price = &price
	}
	return s
}

func TestRenderSummaryCostRollup(t *testing.T) {
	it := &Itinerary{
		Outbound: pricedSuggestion(models.KindFlight, "KLM out", 100, models.Location{"departure": "2026-10-01"}),
		Inbound:  pricedSuggestion(models.KindFlight, "KLM back", 150, models.Location{"departure": "2026-10-06"}),
		Stays: []*models.Suggestion{
			pricedSuggestion(models.KindHotel, "Hotel Alpha", 200, models.Location{"address": "1 Rue A"}),
			pricedSuggestion(models.KindHotel, "Hotel Beta", 300, models.Location{"address": "2 Rue B"}),
		},
	}

	out := RenderSummary(it)

	// Only the first stay counts toward the total: later stays are
	// alternatives, not consecutive bookings.
	assert.Contains(t, out, "**$450.00**")
	assert.NotContains(t, out, "$750.00")
	assert.Contains(t, out, "Hotel Alpha")
	assert.Contains(t, out, "Hotel Beta")
}

func TestRenderSummaryIgnoresNonPositivePrices(t *testing.T) {
	negative := -50.0
	it := &Itinerary{
		Outbound: &models.Suggestion{
			Kind:     models.KindFlight,
			Title:    "Broken fare",
			Price:    &negative,
			Location: models.Location{},
		},
		Stays: []*models.Suggestion{
			pricedSuggestion(models.KindHotel, "Free stay", 0, models.Location{}),
		},
	}

	out := RenderSummary(it)
	assert.Contains(t, out, "**$0.00**")
}

func TestRenderSummaryEmptySlots(t *testing.T) {
	out := RenderSummary(&Itinerary{})

	assert.Contains(t, out, "**Outbound Flight:** Not yet booked.")
	assert.Contains(t, out, "**Inbound Flight:** Not yet booked.")
	assert.Contains(t, out, "No accommodation selected yet.")
	assert.Contains(t, out, "No local essential shops pre-loaded.")
	assert.Contains(t, out, "No local leisure activities pre-loaded.")
	assert.Contains(t, out, "**$0.00**")
}

func TestRenderSummaryCapsShopAndLeisureLists(t *testing.T) {
	it := &Itinerary{}
	for i := 0; i < 5; i++ {
		it.Shops = append(it.Shops, pricedSuggestion(models.KindShop, "Shop "+string(rune('A'+i)), 0, models.Location{}))
	}
	for i := 0; i < 7; i++ {
		it.Leisure = append(it.Leisure, pricedSuggestion(models.KindLeisure, "Fun "+string(rune('A'+i)), 0, models.Location{"city": "Paris"}))
	}

	out := RenderSummary(it)

	assert.Contains(t, out, "Found 5 nearby essential shops. Top 3 are:")
	assert.Contains(t, out, "Found 7 leisure activities. Top 5 suggestions:")
	assert.Contains(t, out, "**Shop C**")
	assert.NotContains(t, out, "**Shop D**")
	assert.Contains(t, out, "**Fun E**")
	assert.NotContains(t, out, "**Fun F**")
}

func TestRenderSummaryMissingFieldsBecomeNA(t *testing.T) {
	it := &Itinerary{
		Outbound: pricedSuggestion(models.KindFlight, "No-date flight", 80, models.Location{}),
		Stays: []*models.Suggestion{
			pricedSuggestion(models.KindHotel, "No-address hotel", 120, models.Location{}),
		},
	}

	out := RenderSummary(it)
	assert.Contains(t, out, "Date: N/A")
	assert.Contains(t, out, "Address: N/A")
}

func TestRenderSummaryLinksOnlyWhenURLPresent(t *testing.T) {
	withURL := pricedSuggestion(models.KindFlight, "Linked flight", 80, models.Location{})
	withURL.BookingURL = "https://example.com/book"

	out := RenderSummary(&Itinerary{Outbound: withURL})
	assert.Contains(t, out, "[Book Now](https://example.com/book)")

	out = RenderSummary(&Itinerary{Outbound: pricedSuggestion(models.KindFlight, "Plain flight", 80, models.Location{})})
	assert.False(t, strings.Contains(out, "[Book Now]"))
}
