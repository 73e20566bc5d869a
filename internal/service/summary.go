package service

import (
	"fmt"
	"strings"

	"tripdesk/internal/models"

	"github.com/samber/lo"
)

const (
	maxSummaryShops   = 3
	maxSummaryLeisure = 5
)

// RenderSummary produces the human-readable itinerary digest. The cost
// rollup counts positive flight prices plus only the first stay's price:
// multiple stored hotels are alternatives awaiting selection, not
// consecutive bookings, so later stays do not add to the total. The
// renderer is presentation-only and tolerates any missing field.
func RenderSummary(it *Itinerary) string {
	var b strings.Builder
	total := 0.0

	b.WriteString("\n🎉 **Your Trip Itinerary** ✈️🏨\n\n")

	b.WriteString("## ✈️ Flights\n")
	total += writeFlight(&b, "Outbound", it.Outbound)
	total += writeFlight(&b, "Inbound", it.Inbound)

	b.WriteString("\n---\n## 🏨 Accommodation\n")
	if len(it.Stays) == 0 {
		b.WriteString("* **Hotel/Stay:** No accommodation selected yet.\n")
	}
	for i, stay := range it.Stays {
		rating := ""
		if stay.Rating != nil && *stay.Rating > 0 {
			rating = fmt.Sprintf(" (%.1f/5 stars)", *stay.Rating)
		}
		fmt.Fprintf(&b, "* **%s**%s - Price (Total): $%.2f\n", stay.Title, rating, positivePrice(stay))
		fmt.Fprintf(&b, "  > 📍 Address: %s\n", orNA(stay.Location.String("address")))
		if stay.BookingURL != "" {
			fmt.Fprintf(&b, "  > [View Deal](%s)\n", stay.BookingURL)
		}
		if i == 0 {
			total += positivePrice(stay)
		}
	}

	b.WriteString("\n---\n## 🛒 Essential Stops (Supermarkets/Shops)\n")
	if len(it.Shops) == 0 {
		b.WriteString("* No local essential shops pre-loaded.\n")
	} else {
		names := lo.Map(lo.Subset(it.Shops, 0, maxSummaryShops), func(s *models.Suggestion, _ int) string {
			return fmt.Sprintf("**%s** (%s)", s.Title, orNA(s.Location.String("address")))
		})
		fmt.Fprintf(&b, "* Found %d nearby essential shops. Top %d are:\n", len(it.Shops), len(names))
		fmt.Fprintf(&b, "  > %s\n", strings.Join(names, "; "))
	}

	b.WriteString("\n## 🎭 Local Leisure & Entertainment\n")
	if len(it.Leisure) == 0 {
		b.WriteString("* No local leisure activities pre-loaded.\n")
	} else {
		names := lo.Map(lo.Subset(it.Leisure, 0, maxSummaryLeisure), func(s *models.Suggestion, _ int) string {
			return fmt.Sprintf("**%s** (%s)", s.Title, orNA(s.Location.String("city")))
		})
		fmt.Fprintf(&b, "* Found %d leisure activities. Top %d suggestions:\n", len(it.Leisure), len(names))
		fmt.Fprintf(&b, "  > %s\n", strings.Join(names, "; "))
	}

	b.WriteString("\n---\n## 💰 **Estimated Confirmed Trip Cost** (Flights + Accommodation)\n")
	fmt.Fprintf(&b, "* **Total Estimate:** **$%.2f** (Excluding Activities/Meals)\n", total)

	return b.String()
}

func writeFlight(b *strings.Builder, label string, flight *models.Suggestion) float64 {
	if flight == nil {
		fmt.Fprintf(b, "* **%s Flight:** Not yet booked.\n", label)
		return 0
	}

	fmt.Fprintf(b, "* **%s:** %s - Price: $%.2f\n", label, flight.Title, positivePrice(flight))
	fmt.Fprintf(b, "  > 📅 Date: %s", orNA(flight.Location.String("departure")))
	if flight.BookingURL != "" {
		fmt.Fprintf(b, " | [Book Now](%s)", flight.BookingURL)
	}
	b.WriteString("\n")

	return positivePrice(flight)
}

// positivePrice treats a missing or non-positive price as contributing
// nothing to the rollup.
func positivePrice(s *models.Suggestion) float64 {
	if s.Price == nil || *s.Price <= 0 {
		return 0
	}
	return *s.Price
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
