package service

import "tripdesk/internal/models"

// Itinerary is the derived, in-memory view of a conversation's suggestions:
// one flight per direction, every stored stay, shop and leisure entry. It is
// rebuilt from the suggestion log on every call and holds no state of its
// own.
type Itinerary struct {
	Outbound *models.Suggestion   `json:"journey_to"`
	Inbound  *models.Suggestion   `json:"journey_from"`
	Stays    []*models.Suggestion `json:"stays"`
	Shops    []*models.Suggestion `json:"shops"`
	Leisure  []*models.Suggestion `json:"leisure"`

	// Unslotted collects flights that matched neither direction and found
	// no free slot. They are excluded from the itinerary view but kept
	// here so the condition stays observable.
	Unslotted []*models.Suggestion `json:"-"`
}

// buildItinerary replays suggestions in insertion order. Flights are routed
// through the matcher; the first writer wins per slot, and a flight with no
// directional match takes the outbound slot only while that slot is empty.
func buildItinerary(suggestions []*models.Suggestion, tripOrigin, tripDestination string, matcher FlightMatcher) *Itinerary {
	it := &Itinerary{
		Stays:   make([]*models.Suggestion, 0),
		Shops:   make([]*models.Suggestion, 0),
		Leisure: make([]*models.Suggestion, 0),
	}

	for _, s := range suggestions {
		switch s.Kind {
		case models.KindHotel:
			it.Stays = append(it.Stays, s)
		case models.KindShop:
			it.Shops = append(it.Shops, s)
		case models.KindLeisure:
			it.Leisure = append(it.Leisure, s)
		case models.KindFlight:
			it.placeFlight(s, matcher.Match(
				s.Location.String("origin"),
				s.Location.String("destination"),
				tripOrigin,
				tripDestination,
			))
		}
	}

	return it
}

func (it *Itinerary) placeFlight(s *models.Suggestion, direction FlightDirection) {
	switch direction {
	case DirectionOutbound:
		if it.Outbound == nil {
			it.Outbound = s
			return
		}
	case DirectionInbound:
		if it.Inbound == nil {
			it.Inbound = s
			return
		}
	case DirectionUnclassified:
		// First-seen fallback: an unmatched flight is assumed outbound
		// as long as that slot is still open.
		if it.Outbound == nil {
			it.Outbound = s
			return
		}
	}

	it.Unslotted = append(it.Unslotted, s)
}
