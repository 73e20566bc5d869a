package service

import "strings"

// FlightDirection is the slot a flight suggestion is assigned to when the
// itinerary is rebuilt.
type FlightDirection int

const (
	DirectionUnclassified FlightDirection = iota
	DirectionOutbound
	DirectionInbound
)

func (d FlightDirection) String() string {
	switch d {
	case DirectionOutbound:
		return "outbound"
	case DirectionInbound:
		return "inbound"
	default:
		return "unclassified"
	}
}

// FlightMatcher decides whether a flight runs toward the trip destination or
// back. It is a strategy interface so the default heuristic can be swapped
// for an IATA-to-city table or geocoded matching without touching the
// itinerary replay.
type FlightMatcher interface {
	Match(originCode, destinationCode, tripOrigin, tripDestination string) FlightDirection
}

// SubstringMatcher classifies by case-insensitive substring containment:
// the trip origin/destination are free-text city names ("Amsterdam,
// Netherlands") while flight codes are short airport codes ("AMS"), and
// containment is the only textual link between them. It is a heuristic:
// codes that do not textually relate to the city name come back
// unclassified rather than guessed at.
type SubstringMatcher struct{}

func (SubstringMatcher) Match(originCode, destinationCode, tripOrigin, tripDestination string) FlightDirection {
	if tripOrigin == "" || tripDestination == "" {
		return DirectionUnclassified
	}

	origin := strings.ToUpper(originCode)
	dest := strings.ToUpper(destinationCode)
	from := strings.ToUpper(tripOrigin)
	to := strings.ToUpper(tripDestination)

	if origin == "" || dest == "" {
		return DirectionUnclassified
	}

	switch {
	case strings.Contains(from, origin) && strings.Contains(to, dest):
		return DirectionOutbound
	case strings.Contains(to, origin) && strings.Contains(from, dest):
		return DirectionInbound
	default:
		return DirectionUnclassified
	}
}
