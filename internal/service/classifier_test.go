package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstringMatcher(t *testing.T) {
	matcher := SubstringMatcher{}

	tripOrigin := "Amsterdam (AMS)"
	tripDestination := "Paris (CDG)"

	tests := []struct {
		name            string
		originCode      string
		destinationCode string
		want            FlightDirection
	}{
		{"outbound leg", "AMS", "CDG", DirectionOutbound},
		{"inbound leg", "CDG", "AMS", DirectionInbound},
		{"unrelated route", "LHR", "JFK", DirectionUnclassified},
		{"half match stays unclassified", "AMS", "JFK", DirectionUnclassified},
		{"lowercase codes", "ams", "cdg", DirectionOutbound},
		{"empty codes", "", "", DirectionUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Match(tt.originCode, tt.destinationCode, tripOrigin, tripDestination)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubstringMatcherEmptyPreferences(t *testing.T) {
	matcher := SubstringMatcher{}

	assert.Equal(t, DirectionUnclassified, matcher.Match("AMS", "CDG", "", "Paris"))
	assert.Equal(t, DirectionUnclassified, matcher.Match("AMS", "CDG", "Amsterdam", ""))
	assert.Equal(t, DirectionUnclassified, matcher.Match("AMS", "CDG", "", ""))
}

func TestFlightDirectionString(t *testing.T) {
	assert.Equal(t, "outbound", DirectionOutbound.String())
	assert.Equal(t, "inbound", DirectionInbound.String())
	assert.Equal(t, "unclassified", DirectionUnclassified.String())
}
