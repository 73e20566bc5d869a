package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRawHotel(name string, price, reviewScore float64, reviewCount int) rawHotel {
	var h rawHotel
	h.Property.Name = name
	h.Property.PriceBreakdown.GrossPrice.Value = price
	h.Property.ReviewScore = reviewScore
	h.Property.ReviewCount = reviewCount
	return h
}

func TestRankHotelsFiltersBudgetAndUnpriced(t *testing.T) {
	hotels := []rawHotel{
		makeRawHotel("within budget", 400, 8, 500),
		makeRawHotel("over budget", 900, 9.5, 2000),
		makeRawHotel("no price", 0, 9, 1000),
	}

	ranked := rankHotels(hotels, 500)

	require.Len(t, ranked, 1)
	assert.Equal(t, "within budget", ranked[0].Property.Name)
}

func TestRankHotelsPrefersValueOverPriceAlone(t *testing.T) {
	hotels := []rawHotel{
		makeRawHotel("cheap but unloved", 100, 4, 10),
		makeRawHotel("pricier but great", 450, 9.5, 3000),
	}

	ranked := rankHotels(hotels, 500)

	require.Len(t, ranked, 2)
	// cheap: 4/10*40 + (1-0.2)*30 + 0.3 = 40.3
	// great: 9.5/10*40 + (1-0.9)*30 + 30 = 71.0
	assert.Equal(t, "pricier but great", ranked[0].Property.Name)
}

func TestRankHotelsCapsReviewVolume(t *testing.T) {
	hotels := []rawHotel{
		makeRawHotel("popular", 300, 8, 50000),
		makeRawHotel("very popular", 300, 8, 500000),
	}

	ranked := rankHotels(hotels, 500)

	// Review volume saturates at 1000 reviews, so these tie and keep
	// input order.
	require.Len(t, ranked, 2)
	assert.Equal(t, "popular", ranked[0].Property.Name)
}

func TestRankHotelsNoBudgetKeepsAllPriced(t *testing.T) {
	hotels := []rawHotel{
		makeRawHotel("a", 100, 5, 100),
		makeRawHotel("b", 9000, 5, 100),
		makeRawHotel("no price", 0, 5, 100),
	}

	ranked := rankHotels(hotels, 0)

	assert.Len(t, ranked, 2)
}
