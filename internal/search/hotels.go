// Package search holds the third-party search collaborators: Booking.com
// hotel and flight lookups over RapidAPI and Geoapify place lookups. The
// itinerary core never calls these directly; the chat service reaches them
// through the searcher interfaces in internal/service.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"tripdesk/internal/dto"
	"tripdesk/pkg/config"

	"go.uber.org/zap"
)

const maxHotelResults = 3

type Hotels struct {
	host       string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHotels(cfg *config.BookingConfig, logger *zap.Logger) *Hotels {
	return &Hotels{
		host:       cfg.APIHost,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type destinationResponse struct {
	Data []struct {
		DestID     string `json:"dest_id"`
		SearchType string `json:"search_type"`
	} `json:"data"`
}

type hotelSearchResponse struct {
	Data struct {
		Hotels []rawHotel `json:"hotels"`
	} `json:"data"`
}

type rawHotel struct {
	Property struct {
		Name           string   `json:"name"`
		ReviewScore    float64  `json:"reviewScore"`
		ReviewCount    int      `json:"reviewCount"`
		PhotoURLs      []string `json:"photoUrls"`
		PriceBreakdown struct {
			GrossPrice struct {
				Value    float64 `json:"value"`
				Currency string  `json:"currency"`
			} `json:"grossPrice"`
		} `json:"priceBreakdown"`
	} `json:"property"`
	AccessibilityLabel string `json:"accessibilityLabel"`
}

// SearchHotels finds hotels in a city for the stay window, ranks them by
// value within the budget and returns the top results as core payloads.
// When nothing fits the budget the search retries once with 20% headroom
// before giving up.
func (h *Hotels) SearchHotels(ctx context.Context, city, arrival, departure string, priceMax float64, adults int) ([]dto.HotelPayload, error) {
	destID, err := h.searchDestination(ctx, city)
	if err != nil {
		return nil, err
	}

	hotels, err := h.searchHotels(ctx, destID, arrival, departure, adults)
	if err != nil {
		return nil, err
	}

	ranked := rankHotels(hotels, priceMax)
	if len(ranked) == 0 {
		h.logger.Info("No hotels within budget, retrying with headroom",
			zap.String("city", city),
			zap.Float64("price_max", priceMax),
		)
		ranked = rankHotels(hotels, priceMax*1.2)
	}
	if len(ranked) > maxHotelResults {
		ranked = ranked[:maxHotelResults]
	}

	payloads := make([]dto.HotelPayload, 0, len(ranked))
	for _, hotel := range ranked {
		price := hotel.Property.PriceBreakdown.GrossPrice.Value
		payloads = append(payloads, dto.HotelPayload{
			HotelName:        hotel.Property.Name,
			HotelDescription: hotel.AccessibilityLabel,
			Price:            &price,
			Currency:         hotel.Property.PriceBreakdown.GrossPrice.Currency,
			Rating:           hotel.Property.ReviewScore,
			ReviewCount:      hotel.Property.ReviewCount,
			HotelPhotoURLs:   hotel.Property.PhotoURLs,
			BookingURL:       hotelBookingURL(hotel.Property.Name, arrival, departure),
			Destination:      city,
		})
	}

	return payloads, nil
}

func (h *Hotels) searchDestination(ctx context.Context, city string) (string, error) {
	query := url.Values{"query": {city}}
	var resp destinationResponse
	if err := h.get(ctx, "/api/v1/hotels/searchDestination", query, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("no destination found for %q", city)
	}
	return resp.Data[0].DestID, nil
}

func (h *Hotels) searchHotels(ctx context.Context, destID, arrival, departure string, adults int) ([]rawHotel, error) {
	query := url.Values{
		"dest_id":        {destID},
		"search_type":    {"CITY"},
		"arrival_date":   {arrival},
		"departure_date": {departure},
		"adults":         {fmt.Sprint(adults)},
		"currency_code":  {"EUR"},
	}

	var resp hotelSearchResponse
	if err := h.get(ctx, "/api/v1/hotels/searchHotels", query, &resp); err != nil {
		return nil, err
	}

	return resp.Data.Hotels, nil
}

func (h *Hotels) get(ctx context.Context, path string, query url.Values, out any) error {
	u := url.URL{Scheme: "https", Host: h.host, Path: path, RawQuery: query.Encode()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-rapidapi-host", h.host)
	req.Header.Set("x-rapidapi-key", h.apiKey)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hotel API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hotel API returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// rankHotels filters hotels to the budget and sorts them by a value score:
// review score weighs 40%, cheapness 30%, review volume 30%. Hotels with no
// price are dropped.
func rankHotels(hotels []rawHotel, priceMax float64) []rawHotel {
	type scored struct {
		hotel rawHotel
		score float64
	}

	var candidates []scored
	for _, hotel := range hotels {
		price := hotel.Property.PriceBreakdown.GrossPrice.Value
		if price <= 0 || (priceMax > 0 && price > priceMax) {
			continue
		}

		ratingScore := 0.0
		if hotel.Property.ReviewScore > 0 {
			ratingScore = hotel.Property.ReviewScore / 10 * 40
		}
		priceScore := 0.0
		if priceMax > 0 {
			priceScore = (1 - price/priceMax) * 30
		}
		reviewScore := float64(hotel.Property.ReviewCount) / 1000 * 30
		if reviewScore > 30 {
			reviewScore = 30
		}

		candidates = append(candidates, scored{hotel: hotel, score: ratingScore + priceScore + reviewScore})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	ranked := make([]rawHotel, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.hotel
	}
	return ranked
}

func hotelBookingURL(name, arrival, departure string) string {
	query := url.Values{
		"ss":       {name},
		"checkin":  {arrival},
		"checkout": {departure},
	}
	return "https://www.booking.com/searchresults.html?" + query.Encode()
}
