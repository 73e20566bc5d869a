package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tripdesk/internal/dto"
	"tripdesk/pkg/config"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	geoapifyHost      = "api.geoapify.com"
	placeSearchRadius = 5000 // meters around the geocoded city center
)

type Places struct {
	apiKey       string
	httpClient   *http.Client
	geocodeCache *cache.Cache
	logger       *zap.Logger
}

func NewPlaces(cfg *config.GeoapifyConfig, logger *zap.Logger) *Places {
	return &Places{
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		// City coordinates do not move; cache them for a day.
		geocodeCache: cache.New(24*time.Hour, time.Hour),
		logger:       logger,
	}
}

type geocodeResponse struct {
	Features []struct {
		Properties coordinates `json:"properties"`
	} `json:"features"`
}

type coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type placesResponse struct {
	Features []struct {
		Properties placeProperties `json:"properties"`
	} `json:"features"`
}

type placeProperties struct {
	Name         string  `json:"name"`
	Formatted    string  `json:"formatted"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2"`
	City         string  `json:"city"`
	Postcode     string  `json:"postcode"`
	Street       string  `json:"street"`
	Website      string  `json:"website"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	OpeningHours string  `json:"opening_hours"`
	Contact      struct {
		Phone string `json:"phone"`
	} `json:"contact"`
}

// SearchPlaces geocodes the city and returns the first place matching the
// category filter. A failed or empty search comes back as a payload with
// the error marker set, never as a Go error: the caller treats it as
// "nothing to add".
func (p *Places) SearchPlaces(ctx context.Context, city, categories string, limit int) (*dto.PlacePayload, error) {
	coords, err := p.geocodeCity(ctx, city)
	if err != nil {
		p.logger.Warn("Geocoding failed", zap.String("city", city), zap.Error(err))
		return &dto.PlacePayload{Error: fmt.Sprintf("could not find location data for %s", city)}, nil
	}

	if limit <= 0 {
		limit = 1
	}
	query := url.Values{
		"categories": {categories},
		"filter":     {fmt.Sprintf("circle:%f,%f,%d", coords.Lon, coords.Lat, placeSearchRadius)},
		"limit":      {fmt.Sprint(limit)},
		"apiKey":     {p.apiKey},
	}

	var resp placesResponse
	if err := p.get(ctx, "/v2/places", query, &resp); err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return &dto.PlacePayload{Error: fmt.Sprintf("no places found for %s near %s", categories, city)}, nil
	}

	props := resp.Features[0].Properties
	name := props.Name
	if name == "" {
		name = props.AddressLine1
	}

	lat, lon := props.Lat, props.Lon
	return &dto.PlacePayload{
		Name:         name,
		FullAddress:  props.Formatted,
		AddressLine2: props.AddressLine2,
		City:         props.City,
		Postcode:     props.Postcode,
		Street:       props.Street,
		Lat:          &lat,
		Lon:          &lon,
		Phone:        props.Contact.Phone,
		OpeningHours: props.OpeningHours,
		Website:      props.Website,
	}, nil
}

func (p *Places) geocodeCity(ctx context.Context, city string) (coordinates, error) {
	if cached, found := p.geocodeCache.Get(city); found {
		return cached.(coordinates), nil
	}

	query := url.Values{
		"text":   {city},
		"limit":  {"1"},
		"apiKey": {p.apiKey},
	}

	var resp geocodeResponse
	if err := p.get(ctx, "/v1/geocode/search", query, &resp); err != nil {
		return coordinates{}, err
	}
	if len(resp.Features) == 0 {
		return coordinates{}, fmt.Errorf("no geocoding result for %q", city)
	}

	coords := resp.Features[0].Properties
	p.geocodeCache.Set(city, coords, cache.DefaultExpiration)
	return coords, nil
}

func (p *Places) get(ctx context.Context, path string, query url.Values, out any) error {
	u := url.URL{Scheme: "https", Host: geoapifyHost, Path: path, RawQuery: query.Encode()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places API returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
