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

	"go.uber.org/zap"
)

type Flights struct {
	host       string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewFlights(cfg *config.BookingConfig, logger *zap.Logger) *Flights {
	return &Flights{
		host:       cfg.APIHost,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type airportResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"data"`
}

type flightSearchResponse struct {
	Data struct {
		FlightOffers []flightOffer `json:"flightOffers"`
		Aggregation  struct {
			Airlines []struct {
				IataCode string `json:"iataCode"`
				Name     string `json:"name"`
				LogoURL  string `json:"logoUrl"`
			} `json:"airlines"`
		} `json:"aggregation"`
	} `json:"data"`
}

type flightOffer struct {
	PriceBreakdown struct {
		TotalRounded struct {
			Units        float64 `json:"units"`
			CurrencyCode string  `json:"currencyCode"`
		} `json:"totalRounded"`
	} `json:"priceBreakdown"`
	Segments []struct {
		Legs []struct {
			DepartureAirport struct {
				Code string `json:"code"`
			} `json:"departureAirport"`
			ArrivalAirport struct {
				Code string `json:"code"`
			} `json:"arrivalAirport"`
			DepartureTime string `json:"departureTime"`
			ArrivalTime   string `json:"arrivalTime"`
			FlightInfo    struct {
				CarrierInfo struct {
					MarketingCarrier string `json:"marketingCarrier"`
				} `json:"carrierInfo"`
			} `json:"flightInfo"`
		} `json:"legs"`
	} `json:"segments"`
}

// SearchFlights looks up both airports and returns the best one-way offer
// as a core payload, or nil when the route yields nothing.
func (f *Flights) SearchFlights(ctx context.Context, originCity, destinationCity, departureDate string, adults int) (*dto.FlightPayload, error) {
	fromID, err := f.searchAirport(ctx, originCity)
	if err != nil {
		return nil, fmt.Errorf("origin airport lookup failed: %w", err)
	}
	toID, err := f.searchAirport(ctx, destinationCity)
	if err != nil {
		return nil, fmt.Errorf("destination airport lookup failed: %w", err)
	}

	query := url.Values{
		"fromId":        {fromID},
		"toId":          {toID},
		"departDate":    {departureDate},
		"adults":        {fmt.Sprint(adults)},
		"stops":         {"none"},
		"cabinClass":    {"ECONOMY"},
		"sort":          {"BEST"},
		"currency_code": {"EUR"},
	}

	var resp flightSearchResponse
	if err := f.get(ctx, "/api/v1/flights/searchFlights", query, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data.FlightOffers) == 0 {
		f.logger.Info("No flight offers found",
			zap.String("from", originCity),
			zap.String("to", destinationCity),
		)
		return nil, nil
	}

	offer := resp.Data.FlightOffers[0]
	if len(offer.Segments) == 0 || len(offer.Segments[0].Legs) == 0 {
		return nil, nil
	}
	leg := offer.Segments[0].Legs[0]

	airlineName := "Unknown Airline"
	airlineLogo := ""
	carrier := leg.FlightInfo.CarrierInfo.MarketingCarrier
	for _, airline := range resp.Data.Aggregation.Airlines {
		if airline.IataCode == carrier {
			airlineName = airline.Name
			airlineLogo = airline.LogoURL
			break
		}
	}

	price := offer.PriceBreakdown.TotalRounded.Units
	return &dto.FlightPayload{
		Title:           fmt.Sprintf("Flight from %s to %s", leg.DepartureAirport.Code, leg.ArrivalAirport.Code),
		Description:     fmt.Sprintf("Operated by %s. Departs: %s. Arrives: %s.", airlineName, leg.DepartureTime, leg.ArrivalTime),
		Price:           &price,
		Currency:        offer.PriceBreakdown.TotalRounded.CurrencyCode,
		ImageURL:        airlineLogo,
		BookingURL:      flightBookingURL(leg.DepartureAirport.Code, leg.ArrivalAirport.Code, departureDate, carrier, adults),
		DepartureTime:   leg.DepartureTime,
		ArrivalTime:     leg.ArrivalTime,
		OriginCode:      leg.DepartureAirport.Code,
		DestinationCode: leg.ArrivalAirport.Code,
	}, nil
}

func (f *Flights) searchAirport(ctx context.Context, city string) (string, error) {
	query := url.Values{"query": {city}}
	var resp airportResponse
	if err := f.get(ctx, "/api/v1/flights/searchDestination", query, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("no airport found for %q", city)
	}
	return resp.Data[0].ID, nil
}

func (f *Flights) get(ctx context.Context, path string, query url.Values, out any) error {
	u := url.URL{Scheme: "https", Host: f.host, Path: path, RawQuery: query.Encode()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-rapidapi-host", f.host)
	req.Header.Set("x-rapidapi-key", f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("flight API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("flight API returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// flightBookingURL builds the most specific Booking.com flights URL we can,
// pre-filtering by route, date, cabin and airline so the user lands close
// to the exact offer.
func flightBookingURL(from, to, departDate, carrier string, adults int) string {
	query := url.Values{
		"type":       {"ONEWAY"},
		"adults":     {fmt.Sprint(adults)},
		"cabinClass": {"ECONOMY"},
		"from":       {from},
		"to":         {to},
		"depart":     {departDate},
		"sort":       {"BEST"},
	}
	if carrier != "" {
		query.Set("airlines", carrier)
	}
	return "https://www.booking.com/flights/?" + query.Encode()
}
