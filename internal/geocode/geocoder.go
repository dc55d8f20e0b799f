package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Location is a resolved address: a point plus whatever address parts the
// provider returned.
type Location struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress"`
	Street           string  `json:"street,omitempty"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Zipcode          string  `json:"zipcode,omitempty"`
	Country          string  `json:"country,omitempty"`
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

var (
	// ErrNoResults means the provider resolved nothing for the address.
	ErrNoResults = errors.New("address could not be geocoded")
	// ErrUpstream wraps provider/transport failures.
	ErrUpstream = errors.New("geocoding provider unavailable")
)

// HTTPGeocoder talks to a Nominatim-style search endpoint.
type HTTPGeocoder struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGeocoder(baseURL, apiKey string) *HTTPGeocoder {
	return &HTTPGeocoder{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Road     string `json:"road"`
		City     string `json:"city"`
		Town     string `json:"town"`
		State    string `json:"state"`
		Postcode string `json:"postcode"`
		Country  string `json:"country"`
	} `json:"address"`
}

func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (Location, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")

	if g.apiKey != "" {
		q.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)

	if err != nil {
		return Location{}, err
	}

	// Nominatim requires an identifying UA
	req.Header.Set("User-Agent", "campdir/1.0")

	resp, err := g.client.Do(req)

	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var results []nominatimResult

	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if len(results) == 0 {
		return Location{}, ErrNoResults
	}

	first := results[0]

	lat, err := strconv.ParseFloat(first.Lat, 64)

	if err != nil {
		return Location{}, fmt.Errorf("%w: bad latitude %q", ErrUpstream, first.Lat)
	}

	lng, err := strconv.ParseFloat(first.Lon, 64)

	if err != nil {
		return Location{}, fmt.Errorf("%w: bad longitude %q", ErrUpstream, first.Lon)
	}

	city := first.Address.City
	if city == "" {
		city = first.Address.Town
	}

	return Location{
		Lat:              lat,
		Lng:              lng,
		FormattedAddress: first.DisplayName,
		Street:           first.Address.Road,
		City:             city,
		State:            first.Address.State,
		Zipcode:          first.Address.Postcode,
		Country:          first.Address.Country,
	}, nil
}
