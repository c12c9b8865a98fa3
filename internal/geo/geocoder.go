package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const geocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Place is a geocoded location in WGS84 coordinates.
type Place struct {
	Lat     float64
	Lng     float64
	Address string
}

// Geocoder resolves place names to coordinates through the Google Maps
// geocoding API. All failures, including no-result lookups, collapse to
// "not found" at the API surface; the distinction lives in the logs.
type Geocoder struct {
	apiKey   string
	client   *http.Client
	endpoint string // test override
}

func NewGeocoder(apiKey string) *Geocoder {
	return &Geocoder{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a place name or address, with results localized to
// Korean. Returns the first match, or false when the place cannot be
// resolved for any reason.
func (g *Geocoder) Geocode(ctx context.Context, query string) (*Place, bool) {
	if g.apiKey == "" {
		log.Printf("[geo] maps API key not configured")
		return nil, false
	}

	endpoint := g.endpoint
	if endpoint == "" {
		endpoint = geocodeURL
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apiKey)
	params.Set("language", "ko")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("[geo] build geocode request: %v", err)
		return nil, false
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("[geo] geocode request failed: %v", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[geo] geocode API returned status %d: %s", resp.StatusCode, body)
		return nil, false
	}

	var parsed geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("[geo] decode geocode response: %v", err)
		return nil, false
	}

	if len(parsed.Results) == 0 {
		log.Printf("[geo] no geocode results for query=%q, status=%s", query, parsed.Status)
		return nil, false
	}

	first := parsed.Results[0]
	address := first.FormattedAddress
	if address == "" {
		address = query
	}
	return &Place{
		Lat:     first.Geometry.Location.Lat,
		Lng:     first.Geometry.Location.Lng,
		Address: address,
	}, true
}

// DirectionsURL builds a Google Maps directions link from the start
// coordinates to the destination.
func DirectionsURL(startLat, startLng, destLat, destLng float64) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/%v,%v/%v,%v/",
		startLat, startLng, destLat, destLng)
}
