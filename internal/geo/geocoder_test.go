package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testGeocoder(srvURL string) *Geocoder {
	g := NewGeocoder("test-key")
	g.endpoint = srvURL
	return g
}

func TestGeocodeSuccess(t *testing.T) {
	var gotQuery, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("address")
		gotLang = r.URL.Query().Get("language")
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "대한민국 서울특별시 강남구 강남대로",
				"geometry": {"location": {"lat": 37.4979, "lng": 127.0276}}
			}]
		}`))
	}))
	defer srv.Close()

	place, ok := testGeocoder(srv.URL).Geocode(context.Background(), "강남역")
	if !ok {
		t.Fatal("Geocode reported not found")
	}
	if place.Lat != 37.4979 || place.Lng != 127.0276 {
		t.Errorf("coordinates = (%v, %v)", place.Lat, place.Lng)
	}
	if place.Address != "대한민국 서울특별시 강남구 강남대로" {
		t.Errorf("address = %q", place.Address)
	}
	if gotQuery != "강남역" {
		t.Errorf("address param = %q", gotQuery)
	}
	if gotLang != "ko" {
		t.Errorf("language param = %q, want ko", gotLang)
	}
}

func TestGeocodeAddressFallsBackToQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":1,"lng":2}}}]}`))
	}))
	defer srv.Close()

	place, ok := testGeocoder(srv.URL).Geocode(context.Background(), "어딘가")
	if !ok {
		t.Fatal("Geocode reported not found")
	}
	if place.Address != "어딘가" {
		t.Errorf("address = %q, want query fallback", place.Address)
	}
}

func TestGeocodeZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	if _, ok := testGeocoder(srv.URL).Geocode(context.Background(), "없는 곳"); ok {
		t.Fatal("expected not found for zero results")
	}
}

func TestGeocodeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, ok := testGeocoder(srv.URL).Geocode(context.Background(), "강남역"); ok {
		t.Fatal("expected not found on server error")
	}
}

func TestGeocodeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, ok := testGeocoder(srv.URL).Geocode(context.Background(), "강남역"); ok {
		t.Fatal("expected not found on malformed body")
	}
}

func TestGeocodeWithoutAPIKey(t *testing.T) {
	g := NewGeocoder("")
	if _, ok := g.Geocode(context.Background(), "강남역"); ok {
		t.Fatal("expected not found without an API key")
	}
}

func TestDirectionsURL(t *testing.T) {
	got := DirectionsURL(37.5665, 126.978, 37.4979, 127.0276)
	want := "https://www.google.com/maps/dir/37.5665,126.978/37.4979,127.0276/"
	if got != want {
		t.Errorf("DirectionsURL = %q, want %q", got, want)
	}
}
