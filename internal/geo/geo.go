// Package geo puts the map collaborator behind a small port: the venue
// page needs one coordinate for one address, nothing more. The real
// implementation talks to Nominatim; tests use a fake Provider.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"icmasure/internal/cache"
)

// Point is a geocoded location.
type Point struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// Provider resolves a free-text address to a point.
type Provider interface {
	Geocode(ctx context.Context, query string) (Point, error)
}

// ErrNotFound — the geocoder answered but had no result for the query.
var ErrNotFound = errors.New("geo: no result for query")

// Nominatim is the OpenStreetMap geocoder client. UserAgent is required
// by the Nominatim usage policy.
type Nominatim struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewNominatim() *Nominatim {
	return &Nominatim{
		BaseURL:   "https://nominatim.openstreetmap.org",
		UserAgent: "icmasure-conference-site",
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Nominatim) Geocode(ctx context.Context, query string) (Point, error) {
	u := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", n.BaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Point{}, err
	}
	req.Header.Set("User-Agent", n.UserAgent)

	resp, err := n.Client.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	// Nominatim returns lat/lon as strings.
	var rows []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return Point{}, fmt.Errorf("geocode decode: %w", err)
	}
	if len(rows) == 0 {
		return Point{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(rows[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geocode lat: %w", err)
	}
	lon, err := strconv.ParseFloat(rows[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geocode lon: %w", err)
	}
	return Point{Lat: lat, Lon: lon, DisplayName: rows[0].DisplayName}, nil
}

// Cached wraps a Provider with the redis cache. Venue coordinates change
// about never, so a day of TTL is conservative.
type Cached struct {
	Next Provider
	TTL  time.Duration
}

func NewCached(next Provider) *Cached {
	return &Cached{Next: next, TTL: 24 * time.Hour}
}

func (c *Cached) Geocode(ctx context.Context, query string) (Point, error) {
	key := "geo:" + query
	var p Point
	if cache.GetJSON(ctx, key, &p) {
		return p, nil
	}
	p, err := c.Next.Geocode(ctx, query)
	if err != nil {
		return Point{}, err
	}
	cache.SetJSON(ctx, key, p, c.TTL)
	return p, nil
}
