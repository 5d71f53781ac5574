package geo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icmasure/internal/geo"
)

func TestNominatimGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		if r.URL.Query().Get("q") == "nowhere" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"lat":"-7.4246","lon":"109.2301","display_name":"Purwokerto"}]`))
	}))
	defer srv.Close()

	n := geo.NewNominatim()
	n.BaseURL = srv.URL

	p, err := n.Geocode(context.Background(), "Universitas Jenderal Soedirman")
	require.NoError(t, err)
	assert.InDelta(t, -7.4246, p.Lat, 1e-9)
	assert.InDelta(t, 109.2301, p.Lon, 1e-9)
	assert.Equal(t, "Purwokerto", p.DisplayName)

	_, err = n.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, geo.ErrNotFound)
}

func TestNominatimBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := geo.NewNominatim()
	n.BaseURL = srv.URL
	_, err := n.Geocode(context.Background(), "anything")
	assert.Error(t, err)
}

type fakeProvider struct {
	calls int
	p     geo.Point
	err   error
}

func (f *fakeProvider) Geocode(ctx context.Context, q string) (geo.Point, error) {
	f.calls++
	return f.p, f.err
}

func TestCachedPassThroughWithoutRedis(t *testing.T) {
	// redis is not configured in tests, so every call reaches the inner
	// provider and errors pass through untouched
	fake := &fakeProvider{p: geo.Point{Lat: 1, Lon: 2}}
	c := geo.NewCached(fake)

	p, err := c.Geocode(context.Background(), "venue")
	require.NoError(t, err)
	assert.Equal(t, geo.Point{Lat: 1, Lon: 2}, p)

	fake.err = errors.New("boom")
	_, err = c.Geocode(context.Background(), "venue")
	assert.Error(t, err)
	assert.Equal(t, 2, fake.calls)
}
