package theme_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icmasure/internal/theme"
)

func TestParse(t *testing.T) {
	assert.Equal(t, theme.Light, theme.Parse("light"))
	assert.Equal(t, theme.Dark, theme.Parse("dark"))
	assert.Equal(t, theme.System, theme.Parse("system"))
	assert.Equal(t, theme.System, theme.Parse("neon"))
	assert.Equal(t, theme.System, theme.Parse(""))
}

func TestResolve(t *testing.T) {
	dark := func() bool { return true }
	light := func() bool { return false }

	assert.Equal(t, theme.Dark, theme.Resolve(theme.Dark, light))
	assert.Equal(t, theme.Light, theme.Resolve(theme.Light, dark))
	assert.Equal(t, theme.Dark, theme.Resolve(theme.System, dark))
	assert.Equal(t, theme.Light, theme.Resolve(theme.System, light))
	assert.Equal(t, theme.Light, theme.Resolve(theme.System, nil))
}

func TestCookieStoreRoundTrip(t *testing.T) {
	store := theme.NewCookieStore()

	rec := httptest.NewRecorder()
	store.Set(rec, theme.Dark)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	assert.Equal(t, theme.Dark, store.Get(r))

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, theme.System, store.Get(bare))
}
