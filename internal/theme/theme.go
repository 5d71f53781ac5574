// Package theme is the explicit light/dark preference store. Persistence
// and the "what does the system prefer" question are both injected, so
// rendering decisions are testable without a browser.
package theme

import "net/http"

// Preference is what the visitor asked for, not what gets rendered.
type Preference string

const (
	Light  Preference = "light"
	Dark   Preference = "dark"
	System Preference = "system"
)

// Parse normalizes arbitrary input; anything unrecognized means System.
func Parse(s string) Preference {
	switch Preference(s) {
	case Light:
		return Light
	case Dark:
		return Dark
	default:
		return System
	}
}

// Resolve turns a preference into the concrete mode for this render.
// systemDark answers the injected "system preference" query.
func Resolve(p Preference, systemDark func() bool) Preference {
	if p == System {
		if systemDark != nil && systemDark() {
			return Dark
		}
		return Light
	}
	return p
}

// Store is the persistence port for the preference.
type Store interface {
	Get(r *http.Request) Preference
	Set(w http.ResponseWriter, p Preference)
}

// CookieStore keeps the preference in a plain cookie. The value is
// cosmetic, so it is neither signed nor encrypted.
type CookieStore struct {
	Name   string
	MaxAge int
}

func NewCookieStore() *CookieStore {
	return &CookieStore{Name: "icma_theme", MaxAge: 365 * 24 * 60 * 60}
}

func (c *CookieStore) Get(r *http.Request) Preference {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return System
	}
	return Parse(ck.Value)
}

func (c *CookieStore) Set(w http.ResponseWriter, p Preference) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    string(p),
		Path:     "/",
		MaxAge:   c.MaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}
