package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"icmasure/internal/cache"
	"icmasure/internal/config"
	"icmasure/internal/geo"
	"icmasure/internal/inflight"
	"icmasure/internal/logging"
	"icmasure/internal/sessions"
	"icmasure/internal/theme"
)

/* ========= SHARED COLLABORATORS ========= */

// Swappable in tests; the router uses these defaults.
var (
	ThemeStore theme.Store  = theme.NewCookieStore()
	Geocoder   geo.Provider = geo.NewCached(geo.NewNominatim())
	Actions                 = inflight.NewGuard()
)

/* ========= HELPERS ========= */

// render parses and executes the page templates over the base layout,
// injecting the cross-cutting template data: admin flag, theme, flashes.
func render(w http.ResponseWriter, r *http.Request, files []string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	_, isAdmin := sessions.GetAdminID(r)
	data["IsAdmin"] = isAdmin
	data["Theme"] = ThemeStore.Get(r)
	data["Flashes"] = sessions.PopFlashes(w, r)
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}

	tmpl, err := template.ParseFiles(files...)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	_ = tmpl.ExecuteTemplate(w, "base", data)
}

func jsonError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": msg,
	})
}

/* ========= PUBLIC PAGES ========= */

func ShowIndexPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	themes, err := listThemes()
	if err != nil {
		logging.L().Errorw("index themes", "err", err)
	}
	speakers, err := listSpeakers()
	if err != nil {
		logging.L().Errorw("index speakers", "err", err)
	}
	fees, err := listFees()
	if err != nil {
		logging.L().Errorw("index fees", "err", err)
	}
	stats, err := loadStats(ctx)
	if err != nil {
		logging.L().Errorw("index stats", "err", err)
	}
	views, _ := cache.CountView(ctx, "index")

	render(w, r,
		[]string{"web/templates/base.html", "web/templates/index.html"},
		map[string]any{
			"Title":    "ICMA SURE",
			"Themes":   themes,
			"Speakers": speakers,
			"Fees":     fees,
			"Stats":    stats,
			"Views":    views,
		},
	)
}

func ShowSpeakersPage(w http.ResponseWriter, r *http.Request) {
	speakers, err := listSpeakers()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	render(w, r,
		[]string{"web/templates/base.html", "web/templates/speakers.html"},
		map[string]any{
			"Title":    "Speakers",
			"Speakers": speakers,
		},
	)
}

func ShowRegistrationPage(w http.ResponseWriter, r *http.Request) {
	fees, err := listFees()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	render(w, r,
		[]string{"web/templates/base.html", "web/templates/registration.html"},
		map[string]any{
			"Title": "Registration",
			"Fees":  fees,
		},
	)
}

// ShowVenuePage geocodes the configured venue address through the geo
// port. A failed lookup still renders the page, just without the map.
func ShowVenuePage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":   "Venue",
		"Address": config.VenueAddress(),
	}
	point, err := Geocoder.Geocode(r.Context(), config.VenueAddress())
	if err != nil {
		logging.L().Warnw("venue geocode failed", "err", err)
	} else {
		data["Point"] = point
	}
	render(w, r, []string{"web/templates/base.html", "web/templates/venue.html"}, data)
}

// HandleThemeToggle stores the visitor's theme preference and returns to
// the referring page.
func HandleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	ThemeStore.Set(w, theme.Parse(r.FormValue("theme")))

	back := r.Referer()
	if back == "" {
		back = "/"
	}
	http.Redirect(w, r, back, http.StatusFound)
}

/* ========= PUBLIC JSON API ========= */

// GetStats feeds the animated counter widget.
func GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := loadStats(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "stats query failed")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(stats)
}
