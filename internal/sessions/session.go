package sessions

import (
	"crypto/sha256"
	"net/http"
	"os"

	"github.com/gorilla/sessions"
)

var store *sessions.CookieStore

const sessionName = "icma_session"

func init() {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		// may be empty in docker; never run production like this
		secret = "dev-insecure-secret-change-me-now"
	}

	// Two keys: signing + encryption (stronger than signing alone).
	// Lengths match what securecookie expects.
	h := sha256.Sum256([]byte("auth:" + secret))
	e := sha256.Sum256([]byte("enc:" + secret))

	store = sessions.NewCookieStore(h[:], e[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,          // cookie rides along on GET too
		Secure:   os.Getenv("APP_HTTPS") == "1", // 0 locally, 1 behind an HTTPS proxy
	}
}

func GetSession(r *http.Request) (*sessions.Session, error) {
	return store.Get(r, sessionName)
}

func SetAdminID(w http.ResponseWriter, r *http.Request, adminID int) error {
	s, err := GetSession(r)
	if err != nil {
		return err
	}
	s.Values["admin_id"] = adminID
	return s.Save(r, w) // emits Set-Cookie
}

func GetAdminID(r *http.Request) (int, bool) {
	s, err := GetSession(r)
	if err != nil {
		return 0, false
	}
	if v, ok := s.Values["admin_id"].(int); ok {
		return v, true
	}
	return 0, false
}

func ClearAdminID(w http.ResponseWriter, r *http.Request) error {
	s, err := GetSession(r)
	if err != nil {
		return err
	}
	delete(s.Values, "admin_id")
	return s.Save(r, w)
}

// ---------- flash messages ----------

// AddFlash queues a one-shot message for the next rendered page.
// kind is "ok" or "error" and only drives styling.
func AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	s, err := GetSession(r)
	if err != nil {
		return
	}
	s.AddFlash(kind + "|" + msg)
	_ = s.Save(r, w)
}

// Flash is one queued message.
type Flash struct {
	Kind    string
	Message string
}

// PopFlashes drains and returns the queued messages.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	s, err := GetSession(r)
	if err != nil {
		return nil
	}
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save(r, w) // persist the drain

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		f := Flash{Kind: "ok", Message: str}
		for i := 0; i < len(str); i++ {
			if str[i] == '|' {
				f.Kind, f.Message = str[:i], str[i+1:]
				break
			}
		}
		out = append(out, f)
	}
	return out
}
