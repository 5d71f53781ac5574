package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"icmasure/internal/db"
	"icmasure/internal/logging"
	"icmasure/internal/sessions"
)

// ShowLoginPage renders the admin login form.
func ShowLoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Admin login",
	}
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		data["Error"] = errMsg
	}
	render(w, r, []string{"web/templates/base.html", "web/templates/admin/login.html"}, data)
}

// HandleLogin processes the admin login POST.
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/login?error=Form+error", http.StatusFound)
		return
	}

	if db.DB == nil {
		http.Error(w, "database not initialized", http.StatusInternalServerError)
		return
	}

	login := strings.TrimSpace(r.FormValue("login"))
	password := r.FormValue("password")
	if login == "" || password == "" {
		http.Redirect(w, r, "/admin/login?error=Fill+in+all+fields", http.StatusFound)
		return
	}

	var id int
	var passwordHash string
	err := db.DB.QueryRow(`SELECT id, password_hash FROM administrators WHERE login = $1`, login).
		Scan(&id, &passwordHash)
	if err == sql.ErrNoRows {
		http.Redirect(w, r, "/admin/login?error=Wrong+login+or+password", http.StatusFound)
		return
	} else if err != nil {
		http.Redirect(w, r, "/admin/login?error=Database+error", http.StatusFound)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		http.Redirect(w, r, "/admin/login?error=Wrong+login+or+password", http.StatusFound)
		return
	}

	if err := sessions.SetAdminID(w, r, id); err != nil {
		logging.L().Errorw("session save", "err", err)
		http.Redirect(w, r, "/admin/login?error=Session+error", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/admin/submissions", http.StatusFound)
}

// HandleLogout drops the session and returns to the login page.
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := sessions.ClearAdminID(w, r); err != nil {
		http.Error(w, "Logout error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}
