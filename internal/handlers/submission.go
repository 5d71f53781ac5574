package handlers

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"icmasure/internal/db"
	"icmasure/internal/draft"
	"icmasure/internal/logging"
	"icmasure/internal/review"
	"icmasure/internal/sessions"
	"icmasure/internal/status"
)

var (
	maxUploadSize int64 = 10 << 20 // 10 MB
	allowedProof        = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true}
	emailRe             = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// newReference mints the opaque public handle an author uses to track
// their submission.
func newReference() string {
	return "ICMA-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

/* ========= SUBMISSION FORM ========= */

type submissionForm struct {
	Title        string
	AbstractText string
	ThemeID      int
	AuthorFirst  string
	AuthorLast   string
	AuthorEmail  string
	AuthorPhone  string
	AuthorAffil  string
	CountryID    int
}

func formFromRequest(r *http.Request) submissionForm {
	get := func(k string) string { return strings.TrimSpace(r.FormValue(k)) }
	themeID, _ := strconv.Atoi(get("theme_id"))
	countryID, _ := strconv.Atoi(get("country_id"))
	return submissionForm{
		Title:        get("title"),
		AbstractText: get("abstract"),
		ThemeID:      themeID,
		AuthorFirst:  get("author_first_name"),
		AuthorLast:   get("author_last_name"),
		AuthorEmail:  get("author_email"),
		AuthorPhone:  get("author_phone"),
		AuthorAffil:  get("author_affiliation"),
		CountryID:    countryID,
	}
}

// validate returns field errors keyed the way the form templates expect:
// plain names for the author block, contributors.<i>.<field> for the list.
func (f submissionForm) validate(contribs draft.List) draft.FieldErrors {
	errs := draft.FieldErrors{}
	if f.Title == "" {
		errs["title"] = "Title is required"
	}
	if f.AbstractText == "" {
		errs["abstract"] = "Abstract is required"
	}
	if f.AuthorFirst == "" {
		errs["author_first_name"] = "First name is required"
	}
	if f.AuthorEmail == "" {
		errs["author_email"] = "Email is required"
	} else if !emailRe.MatchString(f.AuthorEmail) {
		errs["author_email"] = "Invalid email"
	}
	if f.CountryID == 0 {
		errs["country_id"] = "Country is required"
	}
	for i, c := range contribs {
		if c.FirstName == "" {
			errs[fmt.Sprintf("contributors.%d.first_name", i)] = "First name is required"
		}
		if c.Email == "" {
			errs[fmt.Sprintf("contributors.%d.email", i)] = "Email is required"
		} else if !emailRe.MatchString(c.Email) {
			errs[fmt.Sprintf("contributors.%d.email", i)] = "Invalid email"
		}
	}
	return errs
}

func renderSubmissionForm(w http.ResponseWriter, r *http.Request, f submissionForm, contribs draft.List, errs draft.FieldErrors, editRef string) {
	themes, err := listThemes()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	countries, err := listCountries()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	title := "Submit abstract"
	if editRef != "" {
		title = "Edit submission"
	}
	render(w, r,
		[]string{"web/templates/base.html", "web/templates/submission_form.html"},
		map[string]any{
			"Title":        title,
			"Form":         f,
			"Contributors": contribs,
			"Errors":       errs,
			"Themes":       themes,
			"Countries":    countries,
			"EditRef":      editRef,
		},
	)
}

func ShowSubmissionForm(w http.ResponseWriter, r *http.Request) {
	renderSubmissionForm(w, r, submissionForm{}, nil, nil, "")
}

// HandleSubmissionForm serves both the add/remove-contributor round
// trips and the final submit, keyed off the _action field.
func HandleSubmissionForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	f := formFromRequest(r)
	contribs := draft.FromForm(r.PostForm)

	// contributor-list buttons redraw the form, nothing is stored
	if next, changed := draft.Apply(contribs, r.FormValue("_action")); changed {
		renderSubmissionForm(w, r, f, next, nil, "")
		return
	}

	if errs := f.validate(contribs); errs.Any() {
		renderSubmissionForm(w, r, f, contribs, errs, "")
		return
	}

	ref := newReference()
	tx, err := db.DB.Begin()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRow(`
		INSERT INTO submissions
			(reference, title, abstract_text, theme_id,
			 author_first_name, author_last_name, author_email, author_phone,
			 author_affiliation, country_id, status, created_at, updated_at)
		VALUES ($1,$2,$3,NULLIF($4,0),$5,$6,$7,$8,$9,$10,'pending',now(),now())
		RETURNING id`,
		ref, f.Title, f.AbstractText, f.ThemeID,
		f.AuthorFirst, f.AuthorLast, f.AuthorEmail, f.AuthorPhone,
		f.AuthorAffil, f.CountryID,
	).Scan(&id)
	if err != nil {
		logging.L().Errorw("submission insert", "err", err)
		http.Error(w, "Database error while saving the submission", http.StatusInternalServerError)
		return
	}
	if err := insertContributors(tx, id, contribs); err != nil {
		logging.L().Errorw("contributors insert", "err", err)
		http.Error(w, "Database error while saving contributors", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	invalidateStats(r.Context())

	sessions.AddFlash(w, r, "ok",
		"Abstract received. Your reference code is "+ref+". Keep it together with your email to track the review.")
	http.Redirect(w, r, statusURL(ref, f.AuthorEmail), http.StatusFound)
}

func insertContributors(tx *sql.Tx, submissionID int, contribs draft.List) error {
	for i, c := range contribs {
		_, err := tx.Exec(`
			INSERT INTO contributors
				(submission_id, position, first_name, last_name, email,
				 phone_number, affiliation, country_id, role)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''))`,
			submissionID, i, c.FirstName, c.LastName, c.Email,
			c.PhoneNumber, c.Affiliation, c.CountryID, c.Role)
		if err != nil {
			return err
		}
	}
	return nil
}

/* ========= STATUS LOOKUP ========= */

func statusURL(ref, email string) string {
	return "/status/" + url.PathEscape(ref) + "?email=" + url.QueryEscape(email)
}

func ShowStatusLookup(w http.ResponseWriter, r *http.Request) {
	render(w, r,
		[]string{"web/templates/base.html", "web/templates/status_lookup.html"},
		map[string]any{"Title": "Track your submission"},
	)
}

func HandleStatusLookup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	ref := strings.TrimSpace(r.FormValue("reference"))
	email := strings.TrimSpace(r.FormValue("email"))
	if ref == "" || email == "" {
		sessions.AddFlash(w, r, "error", "Enter both the reference code and your email.")
		http.Redirect(w, r, "/status", http.StatusFound)
		return
	}
	if _, err := getSubmissionByReference(ref, email); err != nil {
		sessions.AddFlash(w, r, "error", "No submission found for that reference and email.")
		http.Redirect(w, r, "/status", http.StatusFound)
		return
	}
	http.Redirect(w, r, statusURL(ref, email), http.StatusFound)
}

// ShowStatusPage renders the author's view of one submission: badges,
// progress bar and whichever follow-up actions the current state allows.
func ShowStatusPage(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")
	email := r.URL.Query().Get("email")

	sub, err := getSubmissionByReference(ref, email)
	if err == sql.ErrNoRows {
		http.NotFound(w, r)
		return
	} else if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	sub.Contributors, err = loadContributors(sub.ID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	cls := status.Classify(sub.Status, sub.Payment)
	render(w, r,
		[]string{"web/templates/base.html", "web/templates/status.html"},
		map[string]any{
			"Title":          "Submission " + sub.Reference,
			"Submission":     sub,
			"Classification": cls,
			"Email":          email,
			"CanEdit":        review.CanEdit(sub) == nil,
			"CanUploadProof": review.CanUploadProof(sub) == nil,
		},
	)
}

/* ========= EDIT (pending / revision_required) ========= */

func ShowEditForm(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")
	email := r.URL.Query().Get("email")

	sub, err := getSubmissionByReference(ref, email)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := review.CanEdit(sub); err != nil {
		sessions.AddFlash(w, r, "error", err.Error())
		http.Redirect(w, r, statusURL(ref, email), http.StatusFound)
		return
	}

	stored, err := loadContributors(sub.ID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	contribs := make(draft.List, 0, len(stored))
	for _, c := range stored {
		contribs = append(contribs, draft.Contributor{
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			Email:       c.Email,
			PhoneNumber: c.PhoneNumber,
			Affiliation: c.Affiliation,
			CountryID:   c.CountryID,
			Role:        c.Role.String,
		})
	}

	f := submissionForm{
		Title:        sub.Title,
		AbstractText: sub.AbstractText,
		ThemeID:      int(sub.ThemeID.Int32),
		AuthorFirst:  sub.AuthorFirst,
		AuthorLast:   sub.AuthorLast,
		AuthorEmail:  sub.AuthorEmail,
		AuthorPhone:  sub.AuthorPhone,
		AuthorAffil:  sub.AuthorAffil,
		CountryID:    sub.CountryID,
	}
	renderSubmissionForm(w, r, f, contribs, nil, sub.Reference)
}

func HandleEditForm(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	f := formFromRequest(r)
	contribs := draft.FromForm(r.PostForm)

	sub, err := getSubmissionByReference(ref, f.AuthorEmail)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := review.CanEdit(sub); err != nil {
		sessions.AddFlash(w, r, "error", err.Error())
		http.Redirect(w, r, statusURL(ref, f.AuthorEmail), http.StatusFound)
		return
	}

	if next, changed := draft.Apply(contribs, r.FormValue("_action")); changed {
		renderSubmissionForm(w, r, f, next, nil, ref)
		return
	}
	if errs := f.validate(contribs); errs.Any() {
		renderSubmissionForm(w, r, f, contribs, errs, ref)
		return
	}

	tx, err := db.DB.Begin()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	// a resubmitted revision goes back to the pending queue
	_, err = tx.Exec(`
		UPDATE submissions SET
			title = $1, abstract_text = $2, theme_id = NULLIF($3,0),
			author_first_name = $4, author_last_name = $5, author_phone = $6,
			author_affiliation = $7, country_id = $8,
			status = 'pending', updated_at = now()
		WHERE id = $9`,
		f.Title, f.AbstractText, f.ThemeID,
		f.AuthorFirst, f.AuthorLast, f.AuthorPhone,
		f.AuthorAffil, f.CountryID, sub.ID)
	if err != nil {
		http.Error(w, "Database error while saving", http.StatusInternalServerError)
		return
	}
	if _, err := tx.Exec(`DELETE FROM contributors WHERE submission_id = $1`, sub.ID); err != nil {
		http.Error(w, "Database error while saving", http.StatusInternalServerError)
		return
	}
	if err := insertContributors(tx, sub.ID, contribs); err != nil {
		http.Error(w, "Database error while saving", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	invalidateStats(r.Context())

	sessions.AddFlash(w, r, "ok", "Submission updated and queued for review.")
	http.Redirect(w, r, statusURL(ref, f.AuthorEmail), http.StatusFound)
}

/* ========= PAYMENT PROOF UPLOAD ========= */

// HandleProofUpload accepts the proof-of-payment file for an approved
// abstract. A rejected payment may be replaced; anything else is blocked
// before touching storage.
func HandleProofUpload(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, http.StatusRequestEntityTooLarge, "File too large (10 MB limit)")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	sub, err := getSubmissionByReference(ref, email)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := review.CanUploadProof(sub); err != nil {
		sessions.AddFlash(w, r, "error", err.Error())
		http.Redirect(w, r, statusURL(ref, email), http.StatusFound)
		return
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("amount")), 10, 64)
	if err != nil || amount <= 0 {
		sessions.AddFlash(w, r, "error", "Enter the transferred amount in IDR.")
		http.Redirect(w, r, statusURL(ref, email), http.StatusFound)
		return
	}

	file, handler, err := r.FormFile("proof")
	if err != nil {
		sessions.AddFlash(w, r, "error", "Attach the payment proof file.")
		http.Redirect(w, r, statusURL(ref, email), http.StatusFound)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if !allowedProof[ext] {
		sessions.AddFlash(w, r, "error", "Unsupported file type. Allowed: PDF, JPG, PNG")
		http.Redirect(w, r, statusURL(ref, email), http.StatusFound)
		return
	}
	if handler.Size > 0 && handler.Size > maxUploadSize {
		jsonError(w, http.StatusRequestEntityTooLarge, "File too large (10 MB limit)")
		return
	}

	if err := os.MkdirAll("uploads/proofs", 0o755); err != nil {
		http.Error(w, "Could not prepare file storage", http.StatusInternalServerError)
		return
	}
	fileName := fmt.Sprintf("%s_%d%s", sub.Reference, time.Now().Unix(), ext)
	dstPath := filepath.Join("uploads", "proofs", fileName)

	dst, err := os.Create(dstPath)
	if err != nil {
		http.Error(w, "Could not save the file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		http.Error(w, "File write error", http.StatusInternalServerError)
		return
	}

	// replace a rejected payment, create otherwise; drop the file on a
	// failed write so storage does not collect orphans
	if sub.Payment != nil {
		_, err = db.DB.Exec(`
			UPDATE submission_payments
			SET status = 'pending', amount = $1, proof_path = $2,
			    notes = NULL, created_at = now(), reviewed_at = NULL
			WHERE id = $3`,
			amount, "/"+filepath.ToSlash(dstPath), sub.Payment.ID)
	} else {
		_, err = db.DB.Exec(`
			INSERT INTO submission_payments (submission_id, status, amount, proof_path, created_at)
			VALUES ($1, 'pending', $2, $3, now())`,
			sub.ID, amount, "/"+filepath.ToSlash(dstPath))
	}
	if err != nil {
		_ = os.Remove(dstPath)
		logging.L().Errorw("payment insert", "err", err, "submission", sub.ID)
		http.Error(w, "Database error while saving the payment", http.StatusInternalServerError)
		return
	}
	invalidateStats(r.Context())

	sessions.AddFlash(w, r, "ok", "Payment proof received. The committee will verify it shortly.")
	http.Redirect(w, r, statusURL(ref, email), http.StatusFound)
}
