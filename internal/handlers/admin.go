package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"

	"icmasure/internal/db"
	"icmasure/internal/logging"
	"icmasure/internal/models"
	"icmasure/internal/review"
	"icmasure/internal/selection"
	"icmasure/internal/sessions"
	"icmasure/internal/status"
)

/* ========= LIST VIEW ========= */

// adminRow pairs a submission with its derived presentation so the
// template never computes workflow state itself.
type adminRow struct {
	Submission     models.AbstractSubmission
	Classification status.Classification
	Selected       bool
}

func parseIDList(values []string) selection.Set {
	s := selection.New()
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				s = s.SelectOne(id, true)
			}
		}
	}
	return s
}

// AdminSubmissionsPage renders the review list for the current filters.
// A ?selected= list survives a cancelled confirmation so the operator
// does not lose their checkboxes.
func AdminSubmissionsPage(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	statusFilter := models.SubmissionStatus(r.URL.Query().Get("status"))

	subs, err := querySubmissions(search, statusFilter)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	pageIDs := make([]int, 0, len(subs))
	for _, s := range subs {
		pageIDs = append(pageIDs, s.ID)
	}
	// restore + reconcile: ids no longer in the filtered view are dropped
	sel := parseIDList(r.URL.Query()["selected"]).Reconcile(pageIDs)

	rows := make([]adminRow, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, adminRow{
			Submission:     s,
			Classification: status.Classify(s.Status, s.Payment),
			Selected:       sel.Has(s.ID),
		})
	}

	stats, err := loadStats(r.Context())
	if err != nil {
		logging.L().Errorw("admin stats", "err", err)
	}

	render(w, r,
		[]string{"web/templates/base.html", "web/templates/admin/submissions.html"},
		map[string]any{
			"Title":        "Admin · Submissions",
			"Rows":         rows,
			"Stats":        stats,
			"Search":       search,
			"StatusFilter": string(statusFilter),
			"Statuses":     models.KnownStatuses,
			"HeaderState":  selection.HeaderFor(sel, pageIDs),
		},
	)
}

func AdminSubmissionShow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	sub, err := getSubmissionByID(id)
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

	render(w, r,
		[]string{"web/templates/base.html", "web/templates/admin/submission_show.html"},
		map[string]any{
			"Title":             "Admin · " + sub.Reference,
			"Submission":        sub,
			"Classification":    status.Classify(sub.Status, sub.Payment),
			"CanApproveAbs":     review.CanApproveAbstract(sub) == nil,
			"CanApprovePayment": review.CanApprovePayment(sub) == nil,
			"CanReject":         review.CanReject(sub) == nil,
		},
	)
}

// AdminPaymentsPage lists submissions whose payment awaits verification.
func AdminPaymentsPage(w http.ResponseWriter, r *http.Request) {
	subs, err := querySubmissions("", "")
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	rows := make([]adminRow, 0)
	for _, s := range subs {
		if s.Payment != nil && s.Payment.Status == models.PaymentPending {
			rows = append(rows, adminRow{
				Submission:     s,
				Classification: status.Classify(s.Status, s.Payment),
			})
		}
	}
	render(w, r,
		[]string{"web/templates/base.html", "web/templates/admin/payments.html"},
		map[string]any{
			"Title": "Admin · Payments",
			"Rows":  rows,
		},
	)
}

/* ========= BULK ACTIONS ========= */

// guardAction enforces one admin action in flight per administrator.
// Returns a release func, or false when another action is outstanding.
func guardAction(w http.ResponseWriter, r *http.Request) (func(), bool) {
	adminID, _ := sessions.GetAdminID(r)
	if !Actions.TryAcquire(adminID) {
		sessions.AddFlash(w, r, "error", "Another action is still processing. Try again in a moment.")
		http.Redirect(w, r, "/admin/submissions", http.StatusFound)
		return nil, false
	}
	return func() { Actions.Release(adminID) }, true
}

// HandleBulkAction is the single endpoint behind the bulk approve /
// reject / export buttons. Two-phase: a partial-eligibility plan renders
// a confirmation page first; only a confirmed request writes, and it
// writes the eligible subset exactly.
func HandleBulkAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	action := review.Action(r.FormValue("action"))
	notes := strings.TrimSpace(r.FormValue("notes"))
	confirmed := r.FormValue("confirmed") == "1"
	search := strings.TrimSpace(r.FormValue("q"))
	statusFilter := models.SubmissionStatus(r.FormValue("status_filter"))

	// reconcile the posted selection against the list the operator was
	// actually looking at; stale ids are dropped, not acted on
	subs, err := querySubmissions(search, statusFilter)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	pageIDs := make([]int, 0, len(subs))
	for _, s := range subs {
		pageIDs = append(pageIDs, s.ID)
	}
	sel := parseIDList(r.PostForm["ids"]).Reconcile(pageIDs)

	plan := review.PlanBulk(action, sel, subs)
	if plan.State == review.PlanBlocked {
		sessions.AddFlash(w, r, "error", plan.Message)
		http.Redirect(w, r, "/admin/submissions", http.StatusFound)
		return
	}

	// export produces a download and mutates nothing; no confirmation step
	if action == review.ActionExport {
		exportSubmissions(w, r, plan.Eligible, subs)
		return
	}

	// both partial and full batches confirm before any write; the copy
	// names the side effect (and, for partial batches, both counts)
	if !confirmed {
		render(w, r,
			[]string{"web/templates/base.html", "web/templates/admin/bulk_confirm.html"},
			map[string]any{
				"Title":        "Confirm bulk action",
				"Action":       string(action),
				"Message":      plan.Message,
				"EligibleIDs":  plan.Eligible.IDs(),
				"Notes":        notes,
				"Search":       search,
				"StatusFilter": string(statusFilter),
			},
		)
		return
	}

	release, ok := guardAction(w, r)
	if !ok {
		return
	}
	defer release()

	ids := plan.Eligible.IDs()
	switch action {
	case review.ActionApprove:
		_, err = db.DB.Exec(`
			UPDATE submissions SET status = 'approved', updated_at = now()
			WHERE id = ANY($1) AND status = 'pending'`, pq.Array(ids))
	case review.ActionReject:
		_, err = db.DB.Exec(`
			UPDATE submissions SET status = 'rejected',
			       reviewer_notes = NULLIF($2, ''), updated_at = now()
			WHERE id = ANY($1) AND status = 'pending'`, pq.Array(ids), notes)
	}
	if err != nil {
		logging.L().Errorw("bulk action", "action", action, "err", err)
		sessions.AddFlash(w, r, "error", "Database error, nothing was changed.")
		http.Redirect(w, r, "/admin/submissions", http.StatusFound)
		return
	}
	invalidateStats(r.Context())

	// redirect without ?selected=: the selection set is cleared
	// unconditionally after a bulk dispatch
	sessions.AddFlash(w, r, "ok", bulkDoneMessage(action, len(ids)))
	http.Redirect(w, r, "/admin/submissions", http.StatusFound)
}

func bulkDoneMessage(action review.Action, n int) string {
	if action == review.ActionApprove {
		return "Approved " + strconv.Itoa(n) + " submissions. Invoice emails are queued to each participant."
	}
	return "Rejected " + strconv.Itoa(n) + " submissions."
}

/* ========= SINGLE-ITEM ACTIONS ========= */

func loadForAction(w http.ResponseWriter, r *http.Request) (*models.AbstractSubmission, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}
	sub, err := getSubmissionByID(id)
	if err == sql.ErrNoRows {
		http.NotFound(w, r)
		return nil, false
	} else if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return nil, false
	}
	return sub, true
}

// failPrecondition surfaces a blocked action and guarantees no write
// happened. Anything that is not a precondition violation is a 500.
func failPrecondition(w http.ResponseWriter, r *http.Request, sub *models.AbstractSubmission, err error) {
	var pe *review.PreconditionError
	if errors.As(err, &pe) {
		sessions.AddFlash(w, r, "error", pe.Reason)
		http.Redirect(w, r, "/admin/submissions/"+strconv.Itoa(sub.ID), http.StatusFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func singleAction(w http.ResponseWriter, r *http.Request,
	check func(*models.AbstractSubmission) error,
	perform func(*models.AbstractSubmission) error,
	done string) {

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	sub, ok := loadForAction(w, r)
	if !ok {
		return
	}
	if err := check(sub); err != nil {
		failPrecondition(w, r, sub, err)
		return
	}

	release, ok := guardAction(w, r)
	if !ok {
		return
	}
	defer release()

	if err := perform(sub); err != nil {
		logging.L().Errorw("admin action", "submission", sub.ID, "err", err)
		sessions.AddFlash(w, r, "error", "Database error, nothing was changed.")
	} else {
		invalidateStats(r.Context())
		sessions.AddFlash(w, r, "ok", done)
	}
	http.Redirect(w, r, "/admin/submissions/"+strconv.Itoa(sub.ID), http.StatusFound)
}

// HandleApproveAbstract — the pre-payment approval of a single pending
// submission that has no payment record yet.
func HandleApproveAbstract(w http.ResponseWriter, r *http.Request) {
	singleAction(w, r,
		review.CanApproveAbstract,
		func(s *models.AbstractSubmission) error {
			_, err := db.DB.Exec(`
				UPDATE submissions SET status = 'approved', updated_at = now()
				WHERE id = $1 AND status = 'pending'`, s.ID)
			return err
		},
		"Abstract approved. The author may now upload payment proof.")
}

// HandleRejectSubmission rejects one pending submission, with optional
// reviewer notes.
func HandleRejectSubmission(w http.ResponseWriter, r *http.Request) {
	notes := strings.TrimSpace(r.FormValue("notes"))
	singleAction(w, r,
		review.CanReject,
		func(s *models.AbstractSubmission) error {
			_, err := db.DB.Exec(`
				UPDATE submissions SET status = 'rejected',
				       reviewer_notes = NULLIF($2, ''), updated_at = now()
				WHERE id = $1 AND status = 'pending'`, s.ID, notes)
			return err
		},
		"Submission rejected.")
}

// HandleRequestRevision sends a pending submission back to the author.
func HandleRequestRevision(w http.ResponseWriter, r *http.Request) {
	notes := strings.TrimSpace(r.FormValue("notes"))
	singleAction(w, r,
		review.CanReject, // same precondition surface as reject
		func(s *models.AbstractSubmission) error {
			_, err := db.DB.Exec(`
				UPDATE submissions SET status = 'revision_required',
				       reviewer_notes = NULLIF($2, ''), updated_at = now()
				WHERE id = $1 AND status = 'pending'`, s.ID, notes)
			return err
		},
		"Revision requested from the author.")
}

// HandleApprovePayment verifies the pending payment of an approved
// abstract.
func HandleApprovePayment(w http.ResponseWriter, r *http.Request) {
	singleAction(w, r,
		review.CanApprovePayment,
		func(s *models.AbstractSubmission) error {
			_, err := db.DB.Exec(`
				UPDATE submission_payments SET status = 'approved', reviewed_at = now()
				WHERE id = $1 AND status = 'pending'`, s.Payment.ID)
			return err
		},
		"Payment approved. The LoA is now available to the author.")
}

// HandleUpdatePaymentStatus is the payments-page action: approve or
// reject one pending payment with optional reviewer notes.
func HandleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	to := models.PaymentStatus(r.FormValue("payment_status"))
	notes := strings.TrimSpace(r.FormValue("notes"))
	singleAction(w, r,
		func(s *models.AbstractSubmission) error {
			return review.CanUpdatePaymentStatus(s, to)
		},
		func(s *models.AbstractSubmission) error {
			_, err := db.DB.Exec(`
				UPDATE submission_payments
				SET status = $2, notes = NULLIF($3, ''), reviewed_at = now()
				WHERE id = $1 AND status = 'pending'`, s.Payment.ID, string(to), notes)
			return err
		},
		"Payment "+string(to)+".")
}

/* ========= ADMIN JSON API ========= */

// GetSubmissionsJSON backs the admin dashboard widgets.
func GetSubmissionsJSON(w http.ResponseWriter, r *http.Request) {
	subs, err := querySubmissions(
		strings.TrimSpace(r.URL.Query().Get("q")),
		models.SubmissionStatus(r.URL.Query().Get("status")))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "db query failed")
		return
	}

	out := make([]models.SubmissionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, models.SubmissionToResponse(s))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}
