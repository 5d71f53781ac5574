package handlers

import (
	"context"
	"database/sql"
	"time"

	"icmasure/internal/cache"
	"icmasure/internal/db"
	"icmasure/internal/models"
)

/* ========= SHARED QUERIES ========= */

const submissionCols = `
	s.id, s.reference, s.title, s.abstract_text, s.theme_id,
	s.author_first_name, s.author_last_name, s.author_email, s.author_phone,
	s.author_affiliation, s.country_id, s.status, s.reviewer_notes,
	s.created_at, s.updated_at,
	p.id, p.status, p.amount, p.proof_path, p.notes, p.created_at, p.reviewed_at`

const submissionFrom = `
	FROM submissions s
	LEFT JOIN submission_payments p ON p.submission_id = s.id`

func scanSubmission(scan func(dest ...any) error) (models.AbstractSubmission, error) {
	var s models.AbstractSubmission
	var (
		payID      sql.NullInt32
		payStatus  sql.NullString
		payAmount  sql.NullInt64
		payProof   sql.NullString
		payNotes   sql.NullString
		payCreated sql.NullTime
		payRev     sql.NullTime
	)
	err := scan(
		&s.ID, &s.Reference, &s.Title, &s.AbstractText, &s.ThemeID,
		&s.AuthorFirst, &s.AuthorLast, &s.AuthorEmail, &s.AuthorPhone,
		&s.AuthorAffil, &s.CountryID, &s.Status, &s.ReviewerNotes,
		&s.CreatedAt, &s.UpdatedAt,
		&payID, &payStatus, &payAmount, &payProof, &payNotes, &payCreated, &payRev,
	)
	if err != nil {
		return s, err
	}
	if payID.Valid {
		s.Payment = &models.SubmissionPayment{
			ID:           int(payID.Int32),
			SubmissionID: s.ID,
			Status:       models.PaymentStatus(payStatus.String),
			Amount:       payAmount.Int64,
			ProofPath:    payProof.String,
			Notes:        payNotes,
			CreatedAt:    payCreated.Time,
			ReviewedAt:   payRev,
		}
	}
	return s, nil
}

// querySubmissions returns the admin list for the current filters.
// Search matches title, author name and email. No pagination: the whole
// filtered list is the page.
func querySubmissions(search string, status models.SubmissionStatus) ([]models.AbstractSubmission, error) {
	q := `SELECT ` + submissionCols + submissionFrom + ` WHERE 1=1`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		q += ` AND (s.title ILIKE $1 OR s.author_email ILIKE $1
			OR s.author_first_name || ' ' || s.author_last_name ILIKE $1)`
	}
	if status != "" {
		args = append(args, string(status))
		if search != "" {
			q += ` AND s.status = $2`
		} else {
			q += ` AND s.status = $1`
		}
	}
	q += ` ORDER BY s.id DESC`

	rows, err := db.DB.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AbstractSubmission
	for rows.Next() {
		s, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func getSubmissionByID(id int) (*models.AbstractSubmission, error) {
	row := db.DB.QueryRow(`SELECT `+submissionCols+submissionFrom+` WHERE s.id = $1`, id)
	s, err := scanSubmission(row.Scan)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// getSubmissionByReference is the author-side lookup: the reference code
// alone is guessable enough that we also require the author email.
func getSubmissionByReference(ref, email string) (*models.AbstractSubmission, error) {
	row := db.DB.QueryRow(`SELECT `+submissionCols+submissionFrom+`
		WHERE s.reference = $1 AND lower(s.author_email) = lower($2)`, ref, email)
	s, err := scanSubmission(row.Scan)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func loadContributors(submissionID int) ([]models.Contributor, error) {
	rows, err := db.DB.Query(`
		SELECT id, submission_id, position, first_name, last_name, email,
		       phone_number, affiliation, country_id, role
		FROM contributors
		WHERE submission_id = $1
		ORDER BY position`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Contributor
	for rows.Next() {
		var c models.Contributor
		if err := rows.Scan(&c.ID, &c.SubmissionID, &c.Position, &c.FirstName, &c.LastName,
			&c.Email, &c.PhoneNumber, &c.Affiliation, &c.CountryID, &c.Role); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

/* ========= REFERENCE DATA ========= */

func listThemes() ([]models.ConferenceTheme, error) {
	rows, err := db.DB.Query(`SELECT id, name, description FROM themes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConferenceTheme
	for rows.Next() {
		var t models.ConferenceTheme
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func listSpeakers() ([]models.Speaker, error) {
	rows, err := db.DB.Query(`
		SELECT id, name, affiliation, talk_title, photo_path, sort_order
		FROM speakers ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Speaker
	for rows.Next() {
		var s models.Speaker
		if err := rows.Scan(&s.ID, &s.Name, &s.Affiliation, &s.TalkTitle, &s.PhotoPath, &s.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func listFees() ([]models.RegistrationFee, error) {
	rows, err := db.DB.Query(`SELECT id, category, amount, note FROM registration_fees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RegistrationFee
	for rows.Next() {
		var f models.RegistrationFee
		if err := rows.Scan(&f.ID, &f.Category, &f.Amount, &f.Note); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func listCountries() ([]models.Country, error) {
	rows, err := db.DB.Query(`SELECT id, name FROM countries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Country
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

/* ========= STATS ========= */

const statsCacheKey = "dashboard_stats"

// loadStats computes the dashboard counters, going through the redis
// snapshot (60s TTL) when available.
func loadStats(ctx context.Context) (models.DashboardStats, error) {
	var st models.DashboardStats
	if cache.GetJSON(ctx, statsCacheKey, &st) {
		return st, nil
	}

	err := db.DB.QueryRowContext(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE s.status = 'pending'),
			count(*) FILTER (WHERE s.status = 'under_review'),
			count(*) FILTER (WHERE s.status = 'approved'),
			count(*) FILTER (WHERE s.status = 'rejected'),
			count(*) FILTER (WHERE s.status = 'revision_required'),
			count(p.id) FILTER (WHERE p.status = 'pending'),
			count(p.id) FILTER (WHERE p.status = 'approved'),
			count(DISTINCT s.country_id)
		FROM submissions s
		LEFT JOIN submission_payments p ON p.submission_id = s.id`).
		Scan(&st.Total, &st.Pending, &st.UnderReview, &st.Approved, &st.Rejected,
			&st.RevisionRequired, &st.PaymentsPending, &st.PaymentsApproved, &st.Countries)
	if err != nil {
		return st, err
	}

	cache.SetJSON(ctx, statsCacheKey, st, 60*time.Second)
	return st, nil
}

// invalidateStats drops the snapshot after any write that moves counters.
func invalidateStats(ctx context.Context) {
	cache.Invalidate(ctx, statsCacheKey)
}
