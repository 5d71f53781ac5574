package models

import (
	"database/sql"
	"time"
)

// SubmissionStatus is the abstract-review lifecycle label. The set is
// server-controlled; anything outside it still renders (fallback badge),
// it just never matches an action precondition.
type SubmissionStatus string

const (
	StatusPending          SubmissionStatus = "pending"
	StatusUnderReview      SubmissionStatus = "under_review"
	StatusApproved         SubmissionStatus = "approved"
	StatusRejected         SubmissionStatus = "rejected"
	StatusRevisionRequired SubmissionStatus = "revision_required"
)

// PaymentStatus is the independent payment-review lifecycle label.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// KnownStatuses lists the statuses offered in the admin filter dropdown.
var KnownStatuses = []SubmissionStatus{
	StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusRevisionRequired,
}

// SubmissionPayment — proof-of-payment record, 0 or 1 per submission.
// Created when an approved-abstract author uploads proof; only admin
// approve/reject mutates it afterwards.
type SubmissionPayment struct {
	ID           int
	SubmissionID int
	Status       PaymentStatus
	Amount       int64 // IDR, whole rupiah
	ProofPath    string
	Notes        sql.NullString
	CreatedAt    time.Time
	ReviewedAt   sql.NullTime
}

// Contributor — co-author row. Position is display order; the primary
// author lives in the author_* columns of the submission, not here.
type Contributor struct {
	ID           int
	SubmissionID int
	Position     int
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	Affiliation  string
	CountryID    int
	Role         sql.NullString
}

// AbstractSubmission — one conference paper proposal with its own
// approval workflow, independent of payment.
type AbstractSubmission struct {
	ID            int
	Reference     string // opaque public handle, given to the author
	Title         string
	AbstractText  string
	ThemeID       sql.NullInt32
	AuthorFirst   string
	AuthorLast    string
	AuthorEmail   string
	AuthorPhone   string
	AuthorAffil   string
	CountryID     int
	Status        SubmissionStatus
	ReviewerNotes sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Payment      *SubmissionPayment // nil until proof uploaded
	Contributors []Contributor
}

// HasPayment reports whether a payment record exists at all. A missing
// record is distinct from a record in any status.
func (s *AbstractSubmission) HasPayment() bool { return s.Payment != nil }

// AuthorName joins the primary author's name for lists and exports.
func (s *AbstractSubmission) AuthorName() string {
	if s.AuthorLast == "" {
		return s.AuthorFirst
	}
	return s.AuthorFirst + " " + s.AuthorLast
}

// SubmissionResponse is the JSON shape for the admin list endpoint,
// without sql.Null* noise.
type SubmissionResponse struct {
	ID            int        `json:"id"`
	Reference     string     `json:"reference"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Email         string     `json:"email"`
	Status        string     `json:"status"`
	PaymentStatus *string    `json:"payment_status,omitempty"`
	ReviewerNotes *string    `json:"reviewer_notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ReviewedAt    *time.Time `json:"payment_reviewed_at,omitempty"`
}

// SubmissionToResponse maps the database row (with Null*) to the API shape.
func SubmissionToResponse(s AbstractSubmission) SubmissionResponse {
	out := SubmissionResponse{
		ID:        s.ID,
		Reference: s.Reference,
		Title:     s.Title,
		Author:    s.AuthorName(),
		Email:     s.AuthorEmail,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
	}
	if s.ReviewerNotes.Valid {
		out.ReviewerNotes = &s.ReviewerNotes.String
	}
	if s.Payment != nil {
		ps := string(s.Payment.Status)
		out.PaymentStatus = &ps
		if s.Payment.ReviewedAt.Valid {
			out.ReviewedAt = &s.Payment.ReviewedAt.Time
		}
	}
	return out
}
