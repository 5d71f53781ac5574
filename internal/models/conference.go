package models

import "database/sql"

// Speaker — keynote/invited speaker shown on the marketing pages.
type Speaker struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Affiliation string         `json:"affiliation"`
	TalkTitle   sql.NullString `json:"-"`
	PhotoPath   sql.NullString `json:"-"`
	SortOrder   int            `json:"sort_order"`
}

// ConferenceTheme — one track authors pick from in the submission form.
type ConferenceTheme struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// RegistrationFee — one row of the registration-fee table (category ×
// amount); amounts are whole IDR.
type RegistrationFee struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
	Note     string `json:"note,omitempty"`
}

// Country — reference list for author/contributor country dropdowns.
type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
