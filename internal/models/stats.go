package models

// DashboardStats — counters for the admin dashboard and the public
// counter widget. Computed from the submissions table, cached in redis.
type DashboardStats struct {
	Total            int `json:"total"`
	Pending          int `json:"pending"`
	UnderReview      int `json:"under_review"`
	Approved         int `json:"approved"`
	Rejected         int `json:"rejected"`
	RevisionRequired int `json:"revision_required"`
	PaymentsPending  int `json:"payments_pending"`
	PaymentsApproved int `json:"payments_approved"`
	Countries        int `json:"countries"`
}
