// Package review holds the action preconditions of the admin workflow:
// which submissions a bulk action may touch, the confirmation copy shown
// to the operator, and the per-item guards mirrored by the UI buttons.
// Everything here is advisory UX enforcement; the database writes go
// through the same checks again, and the backend answer always wins.
package review

import (
	"fmt"

	"icmasure/internal/models"
	"icmasure/internal/selection"
)

// Action is a bulk operation over a selection.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionExport  Action = "export"
)

// PreconditionError — an action was requested against a submission whose
// state does not allow it. Blocks the request before any write.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

func precondition(format string, args ...any) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// ---------- bulk eligibility ----------

// EligibleForApprove filters the selection down to submissions that are
// pending AND already carry a payment record. Result is always a subset
// of selected and independent of the order of submissions.
func EligibleForApprove(selected selection.Set, submissions []models.AbstractSubmission) selection.Set {
	out := selection.New()
	for i := range submissions {
		s := &submissions[i]
		if !selected.Has(s.ID) {
			continue
		}
		if s.Status == models.StatusPending && s.HasPayment() {
			out[s.ID] = struct{}{}
		}
	}
	return out
}

// EligibleForReject is the identity: reject carries no extra precondition.
func EligibleForReject(selected selection.Set) selection.Set {
	return selection.New(selected.IDs()...)
}

// ---------- bulk planning ----------

// PlanState tells the handler what to do with a requested bulk action.
type PlanState int

const (
	// PlanBlocked — nothing eligible; show the message, send no request.
	PlanBlocked PlanState = iota
	// PlanNeedsConfirm — partial eligibility; proceed with the eligible
	// subset only after the operator confirms, otherwise abort entirely.
	PlanNeedsConfirm
	// PlanReady — the whole batch qualifies; confirm and go.
	PlanReady
)

// Plan is the computed outcome for one requested bulk action.
type Plan struct {
	Action   Action
	Eligible selection.Set
	Selected int
	State    PlanState
	Message  string
}

// PlanBulk computes eligibility and the exact operator-facing copy for a
// bulk action over the current selection.
func PlanBulk(action Action, selected selection.Set, submissions []models.AbstractSubmission) Plan {
	p := Plan{Action: action, Selected: selected.Len()}

	switch action {
	case ActionApprove:
		p.Eligible = EligibleForApprove(selected, submissions)
	case ActionReject, ActionExport:
		p.Eligible = EligibleForReject(selected)
	default:
		p.Eligible = selection.New()
		p.State = PlanBlocked
		p.Message = fmt.Sprintf("Unknown bulk action %q.", string(action))
		return p
	}

	n := p.Eligible.Len()
	switch {
	case p.Selected == 0:
		p.State = PlanBlocked
		p.Message = "No submissions selected."
	case n == 0:
		p.State = PlanBlocked
		p.Message = blockedCopy(action)
	case n < p.Selected:
		p.State = PlanNeedsConfirm
		p.Message = fmt.Sprintf(
			"Only %d of %d selected submissions are eligible. Proceed with the %d eligible submissions only?",
			n, p.Selected, n)
	default:
		p.State = PlanReady
		p.Message = readyCopy(action, n)
	}
	return p
}

func blockedCopy(action Action) string {
	switch action {
	case ActionApprove:
		return "None of the selected submissions can be approved: bulk approval applies to pending submissions that already have a payment record."
	case ActionReject:
		return "None of the selected submissions can be rejected."
	default:
		return "Nothing to export for the current selection."
	}
}

func readyCopy(action Action, n int) string {
	switch action {
	case ActionApprove:
		return fmt.Sprintf("Approve %d submissions? An invoice email will be sent to each participant.", n)
	case ActionReject:
		return fmt.Sprintf("Reject %d submissions? Reviewer notes, if provided, are attached to each.", n)
	default:
		return fmt.Sprintf("Export %d submissions to Excel.", n)
	}
}

// ---------- single-item preconditions ----------

// CanApproveAbstract — the pre-payment approval: only offered for
// pending submissions that have not reached the payment stage yet.
// (Deliberately different from bulk approve, which acts on pending
// submissions WITH a payment record; the two model different transitions.)
func CanApproveAbstract(s *models.AbstractSubmission) error {
	if s.Status != models.StatusPending {
		return precondition("submission %s is %s, only pending submissions can be approved", s.Reference, s.Status)
	}
	if s.HasPayment() {
		return precondition("submission %s already has a payment record; use the payment workflow", s.Reference)
	}
	return nil
}

// CanApprovePayment — the payment approval step. Requires the abstract
// to be approved and a pending payment record; this keeps the invariant
// that a payment is never approved before its abstract.
func CanApprovePayment(s *models.AbstractSubmission) error {
	if s.Status != models.StatusApproved {
		return precondition("abstract %s is not approved yet", s.Reference)
	}
	if !s.HasPayment() {
		return precondition("submission %s has no payment record", s.Reference)
	}
	if s.Payment.Status != models.PaymentPending {
		return precondition("payment for %s is already %s", s.Reference, s.Payment.Status)
	}
	return nil
}

// CanReject — rejecting an abstract; pending submissions only.
func CanReject(s *models.AbstractSubmission) error {
	if s.Status != models.StatusPending {
		return precondition("submission %s is %s, only pending submissions can be rejected", s.Reference, s.Status)
	}
	return nil
}

// CanUpdatePaymentStatus guards the admin approve/reject payment action.
func CanUpdatePaymentStatus(s *models.AbstractSubmission, to models.PaymentStatus) error {
	if to != models.PaymentApproved && to != models.PaymentRejected {
		return precondition("invalid payment status %q", to)
	}
	if to == models.PaymentApproved {
		return CanApprovePayment(s)
	}
	if !s.HasPayment() {
		return precondition("submission %s has no payment record", s.Reference)
	}
	if s.Payment.Status != models.PaymentPending {
		return precondition("payment for %s is already %s", s.Reference, s.Payment.Status)
	}
	return nil
}

// CanUploadProof — author side: proof may be uploaded once the abstract
// is approved, and again after a rejected payment (re-upload).
func CanUploadProof(s *models.AbstractSubmission) error {
	if s.Status != models.StatusApproved {
		return precondition("abstract %s is not approved; payment is not open yet", s.Reference)
	}
	if s.HasPayment() && s.Payment.Status != models.PaymentRejected {
		return precondition("payment for %s is already %s", s.Reference, s.Payment.Status)
	}
	return nil
}

// CanEdit — author side: drafts are editable while waiting for review or
// when the committee asked for a revision.
func CanEdit(s *models.AbstractSubmission) error {
	if s.Status != models.StatusPending && s.Status != models.StatusRevisionRequired {
		return precondition("submission %s is %s and can no longer be edited", s.Reference, s.Status)
	}
	return nil
}
