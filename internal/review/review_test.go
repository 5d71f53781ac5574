package review_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icmasure/internal/models"
	"icmasure/internal/review"
	"icmasure/internal/selection"
)

func sub(id int, st models.SubmissionStatus, pay *models.SubmissionPayment) models.AbstractSubmission {
	return models.AbstractSubmission{ID: id, Reference: "REF", Status: st, Payment: pay}
}

func pending(id int, withPayment bool) models.AbstractSubmission {
	var p *models.SubmissionPayment
	if withPayment {
		p = &models.SubmissionPayment{Status: models.PaymentPending}
	}
	return sub(id, models.StatusPending, p)
}

func TestEligibleForApprove(t *testing.T) {
	subs := []models.AbstractSubmission{
		pending(1, true),  // eligible
		pending(2, false), // pending but no payment record
		sub(3, models.StatusApproved, &models.SubmissionPayment{Status: models.PaymentPending}),
		sub(4, models.StatusRejected, nil),
		pending(5, true), // eligible but not selected
	}

	got := review.EligibleForApprove(selection.New(1, 2, 3, 4), subs)
	assert.Equal(t, []int{1}, got.IDs())
}

func TestEligibleForApproveSubsetAndOrderStable(t *testing.T) {
	subs := []models.AbstractSubmission{pending(1, true), pending(2, true), pending(3, false)}
	sel := selection.New(1, 2, 3, 99)

	forward := review.EligibleForApprove(sel, subs)
	reversed := review.EligibleForApprove(sel, []models.AbstractSubmission{subs[2], subs[1], subs[0]})

	assert.Equal(t, forward.IDs(), reversed.IDs())
	for _, id := range forward.IDs() {
		assert.True(t, sel.Has(id), "eligible id %d not in selection", id)
	}
}

func TestEligibleForRejectIsIdentity(t *testing.T) {
	sel := selection.New(4, 2)
	got := review.EligibleForReject(sel)
	assert.Equal(t, []int{2, 4}, got.IDs())
}

func TestPlanBulkBlockedOnZeroEligible(t *testing.T) {
	subs := []models.AbstractSubmission{pending(1, false)}
	p := review.PlanBulk(review.ActionApprove, selection.New(1), subs)

	assert.Equal(t, review.PlanBlocked, p.State)
	assert.Equal(t, 0, p.Eligible.Len())
	assert.Contains(t, p.Message, "None of the selected submissions can be approved")
}

func TestPlanBulkPartialNamesBothCounts(t *testing.T) {
	subs := []models.AbstractSubmission{pending(1, true), pending(2, false)}
	p := review.PlanBulk(review.ActionApprove, selection.New(1, 2), subs)

	require.Equal(t, review.PlanNeedsConfirm, p.State)
	// the eligible subset carried forward is exactly {1}, never {1,2}
	assert.Equal(t, []int{1}, p.Eligible.IDs())
	assert.Contains(t, p.Message, "1 of 2")
}

func TestPlanBulkFullBatchMentionsInvoiceEmail(t *testing.T) {
	subs := []models.AbstractSubmission{pending(1, true), pending(2, true)}
	p := review.PlanBulk(review.ActionApprove, selection.New(1, 2), subs)

	assert.Equal(t, review.PlanReady, p.State)
	assert.Equal(t, []int{1, 2}, p.Eligible.IDs())
	assert.Contains(t, p.Message, "invoice email")
}

func TestPlanBulkEmptySelection(t *testing.T) {
	p := review.PlanBulk(review.ActionReject, selection.New(), nil)
	assert.Equal(t, review.PlanBlocked, p.State)
}

func TestPlanBulkUnknownAction(t *testing.T) {
	p := review.PlanBulk(review.Action("merge"), selection.New(1), nil)
	assert.Equal(t, review.PlanBlocked, p.State)
	assert.Equal(t, 0, p.Eligible.Len())
}

func TestCanApproveAbstract(t *testing.T) {
	ok := pending(1, false)
	assert.NoError(t, review.CanApproveAbstract(&ok))

	withPayment := pending(2, true)
	err := review.CanApproveAbstract(&withPayment)
	var pe *review.PreconditionError
	require.ErrorAs(t, err, &pe)

	approved := sub(3, models.StatusApproved, nil)
	assert.Error(t, review.CanApproveAbstract(&approved))
}

func TestCanApprovePayment(t *testing.T) {
	ok := sub(1, models.StatusApproved, &models.SubmissionPayment{Status: models.PaymentPending})
	assert.NoError(t, review.CanApprovePayment(&ok))

	noPayment := sub(2, models.StatusApproved, nil)
	assert.Error(t, review.CanApprovePayment(&noPayment))

	// payment may never be approved before the abstract
	notApproved := pending(3, true)
	assert.Error(t, review.CanApprovePayment(&notApproved))

	done := sub(4, models.StatusApproved, &models.SubmissionPayment{Status: models.PaymentApproved})
	assert.Error(t, review.CanApprovePayment(&done))
}

func TestCanReject(t *testing.T) {
	ok := pending(1, true)
	assert.NoError(t, review.CanReject(&ok))

	approved := sub(2, models.StatusApproved, nil)
	assert.Error(t, review.CanReject(&approved))
}

func TestCanUpdatePaymentStatus(t *testing.T) {
	s := sub(1, models.StatusApproved, &models.SubmissionPayment{Status: models.PaymentPending})
	assert.NoError(t, review.CanUpdatePaymentStatus(&s, models.PaymentApproved))
	assert.NoError(t, review.CanUpdatePaymentStatus(&s, models.PaymentRejected))
	assert.Error(t, review.CanUpdatePaymentStatus(&s, models.PaymentStatus("pending")))

	settled := sub(2, models.StatusApproved, &models.SubmissionPayment{Status: models.PaymentRejected})
	assert.Error(t, review.CanUpdatePaymentStatus(&settled, models.PaymentApproved))
	assert.Error(t, review.CanUpdatePaymentStatus(&settled, models.PaymentRejected))
}

func TestCanUploadProof(t *testing.T) {
	open := sub(1, models.StatusApproved, nil)
	assert.NoError(t, review.CanUploadProof(&open))

	reupload := sub(2, models.StatusApproved, &models.SubmissionPayment{Status: models.PaymentRejected})
	assert.NoError(t, review.CanUploadProof(&reupload))

	waiting := sub(3, models.StatusApproved, &models.SubmissionPayment{Status: models.PaymentPending})
	assert.Error(t, review.CanUploadProof(&waiting))

	notApproved := pending(4, false)
	assert.Error(t, review.CanUploadProof(&notApproved))
}

func TestCanEdit(t *testing.T) {
	editable := pending(1, false)
	assert.NoError(t, review.CanEdit(&editable))

	revision := sub(2, models.StatusRevisionRequired, nil)
	assert.NoError(t, review.CanEdit(&revision))

	approved := sub(3, models.StatusApproved, nil)
	assert.Error(t, review.CanEdit(&approved))
}
