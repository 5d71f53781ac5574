package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icmasure/internal/models"
	"icmasure/internal/status"
)

func payment(s models.PaymentStatus) *models.SubmissionPayment {
	return &models.SubmissionPayment{Status: s}
}

func labels(c status.Classification) []string {
	out := make([]string, 0, len(c.Badges))
	for _, b := range c.Badges {
		out = append(out, b.Label)
	}
	return out
}

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		name     string
		status   models.SubmissionStatus
		payment  *models.SubmissionPayment
		badges   []string
		progress int
		text     string
	}{
		{
			name:     "approved no payment",
			status:   models.StatusApproved,
			badges:   []string{"Abstract Approved"},
			progress: 75,
			text:     "Approved - Payment required",
		},
		{
			name:     "approved payment pending",
			status:   models.StatusApproved,
			payment:  payment(models.PaymentPending),
			badges:   []string{"Abstract Approved", "Payment Pending"},
			progress: 90,
			text:     "Payment submitted - Waiting for verification",
		},
		{
			name:     "approved payment approved",
			status:   models.StatusApproved,
			payment:  payment(models.PaymentApproved),
			badges:   []string{"Abstract Approved", "Payment Approved"},
			progress: 100,
			text:     "Complete - LoA available",
		},
		{
			name:     "approved payment rejected resets to payment stage",
			status:   models.StatusApproved,
			payment:  payment(models.PaymentRejected),
			badges:   []string{"Abstract Approved", "Payment Rejected"},
			progress: 75,
			text:     "Payment submitted - rejected, re-upload required",
		},
		{
			name:     "pending",
			status:   models.StatusPending,
			badges:   []string{"Pending Abstract"},
			progress: 25,
			text:     "Waiting for review",
		},
		{
			name:     "under review falls back to raw badge",
			status:   models.StatusUnderReview,
			badges:   []string{"under_review"},
			progress: 50,
			text:     "Under review by committee",
		},
		{
			name:     "rejected",
			status:   models.StatusRejected,
			badges:   []string{"Abstract Rejected"},
			progress: 0,
			text:     "Submission rejected",
		},
		{
			name:     "revision required grouped with pending progress",
			status:   models.StatusRevisionRequired,
			badges:   []string{"revision_required"},
			progress: 25,
			text:     "Revision required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := status.Classify(tc.status, tc.payment)
			assert.Equal(t, tc.badges, labels(got))
			assert.Equal(t, tc.progress, got.ProgressPercent)
			assert.Equal(t, tc.text, got.ProgressText)
		})
	}
}

func TestClassifyUnknownStatus(t *testing.T) {
	for _, raw := range []string{"", "garbage", "APPROVED", "cancelled"} {
		got := status.Classify(models.SubmissionStatus(raw), nil)
		require.Len(t, got.Badges, 1, "raw=%q", raw)
		assert.Equal(t, raw, got.Badges[0].Label)
		assert.Equal(t, status.KindUnknown, got.Badges[0].Kind)
	}
}

func TestClassifyUnknownPaymentStatusKeepsAbstractBadge(t *testing.T) {
	got := status.Classify(models.StatusApproved, payment("weird"))
	require.Len(t, got.Badges, 2)
	assert.Equal(t, "Abstract Approved", got.Badges[0].Label)
	assert.Equal(t, "weird", got.Badges[1].Label)
	assert.Equal(t, 75, got.ProgressPercent)
}
