// Package status derives the presentation of a submission from its
// (status, payment) pair: the badge row, the progress percentage and the
// one-line narrative shown to authors and admins. Pure and total: any
// input renders something, unknown statuses fall back to a verbatim badge.
package status

import "icmasure/internal/models"

// Kind drives badge styling only; it carries no workflow meaning.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindDanger  Kind = "danger"
	KindUnknown Kind = "unknown"
)

type Badge struct {
	Label string
	Kind  Kind
}

// Classification is everything a template needs to render workflow state.
type Classification struct {
	Badges          []Badge
	ProgressPercent int
	ProgressText    string
}

var (
	badgeAbstractApproved = Badge{Label: "Abstract Approved", Kind: KindSuccess}
	badgePendingAbstract  = Badge{Label: "Pending Abstract", Kind: KindWarning}
	badgeAbstractRejected = Badge{Label: "Abstract Rejected", Kind: KindDanger}
	badgePaymentPending   = Badge{Label: "Payment Pending", Kind: KindWarning}
	badgePaymentApproved  = Badge{Label: "Payment Approved", Kind: KindSuccess}
	badgePaymentRejected  = Badge{Label: "Payment Rejected", Kind: KindDanger}
)

// fallback renders a raw status string verbatim. Used both for genuinely
// unknown values and for statuses the badge row has no dedicated label for.
func fallback(raw string) Badge {
	return Badge{Label: raw, Kind: KindUnknown}
}

// Classify maps a submission's state to its presentation. Rules are
// ordered: the approved branch inspects the payment record, everything
// else depends on the abstract status alone.
func Classify(status models.SubmissionStatus, payment *models.SubmissionPayment) Classification {
	if status == models.StatusApproved {
		return classifyApproved(payment)
	}

	switch status {
	case models.StatusPending:
		return Classification{
			Badges:          []Badge{badgePendingAbstract},
			ProgressPercent: 25,
			ProgressText:    "Waiting for review",
		}
	case models.StatusUnderReview:
		return Classification{
			Badges:          []Badge{fallback(string(status))},
			ProgressPercent: 50,
			ProgressText:    "Under review by committee",
		}
	case models.StatusRejected:
		return Classification{
			Badges:          []Badge{badgeAbstractRejected},
			ProgressPercent: 0,
			ProgressText:    "Submission rejected",
		}
	case models.StatusRevisionRequired:
		// grouped with pending for progress purposes
		return Classification{
			Badges:          []Badge{fallback(string(status))},
			ProgressPercent: 25,
			ProgressText:    "Revision required",
		}
	default:
		return Classification{
			Badges:          []Badge{fallback(string(status))},
			ProgressPercent: 0,
			ProgressText:    string(status),
		}
	}
}

func classifyApproved(payment *models.SubmissionPayment) Classification {
	if payment == nil {
		return Classification{
			Badges:          []Badge{badgeAbstractApproved},
			ProgressPercent: 75,
			ProgressText:    "Approved - Payment required",
		}
	}

	switch payment.Status {
	case models.PaymentPending:
		return Classification{
			Badges:          []Badge{badgeAbstractApproved, badgePaymentPending},
			ProgressPercent: 90,
			ProgressText:    "Payment submitted - Waiting for verification",
		}
	case models.PaymentApproved:
		return Classification{
			Badges:          []Badge{badgeAbstractApproved, badgePaymentApproved},
			ProgressPercent: 100,
			ProgressText:    "Complete - LoA available",
		}
	case models.PaymentRejected:
		// A rejected payment puts the author back at the payment stage.
		return Classification{
			Badges:          []Badge{badgeAbstractApproved, badgePaymentRejected},
			ProgressPercent: 75,
			ProgressText:    "Payment submitted - rejected, re-upload required",
		}
	default:
		return Classification{
			Badges:          []Badge{badgeAbstractApproved, fallback(string(payment.Status))},
			ProgressPercent: 75,
			ProgressText:    "Approved - Payment required",
		}
	}
}
