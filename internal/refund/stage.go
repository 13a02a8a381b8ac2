// Package refund derives the reimbursement stage of a receipt.
package refund

import (
	"strings"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
)

// Derive computes the refund stage from the receipt's metadata. The stage is
// never stored on its own; it is recomputed from these two fields every time.
// Evidence of reimbursement (a non-empty refund-details list) wins over
// evidence of merely having sent a claim.
func Derive(refundDetails, sentToInsurance string) models.RefundStage {
	if hasEntries(refundDetails) {
		return models.StageReimbursed
	}
	if strings.TrimSpace(sentToInsurance) != "" {
		return models.StageProcessing
	}
	return models.StageReceived
}

// hasEntries reports whether a serialized refund-details list holds at least
// one entry. An empty or "[]"/"null" JSON value counts as absent.
func hasEntries(refundDetails string) bool {
	s := strings.TrimSpace(refundDetails)
	return s != "" && s != "[]" && s != "null"
}
