package refund

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
)

// AppendDetail adds one {company, amount} entry to a serialized
// refund-details list and returns the new serialization. An empty amount
// defaults to "0"; an empty or absent list starts fresh.
func AppendDetail(detailsJSON, company, amount string) (string, error) {
	var details []models.RefundDetail
	if hasEntries(detailsJSON) {
		if err := json.Unmarshal([]byte(detailsJSON), &details); err != nil {
			return "", fmt.Errorf("parsing refund details: %w", err)
		}
	}
	if amount = strings.TrimSpace(amount); amount == "" {
		amount = "0"
	}
	details = append(details, models.RefundDetail{Company: company, Amount: amount})

	out, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("encoding refund details: %w", err)
	}
	return string(out), nil
}
