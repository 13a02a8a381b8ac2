package refund

import (
	"testing"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name            string
		refundDetails   string
		sentToInsurance string
		want            models.RefundStage
	}{
		{"nothing supplied", "", "", models.StageReceived},
		{"sent only", "", "Acme", models.StageProcessing},
		{"refunded only", `[{"company":"Acme","amount":"12.50"}]`, "", models.StageReimbursed},
		{"refund wins over sent", `[{"company":"Acme","amount":"12.50"}]`, "Acme|Globex", models.StageReimbursed},
		{"empty json list is absent", "[]", "", models.StageReceived},
		{"empty json list with sent", "[]", "Acme", models.StageProcessing},
		{"null json is absent", "null", "", models.StageReceived},
		{"whitespace sent is absent", "", "   ", models.StageReceived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Derive(tt.refundDetails, tt.sentToInsurance); got != tt.want {
				t.Errorf("Derive(%q, %q) = %q, want %q", tt.refundDetails, tt.sentToInsurance, got, tt.want)
			}
		})
	}
}
