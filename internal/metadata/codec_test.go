package metadata

import (
	"strings"
	"testing"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
)

func TestEncodeOrderAndOmission(t *testing.T) {
	r := models.Receipt{
		OwnerID:     7,
		OwnerName:   "alice",
		InsuranceCo: "Acme",
	}
	got := FromReceipt(r, models.StageReceived).Encode()
	want := "user_id=7|username=alice|refund_stage=received|insurance_company=Acme"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
	if strings.Contains(got, "refund_details=") {
		t.Error("empty optional field emitted a placeholder")
	}
}

func TestEncodeSanitizesValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"delimiter deleted", "Ac|me", "Acme"},
		{"newline deleted", "Ac\nme", "Acme"},
		{"carriage return deleted", "Ac\rme", "Acme"},
		{"all three deleted", "A|c\r\nme", "Acme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fields{{"insurance_company", tt.value}}.Encode()
			if got != "insurance_company="+tt.want {
				t.Errorf("Encode() = %q, want value %q", got, tt.want)
			}
		})
	}
}

func TestEncodeNeverLeaksDelimiter(t *testing.T) {
	r := models.Receipt{
		OwnerID:         7,
		OwnerName:       "a|b\nc",
		SentToInsurance: "Acme\r\nGlobex",
		HowWork:         strings.Repeat("|", 50),
	}
	blob := FromReceipt(r, models.StageProcessing).Encode()
	for _, part := range strings.Split(blob, Delimiter) {
		if !strings.Contains(part, "=") {
			t.Errorf("entry %q is not a name=value pair; a value leaked a delimiter", part)
		}
	}
	if strings.ContainsAny(blob, "\r\n") {
		t.Errorf("blob contains a newline: %q", blob)
	}
}

func TestEncodeTruncatesRefundDetails(t *testing.T) {
	r := models.Receipt{
		OwnerID:       7,
		OwnerName:     "alice",
		RefundDetails: strings.Repeat("x", 500),
	}
	blob := FromReceipt(r, models.StageReimbursed).Encode()
	if !strings.Contains(blob, "refund_details="+strings.Repeat("x", 100)+Delimiter) &&
		!strings.HasSuffix(blob, "refund_details="+strings.Repeat("x", 100)) {
		t.Errorf("refund_details not truncated to 100 chars: %q", blob)
	}
	if strings.Contains(blob, strings.Repeat("x", 101)) {
		t.Error("refund_details exceeds 100 chars")
	}
}

func TestAssetID(t *testing.T) {
	tests := []struct {
		name    string
		receipt string
		date    string
		want    string
	}{
		{"plain", "Pharmacy", "2024-01-05", "Pharmacy_2024-01-05"},
		{"spaces stripped", "City Pharmacy", "2024-01-05", "CityPharmacy_2024-01-05"},
		{"specials stripped", "a/b..c!", "2024-01-05", "abc_2024-01-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssetID(tt.receipt, tt.date); got != tt.want {
				t.Errorf("AssetID(%q, %q) = %q, want %q", tt.receipt, tt.date, got, tt.want)
			}
		})
	}
}

func TestAssetIDTruncation(t *testing.T) {
	got := AssetID(strings.Repeat("a", 300), "2024-01-05")
	if len(got) != 200 {
		t.Errorf("len(AssetID) = %d, want 200", len(got))
	}
}

func TestAssetIDDeterministic(t *testing.T) {
	a := AssetID("Pharmacy", "2024-01-05")
	b := AssetID("Pharmacy", "2024-01-05")
	if a != b {
		t.Errorf("AssetID not deterministic: %q vs %q", a, b)
	}
}

func TestLookup(t *testing.T) {
	blob := "user_id=7|username=alice|refund_stage=received"
	tests := []struct {
		key  string
		want string
	}{
		{"user_id", "7"},
		{"username", "alice"},
		{"refund_stage", "received"},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := Lookup(blob, tt.key); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestDateFromAssetID(t *testing.T) {
	if got := DateFromAssetID("Pharmacy_2024-01-05"); got != "2024-01-05" {
		t.Errorf("DateFromAssetID = %q, want 2024-01-05", got)
	}
	if got := DateFromAssetID("no-date-here"); got != "" {
		t.Errorf("DateFromAssetID = %q, want empty", got)
	}
}
