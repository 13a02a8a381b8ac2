package search

import (
	"strings"
	"testing"
)

func TestBuildPredicateAlwaysScoped(t *testing.T) {
	got := BuildPredicate("receipts", Filters{OwnerID: 7})
	want := `folder="receipts" AND context.user_id="7"`
	if got != want {
		t.Errorf("BuildPredicate = %q, want %q", got, want)
	}
}

func TestBuildPredicateDateRange(t *testing.T) {
	got := BuildPredicate("receipts", Filters{OwnerID: 7, Date: "2024-01-05"})
	if !strings.Contains(got, `context.date>="2024-01-05"`) {
		t.Errorf("missing lower bound in %q", got)
	}
	if !strings.Contains(got, `context.date<"2024-01-06"`) {
		t.Errorf("missing exclusive upper bound in %q", got)
	}
}

func TestBuildPredicateMonthRollover(t *testing.T) {
	got := BuildPredicate("receipts", Filters{OwnerID: 7, Date: "2024-01-31"})
	if !strings.Contains(got, `context.date<"2024-02-01"`) {
		t.Errorf("upper bound did not roll over the month: %q", got)
	}
}

func TestBuildPredicateInvalidDateDropped(t *testing.T) {
	plain := BuildPredicate("receipts", Filters{OwnerID: 7})
	got := BuildPredicate("receipts", Filters{OwnerID: 7, Date: "not-a-date"})
	if got != plain {
		t.Errorf("invalid date changed the predicate: %q vs %q", got, plain)
	}
}

func TestBuildPredicateNameFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   string // expected wildcard term, "" when absent
	}{
		{"plain", "Pharm", `public_id:"*Pharm*"`},
		{"sanitized", "Pharm/../x", `public_id:"*Pharmx*"`},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPredicate("receipts", Filters{OwnerID: 7, Name: tt.filter})
			if tt.want == "" {
				if strings.Contains(got, "public_id") {
					t.Errorf("blank name filter emitted a term: %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("predicate %q missing %q", got, tt.want)
			}
		})
	}
}

func TestBuildPredicateSentPresence(t *testing.T) {
	present := BuildPredicate("receipts", Filters{OwnerID: 7, FilterSent: true, SentToInsurance: true})
	if !strings.Contains(present, `context.meta:"sent_to_insurance="`) {
		t.Errorf("presence filter missing: %q", present)
	}
	absent := BuildPredicate("receipts", Filters{OwnerID: 7, FilterSent: true, SentToInsurance: false})
	if !strings.Contains(absent, `NOT (context.meta:"sent_to_insurance=")`) {
		t.Errorf("absence filter missing: %q", absent)
	}
}

func TestBuildPredicateCompanySanitized(t *testing.T) {
	got := BuildPredicate("receipts", Filters{OwnerID: 7, InsuranceCompany: `Ac"me & Co`})
	if !strings.Contains(got, `context.meta:"insurance_company=*Acme  Co*"`) {
		t.Errorf("company term not sanitized as expected: %q", got)
	}
}

func TestBuildPredicateStage(t *testing.T) {
	got := BuildPredicate("receipts", Filters{OwnerID: 7, Stage: "reimbursed"})
	if !strings.Contains(got, `context.meta:"refund_stage=reimbursed"`) {
		t.Errorf("stage term missing: %q", got)
	}
}
