package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/metadata"
)

// Store-facing field names. "meta" is the context key the packed blob is
// stored under; user_id and date are the typed copies the adapter mirrors
// next to it.
const (
	FieldFolder  = "folder"
	FieldAssetID = "public_id"
	FieldOwner   = "context.user_id"
	FieldDate    = "context.date"
	FieldBlob    = "context.meta"
)

var companyUnsafe = regexp.MustCompile(`[^A-Za-z0-9_ -]`)

// Filters describes an owner-scoped receipt search. Zero values mean "no
// filter" for every optional field.
type Filters struct {
	OwnerID          uint
	Name             string
	Date             string // YYYY-MM-DD; invalid values are ignored
	Stage            string
	SentToInsurance  bool // only consulted when FilterSent is set
	FilterSent       bool
	InsuranceCompany string
}

// BuildPredicate assembles the search expression for a filter set. The
// folder scope and owner scope are always present; everything else is
// appended only when the filter survives sanitization. Invalid dates and
// blank terms are dropped silently rather than rejected.
func BuildPredicate(folder string, f Filters) string {
	owner := strconv.FormatUint(uint64(f.OwnerID), 10)
	terms := []Expr{
		Eq(FieldFolder, folder),
		Eq(FieldOwner, owner),
	}

	if name := metadata.SanitizeTerm(strings.TrimSpace(f.Name)); name != "" {
		terms = append(terms, Match(FieldAssetID, "*"+name+"*"))
	}

	if d, err := time.Parse("2006-01-02", f.Date); err == nil {
		next := d.AddDate(0, 0, 1).Format("2006-01-02")
		terms = append(terms, Gte(FieldDate, f.Date), Lt(FieldDate, next))
	}

	if stage := strings.TrimSpace(f.Stage); stage != "" {
		terms = append(terms, Match(FieldBlob, "refund_stage="+metadata.SanitizeTerm(stage)))
	}

	if f.FilterSent {
		sent := Match(FieldBlob, "sent_to_insurance=")
		if f.SentToInsurance {
			terms = append(terms, sent)
		} else {
			terms = append(terms, Not(sent))
		}
	}

	if co := companyUnsafe.ReplaceAllString(strings.TrimSpace(f.InsuranceCompany), ""); co != "" {
		terms = append(terms, Match(FieldBlob, "insurance_company=*"+co+"*"))
	}

	return Render(And(terms...))
}
