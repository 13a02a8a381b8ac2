// Package metadata projects structured receipt metadata into the single
// text context field the asset store keeps next to each image, and derives
// the deterministic asset identifier a receipt is stored under.
package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
)

// Delimiter separates entries in the encoded context blob. It is deleted
// from every value before encoding so the blob stays splittable.
const Delimiter = "|"

// maxRefundDetails caps the refund_details entry; the store's context field
// is not a document store and long JSON tails add nothing to search.
const maxRefundDetails = 100

// maxAssetIDLen caps the derived asset identifier.
const maxAssetIDLen = 200

var (
	assetIDUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	valueCleaner  = strings.NewReplacer(Delimiter, "", "\n", "", "\r", "")
)

// Field is one name/value entry of the context projection.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered list of context entries. Order is part of the wire
// format: consumers anchor substring matches on it.
type Fields []Field

// Encode packs the fields into the context blob. Empty values are skipped
// entirely (no "name=" placeholder) and every emitted value has the
// delimiter and both newline variants deleted.
func (f Fields) Encode() string {
	parts := make([]string, 0, len(f))
	for _, fld := range f {
		v := valueCleaner.Replace(fld.Value)
		if v == "" {
			continue
		}
		parts = append(parts, fld.Key+"="+v)
	}
	return strings.Join(parts, Delimiter)
}

// FromReceipt builds the ordered context fields for a receipt. The first
// three entries are always present; the rest appear only when non-empty.
func FromReceipt(r models.Receipt, stage models.RefundStage) Fields {
	details := r.RefundDetails
	if len(details) > maxRefundDetails {
		details = details[:maxRefundDetails]
	}
	familyCount := ""
	if r.FamilyCount > 0 {
		familyCount = strconv.Itoa(r.FamilyCount)
	}
	return Fields{
		{"user_id", strconv.FormatUint(uint64(r.OwnerID), 10)},
		{"username", r.OwnerName},
		{"refund_stage", string(stage)},
		{"refund_details", details},
		{"sent_to_insurance", r.SentToInsurance},
		{"insurance_company", r.InsuranceCo},
		{"account_username", r.AccountUsername},
		{"family_count", familyCount},
		{"family_names", r.FamilyNames},
		{"how_work", r.HowWork},
	}
}

// AssetID derives the identifier a receipt is stored under from its name
// and date. The derivation is deterministic on purpose: re-uploading the
// same name on the same date overwrites the previous asset.
func AssetID(name, date string) string {
	id := assetIDUnsafe.ReplaceAllString(name+"_"+date, "")
	if len(id) > maxAssetIDLen {
		id = id[:maxAssetIDLen]
	}
	return id
}

// SanitizeTerm strips a search term down to the characters allowed in asset
// identifiers. Used for name filters, which match against asset ids.
func SanitizeTerm(s string) string {
	return assetIDUnsafe.ReplaceAllString(s, "")
}

// Lookup returns the value of key inside an encoded blob, or "" when the
// entry is absent. The blob is not round-tripped anywhere; this exists so
// store adapters can lift single entries into typed search terms.
func Lookup(blob, key string) string {
	for _, part := range strings.Split(blob, Delimiter) {
		if v, ok := strings.CutPrefix(part, key+"="); ok {
			return v
		}
	}
	return ""
}

var assetIDDate = regexp.MustCompile(`_(\d{4}-\d{2}-\d{2})$`)

// DateFromAssetID recovers the YYYY-MM-DD suffix embedded in an asset
// identifier, or "" when the id does not carry one.
func DateFromAssetID(id string) string {
	m := assetIDDate.FindStringSubmatch(id)
	if m == nil {
		return ""
	}
	return m[1]
}
