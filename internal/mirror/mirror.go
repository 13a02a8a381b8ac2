// Package mirror coordinates the two stores a receipt lives in: the
// external asset store (image + searchable context) and the relational
// record. Writes go to the asset store first; the relational mirror
// follows. There is no transaction spanning both, so the failure order is
// fixed and the one inconsistency this allows is named and logged instead
// of being swallowed.
package mirror

import (
	"context"
	"fmt"
	"log"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/asset"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/metadata"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/refund"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/search"
)

// ReceiptRecords is the slice of the relational store the mirror needs.
type ReceiptRecords interface {
	Upsert(ctx context.Context, rec models.Receipt) error
	Get(ctx context.Context, assetID string) (models.Receipt, bool, error)
	Patch(ctx context.Context, assetID string, fields map[string]any) error
	Delete(ctx context.Context, assetID string) error
}

// PartialMirrorFailure records that the asset store accepted a write but
// the relational mirror did not. The user-visible action succeeded; the
// relational row is stale or missing until reconciled out of band.
type PartialMirrorFailure struct {
	AssetID string
	Err     error
}

func (e *PartialMirrorFailure) Error() string {
	return fmt.Sprintf("asset %s written but relational mirror failed: %v", e.AssetID, e.Err)
}

func (e *PartialMirrorFailure) Unwrap() error { return e.Err }

// Result is one enriched search hit. Receipt is nil when the relational
// row is missing, which can happen inside the accepted inconsistency
// window; the hit's own context blob is all the caller gets then.
type Result struct {
	Hit     asset.Hit       `json:"hit"`
	Receipt *models.Receipt `json:"receipt,omitempty"`
}

// Mirror orchestrates dual-store writes and enriched searches.
type Mirror struct {
	Assets  asset.Store
	Records ReceiptRecords
	Folder  string
}

// Upload writes the image and context to the asset store and then mirrors
// the receipt relationally. An asset-store failure aborts the whole upload
// with no relational write. A relational failure after the asset write is
// returned as a PartialMirrorFailure next to a successful result.
func (m *Mirror) Upload(ctx context.Context, data []byte, rec models.Receipt) (models.Receipt, *PartialMirrorFailure, error) {
	stage := refund.Derive(rec.RefundDetails, rec.SentToInsurance)
	blob := metadata.FromReceipt(rec, stage).Encode()

	res, err := m.Assets.Upload(ctx, data, rec.AssetID, blob)
	if err != nil {
		return models.Receipt{}, nil, err
	}
	rec.SecureURL = res.SecureURL
	if rec.CreatedAt == "" {
		rec.CreatedAt = res.CreatedAt
	}

	if err := m.Records.Upsert(ctx, rec); err != nil {
		partial := &PartialMirrorFailure{AssetID: rec.AssetID, Err: err}
		log.Printf("mirror: %v", partial)
		return rec, partial, nil
	}
	return rec, nil, nil
}

// Update re-encodes the receipt's context, pushes it to the asset store,
// and then patches the named relational columns. Ordering and failure
// isolation match Upload.
func (m *Mirror) Update(ctx context.Context, rec models.Receipt, fields map[string]any) (*PartialMirrorFailure, error) {
	stage := refund.Derive(rec.RefundDetails, rec.SentToInsurance)
	blob := metadata.FromReceipt(rec, stage).Encode()

	if err := m.Assets.UpdateContext(ctx, rec.AssetID, blob); err != nil {
		return nil, err
	}

	if err := m.Records.Patch(ctx, rec.AssetID, fields); err != nil {
		partial := &PartialMirrorFailure{AssetID: rec.AssetID, Err: err}
		log.Printf("mirror: %v", partial)
		return partial, nil
	}
	return nil, nil
}

// Delete removes the asset first and always attempts the relational delete
// afterwards. A relational failure is swallowed with a log line; a failed
// asset delete is surfaced and may leave a dangling relational row for
// out-of-band reconciliation.
func (m *Mirror) Delete(ctx context.Context, assetID string) error {
	assetErr := m.Assets.Delete(ctx, assetID)

	if err := m.Records.Delete(ctx, assetID); err != nil {
		log.Printf("mirror: relational delete of %s failed: %v", assetID, err)
	}
	return assetErr
}

// Search builds the owner-scoped predicate, queries the asset store and
// enriches every hit with its relational row when one exists.
func (m *Mirror) Search(ctx context.Context, f search.Filters, maxResults int) ([]Result, error) {
	expr := search.BuildPredicate(m.Folder, f)
	hits, err := m.Assets.Search(ctx, expr, maxResults)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		r := Result{Hit: h}
		rec, ok, err := m.Records.Get(ctx, h.AssetID)
		if err != nil {
			log.Printf("mirror: enriching %s: %v", h.AssetID, err)
		} else if ok {
			r.Receipt = &rec
		}
		results = append(results, r)
	}
	return results, nil
}
