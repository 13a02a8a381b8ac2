package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
)

// ReceiptRepo wraps the database handle for receipt operations.
type ReceiptRepo struct {
	DB *gorm.DB
}

// Upsert creates the receipt or, when the asset id already exists, replaces
// every field. Same-name-same-date uploads collide on purpose and the new
// upload wins whole, never as a partial merge.
func (r *ReceiptRepo) Upsert(ctx context.Context, rec models.Receipt) error {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upserting receipt %s: %w", rec.AssetID, err)
	}
	return nil
}

// Get returns the receipt for an asset id. The second return reports
// whether it exists; absence is not an error.
func (r *ReceiptRepo) Get(ctx context.Context, assetID string) (models.Receipt, bool, error) {
	var rec models.Receipt
	err := r.DB.WithContext(ctx).First(&rec, "asset_id = ?", assetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Receipt{}, false, nil
	}
	if err != nil {
		return models.Receipt{}, false, fmt.Errorf("loading receipt %s: %w", assetID, err)
	}
	return rec, true, nil
}

// Patch updates only the named columns and leaves everything else as is.
func (r *ReceiptRepo) Patch(ctx context.Context, assetID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.DB.WithContext(ctx).
		Model(&models.Receipt{}).
		Where("asset_id = ?", assetID).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("patching receipt %s: %w", assetID, err)
	}
	return nil
}

// Delete removes the receipt. Deleting an asset id that does not exist is
// not an error.
func (r *ReceiptRepo) Delete(ctx context.Context, assetID string) error {
	err := r.DB.WithContext(ctx).
		Delete(&models.Receipt{}, "asset_id = ?", assetID).Error
	if err != nil {
		return fmt.Errorf("deleting receipt %s: %w", assetID, err)
	}
	return nil
}

// ListByOwner returns the owner's receipts, most recent first.
func (r *ReceiptRepo) ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.Receipt, error) {
	var recs []models.Receipt
	err := r.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing receipts for owner %d: %w", ownerID, err)
	}
	return recs, nil
}
