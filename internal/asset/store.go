// Package asset is the portal's view of the external asset store. The rest
// of the system only sees the four operations below; everything
// store-specific stays behind them.
package asset

import "context"

// UploadResult is what the store reports back for a stored image.
type UploadResult struct {
	AssetID   string
	SecureURL string
	CreatedAt string
}

// Hit is one search result. Context carries the packed metadata blob the
// store holds for the asset; it is best-effort and may be stale or empty.
type Hit struct {
	AssetID   string
	SecureURL string
	Context   string
	CreatedAt string
}

// Store holds image bytes plus one searchable text context per asset.
type Store interface {
	Upload(ctx context.Context, data []byte, assetID, contextBlob string) (UploadResult, error)
	Search(ctx context.Context, expression string, maxResults int) ([]Hit, error)
	UpdateContext(ctx context.Context, assetID, contextBlob string) error
	Delete(ctx context.Context, assetID string) error
}
