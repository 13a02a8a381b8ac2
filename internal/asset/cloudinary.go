package asset

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin/search"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/metadata"
)

// CloudinaryStore implements Store against Cloudinary. All assets live in
// one folder; public ids are folder-qualified on the wire but the rest of
// the system only ever sees the bare asset id.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary builds a store client from a cloudinary:// URL.
func NewCloudinary(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("configuring asset store: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// publicID qualifies an asset id with the store folder.
func (s *CloudinaryStore) publicID(assetID string) string {
	return s.folder + "/" + assetID
}

// contextMap builds the context sent alongside an asset. The packed blob is
// the projection itself; the owner id and date are mirrored into discrete
// keys because the search API needs typed access to them for equality and
// range terms. The blob stays authoritative.
func contextMap(assetID, blob string) api.CldAPIMap {
	m := api.CldAPIMap{"meta": blob}
	if v := metadata.Lookup(blob, "user_id"); v != "" {
		m["user_id"] = v
	}
	if v := metadata.DateFromAssetID(assetID); v != "" {
		m["date"] = v
	}
	return m
}

// Upload stores the image bytes under the asset id, overwriting any
// previous asset with the same id.
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, assetID, contextBlob string) (UploadResult, error) {
	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:  s.publicID(assetID),
		Overwrite: api.Bool(true),
		Context:   contextMap(assetID, contextBlob),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("asset upload %s: %w", assetID, err)
	}
	return UploadResult{
		AssetID:   assetID,
		SecureURL: resp.SecureURL,
		CreatedAt: resp.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}

// Search runs a query expression and returns the matching assets.
func (s *CloudinaryStore) Search(ctx context.Context, expression string, maxResults int) ([]Hit, error) {
	resp, err := s.cld.Admin.Search(ctx, search.Query{
		Expression: expression,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("asset search: %w", err)
	}

	hits := make([]Hit, 0, len(resp.Assets))
	for _, a := range resp.Assets {
		hit := Hit{
			AssetID:   trimFolder(a.PublicID, s.folder),
			SecureURL: a.SecureURL,
			CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if v, ok := a.Context["meta"]; ok {
			hit.Context = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// UpdateContext replaces the asset's context with a fresh projection.
func (s *CloudinaryStore) UpdateContext(ctx context.Context, assetID, contextBlob string) error {
	_, err := s.cld.Upload.Explicit(ctx, uploader.ExplicitParams{
		PublicID: s.publicID(assetID),
		Type:     "upload",
		Context:  contextMap(assetID, contextBlob),
	})
	if err != nil {
		return fmt.Errorf("asset context update %s: %w", assetID, err)
	}
	return nil
}

// Delete removes the asset and its context.
func (s *CloudinaryStore) Delete(ctx context.Context, assetID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: s.publicID(assetID),
	})
	if err != nil {
		return fmt.Errorf("asset delete %s: %w", assetID, err)
	}
	return nil
}

// trimFolder strips the folder qualifier off a public id.
func trimFolder(publicID, folder string) string {
	prefix := folder + "/"
	if len(publicID) > len(prefix) && publicID[:len(prefix)] == prefix {
		return publicID[len(prefix):]
	}
	return publicID
}
