package mirror

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/asset"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/search"
)

// fakeAssets records calls and can be told to fail individual operations.
type fakeAssets struct {
	uploads       []string // asset ids
	contexts      map[string]string
	deletes       []string
	searchHits    []asset.Hit
	failUpload    error
	failUpdate    error
	failDelete    error
	failSearch    error
	lastExpr      string
	lastMaxResult int
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{contexts: make(map[string]string)}
}

func (f *fakeAssets) Upload(_ context.Context, _ []byte, assetID, blob string) (asset.UploadResult, error) {
	if f.failUpload != nil {
		return asset.UploadResult{}, f.failUpload
	}
	f.uploads = append(f.uploads, assetID)
	f.contexts[assetID] = blob
	return asset.UploadResult{
		AssetID:   assetID,
		SecureURL: "https://assets.example/" + assetID,
		CreatedAt: "2024-01-05T10:00:00Z",
	}, nil
}

func (f *fakeAssets) Search(_ context.Context, expr string, maxResults int) ([]asset.Hit, error) {
	f.lastExpr = expr
	f.lastMaxResult = maxResults
	if f.failSearch != nil {
		return nil, f.failSearch
	}
	return f.searchHits, nil
}

func (f *fakeAssets) UpdateContext(_ context.Context, assetID, blob string) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	f.contexts[assetID] = blob
	return nil
}

func (f *fakeAssets) Delete(_ context.Context, assetID string) error {
	f.deletes = append(f.deletes, assetID)
	return f.failDelete
}

// fakeRecords is an in-memory relational mirror.
type fakeRecords struct {
	mu         sync.RWMutex
	rows       map[string]models.Receipt
	patches    map[string]map[string]any
	failUpsert error
	failPatch  error
	failDelete error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		rows:    make(map[string]models.Receipt),
		patches: make(map[string]map[string]any),
	}
}

func (f *fakeRecords) Upsert(_ context.Context, rec models.Receipt) error {
	if f.failUpsert != nil {
		return f.failUpsert
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[rec.AssetID] = rec
	return nil
}

func (f *fakeRecords) Get(_ context.Context, assetID string) (models.Receipt, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	rec, ok := f.rows[assetID]
	return rec, ok, nil
}

func (f *fakeRecords) Patch(_ context.Context, assetID string, fields map[string]any) error {
	if f.failPatch != nil {
		return f.failPatch
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches[assetID] = fields
	return nil
}

func (f *fakeRecords) Delete(_ context.Context, assetID string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, assetID)
	return nil
}

func newMirror(a *fakeAssets, r *fakeRecords) *Mirror {
	return &Mirror{Assets: a, Records: r, Folder: "receipts"}
}

func pharmacyReceipt() models.Receipt {
	return models.Receipt{
		AssetID:   "Pharmacy_2024-01-05",
		OwnerID:   7,
		OwnerName: "alice",
		Name:      "Pharmacy",
		Date:      "2024-01-05",
	}
}

func TestUploadWritesBothStores(t *testing.T) {
	assets, records := newFakeAssets(), newFakeRecords()
	m := newMirror(assets, records)

	rec, partial, err := m.Upload(context.Background(), []byte("img"), pharmacyReceipt())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if partial != nil {
		t.Fatalf("unexpected partial failure: %v", partial)
	}
	if rec.SecureURL != "https://assets.example/Pharmacy_2024-01-05" {
		t.Errorf("SecureURL = %q", rec.SecureURL)
	}
	stored, ok, _ := records.Get(context.Background(), "Pharmacy_2024-01-05")
	if !ok {
		t.Fatal("relational row missing after upload")
	}
	if stored.OwnerID != 7 {
		t.Errorf("OwnerID = %d, want 7", stored.OwnerID)
	}
	blob := assets.contexts["Pharmacy_2024-01-05"]
	if !strings.Contains(blob, "refund_stage=received") {
		t.Errorf("context blob missing derived stage: %q", blob)
	}
}

func TestUploadAssetFailureAbortsEverything(t *testing.T) {
	assets, records := newFakeAssets(), newFakeRecords()
	assets.failUpload = errors.New("store unreachable")
	m := newMirror(assets, records)

	_, partial, err := m.Upload(context.Background(), []byte("img"), pharmacyReceipt())
	if err == nil {
		t.Fatal("Upload succeeded, want error")
	}
	if partial != nil {
		t.Errorf("partial failure reported for an aborted upload: %v", partial)
	}
	if _, ok, _ := records.Get(context.Background(), "Pharmacy_2024-01-05"); ok {
		t.Error("relational row written despite asset failure")
	}
}

func TestUploadRelationalFailureIsPartial(t *testing.T) {
	assets, records := newFakeAssets(), newFakeRecords()
	records.failUpsert = errors.New("db down")
	m := newMirror(assets, records)

	rec, partial, err := m.Upload(context.Background(), []byte("img"), pharmacyReceipt())
	if err != nil {
		t.Fatalf("Upload returned hard error for a mirror-only failure: %v", err)
	}
	if partial == nil {
		t.Fatal("expected PartialMirrorFailure")
	}
	if partial.AssetID != "Pharmacy_2024-01-05" {
		t.Errorf("partial.AssetID = %q", partial.AssetID)
	}
	if !errors.Is(partial, records.failUpsert) {
		t.Error("partial failure does not wrap the underlying error")
	}
	if rec.SecureURL == "" {
		t.Error("successful asset write not reflected on the result")
	}
}

func TestUpdateOrdering(t *testing.T) {
	assets, records := newFakeAssets(), newFakeRecords()
	assets.failUpdate = errors.New("store rejected context")
	m := newMirror(assets, records)

	rec := pharmacyReceipt()
	rec.InsuranceCo = "Acme"
	_, err := m.Update(context.Background(), rec, map[string]any{"insurance_company": "Acme"})
	if err == nil {
		t.Fatal("Update succeeded, want error")
	}
	if len(records.patches) != 0 {
		t.Error("relational patch applied despite asset-store failure")
	}
}

func TestUpdateRelationalFailureIsPartial(t *testing.T) {
	assets, records := newFakeAssets(), newFakeRecords()
	records.failPatch = errors.New("db down")
	m := newMirror(assets, records)

	partial, err := m.Update(context.Background(), pharmacyReceipt(), map[string]any{"name": "x"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if partial == nil {
		t.Fatal("expected PartialMirrorFailure")
	}
}

func TestDeleteAlwaysAttemptsRelational(t *testing.T) {
	assets, records := newFakeAssets(), newFakeRecords()
	assets.failDelete = errors.New("store unreachable")
	m := newMirror(assets, records)

	records.rows["Pharmacy_2024-01-05"] = pharmacyReceipt()
	err := m.Delete(context.Background(), "Pharmacy_2024-01-05")
	if err == nil {
		t.Fatal("Delete swallowed the asset-store failure")
	}
	if _, ok, _ := records.Get(context.Background(), "Pharmacy_2024-01-05"); ok {
		t.Error("relational delete not attempted after asset failure")
	}
}

func TestDeleteSwallowsRelationalFailure(t *testing.T) {
	assets, records := newFakeAssets(), newFakeRecords()
	records.failDelete = errors.New("db down")
	m := newMirror(assets, records)

	if err := m.Delete(context.Background(), "Pharmacy_2024-01-05"); err != nil {
		t.Errorf("Delete = %v, want nil when only the relational side fails", err)
	}
	if len(assets.deletes) != 1 {
		t.Errorf("asset delete called %d times, want 1", len(assets.deletes))
	}
}

func TestSearchEnrichesHits(t *testing.T) {
	assets, records := newFakeAssets(), newFakeRecords()
	assets.searchHits = []asset.Hit{
		{AssetID: "Pharmacy_2024-01-05", Context: "user_id=7|username=alice|refund_stage=received"},
		{AssetID: "Dentist_2024-02-01"}, // no relational row: inconsistency window
	}
	records.rows["Pharmacy_2024-01-05"] = pharmacyReceipt()
	m := newMirror(assets, records)

	results, err := m.Search(context.Background(), search.Filters{OwnerID: 7}, 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Receipt == nil || results[0].Receipt.OwnerID != 7 {
		t.Error("first hit not enriched with its relational row")
	}
	if results[1].Receipt != nil {
		t.Error("hit without a relational row should carry a nil receipt")
	}
	if !strings.Contains(assets.lastExpr, `context.user_id="7"`) {
		t.Errorf("search expression not owner-scoped: %q", assets.lastExpr)
	}
	if assets.lastMaxResult != 50 {
		t.Errorf("maxResults = %d, want 50", assets.lastMaxResult)
	}
}
