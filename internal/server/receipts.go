package server

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/authz"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/httpx"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/metadata"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/refund"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/search"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/store"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/validate"
)

const (
	defaultSearchLimit = 50
	listingLimit       = 100
)

// uploadResponse is what a successful upload reports back. OCRText is
// best-effort and empty when recognition is disabled or failed.
type uploadResponse struct {
	Receipt models.Receipt `json:"receipt"`
	OCRText string         `json:"ocr_text,omitempty"`
}

// uploadReceipt accepts a multipart image plus metadata fields, writes the
// asset store first and mirrors the relational record on success.
func (a *App) uploadReceipt(c *fiber.Ctx) error {
	caller, ok := a.currentUser(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "authentication required")
	}

	name := strings.TrimSpace(c.FormValue("name"))
	date := c.FormValue("date")
	if err := validate.ReceiptName(name); err != nil {
		return httpx.Error(c, http.StatusBadRequest, err.Error())
	}
	if err := validate.ReceiptDate(date); err != nil {
		return httpx.Error(c, http.StatusBadRequest, err.Error())
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return httpx.Error(c, http.StatusBadRequest, "image: required")
	}
	f, err := fh.Open()
	if err != nil {
		return httpx.Error(c, http.StatusBadRequest, "image: unreadable")
	}
	// Buffer the full image: the asset upload consumes a reader and the
	// recognizer needs the same bytes afterwards.
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return httpx.Error(c, http.StatusBadRequest, "image: unreadable")
	}
	if err := validate.Image(fh.Filename, data, a.MaxUploadSize); err != nil {
		return httpx.Error(c, http.StatusBadRequest, err.Error())
	}

	familyCount, _ := strconv.Atoi(c.FormValue("family_count"))
	rec := models.Receipt{
		AssetID:         metadata.AssetID(name, date),
		OwnerID:         caller.OwnerID,
		OwnerName:       caller.DisplayName,
		Name:            name,
		Date:            date,
		SentToInsurance: c.FormValue("sent_to_insurance"),
		RefundDetails:   c.FormValue("refund_details"),
		InsuranceCo:     c.FormValue("insurance_company"),
		AccountUsername: c.FormValue("account_username"),
		FamilyCount:     familyCount,
		FamilyNames:     c.FormValue("family_names"),
		HowWork:         c.FormValue("how_work"),
		CreatedAt:       store.NowISO(),
	}

	rec, _, err = a.Mirror.Upload(c.Context(), data, rec)
	if err != nil {
		log.Printf("upload %s: %v", rec.AssetID, err)
		return httpx.Error(c, http.StatusBadGateway, "asset store rejected the upload")
	}
	a.Cache.Invalidate(c.Context(), caller.OwnerID)

	if a.Archive != nil {
		if err := a.Archive.Put(c.Context(), caller.OwnerID, rec.AssetID, fh.Filename, data); err != nil {
			log.Printf("upload %s: archive: %v", rec.AssetID, err)
		}
	}

	resp := uploadResponse{Receipt: rec}
	if a.OCR != nil {
		text, err := a.OCR.RecognizeText(c.Context(), data)
		if err != nil {
			log.Printf("upload %s: ocr: %v", rec.AssetID, err)
		} else {
			resp.OCRText = text
		}
	}
	return httpx.JSON(c, http.StatusOK, resp)
}

// listReceipts powers the dashboard: the caller's receipts, newest first.
func (a *App) listReceipts(c *fiber.Ctx) error {
	caller, ok := a.currentUser(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "authentication required")
	}

	if recs, hit := a.Cache.Get(c.Context(), caller.OwnerID); hit {
		return httpx.JSON(c, http.StatusOK, recs)
	}

	recs, err := a.Receipts.ListByOwner(c.Context(), caller.OwnerID, listingLimit)
	if err != nil {
		log.Printf("list: %v", err)
		return httpx.Error(c, http.StatusInternalServerError, "db error")
	}
	a.Cache.Set(c.Context(), caller.OwnerID, recs)
	return httpx.JSON(c, http.StatusOK, recs)
}

// searchReceipts queries the asset store with an owner-scoped predicate and
// enriches the hits with their relational rows.
func (a *App) searchReceipts(c *fiber.Ctx) error {
	caller, ok := a.currentUser(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "authentication required")
	}

	filters := search.Filters{
		OwnerID:          caller.OwnerID,
		Name:             c.Query("name"),
		Date:             c.Query("date"),
		Stage:            c.Query("stage"),
		InsuranceCompany: c.Query("company"),
	}
	if sent := c.Query("sent"); sent != "" {
		filters.FilterSent = true
		filters.SentToInsurance = sent == "true"
	}
	limit := c.QueryInt("limit", defaultSearchLimit)

	results, err := a.Mirror.Search(c.Context(), filters, limit)
	if err != nil {
		log.Printf("search: %v", err)
		return httpx.Error(c, http.StatusBadGateway, "asset store search failed")
	}
	return httpx.JSON(c, http.StatusOK, results)
}

// updateRequest carries a receipt patch. Pointers distinguish "absent"
// from "set to empty".
type updateRequest struct {
	Name            *string `json:"name"`
	SentToInsurance *string `json:"sent_to_insurance"`
	RefundDetails   *string `json:"refund_details"`
	InsuranceCo     *string `json:"insurance_company"`
	RefundAmount    *string `json:"refund_amount"`
	AccountUsername *string `json:"account_username"`
	FamilyCount     *int    `json:"family_count"`
	FamilyNames     *string `json:"family_names"`
	HowWork         *string `json:"how_work"`
}

// updateReceipt patches a receipt the caller owns. The asset store context
// is refreshed first; the relational patch follows. Supplying an insurance
// company appends a refund-details entry before the stage is recomputed.
func (a *App) updateReceipt(c *fiber.Ctx) error {
	caller, ok := a.currentUser(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "authentication required")
	}
	assetID := c.Params("assetID")

	rec, exists, err := a.Receipts.Get(c.Context(), assetID)
	if err != nil {
		log.Printf("update %s: %v", assetID, err)
		return httpx.Error(c, http.StatusInternalServerError, "db error")
	}
	if err := authz.Authorize(caller.OwnerID, rec.OwnerID, exists); err != nil {
		return httpx.Error(c, http.StatusForbidden, err.Error())
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, http.StatusBadRequest, "invalid json")
	}

	fields := map[string]any{}
	apply := func(col string, val *string, dst *string) {
		if val != nil {
			*dst = *val
			fields[col] = *val
		}
	}
	apply("name", req.Name, &rec.Name)
	apply("sent_to_insurance", req.SentToInsurance, &rec.SentToInsurance)
	apply("refund_details", req.RefundDetails, &rec.RefundDetails)
	apply("account_username", req.AccountUsername, &rec.AccountUsername)
	apply("family_names", req.FamilyNames, &rec.FamilyNames)
	apply("how_work", req.HowWork, &rec.HowWork)
	if req.FamilyCount != nil {
		rec.FamilyCount = *req.FamilyCount
		fields["family_count"] = *req.FamilyCount
	}

	if req.InsuranceCo != nil && strings.TrimSpace(*req.InsuranceCo) != "" {
		amount := ""
		if req.RefundAmount != nil {
			amount = *req.RefundAmount
		}
		details, err := refund.AppendDetail(rec.RefundDetails, *req.InsuranceCo, amount)
		if err != nil {
			return httpx.Error(c, http.StatusBadRequest, "refund_details: malformed")
		}
		rec.InsuranceCo = *req.InsuranceCo
		rec.RefundDetails = details
		fields["insurance_company"] = *req.InsuranceCo
		fields["refund_details"] = details
	}

	if _, err := a.Mirror.Update(c.Context(), rec, fields); err != nil {
		log.Printf("update %s: %v", assetID, err)
		return httpx.Error(c, http.StatusBadGateway, "asset store rejected the update")
	}
	a.Cache.Invalidate(c.Context(), caller.OwnerID)
	return httpx.JSON(c, http.StatusOK, rec)
}

// deleteReceipt removes a receipt the caller owns: asset first, relational
// mirror regardless of the asset outcome.
func (a *App) deleteReceipt(c *fiber.Ctx) error {
	caller, ok := a.currentUser(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "authentication required")
	}
	assetID := c.Params("assetID")

	rec, exists, err := a.Receipts.Get(c.Context(), assetID)
	if err != nil {
		log.Printf("delete %s: %v", assetID, err)
		return httpx.Error(c, http.StatusInternalServerError, "db error")
	}
	if err := authz.Authorize(caller.OwnerID, rec.OwnerID, exists); err != nil {
		// No external delete happens for a denied caller.
		return httpx.Error(c, http.StatusForbidden, err.Error())
	}

	if err := a.Mirror.Delete(c.Context(), assetID); err != nil {
		log.Printf("delete %s: %v", assetID, err)
		return httpx.Error(c, http.StatusBadGateway, "asset store rejected the delete")
	}
	a.Cache.Invalidate(c.Context(), caller.OwnerID)
	return httpx.JSON(c, http.StatusOK, fiber.Map{"status": "deleted"})
}
