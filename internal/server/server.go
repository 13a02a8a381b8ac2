// Package server wires the portal's HTTP surface: account handling and the
// receipt upload/search/update/delete actions.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/archive"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/cache"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/httpx"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/mirror"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/ocr"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/session"
)

// UserDirectory is the slice of the relational store the handlers need for
// accounts.
type UserDirectory interface {
	Create(ctx context.Context, u *models.User) error
	ByDisplayName(ctx context.Context, name string) (models.User, bool, error)
	ByID(ctx context.Context, ownerID uint) (models.User, bool, error)
	UpdateProfile(ctx context.Context, ownerID uint, fields map[string]any) error
}

// ReceiptReader is the read side of the receipts table used directly by
// handlers; every write goes through the mirror.
type ReceiptReader interface {
	Get(ctx context.Context, assetID string) (models.Receipt, bool, error)
	ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.Receipt, error)
}

// App holds the application state shared by all handlers.
type App struct {
	Users         UserDirectory
	Receipts      ReceiptReader
	Mirror        *mirror.Mirror
	Signer        *session.Signer
	SessionMaxAge time.Duration
	Cache         *cache.Listings    // nil disables caching
	Archive       *archive.Archiver  // nil disables archival
	OCR           ocr.Recognizer     // nil disables recognition
	MaxUploadSize int64
}

// Routes registers every handler on the fiber app.
func (a *App) Routes(app *fiber.App) {
	app.Use(httpx.RequestID())

	app.Get("/healthz", a.health)
	app.Post("/signup", a.signup)
	app.Post("/login", a.login)
	app.Post("/logout", a.logout)
	app.Get("/profile", a.profile)
	app.Put("/profile", a.updateProfile)

	app.Post("/receipts", a.uploadReceipt)
	app.Get("/receipts", a.listReceipts)
	app.Get("/receipts/search", a.searchReceipts)
	app.Patch("/receipts/:assetID", a.updateReceipt)
	app.Delete("/receipts/:assetID", a.deleteReceipt)
}

// health confirms the service is up.
func (a *App) health(c *fiber.Ctx) error {
	return httpx.JSON(c, http.StatusOK, fiber.Map{"status": "ok"})
}

// identity is the authenticated caller derived from the session cookies.
type identity struct {
	OwnerID     uint
	DisplayName string
}

// currentUser resolves both session cookies. A request is authenticated
// only when both claims verify; any missing or invalid cookie makes the
// caller anonymous.
func (a *App) currentUser(c *fiber.Ctx) (identity, bool) {
	ownerTok := c.Cookies(session.CookieOwnerID)
	nameTok := c.Cookies(session.CookieDisplayName)
	if ownerTok == "" || nameTok == "" {
		return identity{}, false
	}

	ownerStr, err := a.Signer.Verify(ownerTok, a.SessionMaxAge)
	if err != nil {
		return identity{}, false
	}
	name, err := a.Signer.Verify(nameTok, a.SessionMaxAge)
	if err != nil {
		return identity{}, false
	}

	ownerID, err := strconv.ParseUint(ownerStr, 10, 64)
	if err != nil {
		return identity{}, false
	}
	return identity{OwnerID: uint(ownerID), DisplayName: name}, true
}

// setSession signs and sets both session cookies.
func (a *App) setSession(c *fiber.Ctx, ownerID uint, displayName string) error {
	ownerTok, err := a.Signer.Sign(strconv.FormatUint(uint64(ownerID), 10))
	if err != nil {
		return err
	}
	nameTok, err := a.Signer.Sign(displayName)
	if err != nil {
		return err
	}
	expires := time.Now().Add(a.SessionMaxAge)
	c.Cookie(&fiber.Cookie{
		Name: session.CookieOwnerID, Value: ownerTok,
		Expires: expires, HTTPOnly: true, SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name: session.CookieDisplayName, Value: nameTok,
		Expires: expires, HTTPOnly: true, SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// clearSession expires both session cookies.
func (a *App) clearSession(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	for _, name := range []string{session.CookieOwnerID, session.CookieDisplayName} {
		c.Cookie(&fiber.Cookie{
			Name: name, Value: "",
			Expires: expired, HTTPOnly: true, SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}
