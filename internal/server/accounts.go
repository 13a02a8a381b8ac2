package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/httpx"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
	"github.com/kylejryan/receipt-reimbursement-portal/internal/store"
)

type accountRequest struct {
	DisplayName        string `json:"display_name"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	FamilyMembers      string `json:"family_members"`
	InsuranceCompanies string `json:"insurance_companies"`
}

// signup creates an account and opens a session for it.
func (a *App) signup(c *fiber.Ctx) error {
	var req accountRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, http.StatusBadRequest, "invalid json")
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return httpx.Error(c, http.StatusBadRequest, "display_name: required")
	}

	if _, exists, err := a.Users.ByDisplayName(c.Context(), name); err != nil {
		log.Printf("signup: %v", err)
		return httpx.Error(c, http.StatusInternalServerError, "db error")
	} else if exists {
		return httpx.Error(c, http.StatusBadRequest, "display name already taken")
	}

	user := models.User{
		DisplayName:        name,
		Phone:              req.Phone,
		Email:              req.Email,
		FamilyMembers:      req.FamilyMembers,
		InsuranceCompanies: req.InsuranceCompanies,
		CreatedAt:          store.NowISO(),
	}
	if err := a.Users.Create(c.Context(), &user); err != nil {
		log.Printf("signup: %v", err)
		return httpx.Error(c, http.StatusInternalServerError, "db error")
	}

	if err := a.setSession(c, user.OwnerID, user.DisplayName); err != nil {
		log.Printf("signup: session: %v", err)
		return httpx.Error(c, http.StatusInternalServerError, "session error")
	}
	return httpx.JSON(c, http.StatusCreated, user)
}

// login opens a session for an existing display name.
func (a *App) login(c *fiber.Ctx) error {
	var req accountRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, http.StatusBadRequest, "invalid json")
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return httpx.Error(c, http.StatusBadRequest, "display_name: required")
	}

	user, exists, err := a.Users.ByDisplayName(c.Context(), name)
	if err != nil {
		log.Printf("login: %v", err)
		return httpx.Error(c, http.StatusInternalServerError, "db error")
	}
	if !exists {
		return httpx.Error(c, http.StatusUnauthorized, "unknown display name")
	}

	if err := a.setSession(c, user.OwnerID, user.DisplayName); err != nil {
		log.Printf("login: session: %v", err)
		return httpx.Error(c, http.StatusInternalServerError, "session error")
	}
	return httpx.JSON(c, http.StatusOK, user)
}

// logout clears both session cookies.
func (a *App) logout(c *fiber.Ctx) error {
	a.clearSession(c)
	return httpx.JSON(c, http.StatusOK, fiber.Map{"status": "logged out"})
}

// profile returns the caller's account.
func (a *App) profile(c *fiber.Ctx) error {
	caller, ok := a.currentUser(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "authentication required")
	}
	user, exists, err := a.Users.ByID(c.Context(), caller.OwnerID)
	if err != nil {
		log.Printf("profile: %v", err)
		return httpx.Error(c, http.StatusInternalServerError, "db error")
	}
	if !exists {
		return httpx.Error(c, http.StatusUnauthorized, "authentication required")
	}
	return httpx.JSON(c, http.StatusOK, user)
}

// updateProfile patches the caller's contact fields. The owner id and
// display name are immutable here.
func (a *App) updateProfile(c *fiber.Ctx) error {
	caller, ok := a.currentUser(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		Phone              *string `json:"phone"`
		Email              *string `json:"email"`
		FamilyMembers      *string `json:"family_members"`
		InsuranceCompanies *string `json:"insurance_companies"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, http.StatusBadRequest, "invalid json")
	}

	fields := map[string]any{}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.FamilyMembers != nil {
		fields["family_members"] = *req.FamilyMembers
	}
	if req.InsuranceCompanies != nil {
		fields["insurance_companies"] = *req.InsuranceCompanies
	}

	if err := a.Users.UpdateProfile(c.Context(), caller.OwnerID, fields); err != nil {
		log.Printf("profile update: %v", err)
		return httpx.Error(c, http.StatusInternalServerError, "db error")
	}
	return httpx.JSON(c, http.StatusOK, fiber.Map{"status": "updated"})
}
