package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/api/validation"
	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/identity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler handles registration, login and account verification.
type AuthHandler struct {
	identityService *identity.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identityService *identity.Service) *AuthHandler {
	return &AuthHandler{identityService: identityService}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req identity.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, hive.InvalidRequest("Request body must be valid JSON"))
		return
	}

	fieldErrors := validation.ValidateRegisterRequest(validation.RegisterRequest{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
	})
	if len(fieldErrors) > 0 {
		response.Error(w, hive.InvalidRequest("%s", validation.Join(fieldErrors)))
		return
	}

	resp, err := h.identityService.Register(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, hive.InvalidRequest("Request body must be valid JSON"))
		return
	}

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.Error(w, hive.InvalidRequest("%s", validation.Join(fieldErrors)))
		return
	}

	resp, err := h.identityService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// VerifyAccount handles GET|POST /api/v1/auth/accountVerification/{token}.
func (h *AuthHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	rawToken := chi.URLParam(r, "token")

	if err := h.identityService.VerifyAccount(r.Context(), rawToken); err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Account activated successfully"})
}
