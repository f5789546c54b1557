package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

func (h *HTTPHandler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("auth error",
		zap.String("op", op),
		zap.String("request_id", httpx.RequestIDFrom(r)),
		zap.Error(err),
	)
	httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "server error - contact support", nil)
}

type RegisterReq struct {
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,nanp_phone"`
	Password  string `json:"password" validate:"required,account_password"`
	Role      int    `json:"role" validate:"required,min=1,max=5"`
}

// Register handles POST /register
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	token, u, err := h.service.Register(r.Context(), NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameExists):
			httpx.JSONError(w, http.StatusBadRequest, "USERNAME_EXISTS", "Username exists", nil)
		case errors.Is(err, ErrEmailExists):
			httpx.JSONError(w, http.StatusBadRequest, "EMAIL_EXISTS", "Email exists", nil)
		case errors.Is(err, ErrPhoneExists):
			httpx.JSONError(w, http.StatusBadRequest, "PHONE_EXISTS", "Duplicate phone number not allowed", nil)
		default:
			h.serverError(w, r, "register", err)
		}
		return
	}

	httpx.JSONSuccessCreated(w, map[string]any{
		"access_token": token,
		"user":         u,
	})
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /login
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	token, u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
			return
		}
		h.serverError(w, r, "login", err)
		return
	}

	httpx.JSONSuccess(w, map[string]any{
		"access_token": token,
		"user":         u,
	}, nil)
}

type ChangePasswordReq struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"oldpassword" validate:"required"`
	NewPassword string `json:"newpassword" validate:"required,account_password"`
}

// ChangePassword handles PATCH /changePassword
func (h *HTTPHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	if err := h.service.ChangePassword(r.Context(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
		case errors.Is(err, ErrWrongPassword):
			httpx.JSONError(w, http.StatusUnauthorized, "WRONG_PASSWORD", "Old password does not match", nil)
		default:
			h.serverError(w, r, "change password", err)
		}
		return
	}

	httpx.JSONSuccess(w, map[string]any{"message": "Password updated successfully"}, nil)
}
