package http

import (
	"log/slog"
	"net/http"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httputil"
	"github.com/No25ha/Market/pkg/validator"
)

// SessionHandler handles sign-in, sign-up and account endpoints.
type SessionHandler struct {
	session   SessionService
	passwords PasswordResetter
	logger    *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(session SessionService, passwords PasswordResetter, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{session: session, passwords: passwords, logger: logger}
}

// --- Request DTOs ---

// ForgotPasswordRequest asks for a reset code by email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyResetCodeRequest carries the emailed reset code.
type VerifyResetCodeRequest struct {
	ResetCode string `json:"resetCode" validate:"required"`
}

// ResetPasswordRequest sets a new password after a verified reset code.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// --- Handlers ---

// Get handles GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.session.Snapshot())
}

// SignIn handles POST /api/v1/session/signin
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sess, err := h.session.SignIn(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, sess)
}

// SignUp handles POST /api/v1/session/signup
func (h *SessionHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sess, err := h.session.SignUp(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, sess)
}

// Logout handles POST /api/v1/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.session.Logout(r.Context()))
}

// UpdateProfile handles PUT /api/v1/session/profile
func (h *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.ProfileUpdate
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sess, err := h.session.SaveProfile(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, sess)
}

// ChangePassword handles PUT /api/v1/session/password
func (h *SessionHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordChange
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sess, err := h.session.ChangePassword(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, sess)
}

// ForgotPassword handles POST /api/v1/session/password/forgot
func (h *SessionHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.passwords.ForgotPassword(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, messageResponse{Message: "Reset code sent to your email"})
}

// VerifyResetCode handles POST /api/v1/session/password/verify
func (h *SessionHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyResetCodeRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.passwords.VerifyResetCode(r.Context(), req.ResetCode); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, messageResponse{Message: "Reset code verified"})
}

// ResetPassword handles PUT /api/v1/session/password/reset. The shopper
// signs in with the new password afterwards; the session is not changed.
func (h *SessionHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if _, err := h.passwords.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, messageResponse{Message: "Password has been reset"})
}
