package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mkarpenko/campushub/internal/email"
	"github.com/mkarpenko/campushub/internal/otp"
	"github.com/mkarpenko/campushub/internal/store"
)

type OTPHandler struct {
	codes       *otp.Store
	users       *store.UserStore
	emailClient *email.Client
	logger      *slog.Logger
}

func NewOTPHandler(codes *otp.Store, users *store.UserStore, emailClient *email.Client, logger *slog.Logger) *OTPHandler {
	return &OTPHandler{
		codes:       codes,
		users:       users,
		emailClient: emailClient,
		logger:      logger,
	}
}

// Request issues a verification code for a registered email. The response is
// the same whether or not the email exists, to prevent account enumeration.
func (h *OTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "email is required")
		return
	}

	ack := map[string]string{"message": "if that email is registered, a code has been sent"}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("otp user lookup", "error", err)
		writeJSON(w, http.StatusOK, ack)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, ack)
		return
	}

	code, err := h.codes.Issue(req.Email)
	if err != nil {
		h.logger.Error("issue otp code", "error", err)
		writeJSON(w, http.StatusOK, ack)
		return
	}

	if h.emailClient != nil && h.emailClient.Configured() {
		if err := h.emailClient.SendVerificationCode(req.Email, code); err != nil {
			h.logger.Error("send otp code", "error", err)
		}
	} else {
		h.logger.Info("verification code generated", "email", req.Email, "code", code)
	}

	writeJSON(w, http.StatusOK, ack)
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "email and code are required")
		return
	}

	if err := h.codes.Verify(req.Email, req.Code); err != nil {
		kind := "code_invalid"
		if errors.Is(err, otp.ErrTooManyAttempts) {
			kind = "too_many_attempts"
		}
		writeError(w, http.StatusBadRequest, kind, err.Error())
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_unavailable", "persistence layer unavailable")
		return
	}
	if user != nil {
		if err := h.users.MarkEmailVerified(user.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "store_unavailable", "persistence layer unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}
