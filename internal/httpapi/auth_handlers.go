package httpapi

import (
	"net/http"
	"strings"
	"time"

	"zonegrid.org/internal/audit"
	"zonegrid.org/internal/auth"
)

type tokenRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Zone   string `json:"zone"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   string `json:"expires_at"`
}

func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	// Issuance secret travels in a header, never in the body.
	if a.tokens.ElevationRequired() {
		if err := a.tokens.VerifyElevation(r.Header.Get("X-Auth-Secret")); err != nil {
			handleDomainError(w, r, err)
			return
		}
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "userId is required")
		return
	}

	token, expires, err := a.tokens.Issue(userID, auth.Role(strings.TrimSpace(req.Role)), strings.TrimSpace(req.Zone))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"user_id": userID,
		"role":    req.Role,
		"zone":    req.Zone,
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(a.tokens.TTL().Seconds()),
		ExpiresAt:   expires.Format(time.RFC3339),
	})
}
