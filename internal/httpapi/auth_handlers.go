package httpapi

import (
	"net/http"
	"time"

	"rfpdesk.io/internal/account"
	"rfpdesk.io/internal/obs"
)

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type registerResponse struct {
	User *account.User `json:"user"`
	// VerificationToken is returned directly until a mail sender is
	// wired in. TODO: deliver via email and drop it from the payload.
	VerificationToken string    `json:"verification_token"`
	ExpiresAt         time.Time `json:"expires_at"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, tok, err := a.accounts.Register(r.Context(), account.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		User:              user,
		VerificationToken: tok.Token,
		ExpiresAt:         tok.ExpiresAt,
	})
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (a *API) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.accounts.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *account.User `json:"user"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sess, user, err := a.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		obs.ObserveLogin("denied")
		writeServiceError(w, r, err)
		return
	}
	obs.ObserveLogin("ok")
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      user,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, err := sessionToken(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	if err := a.accounts.Logout(r.Context(), token); err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetResponse struct {
	Status string `json:"status"`
	// ResetToken is returned directly until a mail sender is wired in.
	ResetToken string     `json:"reset_token,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (a *API) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tok, err := a.accounts.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		// Unknown emails get the same answer as known ones so the
		// endpoint cannot be used to enumerate accounts.
		if statusFromError(err) == http.StatusNotFound {
			writeJSON(w, http.StatusAccepted, passwordResetResponse{Status: "accepted"})
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, passwordResetResponse{
		Status:     "accepted",
		ResetToken: tok.Token,
		ExpiresAt:  &tok.ExpiresAt,
	})
}

type passwordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (a *API) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirm
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.accounts.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "password_updated"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
