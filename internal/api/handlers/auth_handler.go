package handlers

import (
	"net/http"
	"time"

	"github.com/isdelr/storefront-be/internal/apperr"
	"github.com/isdelr/storefront-be/internal/auth"
	"github.com/isdelr/storefront-be/internal/httpx"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and session requests.
type AuthHandler struct {
	service      services.AuthServiceProvider
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie sets the Secure flag
// on the session cookie and should be true in production.
func NewAuthHandler(service services.AuthServiceProvider, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, secureCookie: secureCookie}
}

// registerResponse is the JSON reply to a successful registration.
type registerResponse struct {
	User     models.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// loginResponse is the JSON reply to a successful login.
type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Redirect  string      `json:"redirect"`
	User      models.User `json:"user"`
}

// Register handles new user registration from a JSON or HTML form body.
// Form submissions are redirected to the login page on success.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	form := isForm(r)
	if form {
		if err := parseForm(w, r); err != nil {
			httpx.Error(w, err)
			return
		}
		in = services.RegisterInput{
			Name:                 r.PostFormValue("name"),
			Email:                r.PostFormValue("email"),
			Password:             r.PostFormValue("password"),
			PasswordConfirmation: r.PostFormValue("password_confirmation"),
		}
	} else if err := decodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), in)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			log.Info().Str("email", services.NormalizeEmail(in.Email)).Msg("Registration with existing email")
		}
		httpx.Error(w, err)
		return
	}

	if form {
		http.Redirect(w, r, services.RedirectLogin, http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusCreated, registerResponse{User: user, Redirect: services.RedirectLogin})
}

// Login handles user authentication and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if isForm(r) {
		if err := parseForm(w, r); err != nil {
			httpx.Error(w, err)
			return
		}
		in = services.LoginInput{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
	} else if err := decodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), in)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			log.Warn().Str("email", services.NormalizeEmail(in.Email)).Msg("Failed authentication attempt")
		}
		httpx.Error(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    result.Token,
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Redirect:  result.Redirect,
		User:      result.User,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the user behind the request's token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.Token(auth.MsgNoCredential))
		return
	}

	user, err := h.service.CurrentUser(r.Context(), identity.SubjectID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", identity.SubjectID).Msg("User from token not found")
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
