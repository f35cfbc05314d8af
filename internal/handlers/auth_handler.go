package handlers

import (
	"net/http"

	"github.com/Dias221467/Questline/internal/cache"
	"github.com/Dias221467/Questline/internal/config"
	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/services"
	jwtutil "github.com/Dias221467/Questline/pkg/jwt"
	"github.com/Dias221467/Questline/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// AuthHandler handles sign-up, sign-in and sign-out.
type AuthHandler struct {
	Service  *services.UserService
	Config   *config.Config
	Denylist cache.Denylist
}

func NewAuthHandler(service *services.UserService, cfg *config.Config, denylist cache.Denylist) *AuthHandler {
	return &AuthHandler{Service: service, Config: cfg, Denylist: denylist}
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// SignUpHandler registers an account and signs it in.
func (h *AuthHandler) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var in services.SignUpInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), in)
	if err != nil {
		writeError(w, "signup", err)
		return
	}
	h.respondWithToken(w, http.StatusCreated, user)
}

// SignInHandler exchanges credentials for a bearer token.
func (h *AuthHandler) SignInHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &credentials) {
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithField("email", credentials.Email).Warn("Authentication failed")
		writeError(w, "signin", err)
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	log.WithField("userID", user.ID.Hex()).Info("User signed in")
	writeJSON(w, status, authResponse{Token: token, User: user})
}

// MeHandler returns the signed-in user.
func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SignOutHandler revokes the presented token until it would have expired.
func (h *AuthHandler) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if h.Denylist != nil && claims.ExpiresAt != nil {
		if err := h.Denylist.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			writeError(w, "signout", err)
			return
		}
	}
	log.WithField("userID", claims.UserID).Info("User signed out")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

