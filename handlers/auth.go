package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/repository"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthHandler struct {
	UserRepo    repository.UserRepository
	Secret      []byte
	Expiration  time.Duration
	AllowSignup bool
	Logger      *zap.Logger
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (h *AuthHandler) issueToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(h.Expiration)
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(user.ID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    "seeds",
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expirationTime, nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), strings.TrimSpace(payload.Username))
	if err != nil || !user.CheckPassword(payload.Password) {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			h.Logger.Error("failed to look up user", zap.String("username", payload.Username), zap.Error(err))
		}
		WriteAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password")
		return
	}

	tokenString, expiresAt, err := h.issueToken(user)
	if err != nil {
		h.Logger.Error("failed to sign token", zap.Uint("user_id", user.ID), zap.Error(err))
		WriteAPIError(w, http.StatusInternalServerError, "INTERNAL", "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: tokenString, User: *user, ExpiresAt: expiresAt})
}

type RegisterPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// signupOpen reports whether Register accepts new accounts. The first
// account can always be created so a fresh install is usable.
func (h *AuthHandler) signupOpen(r *http.Request) (bool, error) {
	if h.AllowSignup {
		return true, nil
	}
	count, err := h.UserRepo.Count(r.Context())
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

type AuthStatusResponse struct {
	SignupOpen bool `json:"signup_open"`
}

func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	open, err := h.signupOpen(r)
	if err != nil {
		h.Logger.Error("failed to count users", zap.Error(err))
		WriteAPIError(w, http.StatusInternalServerError, "INTERNAL", "Failed to check signup status")
		return
	}
	writeJSON(w, http.StatusOK, AuthStatusResponse{SignupOpen: open})
}

// Register creates an account when signup is open.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	open, err := h.signupOpen(r)
	if err != nil {
		h.Logger.Error("failed to count users", zap.Error(err))
		WriteAPIError(w, http.StatusInternalServerError, "INTERNAL", "Failed to check signup status")
		return
	}
	if !open {
		WriteAPIError(w, http.StatusForbidden, "FORBIDDEN", "Signup is disabled")
		return
	}

	var payload RegisterPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		WriteAPIError(w, http.StatusBadRequest, "VALIDATION", "Username and password are required")
		return
	}
	if len(payload.Password) < minPasswordLength {
		WriteAPIError(w, http.StatusBadRequest, "VALIDATION", fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}

	newUser := &models.User{Username: payload.Username}
	if err := newUser.SetPassword(payload.Password); err != nil {
		h.Logger.Error("failed to hash password", zap.Error(err))
		WriteAPIError(w, http.StatusInternalServerError, "INTERNAL", "Failed to hash password")
		return
	}
	if err := h.UserRepo.Create(r.Context(), newUser); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			WriteAPIError(w, http.StatusConflict, "CONFLICT", "Username is taken")
			return
		}
		h.Logger.Error("failed to create user", zap.String("username", newUser.Username), zap.Error(err))
		WriteAPIError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create user")
		return
	}

	h.Logger.Info("user registered", zap.Uint("user_id", newUser.ID), zap.String("username", newUser.Username))
	writeJSON(w, http.StatusCreated, newUser)
}

// CurrentUser returns the authenticated user. It must run behind AuthMiddleware.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "INTERNAL", "Could not retrieve user from context")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
