package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/galleryhub/galleryhub/internal/auth"
	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/galleryhub/galleryhub/internal/domain/user"
	"github.com/galleryhub/galleryhub/internal/http/middlewares"
	"github.com/galleryhub/galleryhub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string) error
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        *auth.Manager
	demo       *auth.DemoProvider
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager *auth.Manager, demo *auth.DemoProvider) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwtManager,
		demo:       demo,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	now := time.Now().UTC()

	// new accounts always start as viewers; role changes are an admin action
	created, err := h.userWriter.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         user.RoleViewer,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.jwt.GenerateToken(created.ID, created.Email, created.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  created,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// demo credentials resolve before any store access so the zero-config
	// demo login works with no database at all
	if h.demo.Match(req.Email, req.Password) {
		h.issueToken(ctx, h.demo.Identity())
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	if err := foundUser.CheckActive(); err != nil {
		RespondUnauthorized(ctx, "inactive_user", "This account has been deactivated.")
		return
	}

	// best effort, a failed stamp never blocks the login
	_ = h.userWriter.TouchLastLogin(cctx, foundUser.ID)

	h.issueToken(ctx, foundUser)
}

func (h *AuthHandler) issueToken(ctx *gin.Context, u user.User) {
	token, err := h.jwt.GenerateToken(u.ID, u.Email, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  u,
	})
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "invalid_token", "Authentication required.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": identity})
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "invalid_token", "Authentication required.")
		return
	}

	if identity.ID == user.DemoUserID {
		RespondForbidden(ctx, "The demo account cannot be modified.")
		return
	}

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.userWriter.UpdateProfile(cctx, identity.ID, req.Name, req.Email)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondBadRequest(ctx, "email_taken", "Email is already in use.")
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found.")
		default:
			RespondInternal(ctx, "Could not update profile")
		}

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "invalid_token", "Authentication required.")
		return
	}

	if identity.ID == user.DemoUserID {
		RespondForbidden(ctx, "The demo account cannot be modified.")
		return
	}

	var req ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// re-read for the stored hash; the context identity never carries it
	current, err := h.users.GetByEmail(cctx, identity.Email)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := security.CheckPassword(current.PasswordHash, req.CurrentPassword); err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Current password is incorrect.")
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := h.userWriter.UpdatePassword(cctx, identity.ID, hash); err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "password_changed"})
}
