package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/galleryhub/galleryhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserAdminStore interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateRole(ctx context.Context, id, role string) error
	SetActive(ctx context.Context, id string, active bool) error
}

// UsersHandler covers the admin-only user management surface. Accounts are
// deactivated, never hard-deleted.
type UsersHandler struct {
	users UserAdminStore
}

func NewUsersHandler(users UserAdminStore) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	all, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": all,
		"total": len(all),
	})
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin editor viewer"`
}

func (h *UsersHandler) UpdateRole(ctx *gin.Context) {
	id := ctx.Param("id")

	var req UpdateRoleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.users.UpdateRole(cctx, id, req.Role); err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found.")
		case errors.Is(err, user.ErrBadRole):
			RespondBadRequest(ctx, "invalid_request", "Unknown role.")
		default:
			RespondInternal(ctx, "Could not update role")
		}

		return
	}

	updated, err := h.users.GetByID(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": updated})
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *UsersHandler) SetActive(ctx *gin.Context) {
	id := ctx.Param("id")

	var req SetActiveRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.users.SetActive(cctx, id, *req.Active); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	updated, err := h.users.GetByID(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": updated})
}
