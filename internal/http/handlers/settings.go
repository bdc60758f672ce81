package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/galleryhub/galleryhub/internal/cache"
	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/galleryhub/galleryhub/internal/domain/setting"
	"github.com/gin-gonic/gin"
)

type SettingsStore interface {
	Get(ctx context.Context, key string) (setting.Setting, error)
	List(ctx context.Context) ([]setting.Setting, error)
	ListPublic(ctx context.Context) ([]setting.Setting, error)
	Upsert(ctx context.Context, s setting.Setting) (setting.Setting, error)
	UpsertValue(ctx context.Context, key, value string) (setting.Setting, error)
	Delete(ctx context.Context, key string) error
}

type SettingsHandler struct {
	repo  SettingsStore
	cache cache.Store
}

func NewSettingsHandler(repo SettingsStore, cacheStore cache.Store) *SettingsHandler {
	return &SettingsHandler{
		repo:  repo,
		cache: cacheStore,
	}
}

const publicSettingsCacheKey = "settings:public"

func (h *SettingsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	all, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list settings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"settings": all,
		"total":    len(all),
	})
}

// ListPublic serves the unauthenticated settings surface through the cache
// with an ETag so site frontends can revalidate cheaply.
func (h *SettingsHandler) ListPublic(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if h.cache != nil {
		if raw, hit := h.cache.Get(cctx, publicSettingsCacheKey); hit {
			var cached []setting.Setting

			if err := json.Unmarshal(raw, &cached); err == nil {
				RespondJSONWithETag(ctx, http.StatusOK, gin.H{"settings": cached})
				return
			}
		}
	}

	public, err := h.repo.ListPublic(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list settings")
		return
	}

	if h.cache != nil {
		if raw, err := json.Marshal(public); err == nil {
			h.cache.Set(cctx, publicSettingsCacheKey, raw)
		}
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"settings": public})
}

func (h *SettingsHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	s, err := h.repo.Get(cctx, ctx.Param("key"))

	if err != nil {
		if errors.Is(err, setting.ErrNotFound) {
			RespondNotFound(ctx, "Setting not found")
			return
		}

		RespondInternal(ctx, "Could not fetch setting")
		return
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *SettingsHandler) Put(ctx *gin.Context) {
	var req setting.UpsertRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.Normalize()

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	saved, err := h.repo.Upsert(cctx, setting.Setting{
		Key:      ctx.Param("key"),
		Value:    req.Value,
		Type:     req.Type,
		Category: req.Category,
		Public:   req.Public,
	})

	if err != nil {
		RespondInternal(ctx, "Could not save setting")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, saved)
}

// PutBulk upserts an arbitrary key-to-value map. Keys are written
// independently, so a re-run of the same body converges to the same state.
// Only values are touched: type, category and the public flag of existing
// settings survive a bulk write.
func (h *SettingsHandler) PutBulk(ctx *gin.Context) {
	var body map[string]string

	if !BindJSON(ctx, &body) {
		return
	}

	if len(body) == 0 {
		RespondBadRequest(ctx, "invalid_request", "At least one setting is required.")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	saved := make([]setting.Setting, 0, len(body))

	for key, value := range body {
		s, err := h.repo.UpsertValue(cctx, key, value)

		if err != nil {
			RespondInternal(ctx, "Could not save settings")
			return
		}

		saved = append(saved, s)
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"settings": saved,
		"total":    len(saved),
	})
}

func (h *SettingsHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, ctx.Param("key")); err != nil {
		if errors.Is(err, setting.ErrNotFound) {
			RespondNotFound(ctx, "Setting not found")
			return
		}

		RespondInternal(ctx, "Could not delete setting")
		return
	}

	h.invalidate(cctx)

	ctx.Status(http.StatusNoContent)
}

func (h *SettingsHandler) invalidate(ctx context.Context) {
	if h.cache != nil {
		h.cache.Delete(ctx, publicSettingsCacheKey)
	}
}
