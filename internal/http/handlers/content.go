package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/galleryhub/galleryhub/internal/cache"
	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/galleryhub/galleryhub/internal/domain/content"
	"github.com/galleryhub/galleryhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ContentStore interface {
	Create(ctx context.Context, c content.Content) (content.Content, error)
	GetByID(ctx context.Context, id string) (content.Content, error)
	GetBySlug(ctx context.Context, slug string) (content.Content, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, filter content.ListFilter) ([]content.Content, int, error)
	Update(ctx context.Context, c content.Content) (content.Content, error)
	Delete(ctx context.Context, id string) error
}

type ContentHandler struct {
	repo  ContentStore
	cache cache.Store
}

func NewContentHandler(repo ContentStore, cacheStore cache.Store) *ContentHandler {
	return &ContentHandler{
		repo:  repo,
		cache: cacheStore,
	}
}

// privileged reports whether the caller may see drafts and archived items.
func privileged(ctx *gin.Context) bool {
	identity, ok := middlewares.IdentityFromContext(ctx)

	return ok && identity.IsAdminOrEditor()
}

func (h *ContentHandler) Create(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "invalid_token", "Authentication required.")
		return
	}

	var req content.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	item := content.NewFromCreateRequest(req, identity.ID)

	if item.Slug == "" {
		RespondBadRequest(ctx, "invalid_request", "A slug could not be derived from the title.")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	taken, err := h.repo.SlugExists(cctx, item.Slug, "")

	if err != nil {
		RespondInternal(ctx, "Could not create content")
		return
	}

	if taken {
		RespondBadRequest(ctx, "slug_taken", "Slug is already in use.")
		return
	}

	created, err := h.repo.Create(cctx, item)

	if err != nil {
		// the unique index closes the check-then-insert race
		if errors.Is(err, content.ErrSlugTaken) {
			RespondBadRequest(ctx, "slug_taken", "Slug is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create content")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusCreated, created)
}

func (h *ContentHandler) List(ctx *gin.Context) {
	filter, ok := h.parseListFilter(ctx)

	if !ok {
		return
	}

	elevated := privileged(ctx)

	if !elevated {
		// anonymous and viewer callers only ever see published content
		published := content.StatusPublished
		filter.Status = &published
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if !elevated {
		if payload, hit := h.cachedList(cctx, ctx.Request.URL.RawQuery); hit {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	items, total, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list content")
		return
	}

	body := gin.H{
		"items": items,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	}

	if !elevated {
		h.storeList(cctx, ctx.Request.URL.RawQuery, body)
	}

	ctx.JSON(http.StatusOK, body)
}

func (h *ContentHandler) GetByID(ctx *gin.Context) {
	h.getOne(ctx, func(cctx context.Context) (content.Content, error) {
		return h.repo.GetByID(cctx, ctx.Param("id"))
	})
}

func (h *ContentHandler) GetBySlug(ctx *gin.Context) {
	h.getOne(ctx, func(cctx context.Context) (content.Content, error) {
		return h.repo.GetBySlug(cctx, ctx.Param("slug"))
	})
}

func (h *ContentHandler) getOne(ctx *gin.Context, fetch func(context.Context) (content.Content, error)) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	item, err := fetch(cctx)

	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			RespondNotFound(ctx, "Content not found")
			return
		}

		RespondInternal(ctx, "Could not fetch content")
		return
	}

	// unpublished items are indistinguishable from missing ones for
	// non-privileged callers
	if item.Status != content.StatusPublished && !privileged(ctx) {
		RespondNotFound(ctx, "Content not found")
		return
	}

	ctx.JSON(http.StatusOK, item)
}

func (h *ContentHandler) Update(ctx *gin.Context) {
	var req content.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			RespondNotFound(ctx, "Content not found")
			return
		}

		RespondInternal(ctx, "Could not update content")
		return
	}

	next := existing.ApplyUpdate(req)

	taken, err := h.repo.SlugExists(cctx, next.Slug, existing.ID)

	if err != nil {
		RespondInternal(ctx, "Could not update content")
		return
	}

	if taken {
		RespondBadRequest(ctx, "slug_taken", "Slug is already in use.")
		return
	}

	updated, err := h.repo.Update(cctx, next)

	if err != nil {
		if errors.Is(err, content.ErrSlugTaken) {
			RespondBadRequest(ctx, "slug_taken", "Slug is already in use.")
			return
		}

		if errors.Is(err, content.ErrNotFound) {
			RespondNotFound(ctx, "Content not found")
			return
		}

		RespondInternal(ctx, "Could not update content")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, updated)
}

func (h *ContentHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, ctx.Param("id")); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			RespondNotFound(ctx, "Content not found")
			return
		}

		RespondInternal(ctx, "Could not delete content")
		return
	}

	h.invalidate(cctx)

	ctx.Status(http.StatusNoContent)
}

func (h *ContentHandler) parseListFilter(ctx *gin.Context) (content.ListFilter, bool) {
	var filter content.ListFilter

	if v := ctx.Query("type"); v != "" {
		if !content.ValidType(v) {
			RespondBadRequest(ctx, "invalid_request", "Unknown content type.")
			return filter, false
		}

		filter.Type = &v
	}

	if v := ctx.Query("status"); v != "" {
		if !content.ValidStatus(v) {
			RespondBadRequest(ctx, "invalid_request", "Unknown content status.")
			return filter, false
		}

		filter.Status = &v
	}

	if v := ctx.Query("tag"); v != "" {
		filter.Tag = &v
	}

	if v := ctx.Query("category"); v != "" {
		filter.Category = &v
	}

	if v := ctx.Query("featured"); v != "" {
		featured, err := strconv.ParseBool(v)

		if err != nil {
			RespondBadRequest(ctx, "invalid_request", "featured must be true or false.")
			return filter, false
		}

		filter.Featured = &featured
	}

	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	filter.Clamp()

	return filter, true
}

const contentListCachePrefix = "content:list:"

func (h *ContentHandler) cachedList(ctx context.Context, rawQuery string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}

	return h.cache.Get(ctx, contentListCachePrefix+rawQuery)
}

func (h *ContentHandler) storeList(ctx context.Context, rawQuery string, body gin.H) {
	if h.cache == nil {
		return
	}

	raw, err := json.Marshal(body)

	if err != nil {
		return
	}

	h.cache.Set(ctx, contentListCachePrefix+rawQuery, raw)
}

func (h *ContentHandler) invalidate(ctx context.Context) {
	if h.cache != nil {
		h.cache.Clear(ctx)
	}
}
