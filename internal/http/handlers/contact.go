package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/galleryhub/galleryhub/internal/domain/contact"
	"github.com/galleryhub/galleryhub/internal/domain/job"
	"github.com/galleryhub/galleryhub/internal/jobs"
	"github.com/gin-gonic/gin"
)

type ContactStore interface {
	Create(ctx context.Context, m contact.Message) (contact.Message, error)
	List(ctx context.Context, limit, offset int) ([]contact.Message, int, error)
}

type JobEnqueuer interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

type ContactHandler struct {
	messages ContactStore
	queue    JobEnqueuer
	log      *slog.Logger
}

// NewContactHandler accepts a nil queue: in memory-backed demo mode
// submissions are stored but no notification job is enqueued.
func NewContactHandler(messages ContactStore, queue JobEnqueuer, log *slog.Logger) *ContactHandler {
	return &ContactHandler{
		messages: messages,
		queue:    queue,
		log:      log,
	}
}

func (h *ContactHandler) Create(ctx *gin.Context) {
	var req contact.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	saved, err := h.messages.Create(cctx, contact.NewFromCreateRequest(req))

	if err != nil {
		RespondInternal(ctx, "Could not submit message")
		return
	}

	h.enqueueNotification(cctx, saved.ID, requestIDFrom(ctx))

	ctx.JSON(http.StatusCreated, gin.H{
		"id":     saved.ID,
		"status": "received",
	})
}

// enqueueNotification is best effort: a stored message with a missed
// notification beats a lost message.
func (h *ContactHandler) enqueueNotification(ctx context.Context, messageID, requestID string) {
	if h.queue == nil {
		return
	}

	payload, err := jobs.EncodePayload(jobs.TypeContactNotify, jobs.ContactNotifyPayload{
		MessageID: messageID,
		RequestID: requestID,
	})

	if err != nil {
		h.log.Error("contact: encode notify payload", "error", err, "messageId", messageID)
		return
	}

	_, err = h.queue.Create(ctx, job.CreateRequest{
		Type:    jobs.TypeContactNotify,
		Payload: payload,
	})

	if err != nil {
		h.log.Error("contact: enqueue notify job", "error", err, "messageId", messageID)
	}
}

func (h *ContactHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if page < 1 {
		page = 1
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	messages, total, err := h.messages.List(cctx, limit, (page-1)*limit)

	if err != nil {
		RespondInternal(ctx, "Could not list messages")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}
