package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/galleryhub/galleryhub/internal/observability"
	"github.com/galleryhub/galleryhub/internal/uploads"
	"github.com/gin-gonic/gin"
)

type UploadsHandler struct {
	store *uploads.Service
	prom  *observability.Prom
}

func NewUploadsHandler(store *uploads.Service, prom *observability.Prom) *UploadsHandler {
	return &UploadsHandler{
		store: store,
		prom:  prom,
	}
}

func (h *UploadsHandler) UploadImage(ctx *gin.Context) {
	header, err := ctx.FormFile("image")

	if err != nil {
		RespondBadRequest(ctx, "invalid_request", "An image file is required under the 'image' field.")
		return
	}

	stored, ok := h.save(ctx, header)

	if !ok {
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"file": stored})
}

type galleryResult struct {
	Filename string              `json:"filename"`
	File     *uploads.StoredFile `json:"file,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// UploadGallery stores a batch of images, reporting per-file results instead
// of failing the whole request on the first bad file.
func (h *UploadsHandler) UploadGallery(ctx *gin.Context) {
	form, err := ctx.MultipartForm()

	if err != nil {
		RespondBadRequest(ctx, "invalid_request", "A multipart form with an 'images' field is required.")
		return
	}

	files := form.File["images"]

	if len(files) == 0 {
		RespondBadRequest(ctx, "invalid_request", "At least one image is required under the 'images' field.")
		return
	}

	results := make([]galleryResult, 0, len(files))
	storedCount := 0

	for _, header := range files {
		stored, err := h.tryStore(header)

		if err != nil {
			code, message := uploadErrorCode(err)

			results = append(results, galleryResult{
				Filename: header.Filename,
				Error:    code + ": " + message,
			})

			continue
		}

		storedCount++

		results = append(results, galleryResult{
			Filename: header.Filename,
			File:     &stored,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"results": results,
		"stored":  storedCount,
		"total":   len(files),
	})
}

func (h *UploadsHandler) List(ctx *gin.Context) {
	files, err := h.store.List()

	if err != nil {
		RespondInternal(ctx, "Could not list uploads")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"files": files,
		"total": len(files),
	})
}

func (h *UploadsHandler) Delete(ctx *gin.Context) {
	err := h.store.Delete(ctx.Param("filename"))

	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrNotFound):
			RespondNotFound(ctx, "File not found")
		case errors.Is(err, uploads.ErrBadFilename):
			RespondBadRequest(ctx, "invalid_request", "Invalid filename.")
		default:
			RespondInternal(ctx, "Could not delete file")
		}

		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UploadsHandler) save(ctx *gin.Context, header *multipart.FileHeader) (uploads.StoredFile, bool) {
	stored, err := h.tryStore(header)

	if err != nil {
		code, message := uploadErrorCode(err)

		if code == "internal_error" {
			RespondInternal(ctx, message)
		} else {
			RespondBadRequest(ctx, code, message)
		}

		return uploads.StoredFile{}, false
	}

	return stored, true
}

func (h *UploadsHandler) tryStore(header *multipart.FileHeader) (uploads.StoredFile, error) {
	if err := h.store.Validate(header); err != nil {
		h.count("rejected")
		return uploads.StoredFile{}, err
	}

	stored, err := h.store.Save(header)

	if err != nil {
		h.count("failed")
		return uploads.StoredFile{}, err
	}

	h.count("stored")

	return stored, nil
}

func (h *UploadsHandler) count(outcome string) {
	if h.prom != nil {
		h.prom.UploadsTotal.WithLabelValues(outcome).Inc()
	}
}

func uploadErrorCode(err error) (code, message string) {
	switch {
	case errors.Is(err, uploads.ErrTooLarge):
		return "file_too_large", "File exceeds the upload size limit."
	case errors.Is(err, uploads.ErrUnsupportedType):
		return "unsupported_file_type", "Only jpg, jpeg, png, gif and webp images are accepted."
	case errors.Is(err, uploads.ErrBadFilename):
		return "invalid_request", "Invalid filename."
	default:
		return "internal_error", "Could not store file"
	}
}
