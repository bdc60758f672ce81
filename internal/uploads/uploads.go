// Package uploads is the disk-backed image store behind the upload
// endpoints: validation against a fixed size ceiling and extension/MIME
// allow-list, collision-resistant naming, listing and deletion.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrNotFound        = errors.New("uploaded file not found")
	ErrBadFilename     = errors.New("invalid filename")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type StoredFile struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Service struct {
	dir      string
	maxBytes int64
}

func NewService(dir string, maxBytes int64) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Service{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Validate checks size and type without touching the disk. A file exactly at
// the ceiling passes; one byte over is rejected.
func (s *Service) Validate(header *multipart.FileHeader) error {
	if header.Size > s.maxBytes {
		return ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))

	if !allowedExtensions[ext] {
		return ErrUnsupportedType
	}

	mimeType := header.Header.Get("Content-Type")

	if mimeType != "" && !allowedMimeTypes[normalizeMime(mimeType)] {
		return ErrUnsupportedType
	}

	return nil
}

// Save validates and writes the upload under a generated name.
func (s *Service) Save(header *multipart.FileHeader) (StoredFile, error) {
	if err := s.Validate(header); err != nil {
		return StoredFile{}, err
	}

	src, err := header.Open()

	if err != nil {
		return StoredFile{}, err
	}

	defer src.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)

	if err != nil {
		return StoredFile{}, err
	}

	written, err := io.Copy(dst, src)

	if cerr := dst.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(path)
		return StoredFile{}, err
	}

	return StoredFile{
		Filename:   name,
		Size:       written,
		URL:        "/uploads/" + name,
		UploadedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)

	if err != nil {
		return nil, err
	}

	out := make([]StoredFile, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		info, err := e.Info()

		if err != nil {
			continue
		}

		out = append(out, StoredFile{
			Filename:   e.Name(),
			Size:       info.Size(),
			URL:        "/uploads/" + e.Name(),
			UploadedAt: info.ModTime().UTC(),
		})
	}

	return out, nil
}

func (s *Service) Delete(filename string) error {
	name, err := sanitizeFilename(filename)

	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.dir, name))

	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}

		return err
	}

	return nil
}

// sanitizeFilename rejects anything that could escape the upload directory.
func sanitizeFilename(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", ErrBadFilename
	}

	if strings.HasPrefix(filename, ".") || strings.ContainsAny(filename, `/\`) {
		return "", ErrBadFilename
	}

	return filename, nil
}

func normalizeMime(ct string) string {
	// Allow "image/png; charset=binary" style values.
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}

	return strings.ToLower(strings.TrimSpace(ct))
}
