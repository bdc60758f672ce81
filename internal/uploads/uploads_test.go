package uploads

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"
)

const testCeiling = 1024

func newService(t *testing.T) *Service {
	t.Helper()

	s, err := NewService(t.TempDir(), testCeiling)

	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	return s
}

// fileHeader builds a real multipart.FileHeader by writing and re-parsing a
// multipart body, so header.Open works in Save tests.
func fileHeader(t *testing.T, filename, contentType string, size int) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)

	if contentType != "" {
		h.Set("Content-Type", contentType)
	}

	part, err := w.CreatePart(h)

	if err != nil {
		t.Fatalf("create part: %v", err)
	}

	if _, err := part.Write(bytes.Repeat([]byte("a"), size)); err != nil {
		t.Fatalf("write part: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(int64(size) + 1024)

	if err != nil {
		t.Fatalf("read form: %v", err)
	}

	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

func TestValidateSizeBoundary(t *testing.T) {
	s := newService(t)

	atLimit := fileHeader(t, "ok.png", "image/png", testCeiling)

	if err := s.Validate(atLimit); err != nil {
		t.Fatalf("file exactly at the ceiling must pass: %v", err)
	}

	oneOver := fileHeader(t, "big.png", "image/png", testCeiling+1)

	if err := s.Validate(oneOver); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("one byte over: err = %v, want ErrTooLarge", err)
	}
}

func TestValidateRejectsDisallowedExtension(t *testing.T) {
	s := newService(t)

	for _, name := range []string{"doc.pdf", "run.exe", "page.html", "noext"} {
		h := fileHeader(t, name, "image/png", 10)

		if err := s.Validate(h); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("%s: err = %v, want ErrUnsupportedType", name, err)
		}
	}
}

func TestValidateRejectsDisallowedMime(t *testing.T) {
	s := newService(t)

	h := fileHeader(t, "sneaky.png", "application/octet-stream", 10)

	if err := s.Validate(h); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	s := newService(t)

	first, err := s.Save(fileHeader(t, "photo.jpg", "image/jpeg", 64))

	if err != nil {
		t.Fatalf("save: %v", err)
	}

	second, err := s.Save(fileHeader(t, "photo.jpg", "image/jpeg", 64))

	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if first.Filename == second.Filename {
		t.Fatal("two uploads of the same original name must not collide")
	}

	if first.Size != 64 {
		t.Fatalf("stored size = %d, want 64", first.Size)
	}

	files, err := s.List()

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("listed %d files, want 2", len(files))
	}
}

func TestDelete(t *testing.T) {
	s := newService(t)

	stored, err := s.Save(fileHeader(t, "photo.png", "image/png", 16))

	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.Delete(stored.Filename); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := s.Delete(stored.Filename); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRejectsTraversal(t *testing.T) {
	s := newService(t)

	for _, name := range []string{"../secret", "..", ".hidden", "a/b.png", ""} {
		if err := s.Delete(name); !errors.Is(err, ErrBadFilename) {
			t.Errorf("Delete(%q): err = %v, want ErrBadFilename", name, err)
		}
	}
}
