package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/galleryhub/galleryhub/internal/cache"
	"github.com/galleryhub/galleryhub/internal/domain/setting"
	"github.com/galleryhub/galleryhub/internal/http/handlers"
	"github.com/galleryhub/galleryhub/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

func putJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestPutBulkSettingsIsIdempotent(t *testing.T) {
	repo := memory.NewSettingsRepo()
	h := handlers.NewSettingsHandler(repo, nil)

	r := gin.New()
	r.PUT("/api/settings", h.PutBulk)

	body := `{"site_title": "Jane Doe Studio", "site_tagline": "Paintings and prints"}`

	for i := 0; i < 2; i++ {
		w := putJSON(r, "/api/settings", body)

		if w.Code != http.StatusOK {
			t.Fatalf("run %d: got status %d, body=%s", i, w.Code, w.Body.String())
		}
	}

	all, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list settings: %v", err)
	}

	if len(all) != 2 {
		t.Fatalf("got %d settings after two identical bulk writes, want 2", len(all))
	}

	got, err := repo.Get(context.Background(), "site_title")
	if err != nil {
		t.Fatalf("get site_title: %v", err)
	}

	if got.Value != "Jane Doe Studio" {
		t.Fatalf("got value %q", got.Value)
	}
}

// A bulk write carries values only; it must not strip the metadata an admin
// set through the per-key endpoint.
func TestPutBulkSettingsPreservesMetadata(t *testing.T) {
	repo := memory.NewSettingsRepo()

	if _, err := repo.Upsert(context.Background(), setting.Setting{
		Key:      "site_title",
		Value:    "Jane Doe Studio",
		Type:     setting.TypeString,
		Category: "general",
		Public:   true,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := handlers.NewSettingsHandler(repo, nil)

	r := gin.New()
	r.PUT("/api/settings", h.PutBulk)

	w := putJSON(r, "/api/settings", `{"site_title": "New Gallery"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	got, err := repo.Get(context.Background(), "site_title")
	if err != nil {
		t.Fatalf("get site_title: %v", err)
	}

	if got.Value != "New Gallery" {
		t.Fatalf("got value %q, want New Gallery", got.Value)
	}

	if !got.Public {
		t.Fatal("public flag was dropped by the bulk write")
	}

	if got.Category != "general" {
		t.Fatalf("category became %q, want general", got.Category)
	}

	public, err := repo.ListPublic(context.Background())
	if err != nil {
		t.Fatalf("list public: %v", err)
	}

	if len(public) != 1 {
		t.Fatalf("public listing has %d settings after the bulk write, want 1", len(public))
	}
}

func TestPutBulkSettingsRejectsEmpty(t *testing.T) {
	h := handlers.NewSettingsHandler(memory.NewSettingsRepo(), nil)

	r := gin.New()
	r.PUT("/api/settings", h.PutBulk)

	w := putJSON(r, "/api/settings", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}
}

func TestPutSettingUpsertsByKey(t *testing.T) {
	repo := memory.NewSettingsRepo()
	h := handlers.NewSettingsHandler(repo, nil)

	r := gin.New()
	r.PUT("/api/settings/:key", h.Put)

	w := putJSON(r, "/api/settings/theme", `{"value": "dark", "type": "string", "public": true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	// second write replaces, never duplicates
	w = putJSON(r, "/api/settings/theme", `{"value": "light", "type": "string", "public": true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	got, err := repo.Get(context.Background(), "theme")
	if err != nil {
		t.Fatalf("get theme: %v", err)
	}

	if got.Value != "light" {
		t.Fatalf("got value %q, want light", got.Value)
	}
}

func TestListPublicSettingsFiltersAndCaches(t *testing.T) {
	repo := memory.NewSettingsRepo()

	seed := []setting.Setting{
		{Key: "site_title", Value: "Jane Doe Studio", Type: setting.TypeString, Public: true},
		{Key: "smtp_password", Value: "secret", Type: setting.TypeString, Public: false},
	}

	for _, s := range seed {
		if _, err := repo.Upsert(context.Background(), s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	store := cache.NewMemory(time.Minute)
	h := handlers.NewSettingsHandler(repo, store)

	r := gin.New()
	r.GET("/api/settings/public", h.ListPublic)

	fetch := func() []setting.Setting {
		req := httptest.NewRequest(http.MethodGet, "/api/settings/public", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		if w.Header().Get("ETag") == "" {
			t.Fatal("expected an ETag header")
		}

		var body struct {
			Settings []setting.Setting `json:"settings"`
		}

		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}

		return body.Settings
	}

	first := fetch()

	if len(first) != 1 || first[0].Key != "site_title" {
		t.Fatalf("public listing leaked non-public settings: %+v", first)
	}

	// second fetch is served from the cache and stays filtered
	second := fetch()

	if len(second) != 1 || second[0].Key != "site_title" {
		t.Fatalf("cached listing differs: %+v", second)
	}

	if _, hit := store.Get(context.Background(), "settings:public"); !hit {
		t.Fatal("expected the public settings to be cached")
	}
}

func TestDeleteSettingInvalidatesPublicCache(t *testing.T) {
	repo := memory.NewSettingsRepo()

	if _, err := repo.Upsert(context.Background(), setting.Setting{
		Key: "site_title", Value: "Jane Doe Studio", Type: setting.TypeString, Public: true,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := cache.NewMemory(time.Minute)
	h := handlers.NewSettingsHandler(repo, store)

	r := gin.New()
	r.GET("/api/settings/public", h.ListPublic)
	r.DELETE("/api/settings/:key", h.Delete)

	req := httptest.NewRequest(http.MethodGet, "/api/settings/public", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if _, hit := store.Get(context.Background(), "settings:public"); !hit {
		t.Fatal("expected the listing to be cached")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/settings/site_title", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if _, hit := store.Get(context.Background(), "settings:public"); hit {
		t.Fatal("expected the cached listing to be invalidated")
	}
}

func TestGetSettingNotFound(t *testing.T) {
	h := handlers.NewSettingsHandler(memory.NewSettingsRepo(), nil)

	r := gin.New()
	r.GET("/api/settings/:key", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/settings/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}
