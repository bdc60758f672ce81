package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/galleryhub/galleryhub/internal/domain/user"
	"github.com/galleryhub/galleryhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func setIdentity(u user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxIdentity, u)
		c.Next()
	}
}

func TestRoleMiddleware(t *testing.T) {
	admin := user.User{ID: "u-a", Role: user.RoleAdmin, Active: true}
	editor := user.User{ID: "u-e", Role: user.RoleEditor, Active: true}
	viewer := user.User{ID: "u-v", Role: user.RoleViewer, Active: true}

	tests := []struct {
		name           string
		guard          gin.HandlerFunc
		identity       *user.User
		wantStatusCode int
	}{
		{"admin_passes_admin_guard", middlewares.RequireAdmin(), &admin, http.StatusOK},
		{"editor_fails_admin_guard", middlewares.RequireAdmin(), &editor, http.StatusForbidden},
		{"viewer_fails_admin_guard", middlewares.RequireAdmin(), &viewer, http.StatusForbidden},
		{"admin_passes_editor_guard", middlewares.RequireEditor(), &admin, http.StatusOK},
		{"editor_passes_editor_guard", middlewares.RequireEditor(), &editor, http.StatusOK},
		{"viewer_fails_editor_guard", middlewares.RequireEditor(), &viewer, http.StatusForbidden},
		{"no_identity_is_unauthorized", middlewares.RequireAdmin(), nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()

			handlerChain := []gin.HandlerFunc{}

			if tt.identity != nil {
				handlerChain = append(handlerChain, setIdentity(*tt.identity))
			}

			handlerChain = append(handlerChain, tt.guard, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			r.DELETE("/guarded", handlerChain...)

			req := httptest.NewRequest(http.MethodDelete, "/guarded", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// A viewer who fails the guard must leave the resource untouched.
func TestViewerDeleteIsRejectedBeforeHandler(t *testing.T) {
	viewer := user.User{ID: "u-v", Role: user.RoleViewer, Active: true}

	handlerRan := false

	r := gin.New()
	r.DELETE("/api/content/:id", setIdentity(viewer), middlewares.RequireAdmin(), func(c *gin.Context) {
		handlerRan = true
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/content/c-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403, body=%s", w.Code, w.Body.String())
	}

	if handlerRan {
		t.Fatal("delete handler ran for a viewer")
	}
}
