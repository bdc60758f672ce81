package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/galleryhub/galleryhub/internal/domain/user"
	"github.com/galleryhub/galleryhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func limitedRouter(limit int, keyFn func(*gin.Context) string, pre ...gin.HandlerFunc) *gin.Engine {
	rl := middlewares.NewRateLimiter(limit, time.Minute)

	r := gin.New()

	chain := append(pre, rl.Middleware(keyFn), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/limited", chain...)

	return r
}

func hit(r *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = remoteAddr

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w.Code
}

func TestRateLimiterWindow(t *testing.T) {
	r := limitedRouter(2, middlewares.KeyByIP)

	for i := 0; i < 2; i++ {
		if code := hit(r, "10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d got %d", i, code)
		}
	}

	if code := hit(r, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("over-limit request got %d, want 429", code)
	}

	// a different client has its own bucket
	if code := hit(r, "10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("other client got %d", code)
	}
}

// Authenticated buckets follow the identity, not the address.
func TestRateLimiterKeysByUser(t *testing.T) {
	identity := user.User{ID: "u-1", Role: user.RoleEditor, Active: true}

	r := limitedRouter(2, middlewares.KeyByUserOrIP, func(c *gin.Context) {
		c.Set(middlewares.CtxIdentity, identity)
		c.Next()
	})

	// same user from two addresses shares one bucket
	if code := hit(r, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first request got %d", code)
	}

	if code := hit(r, "10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("second request got %d", code)
	}

	if code := hit(r, "10.0.0.3:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("third request got %d, want 429", code)
	}
}

func TestRateLimiterKeyFallsBackToIP(t *testing.T) {
	r := limitedRouter(1, middlewares.KeyByUserOrIP)

	if code := hit(r, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first request got %d", code)
	}

	if code := hit(r, "10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Fatalf("same address got %d, want 429", code)
	}

	if code := hit(r, "10.0.0.9:1234"); code != http.StatusOK {
		t.Fatalf("other address got %d", code)
	}
}
