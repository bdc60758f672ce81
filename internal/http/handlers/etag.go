package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload as JSON with a content-derived ETag and
// honors If-None-Match with a 304. Used on the public read endpoints so
// browsers can revalidate cheaply.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	tag, err := contentETag(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	ctx.Header("ETag", tag)

	if etagMatches(ctx.GetHeader("If-None-Match"), tag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(status, payload)
}

func contentETag(payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(raw)

	return `"` + hex.EncodeToString(sum[:16]) + `"`, nil
}

func etagMatches(headerValue, currentETag string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" || currentETag == "" {
		return false
	}

	if headerValue == "*" {
		return true
	}

	current := trimWeakPrefix(currentETag)

	for _, candidate := range strings.Split(headerValue, ",") {
		if trimWeakPrefix(candidate) == current {
			return true
		}
	}

	return false
}

func trimWeakPrefix(raw string) string {
	v := strings.TrimSpace(raw)

	// RFC 9110 allows weak validators like W/"abc".
	if strings.HasPrefix(v, "W/") {
		v = strings.TrimSpace(strings.TrimPrefix(v, "W/"))
	}

	return v
}
