package content

import (
	"time"

	"github.com/galleryhub/galleryhub/internal/util"
	"github.com/google/uuid"
)

// NewFromCreateRequest builds a Content item from a validated create request.
// The slug is derived from the title when the request carries none, and the
// publish timestamp is stamped if the item is born published.
func NewFromCreateRequest(req CreateRequest, authorID string) Content {
	now := time.Now().UTC()

	status := req.Status

	if status == "" {
		status = StatusDraft
	}

	c := Content{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Slug:       DeriveSlug(req.Slug, req.Title),
		Body:       req.Body,
		Excerpt:    req.Excerpt,
		Type:       req.Type,
		Status:     status,
		AuthorID:   authorID,
		Featured:   req.Featured,
		SortOrder:  req.SortOrder,
		Tags:       normalizeList(req.Tags),
		Categories: normalizeList(req.Categories),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if c.Status == StatusPublished {
		c.PublishedAt = &now
	}

	return c
}

// ApplyUpdate merges an update request into an existing item. PublishedAt is
// stamped exactly once, on the first transition into published. The slug only
// changes when the request carries one; a title edit alone never moves a
// published URL.
func (c Content) ApplyUpdate(req UpdateRequest) Content {
	now := time.Now().UTC()

	c.Title = req.Title

	if req.Slug != "" {
		c.Slug = util.Slugify(req.Slug)
	}
	c.Body = req.Body
	c.Excerpt = req.Excerpt
	c.Type = req.Type
	c.Status = req.Status
	c.Featured = req.Featured
	c.SortOrder = req.SortOrder
	c.Tags = normalizeList(req.Tags)
	c.Categories = normalizeList(req.Categories)
	c.UpdatedAt = now

	if c.Status == StatusPublished && c.PublishedAt == nil {
		c.PublishedAt = &now
	}

	return c
}

// DeriveSlug prefers an explicitly requested slug (normalized) and falls
// back to deriving one from the title.
func DeriveSlug(requested, title string) string {
	if requested != "" {
		return util.Slugify(requested)
	}

	return util.Slugify(title)
}

func normalizeList(in []string) []string {
	if in == nil {
		return []string{}
	}

	return in
}
