// Package content defines the portfolio content model: pages, posts,
// projects and services managed through the admin panel.
package content

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("content not found")
	ErrSlugTaken = errors.New("slug already in use")
)

const (
	TypePage    = "page"
	TypePost    = "post"
	TypeProject = "project"
	TypeService = "service"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Listing is capped regardless of the requested page size.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Content struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	AuthorID    string     `json:"authorId,omitempty"`
	Featured    bool       `json:"featured"`
	SortOrder   int        `json:"sortOrder"`
	Tags        []string   `json:"tags"`
	Categories  []string   `json:"categories"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func ValidType(t string) bool {
	switch t {
	case TypePage, TypePost, TypeProject, TypeService:
		return true
	default:
		return false
	}
}

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

type CreateRequest struct {
	Title      string   `json:"title" binding:"required,min=1,max=200"`
	Slug       string   `json:"slug" binding:"omitempty,max=200"`
	Body       string   `json:"body"`
	Excerpt    string   `json:"excerpt" binding:"omitempty,max=500"`
	Type       string   `json:"type" binding:"required,oneof=page post project service"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published archived"`
	Featured   bool     `json:"featured"`
	SortOrder  int      `json:"sortOrder"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

type UpdateRequest struct {
	Title      string   `json:"title" binding:"required,min=1,max=200"`
	Slug       string   `json:"slug" binding:"omitempty,max=200"`
	Body       string   `json:"body"`
	Excerpt    string   `json:"excerpt" binding:"omitempty,max=500"`
	Type       string   `json:"type" binding:"required,oneof=page post project service"`
	Status     string   `json:"status" binding:"required,oneof=draft published archived"`
	Featured   bool     `json:"featured"`
	SortOrder  int      `json:"sortOrder"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

// ListFilter carries the listing parameters after visibility policy has been
// applied: for non-privileged callers Status is forced to published.
type ListFilter struct {
	Type     *string
	Status   *string
	Tag      *string
	Category *string
	Featured *bool
	Page     int
	Limit    int
}

// Offset converts page/limit pagination to a SQL offset.
func (f ListFilter) Offset() int {
	page := f.Page

	if page < 1 {
		page = 1
	}

	return (page - 1) * f.Limit
}

// Clamp normalizes page and limit into their allowed ranges.
func (f *ListFilter) Clamp() {
	if f.Page < 1 {
		f.Page = 1
	}

	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}

	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
}
