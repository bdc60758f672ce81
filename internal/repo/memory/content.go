package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/galleryhub/galleryhub/internal/domain/content"
)

type ContentRepo struct {
	mu    sync.RWMutex
	items map[string]content.Content // keyed by id
}

func NewContentRepo() *ContentRepo {
	return &ContentRepo{
		items: make(map[string]content.Content),
	}
}

func (r *ContentRepo) Create(_ context.Context, c content.Content) (content.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Slug == c.Slug {
			return content.Content{}, content.ErrSlugTaken
		}
	}

	r.items[c.ID] = c

	return c, nil
}

func (r *ContentRepo) GetByID(_ context.Context, id string) (content.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]

	if !ok {
		return content.Content{}, content.ErrNotFound
	}

	return c, nil
}

func (r *ContentRepo) GetBySlug(_ context.Context, slug string) (content.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.items {
		if c.Slug == slug {
			return c, nil
		}
	}

	return content.Content{}, content.ErrNotFound
}

func (r *ContentRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, c := range r.items {
		if c.Slug == slug && id != excludeID {
			return true, nil
		}
	}

	return false, nil
}

func (r *ContentRepo) List(_ context.Context, filter content.ListFilter) ([]content.Content, int, error) {
	r.mu.RLock()

	matched := make([]content.Content, 0, len(r.items))

	for _, c := range r.items {
		if matches(c, filter) {
			matched = append(matched, c)
		}
	}

	r.mu.RUnlock()

	// Featured first, then newest published, then newest created.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]

		if a.Featured != b.Featured {
			return a.Featured
		}

		at, bt := publishedOrZero(a), publishedOrZero(b)

		if !at.Equal(bt) {
			return at.After(bt)
		}

		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}

		return a.ID < b.ID
	})

	total := len(matched)
	offset := filter.Offset()

	if offset >= total {
		return []content.Content{}, total, nil
	}

	end := offset + filter.Limit

	if end > total {
		end = total
	}

	return matched[offset:end], total, nil
}

func (r *ContentRepo) Update(_ context.Context, c content.Content) (content.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[c.ID]; !ok {
		return content.Content{}, content.ErrNotFound
	}

	for id, existing := range r.items {
		if id != c.ID && existing.Slug == c.Slug {
			return content.Content{}, content.ErrSlugTaken
		}
	}

	c.UpdatedAt = time.Now().UTC()
	r.items[c.ID] = c

	return c, nil
}

func (r *ContentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return content.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func matches(c content.Content, f content.ListFilter) bool {
	if f.Type != nil && c.Type != *f.Type {
		return false
	}

	if f.Status != nil && c.Status != *f.Status {
		return false
	}

	if f.Featured != nil && c.Featured != *f.Featured {
		return false
	}

	if f.Tag != nil && !contains(c.Tags, *f.Tag) {
		return false
	}

	if f.Category != nil && !contains(c.Categories, *f.Category) {
		return false
	}

	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}

	return false
}

func publishedOrZero(c content.Content) time.Time {
	if c.PublishedAt != nil {
		return *c.PublishedAt
	}

	return time.Time{}
}
