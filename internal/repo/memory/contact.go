package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/galleryhub/galleryhub/internal/domain/contact"
)

type ContactRepo struct {
	mu    sync.RWMutex
	items map[string]contact.Message
}

func NewContactRepo() *ContactRepo {
	return &ContactRepo{
		items: make(map[string]contact.Message),
	}
}

func (r *ContactRepo) Create(_ context.Context, m contact.Message) (contact.Message, error) {
	r.mu.Lock()
	r.items[m.ID] = m
	r.mu.Unlock()

	return m, nil
}

func (r *ContactRepo) GetByID(_ context.Context, id string) (contact.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[id]

	if !ok {
		return contact.Message{}, contact.ErrNotFound
	}

	return m, nil
}

func (r *ContactRepo) List(_ context.Context, limit, offset int) ([]contact.Message, int, error) {
	r.mu.RLock()

	out := make([]contact.Message, 0, len(r.items))

	for _, m := range r.items {
		out = append(out, m)
	}

	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].ID < out[j].ID
	})

	total := len(out)

	if offset >= total {
		return []contact.Message{}, total, nil
	}

	end := offset + limit

	if end > total {
		end = total
	}

	return out[offset:end], total, nil
}
