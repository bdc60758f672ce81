package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/galleryhub/galleryhub/internal/domain/setting"
)

type SettingsRepo struct {
	mu    sync.RWMutex
	items map[string]setting.Setting // keyed by key
}

func NewSettingsRepo() *SettingsRepo {
	return &SettingsRepo{
		items: make(map[string]setting.Setting),
	}
}

func (r *SettingsRepo) Get(_ context.Context, key string) (setting.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[key]

	if !ok {
		return setting.Setting{}, setting.ErrNotFound
	}

	return s, nil
}

func (r *SettingsRepo) List(_ context.Context) ([]setting.Setting, error) {
	return r.filtered(func(setting.Setting) bool { return true }), nil
}

func (r *SettingsRepo) ListPublic(_ context.Context) ([]setting.Setting, error) {
	return r.filtered(func(s setting.Setting) bool { return s.Public }), nil
}

func (r *SettingsRepo) Upsert(_ context.Context, s setting.Setting) (setting.Setting, error) {
	s.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	r.items[s.Key] = s
	r.mu.Unlock()

	return s, nil
}

// UpsertValue replaces only the value, keeping type, category and the public
// flag of an existing setting.
func (r *SettingsRepo) UpsertValue(_ context.Context, key, value string) (setting.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[key]

	if !ok {
		s = setting.Setting{Key: key, Type: setting.TypeString}
	}

	s.Value = value
	s.UpdatedAt = time.Now().UTC()

	r.items[key] = s

	return s, nil
}

func (r *SettingsRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[key]; !ok {
		return setting.ErrNotFound
	}

	delete(r.items, key)

	return nil
}

func (r *SettingsRepo) filtered(keep func(setting.Setting) bool) []setting.Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]setting.Setting, 0, len(r.items))

	for _, s := range r.items {
		if keep(s) {
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}

		return out[i].Key < out[j].Key
	})

	return out
}
