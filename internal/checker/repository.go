package checker

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"symptom-checker/internal/kv"
)

// HistoryKey is the storage key for the persisted history list.
const HistoryKey = "healthHistory"

// HistoryRepository persists the whole history list under one key.
type HistoryRepository interface {
	// Load returns nil entries when nothing is stored.
	Load(ctx context.Context) ([]HistoryEntry, error)
	// Save overwrites the stored list in full.
	Save(ctx context.Context, entries []HistoryEntry) error
	// Delete removes the key entirely.
	Delete(ctx context.Context) error
}

type kvHistoryRepo struct {
	store kv.Store
	key   string
}

func NewHistoryRepository(store kv.Store, key string) HistoryRepository {
	if key == "" {
		key = HistoryKey
	}
	return &kvHistoryRepo{store: store, key: key}
}

func (r *kvHistoryRepo) Load(ctx context.Context) ([]HistoryEntry, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return entries, nil
}

func (r *kvHistoryRepo) Save(ctx context.Context, entries []HistoryEntry) error {
	if entries == nil {
		entries = []HistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key, string(data))
}

func (r *kvHistoryRepo) Delete(ctx context.Context) error {
	return r.store.Remove(ctx, r.key)
}
