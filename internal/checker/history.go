package checker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// HistoryLimit caps the number of kept entries.
const HistoryLimit = 10

// HistoryDateLayout renders entry dates like a US locale string.
const HistoryDateLayout = "1/2/2006, 3:04:05 PM"

// History is the in-memory history list backed by a repository. It is loaded
// once and rewritten in full on every change. Sessions of the same client
// share one History.
type History struct {
	mu      sync.Mutex
	repo    HistoryRepository
	entries []HistoryEntry
}

// LoadHistory reads the persisted list. Read or decode failures leave the
// history empty.
func LoadHistory(ctx context.Context, repo HistoryRepository) *History {
	entries, err := repo.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load history, starting empty")
		entries = nil
	}
	if len(entries) > HistoryLimit {
		entries = entries[:HistoryLimit]
	}
	return &History{repo: repo, entries: entries}
}

// Add prepends e, truncates to HistoryLimit and persists the list.
func (h *History) Add(ctx context.Context, e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append([]HistoryEntry{e}, h.entries...)
	if len(h.entries) > HistoryLimit {
		h.entries = h.entries[:HistoryLimit]
	}
	if err := h.repo.Save(ctx, h.entries); err != nil {
		log.Warn().Err(err).Msg("Failed to persist history")
	}
}

// Clear empties the list and deletes the persisted key.
func (h *History) Clear(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	if err := h.repo.Delete(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to delete history")
	}
}

// Entries returns a copy, newest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HistoryEntry{}, h.entries...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
