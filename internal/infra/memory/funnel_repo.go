package memory

import (
	"sync"

	"github.com/MihanyaZaretsky/nimble3tgbot/internal/usecase"
)

// FunnelRepo counts distinct chats per funnel stage for the lifetime of the
// process. A restart resets /stats, use the sqlite repo to keep history.
type FunnelRepo struct {
	mu    sync.RWMutex
	chats map[usecase.Stage]map[int64]struct{}
}

func NewFunnelRepo() *FunnelRepo {
	return &FunnelRepo{chats: make(map[usecase.Stage]map[int64]struct{})}
}

// Hit records chatID under stage. Repeated hits from one chat count once.
func (r *FunnelRepo) Hit(stage usecase.Stage, chatID int64) error {
	if stage == "" {
		return usecase.ErrEmptyStage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.chats[stage]
	if !ok {
		set = make(map[int64]struct{})
		r.chats[stage] = set
	}
	set[chatID] = struct{}{}
	return nil
}

// Counts returns a snapshot; stages nobody reached are absent.
func (r *FunnelRepo) Counts() (map[usecase.Stage]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[usecase.Stage]int, len(r.chats))
	for stage, set := range r.chats {
		out[stage] = len(set)
	}
	return out, nil
}
