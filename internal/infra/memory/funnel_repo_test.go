package memory

import (
	"errors"
	"sync"
	"testing"

	"github.com/MihanyaZaretsky/nimble3tgbot/internal/usecase"
)

func TestFunnelRepo_DistinctChats(t *testing.T) {
	r := NewFunnelRepo()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = r.Hit(usecase.StageStart, id%5)
		}(int64(i))
	}
	wg.Wait()
	_ = r.Hit(usecase.StageWebAppData, 1)

	counts, err := r.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[usecase.StageStart] != 5 {
		t.Errorf("start = %d, want 5", counts[usecase.StageStart])
	}
	if counts[usecase.StageWebAppData] != 1 {
		t.Errorf("webapp_data = %d, want 1", counts[usecase.StageWebAppData])
	}
	if _, ok := counts[usecase.StageCallback]; ok {
		t.Error("untouched stage should be absent")
	}
}

func TestFunnelRepo_RejectsEmptyStage(t *testing.T) {
	r := NewFunnelRepo()

	if err := r.Hit("", 1); !errors.Is(err, usecase.ErrEmptyStage) {
		t.Fatalf("expected ErrEmptyStage, got %v", err)
	}
	counts, _ := r.Counts()
	if len(counts) != 0 {
		t.Errorf("nothing should be recorded, got %v", counts)
	}
}

func TestFunnelRepo_CountsIsSnapshot(t *testing.T) {
	r := NewFunnelRepo()
	_ = r.Hit(usecase.StageStart, 1)

	counts, _ := r.Counts()
	counts[usecase.StageStart] = 100

	again, _ := r.Counts()
	if again[usecase.StageStart] != 1 {
		t.Errorf("mutating a snapshot leaked into the repo: %v", again)
	}
}
