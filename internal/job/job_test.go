package job

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestCreate(t *testing.T) {
	store := NewMemStore()
	j := store.Create("https://youtube.com/watch?v=abc")

	if len(j.ID) != 8 {
		t.Errorf("ID length = %d, want 8", len(j.ID))
	}
	if j.Status != StatusStarting {
		t.Errorf("Status = %q, want %q", j.Status, StatusStarting)
	}
	if j.Progress != 0 {
		t.Errorf("Progress = %d, want 0", j.Progress)
	}
	if j.Message != "Initializing..." {
		t.Errorf("Message = %q", j.Message)
	}
	if j.URL != "https://youtube.com/watch?v=abc" {
		t.Errorf("URL = %q", j.URL)
	}

	got, ok := store.Get(j.ID)
	if !ok {
		t.Fatalf("Get(%q) missing", j.ID)
	}
	if got.ID != j.ID {
		t.Errorf("Get returned ID %q, want %q", got.ID, j.ID)
	}
}

func TestCreateUniqueIDs(t *testing.T) {
	store := NewMemStore()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		j := store.Create("url")
		if seen[j.ID] {
			t.Fatalf("duplicate ID %q", j.ID)
		}
		seen[j.ID] = true
	}
}

func TestGetUnknown(t *testing.T) {
	store := NewMemStore()
	if _, ok := store.Get("nope"); ok {
		t.Errorf("Get on unknown ID reported ok")
	}
}

func TestUpdate(t *testing.T) {
	store := NewMemStore()
	j := store.Create("url")

	ok := store.Update(j.ID, func(j *Job) {
		j.VideoTitle = "My Talk"
		j.Duration = 600
	})
	if !ok {
		t.Fatalf("Update returned false for known ID")
	}

	got, _ := store.Get(j.ID)
	if got.VideoTitle != "My Talk" || got.Duration != 600 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.UpdatedAt.Before(j.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards")
	}

	if store.Update("nope", func(j *Job) {}) {
		t.Errorf("Update on unknown ID reported true")
	}
}

func TestSetProgress(t *testing.T) {
	store := NewMemStore()
	j := store.Create("url")

	SetProgress(store, j.ID, StatusDownloading, 10, "Downloading video and captions...")

	got, _ := store.Get(j.ID)
	if got.Status != StatusDownloading || got.Progress != 10 {
		t.Errorf("got %s/%d, want downloading/10", got.Status, got.Progress)
	}
	if got.Message != "Downloading video and captions..." {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestFail(t *testing.T) {
	store := NewMemStore()
	j := store.Create("url")
	SetProgress(store, j.ID, StatusCutting, 88, "Cutting 3 clips...")

	Fail(store, j.ID, errors.New("ffmpeg exploded"))

	got, _ := store.Get(j.ID)
	if got.Status != StatusError {
		t.Errorf("Status = %q, want error", got.Status)
	}
	if got.Progress != 0 {
		t.Errorf("Progress = %d, want 0", got.Progress)
	}
	if got.Message != "ffmpeg exploded" || got.Error != "ffmpeg exploded" {
		t.Errorf("Message/Error = %q/%q", got.Message, got.Error)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewMemStore()
	j := store.Create("url")
	store.Update(j.ID, func(j *Job) {
		j.Clips = []Clip{{
			Title:    "First",
			Segments: []Span{{Start: 1, End: 2}},
		}}
	})

	snap, _ := store.Get(j.ID)
	snap.Clips[0].Title = "mutated"
	snap.Clips[0].Segments[0].Start = 99

	fresh, _ := store.Get(j.ID)
	if fresh.Clips[0].Title != "First" {
		t.Errorf("snapshot mutation leaked into store: Title = %q", fresh.Clips[0].Title)
	}
	if fresh.Clips[0].Segments[0].Start != 1 {
		t.Errorf("snapshot mutation leaked into store: Start = %v", fresh.Clips[0].Segments[0].Start)
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := NewMemStore()
	j := store.Create("url")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			SetProgress(store, j.ID, StatusAnalyzing, n, fmt.Sprintf("step %d", n))
		}(i)
		go func() {
			defer wg.Done()
			store.Get(j.ID)
		}()
	}
	wg.Wait()

	got, ok := store.Get(j.ID)
	if !ok || got.Status != StatusAnalyzing {
		t.Errorf("after concurrent updates: ok=%v status=%q", ok, got.Status)
	}
}
