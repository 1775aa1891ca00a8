package pipeline

import (
	"context"
	"testing"

	"github.com/mgpai22/reelcut/internal/config"
	"github.com/mgpai22/reelcut/internal/job"
	"github.com/mgpai22/reelcut/internal/logging"
	"github.com/mgpai22/reelcut/internal/transcript"
)

func TestWhisperLang(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"en-us", "en"},
		{"EN-GB", "en"},
		{"hi", "hi"},
		{"", ""},
		{"eng", ""},
		{"x", ""},
	}
	for _, tt := range tests {
		if got := whisperLang(tt.in); got != tt.want {
			t.Errorf("whisperLang(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWindowText(t *testing.T) {
	segs := []transcript.Segment{
		{Start: 0, End: 3, Text: "first line"},
		{Start: 3, End: 6, Text: "second line"},
		{Start: 6, End: 9, Text: "third line"},
	}

	tests := []struct {
		name       string
		start, end float64
		want       string
	}{
		{"full span", 0, 9, "first line second line third line"},
		{"middle only", 3, 6, "second line"},
		{"straddles boundary", 2, 4, "first line second line"},
		{"touching start is exclusive", 9, 12, ""},
		{"before everything", -5, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowText(segs, tt.start, tt.end); got != tt.want {
				t.Errorf("windowText(%v, %v) = %q, want %q", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestRunAnalysisRequiresTranscript(t *testing.T) {
	store := job.NewMemStore()
	j := store.Create("https://youtube.com/watch?v=abc")
	store.Update(j.ID, func(j *job.Job) {
		j.Status = job.StatusAnalyzing
	})

	p := &Pipeline{cfg: config.Config{}, store: store, log: logging.NewNop()}
	p.RunAnalysis(context.Background(), j.ID)

	got, _ := store.Get(j.ID)
	if got.Status != job.StatusError {
		t.Fatalf("Status = %q, want error", got.Status)
	}
	if got.Message != "No transcript data available. Please restart." {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestRunAnalysisUnknownJob(t *testing.T) {
	p := &Pipeline{cfg: config.Config{}, store: job.NewMemStore(), log: logging.NewNop()}
	// must not panic or create state
	p.RunAnalysis(context.Background(), "nope")
}
