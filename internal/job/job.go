// Package job tracks the state of URL-to-shorts runs. Jobs live in
// memory for the lifetime of the process; restarting drops them.
package job

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/reelcut/internal/transcript"
)

// Status is the coarse phase a job is in.
type Status string

const (
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusParsing     Status = "parsing"
	StatusReview      Status = "review"
	StatusAnalyzing   Status = "analyzing"
	StatusValidating  Status = "validating"
	StatusCutting     Status = "cutting"
	StatusDone        Status = "done"
	StatusError       Status = "error"
)

// Span is one source time window of a finished clip.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Clip is a finished short as surfaced to API clients.
type Clip struct {
	Title        string  `json:"title"`
	Hook         string  `json:"hook"`
	Duration     float64 `json:"duration"`
	Filename     string  `json:"filename"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Segments     []Span  `json:"segments"`
	SegmentCount int     `json:"segment_count"`
}

// Job is the full state of one run. Progress is 0..100.
//
// Segments holds the merged transcript shown at review time and sent to
// the model; CaptionSegments holds the finer time-deduplicated segments
// the subtitle sync path slices per clip window.
type Job struct {
	ID       string
	URL      string
	Status   Status
	Progress int
	Message  string
	Error    string

	VideoTitle    string
	VideoPath     string
	VideoFilename string
	CaptionPath   string
	Duration      float64
	Lang          string

	Segments        []transcript.Segment
	CaptionSegments []transcript.Segment
	Formatted       string

	Clips []Clip

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (j *Job) clone() Job {
	out := *j
	if j.Segments != nil {
		out.Segments = append([]transcript.Segment(nil), j.Segments...)
	}
	if j.CaptionSegments != nil {
		out.CaptionSegments = append([]transcript.Segment(nil), j.CaptionSegments...)
	}
	if j.Clips != nil {
		out.Clips = make([]Clip, len(j.Clips))
		for i, c := range j.Clips {
			out.Clips[i] = c
			if c.Segments != nil {
				out.Clips[i].Segments = append([]Span(nil), c.Segments...)
			}
		}
	}
	return out
}

// Store is what the pipeline and the HTTP layer need from a job store.
type Store interface {
	// Create registers a new job for url and returns a snapshot of it.
	Create(url string) Job

	// Get returns a snapshot of the job. Mutating the snapshot does
	// not affect the stored job.
	Get(id string) (Job, bool)

	// Update applies fn to the stored job under the store's lock.
	// Returns false for an unknown ID.
	Update(id string, fn func(*Job)) bool
}

// MemStore keeps jobs in an in-process map, keyed by short ID.
type MemStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{jobs: make(map[string]*Job)}
}

func (s *MemStore) Create(url string) Job {
	now := time.Now()
	j := &Job{
		ID:        uuid.NewString()[:8],
		URL:       url,
		Status:    StatusStarting,
		Progress:  0,
		Message:   "Initializing...",
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()

	return j.clone()
}

func (s *MemStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return j.clone(), true
}

func (s *MemStore) Update(id string, fn func(*Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return false
	}
	fn(j)
	j.UpdatedAt = time.Now()
	return true
}

// SetProgress is the common phase transition: status, percent, message.
func SetProgress(s Store, id string, status Status, progress int, message string) bool {
	return s.Update(id, func(j *Job) {
		j.Status = status
		j.Progress = progress
		j.Message = message
	})
}

// Fail marks the job failed with the error's message.
func Fail(s Store, id string, err error) bool {
	return s.Update(id, func(j *Job) {
		j.Status = StatusError
		j.Progress = 0
		j.Message = err.Error()
		j.Error = err.Error()
	})
}
