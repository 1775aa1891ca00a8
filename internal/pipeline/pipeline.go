// Package pipeline drives a job from URL to finished shorts in two
// phases. Phase one downloads the video and normalizes its captions,
// then parks the job in review. Phase two, started by the user, asks
// the model for clips, validates them, and renders each surviving clip
// with burned-in karaoke subtitles.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/reelcut/internal/config"
	"github.com/mgpai22/reelcut/internal/download"
	"github.com/mgpai22/reelcut/internal/job"
	"github.com/mgpai22/reelcut/internal/llm"
	"github.com/mgpai22/reelcut/internal/logging"
	"github.com/mgpai22/reelcut/internal/proposal"
	"github.com/mgpai22/reelcut/internal/transcript"
	"github.com/mgpai22/reelcut/internal/validator"
)

// Pipeline runs jobs against the configured providers.
type Pipeline struct {
	cfg      config.Config
	store    job.Store
	log      *logging.Logger
	dl       *download.Downloader
	proposer *proposal.Engine
	renderer *Renderer
}

// New wires the pipeline. The model client is created eagerly so a bad
// provider name or missing key fails at startup instead of mid-job.
func New(ctx context.Context, cfg config.Config, store job.Store, log *logging.Logger) (*Pipeline, error) {
	provider := llm.Provider(strings.ToLower(cfg.Provider))
	client, err := llm.Factory(ctx, provider, cfg.APIKey(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	proposer := proposal.NewEngine(client, log, proposal.Options{
		ChunkMinutes:        cfg.ChunkMinutes,
		MinLastChunkMinutes: cfg.MinLastChunkMinutes,
		MaxRetries:          cfg.MaxRetries,
	})

	dl := download.New(download.Options{
		YtDlpPath:     cfg.YtDlpPath,
		CookiesPath:   cfg.CookiesPath,
		SubtitleLangs: cfg.SubtitleLangs,
	}, log)

	return &Pipeline{
		cfg:      cfg,
		store:    store,
		log:      log,
		dl:       dl,
		proposer: proposer,
		renderer: NewRenderer(cfg, log),
	}, nil
}

// RunDownload is phase one: download the video and captions, normalize
// the transcript, and park the job in review.
func (p *Pipeline) RunDownload(ctx context.Context, id string) {
	snap, ok := p.store.Get(id)
	if !ok {
		return
	}

	if err := p.runDownload(ctx, id, snap.URL); err != nil {
		p.log.Errorf("Job %s download phase failed: %v", id, err)
		job.Fail(p.store, id, err)
	}
}

func (p *Pipeline) runDownload(ctx context.Context, id, url string) error {
	job.SetProgress(p.store, id, job.StatusDownloading, 10, "Downloading video and captions...")

	dir := filepath.Join(p.cfg.DownloadsDir(), id)
	res, err := p.dl.Download(ctx, url, dir)
	if err != nil {
		return err
	}

	p.store.Update(id, func(j *job.Job) {
		j.VideoTitle = res.Title
		j.VideoPath = res.VideoPath
		j.VideoFilename = filepath.Base(res.VideoPath)
		j.CaptionPath = res.CaptionPath
		j.Duration = res.Duration
		j.Lang = res.Lang
	})

	job.SetProgress(p.store, id, job.StatusParsing, 30, "Parsing captions...")

	segments, err := transcript.ParseFile(res.CaptionPath)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return errors.New("No valid caption segments found in the subtitle file. The captions may be empty or corrupted.")
	}

	cleaned := transcript.Clean(segments)
	if len(cleaned) == 0 {
		return errors.New("All caption segments were noise (e.g. [Music]). No usable text found.")
	}

	merged := transcript.Merge(cleaned, transcript.DefaultMergeLength)
	formatted := transcript.Format(merged)
	captionSegs := transcript.DedupOverlapping(segments)

	p.store.Update(id, func(j *job.Job) {
		j.Segments = merged
		j.CaptionSegments = captionSegs
		j.Formatted = formatted
	})

	job.SetProgress(p.store, id, job.StatusReview, 40, "Download complete! Review the video and transcript.")
	return nil
}

// RunAnalysis is phase two: model proposals, validation, and rendering.
// Callers flip the job out of review before starting it.
func (p *Pipeline) RunAnalysis(ctx context.Context, id string) {
	snap, ok := p.store.Get(id)
	if !ok {
		return
	}

	if err := p.runAnalysis(ctx, id, snap); err != nil {
		p.log.Errorf("Job %s analysis phase failed: %v", id, err)
		job.Fail(p.store, id, err)
	}
}

func (p *Pipeline) runAnalysis(ctx context.Context, id string, snap job.Job) error {
	if snap.Formatted == "" {
		return errors.New("No transcript data available. Please restart.")
	}
	transcriptStart, transcriptEnd := transcript.Span(snap.Segments)

	job.SetProgress(p.store, id, job.StatusAnalyzing, 55, "AI is analyzing the content...")

	proposed, err := p.proposer.ProposeAll(ctx, snap.Formatted, snap.Lang)
	if err != nil {
		return err
	}
	if len(proposed) == 0 {
		return errors.New("AI could not identify any suitable clips.")
	}

	job.SetProgress(p.store, id, job.StatusValidating, 75, "Validating timestamps...")

	valid := validator.Validate(proposed, validator.Limits{
		MinClipDuration: p.cfg.MinClipDuration,
		MaxClipDuration: p.cfg.MaxClipDuration,
	}, snap.Duration, transcriptStart, transcriptEnd)
	if len(valid) == 0 {
		return errors.New("No clips passed validation. Try a different video.")
	}

	job.SetProgress(p.store, id, job.StatusCutting, 88, fmt.Sprintf("Cutting %d clips...", len(valid)))

	rendered := p.renderer.RenderAll(ctx, RenderJob{
		VideoPath:   snap.VideoPath,
		OutDir:      filepath.Join(p.cfg.OutputsDir(), snap.ID),
		Clips:       valid,
		CaptionSegs: snap.CaptionSegments,
		Lang:        snap.Lang,
	})
	if len(rendered) == 0 {
		return errors.New("FFmpeg could not produce any clips.")
	}

	p.store.Update(id, func(j *job.Job) {
		j.Clips = rendered
	})
	job.SetProgress(p.store, id, job.StatusDone, 100, fmt.Sprintf("Successfully created %d shorts!", len(rendered)))
	return nil
}
