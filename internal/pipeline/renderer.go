package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mgpai22/reelcut/internal/align"
	"github.com/mgpai22/reelcut/internal/audio"
	"github.com/mgpai22/reelcut/internal/config"
	"github.com/mgpai22/reelcut/internal/job"
	"github.com/mgpai22/reelcut/internal/karaoke"
	"github.com/mgpai22/reelcut/internal/logging"
	"github.com/mgpai22/reelcut/internal/stt"
	"github.com/mgpai22/reelcut/internal/transcript"
	"github.com/mgpai22/reelcut/internal/validator"
	"github.com/mgpai22/reelcut/internal/video"
)

// Renderer turns validated clips into finished vertical shorts with
// karaoke subtitles burned in.
type Renderer struct {
	cfg config.Config
	log *logging.Logger
}

func NewRenderer(cfg config.Config, log *logging.Logger) *Renderer {
	return &Renderer{cfg: cfg, log: log}
}

// RenderJob is one batch of clips to render from a single source video.
// CaptionSegs supplies the subtitle text per clip window; with none,
// shorts are rendered without subtitles.
type RenderJob struct {
	VideoPath   string
	OutDir      string
	Clips       []validator.Validated
	CaptionSegs []transcript.Segment
	Lang        string
}

// RenderAll renders the batch on a bounded worker pool. Clips are
// independent; a failed clip is skipped, and output order follows the
// input order regardless of which worker finished first.
func (r *Renderer) RenderAll(ctx context.Context, req RenderJob) []job.Clip {
	if err := os.MkdirAll(req.OutDir, 0755); err != nil {
		r.log.Errorf("Could not create output directory: %v", err)
		return nil
	}

	aligner := r.newAligner(req.Lang)

	concurrency := r.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	results := make([]*job.Clip, len(req.Clips))
	var wg sync.WaitGroup

	for i, clip := range req.Clips {
		wg.Add(1)
		go func(n int, clip validator.Validated) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rendered, err := r.renderClip(ctx, renderInput{
				index:       n + 1,
				clip:        clip,
				videoPath:   req.VideoPath,
				outDir:      req.OutDir,
				captionSegs: req.CaptionSegs,
				aligner:     aligner,
			})
			if err != nil {
				r.log.Warnf("Clip %d (%q) failed, skipping: %v", n+1, clip.Title, err)
				return
			}
			results[n] = rendered
		}(i, clip)
	}
	wg.Wait()

	out := make([]job.Clip, 0, len(req.Clips))
	for _, res := range results {
		if res != nil {
			out = append(out, *res)
		}
	}
	return out
}

type renderInput struct {
	index       int // 1-based, fixed before rendering so names are stable
	clip        validator.Validated
	videoPath   string
	outDir      string
	captionSegs []transcript.Segment
	aligner     *align.Aligner
}

// renderClip cuts the clip's segments out of the source, derives word
// timings on the concatenated timeline, and composes the vertical short
// with the karaoke track burned in.
func (r *Renderer) renderClip(ctx context.Context, in renderInput) (*job.Clip, error) {
	filename := fmt.Sprintf("short_%d.mp4", in.index)
	finalPath := filepath.Join(in.outDir, filename)
	base := strings.TrimSuffix(finalPath, ".mp4")

	var intermediates []string
	defer func() {
		for _, path := range intermediates {
			_ = os.Remove(path)
		}
	}()

	segPaths := make([]string, 0, len(in.clip.Segments))
	for m, seg := range in.clip.Segments {
		segPath := fmt.Sprintf("%s_seg_%d.mp4", base, m)
		if err := video.CutSegment(ctx, in.videoPath, seg.Start, seg.End, segPath); err != nil {
			return nil, fmt.Errorf("cut segment %d: %w", m+1, err)
		}
		segPaths = append(segPaths, segPath)
		intermediates = append(intermediates, segPath)
	}

	rawPath := segPaths[0]
	if len(segPaths) > 1 {
		rawPath = base + "_joined.mp4"
		if err := video.ConcatFiles(ctx, segPaths, rawPath); err != nil {
			return nil, fmt.Errorf("concat segments: %w", err)
		}
		intermediates = append(intermediates, rawPath)
	}

	words := r.clipWords(ctx, in, base)
	entries := karaoke.Plan(words, 0, karaoke.Options{
		MaxWords:          r.cfg.MaxWordsPerEntry,
		MinDisplaySeconds: r.cfg.MinDisplaySeconds,
	})

	assPath := base + ".ass"
	style := karaoke.Style{FontName: r.cfg.FontName, FontSize: r.cfg.FontSize}
	wrote, err := karaoke.WriteFile(entries, assPath, style)
	if err != nil {
		r.log.Warnf("Could not write subtitle track for clip %d: %v", in.index, err)
		wrote = false
	}

	filter := ""
	if wrote {
		filter = karaoke.VFFilter(assPath, r.cfg.FontsDir)
	}

	if err := video.Compose(ctx, rawPath, finalPath, filter); err != nil {
		if filter == "" {
			return nil, fmt.Errorf("compose: %w", err)
		}
		r.log.Warnf("Subtitle burn failed for clip %d, retrying without subtitles: %v", in.index, err)
		if err := video.Compose(ctx, rawPath, finalPath, ""); err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
	}

	spans := make([]job.Span, len(in.clip.Segments))
	for i, s := range in.clip.Segments {
		spans[i] = job.Span{Start: s.Start, End: s.End}
	}

	return &job.Clip{
		Title:        in.clip.Title,
		Hook:         in.clip.Hook,
		Duration:     in.clip.Duration,
		Filename:     filename,
		Start:        in.clip.Start,
		End:          in.clip.End,
		Segments:     spans,
		SegmentCount: len(spans),
	}, nil
}

// clipWords produces word timings for the whole clip on its concat
// timeline. Each segment's words come from recognizing its audio
// window; when recognition is unavailable the caption text is spaced
// evenly across the window instead.
func (r *Renderer) clipWords(ctx context.Context, in renderInput, base string) []align.Word {
	var (
		words  []align.Word
		offset float64
	)

	for m, seg := range in.clip.Segments {
		segDur := seg.End - seg.Start
		text := windowText(in.captionSegs, seg.Start, seg.End)
		if strings.TrimSpace(text) == "" {
			offset += segDur
			continue
		}

		var segWords []align.Word
		switch {
		case in.aligner == nil:
			segWords = align.ProportionalSpacing(text, segDur)
		default:
			wavPath := fmt.Sprintf("%s_seg_%d.wav", base, m)
			if err := audio.ExtractWindow(ctx, in.videoPath, seg.Start, segDur, wavPath); err != nil {
				r.log.Warnf("Audio extraction failed (%v). Falling back to proportional spacing.", err)
				segWords = align.ProportionalSpacing(text, segDur)
			} else {
				segWords = in.aligner.Align(ctx, wavPath, text, segDur)
				_ = os.Remove(wavPath)
			}
		}

		for _, w := range segWords {
			words = append(words, align.Word{
				Text:  w.Text,
				Start: w.Start + offset,
				End:   w.End + offset,
			})
		}
		offset += segDur
	}

	return words
}

// newAligner builds the word-timing aligner, or returns nil when no
// recognition backend is configured.
func (r *Renderer) newAligner(lang string) *align.Aligner {
	if r.cfg.OpenAIAPIKey == "" {
		r.log.Infof("OPENAI_API_KEY not set; karaoke timing will use proportional spacing")
		return nil
	}
	engine, err := stt.NewWhisperEngine(r.cfg.OpenAIAPIKey, r.cfg.WhisperModel, whisperLang(lang))
	if err != nil {
		r.log.Warnf("Word recognition unavailable: %v", err)
		return nil
	}
	return align.New(engine, r.log)
}

// whisperLang maps a caption language tag like "en-us" to the
// two-letter hint the recognizer accepts. Unknown shapes leave
// detection to the model.
func whisperLang(lang string) string {
	code := strings.ToLower(strings.SplitN(lang, "-", 2)[0])
	if len(code) == 2 {
		return code
	}
	return ""
}

// windowText joins the caption text overlapping the [start, end) window.
func windowText(segments []transcript.Segment, start, end float64) string {
	var parts []string
	for _, seg := range segments {
		if seg.Start < end && seg.End > start {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, " ")
}
