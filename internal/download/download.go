// Package download fetches source videos and their caption files with
// yt-dlp, handling age-gated videos via a cookies file and walking a
// language priority list for captions.
package download

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mgpai22/reelcut/internal/logging"
)

const (
	maxAttempts       = 3
	retryBase         = 3 * time.Second
	probeTimeout      = 45 * time.Second
	videoTimeout      = 15 * time.Minute
	captionTimeout    = 60 * time.Second
	minCaptionBytes   = 50
	rateLimitCooldown = 5 * time.Second
	captionPause      = 500 * time.Millisecond

	// videos outside these bounds are rejected before downloading
	MinVideoSeconds = 15
	MaxVideoSeconds = 14400
)

// DefaultSubtitleLangs is the caption language priority order.
var DefaultSubtitleLangs = []string{"en", "hi", "en-US", "en-GB", "en-IN"}

var (
	errNeedsAuth    = errors.New("needs authentication")
	errCookieAccess = errors.New("cookie access issue")
)

// UserError is a failure the user can act on, as opposed to an
// infrastructure fault.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string { return e.Msg }

func userErrorf(format string, args ...any) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

// Result describes a completed download.
type Result struct {
	VideoPath   string
	CaptionPath string
	Title       string
	Duration    float64
	VideoID     string
	Lang        string
}

// Options configure the yt-dlp invocations.
type Options struct {
	YtDlpPath     string   // binary to run, default "yt-dlp"
	CookiesPath   string   // optional cookies.txt for age-gated videos
	SubtitleLangs []string // caption language priority order
}

type Downloader struct {
	opts Options
	log  *logging.Logger
}

func New(opts Options, log *logging.Logger) *Downloader {
	return &Downloader{opts: opts, log: log}
}

// Download fetches the video and its captions into outputDir, wiping any
// previous files there first.
func (d *Downloader) Download(ctx context.Context, url, outputDir string) (*Result, error) {
	if err := resetDir(outputDir); err != nil {
		return nil, err
	}

	d.log.Infof("Getting video info...")
	info, usedCookies, err := d.probeWithAuthFallback(ctx, url)
	if err != nil {
		return nil, err
	}

	videoID := info.ID
	if videoID == "" {
		videoID = "video"
	}
	title := info.Title
	if title == "" {
		title = "Untitled"
	}
	d.log.Infof("Title: %s", title)
	d.log.Infof("Duration: %.0fs", info.Duration)

	if info.Duration > 0 && info.Duration < MinVideoSeconds {
		return nil, userErrorf("Video is too short (under 15 seconds). Please provide a longer video.")
	}
	if info.Duration > MaxVideoSeconds {
		return nil, userErrorf("Video is too long (over 4 hours). Please provide a shorter video.")
	}

	videoPath, err := d.downloadVideo(ctx, url, outputDir, videoID, usedCookies)
	if err != nil {
		return nil, userErrorf("Video file could not be downloaded. Please check the URL and try again.")
	}
	d.log.Infof("Video ready: %s", filepath.Base(videoPath))

	d.log.Infof("Downloading captions...")
	captionPath := d.downloadCaptions(ctx, url, outputDir, videoID, usedCookies)
	if captionPath == "" {
		return nil, userErrorf("No captions available for this video (neither manual nor auto-generated). Please try a video with captions.")
	}

	lang := parseCaptionLang(captionPath)
	d.log.Infof("Detected subtitle language: %s", lang)

	return &Result{
		VideoPath:   videoPath,
		CaptionPath: captionPath,
		Title:       title,
		Duration:    info.Duration,
		VideoID:     videoID,
		Lang:        lang,
	}, nil
}

type videoInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// probeWithAuthFallback fetches metadata without cookies first and
// escalates to the cookies file only when the video is age-gated.
func (d *Downloader) probeWithAuthFallback(ctx context.Context, url string) (*videoInfo, bool, error) {
	info, err := d.probe(ctx, url, false)
	if err == nil {
		return info, false, nil
	}
	if !errors.Is(err, errNeedsAuth) {
		return nil, false, err
	}

	d.log.Infof("Video requires age verification, retrying with cookies file...")
	if d.opts.CookiesPath == "" {
		return nil, false, userErrorf("This video requires age verification. Export a cookies.txt from a logged-in browser session, place it in the working directory, and try again.")
	}

	info, err = d.probe(ctx, url, true)
	if err == nil {
		return info, true, nil
	}
	if errors.Is(err, errNeedsAuth) {
		return nil, false, userErrorf("This video requires age verification, but the cookies file appears to be expired. Export a fresh cookies.txt and try again.")
	}
	if errors.Is(err, errCookieAccess) {
		return nil, false, userErrorf("Cookie file error: %v", err)
	}
	return nil, false, err
}

func (d *Downloader) probe(ctx context.Context, url string, useCookies bool) (*videoInfo, error) {
	args := []string{"--dump-json", "--no-download", "--no-playlist", "--no-warnings", url}
	if useCookies && d.opts.CookiesPath != "" {
		args = append(args, "--cookies", d.opts.CookiesPath)
	}

	var info videoInfo
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		stdout, stderr, err := d.run(ctx, probeTimeout, args...)
		if err == nil {
			if jerr := json.Unmarshal([]byte(stdout), &info); jerr != nil {
				return fmt.Errorf("failed to parse video info: %w", jerr)
			}
			return nil
		}

		if classified := classifyProbeFailure(stderr); classified != nil {
			return classified
		}

		d.log.Warnf("Info fetch failed, retrying: %s", truncate(stderr, 120))
		return retry.RetryableError(fmt.Errorf("failed to get video info: %s", truncate(stderr, 300)))
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// classifyProbeFailure maps yt-dlp stderr to an error class. A nil
// return means the failure looks transient and is worth retrying.
func classifyProbeFailure(stderr string) error {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(stderr, "Video unavailable") || strings.Contains(stderr, "Private video"):
		return userErrorf("This video is unavailable or private. Please try a different URL.")
	case strings.Contains(stderr, "is not a valid URL") || strings.Contains(stderr, "Unsupported URL"):
		return userErrorf("Invalid URL. Please provide a valid YouTube video link.")
	case strings.Contains(stderr, "Sign in to confirm") || strings.Contains(lower, "age"):
		return errNeedsAuth
	case strings.Contains(stderr, "Could not copy") || strings.Contains(lower, "locked") ||
		strings.Contains(lower, "sqlite") || strings.Contains(stderr, "Permission denied"):
		return fmt.Errorf("%w: %s", errCookieAccess, truncate(stderr, 100))
	default:
		return nil
	}
}

func (d *Downloader) downloadVideo(ctx context.Context, url, outputDir, videoID string, useCookies bool) (string, error) {
	args := []string{
		"--format", "bestvideo+bestaudio/best",
		"--merge-output-format", "mp4",
		"--no-playlist",
		"--no-warnings",
		"--socket-timeout", "30",
		"--retries", "5",
		"--fragment-retries", "5",
		"-o", filepath.Join(outputDir, videoID+".%(ext)s"),
		url,
	}
	if useCookies && d.opts.CookiesPath != "" {
		args = append(args, "--cookies", d.opts.CookiesPath)
	}

	var videoPath string
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		d.log.Infof("Downloading video...")
		stdout, stderr, err := d.run(ctx, videoTimeout, args...)
		if err != nil {
			d.log.Warnf("Download attempt failed: %s", truncate(stdout+stderr, 300))
		}

		// trust the files on disk over the exit code; partial merges
		// leave a usable container behind in several formats
		for _, ext := range []string{".mp4", ".webm", ".mkv", ".avi"} {
			if found := findByExt(outputDir, ext); found != "" {
				videoPath = found
				return nil
			}
		}
		return retry.RetryableError(errors.New("no video file produced"))
	})
	if err != nil {
		return "", err
	}
	return videoPath, nil
}

// downloadCaptions tries manually uploaded subtitles across the language
// priority list first, then auto-generated ones. Returns "" when nothing
// usable was found.
func (d *Downloader) downloadCaptions(ctx context.Context, url, outputDir, videoID string, useCookies bool) string {
	for _, auto := range []bool{false, true} {
		for _, lang := range d.subtitleLangs() {
			if path := d.tryCaptionDownload(ctx, url, outputDir, videoID, lang, auto, useCookies); path != "" {
				d.log.Infof("Got %s captions (%s): %s", captionKind(auto), lang, filepath.Base(path))
				return path
			}
		}
	}
	return ""
}

func (d *Downloader) tryCaptionDownload(ctx context.Context, url, outputDir, videoID, lang string, auto, useCookies bool) string {
	d.log.Infof("Trying %s captions: %s...", captionKind(auto), lang)

	// stale subtitle files from a previous language attempt would be
	// picked up as this attempt's result
	removeByExt(outputDir, ".srt")
	removeByExt(outputDir, ".vtt")

	subFlag := "--write-subs"
	if auto {
		subFlag = "--write-auto-subs"
	}
	args := []string{
		"--skip-download",
		subFlag,
		"--no-playlist",
		"--no-warnings",
		"--sub-lang", lang,
		"--convert-subs", "srt",
		"-o", filepath.Join(outputDir, videoID+".%(ext)s"),
		url,
	}
	if useCookies && d.opts.CookiesPath != "" {
		args = append(args, "--cookies", d.opts.CookiesPath)
	}

	stdout, stderr, err := d.run(ctx, captionTimeout, args...)
	if err != nil {
		d.log.Warnf("Caption attempt failed for %q (%s): %v", lang, captionKind(auto), err)
	}

	if srt := findByExt(outputDir, ".srt"); srt != "" {
		if info, serr := os.Stat(srt); serr == nil && info.Size() > minCaptionBytes {
			return srt
		}
	}
	// a failed srt conversion still leaves the raw WebVTT behind
	if vtt := findByExt(outputDir, ".vtt"); vtt != "" {
		if info, serr := os.Stat(vtt); serr == nil && info.Size() > minCaptionBytes {
			return vtt
		}
	}

	combined := stdout + stderr
	if strings.Contains(combined, "429") || strings.Contains(combined, "Too Many Requests") {
		d.log.Warnf("Rate limited for %q, waiting %s...", lang, rateLimitCooldown)
		time.Sleep(rateLimitCooldown)
	} else {
		time.Sleep(captionPause)
	}
	return ""
}

func (d *Downloader) run(ctx context.Context, timeout time.Duration, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.ytDlpPath(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (d *Downloader) ytDlpPath() string {
	if d.opts.YtDlpPath != "" {
		return d.opts.YtDlpPath
	}
	return "yt-dlp"
}

func (d *Downloader) subtitleLangs() []string {
	if len(d.opts.SubtitleLangs) > 0 {
		return d.opts.SubtitleLangs
	}
	return DefaultSubtitleLangs
}

func captionKind(auto bool) string {
	if auto {
		return "auto"
	}
	return "manual"
}

// parseCaptionLang pulls the language code out of a caption filename
// shaped like <id>.<lang>.srt or <id>.<lang>.vtt.
func parseCaptionLang(path string) string {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) >= 3 {
		code := strings.ToLower(parts[len(parts)-2])
		if code != "" && len(code) <= 5 {
			return code
		}
	}
	return "en"
}

// findByExt returns the first non-empty file in dir with the given
// extension, case-insensitively.
func findByExt(dir, ext string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	ext = strings.ToLower(ext)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ext) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return path
		}
	}
	return ""
}

func removeByExt(dir, ext string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	ext = strings.ToLower(ext)
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ext) {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}

// resetDir clears previous download files and makes sure dir exists.
func resetDir(dir string) error {
	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				_ = os.Remove(filepath.Join(dir, entry.Name()))
			}
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
