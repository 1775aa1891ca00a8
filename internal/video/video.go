// Package video cuts validated clip segments out of the source and
// composes the final vertical shorts.
package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/reelcut/internal/ffmpeg"
)

// verticalFilter crops the centre 9:16 column and scales it to the
// render canvas.
const verticalFilter = "crop=ih*9/16:ih,scale=1080:1920"

// CutSegment stream-copies [start, end) of the source into outPath. No
// re-encode happens here; the compose step owns that.
func CutSegment(ctx context.Context, videoPath string, start, end float64, outPath string) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(videoPath, ffmpeg.KwArgs{"ss": start, "to": end}).
		Output(outPath, ffmpeg.KwArgs{
			"c":                 "copy",
			"avoid_negative_ts": "make_zero",
		}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("segment cut failed: %w", err)
	}

	return requireNonEmpty(outPath)
}

// ConcatFiles joins already-cut segment files without re-encoding using
// the concat demuxer. The list file is written next to outPath and
// removed afterwards.
func ConcatFiles(ctx context.Context, segmentPaths []string, outPath string) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("no segments to concatenate")
	}

	listPath := outPath + ".txt"
	if err := os.WriteFile(listPath, []byte(concatList(segmentPaths)), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(outPath, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("concat failed: %w", err)
	}

	return requireNonEmpty(outPath)
}

// Compose re-encodes the input into a 1080x1920 vertical short, cropping
// the centre column and optionally burning a subtitle filter in.
// subtitleFilter is an ffmpeg -vf fragment such as ass='path'.
func Compose(ctx context.Context, inPath, outPath, subtitleFilter string) error {
	if _, err := os.Stat(inPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inPath)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(inPath).
		Output(outPath, ffmpeg.KwArgs{
			"vf":     composeFilter(subtitleFilter),
			"c:v":    "libx264",
			"preset": "fast",
			"crf":    23,
			"c:a":    "aac",
		}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("compose failed: %w", err)
	}

	return requireNonEmpty(outPath)
}

func composeFilter(subtitleFilter string) string {
	if subtitleFilter == "" {
		return verticalFilter
	}
	return verticalFilter + "," + subtitleFilter
}

// concatList renders the demuxer list file, one quoted path per line.
func concatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`))
	}
	return b.String()
}

func requireNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output not produced: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output file is empty: %s", path)
	}
	return nil
}
