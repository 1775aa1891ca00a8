package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/audio"
	"github.com/mgpai22/reelcut/internal/ffmpeg"
	"github.com/mgpai22/reelcut/internal/pipeline"
	"github.com/mgpai22/reelcut/internal/proposal"
	"github.com/mgpai22/reelcut/internal/transcript"
	"github.com/mgpai22/reelcut/internal/validator"
)

var cutCmd = &cobra.Command{
	Use:   "cut [video_file] [clips_file]",
	Short: "Render shorts from a video and a clips JSON file",
	Long: `Cut each clip out of the video and compose vertical shorts. The clips
file is JSON in the shape written by propose --output:

  [{"title": "...", "segments": [{"start": 12.5, "end": 61.0}]}]

With --captions the matching SRT or WebVTT file supplies the karaoke
subtitle text; without it the shorts are rendered without subtitles.

Examples:
  reelcut cut video.mp4 clips.json
  reelcut cut video.mp4 clips.json --captions captions.srt -o shorts`,
	Args: cobra.ExactArgs(2),
	RunE: runCut,
}

func init() {
	rootCmd.AddCommand(cutCmd)

	cutCmd.Flags().
		String("captions", "", "SRT or WebVTT file supplying karaoke subtitle text")
}

func runCut(cmd *cobra.Command, args []string) error {
	videoPath, clipsPath := args[0], args[1]

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}
	if _, err := ffmpeg.Ensure(); err != nil {
		return fmt.Errorf("ffmpeg unavailable: %w", err)
	}

	clips, err := readClipsJSON(clipsPath)
	if err != nil {
		return err
	}
	if len(clips) == 0 {
		return fmt.Errorf("no clips in %s", clipsPath)
	}

	duration, err := audio.Duration(videoPath)
	if err != nil {
		return fmt.Errorf("failed to probe video duration: %w", err)
	}

	valid := validator.Validate(clips, validator.Limits{
		MinClipDuration: cfg.MinClipDuration,
		MaxClipDuration: cfg.MaxClipDuration,
	}, duration, 0, duration)
	if len(valid) == 0 {
		return errors.New("no clips passed validation against the video duration")
	}
	if len(valid) < len(clips) {
		logger.Warnf("%d clip(s) failed validation and will be skipped", len(clips)-len(valid))
	}

	var captionSegs []transcript.Segment
	if captionsPath, _ := cmd.Flags().GetString("captions"); captionsPath != "" {
		segments, err := transcript.ParseFile(captionsPath)
		if err != nil {
			return err
		}
		captionSegs = transcript.DedupOverlapping(segments)
	}

	lang, _ := cmd.Flags().GetString("language")

	outDir, _ := cmd.Flags().GetString("output")
	if outDir == "" {
		outDir = "shorts"
	}

	renderer := pipeline.NewRenderer(cfg, logger)
	rendered := renderer.RenderAll(context.Background(), pipeline.RenderJob{
		VideoPath:   videoPath,
		OutDir:      outDir,
		Clips:       valid,
		CaptionSegs: captionSegs,
		Lang:        lang,
	})
	if len(rendered) == 0 {
		return errors.New("no clips could be rendered")
	}

	fmt.Println(clipTable(rendered))
	absOut, _ := filepath.Abs(outDir)
	fmt.Printf("%d short(s) written to %s\n", len(rendered), absOut)

	return nil
}

func readClipsJSON(path string) ([]proposal.Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clips file: %w", err)
	}

	var decoded []clipJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse clips file: %w", err)
	}

	clips := make([]proposal.Clip, 0, len(decoded))
	for _, c := range decoded {
		clips = append(clips, proposal.Clip{Title: c.Title, Hook: c.Hook, Segments: c.Segments})
	}
	return clips, nil
}
