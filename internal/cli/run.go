package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/ffmpeg"
	"github.com/mgpai22/reelcut/internal/job"
	"github.com/mgpai22/reelcut/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [youtube_url]",
	Short: "Turn a video into shorts in one shot",
	Long: `Download the video, pick the most engaging moments with the
configured model, and render each one as a vertical short with karaoke
subtitles.

The command pauses after the download so the transcript can be
reviewed; pass --yes to skip the pause.

Examples:
  reelcut run https://www.youtube.com/watch?v=dQw4w9WgXcQ
  reelcut run https://youtu.be/dQw4w9WgXcQ --yes
  reelcut run https://youtu.be/dQw4w9WgXcQ --provider openai --model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().
		BoolP("yes", "y", false, "Skip the transcript review pause")
}

func runRun(cmd *cobra.Command, args []string) error {
	url := args[0]
	autoConfirm, _ := cmd.Flags().GetBool("yes")

	if !strings.Contains(url, "youtube.com") && !strings.Contains(url, "youtu.be") {
		return fmt.Errorf("expected a YouTube URL, got %q", url)
	}

	if _, err := ffmpeg.Ensure(); err != nil {
		return fmt.Errorf("ffmpeg unavailable: %w", err)
	}

	ctx := context.Background()
	store := job.NewMemStore()
	pipe, err := pipeline.New(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	j := store.Create(url)
	pipe.RunDownload(ctx, j.ID)

	snap, _ := store.Get(j.ID)
	if snap.Status == job.StatusError {
		return errors.New(snap.Message)
	}

	fmt.Printf("Downloaded: %s (%s)\n", snap.VideoTitle, mmss(snap.Duration))
	fmt.Printf("Transcript: %d segment(s), language %s\n", len(snap.Segments), snap.Lang)

	if !autoConfirm {
		fmt.Print("Press Enter to start the analysis (Ctrl+C to abort): ")
		if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
			return fmt.Errorf("aborted: %w", err)
		}
	}

	pipe.RunAnalysis(ctx, j.ID)

	snap, _ = store.Get(j.ID)
	if snap.Status == job.StatusError {
		return errors.New(snap.Message)
	}

	fmt.Println(clipTable(snap.Clips))
	fmt.Printf("%d short(s) written to %s\n", len(snap.Clips), filepath.Join(cfg.OutputsDir(), j.ID))

	return nil
}

func clipTable(clips []job.Clip) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "File", "Title", "Start", "End", "Length"})

	for i, c := range clips {
		tw.AppendRow(table.Row{
			i + 1,
			c.Filename,
			c.Title,
			mmss(c.Start),
			mmss(c.End),
			fmt.Sprintf("%.1fs", c.Duration),
		})
	}

	return tw.Render()
}

func mmss(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
