package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/llm"
	"github.com/mgpai22/reelcut/internal/proposal"
	"github.com/mgpai22/reelcut/internal/transcript"
	"github.com/mgpai22/reelcut/internal/validator"
)

var proposeCmd = &cobra.Command{
	Use:   "propose [caption_file]",
	Short: "Ask the model for clip proposals from a caption file",
	Long: `Normalize the captions, send the transcript to the configured model,
validate the returned clips, and print the survivors.

With --output the validated clips are also written as JSON in the shape
the cut command reads.

Examples:
  reelcut propose captions.srt
  reelcut propose captions.srt --duration 933
  reelcut propose captions.srt -l hi -o clips.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPropose,
}

func init() {
	rootCmd.AddCommand(proposeCmd)

	proposeCmd.Flags().
		Float64("duration", 0, "Source video duration in seconds (default: transcript end)")
}

func runPropose(cmd *cobra.Command, args []string) error {
	segments, err := transcript.ParseFile(args[0])
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("no caption segments found in %s", args[0])
	}

	cleaned := transcript.Clean(segments)
	if len(cleaned) == 0 {
		return fmt.Errorf("all caption segments were noise, nothing to analyze")
	}

	merged := transcript.Merge(cleaned, transcript.DefaultMergeLength)
	formatted := transcript.Format(merged)

	lang, _ := cmd.Flags().GetString("language")
	if lang == "" {
		lang = "en"
	}

	ctx := context.Background()
	provider := llm.Provider(strings.ToLower(cfg.Provider))
	client, err := llm.Factory(ctx, provider, cfg.APIKey(cfg.Provider), cfg.Model)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	engine := proposal.NewEngine(client, logger, proposal.Options{
		ChunkMinutes:        cfg.ChunkMinutes,
		MinLastChunkMinutes: cfg.MinLastChunkMinutes,
		MaxRetries:          cfg.MaxRetries,
	})

	proposed, err := engine.ProposeAll(ctx, formatted, lang)
	if err != nil {
		return err
	}
	if len(proposed) == 0 {
		return errors.New("the model proposed no clips")
	}

	transcriptStart, transcriptEnd := transcript.Span(merged)
	videoDuration, _ := cmd.Flags().GetFloat64("duration")
	if videoDuration <= 0 {
		videoDuration = transcriptEnd
	}

	valid := validator.Validate(proposed, validator.Limits{
		MinClipDuration: cfg.MinClipDuration,
		MaxClipDuration: cfg.MaxClipDuration,
	}, videoDuration, transcriptStart, transcriptEnd)
	if len(valid) == 0 {
		return errors.New("no proposals passed validation")
	}

	fmt.Println(proposalTable(valid))
	fmt.Printf("%d of %d proposal(s) passed validation\n", len(valid), len(proposed))

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "" {
		if err := writeClipsJSON(outputPath, valid); err != nil {
			return err
		}
		absOutput, _ := filepath.Abs(outputPath)
		fmt.Printf("Clips written: %s\n", absOutput)
	}

	return nil
}

func proposalTable(clips []validator.Validated) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "Hook", "Span", "Length", "Segments"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 36},
		{Number: 3, WidthMax: 36},
	})

	for i, c := range clips {
		tw.AppendRow(table.Row{
			i + 1,
			c.Title,
			c.Hook,
			fmt.Sprintf("%s-%s", mmss(c.Start), mmss(c.End)),
			fmt.Sprintf("%.1fs", c.Duration),
			len(c.Segments),
		})
	}

	return tw.Render()
}

// clipJSON is the on-disk clip shape shared by propose --output and cut.
type clipJSON struct {
	Title    string          `json:"title"`
	Hook     string          `json:"hook,omitempty"`
	Segments []proposal.Span `json:"segments"`
}

func writeClipsJSON(path string, clips []validator.Validated) error {
	out := make([]clipJSON, 0, len(clips))
	for _, c := range clips {
		out = append(out, clipJSON{Title: c.Title, Hook: c.Hook, Segments: c.Segments})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode clips: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write clips file: %w", err)
	}
	return nil
}
