package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/transcript"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript [caption_file]",
	Short: "Normalize a caption file into a compact transcript",
	Long: `Parse an SRT or WebVTT caption file, strip noise markers and
duplicates, merge fragments into complete thoughts, and print the
timestamped transcript that clip selection sees.

Examples:
  reelcut transcript captions.srt
  reelcut transcript captions.srt -o transcript.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscript,
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
}

func runTranscript(cmd *cobra.Command, args []string) error {
	segments, err := transcript.ParseFile(args[0])
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("no caption segments found in %s", args[0])
	}

	cleaned := transcript.Clean(segments)
	if len(cleaned) == 0 {
		return fmt.Errorf("all caption segments were noise, nothing to format")
	}

	merged := transcript.Merge(cleaned, transcript.DefaultMergeLength)
	formatted := transcript.Format(merged)

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		fmt.Println(formatted)
		return nil
	}

	if err := os.WriteFile(outputPath, []byte(formatted+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Transcript written: %s (%d segment(s))\n", absOutput, len(merged))

	return nil
}
