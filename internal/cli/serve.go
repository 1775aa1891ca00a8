package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/ffmpeg"
	"github.com/mgpai22/reelcut/internal/job"
	"github.com/mgpai22/reelcut/internal/pipeline"
	"github.com/mgpai22/reelcut/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for the review workflow",
	Long: `Start the HTTP server. POST a YouTube URL to /api/process, poll
/api/status/{id} while the download runs, review the transcript via
/api/transcript/{id} and /api/preview/{id}, then POST
/api/continue/{id} to start the analysis. Finished shorts are served
from /api/download/{id}/{filename}.

Examples:
  reelcut serve
  reelcut serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().
		String("addr", "", "Listen address (default :5000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	if _, err := ffmpeg.Ensure(); err != nil {
		return fmt.Errorf("ffmpeg unavailable: %w", err)
	}

	store := job.NewMemStore()
	pipe, err := pipeline.New(context.Background(), cfg, store, logger)
	if err != nil {
		return err
	}

	return server.New(cfg, store, pipe, logger).Run()
}
