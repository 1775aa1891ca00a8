package cli

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/config"
	"github.com/mgpai22/reelcut/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reelcut",
	Short: "Turn long videos into vertical shorts with karaoke subtitles",
	Long: `Reelcut downloads a video, reads its captions, asks a language model
for the most engaging moments, and renders each one as a vertically
cropped short with word-by-word highlighted subtitles.

Clip selection needs an API key for the configured provider
(GEMINI_API_KEY, OPENAI_API_KEY, or ANTHROPIC_API_KEY); word-level
subtitle timing additionally uses OPENAI_API_KEY.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
		cfg = config.Load()

		if v, _ := cmd.Flags().GetString("provider"); v != "" {
			cfg.Provider = v
		}
		if v, _ := cmd.Flags().GetString("model"); v != "" {
			cfg.Model = v
		}
		if v, _ := cmd.Flags().GetString("workdir"); v != "" {
			cfg.WorkDir = v
		}
		if v, _ := cmd.Flags().GetString("api-key"); v != "" {
			setProviderKey(&cfg, v)
		}
	},
}

// setProviderKey routes a --api-key value to the configured provider.
func setProviderKey(c *config.Config, key string) {
	switch strings.ToLower(c.Provider) {
	case "openai":
		c.OpenAIAPIKey = key
	case "anthropic":
		c.AnthropicAPIKey = key
	default:
		c.GeminiAPIKey = key
	}
}

func Execute() error {
	_ = godotenv.Load() // a missing .env is fine
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		String("provider", "", "Model provider for clip selection (gemini, openai, anthropic)")
	rootCmd.PersistentFlags().
		String("model", "", "Provider-specific model override")
	rootCmd.PersistentFlags().
		String("workdir", "", "Working directory for downloads and outputs")
	rootCmd.PersistentFlags().
		StringP("api-key", "k", "", "API key for the clip selection provider (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Caption language hint (e.g. en, hi)")
	rootCmd.PersistentFlags().
		StringP("output", "o", "", "Output path (meaning depends on the command)")
}
