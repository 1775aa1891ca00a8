package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds every tunable the pipeline reads from the environment.
// Values come from process env vars (a .env file is loaded at startup),
// with defaults that match a stock deployment.
type Config struct {
	// API keys per provider.
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Clip proposal.
	Provider            string  // gemini, openai, anthropic
	Model               string  // provider-specific model override
	MinClipDuration     float64 // seconds, total per clip
	MaxClipDuration     float64 // seconds, total per clip
	ChunkMinutes        float64 // transcript minutes per model call
	MinLastChunkMinutes float64 // trailing chunk below this merges back
	MaxRetries          int     // attempts per model call

	// Speech-to-text for subtitle sync.
	WhisperModel string

	// Karaoke rendering.
	MaxWordsPerEntry  int
	MinDisplaySeconds float64
	FontName          string
	FontSize          int
	FontsDir          string

	// Downloader.
	SubtitleLangs []string
	CookiesPath   string
	YtDlpPath     string

	// Process-level.
	WorkDir     string
	Addr        string
	Concurrency int // parallel clip renders
}

// Load reads configuration from the environment.
func Load() Config {
	workDir := getEnv("REELCUT_WORKDIR", defaultWorkDir())

	return Config{
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		Provider:            getEnv("REELCUT_PROVIDER", "gemini"),
		Model:               os.Getenv("REELCUT_MODEL"),
		MinClipDuration:     getEnvFloat("REELCUT_MIN_CLIP_DURATION", 15),
		MaxClipDuration:     getEnvFloat("REELCUT_MAX_CLIP_DURATION", 150),
		ChunkMinutes:        getEnvFloat("REELCUT_CHUNK_MINUTES", 7),
		MinLastChunkMinutes: getEnvFloat("REELCUT_MIN_LAST_CHUNK_MINUTES", 2.5),
		MaxRetries:          getEnvInt("REELCUT_MAX_RETRIES", 3),

		WhisperModel: getEnv("REELCUT_WHISPER_MODEL", "whisper-1"),

		MaxWordsPerEntry:  getEnvInt("REELCUT_MAX_WORDS", 4),
		MinDisplaySeconds: getEnvFloat("REELCUT_MIN_DISPLAY_SECONDS", 0.9),
		FontName:          getEnv("REELCUT_FONT", "Arial"),
		FontSize:          getEnvInt("REELCUT_FONT_SIZE", 54),
		FontsDir:          os.Getenv("REELCUT_FONTS_DIR"),

		SubtitleLangs: getEnvList(
			"REELCUT_SUBTITLE_LANGS",
			[]string{"en", "hi", "en-US", "en-GB", "en-IN"},
		),
		CookiesPath: getEnv("REELCUT_COOKIES", defaultCookiesPath(workDir)),
		YtDlpPath:   os.Getenv("REELCUT_YTDLP_PATH"),

		WorkDir:     workDir,
		Addr:        getEnv("REELCUT_ADDR", ":5000"),
		Concurrency: getEnvInt("REELCUT_CONCURRENCY", 2),
	}
}

// APIKey returns the key for the configured proposal provider.
func (c Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// DownloadsDir is where source videos and captions land, per job.
func (c Config) DownloadsDir() string {
	return filepath.Join(c.WorkDir, "downloads")
}

// OutputsDir is where finished shorts are written, per job.
func (c Config) OutputsDir() string {
	return filepath.Join(c.WorkDir, "outputs")
}

func defaultWorkDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func defaultCookiesPath(workDir string) string {
	path := filepath.Join(workDir, "cookies.txt")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvList(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
