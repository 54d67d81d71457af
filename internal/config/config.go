package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DirName is the name of both the global (~/.focusbrief) and repo (.focusbrief) config directories.
const DirName = ".focusbrief"

// Config holds application configuration.
type Config struct {
	// Model is the generative model name.
	Model string `json:"model,omitempty"`

	// APIBaseURL is the generative model API root (no trailing path).
	APIBaseURL string `json:"api_base_url,omitempty"`

	// APIKey authenticates against the model API. Usually supplied via GEMINI_API_KEY.
	APIKey string `json:"api_key,omitempty"`

	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"top_p,omitempty"`
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`

	// StructuredOutput requests native JSON output from the model.
	// nil means "not set" so an overlay can turn it off.
	StructuredOutput *bool `json:"structured_output,omitempty"`

	GenerationTimeoutSeconds int `json:"generation_timeout_seconds,omitempty"`
	FetchTimeoutSeconds      int `json:"fetch_timeout_seconds,omitempty"`

	// MirrorTimeoutSeconds bounds each call in the tweet and transcript fallback chains.
	MirrorTimeoutSeconds int `json:"mirror_timeout_seconds,omitempty"`

	// MaxTextChars caps free-text input, in characters.
	MaxTextChars int `json:"max_text_chars,omitempty"`

	// MaxFileBytes caps uploaded files.
	MaxFileBytes int64 `json:"max_file_bytes,omitempty"`

	// MaxArticleChars is where extracted web text is truncated before generation.
	MaxArticleChars int `json:"max_article_chars,omitempty"`

	// InlineMediaMaxBytes is the largest file sent inline; bigger files go through the Files API.
	InlineMediaMaxBytes int64 `json:"inline_media_max_bytes,omitempty"`

	// CaptionLanguages lists preferred caption track languages, most preferred first.
	CaptionLanguages []string `json:"caption_languages,omitempty"`

	// TranscriptAPIURL is the primary YouTube transcript service endpoint.
	TranscriptAPIURL string `json:"transcript_api_url,omitempty"`

	// TranscriptAPIToken authenticates against TranscriptAPIURL. When empty the
	// transcript service is skipped and captions are scraped from the watch page.
	TranscriptAPIToken string `json:"transcript_api_token,omitempty"`

	// UploadTimeoutSeconds bounds a whole Files API upload, including polling
	// until the file is ready.
	UploadTimeoutSeconds int `json:"upload_timeout_seconds,omitempty"`

	// TrustProxy makes the HTTP API key rate limits on the first
	// X-Forwarded-For hop. Enable only behind a proxy that sets it.
	TrustProxy bool `json:"trust_proxy,omitempty"`

	// Per-caller request budgets for the HTTP API.
	GeneratePerMinute int `json:"generate_per_minute,omitempty"`
	UploadPerMinute   int `json:"upload_per_minute,omitempty"`
	GeneralPerMinute  int `json:"general_per_minute,omitempty"`

	// BatchConcurrency bounds concurrent pipeline runs in batch mode.
	BatchConcurrency int `json:"batch_concurrency,omitempty"`

	// AuthToken is the static bearer token required by the HTTP API. Empty leaves the API open.
	AuthToken string `json:"auth_token,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogMode is "dev" (console, debug) or "prod" (JSON, info).
	LogMode string `json:"log_mode,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	structured := true
	return &Config{
		Model:                    "gemini-3-flash-preview",
		APIBaseURL:               "https://generativelanguage.googleapis.com",
		Temperature:              0.7,
		TopP:                     0.95,
		MaxOutputTokens:          16384,
		StructuredOutput:         &structured,
		GenerationTimeoutSeconds: 60,
		UploadTimeoutSeconds:     300,
		FetchTimeoutSeconds:      15,
		MirrorTimeoutSeconds:     10,
		MaxTextChars:             100000,
		MaxFileBytes:             50 * 1024 * 1024,
		MaxArticleChars:          10000,
		InlineMediaMaxBytes:      20 * 1024 * 1024,
		CaptionLanguages:         []string{"es"},
		TranscriptAPIURL:         "https://www.youtube-transcript.io/api/transcripts",
		GeneratePerMinute:        10,
		UploadPerMinute:          5,
		GeneralPerMinute:         100,
		BatchConcurrency:         4,
		LogMode:                  "dev",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.focusbrief.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.focusbrief) and repo (.focusbrief) directories.
// Repo config is found by walking upward from startDir to find the nearest .focusbrief/config.json.
// Repo config takes precedence for scalar values and ordered preference lists;
// DisabledTools is merged (deduplicated). Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .focusbrief/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ApplyEnv overlays environment variables onto cfg. getenv is usually os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) *Config {
	overlay := &Config{
		APIKey:    strings.TrimSpace(getenv("GEMINI_API_KEY")),
		AuthToken: strings.TrimSpace(getenv("FOCUSBRIEF_AUTH_TOKEN")),
		Model:     strings.TrimSpace(getenv("FOCUSBRIEF_MODEL")),
		LogMode:   strings.TrimSpace(getenv("FOCUSBRIEF_LOG_MODE")),

		TranscriptAPIToken: strings.TrimSpace(getenv("FOCUSBRIEF_TRANSCRIPT_API_TOKEN")),
	}
	return Merge(cfg, overlay)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars and for ordered preference
// lists; DisabledTools is merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.Model = pick(overlay.Model, base.Model)
	result.APIBaseURL = pick(overlay.APIBaseURL, base.APIBaseURL)
	result.APIKey = pick(overlay.APIKey, base.APIKey)
	result.Temperature = pick(overlay.Temperature, base.Temperature)
	result.TopP = pick(overlay.TopP, base.TopP)
	result.MaxOutputTokens = pick(overlay.MaxOutputTokens, base.MaxOutputTokens)
	result.GenerationTimeoutSeconds = pick(overlay.GenerationTimeoutSeconds, base.GenerationTimeoutSeconds)
	result.FetchTimeoutSeconds = pick(overlay.FetchTimeoutSeconds, base.FetchTimeoutSeconds)
	result.MirrorTimeoutSeconds = pick(overlay.MirrorTimeoutSeconds, base.MirrorTimeoutSeconds)
	result.MaxTextChars = pick(overlay.MaxTextChars, base.MaxTextChars)
	result.MaxFileBytes = pick(overlay.MaxFileBytes, base.MaxFileBytes)
	result.MaxArticleChars = pick(overlay.MaxArticleChars, base.MaxArticleChars)
	result.InlineMediaMaxBytes = pick(overlay.InlineMediaMaxBytes, base.InlineMediaMaxBytes)
	result.TranscriptAPIURL = pick(overlay.TranscriptAPIURL, base.TranscriptAPIURL)
	result.TranscriptAPIToken = pick(overlay.TranscriptAPIToken, base.TranscriptAPIToken)
	result.UploadTimeoutSeconds = pick(overlay.UploadTimeoutSeconds, base.UploadTimeoutSeconds)
	result.TrustProxy = overlay.TrustProxy || base.TrustProxy
	result.GeneratePerMinute = pick(overlay.GeneratePerMinute, base.GeneratePerMinute)
	result.UploadPerMinute = pick(overlay.UploadPerMinute, base.UploadPerMinute)
	result.GeneralPerMinute = pick(overlay.GeneralPerMinute, base.GeneralPerMinute)
	result.BatchConcurrency = pick(overlay.BatchConcurrency, base.BatchConcurrency)
	result.AuthToken = pick(overlay.AuthToken, base.AuthToken)
	result.DBMaxOpenConns = pick(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pick(overlay.DBMaxIdleConns, base.DBMaxIdleConns)
	result.LogMode = pick(overlay.LogMode, base.LogMode)

	// Tri-state: overlay wins when set
	result.StructuredOutput = base.StructuredOutput
	if overlay.StructuredOutput != nil {
		result.StructuredOutput = overlay.StructuredOutput
	}

	// Preference order: overlay replaces base when set
	result.CaptionLanguages = base.CaptionLanguages
	if langs := mergeStringSlice(nil, overlay.CaptionLanguages); len(langs) > 0 {
		result.CaptionLanguages = langs
	}

	// Sets: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// StructuredOutputEnabled reports whether native JSON output should be requested.
func (c *Config) StructuredOutputEnabled() bool {
	return c.StructuredOutput == nil || *c.StructuredOutput
}

// GenerationTimeout is the budget for one model call.
func (c *Config) GenerationTimeout() time.Duration {
	return seconds(c.GenerationTimeoutSeconds, 60)
}

// UploadTimeout is the budget for one Files API upload, polling included.
func (c *Config) UploadTimeout() time.Duration {
	return seconds(c.UploadTimeoutSeconds, 300)
}

// FetchTimeout is the budget for one article or caption fetch.
func (c *Config) FetchTimeout() time.Duration {
	return seconds(c.FetchTimeoutSeconds, 15)
}

// MirrorTimeout is the budget for one method in a fallback chain.
func (c *Config) MirrorTimeout() time.Duration {
	return seconds(c.MirrorTimeoutSeconds, 10)
}

// String renders a config summary safe for logs.
func (c *Config) String() string {
	key := "unset"
	if c.APIKey != "" {
		key = "set"
	}
	return "model=" + c.Model + " api_key=" + key + " log_mode=" + c.LogMode +
		" structured_output=" + strconv.FormatBool(c.StructuredOutputEnabled())
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

func pick[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
