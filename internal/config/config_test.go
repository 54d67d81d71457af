package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTextChars != DefaultConfig().MaxTextChars {
		t.Fatalf("MaxTextChars = %d, want %d", cfg.MaxTextChars, DefaultConfig().MaxTextChars)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"max_text_chars": 500}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTextChars != 500 {
		t.Fatalf("MaxTextChars = %d, want %d", cfg.MaxTextChars, 500)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["capsule_delete", "capsule_create"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "capsule_delete" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "capsule_delete")
	}
	if cfg.DisabledTools[1] != "capsule_create" {
		t.Errorf("DisabledTools[1] = %q, want %q", cfg.DisabledTools[1], "capsule_create")
	}
}

func TestLoad_DisabledToolsEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 0 {
		t.Fatalf("DisabledTools = %v, want nil or empty", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	// Global config
	globalConfig := `{"max_text_chars": 8000, "disabled_tools": ["capsule_delete"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// Repo config at repoRoot/.focusbrief/config.json
	repoCfgDir := filepath.Join(repoRoot, DirName)
	if err := os.MkdirAll(repoCfgDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	repoConfig := `{"max_text_chars": 5000, "disabled_tools": ["capsule_create"]}`
	if err := os.WriteFile(filepath.Join(repoCfgDir, "config.json"), []byte(repoConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	// Repo overrides scalar
	if cfg.MaxTextChars != 5000 {
		t.Errorf("MaxTextChars = %d, want 5000 (repo override)", cfg.MaxTextChars)
	}

	// Arrays merged
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_OnlyGlobal(t *testing.T) {
	globalDir := t.TempDir()
	repoDir := t.TempDir() // No config file

	globalConfig := `{"max_text_chars": 8000, "disabled_tools": ["capsule_delete"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, repoDir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.MaxTextChars != 8000 {
		t.Errorf("MaxTextChars = %d, want 8000", cfg.MaxTextChars)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "capsule_delete" {
		t.Errorf("DisabledTools = %v, want [capsule_delete]", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_OnlyRepo(t *testing.T) {
	globalDir := t.TempDir() // No config file
	repoRoot := t.TempDir()

	// Repo config at repoRoot/.focusbrief/config.json
	repoCfgDir := filepath.Join(repoRoot, DirName)
	if err := os.MkdirAll(repoCfgDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	repoConfig := `{"disabled_tools": ["capsule_create", "capsule_list"]}`
	if err := os.WriteFile(filepath.Join(repoCfgDir, "config.json"), []byte(repoConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	// Default value preserved
	if cfg.MaxTextChars != 100000 {
		t.Errorf("MaxTextChars = %d, want 100000 (default)", cfg.MaxTextChars)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoDir := t.TempDir()

	cfg, err := LoadWithRepo(globalDir, repoDir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	// All defaults
	if cfg.MaxTextChars != 100000 {
		t.Errorf("MaxTextChars = %d, want 100000", cfg.MaxTextChars)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{MaxTextChars: 10000, DBMaxOpenConns: 5}
	overlay := &Config{MaxTextChars: 5000} // DBMaxOpenConns is 0 (zero value)

	result := Merge(base, overlay)

	if result.MaxTextChars != 5000 {
		t.Errorf("MaxTextChars = %d, want 5000 (overlay)", result.MaxTextChars)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
}

func TestMerge_StructuredOutputTriState(t *testing.T) {
	off := false
	base := DefaultConfig()

	if got := Merge(base, &Config{}); !got.StructuredOutputEnabled() {
		t.Error("unset overlay should keep base structured_output=true")
	}
	if got := Merge(base, &Config{StructuredOutput: &off}); got.StructuredOutputEnabled() {
		t.Error("overlay structured_output=false should win")
	}
}

func TestLoad_StructuredOutputFalse(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(`{"structured_output": false, "temperature": 0.2}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StructuredOutputEnabled() {
		t.Error("StructuredOutputEnabled() = true, want false")
	}
	if cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Temperature)
	}
	if cfg.TopP != 0.95 {
		t.Errorf("TopP = %v, want default 0.95", cfg.TopP)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":        " key-123 ",
		"FOCUSBRIEF_AUTH_TOKEN": "secret",
		"FOCUSBRIEF_LOG_MODE":   "prod",

		"FOCUSBRIEF_TRANSCRIPT_API_TOKEN": "yt-token",
	}
	cfg := ApplyEnv(DefaultConfig(), func(k string) string { return env[k] })

	if cfg.APIKey != "key-123" {
		t.Errorf("APIKey = %q, want key-123", cfg.APIKey)
	}
	if cfg.AuthToken != "secret" {
		t.Errorf("AuthToken = %q, want secret", cfg.AuthToken)
	}
	if cfg.LogMode != "prod" {
		t.Errorf("LogMode = %q, want prod", cfg.LogMode)
	}
	if cfg.Model != DefaultConfig().Model {
		t.Errorf("Model = %q, want default (env unset)", cfg.Model)
	}
	if cfg.TranscriptAPIToken != "yt-token" {
		t.Errorf("TranscriptAPIToken = %q, want yt-token", cfg.TranscriptAPIToken)
	}
}

func TestDefaultConfig_Limits(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxFileBytes != 52428800 {
		t.Errorf("MaxFileBytes = %d, want 50MB", cfg.MaxFileBytes)
	}
	if cfg.MaxTextChars != 100000 {
		t.Errorf("MaxTextChars = %d, want 100000", cfg.MaxTextChars)
	}
	if cfg.MaxArticleChars < 10000 || cfg.MaxArticleChars > 15000 {
		t.Errorf("MaxArticleChars = %d, want within 10000..15000", cfg.MaxArticleChars)
	}
	if cfg.GenerationTimeout().Seconds() != 60 || cfg.MirrorTimeout().Seconds() != 10 {
		t.Errorf("timeouts = %v/%v", cfg.GenerationTimeout(), cfg.MirrorTimeout())
	}
	if cfg.UploadTimeout().Seconds() != 300 {
		t.Errorf("UploadTimeout = %v, want 5m", cfg.UploadTimeout())
	}
	if cfg.TranscriptAPIToken != "" || cfg.TrustProxy {
		t.Errorf("TranscriptAPIToken/TrustProxy should default to unset")
	}
}

func TestString_HidesAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "super-secret"
	if s := cfg.String(); strings.Contains(s, "super-secret") {
		t.Errorf("String() leaks api key: %s", s)
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"capsule_delete", "capsule_create"}}
	overlay := &Config{DisabledTools: []string{"capsule_create", "capsule_list"}}

	result := Merge(base, overlay)

	if len(result.DisabledTools) != 3 {
		t.Errorf("DisabledTools length = %d, want 3 (merged, deduped)", len(result.DisabledTools))
	}

	// Check all three are present
	has := make(map[string]bool)
	for _, s := range result.DisabledTools {
		has[s] = true
	}
	for _, want := range []string{"capsule_delete", "capsule_create", "capsule_list"} {
		if !has[want] {
			t.Errorf("DisabledTools missing %q", want)
		}
	}
}

func TestFindRepoConfig_InCurrentDir(t *testing.T) {
	tmpDir := t.TempDir()
	repoCfgDir := filepath.Join(tmpDir, DirName)
	if err := os.MkdirAll(repoCfgDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	configPath := filepath.Join(repoCfgDir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	found := FindRepoConfig(tmpDir)
	if found != configPath {
		t.Errorf("FindRepoConfig() = %q, want %q", found, configPath)
	}
}

func TestFindRepoConfig_InParentDir(t *testing.T) {
	// Create: tmpDir/.focusbrief/config.json
	//         tmpDir/subdir/deeper/
	tmpDir := t.TempDir()
	repoCfgDir := filepath.Join(tmpDir, DirName)
	if err := os.MkdirAll(repoCfgDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	configPath := filepath.Join(repoCfgDir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	// Start from subdir, should find config in parent
	found := FindRepoConfig(subdir)
	if found != configPath {
		t.Errorf("FindRepoConfig() = %q, want %q", found, configPath)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	// No .focusbrief directory

	found := FindRepoConfig(tmpDir)
	if found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	// Create: tmpDir/.focusbrief/config.json with disabled_tools
	//         tmpDir/subdir/
	tmpDir := t.TempDir()
	globalDir := t.TempDir() // Separate global dir

	repoCfgDir := filepath.Join(tmpDir, DirName)
	if err := os.MkdirAll(repoCfgDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	repoConfig := `{"disabled_tools": ["capsule_delete"]}`
	if err := os.WriteFile(filepath.Join(repoCfgDir, "config.json"), []byte(repoConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	subdir := filepath.Join(tmpDir, "subdir")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	// Load from subdir, should find repo config in parent
	cfg, err := LoadWithRepo(globalDir, subdir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "capsule_delete" {
		t.Errorf("DisabledTools = %v, want [capsule_delete]", cfg.DisabledTools)
	}
}

func TestMerge_CaptionLanguagesOverlayReplaces(t *testing.T) {
	result := Merge(DefaultConfig(), &Config{CaptionLanguages: []string{"en", " fr ", "en"}})
	if len(result.CaptionLanguages) != 2 || result.CaptionLanguages[0] != "en" || result.CaptionLanguages[1] != "fr" {
		t.Errorf("CaptionLanguages = %v, want [en fr]", result.CaptionLanguages)
	}

	result = Merge(DefaultConfig(), &Config{})
	if len(result.CaptionLanguages) != 1 || result.CaptionLanguages[0] != "es" {
		t.Errorf("CaptionLanguages = %v, want default [es]", result.CaptionLanguages)
	}
}

func TestLoadWithRepo_RepoCaptionLanguagesWin(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(`{"caption_languages": ["pt"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	repoCfgDir := filepath.Join(repoRoot, DirName)
	if err := os.MkdirAll(repoCfgDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(repoCfgDir, "config.json"), []byte(`{"caption_languages": ["en"], "trust_proxy": true}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if len(cfg.CaptionLanguages) != 1 || cfg.CaptionLanguages[0] != "en" {
		t.Errorf("CaptionLanguages = %v, want [en]", cfg.CaptionLanguages)
	}
	if !cfg.TrustProxy {
		t.Error("TrustProxy = false, want true from repo config")
	}
}
