package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
}

// OpenAI contains connection settings for the embedding provider.
type OpenAI struct {
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url"`
	Model            string `toml:"model"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	BatchSize        int    `toml:"batch_size"`
	RetryMaxAttempts int    `toml:"retry_max_attempts"`
}

// Chunking contains transcript chunking parameters.
type Chunking struct {
	// MaxSegmentLength is the character length above which a segment is
	// split at sentence boundaries.
	MaxSegmentLength int `toml:"max_segment_length"`
	// MinChunkSize is the character length below which a chunk is merged
	// into its neighbor to suppress noise matches.
	MinChunkSize int `toml:"min_chunk_size"`
	// MaxChunkSize is the window size for text-based fallback chunking.
	MaxChunkSize int `toml:"max_chunk_size"`
	// OverlapSize is the character overlap between fallback windows.
	OverlapSize int `toml:"overlap_size"`
}

// Matching contains similarity search and verdict thresholds.
type Matching struct {
	// TopK is the number of candidates fetched per query chunk.
	TopK int `toml:"top_k"`
	// MinSimilarity is the per-candidate acceptance floor.
	MinSimilarity float64 `toml:"min_similarity"`
	// CertaintyBar is the aggregate confidence above which the verdict is "found".
	CertaintyBar float64 `toml:"certainty_bar"`
	// StitchingToleranceSeconds is the maximum gap between matched intervals
	// still merged into one region.
	StitchingToleranceSeconds float64 `toml:"stitching_tolerance_seconds"`
	// MinSupportCount discards regions supported by fewer matches.
	MinSupportCount int `toml:"min_support_count"`
	// DegradedTolerance is the fraction of excluded chunks above which a
	// result is flagged degraded.
	DegradedTolerance float64 `toml:"degraded_tolerance"`
	// ShortQueryChars and ShortQueryFloor relax the similarity floor for
	// very short query texts.
	ShortQueryChars int     `toml:"short_query_chars"`
	ShortQueryFloor float64 `toml:"short_query_floor"`
	// LexicalOverlapMin is the fraction of query words that must appear in a
	// matched reference chunk's text. Zero disables the lexical gate.
	LexicalOverlapMin float64 `toml:"lexical_overlap_min"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for earmark.
type Config struct {
	Paths    Paths    `toml:"paths"`
	OpenAI   OpenAI   `toml:"openai"`
	Chunking Chunking `toml:"chunking"`
	Matching Matching `toml:"matching"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/earmark/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("earmark.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory when missing.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.DataDir, err)
	}
	return nil
}

// IndexDBPath returns the location of the vector index database.
func (c *Config) IndexDBPath() string {
	return filepath.Join(c.Paths.DataDir, "index.db")
}

// ReplaceLockPath returns the lock file serializing corpus replacements.
func (c *Config) ReplaceLockPath() string {
	return filepath.Join(c.Paths.DataDir, "replace.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
