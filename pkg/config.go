package dircachededup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-ini/ini"
	"github.com/muhammadmuzzammil1998/jsonc"
)

// Config represents a dcdedup run configuration
type Config struct {
	configPath string

	Dirs          []string // Directories to deduplicate, in priority order
	Digest        string   // Fingerprint algorithm name
	HashBuffer    string   // Read chunk size for fingerprinting, e.g. "1M"
	Exclude       []string // Glob patterns for file names never indexed
	DryRun        bool     // Report duplicates without deleting them
	VerifyContent bool     // Byte-compare duplicates before deleting
	Verbose       int      // Verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug         string   // Debug flags (comma-separated)
}

// jsonConfig is the JSON/JSONC form of the configuration
type jsonConfig struct {
	Dirs          []string `json:"dirs"`
	Digest        string   `json:"digest"`
	HashBuffer    string   `json:"hash_buffer"`
	Exclude       []string `json:"exclude"`
	DryRun        bool     `json:"dry_run"`
	VerifyContent bool     `json:"verify_content"`
	Verbose       int      `json:"verbose"`
	Debug         string   `json:"debug"`
}

var knownConfigKeys = map[string]bool{
	"dirs": true, "digest": true, "hash_buffer": true, "exclude": true,
	"dry_run": true, "verify_content": true, "verbose": true, "debug": true,
}

// LoadConfig loads and validates the configuration at path. Files ending in
// .ini are read as INI, anything else as JSON (comments allowed).
// Every failure is returned as a *ConfigurationError.
func LoadConfig(path string) (*Config, error) {
	var cfg *Config
	var err error

	if strings.EqualFold(filepath.Ext(path), ".ini") {
		cfg, err = loadINIConfig(path)
	} else {
		cfg, err = loadJSONConfig(path)
	}
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}

	cfg.configPath = path
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	return cfg, nil
}

func loadJSONConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	clean := jsonc.ToJSON(data)
	if err := validateJSON(clean, ConfigSchema); err != nil {
		return nil, fmt.Errorf("config file %w", err)
	}

	var raw jsonConfig
	if err := json.Unmarshal(clean, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	warnUnknownKeys(path, clean)

	return &Config{
		Dirs:          raw.Dirs,
		Digest:        raw.Digest,
		HashBuffer:    raw.HashBuffer,
		Exclude:       raw.Exclude,
		DryRun:        raw.DryRun,
		VerifyContent: raw.VerifyContent,
		Verbose:       raw.Verbose,
		Debug:         raw.Debug,
	}, nil
}

// warnUnknownKeys reports top-level keys the loader does not use. They are
// otherwise ignored.
func warnUnknownKeys(path string, data []byte) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return
	}

	unknown := make([]string, 0)
	for key := range fields {
		if !knownConfigKeys[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		Warnf("config %s: ignoring unknown key %q", path, key)
	}
}

// loadINIConfig reads the INI form:
//
//	[dedup]
//	dir = /srv/a
//	dir = /srv/b
//	[filehash]
//	default = xxhash64
//	[performance]
//	hash_buffer = 1M
//	[reconcile]
//	dry_run = false
//	verify_content = false
//	[verbose]
//	level = 0
//	debug =
//	[exclude]
//	pattern = *.part
func loadINIConfig(path string) (*Config, error) {
	iniFile, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg := &Config{}

	if !iniFile.HasSection("dedup") || !iniFile.Section("dedup").HasKey("dir") {
		return nil, fmt.Errorf("missing [dedup] dir entries")
	}
	cfg.Dirs = iniFile.Section("dedup").Key("dir").ValueWithShadows()

	if iniFile.HasSection("filehash") {
		section := iniFile.Section("filehash")
		if section.HasKey("default") {
			cfg.Digest = section.Key("default").String()
		}
	}

	if iniFile.HasSection("performance") {
		section := iniFile.Section("performance")
		if section.HasKey("hash_buffer") {
			cfg.HashBuffer = section.Key("hash_buffer").String()
		}
	}

	if iniFile.HasSection("reconcile") {
		section := iniFile.Section("reconcile")
		if section.HasKey("dry_run") {
			dryRun, err := section.Key("dry_run").Bool()
			if err != nil {
				return nil, fmt.Errorf("invalid reconcile.dry_run: %w", err)
			}
			cfg.DryRun = dryRun
		}
		if section.HasKey("verify_content") {
			verify, err := section.Key("verify_content").Bool()
			if err != nil {
				return nil, fmt.Errorf("invalid reconcile.verify_content: %w", err)
			}
			cfg.VerifyContent = verify
		}
	}

	if iniFile.HasSection("verbose") {
		section := iniFile.Section("verbose")
		if section.HasKey("level") {
			level, err := section.Key("level").Int()
			if err != nil {
				return nil, fmt.Errorf("invalid verbose.level: %w", err)
			}
			cfg.Verbose = level
		}
		if section.HasKey("debug") {
			cfg.Debug = section.Key("debug").String()
		}
	}

	if iniFile.HasSection("exclude") {
		section := iniFile.Section("exclude")
		if section.HasKey("pattern") {
			cfg.Exclude = section.Key("pattern").ValueWithShadows()
		}
	}

	return cfg, nil
}

// setDefaults fills in unset options
func (c *Config) setDefaults() {
	if c.Digest == "" {
		c.Digest = DefaultDigest
	}
	if c.HashBuffer == "" {
		c.HashBuffer = DefaultHashBuffer
	}
}

// Validate checks every option
func (c *Config) Validate() error {
	for i, dir := range c.Dirs {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("dirs[%d] is empty", i)
		}
	}
	if err := ValidateDigestAlgorithm(c.Digest); err != nil {
		return err
	}
	if _, err := ParseHumanSize(c.HashBuffer); err != nil {
		return fmt.Errorf("invalid hash_buffer: %w", err)
	}
	if err := ValidateVerboseLevel(c.Verbose); err != nil {
		return err
	}
	if _, err := NewIgnoreManager(c.Exclude); err != nil {
		return err
	}
	return nil
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.configPath
}

// DigestAlgorithm returns the configured digest algorithm
func (c *Config) DigestAlgorithm() (*DigestAlgorithm, error) {
	return GetDigestAlgorithm(c.Digest)
}

// HashBufferSize returns the configured read chunk size in bytes
func (c *Config) HashBufferSize() (int, error) {
	return ParseHumanSize(c.HashBuffer)
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > MaxVerboseLevel {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-%d)", level, MaxVerboseLevel)
	}
	return nil
}
