// Package config reads and writes the user configuration file, a flat YAML
// map at $XDG_CONFIG_HOME/go-voicecorpus/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config keys.
const (
	KeyWorkDir       = "work-dir"
	KeyQualifiedDir  = "qualified-dir"
	KeyFilteredDir   = "filtered-dir"
	KeyPrefix        = "prefix"
	KeyMinDuration   = "min-duration"
	KeyMaxDuration   = "max-duration"
	KeySilenceGap    = "silence-gap"
	KeySilenceThresh = "silence-thresh"
	KeyKeepSilence   = "keep-silence"
	KeyDiarizer      = "diarizer"
	KeyDiarizerURL   = "diarizer-url"
	KeyDiarizerModel = "diarizer-model"
	KeyVAD           = "vad"
	KeyVADModel      = "vad-model"
)

// Backend names accepted by KeyDiarizer and KeyVAD.
const (
	DiarizerPyannote = "pyannote"
	DiarizerOpenAI   = "openai"

	VADSilero = "silero"
	VADEnergy = "energy"
	VADOpenAI = "openai"
)

// envPrefix prefixes the environment fallback of every key.
const envPrefix = "VOICECORPUS_"

const (
	appDir   = "go-voicecorpus"
	fileName = "config.yaml"
)

// keys lists every recognized key in display order.
var keys = []string{
	KeyWorkDir, KeyQualifiedDir, KeyFilteredDir, KeyPrefix,
	KeyMinDuration, KeyMaxDuration, KeySilenceGap, KeySilenceThresh, KeyKeepSilence,
	KeyDiarizer, KeyDiarizerURL, KeyDiarizerModel, KeyVAD, KeyVADModel,
}

// Config holds the effective settings: config file values, then environment
// fallbacks. Keys set by neither keep their zero value and report false from IsSet.
type Config struct {
	WorkDir      string
	QualifiedDir string
	FilteredDir  string
	Prefix       string

	MinDuration      time.Duration
	MaxDuration      time.Duration
	SilenceGap       time.Duration
	SilenceThreshold float64
	KeepSilence      time.Duration

	Diarizer      string
	DiarizerURL   string
	DiarizerModel string
	VAD           string
	VADModel      string

	set map[string]bool
}

// IsSet reports whether key came from the config file or the environment.
func (c Config) IsSet(key string) bool {
	return c.set[key]
}

// Keys returns every recognized key.
func Keys() []string {
	return slices.Clone(keys)
}

// IsKnown reports whether key is a recognized config key.
func IsKnown(key string) bool {
	return slices.Contains(keys, key)
}

// EnvName returns the environment variable consulted when key is not in the
// config file, e.g. VOICECORPUS_MIN_DURATION.
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-voicecorpus.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDir), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, fileName), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// A missing file is not an error. Unknown keys in the file are ignored;
// invalid values for known keys are reported.
func Load() (Config, error) {
	cfg := Config{set: make(map[string]bool)}

	p, err := Path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	for _, key := range keys {
		value := data[key]
		source := p
		if value == "" {
			value = os.Getenv(EnvName(key))
			source = EnvName(key)
		}
		if value == "" {
			continue
		}
		if err := cfg.apply(key, value); err != nil {
			return cfg, fmt.Errorf("%s: %w", source, err)
		}
		cfg.set[key] = true
	}

	return cfg, nil
}

// apply validates value and stores it in the field for key.
func (c *Config) apply(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}

	switch key {
	case KeyWorkDir:
		c.WorkDir = ExpandPath(value)
	case KeyQualifiedDir:
		c.QualifiedDir = ExpandPath(value)
	case KeyFilteredDir:
		c.FilteredDir = ExpandPath(value)
	case KeyPrefix:
		c.Prefix = value
	case KeyMinDuration:
		c.MinDuration, _ = time.ParseDuration(value)
	case KeyMaxDuration:
		c.MaxDuration, _ = time.ParseDuration(value)
	case KeySilenceGap:
		c.SilenceGap, _ = time.ParseDuration(value)
	case KeyKeepSilence:
		c.KeepSilence, _ = time.ParseDuration(value)
	case KeySilenceThresh:
		c.SilenceThreshold, _ = strconv.ParseFloat(value, 64)
	case KeyDiarizer:
		c.Diarizer = value
	case KeyDiarizerURL:
		c.DiarizerURL = value
	case KeyDiarizerModel:
		c.DiarizerModel = value
	case KeyVAD:
		c.VAD = value
	case KeyVADModel:
		c.VADModel = ExpandPath(value)
	}
	return nil
}

// Validate checks value against the rules of key. It does not touch the
// filesystem; use EnsureOutputDir for directory keys.
func Validate(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("%w: %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(keys, ", "))
	}
	if value == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
	}

	switch key {
	case KeyPrefix:
		if strings.ContainsAny(value, `/\`) {
			return fmt.Errorf("%w: %s %q must not contain a path separator", ErrInvalidValue, key, value)
		}
	case KeyMinDuration, KeyMaxDuration, KeySilenceGap, KeyKeepSilence:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s %q is not a duration (e.g. 6s, 500ms)", ErrInvalidValue, key, value)
		}
		if d < 0 || (d == 0 && key != KeyKeepSilence) {
			return fmt.Errorf("%w: %s %s must be positive", ErrInvalidValue, key, value)
		}
	case KeySilenceThresh:
		db, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s %q is not a number of dBFS", ErrInvalidValue, key, value)
		}
		if db > 0 {
			return fmt.Errorf("%w: %s %s dBFS must not be positive", ErrInvalidValue, key, value)
		}
	case KeyDiarizer:
		if value != DiarizerPyannote && value != DiarizerOpenAI {
			return fmt.Errorf("%w: %s %q (valid: %s, %s)", ErrInvalidValue, key, value, DiarizerPyannote, DiarizerOpenAI)
		}
	case KeyVAD:
		if value != VADSilero && value != VADEnergy && value != VADOpenAI {
			return fmt.Errorf("%w: %s %q (valid: %s, %s, %s)", ErrInvalidValue, key, value, VADSilero, VADEnergy, VADOpenAI)
		}
	case KeyDiarizerURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s %q must be an http(s) URL", ErrInvalidValue, key, value)
		}
	}
	return nil
}

// parseFile reads the YAML config map. Scalars of any type are kept as
// their string form so "-40" and -40 read the same.
func parseFile(p string) (map[string]string, error) {
	raw, err := os.ReadFile(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", p, err)
	}

	data := make(map[string]string, len(doc))
	for k, v := range doc {
		switch v.(type) {
		case nil:
			data[k] = ""
		case map[string]any, []any:
			return nil, fmt.Errorf("%w: %s must be a scalar", ErrInvalidValue, k)
		default:
			data[k] = fmt.Sprint(v)
		}
	}
	return data, nil
}

// Save validates and writes a single key to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing keys but discards comments.
func Save(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}

	p, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, err := parseFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map as YAML. Keys are sorted by the encoder.
func writeFile(p string, data map[string]string) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	// #nosec G306 -- config file with standard permissions
	if err := os.WriteFile(p, out, 0o644); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

// Get reads a single value from the config file.
// Returns an empty string if the key or the file doesn't exist.
func Get(key string) (string, error) {
	if !IsKnown(key) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	data, err := List()
	if err != nil {
		return "", err
	}
	return data[key], nil
}

// List returns all values stored in the config file.
func List() (map[string]string, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	return data, nil
}

// EnsureOutputDir checks that d is usable as an output directory,
// creating it when missing.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("%w: directory cannot be empty", ErrInvalidValue)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot access directory: %w", err)
		}
		if err := os.MkdirAll(d, 0o750); err != nil { // #nosec G301 -- user output dir
			return fmt.Errorf("cannot create directory: %w", err)
		}
		return nil
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, d)
	}

	// Probe writability with a throwaway file.
	probe := filepath.Join(d, ".go-voicecorpus-write-test")
	f, err := os.Create(probe) // #nosec G304 -- path is constructed from validated dir
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotWritable, err)
	}
	closeErr := f.Close()
	_ = os.Remove(probe)
	if closeErr != nil {
		return fmt.Errorf("%w: %v", ErrNotWritable, closeErr)
	}
	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// IsDirKey reports whether key names a directory.
func IsDirKey(key string) bool {
	return key == KeyWorkDir || key == KeyQualifiedDir || key == KeyFilteredDir
}
