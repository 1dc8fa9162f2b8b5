// Package config resolves the run configuration once, up front: built-in
// defaults, then an optional YAML config file, then environment variables,
// then CLI flags, each layer overriding the previous one. The resolved value
// is immutable and passed explicitly into the pipeline; business logic never
// reads process-wide environment state directly.
package config

import (
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/cylon-model-15/shifty/internal/apperr"
)

// Environment variables recognised during resolution.
const (
	EnvModel      = "SHIFTY_MODEL"
	EnvStyleGuide = "SHIFTY_STYLE_GUIDE"
	EnvShorthand  = "SHIFTY_SHORTHAND"
	EnvProvider   = "SHIFTY_PROVIDER"
	EnvAPIKey     = "SHIFTY_API_KEY"
	EnvOllamaHost = "OLLAMA_HOST"
)

// Config is the fully resolved configuration for one pipeline run.
type Config struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Host      string `yaml:"host"`
	APIKey    string `yaml:"api_key"`
	Pass1File string `yaml:"prompt_pass1"`
	Pass2File string `yaml:"prompt_pass2"`

	StyleGuideFile string `yaml:"style_guide"`
	ShorthandFile  string `yaml:"shorthand"`

	NotesFile  string `yaml:"-"`
	OutputFile string `yaml:"-"`
	Force      bool   `yaml:"-"`
	Verbose    bool   `yaml:"-"`
}

// Flags carries the raw CLI flag values; empty strings mean "not set".
type Flags struct {
	Provider       string
	Model          string
	Host           string
	APIKey         string
	Pass1File      string
	Pass2File      string
	StyleGuideFile string
	ShorthandFile  string
	NotesFile      string
	OutputFile     string
	Force          bool
	Verbose        bool
}

// Default returns the built-in defaults: a local Ollama instance and the
// pass1/pass2 templates in the working directory.
func Default() Config {
	return Config{
		Provider:  "ollama",
		Model:     "qwen2.5:32b",
		Host:      "http://localhost:11434",
		Pass1File: "pass1.txt",
		Pass2File: "pass2.txt",
	}
}

// Resolve layers configFile (optional), environment, and flags over the
// defaults and validates the result. getenv is injected so resolution stays
// testable without touching the process environment.
func Resolve(configFile string, getenv func(string) string, flags Flags) (Config, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, &apperr.ConfigError{Path: configFile, Reason: err.Error()}
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &apperr.ConfigError{Path: configFile, Reason: err.Error()}
		}
	}

	applyEnv(&cfg, getenv)
	applyFlags(&cfg, flags)

	if cfg.OutputFile == "" && cfg.NotesFile != "" {
		cfg.OutputFile = DeriveOutputPath(cfg.NotesFile)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, &apperr.ConfigError{Reason: err.Error()}
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}
	if v := getenv(EnvModel); v != "" {
		cfg.Model = v
	}
	if v := getenv(EnvStyleGuide); v != "" {
		cfg.StyleGuideFile = v
	}
	if v := getenv(EnvShorthand); v != "" {
		cfg.ShorthandFile = v
	}
	if v := getenv(EnvProvider); v != "" {
		cfg.Provider = v
	}
	if v := getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := getenv(EnvOllamaHost); v != "" {
		cfg.Host = v
	}
}

func applyFlags(cfg *Config, f Flags) {
	if f.Provider != "" {
		cfg.Provider = f.Provider
	}
	if f.Model != "" {
		cfg.Model = f.Model
	}
	if f.Host != "" {
		cfg.Host = f.Host
	}
	if f.APIKey != "" {
		cfg.APIKey = f.APIKey
	}
	if f.Pass1File != "" {
		cfg.Pass1File = f.Pass1File
	}
	if f.Pass2File != "" {
		cfg.Pass2File = f.Pass2File
	}
	if f.StyleGuideFile != "" {
		cfg.StyleGuideFile = f.StyleGuideFile
	}
	if f.ShorthandFile != "" {
		cfg.ShorthandFile = f.ShorthandFile
	}
	if f.NotesFile != "" {
		cfg.NotesFile = f.NotesFile
	}
	if f.OutputFile != "" {
		cfg.OutputFile = f.OutputFile
	}
	cfg.Force = f.Force
	cfg.Verbose = f.Verbose
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Provider, validation.Required, validation.In("ollama", "openai", "gemini")),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.NotesFile, validation.Required),
		validation.Field(&c.Pass1File, validation.Required),
		validation.Field(&c.Pass2File, validation.Required),
	)
}

// InputPaths returns the files whose content affects the output, notes file
// first. Optional paths appear only when configured.
func (c Config) InputPaths() []string {
	paths := []string{c.NotesFile, c.Pass1File, c.Pass2File}
	if c.StyleGuideFile != "" {
		paths = append(paths, c.StyleGuideFile)
	}
	if c.ShorthandFile != "" {
		paths = append(paths, c.ShorthandFile)
	}
	return paths
}

// DeriveOutputPath maps a notes path to its default output path by swapping
// the extension for .shifty, so single runs and batch runs agree.
func DeriveOutputPath(notesPath string) string {
	ext := filepath.Ext(notesPath)
	return strings.TrimSuffix(notesPath, ext) + ".shifty"
}
