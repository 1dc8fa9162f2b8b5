package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve("", noEnv, Flags{NotesFile: "jake.md"})
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "qwen2.5:32b", cfg.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Host)
	assert.Equal(t, "pass1.txt", cfg.Pass1File)
	assert.Equal(t, "pass2.txt", cfg.Pass2File)
	assert.Equal(t, "jake.shifty", cfg.OutputFile)
}

func TestResolve_FlagsOverrideEnv(t *testing.T) {
	env := map[string]string{
		EnvModel:      "env_model",
		EnvStyleGuide: "env_style.txt",
		EnvShorthand:  "env_shorthand.json",
		EnvOllamaHost: "http://env:11434",
	}
	getenv := func(k string) string { return env[k] }

	t.Run("env wins over defaults", func(t *testing.T) {
		cfg, err := Resolve("", getenv, Flags{NotesFile: "jake.md"})
		require.NoError(t, err)
		assert.Equal(t, "env_model", cfg.Model)
		assert.Equal(t, "env_style.txt", cfg.StyleGuideFile)
		assert.Equal(t, "env_shorthand.json", cfg.ShorthandFile)
		assert.Equal(t, "http://env:11434", cfg.Host)
	})

	t.Run("flags win over env", func(t *testing.T) {
		cfg, err := Resolve("", getenv, Flags{
			NotesFile:      "jake.md",
			Model:          "cli_model",
			Host:           "http://cli:11434",
			StyleGuideFile: "cli_style.txt",
			ShorthandFile:  "cli_shorthand.json",
		})
		require.NoError(t, err)
		assert.Equal(t, "cli_model", cfg.Model)
		assert.Equal(t, "http://cli:11434", cfg.Host)
		assert.Equal(t, "cli_style.txt", cfg.StyleGuideFile)
		assert.Equal(t, "cli_shorthand.json", cfg.ShorthandFile)
	})
}

func TestResolve_ConfigFileLayer(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shifty.yaml")
	require.NoError(t, os.WriteFile(file, []byte("model: file_model\nprovider: openai\napi_key: k\n"), 0o644))

	cfg, err := Resolve(file, noEnv, Flags{NotesFile: "jake.md"})
	require.NoError(t, err)
	assert.Equal(t, "file_model", cfg.Model)
	assert.Equal(t, "openai", cfg.Provider)

	// Env overrides the file.
	cfg, err = Resolve(file, func(k string) string {
		if k == EnvModel {
			return "env_model"
		}
		return ""
	}, Flags{NotesFile: "jake.md"})
	require.NoError(t, err)
	assert.Equal(t, "env_model", cfg.Model)
}

func TestResolve_MissingConfigFileIsFine(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "absent.yaml"), noEnv, Flags{NotesFile: "jake.md"})
	require.NoError(t, err)
}

func TestResolve_ValidationErrors(t *testing.T) {
	_, err := Resolve("", noEnv, Flags{})
	require.Error(t, err, "notes file is required")

	_, err = Resolve("", noEnv, Flags{NotesFile: "jake.md", Provider: "anthropic"})
	require.Error(t, err)
}

func TestResolve_ExplicitOutputKept(t *testing.T) {
	cfg, err := Resolve("", noEnv, Flags{NotesFile: "jake.md", OutputFile: "out.txt"})
	require.NoError(t, err)
	assert.Equal(t, "out.txt", cfg.OutputFile)
}

func TestInputPaths(t *testing.T) {
	cfg := Default()
	cfg.NotesFile = "jake.md"
	assert.Equal(t, []string{"jake.md", "pass1.txt", "pass2.txt"}, cfg.InputPaths())

	cfg.StyleGuideFile = "style.txt"
	cfg.ShorthandFile = "shorthand.json"
	assert.Equal(t, []string{"jake.md", "pass1.txt", "pass2.txt", "style.txt", "shorthand.json"}, cfg.InputPaths())
}

func TestDeriveOutputPath(t *testing.T) {
	assert.Equal(t, "jake.shifty", DeriveOutputPath("jake.md"))
	assert.Equal(t, filepath.Join("a", "b.shifty"), DeriveOutputPath(filepath.Join("a", "b.txt")))
	assert.Equal(t, "noext.shifty", DeriveOutputPath("noext"))
}
