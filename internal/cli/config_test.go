package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func validConfig() Config {
	return Config{
		Paths:      []string{"a.txt"},
		BufferSize: 4096,
		QueueDepth: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	// Chunk size defaults to the buffer capacity.
	if cfg.ChunkSize != cfg.BufferSize {
		t.Errorf("ChunkSize = %d, want %d", cfg.ChunkSize, cfg.BufferSize)
	}
}

func TestConfig_ValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no paths", func(c *Config) { c.Paths = nil }},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }},
		{"negative chunk", func(c *Config) { c.ChunkSize = -1 }},
		{"chunk beyond buffer", func(c *Config) { c.ChunkSize = c.BufferSize + 1 }},
		{"zero queue depth", func(c *Config) { c.QueueDepth = 0 }},
		{"follow many files", func(c *Config) {
			c.Follow = true
			c.Paths = []string{"a.txt", "b.txt"}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfigArgs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	content := "# defaults\n--chunk-size=512\n\n--verbose\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("URINGCAT_CONFIG_PATH", path)
	got := LoadConfigArgs()
	want := []string{"--chunk-size=512", "--verbose"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadConfigArgs() = %v, want %v", got, want)
	}
}

func TestLoadConfigArgs_Missing(t *testing.T) {
	t.Setenv("URINGCAT_CONFIG_PATH", filepath.Join(t.TempDir(), "nope"))
	if got := LoadConfigArgs(); got != nil {
		t.Errorf("LoadConfigArgs() = %v, want nil", got)
	}
}
