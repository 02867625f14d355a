//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	require.Len(t, paths, 2)
	assert.Equal(t, "config.toml", paths[len(paths)-1])
	assert.Equal(t, "config.toml", filepath.Base(paths[0]))
	assert.Equal(t, appName, filepath.Base(filepath.Dir(paths[0])))
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom_ParsesAllSections(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.toml", `
db_path = "/data/platter.db"
library_sources = ["/music/a", "/music/b"]
queue = "evening"
mpris = false
notifications = true

[log]
level = "debug"
format = "json"

[cache]
depth = 3
scratch_dir = "/tmp/scratch"
decode_timeout = "45s"

[transcoder]
backend = "Native"
ffmpeg_path = "/opt/ffmpeg"

[engine]
frame_size = 2048

[http]
addr = "127.0.0.1:7070"
`)

	cfg, err := loadFrom([]string{path})
	require.NoError(t, err)

	assert.Equal(t, "/data/platter.db", cfg.DBPath)
	assert.Equal(t, []string{"/music/a", "/music/b"}, cfg.LibrarySources)
	assert.Equal(t, "evening", cfg.QueueName())
	assert.False(t, cfg.MPRISEnabled())
	assert.True(t, cfg.Notifications)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 3, cfg.GetCacheConfig().Depth)
	assert.Equal(t, "/tmp/scratch", cfg.GetCacheConfig().ScratchDir)
	assert.Equal(t, 45*time.Second, cfg.GetCacheConfig().DecodeTimeout)
	assert.Equal(t, BackendNative, cfg.GetTranscoderConfig().Backend)
	assert.Equal(t, "/opt/ffmpeg", cfg.GetTranscoderConfig().FFmpegPath)
	assert.Equal(t, 2048, cfg.GetEngineConfig().FrameSize)
	assert.True(t, cfg.HasHTTPConfig())
}

func TestLoadFrom_LaterFilesWin(t *testing.T) {
	dir := t.TempDir()
	first := writeConfig(t, dir, "first.toml", "queue = \"first\"\n[engine]\nframe_size = 512\n")
	second := writeConfig(t, dir, "second.toml", "queue = \"second\"\n")

	cfg, err := loadFrom([]string{first, second})
	require.NoError(t, err)

	assert.Equal(t, "second", cfg.QueueName())
	assert.Equal(t, 512, cfg.GetEngineConfig().FrameSize)
}

func TestLoadFrom_MissingFilesIgnored(t *testing.T) {
	cfg, err := loadFrom([]string{filepath.Join(t.TempDir(), "nope.toml")})
	require.NoError(t, err)
	assert.Equal(t, DefaultQueue, cfg.QueueName())
}

func TestLoad_ExtraMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestGetCacheConfig_Defaults(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		want  int
	}{
		{"zero uses default", 0, DefaultCacheDepth},
		{"one is too shallow", 1, DefaultCacheDepth},
		{"max allowed", MaxCacheDepth, MaxCacheDepth},
		{"too deep", MaxCacheDepth + 1, DefaultCacheDepth},
		{"four", 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Cache: CacheConfig{Depth: tt.depth, DecodeTimeout: -time.Second}}
			got := cfg.GetCacheConfig()
			assert.Equal(t, tt.want, got.Depth)
			assert.Equal(t, time.Duration(0), got.DecodeTimeout)
			assert.NotEmpty(t, got.ScratchDir)
		})
	}
}

func TestGetTranscoderConfig_Defaults(t *testing.T) {
	cfg := Config{Transcoder: TranscoderConfig{Backend: "vlc"}}
	got := cfg.GetTranscoderConfig()
	assert.Equal(t, BackendFFmpeg, got.Backend)
	assert.Equal(t, DefaultFFmpeg, got.FFmpegPath)
}

func TestGetEngineConfig_Defaults(t *testing.T) {
	assert.Equal(t, DefaultFrameSize, (&Config{}).GetEngineConfig().FrameSize)
}

func TestMPRISEnabled_DefaultTrue(t *testing.T) {
	assert.True(t, (&Config{}).MPRISEnabled())
}

func TestHasHTTPConfig(t *testing.T) {
	assert.False(t, (&Config{}).HasHTTPConfig())
	assert.False(t, (&Config{HTTP: HTTPConfig{Addr: "  "}}).HasHTTPConfig())
	assert.True(t, (&Config{HTTP: HTTPConfig{Addr: ":7070"}}).HasHTTPConfig())
}

func TestDatabasePath_Explicit(t *testing.T) {
	cfg := Config{DBPath: "/x/y.db"}
	path, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/x/y.db", path)
}

func TestCoverDir_UnderCacheHome(t *testing.T) {
	dir := (&Config{}).CoverDir()
	assert.NotEmpty(t, dir)
	assert.Equal(t, "covers", filepath.Base(dir))
	assert.Equal(t, appName, filepath.Base(filepath.Dir(dir)))
}
