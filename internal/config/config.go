package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "platter"

// DefaultQueue is the queue rebuilt by a plain shuffle.
const DefaultQueue = "shuffle all"

// Engine and cache defaults.
const (
	DefaultCacheDepth = 2
	MaxCacheDepth     = 8
	DefaultFrameSize  = 1024
	DefaultFFmpeg     = "ffmpeg"

	BackendFFmpeg = "ffmpeg"
	BackendNative = "native"
)

type Config struct {
	DBPath         string   `koanf:"db_path"`         // sqlite file (default: xdg data dir)
	LibrarySources []string `koanf:"library_sources"` // roots scanned by --scan
	Queue          string   `koanf:"queue"`           // play queue name

	Log        LogConfig        `koanf:"log"`
	Cache      CacheConfig      `koanf:"cache"`
	Transcoder TranscoderConfig `koanf:"transcoder"`
	Engine     EngineConfig     `koanf:"engine"`
	HTTP       HTTPConfig       `koanf:"http"`

	MPRIS         *bool `koanf:"mpris"`         // expose MPRIS on D-Bus (default: true)
	Notifications bool  `koanf:"notifications"` // desktop notification on track change
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error (default: info)
	Format string `koanf:"format"` // text or json (default: text)
	File   string `koanf:"file"`   // log file (default: xdg state dir)
}

// CacheConfig controls the decoded-audio slot ring.
type CacheConfig struct {
	Depth         int           `koanf:"depth"`          // number of slots (2-8, default: 2)
	ScratchDir    string        `koanf:"scratch_dir"`    // parent of the per-cache scratch dir
	DecodeTimeout time.Duration `koanf:"decode_timeout"` // 0 disables the timeout
}

// TranscoderConfig selects how source files are decoded into scratch PCM.
type TranscoderConfig struct {
	Backend    string `koanf:"backend"`     // "ffmpeg" or "native" (default: ffmpeg)
	FFmpegPath string `koanf:"ffmpeg_path"` // default: ffmpeg from PATH
}

// EngineConfig controls the playback loop.
type EngineConfig struct {
	FrameSize int `koanf:"frame_size"` // samples per block (default: 1024)
}

// HTTPConfig enables the HTTP control surface when Addr is set.
type HTTPConfig struct {
	Addr string `koanf:"addr"` // e.g. "127.0.0.1:7070"
}

// Load reads the config files in priority order. extra, when non-empty, is
// loaded last and must exist.
func Load(extra string) (*Config, error) {
	paths := getConfigPaths()
	if extra != "" {
		if _, err := os.Stat(extra); err != nil {
			return nil, err
		}
		paths = append(paths, extra)
	}
	return loadFrom(paths)
}

func loadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.DBPath = expandPath(cfg.DBPath)
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Cache.ScratchDir = expandPath(cfg.Cache.ScratchDir)
	cfg.Transcoder.FFmpegPath = expandPath(cfg.Transcoder.FFmpegPath)
	cfg.Transcoder.Backend = strings.ToLower(strings.TrimSpace(cfg.Transcoder.Backend))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/platter/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// QueueName returns the configured queue name or DefaultQueue.
func (c *Config) QueueName() string {
	if strings.TrimSpace(c.Queue) == "" {
		return DefaultQueue
	}
	return c.Queue
}

// DatabasePath returns the configured sqlite path, defaulting to the xdg data dir.
func (c *Config) DatabasePath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	return xdg.DataFile(filepath.Join(appName, appName+".db"))
}

// LogPath returns the configured log file, defaulting to the xdg state dir.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	return xdg.StateFile(filepath.Join(appName, appName+".log"))
}

// MPRISEnabled reports whether the MPRIS adapter should be started.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS == nil || *c.MPRIS
}

// HasHTTPConfig returns true if the HTTP control surface is configured.
func (c *Config) HasHTTPConfig() bool {
	return strings.TrimSpace(c.HTTP.Addr) != ""
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache
	if cfg.Depth < 2 || cfg.Depth > MaxCacheDepth {
		cfg.Depth = DefaultCacheDepth
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}
	if cfg.DecodeTimeout < 0 {
		cfg.DecodeTimeout = 0
	}
	return cfg
}

// GetTranscoderConfig returns the transcoder configuration with defaults applied.
func (c *Config) GetTranscoderConfig() TranscoderConfig {
	cfg := c.Transcoder
	if cfg.Backend != BackendNative {
		cfg.Backend = BackendFFmpeg
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = DefaultFFmpeg
	}
	return cfg
}

// GetEngineConfig returns the engine configuration with defaults applied.
func (c *Config) GetEngineConfig() EngineConfig {
	cfg := c.Engine
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	return cfg
}

// CoverDir is where cover images are written for MPRIS clients and
// notification daemons.
func (c *Config) CoverDir() string {
	return filepath.Join(xdg.CacheHome, appName, "covers")
}
