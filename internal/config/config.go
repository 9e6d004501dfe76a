package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds all configurable paths and server/render settings.
type Config struct {
	// Paths
	RootDir  string `json:"root_dir"`
	CacheDir string `json:"cache_dir"`
	DBPath   string `json:"db_path"`

	// Server
	Addr string `json:"addr"`
	// FrontendDir, when set, is served as the site root.
	FrontendDir string `json:"frontend_dir"`

	// Preview rendering
	PreviewSize int `json:"preview_size"`
	Supersample int `json:"supersample"`
	WebPQuality int `json:"webp_quality"`
	Workers     int `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.RootDir != "" {
		c.RootDir = flags.RootDir
	}
	if flags.Addr != "" {
		c.Addr = flags.Addr
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.RootDir == "" {
		c.RootDir = detectRootDir()
	}
	if abs, err := filepath.Abs(c.RootDir); err == nil {
		c.RootDir = abs
	}

	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir()
	} else if !filepath.IsAbs(c.CacheDir) {
		c.CacheDir = filepath.Join(c.RootDir, c.CacheDir)
	}

	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.CacheDir, "conversions.db")
	} else if !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(c.CacheDir, c.DBPath)
	}

	if c.Addr == "" {
		c.Addr = "127.0.0.1:8437"
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.WebPQuality <= 0 {
		c.WebPQuality = 90
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	RootDir string
	Addr    string
	Workers int
}

// detectRootDir picks the user's home directory as the browse root, falling
// back to the working directory.
func detectRootDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	cwd, _ := os.Getwd()
	return cwd
}

func defaultCacheDir() string {
	if base, err := os.UserCacheDir(); err == nil && base != "" {
		return filepath.Join(base, "meshvault")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".meshvault-cache")
}
