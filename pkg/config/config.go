// Package config reads the optional fishbone.toml settings file.
//
// The file is looked up in this order, and the first one found wins:
//
//  1. the path given with --config
//  2. fishbone.toml in the working directory
//  3. $XDG_CONFIG_HOME/fishbone/config.toml (or the OS equivalent)
//
// A missing file is not an error. Flags override file values, and unset
// values fall back to the pipeline defaults.
//
//	[render]
//	width = 1400
//	color = "blue"
//	formats = ["svg", "png"]
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/pipeline"
)

// FileName is the project-local config file name.
const FileName = "fishbone.toml"

// DefaultAddr is the default listen address of the HTTP server.
const DefaultAddr = ":8080"

// Config is the decoded settings file.
type Config struct {
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// Render holds defaults for the render, layout and preview commands.
type Render struct {
	Type     string   `toml:"type"`
	Width    float64  `toml:"width"`
	Cols     int      `toml:"cols"`
	Color    string   `toml:"color"`
	HideIcon bool     `toml:"hide_icon"`
	FontSize float64  `toml:"font_size"`
	Formats  []string `toml:"formats"`
	Scale    float64  `toml:"scale"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisURL      string   `toml:"redis_url"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("36h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache:  Cache{Backend: cache.BackendFile},
		Server: Server{Addr: DefaultAddr},
	}
}

// UserPath returns the per-user config file path.
func UserPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "fishbone", "config.toml"), nil
}

// Find returns the first config file that exists, or "" when there is none.
// An explicit path must exist.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", explicit)
		}
		return explicit, nil
	}
	candidates := []string{FileName}
	if p, err := UserPath(); err == nil {
		candidates = append(candidates, p)
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

// Load finds and reads the config file. With no file it returns [Default].
func Load(explicit string) (Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return Default(), nil
	}
	return ReadFile(path)
}

// ReadFile reads and validates one config file. Keys that fishbone does not
// know are rejected so typos do not pass silently.
func ReadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Validate checks values that can be checked without I/O.
func (c *Config) Validate() error {
	if c.Render.Type != "" {
		if err := pipeline.ValidateVizType(c.Render.Type); err != nil {
			return err
		}
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if err := pipeline.ValidateColor(c.Render.Color); err != nil {
		return err
	}
	if c.Render.Width < 0 || c.Render.Width > pipeline.MaxWidth {
		return errors.New(errors.ErrCodeInvalidConfig, "render.width must be between 0 and %.0f", pipeline.MaxWidth)
	}
	if c.Render.Cols < 0 || c.Render.Cols > pipeline.MaxCols {
		return errors.New(errors.ErrCodeInvalidConfig, "render.cols must be between 1 and %d", pipeline.MaxCols)
	}
	if c.Render.FontSize < 0 || c.Render.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.font_size and render.scale cannot be negative")
	}
	if c.Cache.Backend != "" && !cache.ValidBackend(c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	return nil
}

// Apply fills the zero fields of opts from the [render] section. Fields
// set by flags are left alone.
func (c *Config) Apply(opts *pipeline.Options) {
	r := c.Render
	if opts.VizType == "" {
		opts.VizType = r.Type
	}
	if opts.Width == 0 {
		opts.Width = r.Width
	}
	if opts.Cols == 0 {
		opts.Cols = r.Cols
	}
	if opts.Color == "" {
		opts.Color = r.Color
	}
	if !opts.HideIcon {
		opts.HideIcon = r.HideIcon
	}
	if opts.FontSize == 0 {
		opts.FontSize = r.FontSize
	}
	if len(opts.Formats) == 0 {
		opts.Formats = r.Formats
	}
	if opts.Scale == 0 {
		opts.Scale = r.Scale
	}
}

// CacheOptions returns the options for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisURL:      c.Cache.RedisURL,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
		TTL:           c.Cache.TTL.Duration,
	}
}

// Write encodes c as TOML to path, creating parent directories.
func Write(c Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
