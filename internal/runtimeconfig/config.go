package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-richtext/internal/markdown"
)

var ErrLoggingProviderRequired = errors.New("richtext config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("richtext config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("richtext config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("richtext config: logging format is invalid")

// ErrImageCacheRequiresRemoteImages keeps the URL cache behind the remote image flag.
var ErrImageCacheRequiresRemoteImages = errors.New("richtext config: image cache requires remote images to be enabled")

// ErrPreviewExtensionUnknown reports a markdown extension the previewer cannot load.
var ErrPreviewExtensionUnknown = errors.New("richtext config: markdown preview extension is unknown")

// ErrInvalidBounds wraps numeric settings rejected by validation.
var ErrInvalidBounds = errors.New("richtext config: value out of range")

// Config aggregates the settings of the conversion engine. Durations are
// expressed as integer counts so they read naturally from TOML files.
type Config struct {
	Editor   EditorConfig   `toml:"editor"`
	Images   ImagesConfig   `toml:"images"`
	Markdown MarkdownConfig `toml:"markdown"`
	Logging  LoggingConfig  `toml:"logging"`
	Features Features       `toml:"features"`
}

// EditorConfig holds the defaults applied to new sessions.
type EditorConfig struct {
	Placeholder    string `toml:"placeholder"`
	Height         int    `toml:"height"`
	MinHeight      int    `toml:"min_height"`
	DebounceMS     int    `toml:"debounce_ms"`
	Overwrite      bool   `toml:"overwrite"`
	EmbedURLImages bool   `toml:"embed_url_images"`
}

// Debounce returns the debounce window as a duration.
func (c EditorConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ImagesConfig bounds image normalization and remote fetching.
type ImagesConfig struct {
	MaxBytes             int64 `toml:"max_bytes"`
	MaxWidth             int   `toml:"max_width"`
	MaxHeight            int   `toml:"max_height"`
	Quality              int   `toml:"quality"`
	PreserveTransparency bool  `toml:"preserve_transparency"`
	FetchTimeoutMS       int   `toml:"fetch_timeout_ms"`
	FetchRetries         int   `toml:"fetch_retries"`
	CacheTTLSeconds      int   `toml:"cache_ttl_seconds"`
	CacheCapacity        int   `toml:"cache_capacity"`
	MaxPixels            int64 `toml:"max_pixels"`
}

// FetchTimeout returns the per-request fetch timeout.
func (c ImagesConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// CacheTTL returns how long URL normalizations are cached.
func (c ImagesConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// MarkdownConfig captures preview rendering behaviour.
type MarkdownConfig struct {
	Preview MarkdownPreviewConfig `toml:"preview"`
}

// MarkdownPreviewConfig mirrors interfaces.RenderOptions.
type MarkdownPreviewConfig struct {
	Extensions []string `toml:"extensions"`
	Sanitize   bool     `toml:"sanitize"`
	HardWraps  bool     `toml:"hard_wraps"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `toml:"provider"`
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// Features toggles optional behaviour.
type Features struct {
	Logger       bool `toml:"logger"`
	RemoteImages bool `toml:"remote_images"`
	ImageCache   bool `toml:"image_cache"`
}

// DefaultConfig returns the 300ms debounce, 10 MiB, 1920x1080, quality 80
// defaults with sanitized previews.
func DefaultConfig() Config {
	return Config{
		Editor: EditorConfig{
			DebounceMS:     300,
			EmbedURLImages: true,
		},
		Images: ImagesConfig{
			MaxBytes:        10 << 20,
			MaxWidth:        1920,
			MaxHeight:       1080,
			Quality:         80,
			FetchTimeoutMS:  15000,
			FetchRetries:    2,
			CacheTTLSeconds: 600,
			CacheCapacity:   256,
			MaxPixels:       50_000_000,
		},
		Markdown: MarkdownConfig{
			Preview: MarkdownPreviewConfig{
				Extensions: []string{"strikethrough"},
				Sanitize:   true,
			},
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "",
		},
		Features: Features{
			RemoteImages: true,
		},
	}
}

// Validate performs range checks and high-level consistency checks.
func (cfg Config) Validate() error {
	if err := validation.ValidateStruct(&cfg.Editor,
		validation.Field(&cfg.Editor.Height, validation.Min(0)),
		validation.Field(&cfg.Editor.MinHeight, validation.Min(0)),
		validation.Field(&cfg.Editor.DebounceMS, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("%w: editor: %v", ErrInvalidBounds, err)
	}
	if err := validation.ValidateStruct(&cfg.Images,
		validation.Field(&cfg.Images.MaxBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&cfg.Images.MaxWidth, validation.Required, validation.Min(1)),
		validation.Field(&cfg.Images.MaxHeight, validation.Required, validation.Min(1)),
		validation.Field(&cfg.Images.Quality, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&cfg.Images.FetchTimeoutMS, validation.Min(0)),
		validation.Field(&cfg.Images.FetchRetries, validation.Min(0)),
		validation.Field(&cfg.Images.CacheTTLSeconds, validation.Min(0)),
		validation.Field(&cfg.Images.CacheCapacity, validation.Min(0)),
		validation.Field(&cfg.Images.MaxPixels, validation.Min(int64(0))),
	); err != nil {
		return fmt.Errorf("%w: images: %v", ErrInvalidBounds, err)
	}
	if cfg.Features.ImageCache && !cfg.Features.RemoteImages {
		return ErrImageCacheRequiresRemoteImages
	}
	for _, ext := range cfg.Markdown.Preview.Extensions {
		if !isSupportedExtension(ext) {
			return fmt.Errorf("%w: %s", ErrPreviewExtensionUnknown, ext)
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	return provider == "gologger"
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

func isSupportedExtension(name string) bool {
	return slices.Contains(markdown.ExtensionNames(), strings.ToLower(strings.TrimSpace(name)))
}
