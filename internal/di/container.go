package di

import (
	"context"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-richtext/internal/editor"
	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/internal/logging/gologger"
	"github.com/goliatone/go-richtext/internal/markdown"
	"github.com/goliatone/go-richtext/internal/media"
	"github.com/goliatone/go-richtext/internal/runtimeconfig"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// Container wires the conversion engine: logging, image normalization, the
// markdown service and editor sessions.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	cacheService   repocache.CacheService
	fetcher        interfaces.ImageFetcher
	renderer       interfaces.MarkdownRenderer
	clock          editor.Clock

	normalizer  media.Normalizer
	markdownSvc *markdown.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider built from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCacheService overrides the cache used for URL normalizations.
func WithCacheService(service repocache.CacheService) Option {
	return func(c *Container) {
		c.cacheService = service
	}
}

// WithFetcher overrides the HTTP fetcher used for URL images.
func WithFetcher(fetcher interfaces.ImageFetcher) Option {
	return func(c *Container) {
		c.fetcher = fetcher
	}
}

// WithNormalizer replaces the image normalizer entirely.
func WithNormalizer(normalizer media.Normalizer) Option {
	return func(c *Container) {
		c.normalizer = normalizer
	}
}

// WithMarkdownRenderer overrides the preview renderer.
func WithMarkdownRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithClock sets the clock handed to every session opened by the container.
func WithClock(clock editor.Clock) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// NewContainer validates cfg and builds the services it describes.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureCache(); err != nil {
		return nil, err
	}
	c.configureFetcher()
	if err := c.configureNormalizer(); err != nil {
		return nil, err
	}
	c.configureMarkdown()

	logging.ModuleLogger(c.loggerProvider, "richtext.di").Debug("container.configured",
		"remote_images", cfg.Features.RemoteImages,
		"image_cache", cfg.Features.ImageCache,
		"preview_extensions", strings.Join(cfg.Markdown.Preview.Extensions, ","),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
		return nil
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, c.Config.Logging.Provider)
	}
}

func (c *Container) configureCache() error {
	if c.cacheService != nil || !c.Config.Features.ImageCache {
		return nil
	}
	service, err := repocache.NewCacheService(imageCacheConfig(c.Config.Images))
	if err != nil {
		return fmt.Errorf("richtext di: image cache: %w", err)
	}
	c.cacheService = service
	return nil
}

// imageCacheConfig sizes the URL cache from the images section. Entries are
// never refreshed in the background and failed fetches are not stored.
func imageCacheConfig(images runtimeconfig.ImagesConfig) repocache.Config {
	cfg := repocache.DefaultConfig()
	if ttl := images.CacheTTL(); ttl > 0 {
		cfg.TTL = ttl
	}
	if images.CacheCapacity > 0 {
		cfg.Capacity = images.CacheCapacity
	}
	cfg.NumShards = max(1, min(cfg.NumShards, cfg.Capacity/32))
	cfg.EarlyRefresh = nil
	cfg.MissingRecordStorage = false
	return cfg
}

func (c *Container) configureFetcher() {
	if c.fetcher != nil {
		return
	}
	if !c.Config.Features.RemoteImages {
		c.fetcher = disabledFetcher{}
		return
	}
	fetcherCfg := media.DefaultFetcherConfig()
	if timeout := c.Config.Images.FetchTimeout(); timeout > 0 {
		fetcherCfg.Timeout = timeout
	}
	fetcherCfg.RetryMax = c.Config.Images.FetchRetries
	c.fetcher = media.NewHTTPFetcher(fetcherCfg, logging.MediaLogger(c.loggerProvider))
}

func (c *Container) configureNormalizer() error {
	if c.normalizer != nil {
		return nil
	}
	images := c.Config.Images
	normalizer, err := media.NewNormalizer(media.Config{
		MaxBytes:             images.MaxBytes,
		MaxWidth:             images.MaxWidth,
		MaxHeight:            images.MaxHeight,
		Quality:              images.Quality,
		PreserveTransparency: images.PreserveTransparency,
		MaxPixels:            images.MaxPixels,
	},
		media.WithFetcher(c.fetcher),
		media.WithLogger(logging.MediaLogger(c.loggerProvider)),
		media.WithCache(c.cacheService),
	)
	if err != nil {
		return err
	}
	c.normalizer = normalizer
	return nil
}

func (c *Container) configureMarkdown() {
	preview := c.Config.Markdown.Preview
	c.markdownSvc = markdown.NewService(markdown.Config{
		Preview: interfaces.RenderOptions{
			Extensions: append([]string(nil), preview.Extensions...),
			Sanitize:   preview.Sanitize,
			HardWraps:  preview.HardWraps,
		},
		Logger: logging.MarkdownLogger(c.loggerProvider),
	}, c.renderer)
}

// LoggerProvider returns the configured provider. It is nil when logging is
// disabled and no provider was injected.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// CacheService returns the URL normalization cache. It is nil when the image
// cache feature is off and no service was injected.
func (c *Container) CacheService() repocache.CacheService {
	return c.cacheService
}

// Normalizer returns the shared image normalizer.
func (c *Container) Normalizer() media.Normalizer {
	return c.normalizer
}

// MarkdownService returns the shared markdown service.
func (c *Container) MarkdownService() *markdown.Service {
	return c.markdownSvc
}

// EditorOptions returns session options seeded from the editor section. URL
// embedding is off whenever remote images are disabled.
func (c *Container) EditorOptions() editor.Options {
	cfg := c.Config.Editor
	return editor.Options{
		Placeholder:    cfg.Placeholder,
		Height:         cfg.Height,
		MinHeight:      cfg.MinHeight,
		Debounce:       cfg.Debounce(),
		Overwrite:      cfg.Overwrite,
		EmbedURLImages: cfg.EmbedURLImages && c.Config.Features.RemoteImages,
	}
}

// OpenSession starts an editor session sharing the container's normalizer
// and logger.
func (c *Container) OpenSession(opts editor.Options, emit editor.Emitter, sessionOpts ...editor.SessionOption) (*editor.Session, error) {
	if c.clock != nil {
		sessionOpts = append([]editor.SessionOption{editor.WithClock(c.clock)}, sessionOpts...)
	}
	return editor.Open(opts, editor.Deps{
		Normalizer: c.normalizer,
		Emitter:    emit,
		Logger:     logging.EditorLogger(c.loggerProvider),
	}, sessionOpts...)
}

type disabledFetcher struct{}

func (disabledFetcher) Fetch(context.Context, string, int64) (*interfaces.FetchedImage, error) {
	return nil, fmt.Errorf("%w: remote images disabled", media.ErrImageFetch)
}
