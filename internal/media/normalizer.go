package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimeGIF  = "image/gif"

	// DefaultMaxPixels caps decoded canvases at 50 megapixels.
	DefaultMaxPixels int64 = 50_000_000
)

// Config bounds the normalization pipeline.
type Config struct {
	MaxBytes             int64
	MaxWidth             int
	MaxHeight            int
	Quality              int
	PreserveTransparency bool
	// MaxPixels bounds width*height before a payload is decoded. Zero means
	// DefaultMaxPixels.
	MaxPixels int64
}

// DefaultConfig returns the 10 MiB, 1920x1080, quality 80 pipeline.
func DefaultConfig() Config {
	return Config{
		MaxBytes:  10 << 20,
		MaxWidth:  1920,
		MaxHeight: 1080,
		Quality:   80,
		MaxPixels: DefaultMaxPixels,
	}
}

func (c Config) pixelLimit() int64 {
	if c.MaxPixels > 0 {
		return c.MaxPixels
	}
	return DefaultMaxPixels
}

// Validate checks the bounds are usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.MaxWidth, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxHeight, validation.Required, validation.Min(1)),
		validation.Field(&c.Quality, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.MaxPixels, validation.Min(int64(0))),
	)
}

// Result is a normalized image ready to be embedded.
type Result struct {
	DataURI  string
	MIMEType string
	Width    int
	Height   int
	// Size is the byte length of the encoded payload.
	Size int
	// Passthrough is set when the input bytes were kept unchanged.
	Passthrough bool
}

// Normalizer turns image sources into bounded, embeddable data URIs.
type Normalizer interface {
	Normalize(ctx context.Context, src Source) (*Result, error)
}

// NormalizerOption customises the normalizer.
type NormalizerOption func(*normalizer)

// WithFetcher replaces the HTTP fetcher used for URL sources.
func WithFetcher(fetcher interfaces.ImageFetcher) NormalizerOption {
	return func(n *normalizer) {
		if fetcher != nil {
			n.fetcher = fetcher
		}
	}
}

// WithLogger sets the logger used for normalization outcomes.
func WithLogger(logger interfaces.Logger) NormalizerOption {
	return func(n *normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithCache memoizes URL normalizations in service. Expiry and capacity are
// whatever the service was built with.
func WithCache(service repocache.CacheService) NormalizerOption {
	return func(n *normalizer) {
		n.cache = service
	}
}

type normalizer struct {
	cfg     Config
	fetcher interfaces.ImageFetcher
	logger  interfaces.Logger
	cache   repocache.CacheService
}

// NewNormalizer validates cfg and builds a normalizer. URL sources use an
// HTTPFetcher with default settings unless WithFetcher is supplied.
func NewNormalizer(cfg Config, opts ...NormalizerOption) (Normalizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("media: invalid config: %w", err)
	}
	n := &normalizer{
		cfg:    cfg,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.fetcher == nil {
		n.fetcher = NewHTTPFetcher(DefaultFetcherConfig(), n.logger)
	}
	return n, nil
}

func (n *normalizer) Normalize(ctx context.Context, src Source) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithImageSource(n.logger, string(src.Kind))

	result, err := n.normalize(ctx, src)
	if err != nil {
		logger.Warn("media.normalize.failed", "error", err)
		return nil, err
	}
	logger.Debug("media.normalize.completed",
		"mime", result.MIMEType,
		"width", result.Width,
		"height", result.Height,
		"bytes", result.Size,
		"passthrough", result.Passthrough,
	)
	return result, nil
}

func (n *normalizer) normalize(ctx context.Context, src Source) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	if src.Kind == SourceURL && n.cache != nil {
		cached, err := repocache.GetOrFetch[Result](ctx, n.cache, cacheKey(src.Location), func(ctx context.Context) (Result, error) {
			result, err := n.loadAndProcess(ctx, src)
			if err != nil {
				return Result{}, err
			}
			return *result, nil
		})
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}
	return n.loadAndProcess(ctx, src)
}

func (n *normalizer) loadAndProcess(ctx context.Context, src Source) (*Result, error) {
	data, declared, err := n.load(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return n.process(ctx, data, declared)
}

func (n *normalizer) load(ctx context.Context, src Source) ([]byte, string, error) {
	switch src.Kind {
	case SourceUpload:
		return src.Data, src.MIMEType, nil
	case SourceDataURI:
		if limit := n.cfg.MaxBytes; int64(len(src.Location)) > limit*4/3+1024 {
			return nil, "", fmt.Errorf("%w: data uri exceeds %d bytes", ErrImageTooLarge, limit)
		}
		mimeType, data, err := ParseDataURI(src.Location)
		if err != nil {
			return nil, "", err
		}
		return data, mimeType, nil
	default:
		fetched, err := n.fetcher.Fetch(ctx, src.Location, n.cfg.MaxBytes)
		if err != nil {
			return nil, "", err
		}
		return fetched.Data, fetched.ContentType, nil
	}
}

func (n *normalizer) process(ctx context.Context, data []byte, declared string) (*Result, error) {
	if size := int64(len(data)); size > n.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, size, n.cfg.MaxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUnsupportedImageFormat)
	}

	if isSVG(data, declared) && !strings.HasPrefix(http.DetectContentType(data), "image/") {
		img, err := rasterizeSVG(data, n.cfg.MaxWidth, n.cfg.MaxHeight)
		if err != nil {
			return nil, err
		}
		if n.cfg.PreserveTransparency && !img.Opaque() {
			return encodePNG(img)
		}
		return n.encodeJPEG(img)
	}

	header, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImageFormat, err)
	}
	if pixels := int64(header.Width) * int64(header.Height); pixels > n.cfg.pixelLimit() {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, header.Width, header.Height, n.cfg.pixelLimit())
	}
	fits := header.Width <= n.cfg.MaxWidth && header.Height <= n.cfg.MaxHeight

	if format == "jpeg" && fits && hasEncoderTables(data, n.cfg.Quality) {
		return passthrough(data, mimeJPEG, header), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImageFormat, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if n.cfg.PreserveTransparency && (format == "png" || format == "gif") && hasAlpha(img) {
		if fits {
			mimeType := mimePNG
			if format == "gif" {
				mimeType = mimeGIF
			}
			return passthrough(data, mimeType, header), nil
		}
		return encodePNG(n.fit(img))
	}

	return n.encodeJPEG(n.fit(img))
}

// fit downsamples img to the configured bounds. Images already within bounds
// are returned untouched.
func (n *normalizer) fit(img image.Image) image.Image {
	return resize.Thumbnail(uint(n.cfg.MaxWidth), uint(n.cfg.MaxHeight), img, resize.Lanczos3)
}

func (n *normalizer) encodeJPEG(img image.Image) (*Result, error) {
	flat := flatten(img)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: n.cfg.Quality}); err != nil {
		return nil, fmt.Errorf("media: encode jpeg: %w", err)
	}
	return encoded(buf.Bytes(), mimeJPEG, flat.Bounds()), nil
}

func encodePNG(img image.Image) (*Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("media: encode png: %w", err)
	}
	return encoded(buf.Bytes(), mimePNG, img.Bounds()), nil
}

func encoded(data []byte, mimeType string, bounds image.Rectangle) *Result {
	return &Result{
		DataURI:  EncodeDataURI(mimeType, data),
		MIMEType: mimeType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     len(data),
	}
}

func passthrough(data []byte, mimeType string, header image.Config) *Result {
	return &Result{
		DataURI:     EncodeDataURI(mimeType, data),
		MIMEType:    mimeType,
		Width:       header.Width,
		Height:      header.Height,
		Size:        len(data),
		Passthrough: true,
	}
}

// flatten composites img over an opaque white canvas.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xFFFF {
				return true
			}
		}
	}
	return false
}

func cacheKey(location string) string {
	return "media:url:" + location
}
