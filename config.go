package richtext

import "github.com/goliatone/go-richtext/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired        = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown         = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid            = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid           = runtimeconfig.ErrLoggingFormatInvalid
	ErrImageCacheRequiresRemoteImages = runtimeconfig.ErrImageCacheRequiresRemoteImages
	ErrPreviewExtensionUnknown        = runtimeconfig.ErrPreviewExtensionUnknown
	ErrInvalidBounds                  = runtimeconfig.ErrInvalidBounds
)

type (
	Config                = runtimeconfig.Config
	EditorConfig          = runtimeconfig.EditorConfig
	ImagesConfig          = runtimeconfig.ImagesConfig
	MarkdownConfig        = runtimeconfig.MarkdownConfig
	MarkdownPreviewConfig = runtimeconfig.MarkdownPreviewConfig
	LoggingConfig         = runtimeconfig.LoggingConfig
	Features              = runtimeconfig.Features
)

// DefaultConfig returns the baseline configuration for the engine.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
