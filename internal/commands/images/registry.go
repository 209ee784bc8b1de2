package imagescmd

import (
	"errors"

	"github.com/goliatone/go-richtext/internal/commands"
	"github.com/goliatone/go-richtext/internal/media"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// RegisterImageCommands builds the image handlers and registers them with
// reg when one is given.
func RegisterImageCommands(reg CommandRegistry, normalizer media.Normalizer, provider interfaces.LoggerProvider, gates FeatureGates, opts ...commands.HandlerOption[NormalizeImageCommand]) (*NormalizeImageHandler, error) {
	if normalizer == nil {
		return nil, errors.New("image command registration: normalizer is nil")
	}
	handler := NewNormalizeImageHandler(normalizer, commands.CommandLogger(provider, "images"), gates, opts...)
	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return handler, nil
}
