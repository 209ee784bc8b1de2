package convertcmd

import (
	"errors"

	"github.com/goliatone/go-richtext/internal/commands"
	"github.com/goliatone/go-richtext/internal/markdown"
	"github.com/goliatone/go-richtext/internal/media"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	handlerOpts []commands.HandlerOption[ConvertCommand]
}

// WithHandlerOptions forwards options to the ConvertHandler constructor.
func WithHandlerOptions(opts ...commands.HandlerOption[ConvertCommand]) Option {
	return func(cfg *options) {
		cfg.handlerOpts = append(cfg.handlerOpts, opts...)
	}
}

// RegisterConvertCommands builds the convert handler and registers it with
// reg when one is given.
func RegisterConvertCommands(reg CommandRegistry, service *markdown.Service, normalizer media.Normalizer, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*ConvertHandler, error) {
	if service == nil {
		return nil, errors.New("convert command registration: markdown service is nil")
	}
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	handler := NewConvertHandler(service, normalizer, commands.CommandLogger(provider, "convert"), gates, cfg.handlerOpts...)
	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return handler, nil
}
