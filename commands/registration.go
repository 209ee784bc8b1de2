package commands

import (
	"errors"

	convertcmd "github.com/goliatone/go-richtext/internal/commands/convert"
	imagescmd "github.com/goliatone/go-richtext/internal/commands/images"
	"github.com/goliatone/go-richtext/internal/di"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	LoggerProvider interfaces.LoggerProvider
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Convert       *convertcmd.ConvertHandler
	Images        *imagescmd.NormalizeImageHandler
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Close unsubscribes every dispatcher subscription.
func (r *RegistrationResult) Close() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands builds the command handlers exposed by the provided container and
// optionally registers them with registry/dispatcher integrations.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	cfg := container.Config

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	remoteImages := func() bool { return cfg.Features.RemoteImages }

	// Convert commands.
	if service := container.MarkdownService(); service != nil {
		handler, err := convertcmd.RegisterConvertCommands(nil, service, container.Normalizer(), provider, convertcmd.FeatureGates{
			RemoteImagesEnabled: remoteImages,
		})
		if err != nil {
			errs = errors.Join(errs, err)
		} else {
			result.Convert = handler
			register(handler)
		}
	}

	// Image commands.
	if normalizer := container.Normalizer(); normalizer != nil {
		handler, err := imagescmd.RegisterImageCommands(nil, normalizer, provider, imagescmd.FeatureGates{
			RemoteImagesEnabled: remoteImages,
		})
		if err != nil {
			errs = errors.Join(errs, err)
		} else {
			result.Images = handler
			register(handler)
		}
	}

	if errs != nil && len(result.Handlers) == 0 {
		return result, errs
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure services are configured")
	}

	return result, errs
}
