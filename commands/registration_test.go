package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command/dispatcher"

	convertcmd "github.com/goliatone/go-richtext/internal/commands/convert"
	imagescmd "github.com/goliatone/go-richtext/internal/commands/images"
	"github.com/goliatone/go-richtext/internal/di"
	"github.com/goliatone/go-richtext/internal/runtimeconfig"
)

func newContainer(t *testing.T) *di.Container {
	t.Helper()
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	return container
}

func TestRegisterContainerCommandsBuildsHandlers(t *testing.T) {
	registry := &recordingRegistry{}
	disp := &recordingDispatcher{}

	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{
		Registry:   registry,
		Dispatcher: disp,
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if result.Convert == nil || result.Images == nil {
		t.Fatalf("expected convert and image handlers, got %+v", result)
	}
	if len(result.Handlers) != len(registry.handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(result.Subscriptions) != 2 {
		t.Fatalf("expected two dispatcher subscriptions, got %d", len(result.Subscriptions))
	}

	result.Close()
	if disp.unsubscribed != 2 {
		t.Fatalf("expected subscriptions to be released, got %d", disp.unsubscribed)
	}
}

func TestRegisterContainerCommandsWithoutRegistrars(t *testing.T) {
	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) == 0 {
		t.Fatal("expected handlers to be built even without registrars")
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no dispatcher subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
}

func TestRegisterContainerCommandsCollectsRegistryErrors(t *testing.T) {
	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{
		Registry: failingRegistry{},
	})
	if err == nil {
		t.Fatal("expected registry errors to be returned")
	}
	if len(result.Handlers) != 2 {
		t.Fatalf("expected handlers to be built despite registry errors, got %d", len(result.Handlers))
	}
}

func TestRegisterContainerCommandsNilContainer(t *testing.T) {
	result, err := RegisterContainerCommands(nil, RegistrationOptions{})
	if err != nil || len(result.Handlers) != 0 {
		t.Fatalf("expected empty result, got %+v, %v", result, err)
	}
}

func TestDispatcherRoutesConvertMessages(t *testing.T) {
	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{
		Dispatcher: NewDispatcher(0),
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	t.Cleanup(result.Close)

	var out bytes.Buffer
	err = dispatcher.Dispatch(context.Background(), convertcmd.ConvertCommand{
		Markdown: "Title\n=====",
		Format:   convertcmd.FormatMarkdown,
		Output:   &out,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if out.String() != "# Title\n" {
		t.Fatalf("expected normalized markdown, got %q", out.String())
	}
}

func TestDispatcherRejectsUnknownHandlers(t *testing.T) {
	if _, err := NewDispatcher(0).RegisterCommand(struct{}{}); err == nil {
		t.Fatal("expected unknown handler to be rejected")
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type failingRegistry struct{}

func (failingRegistry) RegisterCommand(any) error {
	return errors.New("registry unavailable")
}

type recordingDispatcher struct {
	handlers     []any
	unsubscribed int
}

func (d *recordingDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch handler.(type) {
	case *convertcmd.ConvertHandler, *imagescmd.NormalizeImageHandler:
	default:
		return nil, errors.New("unexpected handler")
	}
	d.handlers = append(d.handlers, handler)
	return subscriptionFunc(func() { d.unsubscribed++ }), nil
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }
