package commands

import (
	"fmt"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	convertcmd "github.com/goliatone/go-richtext/internal/commands/convert"
	imagescmd "github.com/goliatone/go-richtext/internal/commands/images"
)

// Dispatcher subscribes the richtext handlers to the go-command global
// dispatcher so hosts can send messages with dispatcher.Dispatch.
type Dispatcher struct {
	maxRetries int
}

var _ CommandDispatcher = (*Dispatcher)(nil)

// NewDispatcher returns a dispatcher adapter. Failed executions are retried
// up to maxRetries times.
func NewDispatcher(maxRetries int) *Dispatcher {
	return &Dispatcher{maxRetries: max(maxRetries, 0)}
}

// RegisterCommand subscribes handler for its message type.
func (d *Dispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *convertcmd.ConvertHandler:
		return dispatcher.SubscribeCommand[convertcmd.ConvertCommand](h, runner.WithMaxRetries(d.maxRetries)), nil
	case *imagescmd.NormalizeImageHandler:
		return dispatcher.SubscribeCommand[imagescmd.NormalizeImageCommand](h, runner.WithMaxRetries(d.maxRetries)), nil
	default:
		return nil, fmt.Errorf("commands: unsupported handler %T", handler)
	}
}
