// Package notify provides the 'notify' task module, which connects to a
// Socket.IO server and emits a workflow event, optionally waiting for an
// acknowledgment event before completing.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the notify module.
type Input struct {
	URL       string         `flow:"url"`
	Namespace string         `flow:"namespace,optional"`
	Event     string         `flow:"event"`
	Data      map[string]any `flow:"data,optional"`
	// AckEvent, when set, blocks until the server replies with the
	// named event.
	AckEvent           string `flow:"ack_event,optional"`
	Timeout            string `flow:"timeout,optional"`
	InsecureSkipVerify bool   `flow:"insecure_skip_verify,optional"`
}

// opResult passes the outcome through the done channel.
type opResult struct {
	payload any
	err     error
}

// OnRunNotify is the handler for the 'notify' module.
func OnRunNotify(ctx context.Context, h *engine.Handle, input *Input) error {
	logger := ctxlog.FromContext(ctx).With("module", "notify", "url", input.URL, "event", input.Event)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout := 10 * time.Second
	if input.Timeout != "" {
		parsed, err := time.ParseDuration(input.Timeout)
		if err != nil {
			logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", input.Timeout, "error", err)
		} else {
			timeout = parsed
		}
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Connected to notification server", "sid", io.Id())
		io.Emit(input.Event, input.Data)
		if input.AckEvent == "" {
			done <- opResult{}
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if err, ok := errs[0].(error); ok {
			done <- opResult{err: err}
			return
		}
		done <- opResult{err: fmt.Errorf("connect error: %v", errs[0])}
	})

	if input.AckEvent != "" {
		io.On(types.EventName(input.AckEvent), func(data ...any) {
			var payload any
			if len(data) > 0 {
				payload = data[0]
			}
			done <- opResult{payload: payload}
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return fmt.Errorf("timed out after connecting while waiting for event '%s'", input.AckEvent)
		}
		return fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		if res.payload != nil {
			h.SetOutput(fmt.Sprintf("%v", res.payload))
		}
		return nil
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("notify", &registry.RegisteredRunner{
		Description: "Emits a Socket.IO event to a notification server.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunNotify,
	})
}
