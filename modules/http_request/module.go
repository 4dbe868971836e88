package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the http_request module.
type Input struct {
	URL    string `flow:"url"`
	Method string `flow:"method,optional"`
	Body   string `flow:"body,optional"`
	// ExpectStatus fails the task when the response code differs.
	// Zero accepts any 2xx.
	ExpectStatus int `flow:"expect_status,optional"`
}

// OnRunHttpRequest is the handler for the 'http_request' module.
func OnRunHttpRequest(ctx context.Context, h *engine.Handle, input *Input) error {
	logger := ctxlog.FromContext(ctx).With("module", "http_request", "url", input.URL)

	method := input.Method
	if method == "" {
		method = http.MethodGet
	}
	logger.Info("Making HTTP request", "method", method)

	var body io.Reader
	if input.Body != "" {
		body = strings.NewReader(input.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, input.URL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	h.SetOutput(string(respBody))

	if input.ExpectStatus != 0 {
		if resp.StatusCode != input.ExpectStatus {
			return fmt.Errorf("unexpected status %d, want %d", resp.StatusCode, input.ExpectStatus)
		}
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request failed with status %s", resp.Status)
	}
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("http_request", &registry.RegisteredRunner{
		Description: "Performs an HTTP request.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunHttpRequest,
	})
}
