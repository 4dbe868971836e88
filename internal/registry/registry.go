package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vk/flowforgego/internal/engine"
	"github.com/vk/flowforgego/internal/plugin"
)

// Module is the interface that all core modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// RegisteredRunner holds the compiled Go parts of a task module.
//
// Fn must have the signature
//
//	func(ctx context.Context, h *engine.Handle, input *T) error
//
// where *T is the type NewInput returns. The signature is checked at
// registration time.
type RegisteredRunner struct {
	Description string
	NewInput    func() any
	Fn          any

	fn reflect.Value
}

// RegisteredPlugin holds a plugin type's phase hooks.
type RegisteredPlugin struct {
	Description string
	Hooks       plugin.Hooks
}

// Registry holds all registered runners and plugins for a single
// application instance.
type Registry struct {
	runners map[string]*RegisteredRunner
	plugins map[string]*RegisteredPlugin
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		runners: make(map[string]*RegisteredRunner),
		plugins: make(map[string]*RegisteredPlugin),
	}
}

var (
	ctxType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	handleType = reflect.TypeOf((*engine.Handle)(nil))
	errType    = reflect.TypeOf((*error)(nil)).Elem()
)

// RegisterRunner registers a Go handler for a module type. It panics on a
// duplicate type or a handler whose signature does not match its input
// struct; both are programming errors caught at startup.
func (r *Registry) RegisterRunner(moduleType string, handler *RegisteredRunner) {
	if _, exists := r.runners[moduleType]; exists {
		panic(fmt.Sprintf("runner for module type '%s' already registered", moduleType))
	}
	if handler.NewInput == nil || handler.Fn == nil {
		panic(fmt.Sprintf("runner for module type '%s' must set NewInput and Fn", moduleType))
	}

	fn := reflect.ValueOf(handler.Fn)
	ft := fn.Type()
	inputType := reflect.TypeOf(handler.NewInput())
	valid := ft.Kind() == reflect.Func &&
		ft.NumIn() == 3 && ft.NumOut() == 1 &&
		ft.In(0) == ctxType && ft.In(1) == handleType &&
		ft.In(2) == inputType && ft.Out(0) == errType
	if !valid {
		panic(fmt.Sprintf("runner for module type '%s' has signature %v, want func(context.Context, *engine.Handle, %v) error",
			moduleType, ft, inputType))
	}

	slog.Debug("Registering runner handler.", "moduleType", moduleType)
	handler.fn = fn
	r.runners[moduleType] = handler
}

// RegisterPlugin registers phase hooks for a plugin type.
func (r *Registry) RegisterPlugin(pluginType string, handler *RegisteredPlugin) {
	if _, exists := r.plugins[pluginType]; exists {
		panic(fmt.Sprintf("plugin type '%s' already registered", pluginType))
	}
	slog.Debug("Registering plugin handler.", "pluginType", pluginType)
	r.plugins[pluginType] = handler
}

// Runner returns the handler for a module type.
func (r *Registry) Runner(moduleType string) (*RegisteredRunner, bool) {
	h, ok := r.runners[moduleType]
	return h, ok
}

// Plugin returns the handler for a plugin type.
func (r *Registry) Plugin(pluginType string) (*RegisteredPlugin, bool) {
	h, ok := r.plugins[pluginType]
	return h, ok
}

// invoke calls the handler with a freshly decoded input.
func (h *RegisteredRunner) invoke(ctx context.Context, handle *engine.Handle, input any) error {
	out := h.fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(handle),
		reflect.ValueOf(input),
	})
	if err, ok := out[0].Interface().(error); ok && err != nil {
		return err
	}
	return nil
}
