// Package socketio provides the "socketio" dependency: one-shot event
// exchanges with a socket.io server.
package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zishang520/engine.io/v2/types"
)

// Name is the import name of the dependency.
const Name = "socketio"

// DefaultRequestTimeout bounds how long request waits for the reply event.
const DefaultRequestTimeout = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the dependency with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDependency(Name, &registry.RegisteredDependency{
		Description: "Emits socket.io events and waits for replies.",
		Build:       build,
	})
}

func build(ctx context.Context, env *registry.Env) (registry.Dependency, error) {
	return &registry.Native{
		DepName: Name,
		Funcs: map[string]function.Function{
			"emit":    emitFunc(ctx),
			"request": requestFunc(ctx),
		},
	}, nil
}

func payload(args []cty.Value, idx int) (any, error) {
	if len(args) <= idx {
		return nil, nil
	}
	return registry.ToGo(args[idx])
}

// emitFunc implements emit(url, event, data?).
func emitFunc(ctx context.Context) function.Function {
	return function.New(&function.Spec{
		Description: "Connects, emits one event and disconnects.",
		Params: []function.Parameter{
			{Name: "url", Type: cty.String},
			{Name: "event", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "data", Type: cty.DynamicPseudoType, AllowNull: true},
		Type:     function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			data, err := payload(args, 2)
			if err != nil {
				return cty.NilVal, fmt.Errorf("data: %w", err)
			}
			if err := Emit(ctx, ClientOptions{URL: args[0].AsString()}, args[1].AsString(), data); err != nil {
				return cty.NilVal, err
			}
			return cty.True, nil
		},
	})
}

// requestFunc implements request(url, emit_event, on_event, data?).
func requestFunc(ctx context.Context) function.Function {
	return function.New(&function.Spec{
		Description: "Emits an event and returns the payload of the first reply event.",
		Params: []function.Parameter{
			{Name: "url", Type: cty.String},
			{Name: "emit_event", Type: cty.String},
			{Name: "on_event", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "data", Type: cty.DynamicPseudoType, AllowNull: true},
		Type:     function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			data, err := payload(args, 3)
			if err != nil {
				return cty.NilVal, fmt.Errorf("data: %w", err)
			}
			reply, err := Request(ctx, ClientOptions{URL: args[0].AsString()}, args[1].AsString(), args[2].AsString(), data, DefaultRequestTimeout)
			if err != nil {
				return cty.NilVal, err
			}
			return registry.FromGo(reply)
		},
	})
}

// Emit connects, sends event with data and disconnects.
func Emit(ctx context.Context, in ClientOptions, event string, data any) error {
	io, err := Connect(ctx, in)
	if err != nil {
		return err
	}
	defer io.Disconnect()

	jsonData, _ := json.Marshal(data)
	ctxlog.FromContext(ctx).Info("Emitting event", "event", event, "data", string(jsonData))
	if err := io.Emit(event, data); err != nil {
		return fmt.Errorf("failed to emit '%s': %w", event, err)
	}
	return nil
}

// Request connects, emits emitEvent with data and returns the first
// argument of the next onEvent, or nil when the reply carries none.
func Request(ctx context.Context, in ClientOptions, emitEvent, onEvent string, data any, timeout time.Duration) (any, error) {
	logger := ctxlog.FromContext(ctx).With("emitEvent", emitEvent, "onEvent", onEvent)

	io, err := Connect(ctx, in)
	if err != nil {
		return nil, err
	}
	defer io.Disconnect()

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan any, 1)
	io.Once(types.EventName(onEvent), func(args ...any) {
		var reply any
		if len(args) > 0 {
			reply = args[0]
		}
		select {
		case done <- reply:
		default:
		}
	})

	jsonData, _ := json.Marshal(data)
	logger.Debug("Emitting event", "data", string(jsonData))
	if err := io.Emit(emitEvent, data); err != nil {
		return nil, fmt.Errorf("failed to emit '%s': %w", emitEvent, err)
	}

	select {
	case <-opCtx.Done():
		return nil, fmt.Errorf("timed out after %v waiting for event '%s'", timeout, onEvent)
	case reply := <-done:
		logger.Info("Successfully received response event")
		return reply, nil
	}
}
