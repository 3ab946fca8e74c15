// Package otel bootstraps the process-wide tracer provider and a
// slog handler bridged onto it, standing in for the private
// webitel-go-kit/infra/otel package the teacher wires instead (not
// part of this pack — see DESIGN.md). No exporter is registered here:
// callers that need spans to leave the process attach one to the
// TracerProvider returned by Setup before traffic starts.
package otel

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup installs a bare sdktrace.TracerProvider as the global tracer
// provider and returns it so the caller can attach an exporter (or
// call Shutdown on process exit) without this package needing to know
// which backend the deployment targets.
func Setup(serviceName string) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp
}

// Shutdown flushes and releases the tracer provider's resources.
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	return tp.Shutdown(ctx)
}

// SlogHandler wraps base so every record is also emitted as an OTel
// log record via the global LoggerProvider, letting the stdout JSON
// handler and the trace-correlated exporter both see every line.
func SlogHandler(serviceName string, base slog.Handler) slog.Handler {
	return &teeHandler{base: base, bridge: otelslog.NewHandler(serviceName)}
}

// teeHandler fans every Handle call out to both the stdout handler
// and the otelslog bridge; Enabled/WithAttrs/WithGroup defer to base
// since it is the one a developer actually reads.
type teeHandler struct {
	base   slog.Handler
	bridge slog.Handler
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := h.base.Handle(ctx, record); err != nil {
		return err
	}
	if h.bridge.Enabled(ctx, record.Level) {
		_ = h.bridge.Handle(ctx, record)
	}
	return nil
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{base: h.base.WithAttrs(attrs), bridge: h.bridge.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{base: h.base.WithGroup(name), bridge: h.bridge.WithGroup(name)}
}
