package app

import (
	"context"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/stock-keeper/internal/domain/catalog"
	"github.com/xenking/stock-keeper/internal/shell"
	"github.com/xenking/stock-keeper/internal/storage/jsonfile"
	"github.com/xenking/stock-keeper/pkg/zaplog"
)

// Telemetry carries the providers used to instrument a session. Nil
// providers disable instrumentation.
type Telemetry struct {
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Run sets up logging and runs an interactive session on stdin and stdout.
// It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg, logFile := zaplog.Redirect(lg, cfg.Rotation())
	defer func() { _ = logFile.Close() }()

	lg = lg.With(zap.String("session_id", uuid.NewString()))
	ctx = zctx.Base(ctx, lg)

	return Serve(ctx, cfg, os.Stdin, os.Stdout, Telemetry{
		MeterProvider:  m.MeterProvider(),
		TracerProvider: m.TracerProvider(),
	})
}

// Serve loads the stock document, runs the menu on in and out and saves
// pending changes when the menu stops, including on interrupt.
func Serve(ctx context.Context, cfg *Config, in io.Reader, out io.Writer, tel Telemetry) error {
	lg := zctx.From(ctx)
	lg.Info("Initializing",
		zap.String("file", cfg.File),
		zap.Int("low_stock", cfg.LowStock),
		zap.Bool("monotonic_ids", cfg.MonotonicIDs),
	)

	store := jsonfile.New(cfg.File,
		jsonfile.WithTracerProvider(tel.TracerProvider),
		jsonfile.WithDefaultCategory(cfg.DefaultCategory),
	)
	cat := catalog.New(store.Load(ctx), cfg.CatalogOptions()...)

	sh, err := shell.New(cat, store, in, out,
		shell.WithMeterProvider(tel.MeterProvider),
		shell.WithTracerProvider(tel.TracerProvider),
	)
	if err != nil {
		return errors.Wrap(err, "create shell")
	}

	runErr := sh.Run(ctx)
	switch {
	case runErr == nil:
		lg.Info("Session finished", zap.Int("products", cat.Len()))
	case errors.Is(runErr, shell.ErrInterrupted):
		lg.Info("Session interrupted", zap.Int("products", cat.Len()))
	default:
		lg.Error("Session stopped unexpectedly", zap.Error(runErr))
	}

	// The shell context may already be cancelled by a signal.
	saveCtx := context.WithoutCancel(ctx)
	if !cat.Dirty() {
		return nil
	}
	if err := cat.Save(saveCtx, store); err != nil {
		lg.Error("Final save failed, unsaved changes are lost", zap.Error(err))
		return nil
	}
	lg.Info("Final save done", zap.String("file", store.Path()), zap.Int("products", cat.Len()))
	return nil
}
