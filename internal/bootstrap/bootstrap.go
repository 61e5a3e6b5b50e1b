// Package bootstrap wires the server components into an fx application for
// the configured transport.
package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/ironsheep/dinox-mcp/internal/config"
	"github.com/ironsheep/dinox-mcp/internal/dinox"
	"github.com/ironsheep/dinox-mcp/internal/imaging"
	"github.com/ironsheep/dinox-mcp/internal/server"
	"github.com/ironsheep/dinox-mcp/internal/visualize"
)

// StopTimeout bounds graceful shutdown.
const StopTimeout = 15 * time.Second

// Stdio carries the pipe the stdio transport reads from and writes to.
type Stdio struct {
	In  io.Reader
	Out io.Writer
}

// Options returns the fx options for cfg.
func Options(cfg *config.Config, logger *slog.Logger, stdio Stdio) fx.Option {
	return fx.Options(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With("component", "fx")}
		}),
		fx.Supply(cfg, logger, stdio),
		fx.Provide(NewTaskClient, NewPipeline),
		transportModule(cfg.Transport),
	)
}

// New builds the application.
func New(cfg *config.Config, logger *slog.Logger, stdio Stdio) *fx.App {
	return fx.New(Options(cfg, logger, stdio))
}

// Run starts app, blocks until it is asked to stop, and returns the process
// exit code.
func Run(app *fx.App) int {
	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return 1
	}

	sig := <-app.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), StopTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return 1
	}
	return sig.ExitCode
}

func transportModule(t config.Transport) fx.Option {
	if t == config.TransportHTTP {
		return HTTPModule
	}
	return StdioModule
}

// NewTaskClient creates the backend client bound to the server-wide key.
func NewTaskClient(cfg *config.Config, logger *slog.Logger) *dinox.Client {
	return newTaskClient(cfg, cfg.APIKey, logger)
}

func newTaskClient(cfg *config.Config, apiKey string, logger *slog.Logger) *dinox.Client {
	return dinox.NewClient(dinox.Config{
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL,
		Logger:  logger.With("component", "dinox"),
	})
}

// NewPipeline creates the shared detection pipeline.
func NewPipeline(client *dinox.Client, logger *slog.Logger) *dinox.Pipeline {
	return dinox.NewPipeline(client, logger.With("component", "pipeline"))
}

// NewRenderer creates the visualization renderer.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *visualize.Renderer {
	return visualize.NewRenderer(visualize.Config{
		StorageDirectory: cfg.ImageStorageDirectory,
		Loader:           imaging.NewLoader(nil),
		Logger:           logger.With("component", "visualize"),
	})
}

// StdioModule serves MCP over the supplied pipe with the visualization tool
// enabled. The application shuts down when the input is exhausted.
var StdioModule = fx.Options(
	fx.Provide(NewRenderer),
	fx.Invoke(StartStdio),
)

// StartStdio runs the stdio server for the lifetime of the application.
func StartStdio(lc fx.Lifecycle, sd fx.Shutdowner, stdio Stdio, pipeline *dinox.Pipeline, renderer *visualize.Renderer, logger *slog.Logger) {
	srv := server.New(pipeline,
		server.WithRenderer(renderer),
		server.WithLogger(logger.With("component", "server")),
	)
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("serving MCP on stdio", "storage_dir", renderer.StorageDirectory())
			go func() {
				code := 0
				if err := srv.Run(ctx, stdio.In, stdio.Out); err != nil {
					logger.Error("stdio server stopped", "error", err)
					code = 1
				}
				if err := sd.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Error("shutdown failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

// HTTPModule serves MCP over HTTP.
var HTTPModule = fx.Options(
	fx.Provide(NewHTTPServer),
	fx.Invoke(StartHTTP),
)

// NewHTTPServer builds the echo instance. With client keys enabled every
// request gets its own client and pipeline bound to the supplied key.
func NewHTTPServer(cfg *config.Config, pipeline *dinox.Pipeline, logger *slog.Logger) *echo.Echo {
	return server.NewHTTPServer(server.HTTPConfig{
		Detector: pipeline,
		NewDetector: func(apiKey string) server.Detector {
			return dinox.NewPipeline(newTaskClient(cfg, apiKey, logger), logger.With("component", "pipeline"))
		},
		EnableClientKey: cfg.EnableClientKey,
		AuthToken:       cfg.AuthToken,
		Logger:          logger.With("component", "http"),
	})
}

// StartHTTP binds the listener on start, so address errors fail startup,
// and shuts the server down gracefully on stop.
func StartHTTP(lc fx.Lifecycle, sd fx.Shutdowner, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr())
			if err != nil {
				return err
			}
			e.Listener = ln

			logger.Info("serving MCP on http",
				"addr", ln.Addr().String(),
				"path", server.MCPPath,
				"client_keys", cfg.EnableClientKey,
				"bearer_auth", cfg.AuthToken != "",
			)
			if cfg.EnableClientKey {
				logger.Info("API key is required at client side via ?key=your-dinox-api-key")
			}

			go func() {
				if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", "error", err)
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
