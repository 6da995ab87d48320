// Package server wires estuary's cobra commands together: parsing
// configuration, configuring logging, and running the HTTP server, the way
// the registry's registry package does for the "registry" binary.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorhandlers "github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/onelson/estuary/internal/api"
	"github.com/onelson/estuary/internal/configuration"
	"github.com/onelson/estuary/internal/dcontext"
	"github.com/onelson/estuary/internal/index"
)

const defaultLogFormatter = "text"

func init() {
	RootCmd.AddCommand(ServeCmd)
}

// RootCmd is the main command for the "estuary" binary.
var RootCmd = &cobra.Command{
	Use:   "estuary",
	Short: "estuary is a private package registry",
	Long:  "estuary is a private package registry compatible with a cargo-like client.",
	Run: func(cmd *cobra.Command, args []string) {
		// nolint:errcheck
		cmd.Usage()
	},
}

// ServeCmd is the cobra command that runs the registry's HTTP server.
var ServeCmd = &cobra.Command{
	Use:   "serve <config>",
	Short: "serve runs the package registry",
	Long:  "serve starts the publish API and the git smart HTTP transport server.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfiguration(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			// nolint:errcheck
			cmd.Usage()
			os.Exit(1)
		}

		ctx := configureLogging(context.Background(), cfg)

		srv, err := NewServer(ctx, cfg)
		if err != nil {
			logrus.Fatalln(err)
		}

		if err := srv.ListenAndServe(); err != nil {
			logrus.Fatalln(err)
		}
	},
}

// Server represents a complete, running instance of estuary.
type Server struct {
	config *configuration.Configuration
	app    *api.App
	server *http.Server
	quit   chan os.Signal
}

// NewServer opens the index repository and constructs the HTTP
// application, ready to be served.
func NewServer(ctx context.Context, cfg *configuration.Configuration) (*Server, error) {
	configJSON := []byte(fmt.Sprintf(
		"{\"dl\":%q,\"api\":%q}\n", cfg.DownloadTemplate(), cfg.BaseURL))

	idx, err := index.Open(cfg.IndexDir, configJSON)
	if err != nil {
		return nil, fmt.Errorf("server: opening index: %w", err)
	}

	app := api.NewApp(cfg, idx)

	var handler http.Handler = app
	handler = gorhandlers.CombinedLoggingHandler(os.Stdout, handler)

	dcontext.GetLogger(ctx).Infof("estuary listening on %v", cfg.HTTP.Addr())

	return &Server{
		config: cfg,
		app:    app,
		server: &http.Server{Addr: cfg.HTTP.Addr(), Handler: handler},
		quit:   make(chan os.Signal, 1),
	}, nil
}

// ListenAndServe runs the HTTP server until it receives SIGINT/SIGTERM, at
// which point it shuts down gracefully.
func (s *Server) ListenAndServe() error {
	signal.Notify(s.quit, os.Interrupt, syscall.SIGTERM)
	serveErr := make(chan error, 1)

	go func() {
		serveErr <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-s.quit:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
}

func resolveConfiguration(args []string) (*configuration.Configuration, error) {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else if v := os.Getenv("ESTUARY_CONFIGURATION_PATH"); v != "" {
		path = v
	}
	if path == "" {
		return nil, fmt.Errorf("configuration path unspecified")
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := configuration.Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return cfg, nil
}

// configureLogging prepares logrus and returns a context carrying the
// configured default logger.
func configureLogging(ctx context.Context, cfg *configuration.Configuration) context.Context {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	formatter := cfg.Log.Formatter
	if formatter == "" {
		formatter = defaultLogFormatter
	}
	switch formatter {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339Nano})
	}

	if len(cfg.Log.Fields) > 0 {
		fields := make(map[string]any, len(cfg.Log.Fields))
		for k, v := range cfg.Log.Fields {
			fields[k] = v
		}
		ctx = dcontext.WithLogger(ctx, dcontext.GetLogger(ctx).WithFields(fields))
	}

	if entry, ok := dcontext.GetLogger(ctx).(*logrus.Entry); ok {
		dcontext.SetDefaultLogger(entry)
	}
	return ctx
}
