package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gosend/internal/pkg/pkglog"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

func (a *App) initConfig() {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	level := pkglog.SetLevel(cfg.GetString("log.level"))
	slog.Info("config loaded", "level", level.String())

	a.config = cfg
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(int(a.config.GetInt("goroutine.max")))
	a.requestID = NewRequestID(a.config)
	a.frame, a.fingerprint = NewIdentity(a.config)

	a.goroutine.Go(a.ctx, a.watchFrame)
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.requestID)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// initClosers runs last so the config outlives everything built from it.
func (a *App) initClosers() {
	a.closers = append(a.closers, closer{name: "Config", fn: func(context.Context) error {
		return a.config.Close()
	}})
}

const frameWatchInterval = 10 * time.Second

// watchFrame warns when the wall clock was seen running behind the frame.
func (a *App) watchFrame(ctx context.Context) error {
	ticker := time.NewTicker(frameWatchInterval)
	defer ticker.Stop()

	var behind uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := a.frame.Stats()
			if stats.Behind > behind {
				slog.WarnContext(ctx, "wall clock is behind the token frame, allocations stall until it catches up",
					"epoch", stats.Epoch, "behind", stats.Behind-behind)
				behind = stats.Behind
			}
		}
	}
}

// LoadConfig reads path, or DefaultConfigPath when path is empty.
func LoadConfig(path string) (pkgconfig.Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		return nil, err
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	return cfg, nil
}

// DefaultConfigPath is /config/config.yaml, or ./config/config.yaml when LOCAL=true.
func DefaultConfigPath() string {
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

// NewRequestID picks the correlation id generator named by id.request_id.
func NewRequestID(cfg pkgconfig.Config) pkguid.StringID {
	if cfg.GetString("id.request_id") == "uuid" {
		return pkguid.NewUUID()
	}
	return pkguid.NewULID()
}

// NewIdentity builds the token frame and the process fingerprint, logging
// when the fingerprint cannot be trusted across devices.
func NewIdentity(cfg pkgconfig.Config) (*pkguid.Frame, pkguid.Fingerprint) {
	seed, fromBuild := pkguid.BuildSeed()
	if !fromBuild {
		slog.Warn("build seed is not set, device ids are mixed with a per-process random seed")
	}

	fp := pkguid.NewFingerprint(cfg.GetString("id.device_id"), seed)
	if !fp.FromDevice() {
		slog.Warn("device id is not set, falling back to the process id",
			"env", pkguid.EnvDeviceID, "pid", os.Getpid())
	}

	frame := pkguid.NewFrame(pkguid.WithPauseOnStart(cfg.GetBool("id.pause_on_start")))

	return frame, fp
}
