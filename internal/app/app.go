package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/gosend/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gosend/internal/pkg/pkglog"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	configPath string
	config     pkgconfig.Config

	// libraries
	requestID   pkguid.StringID
	goroutine   *pkgroutine.Manager
	frame       *pkguid.Frame
	fingerprint pkguid.Fingerprint

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	// closed in order by Stop
	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New wires the service. An empty configPath falls back to DefaultConfigPath.
func New(configPath string) *App {
	pkglog.InitLogging()

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:        ctx,
		cancel:     cancel,
		configPath: configPath,
	}

	app.initConfig()
	app.initLibraries()
	app.initHTTPServer()
	app.initMetrics()
	app.initModules()
	app.initClosers()

	return app
}
