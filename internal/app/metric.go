package app

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shandysiswandi/gosend/internal/pkg/pkgmetric"
)

func (a *App) initMetrics() {
	if !a.config.GetBool("metrics.enabled") {
		return
	}

	pkgmetric.Register()
	if err := pkgmetric.RegisterFrame(prometheus.DefaultRegisterer, a.frame); err != nil {
		slog.Warn("failed to register frame metrics", "error", err)
	}

	a.router.Use(pkgmetric.Middleware)
	a.router.Handle(http.MethodGet, "/metrics", pkgmetric.Handler())
}
