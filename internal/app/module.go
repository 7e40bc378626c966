package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gosend/internal/issuer"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.issuer.enabled") {
		stop, err := issuer.New(issuer.Dependency{
			Config:      a.config,
			Router:      a.router,
			Frame:       a.frame,
			Fingerprint: a.fingerprint,
			ID:          a.requestID,
		})
		if err != nil {
			slog.Error("failed to init module issuer", "error", err)
			os.Exit(1)
		}
		a.closers = append(a.closers, closer{name: "Issuer", fn: stop})
	}
}
