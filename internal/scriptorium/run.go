package scriptorium

import (
	"github.com/kiosk404/scrivener/internal/scriptorium/config"
)

func Run(cfg *config.Config) error {
	server, err := createAPIServer(cfg)
	if err != nil {
		return err
	}

	return server.PrepareRun().Run()
}
