package scriptorium

import (
	"fmt"

	"github.com/kiosk404/scrivener/internal/scriptorium/config"
	"github.com/kiosk404/scrivener/internal/scriptorium/options"
	"github.com/kiosk404/scrivener/pkg/app"
	"github.com/kiosk404/scrivener/pkg/logger"
)

const commandDesc = `The scriptorium server turns natural-language requests into
PowerShell, AppleScript and Bash scripts, screens them against an execution
policy and runs approved scripts under a priority scheduler.`

// NewApp builds the scriptorium application.
func NewApp(basename string) *app.App {
	opts := options.NewOptions()
	application := app.NewApp("scriptorium",
		basename,
		app.WithOptions(opts),
		app.WithDescription(commandDesc),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.Options) app.RunFunc {
	return func(basename string) error {
		logPath := fmt.Sprintf("%s/%s.log", opts.PathsOptions.Logs, basename)
		if err := logger.InitLog(logPath); err != nil {
			return err
		}
		defer logger.FlushLog()

		cfg, err := config.CreateConfigFromOptions(opts)
		if err != nil {
			return err
		}

		return Run(cfg)
	}
}
