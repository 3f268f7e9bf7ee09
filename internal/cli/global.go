package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kubev2v/coach-importer/internal/config"
	"github.com/kubev2v/coach-importer/pkg/log"
)

type GlobalOptions struct {
	LogLevel string

	cfg *config.Config
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level. Overrides COACH_IMPORTER_LOG_LEVEL.")
}

// Complete reads the configuration from the environment and sets up the
// global logger.
func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.Service.LogLevel = o.LogLevel
	}
	o.cfg = cfg

	zap.ReplaceGlobals(log.InitLog(log.ParseLevel(cfg.Service.LogLevel)))
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return nil
}

func (o *GlobalOptions) Config() *config.Config {
	return o.cfg
}
