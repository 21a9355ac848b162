// Command stormstats analyzes Heroes of the Storm replays from the command line.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vytor/stormstats/internal/config"
	"github.com/vytor/stormstats/internal/decoder"
	"github.com/vytor/stormstats/internal/locale"
	"github.com/vytor/stormstats/internal/logger"
)

// errFailed signals a failure already reported on stdout.
var errFailed = errors.New("analysis failed")

type rootOptions struct {
	decoderPath string
	timeout     time.Duration
	localeFile  string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "stormstats",
		Short:         "Analyze Heroes of the Storm replays",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDefault(logger.New(
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithLevel(logger.ParseLevel(opts.logLevel)),
				logger.WithColors(false),
			))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.decoderPath, "decoder", cfg.DecoderPath, "path to the replay decoder binary")
	flags.DurationVar(&opts.timeout, "timeout", cfg.DecoderTimeout, "per-invocation decoder timeout")
	flags.StringVar(&opts.localeFile, "locale", cfg.LocaleFile, "localization table file (default: embedded tables)")
	flags.StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "log level")

	root.AddCommand(newAnalyzeCmd(opts), newHeaderCmd(opts), newLocaleCmd(opts))
	return root
}

func (o *rootOptions) process() *decoder.Process {
	return decoder.NewProcess(o.decoderPath, decoder.WithTimeout(o.timeout))
}

func (o *rootOptions) tables() (*locale.Tables, error) {
	return locale.Load(o.localeFile)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
