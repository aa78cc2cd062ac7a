package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/64/kaiser/internal/config"
	"github.com/64/kaiser/internal/logging"
)

// app holds what every command shares: the streams, the loaded
// configuration and the logger.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *logging.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		cfg:    config.DefaultConfig(),
		logger: logging.Discard(),
	}
}

func (a *app) close() {
	if err := a.logger.Close(); err != nil {
		fmt.Fprintf(a.stderr, "kaiser: close log: %v\n", err)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kaiser",
		Short: "Break classical ciphers by scoring trial decryptions",
		Long: `kaiser encrypts, decrypts and cracks classical ciphers.

Cracking decrypts the ciphertext under many keys and ranks the results by
how much they look like English, using quadgram statistics, chi-squared
distance from English letter frequencies, or the index of coincidence.

Text is read from a file argument or from standard input.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err: err}
	})
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $KAISER_CONFIG or "+config.ConfigPath()+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		a.iocCmd(),
		a.chiCmd(),
		a.freqsCmd(),
		a.trimCmd(),
		a.scoreCmd(),
		a.ciphersCmd(),
		a.encryptCmd(),
		a.decryptCmd(),
		a.crackCmd(),
		a.quadgramCmd(),
		a.historyCmd(),
		a.reportCmd(),
		a.configCmd(),
	)
	return root
}

// setup loads the configuration, applies the global flags and opens the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lc, err := cfg.LoggerConfig()
	if err != nil {
		return err
	}
	switch strings.ToLower(lc.Output) {
	case "stderr", "":
		lc.Writer = a.stderr
	case "stdout":
		lc.Writer = a.stdout
	}
	logger, err := logging.New(lc)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("configuration loaded", "path", a.configPath, "storage", cfg.Storage.Enabled)
	return nil
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.ExactArgs(n))
}

// rangeArgs is cobra.RangeArgs reporting a usage error.
func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return usageArgs(cobra.RangeArgs(lo, hi))
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}
