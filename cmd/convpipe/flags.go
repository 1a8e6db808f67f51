package main

import (
	goerrors "errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kbukum/convpipe/config"
)

var errHelp = goerrors.New("help requested")

// usageError is a malformed command line. run exits 2 for it.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// commonFlags are accepted by every command that loads configuration.
type commonFlags struct {
	configFile string
	envFile    string
	logLevel   string
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.configFile, "config", "c", "", "config file (default: search ./config.yml, ./config/convpipe.yml)")
	fs.StringVar(&c.envFile, "env-file", "", ".env file to load before binding CONVPIPE_ variables")
	fs.StringVar(&c.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

// load reads the configuration with the flag overrides applied. One-shot
// commands pass quiet so that, unless configured otherwise, only warnings
// reach stderr.
func (c *commonFlags) load(quiet bool) (*config.Config, error) {
	var opts []config.LoaderOption
	if c.configFile != "" {
		opts = append(opts, config.WithConfigFile(c.configFile))
	}
	if c.envFile != "" {
		opts = append(opts, config.WithEnvFile(c.envFile))
	}

	cfg := &config.Config{}
	if err := config.LoadConfig("convpipe", cfg, opts...); err != nil {
		return nil, err
	}
	switch {
	case c.logLevel != "":
		cfg.Logging.Level = c.logLevel
	case quiet && cfg.Logging.Level == "" && !cfg.Debug:
		cfg.Logging.Level = "warn"
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFlagSet(name string, env *cliEnv) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(env.stderr)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(env.stderr, "Usage: convpipe %s [flags]\n\nFlags:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if goerrors.Is(err, pflag.ErrHelp) {
			return errHelp
		}
		return &usageError{err: err}
	}
	if fs.NArg() > 0 {
		return usagef("unexpected arguments: %v", fs.Args())
	}
	return nil
}
