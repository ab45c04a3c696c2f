package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"reblograffle/internal/app"
	"reblograffle/internal/config"
	logx "reblograffle/pkg/logx"
)

// version is set via ldflags at build time.
var version = "dev"

// Env holds the process resources commands use. Tests swap them.
type Env struct {
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
}

func DefaultEnv() Env {
	return Env{Fs: afero.NewOsFs(), Stdout: logx.Stdout(), Stderr: logx.Stderr()}
}

// ExitError carries a non-zero exit code out of a command.
// The outcome record was already written when it is returned.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

func NewRootCmd(env Env) *cobra.Command {
	var (
		cfgPath string
		opts    app.Options
	)

	root := &cobra.Command{
		Use:   "raffle",
		Short: "Draw winners among the accounts that reblogged a post",
		Long: "raffle fetches the accounts that reblogged a post, draws up to max_winners of them\n" +
			"at random and announces the winners to a chat webhook.\n\n" +
			"The run writes one JSON outcome record to stdout; logs go to stderr.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(env.Fs, cfgPath).Load()
			if err != nil {
				return fmt.Errorf("load config %s: %w", cfgPath, err)
			}
			return runDraw(cmd, env, cfg, opts)
		},
	}
	root.SetOut(env.Stderr)
	root.SetErr(env.Stderr)

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "./config.json", "path to config (json, yaml or toml)")
	root.Flags().BoolVar(&opts.DryRun, "dry-run", false, "draw and print winners without announcing")
	root.Flags().BoolVar(&opts.Confirm, "confirm", false, "ask before announcing")

	root.AddCommand(newHistoryCmd(env, &cfgPath))
	return root
}

func runDraw(cmd *cobra.Command, env Env, cfg *config.Config, opts app.Options) error {
	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logs.Close()

	a, cleanup, err := app.Build(cfg, opts, log)
	if err != nil {
		return err
	}
	defer cleanup()

	out, runErr := a.Run(cmd.Context())
	if err := app.WriteOutcome(env.Stdout, out); err != nil {
		return err
	}
	if code := app.ExitCode(runErr, cfg.Output.ExitZeroOnFailure); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// Exit maps an Execute error to a process exit code, printing it when needed.
func Exit(env Env, err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	fmt.Fprintln(env.Stderr, "fatal:", err)
	return 1
}
