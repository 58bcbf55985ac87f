package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drake/duet/config"
	"github.com/drake/duet/debug"
	"github.com/drake/duet/logging"
	"github.com/drake/duet/protocol"
	"github.com/drake/duet/script"
	"github.com/drake/duet/session"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "duet <script>",
		Short: "Run a script that drives a terminal UI",
		Long: `duet runs a Lua (.lua) or JavaScript (.js, .mjs) script on its own goroutine.
The script builds widgets and reacts to UI events; the UI runs in the terminal.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.Context(), opts, args[0])
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default "+config.File()+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&opts.logFile, "log-file", "", `log destination ("-" for stderr)`)

	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

func runScript(ctx context.Context, opts *rootOptions, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	if _, err := script.LanguageOf(path); err != nil {
		return err
	}

	mgr := config.NewManager(opts.configPath)
	if err := mgr.Load(); err != nil {
		return err
	}
	if opts.logLevel != "" {
		if err := mgr.Set("logging.level", opts.logLevel); err != nil {
			return err
		}
	}
	if opts.logFile != "" {
		if err := mgr.Set("logging.file", opts.logFile); err != nil {
			return err
		}
	}
	cfg := mgr.Config()

	out, err := logging.OpenFile(cfg.Logging.File, config.Dir())
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer out.Close()

	logger, level := logging.New(cfg.Logging, out)
	mgr.SetLogger(logger)
	mgr.OnChange(func(c config.Config) {
		level.Set(logging.ParseLevel(c.Logging.Level))
		logger.Info().Str("level", c.Logging.Level).Msg("log level reloaded")
	})
	mgr.Watch()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	sess, err := session.New(session.Config{
		Script:         path,
		Title:          cfg.Window.Title,
		Width:          cfg.Window.Width,
		Height:         cfg.Window.Height,
		QueueLimit:     cfg.Queue.Limit,
		StyleCacheSize: cfg.Style.CacheSize,
	}, logger)
	if err != nil {
		return err
	}

	if debug.Enabled(cfg.Debug) {
		debug.NewMonitor(sess, cfg.DebugEvery(), logger).Start(ctx)
	}

	logger.Info().Str("script", path).Str("config", mgr.Path()).Msg("duet starting")
	return sess.Run(ctx)
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of events delivered to scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := protocol.EventSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = config.File()
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
