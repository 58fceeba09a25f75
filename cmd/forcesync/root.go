package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/forcesync/cmd/forcesync/commands"
	"github.com/walteh/forcesync/cmd/forcesync/opts"
	"github.com/walteh/forcesync/pkg/config"
	"github.com/walteh/forcesync/pkg/log"
	"github.com/walteh/forcesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// rootFlags are the flags shared by every command
type rootFlags struct {
	configFile string
	projectDir string
	logLevel   string
	logFile    string
	noColor    bool
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, f *rootFlags) {
	cmd.PersistentFlags().StringVarP(&f.configFile, "config", "c", "", "config file path (default: .forcesync.{yaml,yml,json,hcl} in the project)")
	cmd.PersistentFlags().StringVarP(&f.projectDir, "project", "C", ".", "project directory")
	cmd.PersistentFlags().StringVar(&f.logLevel, "loglevel", "", "log level: "+strings.Join(log.Levels, ", "))
	cmd.PersistentFlags().StringVar(&f.logFile, "log-file", "", "also write JSON logs to this file")
	cmd.PersistentFlags().BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// setup loads the configuration, then builds the logger it asks for and
// fills ro. The returned closer flushes the log file.
func setup(cmd *cobra.Command, f *rootFlags, ro *opts.RootOpts, stdout io.Writer) (io.Closer, error) {
	ctx := cmd.Context()

	projectDir, err := filepath.Abs(f.projectDir)
	if err != nil {
		return nil, errors.Errorf("resolving project directory: %w", err)
	}

	cfg, err := config.Resolve(ctx, projectDir, f.configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	level := cfg.Log.Level
	if f.logLevel != "" {
		level = f.logLevel
	}
	file := cfg.Resolve(cfg.Log.File)
	if f.logFile != "" {
		file = f.logFile
	}

	logger, closer, err := log.Setup(log.Options{
		Level:   level,
		File:    file,
		Console: os.Stderr,
		NoColor: f.noColor,
	})
	if err != nil {
		return nil, errors.Errorf("setting up logging: %w", err)
	}

	if f.noColor {
		color.NoColor = true
		pterm.DisableStyling()
	}

	logger.Debug().Str("file", cfg.Location()).Stringer("config", cfg).Str("project", projectDir).Msg("configuration loaded")

	ro.Config = cfg
	ro.ProjectDir = projectDir
	ro.Console = log.New(stdout, logger)
	ro.Interactive = status.Interactive() && !f.noColor

	cmd.SetContext(logger.WithContext(ctx))
	return closer, nil
}

// newRootCmd creates the command tree writing user output to stdout
func newRootCmd(stdout io.Writer) *cobra.Command {
	flags := &rootFlags{}
	ro := &opts.RootOpts{}
	var closer io.Closer

	cmd := &cobra.Command{
		Use:   "forcesync",
		Short: "Classify, copy and sync Salesforce source metadata",
		Long: `forcesync works on a Salesforce DX project on disk. It classifies source
files into metadata types, copies components together with their bundles, lists
Apex test classes and keeps profiles in line with a remote copy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, flags, ro, stdout)
			if err != nil {
				return err
			}
			closer = c
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closer == nil {
				return nil
			}
			if err := closer.Close(); err != nil {
				zerolog.Ctx(cmd.Context()).Warn().Err(err).Msg("closing log file")
			}
			return nil
		},
	}

	addRootFlags(cmd, flags)
	cmd.SetOut(stdout)

	cmd.AddCommand(
		commands.NewApexTestCmd(ro),
		commands.NewProfileCmd(ro),
		commands.NewSourceCmd(ro),
		newVersionCmd(),
	)

	return cmd
}
