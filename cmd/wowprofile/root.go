package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"wowprofile/pkg/config"
	"wowprofile/pkg/logger"
	"wowprofile/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	noColor       bool
	notifications bool
	quiet         bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wowprofile",
	Short: "Export a World of Warcraft character's collections and progression",
	Long: `wowprofile reads a character from the Battle.net profile API and writes one
profile document with its mounts, pets, toys, titles, Mythic+ seasons and
character renders.

Features:
  - Mount, pet, toy and title rarity from Wowhead ("Attained by N% of profiles")
  - Paced requests with bounded concurrency
  - Optional SQLite rarity cache between runs
  - TypeScript, JSON or YAML output
  - Secure client credential storage using the system keychain
  - Cron scheduling for unattended refreshes

Running wowprofile without a subcommand is the same as 'wowprofile generate'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetQuiet(quiet)
		ui.SetNoColor(noColor)
		logger.Version = version
	},
	RunE: runGenerate,
}

// reportedError wraps an error that has already been shown to the user.
type reportedError struct{ err error }

func (r reportedError) Error() string { return r.err.Error() }
func (r reportedError) Unwrap() error { return r.err }

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			ui.PrintError("Error", err)
		}
		return 1
	}
	return 0
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.wowprofile.yaml or ~/.config/wowprofile/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "enable desktop notifications")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	addGenerateFlags(rootCmd.Flags())

	// Version template
	rootCmd.SetVersionTemplate(`wowprofile {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// changedFlags collects the flags the user actually set, keyed by flag
// name, for config.MergeCommandLineFlags.
func changedFlags(fs *pflag.FlagSet) map[string]interface{} {
	flags := make(map[string]interface{})
	fs.Visit(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "bool":
			v, _ := fs.GetBool(f.Name)
			flags[f.Name] = v
		case "int":
			v, _ := fs.GetInt(f.Name)
			flags[f.Name] = v
		default:
			flags[f.Name] = f.Value.String()
		}
	})

	if _, ok := flags["log-level"]; !ok {
		switch {
		case verbose:
			flags["log-level"] = "debug"
		case quiet:
			flags["log-level"] = "error"
		}
	}
	return flags
}

// loadConfig loads configuration for cmd and initializes the global
// logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, changedFlags(cmd.Flags()))
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
