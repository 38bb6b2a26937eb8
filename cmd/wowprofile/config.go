package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wowprofile/pkg/config"
	"wowprofile/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage wowprofile configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (WOWPROFILE_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with every option",
	Long: `Create a configuration file holding the default value of every option.

The file is written to the --config path, or to the per-user configuration
directory when no path is given. An existing file is never overwritten.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging every source. The client secret is
masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const configHeader = `# wowprofile configuration
#
# Every option can also be set with a WOWPROFILE_ environment variable,
# e.g. WOWPROFILE_CLIENT_ID, WOWPROFILE_REALM, WOWPROFILE_FORMAT.
# Prefer 'wowprofile auth login' over putting the client secret here.

`

// exampleConfig renders the defaults as commented YAML.
func exampleConfig() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.DefaultConfig()); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		return reportedError{fmt.Errorf("%s exists", configPath)}
	}

	data, err := exampleConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Set battlenet.realm and battlenet.character")
	fmt.Println("2. Store API credentials with 'wowprofile auth login'")
	fmt.Println("3. Run 'wowprofile config validate', then 'wowprofile generate'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, changedFlags(cmd.Flags()))
	if err != nil {
		return err
	}

	masked := cfg.Masked()
	data, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (WOWPROFILE_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched default locations)")
	}
	fmt.Println("4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, changedFlags(cmd.Flags()))
	if err != nil {
		return err
	}
	_ = resolveCredentials(cfg, "", openCredentials)

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration has errors:")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Printf("  - %s\n", line)
		}
		return reportedError{err}
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Character: %s @ %s (%s)\n", cfg.BattleNet.Character, cfg.BattleNet.Realm, cfg.BattleNet.Region)
	fmt.Printf("  Output: %s (%s)\n", cfg.Output.Path, cfg.Output.Format)
	fmt.Printf("  Pacing: %s\n", cfg.Pacing.Mode)
	fmt.Printf("  Rarity: %t (cache %t)\n", cfg.Rarity.Enabled, cfg.Rarity.CacheEnabled)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
