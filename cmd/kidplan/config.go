package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kidplan-downloader/pkg/config"
	"kidplan-downloader/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage kidplan configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (KIDPLAN_*) and .env files
  - Configuration file
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as 'kidplan.yaml' in the current directory unless a
different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.

The account password is masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

const exampleConfig = `# kidplan configuration
#
# Every value can also be set with a KIDPLAN_* environment variable, for
# example KIDPLAN_USER, KIDPLAN_PASS, KIDPLAN_KID or KIDPLAN_OUT_DIR.

kidplan:
  # Leave empty to use the account stored with 'kidplan auth login'
  username: ""
  password: ""
  # Pick the kindergarten by id or by name when the account has several
  kindergarten_id: 0
  kindergarten_name: ""
  base_url: "https://app.kidplan.com"
  timeout: 60s
  max_redirects: 10

download:
  out_dir: "kidplan-albums"
  # Pause between pictures
  delay_ms: 200
  # 0 downloads every picture
  limit_per_album: 0
  manifest: "kidplan-manifest.txt"
  # Write album.json next to the pictures
  write_metadata: true
  dry_run: false

rate_limit:
  # 0 disables the limiter; delay_ms still applies
  requests_per_minute: 0
  burst: 1
  max_retries: 2
  retry_delay: 1s

notifications:
  enabled: false
  on_complete: true
  on_error: true

logging:
  # debug, info, warn, error or disabled
  level: "info"
  # Optional log file, written next to the console output
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = "kidplan.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("✓ Created configuration file: %s", path))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'kidplan auth login' to store your credentials")
	fmt.Println("  2. Adjust the download settings in the file")
	fmt.Printf("  3. Run 'kidplan download --config %s'\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	shown := *cfg
	if shown.Kidplan.Password != "" {
		shown.Kidplan.Password = "********"
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	fmt.Println("Current configuration:")
	fmt.Println("─────────────────────")
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no configuration file given; use --config or pass a path")
	}

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration is invalid")
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("✓ %s is valid", path))
	return nil
}
