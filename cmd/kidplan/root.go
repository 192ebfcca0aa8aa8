package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"kidplan-downloader/pkg/ui"
)

var (
	// Version information, set by the linker
	version   = "0.1.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	accountEmail  string
	notifications bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kidplan",
	Short: "Download photo albums from Kidplan",
	Long: `kidplan downloads the photo albums of your kindergarten from Kidplan.

Features:
  - Secure credential storage using the system keychain
  - Resumable downloads: a manifest remembers every saved picture
  - Polite pacing between requests with optional rate limiting
  - Console progress bar or full-screen terminal UI
  - Desktop notifications when a run finishes`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return
		}
		if tui, _ := cmd.Flags().GetBool("tui"); !tui {
			ui.PrintLogo()
		}
	},
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kidplan %s\n", rootCmd.Version)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.kidplan.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&accountEmail, "account", "a", "", "use a specific stored account")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "send a desktop notification when a run ends")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show log output next to the progress bar")

	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`kidplan {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
