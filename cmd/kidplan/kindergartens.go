package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kidplan-downloader/pkg/kidplan"
)

var kindergartensCmd = &cobra.Command{
	Use:     "kindergartens",
	Aliases: []string{"kids"},
	Short:   "List the kindergartens of the account",
	Args:    cobra.NoArgs,
	RunE:    runKindergartens,
}

func init() {
	rootCmd.AddCommand(kindergartensCmd)
}

func runKindergartens(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := initLogger(cfg)
	if err != nil {
		return err
	}

	creds, err := resolveCredentials(cfg)
	if err != nil {
		return err
	}
	client, err := kidplan.NewClientFromConfig(cfg, log)
	if err != nil {
		return err
	}

	kids, err := client.FetchKindergartens(cmd.Context(), creds)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, kid := range kids {
		fmt.Fprintf(w, "%d\t%s\n", kid.ID, kid.Name)
	}
	return w.Flush()
}
