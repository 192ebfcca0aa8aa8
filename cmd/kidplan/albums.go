package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kidplan-downloader/pkg/scraper"
	"kidplan-downloader/pkg/ui"
)

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List the photo albums of the kindergarten",
	Args:  cobra.NoArgs,
	RunE:  runAlbums,
}

func init() {
	albumsCmd.Flags().Int64("kid", 0, "kindergarten id")
	albumsCmd.Flags().String("kid-name", "", "kindergarten name")
	rootCmd.AddCommand(albumsCmd)
}

func runAlbums(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := initLogger(cfg)
	if err != nil {
		return err
	}

	client, kid, err := connect(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	ui.PrintInfo("Kindergarten", kid.Name)

	session := scraper.NewSession(cfg.Download.Manifest)
	session.SetClient(client)

	albums, err := scraper.New(session, nil, log).FetchAlbums(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tIMAGES\tTITLE")
	for _, album := range albums {
		images := "?"
		if album.ImageCount != nil {
			images = fmt.Sprint(*album.ImageCount)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", album.ID, images, album.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d albums\n", len(albums))
	return nil
}
