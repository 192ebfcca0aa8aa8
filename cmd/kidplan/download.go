package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kidplan-downloader/pkg/config"
	"kidplan-downloader/pkg/logger"
	"kidplan-downloader/pkg/models"
	"kidplan-downloader/pkg/scraper"
	"kidplan-downloader/pkg/ui"
	"kidplan-downloader/pkg/ui/tui"
)

var useTUI bool

var downloadCmd = &cobra.Command{
	Use:   "download [album-id...]",
	Short: "Download photo albums",
	Long: `Download every photo album of the kindergarten, or only the albums named
by id. Pictures already listed in the manifest are skipped, so an interrupted
run can simply be started again.

Press Ctrl+C once to stop after the current picture, twice to abort.`,
	Example: `  kidplan download
  kidplan download --out-dir ~/Pictures/kidplan --delay 500
  kidplan download 1234 5678 --dry-run
  kidplan download --tui`,
	RunE: runDownload,
}

func init() {
	defaults := config.DefaultConfig()

	downloadCmd.Flags().StringP("out-dir", "o", defaults.Download.OutDir, "output directory")
	downloadCmd.Flags().Int("delay", defaults.Download.DelayMs, "pause between pictures in milliseconds")
	downloadCmd.Flags().Int("limit", 0, "maximum pictures per album (0 = no limit)")
	downloadCmd.Flags().String("manifest", defaults.Download.Manifest, "manifest file of downloaded pictures")
	downloadCmd.Flags().Bool("dry-run", false, "list what would be downloaded without saving anything")
	downloadCmd.Flags().Int64("kid", 0, "kindergarten id")
	downloadCmd.Flags().String("kid-name", "", "kindergarten name")
	downloadCmd.Flags().BoolVar(&useTUI, "tui", false, "use the full-screen terminal interface")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var log logger.Logger
	switch {
	case useTUI:
		// the terminal belongs to the interface; only a log file still gets output
		log, err = logger.NewWithWriter(&cfg.Logging, io.Discard)
		if err == nil {
			logger.SetLogger(log)
		}
	default:
		if !verbose && !cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = "warn"
		}
		log, err = initLogger(cfg)
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client, kid, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	if !useTUI {
		ui.PrintInfo("Kindergarten", kid.Name)
	}

	session := scraper.NewSession(cfg.Download.Manifest)
	session.SetClient(client)

	albums, err := scraper.New(session, nil, log).FetchAlbums(ctx)
	if err != nil {
		return err
	}
	albums, err = filterAlbums(albums, args)
	if err != nil {
		return err
	}

	settings := cfg.DownloadSettings()
	notifier := ui.NewNotifier(cfg.Notifications)
	start := time.Now()

	var result models.DownloadResult
	if useTUI {
		result, err = downloadWithTUI(ctx, session, albums, settings, log)
	} else {
		result, err = downloadWithConsole(ctx, cancel, session, albums, settings, log)
	}
	if err != nil {
		notifier.RunFailed(err)
		return err
	}

	ui.PrintSummary(os.Stdout, result, time.Since(start))
	notifier.RunFinished(result)
	return nil
}

// downloadWithConsole runs the download with a progress bar. The first
// interrupt stops after the current picture, the second aborts.
func downloadWithConsole(ctx context.Context, abort context.CancelFunc, session *scraper.Session, albums []models.Album, settings models.DownloadSettings, log logger.Logger) (models.DownloadResult, error) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case <-sigs:
			session.Cancel()
			ui.PrintWarning("\nStopping after the current picture (Ctrl+C again to abort)")
		case <-ctx.Done():
			return
		}
		select {
		case <-sigs:
			abort()
		case <-ctx.Done():
		}
	}()

	sink := ui.NewConsoleSink(os.Stdout)
	defer sink.Close()

	if settings.DryRun {
		ui.PrintWarning("Dry run: nothing will be saved")
	}
	ui.PrintInfo("Albums", fmt.Sprint(len(albums)))
	ui.PrintInfo("Output", settings.OutDir)

	return scraper.New(session, sink, log).DownloadAlbums(ctx, albums, settings)
}

// downloadWithTUI runs the download next to the terminal interface. The
// interface stays open after the run until the user leaves it.
func downloadWithTUI(ctx context.Context, session *scraper.Session, albums []models.Album, settings models.DownloadSettings, log logger.Logger) (models.DownloadResult, error) {
	terminal := tui.NewTUI(session.Cancel)

	var (
		result models.DownloadResult
		runErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := terminal.Start(); err != nil {
			return fmt.Errorf("terminal interface failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		terminal.LogInfo("Downloading %d albums to %s", len(albums), settings.OutDir)
		result, runErr = scraper.New(session, terminal, log).DownloadAlbums(gctx, albums, settings)
		terminal.Finish(result, runErr)
		return nil
	})

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, runErr
}

// filterAlbums keeps the albums named by ids, in catalog order
func filterAlbums(albums []models.Album, ids []string) ([]models.Album, error) {
	if len(ids) == 0 {
		return albums, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var picked []models.Album
	for _, album := range albums {
		if wanted[album.ID] {
			picked = append(picked, album)
			delete(wanted, album.ID)
		}
	}

	for id := range wanted {
		ui.PrintWarning("Album not found", id)
	}
	if len(picked) == 0 {
		return nil, fmt.Errorf("none of the requested albums exist")
	}
	return picked, nil
}
