package ui

import (
	"fmt"
	"io"
	"time"

	"kidplan-downloader/pkg/models"
)

// ASCIILogo is printed at the top of interactive commands
const ASCIILogo = `
  ╦╔═╦╔╦╗╔═╗╦  ╔═╗╔╗╔
  ╠╩╗║ ║║╠═╝║  ╠═╣║║║
  ╩ ╩╩═╩╝╩  ╩═╝╩ ╩╝╚╝  album downloader
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	fmt.Print(Magenta(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Red(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Println(Green(msg))
}

// PrintInfo prints a label and value pair
func PrintInfo(label string, value string) {
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Yellow(msg))
	}
}

// PrintSummary writes the end-of-run totals
func PrintSummary(w io.Writer, result models.DownloadResult, elapsed time.Duration) {
	fmt.Fprintf(w, "\n%s %d albums processed in %s\n", Green("✓"), result.TotalAlbums, elapsed.Round(time.Second))
	fmt.Fprintf(w, "  %s %d downloaded\n", Dim("•"), result.TotalImages)
	fmt.Fprintf(w, "  %s %d skipped\n", Dim("•"), result.Skipped)
	if result.Failed > 0 {
		fmt.Fprintf(w, "  %s %s\n", Dim("•"), Red(fmt.Sprintf("%d failed", result.Failed)))
	}
}

// SummaryLine renders the totals on one line
func SummaryLine(result models.DownloadResult) string {
	return fmt.Sprintf("%d downloaded, %d skipped, %d failed across %d albums",
		result.TotalImages, result.Skipped, result.Failed, result.TotalAlbums)
}
