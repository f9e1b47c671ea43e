package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "serve":
		return runServe(args[1:])
	case "extract":
		return runExtract(args[1:])
	case "translate":
		return runTranslate(args[1:])
	case "correct":
		return runCorrect(args[1:])
	case "sweep":
		return runSweep(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "pdfdesk CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  pdfdesk <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve      Start the HTTP API server")
	fmt.Fprintln(os.Stderr, "  extract    Print page count, detected language and text of a local PDF")
	fmt.Fprintln(os.Stderr, "  translate  Translate a local PDF and print the JSON result")
	fmt.Fprintln(os.Stderr, "  correct    Correct the text of a local PDF and print the JSON result")
	fmt.Fprintln(os.Stderr, "  sweep      Remove stored uploads older than UPLOAD_RETENTION")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"pdfdesk <command> -h\" for command-specific flags.")
}
