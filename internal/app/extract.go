package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"horse.fit/pdfdesk/internal/cli"
	"horse.fit/pdfdesk/internal/langdetect"
	"horse.fit/pdfdesk/internal/pdftext"
)

type extractReport struct {
	Path     string `json:"path"`
	NumPages int    `json:"numPages"`
	Language string `json:"language"`
	Chars    int    `json:"chars"`
	Text     string `json:"text,omitempty"`
}

func runExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("format", "text", "Output format: text or json")
	noText := fs.Bool("no-text", false, "Only print page count and language")

	if err := fs.Parse(flagsFirst(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pdfdesk extract <file.pdf> [--format text|json] [--no-text] [--env .env]")
		return 2
	}
	outputFormat := strings.ToLower(strings.TrimSpace(*format))
	if outputFormat != "text" && outputFormat != "json" {
		fmt.Fprintln(os.Stderr, "--format must be text or json")
		return 2
	}

	cfg, _, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	path := strings.TrimSpace(fs.Arg(0))
	report, err := extractLocal(pdftext.NewExtractor(), langdetect.New(cfg.DetectLanguagesList()), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extract failed: %v\n", err)
		return 1
	}
	if *noText {
		report.Text = ""
	}

	if outputFormat == "json" {
		err = writeJSON(os.Stdout, report)
	} else {
		err = writeExtractText(os.Stdout, report)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Write output failed: %v\n", err)
		return 1
	}
	return 0
}

func extractLocal(extractor *pdftext.Extractor, detector *langdetect.Detector, path string) (extractReport, error) {
	doc, err := extractor.Extract(path)
	if err != nil {
		return extractReport{}, err
	}
	lang := detector.DetectISO6391(doc.Text)
	if lang == "" {
		lang = langdetect.Undetermined
	}
	return extractReport{
		Path:     path,
		NumPages: doc.NumPages,
		Language: lang,
		Chars:    len([]rune(doc.Text)),
		Text:     doc.Text,
	}, nil
}

func writeExtractText(w io.Writer, report extractReport) error {
	if _, err := fmt.Fprintf(w, "path=%s pages=%d language=%s chars=%d\n", report.Path, report.NumPages, report.Language, report.Chars); err != nil {
		return err
	}
	if report.Text == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%s\n", report.Text)
	return err
}
