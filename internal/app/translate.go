package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"horse.fit/pdfdesk/internal/cli"
	"horse.fit/pdfdesk/internal/document"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")
	lang := fs.String("lang", "", "Target language (ISO 639-1, for example: en, pt)")
	provider := fs.String("provider", "", "Translation provider name (google or local)")

	if err := fs.Parse(flagsFirst(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "translate requires one PDF path")
		printTranslateUsage()
		return 2
	}

	targetLang := normalizeLanguageFlag(*lang)
	if targetLang == "" {
		fmt.Fprintln(os.Stderr, "--lang is required and must be a valid language code")
		return 2
	}

	return withLocalPDF(fs.Arg(0), envLoader, *timeout, func(ctx context.Context, rt *runtime, upload document.Upload) (any, error) {
		return rt.docs.TranslateVia(ctx, upload, targetLang, strings.TrimSpace(*provider))
	})
}

func runCorrect(args []string) int {
	fs := flag.NewFlagSet("correct", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")
	lang := fs.String("lang", "auto", "Source language tag, or auto to use the detected language")

	if err := fs.Parse(flagsFirst(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "correct requires one PDF path")
		printTranslateUsage()
		return 2
	}

	sourceLang := normalizeLanguageFlag(*lang)
	if sourceLang == "" {
		fmt.Fprintln(os.Stderr, "--lang must be a valid language tag or auto")
		return 2
	}

	return withLocalPDF(fs.Arg(0), envLoader, *timeout, func(ctx context.Context, rt *runtime, upload document.Upload) (any, error) {
		return rt.docs.Correct(ctx, upload, sourceLang)
	})
}

// withLocalPDF runs fn over the PDF at path and prints its result as JSON.
func withLocalPDF(
	path string,
	envLoader *cli.EnvLoader,
	timeout time.Duration,
	fn func(ctx context.Context, rt *runtime, upload document.Upload) (any, error),
) int {
	path = strings.TrimSpace(path)
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Open PDF failed: %v\n", err)
		return 1
	}
	defer f.Close()

	cfg, logger, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rt, err := newRuntime(ctx, cfg, logger, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer rt.Close()

	result, err := fn(ctx, rt, document.Upload{Filename: path, Body: f})
	if err != nil {
		logger.Error().Err(err).Str("kind", string(document.KindOf(err))).Str("path", path).Msg("pdf command failed")
		fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
		return 1
	}

	if err := writeJSON(os.Stdout, result); err != nil {
		fmt.Fprintf(os.Stderr, "Write output failed: %v\n", err)
		return 1
	}
	return 0
}

// flagsFirst moves a leading positional argument behind the flags so
// "translate doc.pdf --lang en" parses like "translate --lang en doc.pdf".
func flagsFirst(args []string) []string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return args
	}
	reordered := make([]string, 0, len(args))
	reordered = append(reordered, args[1:]...)
	return append(reordered, args[0])
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}

func normalizeLanguageFlag(raw string) string {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if lang == "" {
		return ""
	}
	lang = strings.ReplaceAll(lang, "_", "-")
	for _, r := range lang {
		if unicode.IsLetter(r) || r == '-' {
			continue
		}
		return ""
	}
	return lang
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  pdfdesk translate <file.pdf> --lang <lang> [--provider google|local] [--env .env] [--timeout 5m]")
	fmt.Fprintln(os.Stderr, "  pdfdesk correct <file.pdf> [--lang auto|<tag>] [--env .env] [--timeout 5m]")
}
